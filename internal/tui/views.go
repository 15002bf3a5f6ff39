package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/vidfeed/internal/tui/components"
	"github.com/mmcdole/vidfeed/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}
	if m.State == StateHelp {
		return m.renderHelp()
	}

	titles := make([]string, len(m.feeds))
	for i, f := range m.feeds {
		titles[i] = f.Title()
	}
	tabs := components.RenderTabs(titles, m.active, m.Width)

	content := lipgloss.NewStyle().
		Width(m.Width).
		Height(m.Height - ChromeHeight).
		MaxHeight(m.Height - ChromeHeight).
		Render(m.feeds[m.active].View())

	return strings.Join([]string{tabs, "", content, m.renderFooter()}, "\n")
}

// RenderSpinner returns the spinner glyph for frame
func RenderSpinner(frame int) string {
	return styles.SpinnerStyle.Render(styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])
}

func (m Model) renderFooter() string {
	var left string
	switch {
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.StatusMsg != "":
		left = styles.SuccessStyle.Render(m.StatusMsg)
	case m.activeLoading():
		left = RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render("Loading...")
	default:
		left = components.RenderHelp(m.feeds[m.active].Help()...)
	}

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")
	if m.user != nil {
		name := m.user.DisplayName
		if name == "" {
			name = m.user.Username
		}
		right = styles.DimStyle.Render(name) + "  " + right
	}

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// activeLoading reports whether the visible tab has a fetch in flight
func (m Model) activeLoading() bool {
	type loading interface{ loading() bool }
	if l, ok := m.feeds[m.active].(loading); ok {
		return l.loading()
	}
	return false
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	global := [][2]string{
		{"tab / S-tab", "next / previous tab"},
		{"1-9", "jump to tab"},
		{"r", "refresh the current tab"},
		{"/", "filter loaded items"},
		{"?", "toggle help"},
		{"q", "quit"},
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, p := range global {
		b.WriteString(renderHelpLine(p))
	}
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render(m.feeds[m.active].Title()))
	b.WriteString("\n\n")
	for _, p := range m.feeds[m.active].Help() {
		b.WriteString(renderHelpLine(p))
	}

	box := styles.CardStyle.Render(b.String())
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, box)
}

func renderHelpLine(p [2]string) string {
	k := styles.HelpKeyStyle.Width(14).Render(p[0])
	return k + styles.HelpDescStyle.Render(p[1]) + "\n"
}
