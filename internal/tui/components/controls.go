package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/vidfeed/internal/tui/styles"
)

// RenderTabs renders the tab bar with the active tab highlighted
func RenderTabs(titles []string, active, width int) string {
	tabs := make([]string, len(titles))
	for i, t := range titles {
		label := fmt.Sprintf("%d %s", i+1, t)
		if i == active {
			tabs[i] = styles.ActiveTabStyle.Render(label)
		} else {
			tabs[i] = styles.InactiveTabStyle.Render(label)
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if lipgloss.Width(bar) > width && width > 0 {
		return lipgloss.NewStyle().MaxWidth(width).Render(bar)
	}
	return bar
}

// RenderButton renders a key-driven control. Disabled controls are dimmed
// and cannot be pressed.
func RenderButton(key, label string, enabled bool) string {
	text := fmt.Sprintf("[%s] %s", key, label)
	if !enabled {
		return styles.DisabledButtonStyle.Render(text)
	}
	return styles.ButtonStyle.Render(text)
}

// RenderPageBar renders Previous/Next controls around the page number
func RenderPageBar(page int, hasPrev, hasNext bool) string {
	parts := []string{
		RenderButton("[", "Previous", hasPrev),
		styles.SubtitleStyle.Render(fmt.Sprintf("Page %d", page+1)),
		RenderButton("]", "Next", hasNext),
	}
	return strings.Join(parts, "  ")
}

// RenderHelp renders a one-line key help footer
func RenderHelp(pairs ...[2]string) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = styles.HelpKeyStyle.Render(p[0]) + " " + styles.HelpDescStyle.Render(p[1])
	}
	return strings.Join(parts, "  ")
}
