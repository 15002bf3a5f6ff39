package tui

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/vidfeed/internal/domain"
	"github.com/mmcdole/vidfeed/internal/feed"
	"github.com/mmcdole/vidfeed/internal/pager"
	"github.com/mmcdole/vidfeed/internal/search"
	"github.com/mmcdole/vidfeed/internal/tui/styles"
)

const maxSuggestions = 5

// RecentSearches stores submitted queries
type RecentSearches interface {
	RecentSearches() []string
	AddRecentSearch(query string) error
}

// searchFeed is a paged result list behind a query input
type searchFeed struct {
	*listFeed[domain.Video]

	input       textinput.Model
	recents     RecentSearches
	suggestions []string
}

func newSearchFeed(def feed.Definition, loader *pager.Loader[domain.Video], timeout time.Duration, badge func(domain.Video) string, recents RecentSearches) *searchFeed {
	lf := newListFeed(def, loader, timeout, badge)
	lf.needsKey = true
	lf.emptyText = "Press s to search"

	ti := textinput.New()
	ti.Placeholder = "search videos..."
	ti.Prompt = "Search: "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.CharLimit = 200

	return &searchFeed{listFeed: lf, input: ti, recents: recents}
}

func (f *searchFeed) Capturing() bool {
	return f.input.Focused() || f.listFeed.Capturing()
}

func (f *searchFeed) Activate() tea.Cmd {
	if !f.hasKey() {
		f.focus()
		return nil
	}
	return f.listFeed.Activate()
}

func (f *searchFeed) focus() {
	f.input.Focus()
	f.input.CursorEnd()
	f.suggest()
}

func (f *searchFeed) suggest() {
	if f.recents == nil {
		f.suggestions = nil
		return
	}
	f.suggestions = search.Suggest(f.input.Value(), f.recents.RecentSearches(), maxSuggestions)
}

// submit starts a new result set for the typed query
func (f *searchFeed) submit() tea.Cmd {
	q := strings.TrimSpace(f.input.Value())
	if q == "" {
		return nil
	}
	f.input.Blur()
	f.suggestions = nil
	if f.recents != nil {
		if err := f.recents.AddRecentSearch(q); err != nil {
			slog.Warn("failed to save recent search", "error", err)
		}
	}
	return f.open(pager.Identity{Key: q}, "")
}

func (f *searchFeed) Update(msg tea.KeyMsg) tea.Cmd {
	if !f.input.Focused() {
		if key.Matches(msg, Keys.EditQuery) && !f.list.IsFilterTyping() {
			f.focus()
			return nil
		}
		return f.listFeed.Update(msg)
	}

	f.flash = ""
	switch {
	case key.Matches(msg, Keys.Enter):
		return f.submit()
	case key.Matches(msg, Keys.Escape):
		f.input.Blur()
		f.suggestions = nil
		return nil
	case key.Matches(msg, Keys.Complete):
		if len(f.suggestions) > 0 {
			f.input.SetValue(f.suggestions[0])
			f.input.CursorEnd()
			f.suggest()
		}
		return nil
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	f.suggest()
	return cmd
}

func (f *searchFeed) SetSize(width, height int) {
	f.input.Width = width - len(f.input.Prompt) - 2
	// query line
	f.listFeed.SetSize(width, height-1)
}

func (f *searchFeed) View() string {
	query := f.input.View()
	if !f.input.Focused() && f.input.Value() == "" {
		query = styles.DimStyle.Render("Search: press s to type a query")
	}
	if f.input.Focused() && len(f.suggestions) > 0 {
		return query + "\n" + f.renderSuggestions()
	}
	return query + "\n" + f.listFeed.View()
}

func (f *searchFeed) renderSuggestions() string {
	lines := make([]string, 0, len(f.suggestions)+1)
	lines = append(lines, styles.SubtitleStyle.Render("Recent searches"))
	for i, s := range f.suggestions {
		if i == 0 {
			lines = append(lines, styles.AccentStyle.Render("> "+s)+styles.DimStyle.Render("  (tab)"))
			continue
		}
		lines = append(lines, styles.DimStyle.Render("  "+s))
	}
	return strings.Join(lines, "\n")
}

func (f *searchFeed) Help() [][2]string {
	if f.input.Focused() {
		return [][2]string{{"enter", "search"}, {"tab", "complete"}, {"esc", "cancel"}}
	}
	return append([][2]string{{"s", "edit search"}}, f.listFeed.Help()...)
}
