package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/vidfeed/internal/domain"
	"github.com/mmcdole/vidfeed/internal/search"
	"github.com/mmcdole/vidfeed/internal/tui/styles"
)

// List is a scrollable list over a growing slice of items with an optional
// local fuzzy filter. Rows are one line each.
type List[T domain.ListItem] struct {
	items []T

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width  int
	height int

	// badge renders an optional marker before the title
	badge func(T) string

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into items
}

// NewList creates an empty list
func NewList[T domain.ListItem](badge func(T) string) *List[T] {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle
	ti.Cursor.SetMode(cursor.CursorStatic)

	return &List[T]{badge: badge, filterInput: ti, maxVisible: 1}
}

// SetItems replaces the backing items. The cursor stays where it is so a
// growing list does not jump.
func (l *List[T]) SetItems(items []T) {
	l.items = items
	if l.filterActive {
		l.refilter()
	}
	l.clampCursor()
}

// Reset moves to the top and drops the filter
func (l *List[T]) Reset() {
	l.cursor = 0
	l.offset = 0
	l.clearFilter()
}

// Update handles navigation and filter keys
func (l *List[T]) Update(msg tea.KeyMsg) tea.Cmd {
	// Filter input focused: typing mode
	if l.filterActive && l.filterInput.Focused() {
		switch msg.String() {
		case "esc":
			l.clearFilter()
			return nil
		case "enter":
			// Accept filter, blur input to allow navigation
			l.filterInput.Blur()
			return nil
		case "backspace":
			if l.filterInput.Value() == "" {
				l.clearFilter()
				return nil
			}
		}
		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter()
		return cmd
	}

	if l.filterActive {
		switch msg.String() {
		case "esc":
			l.clearFilter()
			return nil
		case "/":
			l.filterInput.Focus()
			return nil
		}
	}

	count := l.Count()
	if count == 0 {
		return nil
	}

	switch msg.String() {
	case "j", "down":
		if l.cursor < count-1 {
			l.cursor++
		}
	case "k", "up":
		if l.cursor > 0 {
			l.cursor--
		}
	case "g", "home":
		l.cursor = 0
	case "G", "end":
		l.cursor = count - 1
	case "ctrl+d", "pgdown":
		l.cursor += l.maxVisible / 2
		if l.cursor >= count {
			l.cursor = count - 1
		}
	case "ctrl+u", "pgup":
		l.cursor -= l.maxVisible / 2
		if l.cursor < 0 {
			l.cursor = 0
		}
	}
	l.ensureVisible()
	return nil
}

// Count returns the number of rows currently shown (after filtering)
func (l *List[T]) Count() int {
	if l.filterActive && l.filterQuery != "" {
		return len(l.filteredIdx)
	}
	return len(l.items)
}

// Cursor returns the row index of the selection
func (l *List[T]) Cursor() int {
	return l.cursor
}

// SetCursor moves the selection to row idx
func (l *List[T]) SetCursor(idx int) {
	l.cursor = idx
	l.clampCursor()
}

// Selected returns the selected item
func (l *List[T]) Selected() (T, bool) {
	var zero T
	if l.Count() == 0 {
		return zero, false
	}
	return l.items[l.mapIndex(l.cursor)], true
}

// Viewport returns the first visible row, the number of visible rows and
// the total row count, in rows.
func (l *List[T]) Viewport() (top, height, content int) {
	return l.offset, l.maxVisible, l.Count()
}

// ToggleFilter activates the filter input
func (l *List[T]) ToggleFilter() {
	l.filterActive = true
	l.filterInput.Focus()
	l.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (l *List[T]) IsFiltering() bool {
	return l.filterActive
}

// IsFilterTyping returns true if filter is active AND input is focused
func (l *List[T]) IsFilterTyping() bool {
	return l.filterActive && l.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all items
func (l *List[T]) ClearFilter() {
	l.clearFilter()
}

func (l *List[T]) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
}

func (l *List[T]) View() string {
	var b strings.Builder
	if l.filterActive {
		b.WriteString(l.filterInput.View())
		b.WriteString("\n")
	}

	count := l.Count()
	end := l.offset + l.maxVisible
	if end > count {
		end = count
	}
	for row := l.offset; row < end; row++ {
		item := l.items[l.mapIndex(row)]
		b.WriteString(l.renderRow(item, row == l.cursor))
		if row < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (l *List[T]) renderRow(item T, selected bool) string {
	prefix := "  "
	if l.badge != nil {
		if badge := l.badge(item); badge != "" {
			prefix = badge + " "
		}
	}

	avail := l.width - 4
	title := item.GetTitle()
	desc := item.GetDescription()
	titleWidth := avail * 3 / 5
	if desc == "" {
		titleWidth = avail
	}
	title = styles.Truncate(title, titleWidth)

	parts := []styles.RowPart{{Text: prefix}, {Text: title}}
	if desc != "" {
		descWidth := avail - len([]rune(title)) - 2
		if descWidth > 0 {
			dim := styles.DimGray
			parts = append(parts, styles.RowPart{Text: "  " + styles.Truncate(desc, descWidth), Foreground: &dim})
		}
	}
	return styles.RenderListRow(parts, selected, l.width)
}

// Internal methods

func (l *List[T]) mapIndex(row int) int {
	if l.filterActive && l.filterQuery != "" {
		return l.filteredIdx[row]
	}
	return row
}

func (l *List[T]) recalcMaxVisible() {
	l.maxVisible = l.height
	// Reserve space for filter bar when active
	if l.filterActive {
		l.maxVisible--
	}
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

func (l *List[T]) clampCursor() {
	count := l.Count()
	if l.cursor >= count {
		l.cursor = count - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	l.ensureVisible()
}

func (l *List[T]) ensureVisible() {
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

func (l *List[T]) clearFilter() {
	l.filterActive = false
	l.filterQuery = ""
	l.filteredIdx = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.recalcMaxVisible()
	l.clampCursor()
}

func (l *List[T]) applyFilter() {
	l.refilter()
	// Reset cursor to first match
	l.cursor = 0
	l.offset = 0
}

func (l *List[T]) refilter() {
	l.filterQuery = l.filterInput.Value()
	if l.filterQuery == "" {
		l.filteredIdx = nil
		return
	}
	l.filteredIdx = search.Indexes(search.Filter(l.filterQuery, l.items))
}

// Height returns the number of rows the list occupies
func (l *List[T]) Height() int {
	return l.height
}
