package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/vidfeed/internal/domain"
	"github.com/mmcdole/vidfeed/internal/feed"
	"github.com/mmcdole/vidfeed/internal/pager"
	"github.com/mmcdole/vidfeed/internal/tui/components"
	"github.com/mmcdole/vidfeed/internal/tui/styles"
)

// feedView is one tab of the app
type feedView interface {
	Kind() feed.Kind
	Title() string
	// Activate starts the initial load when the tab is shown while idle
	Activate() tea.Cmd
	Update(msg tea.KeyMsg) tea.Cmd
	HandlePage(msg PageLoadedMsg) tea.Cmd
	// Capturing reports whether keys go to a text input
	Capturing() bool
	// Refresh re-renders after local state changed outside the loader
	Refresh()
	SetSize(width, height int)
	View() string
	Help() [][2]string
}

// feedCore is the loader plumbing shared by every tab
type feedCore[T domain.ListItem] struct {
	def     feed.Definition
	loader  *pager.Loader[T]
	timeout time.Duration
	flash   string // last load error, cleared on the next key
}

func (c *feedCore[T]) Kind() feed.Kind {
	return c.def.Kind
}

// begin claims the fetch slot and returns the command performing the fetch,
// or nil when the loader refused.
func (c *feedCore[T]) begin(kind pager.LoadKind) tea.Cmd {
	t, ok := c.loader.Begin(kind)
	if !ok {
		return nil
	}
	return FetchPageCmd(c.def.Kind, c.loader, t, c.timeout)
}

// apply merges a finished page. A failure is moved from the loader into the
// flash line and acknowledged.
func (c *feedCore[T]) apply(msg PageLoadedMsg) (applied, failed bool) {
	if !msg.Apply() {
		return false, false
	}
	if msg.Err == nil {
		return true, false
	}
	c.flash = "Unable to load: " + c.loader.State().LastError
	c.loader.AckError()
	return true, true
}

// status is the inline load state shown next to the title
func (c *feedCore[T]) status() string {
	st := c.loader.State()
	switch {
	case c.flash != "":
		return styles.ErrorStyle.Render(c.flash)
	case st.IsInitialLoading:
		return styles.SpinnerStyle.Render("Loading…")
	case st.IsLoadingMore:
		return styles.SpinnerStyle.Render("Loading more…")
	case st.Phase == pager.PhaseIdle:
		return ""
	case !st.HasMore:
		return styles.DimStyle.Render(fmt.Sprintf("%d items · end", len(st.Items)))
	default:
		return styles.DimStyle.Render(fmt.Sprintf("%d items", len(st.Items)))
	}
}

// listFeed is a tab showing a loader's items as rows
type listFeed[T domain.ListItem] struct {
	feedCore[T]

	title     string
	list      *components.List[T]
	proximity *pager.ProximityTrigger
	scroll    *pager.ScrollTrigger
	explicit  pager.ExplicitTrigger
	nav       *pager.PageNavigator

	hidden    map[string]bool // Items removed locally
	needsKey  bool            // Idle until an identity key is set
	emptyText string

	actions func(item T, msg tea.KeyMsg) (tea.Cmd, bool)
	help    [][2]string

	width  int
	height int
}

func newListFeed[T domain.ListItem](def feed.Definition, loader *pager.Loader[T], timeout time.Duration, badge func(T) string) *listFeed[T] {
	f := &listFeed[T]{
		feedCore:  feedCore[T]{def: def, loader: loader, timeout: timeout},
		title:     def.Title,
		list:      components.NewList(badge),
		emptyText: "Nothing here yet",
	}
	switch def.Trigger {
	case feed.TriggerProximity:
		f.proximity = pager.NewProximityTrigger(def.Lookahead)
	case feed.TriggerScroll:
		f.scroll = pager.NewScrollTrigger(def.Lookahead)
	case feed.TriggerPaged:
		f.nav = pager.NewPageNavigator(def.PageSize)
	}
	return f
}

func (f *listFeed[T]) Title() string {
	return f.title
}

func (f *listFeed[T]) Capturing() bool {
	return f.list.IsFilterTyping()
}

func (f *listFeed[T]) hasKey() bool {
	return !f.needsKey || f.loader.State().Identity.Key != ""
}

func (f *listFeed[T]) Activate() tea.Cmd {
	if !f.hasKey() || f.loader.State().Phase != pager.PhaseIdle {
		return nil
	}
	return f.begin(pager.LoadInitial)
}

// open points the tab at a new identity and starts loading it
func (f *listFeed[T]) open(identity pager.Identity, title string) tea.Cmd {
	if title != "" {
		f.title = title
	}
	f.loader.Reset(identity)
	f.resetView()
	return f.Activate()
}

// reload discards the items and loads the current identity again
func (f *listFeed[T]) reload() tea.Cmd {
	if !f.hasKey() {
		return nil
	}
	f.loader.Reset(f.loader.State().Identity)
	f.resetView()
	return f.begin(pager.LoadInitial)
}

func (f *listFeed[T]) resetView() {
	f.flash = ""
	f.hidden = nil
	f.list.Reset()
	if f.proximity != nil {
		f.proximity.Rearm()
	}
	if f.scroll != nil {
		f.scroll.Rearm()
	}
	if f.nav != nil {
		f.nav.Reset()
	}
	f.sync()
}

// hide removes an item from view without touching the loader
func (f *listFeed[T]) hide(id string) {
	if f.hidden == nil {
		f.hidden = make(map[string]bool)
	}
	f.hidden[id] = true
	f.sync()
}

func (f *listFeed[T]) Refresh() {
	f.sync()
}

// sync pushes the loader's items into the list
func (f *listFeed[T]) sync() {
	items := f.loader.State().Items
	if len(f.hidden) > 0 {
		kept := items[:0]
		for _, item := range items {
			if !f.hidden[item.GetID()] {
				kept = append(kept, item)
			}
		}
		items = kept
	}
	if f.nav != nil {
		start, end := f.nav.Window(len(items))
		items = items[start:end]
	}
	f.list.SetItems(items)
}

// checkTriggers asks for the next page when the cursor or viewport is close
// enough to the end
func (f *listFeed[T]) checkTriggers() tea.Cmd {
	if f.list.IsFiltering() || !f.loader.CanLoadMore() || f.loader.State().Phase == pager.PhaseIdle {
		return nil
	}
	loaded := f.loader.Len()
	mark := f.loader.Fetches()
	switch {
	case f.proximity != nil:
		// Hidden rows still count towards the loaded sequence
		index := f.list.Cursor() + loaded - f.list.Count()
		if f.proximity.Check(index, loaded, mark) {
			return f.begin(pager.LoadMore)
		}
	case f.scroll != nil:
		top, height, content := f.list.Viewport()
		if f.scroll.Check(top, height, content, mark) {
			return f.begin(pager.LoadMore)
		}
	}
	return nil
}

func (f *listFeed[T]) Update(msg tea.KeyMsg) tea.Cmd {
	f.flash = ""

	if f.list.IsFilterTyping() {
		return f.list.Update(msg)
	}

	switch {
	case key.Matches(msg, Keys.Filter) && !f.list.IsFiltering():
		f.list.ToggleFilter()
		return nil
	case key.Matches(msg, Keys.Refresh):
		return f.reload()
	case key.Matches(msg, Keys.LoadMore) && f.def.Trigger == feed.TriggerExplicit:
		if !f.explicit.Enabled(f.loader) {
			return nil
		}
		return f.begin(pager.LoadMore)
	case f.nav != nil && key.Matches(msg, Keys.NextPage):
		return f.nextPage()
	case f.nav != nil && key.Matches(msg, Keys.PrevPage):
		if f.nav.Prev() {
			f.list.Reset()
			f.sync()
		}
		return nil
	}

	if f.actions != nil {
		if item, ok := f.list.Selected(); ok {
			if cmd, handled := f.actions(item, msg); handled {
				return cmd
			}
		}
	}

	cmd := f.list.Update(msg)
	return tea.Batch(cmd, f.checkTriggers())
}

func (f *listFeed[T]) nextPage() tea.Cmd {
	moved, fetch := f.nav.Next(f.loader.Len(), f.loader)
	if moved {
		f.list.Reset()
		f.sync()
	}
	if !fetch {
		return nil
	}
	cmd := f.begin(pager.LoadMore)
	if cmd == nil {
		f.nav.Settle(f.loader.Len())
	}
	return cmd
}

func (f *listFeed[T]) HandlePage(msg PageLoadedMsg) tea.Cmd {
	applied, failed := f.apply(msg)
	if !applied {
		return nil
	}
	if failed {
		// Re-arm so the same position can retry
		if f.proximity != nil {
			f.proximity.Rearm()
		}
		if f.scroll != nil {
			f.scroll.Rearm()
		}
		if f.nav != nil {
			f.nav.Settle(f.loader.Len())
		}
		return nil
	}

	f.sync()
	if f.nav != nil {
		if f.nav.Settle(f.loader.Len()) {
			f.list.Reset()
			f.sync()
		}
		return nil
	}
	// A short first page may not fill the viewport
	return f.checkTriggers()
}

func (f *listFeed[T]) SetSize(width, height int) {
	f.width = width
	f.height = height
	// title line + blank + footer
	listHeight := height - 3
	if listHeight < 1 {
		listHeight = 1
	}
	f.list.SetSize(width, listHeight)
}

func (f *listFeed[T]) View() string {
	header := styles.TitleStyle.Render(f.title)
	if status := f.status(); status != "" {
		header += "  " + status
	}

	st := f.loader.State()
	var body string
	switch {
	case f.list.Count() > 0 || f.list.IsFiltering():
		body = f.list.View()
	case st.IsInitialLoading:
		body = ""
	case !f.hasKey():
		body = styles.DimStyle.Render(f.emptyText)
	case st.Phase == pager.PhaseReady:
		body = styles.DimStyle.Render("Nothing here yet")
	}
	body = lipgloss.NewStyle().Height(f.list.Height()).Render(body)

	return strings.Join([]string{header, "", body, f.footer(st)}, "\n")
}

func (f *listFeed[T]) footer(st pager.State[T]) string {
	switch f.def.Trigger {
	case feed.TriggerExplicit:
		label := "Load more"
		switch {
		case st.IsLoadingMore || st.IsInitialLoading:
			label = "Loading more…"
		case !st.HasMore:
			label = "No more items"
		}
		return components.RenderButton("m", label, f.explicit.Enabled(f.loader) && st.Phase != pager.PhaseIdle)
	case feed.TriggerPaged:
		if st.Phase == pager.PhaseIdle {
			return ""
		}
		return components.RenderPageBar(f.nav.Page(), f.nav.HasPrev(), f.nav.HasNext(f.loader.Len(), f.loader))
	default:
		return ""
	}
}

func (f *listFeed[T]) Help() [][2]string {
	help := [][2]string{{"j/k", "move"}, {"/", "filter"}, {"r", "refresh"}}
	switch f.def.Trigger {
	case feed.TriggerExplicit:
		help = append(help, [2]string{"m", "load more"})
	case feed.TriggerPaged:
		help = append(help, [2]string{"[ ]", "pages"})
	}
	return append(help, f.help...)
}

// clipFeed is the short-form carousel
type clipFeed struct {
	feedCore[domain.Clip]
	carousel  *components.Carousel[domain.Clip]
	proximity *pager.ProximityTrigger
	width     int
	height    int
}

func newClipFeed(def feed.Definition, loader *pager.Loader[domain.Clip], timeout time.Duration) *clipFeed {
	return &clipFeed{
		feedCore:  feedCore[domain.Clip]{def: def, loader: loader, timeout: timeout},
		carousel:  components.NewCarousel[domain.Clip](),
		proximity: pager.NewProximityTrigger(def.Lookahead),
	}
}

func (f *clipFeed) Title() string   { return f.def.Title }
func (f *clipFeed) Capturing() bool { return false }

func (f *clipFeed) Activate() tea.Cmd {
	if f.loader.State().Phase != pager.PhaseIdle {
		return nil
	}
	return f.begin(pager.LoadInitial)
}

func (f *clipFeed) Refresh() {
	f.carousel.SetItems(f.loader.State().Items)
}

func (f *clipFeed) checkTriggers() tea.Cmd {
	if !f.loader.CanLoadMore() || f.loader.State().Phase == pager.PhaseIdle {
		return nil
	}
	if f.proximity.Check(f.carousel.Index(), f.loader.Len(), f.loader.Fetches()) {
		return f.begin(pager.LoadMore)
	}
	return nil
}

func (f *clipFeed) Update(msg tea.KeyMsg) tea.Cmd {
	f.flash = ""
	if key.Matches(msg, Keys.Refresh) {
		f.loader.Reset(pager.Identity{})
		f.carousel.Reset()
		f.proximity.Rearm()
		f.Refresh()
		return f.begin(pager.LoadInitial)
	}
	f.carousel.Update(msg)
	return f.checkTriggers()
}

func (f *clipFeed) HandlePage(msg PageLoadedMsg) tea.Cmd {
	applied, failed := f.apply(msg)
	if !applied {
		return nil
	}
	if failed {
		f.proximity.Rearm()
		return nil
	}
	f.Refresh()
	return f.checkTriggers()
}

func (f *clipFeed) SetSize(width, height int) {
	f.width = width
	f.height = height
	f.carousel.SetSize(width, height-3)
}

func (f *clipFeed) View() string {
	header := styles.TitleStyle.Render(f.def.Title)
	if status := f.status(); status != "" {
		header += "  " + status
	}
	body := f.carousel.View()
	if body == "" && f.loader.State().Phase == pager.PhaseReady {
		body = styles.DimStyle.Render("No clips yet")
	}
	return strings.Join([]string{header, "", body}, "\n")
}

func (f *clipFeed) Help() [][2]string {
	return [][2]string{{"h/l", "previous/next clip"}, {"r", "refresh"}}
}

func (c *feedCore[T]) loading() bool {
	st := c.loader.State()
	return st.IsInitialLoading || st.IsLoadingMore
}
