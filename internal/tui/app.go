package tui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/vidfeed/internal/domain"
	"github.com/mmcdole/vidfeed/internal/feed"
	"github.com/mmcdole/vidfeed/internal/pager"
	"github.com/mmcdole/vidfeed/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
)

// ChromeHeight is the rows taken by the tab bar and the footer
const ChromeHeight = 3

const (
	statusDuration      = 3 * time.Second
	errorStatusDuration = 5 * time.Second
)

// Options wires the model to its services
type Options struct {
	Catalog *feed.Catalog
	Account domain.AccountService
	Recents RecentSearches
	User    *domain.User

	// Timeout bounds every network call made from the UI
	Timeout time.Duration
	// DefaultTab is the tab shown at startup
	DefaultTab feed.Kind
	// Playlist, when set, adds a tab for that playlist
	Playlist string

	Logger *slog.Logger
}

// overlay holds local edits on top of loaded items. It is shared by
// pointer so badge funcs see updates without reloading.
type overlay struct {
	liked  map[string]bool
	joined map[string]bool
}

func (o *overlay) isLiked(v domain.Video) bool {
	if liked, ok := o.liked[v.ID]; ok {
		return liked
	}
	return v.Liked
}

func (o *overlay) isJoined(e domain.LiveEvent) bool {
	return e.Joined || o.joined[e.ID]
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	account domain.AccountService
	user    *domain.User
	timeout time.Duration
	logger  *slog.Logger

	// Tabs
	feeds   []feedView
	active  int
	channel *listFeed[domain.Video]
	history *listFeed[domain.HistoryEntry]
	overlay *overlay

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	statusSeq    int
	SpinnerFrame int
}

// NewModel creates a new application model
func NewModel(opts Options) (Model, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	m := Model{
		State:   StateBrowsing,
		account: opts.Account,
		user:    opts.User,
		timeout: opts.Timeout,
		logger:  opts.Logger,
		overlay: &overlay{liked: make(map[string]bool), joined: make(map[string]bool)},
	}

	c := opts.Catalog
	for _, kind := range c.Kinds() {
		def := c.Definition(kind)
		switch kind {
		case feed.KindClips:
			m.feeds = append(m.feeds, newClipFeed(def, c.Clips(), m.timeout))

		case feed.KindSearch:
			loader, err := c.Videos(kind, pager.Identity{})
			if err != nil {
				return Model{}, err
			}
			f := newSearchFeed(def, loader, m.timeout, m.videoBadge, opts.Recents)
			f.actions = m.videoActions
			f.help = videoHelp
			m.feeds = append(m.feeds, f)

		case feed.KindHistory:
			f := newListFeed(def, c.History(), m.timeout, func(e domain.HistoryEntry) string {
				return m.videoBadge(e.Video)
			})
			f.actions = m.historyActions
			f.help = [][2]string{{"x", "remove"}}
			m.history = f
			m.feeds = append(m.feeds, f)

		case feed.KindSubscriptions:
			f := newListFeed(def, c.Subscriptions(), m.timeout, nil)
			f.actions = func(ch domain.Channel, msg tea.KeyMsg) (tea.Cmd, bool) {
				if key.Matches(msg, Keys.Enter) {
					return OpenChannelCmd(ch), true
				}
				return nil, false
			}
			f.help = [][2]string{{"enter", "open channel"}}
			m.feeds = append(m.feeds, f)

		case feed.KindLive:
			f := newListFeed(def, c.Live(), m.timeout, m.liveBadge)
			f.actions = m.liveActions
			f.help = [][2]string{{"J", "join"}}
			m.feeds = append(m.feeds, f)

		case feed.KindChannel:
			loader, err := c.Videos(kind, pager.Identity{})
			if err != nil {
				return Model{}, err
			}
			f := newListFeed(def, loader, m.timeout, m.videoBadge)
			f.needsKey = true
			f.emptyText = "Open a channel from Subscriptions (enter) or a video (c)"
			f.actions = m.videoActions
			f.help = videoHelp
			m.channel = f
			m.feeds = append(m.feeds, f)

		case feed.KindPlaylist:
			if opts.Playlist == "" {
				continue
			}
			loader, err := c.Videos(kind, pager.Identity{Key: opts.Playlist})
			if err != nil {
				return Model{}, err
			}
			f := newListFeed(def, loader, m.timeout, m.videoBadge)
			f.actions = m.videoActions
			f.help = videoHelp
			m.feeds = append(m.feeds, f)

		default:
			loader, err := c.Videos(kind, pager.Identity{})
			if err != nil {
				return Model{}, err
			}
			f := newListFeed(def, loader, m.timeout, m.videoBadge)
			f.actions = m.videoActions
			f.help = videoHelp
			m.feeds = append(m.feeds, f)
		}
	}

	if len(m.feeds) == 0 {
		return Model{}, fmt.Errorf("no feeds configured")
	}
	if i := m.feedIndex(opts.DefaultTab); i >= 0 {
		m.active = i
	}
	return m, nil
}

var videoHelp = [][2]string{{"l", "like"}, {"c", "channel"}}

func (m Model) videoBadge(v domain.Video) string {
	if m.overlay.isLiked(v) {
		return styles.LikedBadge
	}
	return ""
}

func (m Model) liveBadge(e domain.LiveEvent) string {
	switch {
	case m.overlay.isJoined(e):
		return styles.JoinedBadge
	case e.IsLive:
		return styles.LiveBadge
	default:
		return ""
	}
}

func (m Model) videoActions(v domain.Video, msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, Keys.Like):
		if m.account == nil {
			return nil, true
		}
		return LikeCmd(m.account, v, !m.overlay.isLiked(v), m.timeout), true
	case key.Matches(msg, Keys.OpenChannel):
		if v.ChannelID == "" {
			return nil, true
		}
		return OpenChannelCmd(domain.Channel{ID: v.ChannelID, Name: v.ChannelName}), true
	}
	return nil, false
}

func (m Model) historyActions(e domain.HistoryEntry, msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, Keys.Remove):
		if m.account == nil {
			return nil, true
		}
		return RemoveFromHistoryCmd(m.account, e, m.timeout), true
	case key.Matches(msg, Keys.Like), key.Matches(msg, Keys.OpenChannel):
		return m.videoActions(e.Video, msg)
	}
	return nil, false
}

func (m Model) liveActions(e domain.LiveEvent, msg tea.KeyMsg) (tea.Cmd, bool) {
	if !key.Matches(msg, Keys.JoinLive) {
		return nil, false
	}
	if m.account == nil || m.overlay.isJoined(e) {
		return nil, true
	}
	return JoinLiveCmd(m.account, e, m.timeout), true
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.feeds[m.active].Activate(),
		TickCmd(100*time.Millisecond),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(100 * time.Millisecond)

	case PageLoadedMsg:
		i := m.feedIndex(msg.Kind)
		if i < 0 {
			return m, nil
		}
		return m, m.feeds[i].HandlePage(msg)

	case ActionDoneMsg:
		return m, m.handleActionDone(msg)

	case OpenChannelMsg:
		return m, m.openChannel(msg.Channel)

	case ErrMsg:
		m.logger.Error("ui error", "error", msg.Err, "context", msg.Context)
		return m, m.setStatus(msg.Error(), true)

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.StatusMsg = ""
			m.StatusIsErr = false
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.State == StateHelp {
		if key.Matches(msg, Keys.Help) || key.Matches(msg, Keys.Escape) || key.Matches(msg, Keys.Quit) {
			m.State = StateBrowsing
		}
		return m, nil
	}

	active := m.feeds[m.active]
	if active.Capturing() {
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, active.Update(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil
	case key.Matches(msg, Keys.NextTab):
		return m, m.switchTab(m.active + 1)
	case key.Matches(msg, Keys.PrevTab):
		return m, m.switchTab(m.active - 1)
	}

	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		if r := msg.Runes[0]; r >= '1' && r <= '9' {
			if i := int(r - '1'); i < len(m.feeds) {
				return m, m.switchTab(i)
			}
		}
	}

	return m, active.Update(msg)
}

// switchTab shows the tab at i, wrapping around, and starts its first load
func (m *Model) switchTab(i int) tea.Cmd {
	n := len(m.feeds)
	m.active = ((i % n) + n) % n
	return m.feeds[m.active].Activate()
}

func (m *Model) openChannel(ch domain.Channel) tea.Cmd {
	if m.channel == nil || ch.ID == "" {
		return nil
	}
	title := "Channel"
	if ch.Name != "" {
		title = "Channel: " + ch.Name
	}
	m.active = m.feedIndex(feed.KindChannel)
	return m.channel.open(pager.Identity{Key: ch.ID}, title)
}

func (m *Model) handleActionDone(msg ActionDoneMsg) tea.Cmd {
	if msg.Err != nil {
		m.logger.Warn("action failed", "action", msg.Action, "id", msg.ID, "error", msg.Err)
		return m.setStatus(fmt.Sprintf("Could not %s %q: %v", msg.Action, msg.Title, msg.Err), true)
	}

	var text string
	switch msg.Action {
	case ActionLike:
		m.overlay.liked[msg.ID] = true
		text = "Liked: " + msg.Title
	case ActionUnlike:
		m.overlay.liked[msg.ID] = false
		text = "Unliked: " + msg.Title
	case ActionRemove:
		if m.history != nil {
			m.history.hide(msg.ID)
		}
		text = "Removed from history: " + msg.Title
	case ActionJoinLive:
		m.overlay.joined[msg.ID] = true
		text = "Joined: " + msg.Title
	}
	for _, f := range m.feeds {
		f.Refresh()
	}
	return m.setStatus(text, false)
}

// setStatus shows a transient message in the footer
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.StatusMsg = text
	m.StatusIsErr = isErr
	d := statusDuration
	if isErr {
		d = errorStatusDuration
	}
	return ClearStatusCmd(m.statusSeq, d)
}

func (m *Model) updateLayout() {
	h := m.Height - ChromeHeight
	if h < 1 {
		h = 1
	}
	for _, f := range m.feeds {
		f.SetSize(m.Width, h)
	}
}

func (m Model) feedIndex(kind feed.Kind) int {
	for i, f := range m.feeds {
		if f.Kind() == kind {
			return i
		}
	}
	return -1
}

// ActiveKind returns the kind of the visible tab
func (m Model) ActiveKind() feed.Kind {
	return m.feeds[m.active].Kind()
}
