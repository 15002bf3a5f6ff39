// Package feed defines the list views of the app and builds a loader for
// each of them over the API collections.
package feed

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/vidfeed/internal/api"
	"github.com/mmcdole/vidfeed/internal/config"
	"github.com/mmcdole/vidfeed/internal/domain"
	"github.com/mmcdole/vidfeed/internal/pager"
)

// Kind names a list view
type Kind string

const (
	KindHome          Kind = "home"
	KindClips         Kind = "clips"
	KindSearch        Kind = "search"
	KindLiked         Kind = "liked"
	KindHistory       Kind = "history"
	KindSubscriptions Kind = "subscriptions"
	KindLive          Kind = "live"
	KindChannel       Kind = "channel"
	KindPlaylist      Kind = "playlist"
)

// Trigger is how a view asks for the next page
type Trigger int

const (
	TriggerScroll    Trigger = iota // rows left under the viewport
	TriggerProximity                // cursor distance from the last item
	TriggerExplicit                 // "load more" key
	TriggerPaged                    // previous/next pages
)

func (t Trigger) String() string {
	switch t {
	case TriggerScroll:
		return "scroll"
	case TriggerProximity:
		return "proximity"
	case TriggerExplicit:
		return "explicit"
	case TriggerPaged:
		return "paged"
	default:
		return "unknown"
	}
}

// Definition describes the paging behaviour of one view
type Definition struct {
	Kind      Kind
	Title     string
	PageSize  int
	Style     pager.TokenStyle
	Lookahead int // Items for proximity triggers, rows for scroll triggers
	Trigger   Trigger
	Dedupe    bool // Drop items already loaded, by ID
	Pacing    time.Duration
}

// defaults is the built-in table, in tab order
var defaults = []Definition{
	{Kind: KindHome, Title: "Home", PageSize: 24, Style: pager.OffsetTokens, Lookahead: 4, Trigger: TriggerScroll, Dedupe: true},
	{Kind: KindClips, Title: "Clips", PageSize: 5, Style: pager.OffsetTokens, Lookahead: 2, Trigger: TriggerProximity, Dedupe: true},
	{Kind: KindSearch, Title: "Search", PageSize: 10, Style: pager.PageNumberTokens, Trigger: TriggerPaged},
	{Kind: KindLiked, Title: "Liked", PageSize: 10, Style: pager.OffsetTokens, Trigger: TriggerExplicit},
	{Kind: KindHistory, Title: "History", PageSize: 20, Style: pager.OffsetTokens, Lookahead: 4, Trigger: TriggerScroll},
	{Kind: KindSubscriptions, Title: "Subscriptions", PageSize: 20, Style: pager.OffsetTokens, Lookahead: 3, Trigger: TriggerProximity},
	{Kind: KindLive, Title: "Live", PageSize: 12, Style: pager.PageNumberTokens, Trigger: TriggerExplicit},
	{Kind: KindChannel, Title: "Channel", PageSize: 12, Style: pager.PageNumberTokens, Lookahead: 3, Trigger: TriggerProximity},
	{Kind: KindPlaylist, Title: "Playlist", PageSize: 20, Style: pager.OffsetTokens, Lookahead: 4, Trigger: TriggerScroll},
}

// ParseKind resolves a view name such as a config default_tab
func ParseKind(s string) (Kind, bool) {
	for _, d := range defaults {
		if string(d.Kind) == s {
			return d.Kind, true
		}
	}
	return "", false
}

// Sources are the remote collections behind the views
type Sources struct {
	Home          pager.Fetcher[domain.Video]
	Search        pager.Fetcher[domain.Video]
	Liked         pager.Fetcher[domain.Video]
	Channel       pager.Fetcher[domain.Video]
	Playlist      pager.Fetcher[domain.Video]
	Clips         pager.Fetcher[domain.Clip]
	History       pager.Fetcher[domain.HistoryEntry]
	Live          pager.Fetcher[domain.LiveEvent]
	Subscriptions pager.Fetcher[domain.Channel]
}

// SourcesFrom wires every view to its API collection
func SourcesFrom(c *api.Client) Sources {
	return Sources{
		Home:          c.Home(),
		Search:        c.Search(),
		Liked:         c.Liked(),
		Channel:       c.ChannelVideos(),
		Playlist:      c.PlaylistVideos(),
		Clips:         c.Clips(),
		History:       c.History(),
		Live:          c.Live(),
		Subscriptions: c.Subscriptions(),
	}
}

// Catalog builds loaders for the views
type Catalog struct {
	defs   map[Kind]Definition
	order  []Kind
	src    Sources
	logger *slog.Logger
}

// NewCatalog creates a catalog. Page size, lookahead and pacing overrides
// are taken from cfg when set.
func NewCatalog(src Sources, cfg *config.Config, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{
		defs:   make(map[Kind]Definition, len(defaults)),
		src:    src,
		logger: logger,
	}
	for _, d := range defaults {
		if cfg != nil {
			override := cfg.Feed(string(d.Kind))
			if override.PageSize > 0 {
				d.PageSize = override.PageSize
			}
			if override.Lookahead > 0 {
				d.Lookahead = override.Lookahead
			}
			if override.Pacing > 0 {
				d.Pacing = override.Pacing
			}
		}
		c.defs[d.Kind] = d
		c.order = append(c.order, d.Kind)
	}
	return c
}

// Definition returns the definition of kind
func (c *Catalog) Definition(kind Kind) Definition {
	return c.defs[kind]
}

// Kinds returns all views in tab order
func (c *Catalog) Kinds() []Kind {
	out := make([]Kind, len(c.order))
	copy(out, c.order)
	return out
}

// Videos builds a loader for one of the video views. The loader starts in
// the idle phase, keyed by identity.
func (c *Catalog) Videos(kind Kind, identity pager.Identity) (*pager.Loader[domain.Video], error) {
	var src pager.Fetcher[domain.Video]
	switch kind {
	case KindHome:
		src = c.src.Home
	case KindSearch:
		src = c.src.Search
	case KindLiked:
		src = c.src.Liked
	case KindChannel:
		src = c.src.Channel
	case KindPlaylist:
		src = c.src.Playlist
	default:
		return nil, fmt.Errorf("feed %q does not list videos", kind)
	}
	if src == nil {
		return nil, fmt.Errorf("feed %q has no source", kind)
	}
	return build(c, kind, src, identity, domain.Video.GetID), nil
}

// Clips builds the clip carousel loader
func (c *Catalog) Clips() *pager.Loader[domain.Clip] {
	return build(c, KindClips, c.src.Clips, pager.Identity{}, domain.Clip.GetID)
}

// History builds the watch history loader
func (c *Catalog) History() *pager.Loader[domain.HistoryEntry] {
	return build(c, KindHistory, c.src.History, pager.Identity{}, domain.HistoryEntry.GetID)
}

// Live builds the live events loader
func (c *Catalog) Live() *pager.Loader[domain.LiveEvent] {
	return build(c, KindLive, c.src.Live, pager.Identity{}, domain.LiveEvent.GetID)
}

// Subscriptions builds the subscribed channels loader
func (c *Catalog) Subscriptions() *pager.Loader[domain.Channel] {
	return build(c, KindSubscriptions, c.src.Subscriptions, pager.Identity{}, domain.Channel.GetID)
}

func build[T any](c *Catalog, kind Kind, src pager.Fetcher[T], identity pager.Identity, key func(T) string) *pager.Loader[T] {
	def := c.defs[kind]
	opts := []pager.Option[T]{
		pager.WithLogger[T](c.logger.With("feed", string(kind))),
	}
	if def.Dedupe {
		opts = append(opts, pager.WithDedupe(key))
	}
	if def.Pacing > 0 {
		opts = append(opts, pager.WithPacing[T](def.Pacing))
	}
	l := pager.New(src, def.PageSize, def.Style, opts...)
	l.Reset(identity)
	return l
}
