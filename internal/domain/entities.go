package domain

import (
	"fmt"
	"time"
)

// User is the account behind the session token
type User struct {
	ID          string
	Username    string
	DisplayName string
}

// Video is a long-form upload as it appears in grids and lists
type Video struct {
	ID          string
	Title       string
	Description string
	ChannelID   string
	ChannelName string
	Duration    time.Duration
	Views       int64
	Likes       int64
	PublishedAt time.Time
	ThumbURL    string
	Liked       bool // Set when the current user has liked the video
}

func (v Video) GetID() string    { return v.ID }
func (v Video) GetTitle() string { return v.Title }

// GetDescription returns "<channel> · <views> · <duration>"
func (v Video) GetDescription() string {
	return joinNonEmpty(v.ChannelName, FormatCount(v.Views, "view"), FormatDuration(v.Duration))
}

// Clip is a short-form vertical video shown in the carousel
type Clip struct {
	ID          string
	Title       string
	ChannelID   string
	ChannelName string
	Duration    time.Duration
	Views       int64
	StreamURL   string
}

func (c Clip) GetID() string    { return c.ID }
func (c Clip) GetTitle() string { return c.Title }

func (c Clip) GetDescription() string {
	return joinNonEmpty(c.ChannelName, FormatCount(c.Views, "view"))
}

// Channel is a publisher a user can subscribe to
type Channel struct {
	ID          string
	Name        string
	Handle      string
	Subscribers int64
	VideoCount  int
}

func (c Channel) GetID() string    { return c.ID }
func (c Channel) GetTitle() string { return c.Name }

func (c Channel) GetDescription() string {
	handle := ""
	if c.Handle != "" {
		handle = "@" + c.Handle
	}
	return joinNonEmpty(handle, FormatCount(c.Subscribers, "subscriber"), FormatCount(int64(c.VideoCount), "video"))
}

// HistoryEntry is one watched video in the user's history
type HistoryEntry struct {
	ID        string // History record ID, distinct from the video ID
	Video     Video
	WatchedAt time.Time
}

func (h HistoryEntry) GetID() string    { return h.ID }
func (h HistoryEntry) GetTitle() string { return h.Video.Title }

func (h HistoryEntry) GetDescription() string {
	watched := ""
	if !h.WatchedAt.IsZero() {
		watched = "watched " + h.WatchedAt.Format("Jan 2 15:04")
	}
	return joinNonEmpty(h.Video.ChannelName, watched)
}

// LiveEvent is a scheduled or running live stream
type LiveEvent struct {
	ID          string
	Title       string
	ChannelID   string
	ChannelName string
	StartsAt    time.Time
	Viewers     int64
	IsLive      bool
	Joined      bool // Set once the current user has joined
}

func (e LiveEvent) GetID() string    { return e.ID }
func (e LiveEvent) GetTitle() string { return e.Title }

func (e LiveEvent) GetDescription() string {
	if e.IsLive {
		return joinNonEmpty(e.ChannelName, "LIVE", FormatCount(e.Viewers, "watching"))
	}
	starts := ""
	if !e.StartsAt.IsZero() {
		starts = "starts " + e.StartsAt.Format("Jan 2 15:04")
	}
	return joinNonEmpty(e.ChannelName, starts)
}

// FormatDuration returns the duration in a compact clock format (1:02:03, 4:05)
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	total := int(d.Seconds())
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatCount renders n with a unit, abbreviating thousands and millions.
// The unit "watching" is never pluralized.
func FormatCount(n int64, unit string) string {
	if n < 0 {
		return ""
	}
	if n != 1 && unit != "watching" {
		unit += "s"
	}
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM %s", float64(n)/1_000_000, unit)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK %s", float64(n)/1_000, unit)
	default:
		return fmt.Sprintf("%d %s", n, unit)
	}
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " · "
		}
		out += p
	}
	return out
}
