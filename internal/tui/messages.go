package tui

import (
	"time"

	"github.com/mmcdole/vidfeed/internal/domain"
	"github.com/mmcdole/vidfeed/internal/feed"
)

// Message types for the TUI

// ErrMsg represents an error outside of page loading
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// PageLoadedMsg carries a finished page fetch back to the UI loop.
// Apply merges it into the owning loader and reports whether it was still
// current; stale pages are dropped there.
type PageLoadedMsg struct {
	Kind  feed.Kind
	Epoch uint64
	Err   error
	apply func() bool
}

// Apply merges the page into its loader
func (m PageLoadedMsg) Apply() bool {
	if m.apply == nil {
		return false
	}
	return m.apply()
}

// Action names for ActionDoneMsg
const (
	ActionLike     = "like"
	ActionUnlike   = "unlike"
	ActionRemove   = "remove"
	ActionJoinLive = "join"
)

// ActionDoneMsg signals that a per-item API action finished
type ActionDoneMsg struct {
	Action string
	ID     string
	Title  string
	Err    error
}

// OpenChannelMsg asks the app to show a channel's uploads
type OpenChannelMsg struct {
	Channel domain.Channel
}

// ClearStatusMsg clears a transient status message
type ClearStatusMsg struct {
	Seq int
}

// TickMsg advances the spinner
type TickMsg time.Time
