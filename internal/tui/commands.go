package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/vidfeed/internal/domain"
	"github.com/mmcdole/vidfeed/internal/feed"
	"github.com/mmcdole/vidfeed/internal/pager"
)

// Command factories for async operations

// FetchPageCmd runs the network half of a claimed ticket off the UI loop.
// The outcome is applied later, in Update, through PageLoadedMsg.
func FetchPageCmd[T any](kind feed.Kind, l *pager.Loader[T], t pager.Ticket, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		o := l.Fetch(ctx, t)
		return PageLoadedMsg{
			Kind:  kind,
			Epoch: t.Epoch,
			Err:   o.Err,
			apply: func() bool { return l.Complete(o) },
		}
	}
}

// LikeCmd likes or unlikes a video
func LikeCmd(svc domain.AccountService, v domain.Video, like bool, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if like {
			return ActionDoneMsg{Action: ActionLike, ID: v.ID, Title: v.Title, Err: svc.Like(ctx, v.ID)}
		}
		return ActionDoneMsg{Action: ActionUnlike, ID: v.ID, Title: v.Title, Err: svc.Unlike(ctx, v.ID)}
	}
}

// RemoveFromHistoryCmd deletes a history entry
func RemoveFromHistoryCmd(svc domain.AccountService, e domain.HistoryEntry, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := svc.RemoveFromHistory(ctx, e.ID)
		return ActionDoneMsg{Action: ActionRemove, ID: e.ID, Title: e.Video.Title, Err: err}
	}
}

// JoinLiveCmd joins a live event
func JoinLiveCmd(svc domain.AccountService, e domain.LiveEvent, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := svc.JoinLive(ctx, e.ID)
		return ActionDoneMsg{Action: ActionJoinLive, ID: e.ID, Title: e.Title, Err: err}
	}
}

// OpenChannelCmd emits an OpenChannelMsg
func OpenChannelCmd(ch domain.Channel) tea.Cmd {
	return func() tea.Msg {
		return OpenChannelMsg{Channel: ch}
	}
}

// ClearStatusCmd clears the status bar after a delay
func ClearStatusCmd(seq int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}

// TickCmd drives the spinner animation
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
