package domain

import "context"

// AccountService covers the per-user actions available from list views
type AccountService interface {
	// Me returns the user behind the current token
	Me(ctx context.Context) (*User, error)

	// Like marks a video as liked
	Like(ctx context.Context, videoID string) error

	// Unlike removes a like
	Unlike(ctx context.Context, videoID string) error

	// RemoveFromHistory deletes one history record
	RemoveFromHistory(ctx context.Context, entryID string) error

	// JoinLive registers the user as a participant of a live event
	JoinLive(ctx context.Context, eventID string) error
}

// SessionStore persists the login session between runs
type SessionStore interface {
	// Token returns the stored bearer token, or "" when logged out
	Token() string

	// Save replaces the stored session
	Save(token string, user *User) error

	// Clear forgets the session
	Clear() error
}
