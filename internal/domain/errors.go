package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrServerOffline indicates the API server is unreachable
	ErrServerOffline = errors.New("server is unreachable")

	// ErrAuthFailed indicates the session token was rejected
	ErrAuthFailed = errors.New("authentication token is invalid")

	// ErrNotLoggedIn indicates no session token is stored
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrItemNotFound indicates the requested item does not exist
	ErrItemNotFound = errors.New("item not found")
)
