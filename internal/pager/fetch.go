package pager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Identity is the key a collection belongs to (search query, channel ID,
// playlist ID). Filters are forwarded to the source with every request.
type Identity struct {
	Key     string
	Filters map[string]string
}

// Equal reports whether two identities address the same collection
func (id Identity) Equal(other Identity) bool {
	if id.Key != other.Key || len(id.Filters) != len(other.Filters) {
		return false
	}
	for k, v := range id.Filters {
		if ov, ok := other.Filters[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Request describes one page fetch
type Request struct {
	Token    Token
	PageSize int
	Identity Identity
}

// Batch is what a Fetcher returns for one request.
// HasMore is nil when the source did not say.
type Batch[T any] struct {
	Items   []T
	HasMore *bool
	// Received is the number of records the source sent, including any
	// the Fetcher could not turn into items. Zero means len(Items).
	Received int
}

// received is the raw record count that paging advances by
func (b Batch[T]) received() int {
	if b.Received > len(b.Items) {
		return b.Received
	}
	return len(b.Items)
}

// Fetcher retrieves one page of a remote collection
type Fetcher[T any] interface {
	Fetch(ctx context.Context, req Request) (Batch[T], error)
}

// FetcherFunc adapts a plain function to the Fetcher interface
type FetcherFunc[T any] func(ctx context.Context, req Request) (Batch[T], error)

// Fetch calls f
func (f FetcherFunc[T]) Fetch(ctx context.Context, req Request) (Batch[T], error) {
	return f(ctx, req)
}

// Page is the normalized result of one fetch
type Page[T any] struct {
	Items      []T
	Next       Token
	IsLastPage bool
}

// fetchUnit issues exactly one Fetcher call per invocation and classifies
// the outcome. It never retries.
type fetchUnit[T any] struct {
	fetcher Fetcher[T]
	pacing  time.Duration
	logger  *slog.Logger
}

func (u *fetchUnit[T]) fetch(ctx context.Context, req Request) (Page[T], error) {
	if u.pacing > 0 {
		timer := time.NewTimer(u.pacing)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Page[T]{}, ctx.Err()
		case <-timer.C:
		}
	}

	start := time.Now()
	batch, err := u.fetcher.Fetch(ctx, req)
	if err != nil {
		return u.classify(req, err)
	}

	received := batch.received()
	last := received < req.PageSize
	if batch.HasMore != nil && !*batch.HasMore {
		last = true
	}

	u.logger.Debug("page fetched",
		"token", req.Token.String(),
		"identity", req.Identity.Key,
		"count", len(batch.Items),
		"received", received,
		"last", last,
		"elapsed", time.Since(start))

	return Page[T]{
		Items:      batch.Items,
		Next:       req.Token.Advance(received),
		IsLastPage: last,
	}, nil
}

func (u *fetchUnit[T]) classify(req Request, err error) (Page[T], error) {
	switch {
	case errors.Is(err, ErrShapeMismatch):
		u.logger.Warn("response shape mismatch, treating as last page",
			"token", req.Token.String(), "identity", req.Identity.Key, "error", err)
		return Page[T]{Next: req.Token, IsLastPage: true}, nil
	case IsRejected(err), errors.Is(err, ErrNetwork):
		return Page[T]{}, err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Page[T]{}, err
	default:
		return Page[T]{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
}
