// Package pager implements an incremental collection loader: a paged remote
// collection exposed as one growing, ordered sequence.
//
// A Loader owns a single fetch slot. Begin claims it, Fetch performs the
// network call without holding any lock, and Complete applies the result.
// Every Reset advances an epoch; outcomes from an older epoch are dropped on
// arrival, which is the only form of cancellation the loader needs.
package pager

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Phase is the loader's coarse state
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoadingInitial
	PhaseReady
	PhaseLoadingMore
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoadingInitial:
		return "loading-initial"
	case PhaseReady:
		return "ready"
	case PhaseLoadingMore:
		return "loading-more"
	default:
		return "unknown"
	}
}

// LoadKind distinguishes the first page from subsequent ones
type LoadKind int

const (
	LoadInitial LoadKind = iota
	LoadMore
)

// Ticket is a claimed fetch slot
type Ticket struct {
	Kind    LoadKind
	Epoch   uint64
	Request Request
}

// Outcome is the result of running a Ticket
type Outcome[T any] struct {
	Ticket Ticket
	Page   Page[T]
	Err    error
}

// State is a read-only snapshot for rendering
type State[T any] struct {
	Items            []T
	Identity         Identity
	Phase            Phase
	Epoch            uint64
	Next             Token
	Fetches          int // successful fetches in this epoch
	IsInitialLoading bool
	IsLoadingMore    bool
	HasMore          bool
	LastError        string
}

// Loader is the load state machine for one paged collection
type Loader[T any] struct {
	unit     fetchUnit[T]
	pageSize int
	style    TokenStyle
	logger   *slog.Logger
	keyFn    func(T) string

	mu        sync.Mutex
	identity  Identity
	epoch     uint64
	phase     Phase
	items     []T
	seen      map[string]struct{}
	next      Token
	exhausted bool
	fetching  bool
	fetches   int
	lastErr   error
}

// Option configures a Loader
type Option[T any] func(*Loader[T])

// WithLogger sets the logger used for fetch diagnostics
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(l *Loader[T]) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithDedupe drops items whose key has already been loaded in this epoch
func WithDedupe[T any](key func(T) string) Option[T] {
	return func(l *Loader[T]) {
		l.keyFn = key
	}
}

// WithPacing delays every fetch by d before the network call
func WithPacing[T any](d time.Duration) Option[T] {
	return func(l *Loader[T]) {
		l.unit.pacing = d
	}
}

// New creates a loader over fetcher. pageSize must be positive.
func New[T any](fetcher Fetcher[T], pageSize int, style TokenStyle, opts ...Option[T]) *Loader[T] {
	if pageSize <= 0 {
		panic("pager: page size must be positive")
	}
	l := &Loader[T]{
		unit:     fetchUnit[T]{fetcher: fetcher},
		pageSize: pageSize,
		style:    style,
		logger:   slog.Default(),
		next:     style.Initial(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.unit.logger = l.logger
	return l
}

// PageSize returns the fixed page size of this loader
func (l *Loader[T]) PageSize() int {
	return l.pageSize
}

// Begin claims the fetch slot. It returns false, without side effects, when
// a fetch is outstanding, the collection is exhausted, or an initial load is
// requested outside the idle phase. LoadMore from the idle phase becomes the
// initial load.
func (l *Loader[T]) Begin(kind LoadKind) (Ticket, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fetching {
		return Ticket{}, false
	}
	if l.phase == PhaseIdle {
		kind = LoadInitial
	} else if kind == LoadInitial {
		return Ticket{}, false
	}
	if kind == LoadMore && l.exhausted {
		return Ticket{}, false
	}

	l.fetching = true
	if kind == LoadInitial {
		l.phase = PhaseLoadingInitial
	} else {
		l.phase = PhaseLoadingMore
	}

	return Ticket{
		Kind:  kind,
		Epoch: l.epoch,
		Request: Request{
			Token:    l.next,
			PageSize: l.pageSize,
			Identity: l.identity,
		},
	}, true
}

// Fetch runs the network call for a claimed ticket. No lock is held.
func (l *Loader[T]) Fetch(ctx context.Context, t Ticket) Outcome[T] {
	page, err := l.unit.fetch(ctx, t.Request)
	return Outcome[T]{Ticket: t, Page: page, Err: err}
}

// Complete applies an outcome. Outcomes from a superseded epoch are
// discarded and Complete returns false.
func (l *Loader[T]) Complete(o Outcome[T]) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if o.Ticket.Epoch != l.epoch || !l.fetching {
		l.logger.Debug("discarding stale page",
			"epoch", o.Ticket.Epoch, "current", l.epoch, "identity", o.Ticket.Request.Identity.Key)
		return false
	}
	l.fetching = false

	if o.Err != nil {
		l.lastErr = o.Err
		if o.Ticket.Kind == LoadInitial {
			l.phase = PhaseIdle
		} else {
			l.phase = PhaseReady
		}
		l.logger.Warn("page fetch failed",
			"token", o.Ticket.Request.Token.String(), "identity", l.identity.Key, "error", o.Err)
		return true
	}

	if o.Ticket.Kind == LoadInitial {
		l.items = nil
		l.seen = nil
	}
	l.items = append(l.items, l.admit(o.Page.Items)...)
	l.next = o.Page.Next
	l.exhausted = o.Page.IsLastPage
	l.fetches++
	l.lastErr = nil
	l.phase = PhaseReady
	return true
}

// admit filters a batch through the optional dedupe key
func (l *Loader[T]) admit(batch []T) []T {
	if l.keyFn == nil {
		return batch
	}
	if l.seen == nil {
		l.seen = make(map[string]struct{}, len(batch))
	}
	kept := make([]T, 0, len(batch))
	for _, item := range batch {
		k := l.keyFn(item)
		if _, dup := l.seen[k]; dup {
			continue
		}
		l.seen[k] = struct{}{}
		kept = append(kept, item)
	}
	return kept
}

// LoadInitial fetches the first page and replaces the items. It is a no-op
// unless the loader is idle.
func (l *Loader[T]) LoadInitial(ctx context.Context) error {
	return l.run(ctx, LoadInitial)
}

// LoadMore fetches the next page and appends it. It is a no-op while a fetch
// is outstanding or once the collection is exhausted.
func (l *Loader[T]) LoadMore(ctx context.Context) error {
	return l.run(ctx, LoadMore)
}

func (l *Loader[T]) run(ctx context.Context, kind LoadKind) error {
	t, ok := l.Begin(kind)
	if !ok {
		return nil
	}
	o := l.Fetch(ctx, t)
	if !l.Complete(o) {
		return nil
	}
	return o.Err
}

// Reset discards the collection and starts a new epoch for identity
func (l *Loader[T]) Reset(identity Identity) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.epoch++
	l.identity = identity
	l.items = nil
	l.seen = nil
	l.next = l.style.Initial()
	l.exhausted = false
	l.fetching = false
	l.fetches = 0
	l.lastErr = nil
	l.phase = PhaseIdle
}

// CanLoadMore reports whether a LoadMore call would issue a fetch
func (l *Loader[T]) CanLoadMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.fetching && !l.exhausted
}

// AckError clears the last error once it has been shown
func (l *Loader[T]) AckError() {
	l.mu.Lock()
	l.lastErr = nil
	l.mu.Unlock()
}

// Fetches returns the number of successful fetches since the last Reset.
// It grows even when dedupe admits nothing from a page.
func (l *Loader[T]) Fetches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fetches
}

// Len returns the number of loaded items
func (l *Loader[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// State returns a snapshot of the collection
func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()

	items := make([]T, len(l.items))
	copy(items, l.items)

	s := State[T]{
		Items:            items,
		Identity:         l.identity,
		Phase:            l.phase,
		Epoch:            l.epoch,
		Next:             l.next,
		Fetches:          l.fetches,
		IsInitialLoading: l.phase == PhaseLoadingInitial,
		IsLoadingMore:    l.phase == PhaseLoadingMore,
		HasMore:          !l.exhausted,
	}
	if l.lastErr != nil {
		s.LastError = l.lastErr.Error()
	}
	return s
}
