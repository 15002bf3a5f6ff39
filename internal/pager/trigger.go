package pager

import "context"

// Requester is anything that can be asked for the next page
type Requester interface {
	LoadMore(ctx context.Context) error
}

// Status exposes whether another page can be requested right now
type Status interface {
	CanLoadMore() bool
}

// Progress counts completed fetches. *Loader implements it.
type Progress interface {
	Fetches() int
}

// markOf is the guard key for r: its fetch count when known, else loaded
func markOf(r Requester, loaded int) int {
	if p, ok := r.(Progress); ok {
		return p.Fetches()
	}
	return loaded
}

// fireGuard remembers the progress mark at which a request was last made,
// so a repeated signal before the next fetch completes does not enqueue
// another one. The mark must move on every successful fetch, including a
// page that dedupe reduced to nothing.
type fireGuard struct {
	firedAt int
}

func newFireGuard() fireGuard {
	return fireGuard{firedAt: -1}
}

func (g *fireGuard) claim(mark int) bool {
	if mark <= g.firedAt {
		return false
	}
	g.firedAt = mark
	return true
}

func (g *fireGuard) rearm() {
	g.firedAt = -1
}

// ProximityTrigger fires when a position comes within Lookahead items of
// the end of the loaded sequence (list cursor, carousel index).
type ProximityTrigger struct {
	lookahead int
	guard     fireGuard
}

// NewProximityTrigger creates a trigger with the given lookahead in items
func NewProximityTrigger(lookahead int) *ProximityTrigger {
	if lookahead < 0 {
		lookahead = 0
	}
	return &ProximityTrigger{lookahead: lookahead, guard: newFireGuard()}
}

// Lookahead returns the configured distance in items
func (p *ProximityTrigger) Lookahead() int {
	return p.lookahead
}

// Check reports whether index, out of loaded items, should request more.
// It returns true at most once per progress mark (see Loader.Fetches).
func (p *ProximityTrigger) Check(index, loaded, mark int) bool {
	if loaded > 0 && loaded-1-index > p.lookahead {
		return false
	}
	return p.guard.claim(mark)
}

// Fire checks the position and asks r for more. A failed request re-arms
// the trigger so the next qualifying signal retries.
func (p *ProximityTrigger) Fire(ctx context.Context, r Requester, index, loaded int) error {
	if !p.Check(index, loaded, markOf(r, loaded)) {
		return nil
	}
	if err := r.LoadMore(ctx); err != nil {
		p.Rearm()
		return err
	}
	return nil
}

// Rearm lets the current position fire again
func (p *ProximityTrigger) Rearm() {
	p.guard.rearm()
}

// ScrollTrigger fires when the bottom of the viewport is within Threshold
// units (rows) of the end of the content.
type ScrollTrigger struct {
	threshold int
	guard     fireGuard
}

// NewScrollTrigger creates a trigger with the given distance threshold
func NewScrollTrigger(threshold int) *ScrollTrigger {
	if threshold < 0 {
		threshold = 0
	}
	return &ScrollTrigger{threshold: threshold, guard: newFireGuard()}
}

// Check reports whether the viewport [top, top+height) over content of the
// given length should request more. mark keys the repeat suppression, as in
// ProximityTrigger.Check.
func (s *ScrollTrigger) Check(top, height, content, mark int) bool {
	remaining := content - (top + height)
	if remaining > s.threshold {
		return false
	}
	return s.guard.claim(mark)
}

// Fire checks the viewport and asks r for more, re-arming on failure
func (s *ScrollTrigger) Fire(ctx context.Context, r Requester, top, height, content, loaded int) error {
	if !s.Check(top, height, content, markOf(r, loaded)) {
		return nil
	}
	if err := r.LoadMore(ctx); err != nil {
		s.Rearm()
		return err
	}
	return nil
}

// Rearm lets the current viewport fire again
func (s *ScrollTrigger) Rearm() {
	s.guard.rearm()
}

// ExplicitTrigger backs a "load more" control
type ExplicitTrigger struct{}

// Enabled is the derived interactive state of the control
func (ExplicitTrigger) Enabled(s Status) bool {
	return s.CanLoadMore()
}

// Press requests more when the control is enabled
func (e ExplicitTrigger) Press(ctx context.Context, r interface {
	Requester
	Status
}) error {
	if !e.Enabled(r) {
		return nil
	}
	return r.LoadMore(ctx)
}
