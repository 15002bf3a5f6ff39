package pager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceSource serves a fixed collection page by page and records requests
type sliceSource struct {
	mu       sync.Mutex
	items    []string
	hasMore  *bool
	errs     []error // consumed one per call while non-empty
	gate     chan struct{}
	started  chan struct{}
	requests []Request
}

func newSliceSource(n int) *sliceSource {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("item-%02d", i)
	}
	return &sliceSource{items: items}
}

func (s *sliceSource) Fetch(ctx context.Context, req Request) (Batch[string], error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	var err error
	if len(s.errs) > 0 {
		err, s.errs = s.errs[0], s.errs[1:]
	}
	gate, started := s.gate, s.started
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Batch[string]{}, ctx.Err()
		}
	}
	if err != nil {
		return Batch[string]{}, err
	}

	start := req.Token.Value
	if req.Token.Style == PageNumberTokens {
		start = (req.Token.Value - 1) * req.PageSize
	}
	if start > len(s.items) {
		start = len(s.items)
	}
	end := start + req.PageSize
	if end > len(s.items) {
		end = len(s.items)
	}
	page := make([]string, end-start)
	copy(page, s.items[start:end])
	return Batch[string]{Items: page, HasMore: s.hasMore}, nil
}

func (s *sliceSource) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func boolPtr(b bool) *bool { return &b }

func TestLoadMore_SingleFlight(t *testing.T) {
	src := newSliceSource(50)
	src.gate = make(chan struct{})
	src.started = make(chan struct{}, 1)
	l := New[string](src, 10, OffsetTokens)

	done := make(chan error, 1)
	go func() { done <- l.LoadMore(context.Background()) }()
	<-src.started

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.LoadMore(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.calls(), "only the first call should reach the source")
	assert.False(t, l.CanLoadMore())

	close(src.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, src.calls())
	assert.Len(t, l.State().Items, 10)
}

func TestLoadMore_ShortBatchExhausts(t *testing.T) {
	src := newSliceSource(4)
	l := New[string](src, 10, OffsetTokens)

	require.NoError(t, l.LoadMore(context.Background()))
	state := l.State()
	assert.Len(t, state.Items, 4)
	assert.False(t, state.HasMore)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.LoadMore(context.Background()))
	}
	assert.Equal(t, 1, src.calls(), "no fetch past exhaustion")
	assert.False(t, l.CanLoadMore())
}

func TestLoadMore_PreservesArrivalOrder(t *testing.T) {
	pages := [][]string{{"a", "b", "c"}, {"d", "e"}}
	var call int
	fetcher := FetcherFunc[string](func(ctx context.Context, req Request) (Batch[string], error) {
		p := pages[call]
		call++
		return Batch[string]{Items: p}, nil
	})
	l := New[string](fetcher, 3, OffsetTokens)

	require.NoError(t, l.LoadMore(context.Background()))
	require.NoError(t, l.LoadMore(context.Background()))

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, l.State().Items)
}

func TestLoadMore_DuplicatesKeptByDefault(t *testing.T) {
	pages := [][]string{{"a", "b"}, {"b", "c"}}
	var call int
	fetcher := FetcherFunc[string](func(ctx context.Context, req Request) (Batch[string], error) {
		p := pages[call]
		call++
		return Batch[string]{Items: p}, nil
	})

	l := New[string](fetcher, 2, OffsetTokens)
	require.NoError(t, l.LoadMore(context.Background()))
	require.NoError(t, l.LoadMore(context.Background()))
	assert.Equal(t, []string{"a", "b", "b", "c"}, l.State().Items)
}

func TestLoadMore_WithDedupe(t *testing.T) {
	pages := [][]string{{"a", "b"}, {"b", "c"}}
	var call int
	fetcher := FetcherFunc[string](func(ctx context.Context, req Request) (Batch[string], error) {
		p := pages[call]
		call++
		return Batch[string]{Items: p}, nil
	})

	l := New[string](fetcher, 2, OffsetTokens, WithDedupe(func(s string) string { return s }))
	require.NoError(t, l.LoadMore(context.Background()))
	require.NoError(t, l.LoadMore(context.Background()))
	assert.Equal(t, []string{"a", "b", "c"}, l.State().Items)
	// the token still advances by what the source returned
	assert.Equal(t, 4, l.State().Next.Value)
}

func TestReset_DiscardsStaleResponse(t *testing.T) {
	byKey := map[string][]string{
		"x": {"x1", "x2"},
		"y": {"y1"},
	}
	fetcher := FetcherFunc[string](func(ctx context.Context, req Request) (Batch[string], error) {
		return Batch[string]{Items: byKey[req.Identity.Key]}, nil
	})
	l := New[string](fetcher, 10, OffsetTokens)
	l.Reset(Identity{Key: "x"})

	ticket, ok := l.Begin(LoadInitial)
	require.True(t, ok)
	stale := l.Fetch(context.Background(), ticket)

	l.Reset(Identity{Key: "y"})
	require.NoError(t, l.LoadInitial(context.Background()))

	assert.False(t, l.Complete(stale), "response from superseded epoch must be dropped")
	state := l.State()
	assert.Equal(t, []string{"y1"}, state.Items)
	assert.Equal(t, "y", state.Identity.Key)
}

func TestReset_WhileFetchInFlight(t *testing.T) {
	src := newSliceSource(30)
	src.gate = make(chan struct{})
	src.started = make(chan struct{}, 2)
	l := New[string](src, 10, OffsetTokens)
	l.Reset(Identity{Key: "x"})

	done := make(chan error, 1)
	go func() { done <- l.LoadInitial(context.Background()) }()
	<-src.started

	l.Reset(Identity{Key: "y"})
	assert.True(t, l.CanLoadMore(), "reset frees the fetch slot")
	assert.Empty(t, l.State().Items)

	close(src.gate)
	require.NoError(t, <-done, "a discarded response is not an error")
	assert.Empty(t, l.State().Items, "stale payload never merged")
	assert.Equal(t, PhaseIdle, l.State().Phase)

	require.NoError(t, l.LoadInitial(context.Background()))
	<-src.started
	assert.Len(t, l.State().Items, 10)
	assert.Equal(t, "y", src.requests[1].Identity.Key)
}

func TestLoadInitial_Scenario(t *testing.T) {
	src := newSliceSource(40)
	src.hasMore = boolPtr(true)
	l := New[string](src, 10, OffsetTokens)

	require.NoError(t, l.LoadInitial(context.Background()))

	state := l.State()
	assert.Len(t, state.Items, 10)
	assert.True(t, state.HasMore)
	assert.False(t, state.IsInitialLoading)
	assert.False(t, state.IsLoadingMore)
	assert.Equal(t, PhaseReady, state.Phase)
	assert.Empty(t, state.LastError)
}

func TestLoadInitial_OnlyFromIdle(t *testing.T) {
	src := newSliceSource(40)
	l := New[string](src, 10, OffsetTokens)

	require.NoError(t, l.LoadInitial(context.Background()))
	require.NoError(t, l.LoadInitial(context.Background()))
	assert.Equal(t, 1, src.calls())
	assert.Len(t, l.State().Items, 10)
}

func TestLoadMore_FinalPageScenario(t *testing.T) {
	src := newSliceSource(23)
	l := New[string](src, 10, OffsetTokens)

	var sizes []int
	prev := 0
	for i := 0; i < 3; i++ {
		require.NoError(t, l.LoadMore(context.Background()))
		n := len(l.State().Items)
		sizes = append(sizes, n-prev)
		prev = n
	}
	assert.Equal(t, []int{10, 10, 3}, sizes)
	assert.False(t, l.State().HasMore)

	require.NoError(t, l.LoadMore(context.Background()))
	assert.Equal(t, 3, src.calls())
	assert.Len(t, l.State().Items, 23)
}

func TestLoadMore_PageNumberTokens(t *testing.T) {
	src := newSliceSource(23)
	l := New[string](src, 10, PageNumberTokens)

	for i := 0; i < 4; i++ {
		require.NoError(t, l.LoadMore(context.Background()))
	}

	require.Equal(t, 3, src.calls())
	assert.Equal(t, 1, src.requests[0].Token.Value)
	assert.Equal(t, 2, src.requests[1].Token.Value)
	assert.Equal(t, 3, src.requests[2].Token.Value)
	assert.Len(t, l.State().Items, 23)
}

func TestLoadMore_FailureThenRetry(t *testing.T) {
	src := newSliceSource(30)
	l := New[string](src, 10, OffsetTokens)
	require.NoError(t, l.LoadInitial(context.Background()))
	before := l.State()

	src.errs = []error{&RejectedError{Status: 429, Message: "rate limited"}}
	err := l.LoadMore(context.Background())
	require.Error(t, err)

	after := l.State()
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.Next, after.Next, "token unchanged after failure")
	assert.Equal(t, "rate limited", after.LastError)
	assert.False(t, after.IsLoadingMore)
	assert.True(t, l.CanLoadMore())

	require.NoError(t, l.LoadMore(context.Background()))
	assert.Len(t, l.State().Items, 20)
	assert.Empty(t, l.State().LastError)
	assert.Equal(t, src.requests[1].Token, src.requests[2].Token, "retry re-requests the same page")
}

func TestLoadInitial_FailureReturnsToIdle(t *testing.T) {
	src := newSliceSource(30)
	src.errs = []error{fmt.Errorf("%w: connection refused", ErrNetwork)}
	l := New[string](src, 10, OffsetTokens)

	err := l.LoadInitial(context.Background())
	require.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, PhaseIdle, l.State().Phase)
	assert.Contains(t, l.State().LastError, "connection refused")

	require.NoError(t, l.LoadInitial(context.Background()))
	assert.Len(t, l.State().Items, 10)
}

func TestAckError(t *testing.T) {
	src := newSliceSource(30)
	src.errs = []error{&RejectedError{Status: 500, Message: "boom"}}
	l := New[string](src, 10, OffsetTokens)

	_ = l.LoadMore(context.Background())
	assert.Equal(t, "boom", l.State().LastError)
	l.AckError()
	assert.Empty(t, l.State().LastError)
}

func TestFetch_ShapeMismatchBecomesLastPage(t *testing.T) {
	fetcher := FetcherFunc[string](func(ctx context.Context, req Request) (Batch[string], error) {
		return Batch[string]{}, fmt.Errorf("decode videos: %w", ErrShapeMismatch)
	})
	l := New[string](fetcher, 10, OffsetTokens)

	require.NoError(t, l.LoadMore(context.Background()))
	state := l.State()
	assert.Empty(t, state.Items)
	assert.False(t, state.HasMore)
	assert.Empty(t, state.LastError)
}

func TestFetch_UnknownErrorsAreNetworkErrors(t *testing.T) {
	fetcher := FetcherFunc[string](func(ctx context.Context, req Request) (Batch[string], error) {
		return Batch[string]{}, errors.New("dial tcp: i/o timeout")
	})
	l := New[string](fetcher, 10, OffsetTokens)

	err := l.LoadMore(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestFetch_HasMoreFalseEndsFullPage(t *testing.T) {
	src := newSliceSource(40)
	src.hasMore = boolPtr(false)
	l := New[string](src, 10, OffsetTokens)

	require.NoError(t, l.LoadMore(context.Background()))
	assert.Len(t, l.State().Items, 10)
	assert.False(t, l.State().HasMore)
}

func TestFetch_ReceivedCountDrivesPaging(t *testing.T) {
	var reqs []Request
	src := FetcherFunc[string](func(ctx context.Context, req Request) (Batch[string], error) {
		reqs = append(reqs, req)
		if req.Token.Value == 0 {
			// three records sent, one unusable
			return Batch[string]{Items: []string{"a", "c"}, Received: 3}, nil
		}
		return Batch[string]{Items: []string{"d"}}, nil
	})
	l := New[string](src, 3, OffsetTokens)

	require.NoError(t, l.LoadInitial(context.Background()))
	st := l.State()
	assert.Equal(t, []string{"a", "c"}, st.Items)
	assert.True(t, st.HasMore, "a full page is not the last one")
	assert.Equal(t, 3, st.Next.Value, "offset moves past every record sent")

	require.NoError(t, l.LoadMore(context.Background()))
	require.Len(t, reqs, 2)
	assert.Equal(t, 3, reqs[1].Token.Value)
	assert.Equal(t, []string{"a", "c", "d"}, l.State().Items)
	assert.False(t, l.State().HasMore)
}

func TestFetches_CountsPagesPerEpoch(t *testing.T) {
	l := New[string](newSliceSource(30), 10, OffsetTokens)
	assert.Equal(t, 0, l.Fetches())

	require.NoError(t, l.LoadInitial(context.Background()))
	require.NoError(t, l.LoadMore(context.Background()))
	assert.Equal(t, 2, l.Fetches())
	assert.Equal(t, 2, l.State().Fetches)

	l.Reset(Identity{Key: "other"})
	assert.Equal(t, 0, l.Fetches())
}

func TestFetch_PacingHonorsContext(t *testing.T) {
	src := newSliceSource(40)
	l := New[string](src, 10, OffsetTokens, WithPacing[string](time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.LoadMore(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, src.calls())
	assert.True(t, l.CanLoadMore())
}

func TestToken_Advance(t *testing.T) {
	off := OffsetTokens.Initial()
	assert.Equal(t, 0, off.Value)
	assert.Equal(t, 7, off.Advance(7).Value)
	assert.Equal(t, 7, off.Advance(7).Advance(0).Value)

	page := PageNumberTokens.Initial()
	assert.Equal(t, 1, page.Value)
	assert.Equal(t, 2, page.Advance(3).Value)
	assert.True(t, page.IsInitial())
	assert.False(t, page.Advance(3).IsInitial())
}

func TestIdentity_Equal(t *testing.T) {
	a := Identity{Key: "q", Filters: map[string]string{"sort": "new"}}
	b := Identity{Key: "q", Filters: map[string]string{"sort": "new"}}
	c := Identity{Key: "q", Filters: map[string]string{"sort": "top"}}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(Identity{Key: "q"}))
}
