package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vidfeed/internal/domain"
	"github.com/mmcdole/vidfeed/internal/pager"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return NewClient(server.URL, StaticToken("secret"), opts...)
}

func firstPage(style pager.TokenStyle, size int) pager.Request {
	return pager.Request{Token: style.Initial(), PageSize: size}
}

func TestHome_SendsOffsetLimitAndAuth(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		fmt.Fprint(w, `{"items":[{"id":"v1","title":"First","channel":{"id":"c1","name":"Gophers"},"duration":61,"views":10},{"id":"v2","title":"Second"}],"hasMore":true}`)
	})

	batch, err := client.Home().Fetch(context.Background(), pager.Request{
		Token:    pager.Token{Style: pager.OffsetTokens, Value: 24},
		PageSize: 24,
	})
	require.NoError(t, err)

	assert.Equal(t, "/videos", got.URL.Path)
	assert.Equal(t, "24", got.URL.Query().Get("offset"))
	assert.Equal(t, "24", got.URL.Query().Get("limit"))
	assert.Empty(t, got.URL.Query().Get("page"))
	assert.Equal(t, "Bearer secret", got.Header.Get("Authorization"))
	_, err = uuid.Parse(got.Header.Get("X-Request-ID"))
	assert.NoError(t, err, "every request should carry a uuid request id")

	require.Len(t, batch.Items, 2)
	assert.Equal(t, "Gophers", batch.Items[0].ChannelName)
	assert.Equal(t, 61*time.Second, batch.Items[0].Duration)
	require.NotNil(t, batch.HasMore)
	assert.True(t, *batch.HasMore)
}

func TestSearch_SendsPageAndQuery(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		fmt.Fprint(w, `{"data":[]}`)
	})

	req := pager.Request{
		Token:    pager.Token{Style: pager.PageNumberTokens, Value: 3},
		PageSize: 10,
		Identity: pager.Identity{Key: "go tutorials", Filters: map[string]string{"sort": "recent"}},
	}
	batch, err := client.Search().Fetch(context.Background(), req)
	require.NoError(t, err)

	q := got.URL.Query()
	assert.Equal(t, "/search", got.URL.Path)
	assert.Equal(t, "go tutorials", q.Get("q"))
	assert.Equal(t, "3", q.Get("page"))
	assert.Equal(t, "10", q.Get("limit"))
	assert.Equal(t, "recent", q.Get("sort"))
	assert.Empty(t, batch.Items)
	assert.Nil(t, batch.HasMore)
}

func TestChannelVideos_EscapesIdentity(t *testing.T) {
	var path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		fmt.Fprint(w, `{"items":[]}`)
	})

	_, err := client.ChannelVideos().Fetch(context.Background(), pager.Request{
		Token:    pager.PageNumberTokens.Initial(),
		PageSize: 12,
		Identity: pager.Identity{Key: "a/b"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/channels/a%2Fb/videos", path)
}

func TestChannelVideos_RequiresIdentity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.ChannelVideos().Fetch(context.Background(), firstPage(pager.PageNumberTokens, 12))
	require.Error(t, err)
	assert.True(t, pager.IsRejected(err))
	assert.Equal(t, "channel id is required", err.Error())
}

func TestFetch_MissingItemsIsShapeMismatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"videos":[{"id":"v1"}]}`)
	})

	_, err := client.Home().Fetch(context.Background(), firstPage(pager.OffsetTokens, 10))
	assert.ErrorIs(t, err, pager.ErrShapeMismatch)
}

func TestFetch_ExplicitFailureFlagSurfacesMessage(t *testing.T) {
	for _, body := range []string{
		`{"ok":false,"message":"Query too short"}`,
		`{"status":false,"message":"Query too short"}`,
	} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		})

		_, err := client.Search().Fetch(context.Background(), firstPage(pager.PageNumberTokens, 10))
		require.Error(t, err, body)
		assert.True(t, pager.IsRejected(err), body)
		assert.Equal(t, "Query too short", err.Error(), "message is shown verbatim")
	}
}

func TestFetch_NumericStatusIsNotFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":200,"items":[{"id":"v1"}]}`)
	})

	batch, err := client.Home().Fetch(context.Background(), firstPage(pager.OffsetTokens, 10))
	require.NoError(t, err)
	assert.Len(t, batch.Items, 1)
}

func TestFetch_HTTPErrorIsRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"message":"rate limited"}`)
	})

	_, err := client.Home().Fetch(context.Background(), firstPage(pager.OffsetTokens, 10))
	var rejected *pager.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusTooManyRequests, rejected.Status)
	assert.Equal(t, "rate limited", rejected.Message)
}

func TestFetch_UnauthorizedIsAuthFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Liked().Fetch(context.Background(), firstPage(pager.OffsetTokens, 10))
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
	assert.True(t, pager.IsRejected(err))
}

func TestFetch_UnreachableServerIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client := NewClient(server.URL, nil, WithLogger(quietLogger()))

	_, err := client.Home().Fetch(context.Background(), firstPage(pager.OffsetTokens, 10))
	assert.ErrorIs(t, err, pager.ErrNetwork)
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestFetch_SkipsUndecodableItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[{"id":"v1"},"garbage",{"title":"no id"},{"id":"v4"}]}`)
	})

	batch, err := client.Home().Fetch(context.Background(), firstPage(pager.OffsetTokens, 10))
	require.NoError(t, err)
	require.Len(t, batch.Items, 2)
	assert.Equal(t, "v1", batch.Items[0].ID)
	assert.Equal(t, "v4", batch.Items[1].ID)
	assert.Equal(t, 4, batch.Received)
}

func TestHistoryAndLive_Mapping(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me/history":
			fmt.Fprint(w, `{"items":[{"id":"h1","watchedAt":"2024-03-01T10:00:00Z","video":{"id":"v1","title":"Intro"}}]}`)
		case "/live":
			fmt.Fprint(w, `{"items":[{"id":"e1","title":"Launch","state":"live","viewers":42,"joined":true}]}`)
		default:
			http.NotFound(w, r)
		}
	})

	history, err := client.History().Fetch(context.Background(), firstPage(pager.OffsetTokens, 20))
	require.NoError(t, err)
	require.Len(t, history.Items, 1)
	assert.Equal(t, "h1", history.Items[0].ID)
	assert.Equal(t, "v1", history.Items[0].Video.ID)
	assert.Equal(t, 2024, history.Items[0].WatchedAt.Year())

	live, err := client.Live().Fetch(context.Background(), firstPage(pager.PageNumberTokens, 12))
	require.NoError(t, err)
	require.Len(t, live.Items, 1)
	assert.True(t, live.Items[0].IsLive)
	assert.True(t, live.Items[0].Joined)
	assert.Equal(t, int64(42), live.Items[0].Viewers)
}

func TestCollections_TokenStyles(t *testing.T) {
	client := NewClient("http://example.invalid", nil)
	assert.Equal(t, pager.OffsetTokens, client.Home().Style())
	assert.Equal(t, pager.OffsetTokens, client.Clips().Style())
	assert.Equal(t, pager.PageNumberTokens, client.Search().Style())
	assert.Equal(t, pager.OffsetTokens, client.Liked().Style())
	assert.Equal(t, pager.OffsetTokens, client.History().Style())
	assert.Equal(t, pager.PageNumberTokens, client.ChannelVideos().Style())
	assert.Equal(t, pager.OffsetTokens, client.PlaylistVideos().Style())
	assert.Equal(t, pager.PageNumberTokens, client.Live().Style())
	assert.Equal(t, pager.OffsetTokens, client.Subscriptions().Style())
}

func TestLoader_OverHTTPCollection(t *testing.T) {
	const total = 23
	var mu sync.Mutex
	var offsets []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		offsets = append(offsets, r.URL.Query().Get("offset"))
		mu.Unlock()

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		var items []string
		for i := offset; i < total && i < offset+limit; i++ {
			items = append(items, fmt.Sprintf(`{"id":"v%d"}`, i))
		}
		fmt.Fprintf(w, `{"items":[%s]}`, strings.Join(items, ","))
	})

	home := client.Home()
	l := pager.New[domain.Video](home, 10, home.Style(), pager.WithLogger[domain.Video](quietLogger()))
	for i := 0; i < 5; i++ {
		require.NoError(t, l.LoadMore(context.Background()))
	}

	state := l.State()
	assert.Len(t, state.Items, total)
	assert.False(t, state.HasMore)
	assert.Equal(t, []string{"0", "10", "20"}, offsets)
	assert.Equal(t, "v22", state.Items[total-1].ID)
}

func TestLoader_SkippedItemsKeepPaging(t *testing.T) {
	var mu sync.Mutex
	var offsets []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		offsets = append(offsets, r.URL.Query().Get("offset"))
		mu.Unlock()

		switch r.URL.Query().Get("offset") {
		case "0":
			fmt.Fprint(w, `{"items":[{"id":"a"},{"title":"no id"},{"id":"c"}],"hasMore":true}`)
		default:
			fmt.Fprint(w, `{"items":[{"id":"d"}],"hasMore":false}`)
		}
	})

	home := client.Home()
	l := pager.New[domain.Video](home, 3, home.Style(), pager.WithLogger[domain.Video](quietLogger()))

	require.NoError(t, l.LoadMore(context.Background()))
	state := l.State()
	assert.Len(t, state.Items, 2)
	assert.True(t, state.HasMore, "server said there is more")
	assert.Equal(t, 3, state.Next.Value, "offset counts the skipped record")

	require.NoError(t, l.LoadMore(context.Background()))
	assert.Equal(t, []string{"0", "3"}, offsets)
	state = l.State()
	require.Len(t, state.Items, 3)
	assert.Equal(t, "d", state.Items[2].ID)
	assert.False(t, state.HasMore)
}

func TestRateLimit_WaitHonorsContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[]}`)
	}, WithRateLimit(0.001, 1))

	_, err := client.Home().Fetch(context.Background(), firstPage(pager.OffsetTokens, 10))
	require.NoError(t, err, "burst allows the first request")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Home().Fetch(ctx, firstPage(pager.OffsetTokens, 10))
	assert.Error(t, err, "second request cannot get a token before the deadline")
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "a", errorMessage([]byte(`{"message":"a","error":"b"}`)))
	assert.Equal(t, "b", errorMessage([]byte(`{"error":"b"}`)))
	assert.Equal(t, "c", errorMessage([]byte(`{"detail":"c"}`)))
	assert.Equal(t, "", errorMessage([]byte(`{}`)))
	assert.Equal(t, "Bad Gateway", errorMessage([]byte("  Bad Gateway\n")))
}

func TestErrorMessage_TruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("é", 300)
	msg := errorMessage([]byte(body))
	assert.True(t, utf8.ValidString(msg))
	assert.Equal(t, 200, utf8.RuneCountInString(msg))
}
