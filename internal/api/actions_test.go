package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vidfeed/internal/domain"
	"github.com/mmcdole/vidfeed/internal/pager"
)

func TestMe(t *testing.T) {
	for _, body := range []string{
		`{"user":{"id":"u1","username":"gopher","displayName":"Gopher"}}`,
		`{"id":"u1","username":"gopher","displayName":"Gopher"}`,
	} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/me", r.URL.Path)
			fmt.Fprint(w, body)
		})

		user, err := client.Me(context.Background())
		require.NoError(t, err, body)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "Gopher", user.DisplayName)
	}
}

func TestMe_InvalidToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"token expired"}`)
	})

	_, err := client.Me(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
	assert.Equal(t, "token expired", err.Error())
}

func TestActions_MethodsAndPaths(t *testing.T) {
	type call struct{ method, path string }
	var calls []call
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path})
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	require.NoError(t, client.Like(ctx, "v1"))
	require.NoError(t, client.Unlike(ctx, "v1"))
	require.NoError(t, client.RemoveFromHistory(ctx, "h9"))
	require.NoError(t, client.JoinLive(ctx, "e3"))

	assert.Equal(t, []call{
		{http.MethodPost, "/videos/v1/like"},
		{http.MethodDelete, "/videos/v1/like"},
		{http.MethodDelete, "/me/history/h9"},
		{http.MethodPost, "/live/e3/join"},
	}, calls)
}

func TestActions_FailureFlag(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":false,"message":"event has ended"}`)
	})

	err := client.JoinLive(context.Background(), "e1")
	require.Error(t, err)
	assert.True(t, pager.IsRejected(err))
	assert.Equal(t, "event has ended", err.Error())
}

func TestActions_EmptyID(t *testing.T) {
	client := NewClient("http://example.invalid", nil)
	assert.ErrorIs(t, client.Like(context.Background(), ""), domain.ErrItemNotFound)
}
