package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mmcdole/vidfeed/internal/domain"
	"github.com/mmcdole/vidfeed/internal/pager"
)

// Collection is one paged endpoint. It implements pager.Fetcher[T].
type Collection[T any] struct {
	client *Client
	name   string
	style  pager.TokenStyle
	path   func(pager.Identity) (string, error)
	decode func(raw []json.RawMessage) []T
	// keyParam, when set, sends the identity key as this query parameter
	keyParam string
}

var _ pager.Fetcher[domain.Video] = (*Collection[domain.Video])(nil)

// Name identifies the collection in logs
func (col *Collection[T]) Name() string {
	return col.name
}

// Style returns the endpoint's pagination convention
func (col *Collection[T]) Style() pager.TokenStyle {
	return col.style
}

// Fetch retrieves one page. The token is sent as "offset" or "page" next to
// "limit"; identity filters are forwarded as extra query parameters.
func (col *Collection[T]) Fetch(ctx context.Context, req pager.Request) (pager.Batch[T], error) {
	path, err := col.path(req.Identity)
	if err != nil {
		return pager.Batch[T]{}, err
	}

	query := url.Values{}
	for k, v := range req.Identity.Filters {
		query.Set(k, v)
	}
	if col.keyParam != "" {
		query.Set(col.keyParam, req.Identity.Key)
	}
	if req.Token.Style == pager.PageNumberTokens {
		query.Set("page", strconv.Itoa(req.Token.Value))
	} else {
		query.Set("offset", strconv.Itoa(req.Token.Value))
	}
	query.Set("limit", strconv.Itoa(req.PageSize))

	body, err := col.client.doRequest(ctx, http.MethodGet, path, query)
	if err != nil {
		return pager.Batch[T]{}, err
	}

	env, raw, err := parseEnvelope(body)
	if err != nil {
		return pager.Batch[T]{}, fmt.Errorf("%s: %w", col.name, err)
	}

	return pager.Batch[T]{
		Items:    col.decode(raw),
		HasMore:  env.HasMore,
		Received: len(raw),
	}, nil
}

func fixedPath(p string) func(pager.Identity) (string, error) {
	return func(pager.Identity) (string, error) { return p, nil }
}

// keyedPath formats the escaped identity key into pattern
func keyedPath(what, pattern string) func(pager.Identity) (string, error) {
	return func(id pager.Identity) (string, error) {
		if id.Key == "" {
			return "", &pager.RejectedError{Message: what + " id is required"}
		}
		return fmt.Sprintf(pattern, url.PathEscape(id.Key)), nil
	}
}

func videoCollection(c *Client, name string, style pager.TokenStyle, path func(pager.Identity) (string, error)) *Collection[domain.Video] {
	return &Collection[domain.Video]{
		client: c,
		name:   name,
		style:  style,
		path:   path,
		decode: func(raw []json.RawMessage) []domain.Video {
			return decodeItems(c, name, raw, mapVideo)
		},
	}
}

// Home is the main video grid
func (c *Client) Home() *Collection[domain.Video] {
	return videoCollection(c, "home", pager.OffsetTokens, fixedPath("/videos"))
}

// Search returns videos matching the identity key as query
func (c *Client) Search() *Collection[domain.Video] {
	col := videoCollection(c, "search", pager.PageNumberTokens, fixedPath("/search"))
	col.keyParam = "q"
	return col
}

// Liked lists the current user's liked videos
func (c *Client) Liked() *Collection[domain.Video] {
	return videoCollection(c, "liked", pager.OffsetTokens, fixedPath("/me/likes"))
}

// ChannelVideos lists uploads of the channel named by the identity key
func (c *Client) ChannelVideos() *Collection[domain.Video] {
	return videoCollection(c, "channel", pager.PageNumberTokens, keyedPath("channel", "/channels/%s/videos"))
}

// PlaylistVideos lists the entries of the playlist named by the identity key
func (c *Client) PlaylistVideos() *Collection[domain.Video] {
	return videoCollection(c, "playlist", pager.OffsetTokens, keyedPath("playlist", "/playlists/%s/videos"))
}

// Clips is the short-form feed
func (c *Client) Clips() *Collection[domain.Clip] {
	return &Collection[domain.Clip]{
		client: c,
		name:   "clips",
		style:  pager.OffsetTokens,
		path:   fixedPath("/clips"),
		decode: func(raw []json.RawMessage) []domain.Clip {
			return decodeItems(c, "clips", raw, mapClip)
		},
	}
}

// History is the current user's watch history
func (c *Client) History() *Collection[domain.HistoryEntry] {
	return &Collection[domain.HistoryEntry]{
		client: c,
		name:   "history",
		style:  pager.OffsetTokens,
		path:   fixedPath("/me/history"),
		decode: func(raw []json.RawMessage) []domain.HistoryEntry {
			return decodeItems(c, "history", raw, mapHistory)
		},
	}
}

// Live lists running and upcoming live events
func (c *Client) Live() *Collection[domain.LiveEvent] {
	return &Collection[domain.LiveEvent]{
		client: c,
		name:   "live",
		style:  pager.PageNumberTokens,
		path:   fixedPath("/live"),
		decode: func(raw []json.RawMessage) []domain.LiveEvent {
			return decodeItems(c, "live", raw, mapLive)
		},
	}
}

// Subscriptions lists channels the current user follows
func (c *Client) Subscriptions() *Collection[domain.Channel] {
	return &Collection[domain.Channel]{
		client: c,
		name:   "subscriptions",
		style:  pager.OffsetTokens,
		path:   fixedPath("/me/subscriptions"),
		decode: func(raw []json.RawMessage) []domain.Channel {
			return decodeItems(c, "subscriptions", raw, mapChannel)
		},
	}
}
