package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mmcdole/vidfeed/internal/domain"
)

// Me returns the user behind the current token. It doubles as a token check.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/me", nil)
	if err != nil {
		return nil, err
	}
	if err := checkFailure(body); err != nil {
		return nil, err
	}

	var resp meResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	dto := resp.userDTO
	if resp.User != nil {
		dto = *resp.User
	}
	if dto.ID == "" {
		return nil, fmt.Errorf("failed to parse user: missing id")
	}
	return mapUser(dto), nil
}

// Like marks a video as liked
func (c *Client) Like(ctx context.Context, videoID string) error {
	return c.action(ctx, http.MethodPost, "/videos/%s/like", videoID)
}

// Unlike removes a like
func (c *Client) Unlike(ctx context.Context, videoID string) error {
	return c.action(ctx, http.MethodDelete, "/videos/%s/like", videoID)
}

// RemoveFromHistory deletes one history record
func (c *Client) RemoveFromHistory(ctx context.Context, entryID string) error {
	return c.action(ctx, http.MethodDelete, "/me/history/%s", entryID)
}

// JoinLive registers the user as a participant of a live event
func (c *Client) JoinLive(ctx context.Context, eventID string) error {
	return c.action(ctx, http.MethodPost, "/live/%s/join", eventID)
}

func (c *Client) action(ctx context.Context, method, pattern, id string) error {
	if id == "" {
		return domain.ErrItemNotFound
	}
	body, err := c.doRequest(ctx, method, fmt.Sprintf(pattern, url.PathEscape(id)), nil)
	if err != nil {
		return err
	}
	return checkFailure(body)
}
