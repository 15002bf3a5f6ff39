package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mmcdole/vidfeed/internal/pager"
)

// envelope is the common wrapper around every API payload. Items may be
// named "items" or "data"; failure is signalled by ok:false or status:false.
type envelope struct {
	Items   []json.RawMessage `json:"items"`
	Data    []json.RawMessage `json:"data"`
	HasMore *bool             `json:"hasMore"`
	OK      *bool             `json:"ok"`
	Status  json.RawMessage   `json:"status"`
	Message string            `json:"message"`
}

// failed reports whether the payload carries an explicit failure flag.
// A numeric status is informational and never counts as failure.
func (e *envelope) failed() bool {
	if e.OK != nil && !*e.OK {
		return true
	}
	return bytes.Equal(bytes.TrimSpace(e.Status), []byte("false"))
}

func (e *envelope) rejection() error {
	msg := e.Message
	if msg == "" {
		msg = "request was not successful"
	}
	return &pager.RejectedError{Status: http.StatusOK, Message: msg}
}

func (e *envelope) items() ([]json.RawMessage, bool) {
	if e.Items != nil {
		return e.Items, true
	}
	if e.Data != nil {
		return e.Data, true
	}
	return nil, false
}

// parseEnvelope decodes a list payload. A body that is not a JSON object or
// lacks an items array is reported as pager.ErrShapeMismatch.
func parseEnvelope(body []byte) (*envelope, []json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", pager.ErrShapeMismatch, err)
	}
	if env.failed() {
		return nil, nil, env.rejection()
	}
	raw, ok := env.items()
	if !ok {
		return nil, nil, fmt.Errorf("%w: no items array", pager.ErrShapeMismatch)
	}
	return &env, raw, nil
}

// checkFailure inspects a non-list payload for an explicit failure flag.
// Empty or non-JSON bodies are accepted.
func checkFailure(body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	if env.failed() {
		return env.rejection()
	}
	return nil
}

// decodeItems decodes each raw item into D and maps it with toDomain.
// Items that fail to decode or map are skipped and logged.
func decodeItems[D, T any](c *Client, kind string, raw []json.RawMessage, toDomain func(D) (T, bool)) []T {
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var dto D
		if err := json.Unmarshal(r, &dto); err != nil {
			c.logger.Warn("skipping undecodable item", "kind", kind, "index", i, "error", err)
			continue
		}
		item, ok := toDomain(dto)
		if !ok {
			c.logger.Warn("skipping invalid item", "kind", kind, "index", i)
			continue
		}
		out = append(out, item)
	}
	return out
}
