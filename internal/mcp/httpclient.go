package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meltforce/fithome/internal/models"
	"github.com/meltforce/fithome/internal/session"
	"github.com/meltforce/fithome/internal/timer"
	"github.com/meltforce/fithome/internal/tracker"
)

// HTTPClient implements Backend by calling the FitHome REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// sessions live on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies Backend.
var _ Backend = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey
// may be empty.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// call sends in as JSON (when non-nil) and decodes the response into out
// (when non-nil). Any non-2xx status is an error carrying the body.
func (c *HTTPClient) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("httpclient: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, apiError(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

// apiError extracts the message from an {"error": "..."} body.
func apiError(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

func sessionPath(id string, parts ...string) string {
	p := "/api/v1/sessions/" + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func (c *HTTPClient) ListDays(ctx context.Context) ([]models.DayView, error) {
	var days []models.DayView
	err := c.call(ctx, http.MethodGet, "/api/v1/catalog", nil, &days)
	return days, err
}

func (c *HTTPClient) Today(ctx context.Context) (models.DayView, error) {
	var day models.DayView
	err := c.call(ctx, http.MethodGet, "/api/v1/catalog/today", nil, &day)
	return day, err
}

func (c *HTTPClient) StartSession(ctx context.Context, dayID string) (session.View, error) {
	var v session.View
	err := c.call(ctx, http.MethodPost, "/api/v1/sessions", map[string]string{"day_id": dayID}, &v)
	return v, err
}

func (c *HTTPClient) GetSession(ctx context.Context, id string) (session.View, error) {
	var v session.View
	err := c.call(ctx, http.MethodGet, sessionPath(id), nil, &v)
	return v, err
}

func (c *HTTPClient) EndSession(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, sessionPath(id), nil, nil)
}

func (c *HTTPClient) SelectDay(ctx context.Context, id, dayID string) (session.View, error) {
	var v session.View
	err := c.call(ctx, http.MethodPut, sessionPath(id, "day"), map[string]string{"day_id": dayID}, &v)
	return v, err
}

func (c *HTTPClient) ToggleExercise(ctx context.Context, id, exerciseID string) (session.ToggleResult, error) {
	var r session.ToggleResult
	err := c.call(ctx, http.MethodPost, sessionPath(id, "exercises", url.PathEscape(exerciseID), "toggle"), nil, &r)
	return r, err
}

func (c *HTTPClient) CompleteAll(ctx context.Context, id string) (session.View, error) {
	var v session.View
	err := c.call(ctx, http.MethodPost, sessionPath(id, "progress", "complete-all"), nil, &v)
	return v, err
}

func (c *HTTPClient) ResetProgress(ctx context.Context, id string) (session.View, error) {
	var v session.View
	err := c.call(ctx, http.MethodPost, sessionPath(id, "progress", "reset"), nil, &v)
	return v, err
}

func (c *HTTPClient) Stats(ctx context.Context, id, dayID string) (tracker.Stats, error) {
	path := sessionPath(id, "stats")
	if dayID != "" {
		path += "?" + url.Values{"day": {dayID}}.Encode()
	}
	var s tracker.Stats
	err := c.call(ctx, http.MethodGet, path, nil, &s)
	return s, err
}

func (c *HTTPClient) TimerControl(ctx context.Context, id, action string) (timer.State, error) {
	var s timer.State
	err := c.call(ctx, http.MethodPost, sessionPath(id, "timer", url.PathEscape(action)), nil, &s)
	return s, err
}

func (c *HTTPClient) TimerAddTime(ctx context.Context, id string, seconds int) (timer.State, error) {
	var s timer.State
	err := c.call(ctx, http.MethodPost, sessionPath(id, "timer", "add"), map[string]int{"seconds": seconds}, &s)
	return s, err
}
