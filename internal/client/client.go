// Package client implements the resilient data-access façade for the
// SentinelLite dashboard. Every domain operation first consults the
// availability probe and then either issues a remote HTTP request or
// operates on the local synthetic store, returning identically shaped
// results from either path.
//
// # Usage
//
//	p := probe.New(baseURL, 2*time.Second, logger)
//	sess, _ := session.Open("sentinel-session.db")
//	c := client.New(baseURL, p, sess, synthetic.NewStore(time.Now()))
//	user, err := c.Login(ctx, email, password)
//
// # Routing
//
// The probe caches its first result for the process lifetime, so one
// failed health check commits every subsequent operation to fallback mode.
// Network unavailability is a routing decision, never an error surfaced to
// the caller.
//
// # Errors
//
// Remote non-success statuses become *RequestError with the
// server-supplied message when parseable. Rejected credentials map to
// ErrAuthenticationFailed and a missing update target to model.ErrNotFound
// on both paths.
//
// # Fallback latency
//
// Fallback operations sleep an operation-dependent artificial latency so
// callers observe the same pending windows as on the remote path. Scale it
// with WithLatencyScale; tests pass 0 to disable.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sentinellite/sentinel/internal/model"
	"github.com/sentinellite/sentinel/internal/probe"
	"github.com/sentinellite/sentinel/internal/query"
	"github.com/sentinellite/sentinel/internal/session"
	"github.com/sentinellite/sentinel/internal/synthetic"
)

// Per-operation artificial latency for the fallback path, before scaling.
const (
	latencyLogin  = 800 * time.Millisecond
	latencyStats  = 400 * time.Millisecond
	latencyLogs   = 300 * time.Millisecond
	latencyAlerts = 400 * time.Millisecond
	latencyCreate = 300 * time.Millisecond
	latencyUpdate = 200 * time.Millisecond
)

// Option is a functional option for New.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for remote requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLatencyScale multiplies every fallback latency by f. 0 disables the
// artificial delays entirely.
func WithLatencyScale(f float64) Option {
	return func(c *Client) { c.latencyScale = f }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock overrides the time source used for fallback timestamps and
// generated tokens. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// Client is the resilient data-access layer. One operation per domain
// action; all operations are safe to invoke concurrently, with
// last-write-wins semantics for overlapping mutations of the same id.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	probe        *probe.Probe
	session      *session.Store
	local        *synthetic.Store
	latencyScale float64
	logger       *slog.Logger
	now          func() time.Time
}

// New creates a Client. baseURL is the remote API root (no trailing
// slash), p the shared availability probe, sess the session store, and
// local the fallback dataset the client exclusively owns in fallback mode.
func New(baseURL string, p *probe.Probe, sess *session.Store, local *synthetic.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{},
		probe:        p,
		session:      sess,
		local:        local,
		latencyScale: 1,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login authenticates email/password on the active path. On success the
// token and user are persisted to the session store and the User is
// returned; rejected credentials yield ErrAuthenticationFailed.
func (c *Client) Login(ctx context.Context, email, password string) (model.User, error) {
	if c.probe.Available(ctx) {
		var resp struct {
			User  model.User `json:"user"`
			Token string     `json:"token"`
		}
		body := map[string]string{"email": email, "password": password}
		err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp)
		if err != nil {
			var reqErr *RequestError
			if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusUnauthorized {
				return model.User{}, ErrAuthenticationFailed
			}
			return model.User{}, err
		}
		if err := c.session.Save(resp.Token, resp.User); err != nil {
			return model.User{}, err
		}
		return resp.User, nil
	}

	if err := c.simulate(ctx, latencyLogin); err != nil {
		return model.User{}, err
	}
	user, ok := c.local.Authenticate(email, password)
	if !ok {
		return model.User{}, ErrAuthenticationFailed
	}
	token := "mock-token-" + uuid.NewString()
	if err := c.session.Save(token, user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Logout notifies the remote service best-effort — a failed notification
// never blocks the local clear — and always clears the session store.
func (c *Client) Logout(ctx context.Context) error {
	if c.probe.Available(ctx) {
		if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil); err != nil {
			c.logger.Debug("client: remote logout failed, clearing session anyway",
				slog.String("error", err.Error()),
			)
		}
	}
	return c.session.Clear()
}

// CurrentUser returns the last-known user from the session store, or
// ok=false when no valid session exists.
func (c *Client) CurrentUser() (model.User, bool) {
	return c.session.CurrentUser()
}

// Stats fetches the dashboard aggregate, recomputed by whichever source
// serves it.
func (c *Client) Stats(ctx context.Context) (model.SecurityStats, error) {
	if c.probe.Available(ctx) {
		var stats model.SecurityStats
		if err := c.do(ctx, http.MethodGet, "/stats", nil, nil, &stats); err != nil {
			return model.SecurityStats{}, err
		}
		return stats, nil
	}

	if err := c.simulate(ctx, latencyStats); err != nil {
		return model.SecurityStats{}, err
	}
	return c.local.Stats(), nil
}

// Logs fetches one page of log entries matching f. page is 1-based; page
// and limit default to 1 and 20 when out of range. A page past the end
// yields an empty page, not an error.
func (c *Client) Logs(ctx context.Context, page, limit int, f query.LogFilter) (model.LogPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	if c.probe.Available(ctx) {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("limit", strconv.Itoa(limit))
		if f.Source != "" {
			params.Set("source", string(f.Source))
		}
		if f.Status != "" {
			params.Set("status", string(f.Status))
		}
		if f.Search != "" {
			params.Set("search", f.Search)
		}

		var pageResp model.LogPage
		if err := c.do(ctx, http.MethodGet, "/logs", params, nil, &pageResp); err != nil {
			return model.LogPage{}, err
		}
		return pageResp, nil
	}

	if err := c.simulate(ctx, latencyLogs); err != nil {
		return model.LogPage{}, err
	}
	return c.local.Logs(page, limit, f), nil
}

// UpdateLog applies the whitelisted update to the entry with the given id
// and returns the updated entry. A missing id reports model.ErrNotFound.
func (c *Client) UpdateLog(ctx context.Context, id string, upd model.LogUpdate) (model.LogEntry, error) {
	if c.probe.Available(ctx) {
		var resp struct {
			Log model.LogEntry `json:"log"`
		}
		err := c.do(ctx, http.MethodPatch, "/logs/"+url.PathEscape(id), nil, upd, &resp)
		if err != nil {
			return model.LogEntry{}, mapNotFound(err)
		}
		return resp.Log, nil
	}

	if err := c.simulate(ctx, latencyUpdate); err != nil {
		return model.LogEntry{}, err
	}
	return c.local.UpdateLog(id, upd)
}

// Alerts fetches the alerts matching f, most recent first.
func (c *Client) Alerts(ctx context.Context, f query.AlertFilter) ([]model.SecurityAlert, error) {
	if c.probe.Available(ctx) {
		params := url.Values{}
		if f.Severity != "" {
			params.Set("severity", string(f.Severity))
		}
		if f.Status != "" {
			params.Set("status", string(f.Status))
		}

		var alerts []model.SecurityAlert
		if err := c.do(ctx, http.MethodGet, "/alerts", params, nil, &alerts); err != nil {
			return nil, err
		}
		return alerts, nil
	}

	if err := c.simulate(ctx, latencyAlerts); err != nil {
		return nil, err
	}
	return c.local.Alerts(f), nil
}

// UpdateAlert replaces the status of the alert with the given id — the
// only mutable alert field — and returns the updated alert. A missing id
// reports model.ErrNotFound.
func (c *Client) UpdateAlert(ctx context.Context, id string, status model.AlertStatus) (model.SecurityAlert, error) {
	if !status.Valid() {
		return model.SecurityAlert{}, fmt.Errorf("client: invalid alert status %q", status)
	}

	if c.probe.Available(ctx) {
		var resp struct {
			Alert model.SecurityAlert `json:"alert"`
		}
		body := model.AlertUpdate{Status: status}
		err := c.do(ctx, http.MethodPatch, "/alerts/"+url.PathEscape(id), nil, body, &resp)
		if err != nil {
			return model.SecurityAlert{}, mapNotFound(err)
		}
		return resp.Alert, nil
	}

	if err := c.simulate(ctx, latencyUpdate); err != nil {
		return model.SecurityAlert{}, err
	}
	return c.local.UpdateAlert(id, status)
}

// CreateAlert creates a new alert from draft. Omitted fields receive the
// creation defaults and the new alert always starts Open.
func (c *Client) CreateAlert(ctx context.Context, draft model.AlertDraft) (model.SecurityAlert, error) {
	if c.probe.Available(ctx) {
		var alert model.SecurityAlert
		if err := c.do(ctx, http.MethodPost, "/alerts", nil, draft, &alert); err != nil {
			return model.SecurityAlert{}, err
		}
		return alert, nil
	}

	if err := c.simulate(ctx, latencyCreate); err != nil {
		return model.SecurityAlert{}, err
	}
	return c.local.CreateAlert(c.now(), draft), nil
}

// Health reports the service health map from the active source. The
// fallback answer is served without artificial latency.
func (c *Client) Health(ctx context.Context) (model.HealthStatus, error) {
	if c.probe.Available(ctx) {
		var hs model.HealthStatus
		if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &hs); err != nil {
			return model.HealthStatus{}, err
		}
		return hs, nil
	}
	return c.local.Health(c.now()), nil
}

// FallbackMode reports whether operations are being served locally.
func (c *Client) FallbackMode(ctx context.Context) bool {
	return !c.probe.Available(ctx)
}

// do issues one remote request. The bearer token is attached when the
// session holds one; body and out are JSON-encoded/decoded when non-nil.
// Non-2xx responses become *RequestError with the server's "error" message
// when the body parses, else a generic message.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("client: build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(resp.Body),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("client: decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// extractErrorMessage best-effort parses {"error": "..."} from an error
// response body. Anything unparseable yields the generic message.
func extractErrorMessage(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err == nil && body.Error != "" {
		return body.Error
	}
	return "Request failed"
}

// mapNotFound converts a remote 404 into model.ErrNotFound so both paths
// report a missing update target identically.
func mapNotFound(err error) error {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound {
		return model.ErrNotFound
	}
	return err
}

// simulate sleeps the scaled artificial latency, honouring ctx
// cancellation.
func (c *Client) simulate(ctx context.Context, d time.Duration) error {
	scaled := time.Duration(float64(d) * c.latencyScale)
	if scaled <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(scaled):
		return nil
	}
}
