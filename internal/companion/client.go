// Package companion implements the HTTP client for the companion
// backend: the proposal listing, apply, and reject endpoints plus the
// workspace AI settings resource. All failures come back as core
// domain errors; the client never retries on its own.
package companion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerbird/companion-cli/internal/core"
)

const (
	proposalsPath = "/api/companion/v2/proposals/"
	settingsPath  = "/api/companion/v2/ai-settings/"

	// DefaultListLimit is the server-side cap requested when the
	// caller does not specify one.
	DefaultListLimit = 200

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "companion-cli"

	// maxResponseBytes bounds how much of a response body is read.
	// Pending sets are capped by the list limit, so anything larger
	// than this is a misbehaving server.
	maxResponseBytes = 8 << 20
)

// Client talks to the companion REST surface.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, core.ErrValidation("INVALID_BASE_URL",
			fmt.Sprintf("base URL %q is not a valid http(s) URL", baseURL))
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured endpoint, for display.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListProposals fetches the pending proposal set for a workspace.
func (c *Client) ListProposals(ctx context.Context, workspaceID string, limit int) ([]core.ShadowEvent, error) {
	if workspaceID == "" {
		return nil, core.ErrValidation(core.CodeMissingWorkspace, "workspace id is required")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := url.Values{
		"workspace_id": {workspaceID},
		"limit":        {strconv.Itoa(limit)},
	}

	var events []core.ShadowEvent
	if err := c.do(ctx, http.MethodGet, proposalsPath, query, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ApplyProposal asks the server to apply one proposal to the ledger.
func (c *Client) ApplyProposal(ctx context.Context, eventID, workspaceID string) (core.ApplyResult, error) {
	if err := requireEvent(eventID, workspaceID); err != nil {
		return core.ApplyResult{}, err
	}

	body := map[string]string{"workspace_id": workspaceID}
	var result core.ApplyResult
	if err := c.do(ctx, http.MethodPost, proposalsPath+url.PathEscape(eventID)+"/apply", nil, body, &result); err != nil {
		return core.ApplyResult{}, decorateEventErr(err, eventID)
	}
	if result.EventID == "" {
		result.EventID = eventID
	}
	if result.Status == "" {
		result.Status = "applied"
	}
	return result, nil
}

// RejectProposal discards one proposal. The reason is optional and
// forwarded to the pipeline for feedback.
func (c *Client) RejectProposal(ctx context.Context, eventID, workspaceID, reason string) (core.RejectResult, error) {
	if err := requireEvent(eventID, workspaceID); err != nil {
		return core.RejectResult{}, err
	}

	body := map[string]string{"workspace_id": workspaceID}
	if reason != "" {
		body["reason"] = reason
	}
	var result core.RejectResult
	if err := c.do(ctx, http.MethodPost, proposalsPath+url.PathEscape(eventID)+"/reject", nil, body, &result); err != nil {
		return core.RejectResult{}, decorateEventErr(err, eventID)
	}
	if result.EventID == "" {
		result.EventID = eventID
	}
	if result.Status == "" {
		result.Status = "rejected"
	}
	return result, nil
}

// FetchSettings returns the authoritative operating mode for a
// workspace.
func (c *Client) FetchSettings(ctx context.Context, workspaceID string) (core.OperatingMode, error) {
	if workspaceID == "" {
		return core.OperatingMode{}, core.ErrValidation(core.CodeMissingWorkspace, "workspace id is required")
	}

	query := url.Values{"workspace_id": {workspaceID}}
	var envelope settingsEnvelope
	if err := c.do(ctx, http.MethodGet, settingsPath, query, nil, &envelope); err != nil {
		return core.OperatingMode{}, err
	}
	return envelope.mode(), nil
}

// UpdateSettings applies a partial settings change and returns the
// server's echoed state, which is the only state callers may trust.
func (c *Client) UpdateSettings(ctx context.Context, workspaceID string, patch core.ModePatch) (core.OperatingMode, error) {
	if workspaceID == "" {
		return core.OperatingMode{}, core.ErrValidation(core.CodeMissingWorkspace, "workspace id is required")
	}
	if patch.IsZero() {
		return core.OperatingMode{}, core.ErrValidation(core.CodeEmptyPatch, "settings patch changes nothing")
	}

	body := settingsPatchRequest{WorkspaceID: workspaceID}
	if patch.AIMode != nil {
		mode := string(*patch.AIMode)
		body.AIMode = &mode
	}
	body.AIEnabled = patch.AIEnabled
	body.KillSwitch = patch.KillSwitch

	var envelope settingsEnvelope
	if err := c.do(ctx, http.MethodPatch, settingsPath, nil, body, &envelope); err != nil {
		return core.OperatingMode{}, err
	}
	return envelope.mode(), nil
}

// do executes one request. The out target may be nil for calls whose
// body is irrelevant.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := *c.baseURL
	endpoint.Path = joinPath(endpoint.Path, path)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return core.ErrInternal("encoding request body").WithCause(err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return core.ErrInternal("building request").WithCause(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return core.ErrTimeout(fmt.Sprintf("%s %s timed out", method, path)).WithCause(err)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return core.ErrTimeout(fmt.Sprintf("%s %s timed out", method, path)).WithCause(err)
		}
		return core.ErrNetwork(fmt.Sprintf("%s %s failed", method, path)).WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return core.ErrNetwork("reading response body").WithCause(err)
	}

	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, serverMessage(raw))
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return core.ErrValidation(core.CodeBadResponse,
			fmt.Sprintf("server returned undecodable body for %s %s", method, path)).WithCause(err)
	}
	return nil
}

func requireEvent(eventID, workspaceID string) error {
	if eventID == "" {
		return core.ErrValidation(core.CodeMissingEventID, "event id is required")
	}
	if workspaceID == "" {
		return core.ErrValidation(core.CodeMissingWorkspace, "workspace id is required")
	}
	return nil
}

// decorateEventErr tags transport errors with the event they concern
// so callers can render precise banners.
func decorateEventErr(err error, eventID string) error {
	var domErr *core.DomainError
	if errors.As(err, &domErr) {
		return domErr.WithDetail("event_id", eventID)
	}
	return err
}

func joinPath(base, path string) string {
	if base == "" || base == "/" {
		return path
	}
	for len(base) > 1 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + path
}
