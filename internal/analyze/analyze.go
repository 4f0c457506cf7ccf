// Package analyze is the client for the repository analysis backend.
package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/guilhermegouw/archlens/internal/debug"
)

// ErrNetwork wraps transport failures: the backend could not be reached or
// the response could not be read.
var ErrNetwork = errors.New("network error")

// HistoryMessage is one prior chat turn sent to the backend.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	SVG     string `json:"svg,omitempty"`
}

// Request is the body of POST /analyze.
//
// CurrentPath uses omitzero so a nil path is omitted while an empty,
// non-nil path is sent as [].
type Request struct {
	GitHubLink      string           `json:"github_link"`
	History         []HistoryMessage `json:"history"`
	ForceInitial    bool             `json:"force_initial"`
	DrillDownModule string           `json:"drill_down_module,omitempty"`
	CurrentPath     []string         `json:"current_path,omitzero"`
}

// Response is the backend answer. Both fields may be empty.
type Response struct {
	Text string `json:"text,omitempty"`
	SVG  string `json:"svg,omitempty"`
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// Client posts analysis requests to a backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client posts to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Analyze sends req to POST /analyze and decodes the reply.
func (c *Client) Analyze(ctx context.Context, req Request) (*Response, error) {
	if req.History == nil {
		req.History = []HistoryMessage{}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	debug.Event("analyze", "Request", fmt.Sprintf("link=%s initial=%v module=%q path=%v history=%d",
		req.GitHubLink, req.ForceInitial, req.DrillDownModule, req.CurrentPath, len(req.History)))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body.

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		debug.Event("analyze", "HTTPError", fmt.Sprintf("status=%d", resp.StatusCode))
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrNetwork, err)
	}

	var out Response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	debug.Event("analyze", "Response", fmt.Sprintf("text=%d svg=%d", len(out.Text), len(out.SVG)))
	return &out, nil
}

// Ping reports whether the backend answers HTTP at all. Any status code
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", http.NoBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	_ = resp.Body.Close()
	return nil
}
