// Package api implements the HTTP transport against the wuffchat flow
// backend. The endpoint contract is fixed and external: POST /flow_intro
// opens a conversation and issues credentials, POST /flow_step advances it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnauthorized marks the distinguished 401 outcome: the session token
// was rejected or has expired server-side.
var ErrUnauthorized = errors.New("session unauthorized")

// DefaultTimeout bounds a single flow request. The backend contract does
// not define one, so this is a client-side sanity limit.
const DefaultTimeout = 30 * time.Second

// IntroResponse is the payload of POST /flow_intro.
type IntroResponse struct {
	SessionID    string    `json:"session_id"`
	SessionToken string    `json:"session_token"`
	Messages     []Message `json:"messages"`
}

// StepResponse is the payload of POST /flow_step.
type StepResponse struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
	Done      bool      `json:"done"`
}

// Client talks to one flow backend.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithAPIKey sends the given key in the X-API-Key header on every request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithClientLogger attaches a logger for request diagnostics.
func WithClientLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a transport client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Intro opens a fresh conversation and returns the issued credentials plus
// any greeting messages.
func (c *Client) Intro(ctx context.Context) (*IntroResponse, error) {
	var resp IntroResponse
	if err := c.post(ctx, "/flow_intro", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Step submits one user turn for the given session.
func (c *Client) Step(ctx context.Context, sessionID, sessionToken, text string) (*StepResponse, error) {
	body := map[string]string{
		"session_id":    sessionID,
		"session_token": sessionToken,
		"message":       text,
	}
	var resp StepResponse
	if err := c.post(ctx, "/flow_step", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("path", path).Msg("flow request failed")
		return fmt.Errorf("%s request: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Info().Str("path", path).Msg("flow request rejected with 401")
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error().Int("status", resp.StatusCode).Str("path", path).Msg("flow request returned non-2xx")
		return fmt.Errorf("%s request: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.Error().Err(err).Str("path", path).Msg("flow response body malformed")
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
