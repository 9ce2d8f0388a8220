// Package api is the configured HTTP transport for the claims backend: one
// base URL, a fixed timeout, JSON headers, bearer-token attachment from the
// session store, and a one-shot silent token refresh on 401.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/medsure/claims-client/session"
	"github.com/medsure/claims-client/users"
)

// DefaultTimeout matches the transport timeout the mobile clients use.
const DefaultTimeout = 10 * time.Second

const refreshPath = "/auth/refresh"

// Client issues requests against the backend. It never caches the access
// token: every outgoing request reads it fresh from the session manager, so
// a token write is visible to the next request immediately.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions *session.Manager
	logger   zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (primarily for tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithTimeout sets the per-request timeout on the underlying transport.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the given base URL. sessions provides the access
// token for outgoing requests and receives token writes from the silent
// refresh path.
func New(baseURL string, sessions *session.Manager, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[api.New] baseURL is required")
	}
	if sessions == nil {
		return nil, errors.New("[api.New] session manager is required")
	}
	c := &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: DefaultTimeout},
		sessions: sessions,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Get issues a GET and decodes the envelope's data field into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the envelope's data field
// into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body and decodes the envelope's data field
// into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Do issues a request with the full interceptor chain. body is marshaled to
// JSON when non-nil; out, when non-nil, receives the envelope's data field.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return errors.Wrap(err, "[Client.Do] marshal body")
		}
	}
	return c.do(ctx, method, path, payload, out, false)
}

// do runs one attempt. The retried flag is threaded explicitly: the refresh
// path re-issues the original request with retried=true, which disarms the
// interceptor and caps the chain at exactly one retry per original request.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any, retried bool) error {
	resp, body, err := c.roundTrip(ctx, method, path, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && !retried {
		originalErr := apiErrorFrom(resp.StatusCode, body)
		return c.refreshAndRetry(ctx, method, path, payload, out, originalErr)
	}

	return decodeEnvelope(resp.StatusCode, body, out)
}

// roundTrip builds and sends a single HTTP request. The access token is read
// fresh from the store: a clean miss sends the request unauthenticated, a
// storage failure fails the request before it leaves the process.
func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, nil, errors.Wrap(err, "[Client.roundTrip] build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	token, err := c.sessions.Token(ctx)
	switch {
	case err == nil && token != "":
		req.Header.Set("Authorization", "Bearer "+token)
	case err != nil && !session.IsNotFound(err):
		return nil, nil, errors.Wrap(err, "[Client.roundTrip] read access token")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "[Client.roundTrip] %s %s", method, path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "[Client.roundTrip] read response body")
	}
	return resp, body, nil
}

// refreshPayload is the data field of a successful /auth/refresh response.
// The user echo is optional; when absent the cached profile stays in place.
type refreshPayload struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	User         *users.Profile `json:"user,omitempty"`
}

// refreshAndRetry is the 401 interceptor: exchange the stored refresh token
// for a new token pair, persist it, and re-issue the original request once.
// Any refresh failure clears the whole session, the only path that logs a
// user out without an explicit logout call.
func (c *Client) refreshAndRetry(ctx context.Context, method, path string, payload []byte, out any, originalErr error) error {
	epoch := c.sessions.Epoch()

	refreshToken, err := c.sessions.RefreshToken(ctx)
	if session.IsNotFound(err) || (err == nil && refreshToken == "") {
		return originalErr
	}
	if err != nil {
		return errors.Wrap(err, "[Client.refreshAndRetry] read refresh token")
	}

	c.logger.Debug().Str("path", path).Msg("access token rejected, attempting silent refresh")

	var refreshed refreshPayload
	err = c.do(ctx, http.MethodPost, refreshPath, mustMarshal(refreshRequest{RefreshToken: refreshToken}), &refreshed, true)
	if err == nil && (refreshed.AccessToken == "" || refreshed.RefreshToken == "") {
		err = errors.New("refresh response missing tokens")
	}
	if err != nil {
		if clearErr := c.sessions.Clear(ctx); clearErr != nil {
			c.logger.Err(clearErr).Msg("failed to clear session after refresh failure")
		}
		return errors.Wrap(err, "[Client.refreshAndRetry] refresh request")
	}

	err = c.sessions.SaveTokensIfEpoch(ctx, refreshed.AccessToken, refreshed.RefreshToken, epoch)
	if errors.Is(err, session.ErrStaleEpoch) {
		// Logout won the race; the refreshed tokens are discarded and the
		// caller sees the original failure.
		c.logger.Debug().Str("path", path).Msg("session cleared during silent refresh, dropping refreshed tokens")
		return originalErr
	}
	if err != nil {
		return errors.Wrap(err, "[Client.refreshAndRetry] persist refreshed tokens")
	}

	// The retried attempt reads the new access token from the store.
	return c.do(ctx, method, path, payload, out, true)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

// decodeEnvelope turns a response into either the decoded data field or an
// *APIError carrying the server's message.
func decodeEnvelope(status int, body []byte, out any) error {
	if status < 200 || status >= 300 {
		return apiErrorFrom(status, body)
	}
	if len(body) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return errors.Wrap(err, "[api] decode response envelope")
	}
	if !env.Success {
		return &APIError{Status: status, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrap(err, "[api] decode response data")
	}
	return nil
}

func apiErrorFrom(status int, body []byte) error {
	var env envelope
	_ = json.Unmarshal(body, &env)
	return &APIError{Status: status, Message: env.Message}
}
