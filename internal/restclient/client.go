package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"bidmarket-client/internal/clienterrors"
	"bidmarket-client/utils"
)

// DefaultTimeout is the fixed per-request timeout. There is no retry; a
// timed-out or failed call surfaces immediately as an error.
const DefaultTimeout = 10 * time.Second

// Config holds the transport settings for the REST client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the HTTP transport shared by every resource service. It owns
// the base URL, the fixed request timeout and the bearer token, which is
// attached to every outgoing request once set.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a Client for the given backend.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Transport: transport, Timeout: timeout},
	}
}

// BaseURL returns the configured backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken installs the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken removes the bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the current bearer token, empty when unauthenticated.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// GetJSON issues a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues a POST request with a JSON body, decoding into out when
// out is non-nil.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, in, out)
}

// PutJSON issues a PUT request with a JSON body, decoding into out when
// out is non-nil.
func (c *Client) PutJSON(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, in, out)
}

// Delete issues a DELETE request, ignoring any response body.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("restclient: encode %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
	}
	return c.do(ctx, method, path, body, "application/json", out)
}

// do builds, sends and decodes a single request. All error translation from
// transport failures and HTTP statuses to domain errors happens here.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("restclient: build %s %s: %w", method, path, err)
	}

	requestID := utils.NewRequestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		translated := translateTransportError(err)
		utils.Warn("HTTP request failed", map[string]any{
			"method":     method,
			"path":       path,
			"request_id": requestID,
			"error":      err.Error(),
		})
		return fmt.Errorf("restclient: %s %s: %w", method, path, translated)
	}
	defer resp.Body.Close()

	utils.Debug("HTTP request", map[string]any{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"latency":    time.Since(start).String(),
		"request_id": requestID,
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("restclient: %s %s: status %d: %w", method, path, resp.StatusCode, statusError(resp.StatusCode))
	}

	if out == nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("restclient: decode %s %s response: %w", method, path, err)
	}
	return nil
}

// translateTransportError maps a failed round trip to the domain taxonomy:
// timeouts and everything else, which the UI reports as unreachable.
func translateTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", clienterrors.ErrTimeout, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: %v", clienterrors.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", clienterrors.ErrNetwork, err)
}

// statusError maps a non-2xx HTTP status to a sentinel error.
func statusError(status int) error {
	switch {
	case status == http.StatusBadRequest:
		return clienterrors.ErrBadRequest
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return clienterrors.ErrUnauthorized
	case status == http.StatusNotFound:
		return clienterrors.ErrNotFound
	case status == http.StatusConflict:
		return clienterrors.ErrConflict
	case status >= 500:
		return clienterrors.ErrServer
	default:
		return fmt.Errorf("unexpected status %d", status)
	}
}
