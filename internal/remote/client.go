// Package remote talks to the level service: paged search, cover images and
// level archives.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBase is used when no API base is configured.
const DefaultBase = "https://levels.example.com"

// Client is a level service client. The token, when set, is sent as a
// bearer token on search requests.
type Client struct {
	token string
	base  string
	http  *http.Client
	log   zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the client's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a Client for base. An empty base uses DefaultBase.
func New(base, token string, opts ...Option) *Client {
	if base == "" {
		base = DefaultBase
	}
	c := &Client{
		token: token,
		base:  strings.TrimRight(base, "/"),
		http: &http.Client{
			// archives can be large
			Timeout: 10 * time.Minute,
		},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Base returns the API base URL.
func (c *Client) Base() string { return c.base }

// get performs a GET. auth controls whether the bearer token is attached.
func (c *Client) get(ctx context.Context, url string, auth bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if auth && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", "levelshelf")
	c.log.Debug().Str("url", url).Msg("GET")
	return c.http.Do(req)
}

// getJSON performs an authenticated GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	resp, err := c.get(ctx, url, true)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := checkStatus(resp); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// url builds an API URL from path segments.
func (c *Client) url(parts ...string) string {
	return c.base + "/" + strings.Join(parts, "/")
}

// checkStatus returns a typed error for non-2xx responses.
func checkStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("level service error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
