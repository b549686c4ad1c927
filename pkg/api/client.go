// Package api is the client of the menu backend. Every call goes through
// Fetch, which attaches the session token, retries transport failures and
// 5xx responses with linear backoff, and reports connectivity on the bus.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/jonborges/menu4you/pkg/events"
	"github.com/jonborges/menu4you/pkg/fallback"
	"github.com/jonborges/menu4you/pkg/global"
)

const (
	DefaultRetries = 2
	DefaultBackoff = 300 * time.Millisecond
	DefaultTimeout = 10 * time.Second
)

// TokenSource yields the current bearer token, or "" when logged out.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	bus        *events.Bus
	users      *fallback.Users
	retries    int
	backoff    time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithBus(bus *events.Bus) Option {
	return func(c *Client) { c.bus = bus }
}

// WithFallback enables local register/login when the backend is unreachable.
func WithFallback(users *fallback.Users) Option {
	return func(c *Client) { c.users = users }
}

func WithRetry(retries int, backoff time.Duration) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.retries = retries
		}
		if backoff >= 0 {
			c.backoff = backoff
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		retries: DefaultRetries,
		backoff: DefaultBackoff,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.httpClient.Jar == nil {
		// Credentials (cookies) ride along on every request.
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err == nil {
			c.httpClient.Jar = jar
		}
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch sends the request, retrying up to c.retries extra times on
// transport failures and 5xx responses. The wait before attempt n is
// backoff × n. Any response below 500 is returned as is and signals online;
// running out of attempts signals offline and returns a *NetworkError.
func (c *Client) Fetch(ctx context.Context, method, path string, body []byte, header http.Header) (*global.Response, error) {
	url := c.baseURL + path

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.backoff*time.Duration(attempt)); err != nil {
				return nil, err
			}
		}
		attempts++

		resp, err := c.do(ctx, method, url, body, header)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			log.Printf("Attempt %d of %s %s failed: %v", attempts, method, url, err)
			continue
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = &HTTPError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
			log.Printf("Attempt %d of %s %s returned %d", attempts, method, url, resp.StatusCode)
			continue
		}

		c.bus.Emit(events.Online)
		return resp, nil
	}

	c.bus.Emit(events.Offline)
	return nil, &NetworkError{Method: method, URL: url, Attempts: attempts, Cause: lastErr}
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, header http.Header) (*global.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = append([]string(nil), v...)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &global.Response{StatusCode: resp.StatusCode, Body: data, Headers: resp.Header}, nil
}

// FetchJSON sends in as JSON (when non-nil) and decodes the response into
// out. Non-2xx responses become *HTTPError carrying the raw body. A 204 or
// empty body leaves out untouched.
func (c *Client) FetchJSON(ctx context.Context, method, path string, in, out any) error {
	header := http.Header{}
	header.Set("Accept", "application/json")

	var body []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = data
		header.Set("Content-Type", "application/json")
	}
	return c.send(ctx, method, path, body, header, out)
}

type validator interface {
	Validate() error
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, header http.Header, out any) error {
	resp, err := c.Fetch(ctx, method, path, body, header)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(resp.Body)) == 0 || out == nil {
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, path, err)
	}
	if v, ok := out.(validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, path, err)
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
