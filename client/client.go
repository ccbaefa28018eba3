package client

import (
	"net/http"
	"strings"
	"time"

	"github.com/habedi/sbanken/auth"
)

// DefaultBaseURL is the production API host.
const DefaultBaseURL = "https://api.sbanken.no"

// DefaultTimeout bounds a single HTTP exchange when the default transport is used.
const DefaultTimeout = 30 * time.Second

// Doer sends an HTTP request and returns the response. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the banking API on behalf of one API client identity.
// It is safe for concurrent use as long as the configured TokenCache is; two calls racing on an
// empty cache may both fetch a token, which is harmless.
type Client struct {
	baseURL  string
	clientID string
	secret   string
	cache    auth.TokenCache
	http     Doer
	limiter  *RateLimiter
	now      func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host, e.g. to point at a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithTokenCache injects the cache that holds the access token.
func WithTokenCache(cache auth.TokenCache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithHTTPClient injects the transport used for every request.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) { c.http = doer }
}

// WithClock overrides the clock used to stamp issued tokens and default query dates.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithRateLimit caps outgoing requests per second. Zero or negative disables the limit.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *Client) { c.limiter = NewRateLimiter(requestsPerSecond) }
}

// New creates a Client for the given client credentials.
func New(clientID, secret string, opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		clientID: clientID,
		secret:   secret,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = auth.NewMemoryCacheWithClock(c.now)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: DefaultTimeout}
	}
	return c
}
