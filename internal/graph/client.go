// Package graph is a thin HTTP client for the Facebook Graph API. It is the
// backend of the fallback connector used where no native binding exists.
package graph

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	slogctx "github.com/veqryn/slog-context"
)

const DefaultBaseURL = "https://graph.facebook.com"
const DefaultVersion = "v19.0"

// Result is the outcome of a completed HTTP exchange. A Graph API error
// body is still a Result; transport failures are returned as errors.
type Result struct {
	StatusCode int
	Body       string
}

// OK reports whether the exchange completed without a protocol error.
func (r Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type Client struct {
	baseURL    string
	version    string
	httpClient *http.Client
	cache      *gocache.Cache
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

func WithVersion(version string) Option {
	return func(c *Client) {
		if version != "" {
			c.version = version
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithCacheTTL caches successful GET responses for the given duration,
// keyed by the full request URL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.cache = gocache.New(ttl, 2*ttl)
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		version:    DefaultVersion,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Do performs a Graph API call with the access token appended. The path is
// relative to the versioned API root ("me", "me/friends", ...).
func (c *Client) Do(ctx context.Context, method, path string, params url.Values, accessToken string) (Result, error) {
	u, err := c.buildURL(path, params, accessToken)
	if err != nil {
		return Result{}, fmt.Errorf("building graph url: %w", err)
	}

	method = strings.ToUpper(method)
	if method == "" {
		method = http.MethodGet
	}

	if method == http.MethodGet && c.cache != nil {
		if body, ok := c.cache.Get(u); ok {
			slogctx.Debug(ctx, "Graph response served from cache", "path", path)
			return Result{StatusCode: http.StatusOK, Body: body.(string)}, nil
		}
	}

	var requestBody io.Reader
	requestURL := u
	if method == http.MethodPost {
		// Graph API POSTs take their parameters form-encoded in the body.
		base, query, found := strings.Cut(u, "?")
		if found {
			requestURL = base
			requestBody = strings.NewReader(query)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, requestBody)
	if err != nil {
		return Result{}, fmt.Errorf("creating graph request: %w", err)
	}
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("executing graph request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("reading graph response: %w", err)
	}

	result := Result{StatusCode: resp.StatusCode, Body: string(body)}

	if method == http.MethodGet && c.cache != nil && result.OK() {
		c.cache.Set(u, result.Body, gocache.DefaultExpiration)
	}

	return result, nil
}

func (c *Client) buildURL(path string, params url.Values, accessToken string) (string, error) {
	u, err := url.Parse(c.baseURL + "/" + c.version + "/" + strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parsing graph path: %w", err)
	}

	q := u.Query()
	for key, values := range params {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	if accessToken != "" {
		q.Set("access_token", accessToken)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// AppAccessToken builds the application access token used by flows that run
// before any user is logged in, such as device login.
func AppAccessToken(appID, clientToken string) string {
	return appID + "|" + clientToken
}
