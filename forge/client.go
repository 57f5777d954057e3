package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Client talks to a single forge endpoint's v3 HTTP surface. It caches
// decoded responses for its own lifetime; callers that need a fresh view
// across runs should construct a new Client.
type Client struct {
	baseURL string
	http    *http.Client

	moduleCache sync.Map // slug string -> ModuleData
}

// ClientOption configures a Client at construction.
type ClientOption func(*Client)

// WithHTTPClient overrides the transport used for requests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.http = c }
}

// NewClient builds a Client for baseURL (e.g. "https://forgeapi.puppetlabs.com").
func NewClient(baseURL string, opts ...ClientOption) *Client {
	cl := &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// BaseURL returns the endpoint this client was constructed with.
func (c *Client) BaseURL() string { return c.baseURL }

// GetModule fetches and caches GET /v3/modules/{author}-{name}.
func (c *Client) GetModule(ctx context.Context, author, name string) (ModuleData, error) {
	key := author + "-" + name
	if cached, ok := c.moduleCache.Load(key); ok {
		return cached.(ModuleData), nil
	}

	endpoint := fmt.Sprintf("%s/v3/modules/%s-%s", c.baseURL, url.PathEscape(author), url.PathEscape(name))
	var data ModuleData
	if err := c.getJSON(ctx, endpoint, &data); err != nil {
		return ModuleData{}, err
	}
	c.moduleCache.Store(key, data)
	return data, nil
}

// GetRelease fetches GET /v3/releases/{author}-{name}-{version}. Release
// payloads are not cached by the client itself; the forge Cache (§4.4)
// owns run-scoped caching of this result.
func (c *Client) GetRelease(ctx context.Context, author, name, version string) (ReleaseData, error) {
	endpoint := fmt.Sprintf("%s/v3/releases/%s-%s-%s", c.baseURL,
		url.PathEscape(author), url.PathEscape(name), url.PathEscape(version))
	var data ReleaseData
	if err := c.getJSON(ctx, endpoint, &data); err != nil {
		return ReleaseData{}, err
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("forge: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("forge: request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrModuleNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("forge: unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("forge: decode response from %s: %w", endpoint, err)
	}
	return nil
}
