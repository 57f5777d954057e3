package forge

import (
	"context"
	"errors"
	"sync"
)

// endpointClient is the subset of *Client a Chain depends on; satisfied by
// *Client, with a compile-time assertion below.
type endpointClient interface {
	BaseURL() string
	GetModule(ctx context.Context, author, name string) (ModuleData, error)
	GetRelease(ctx context.Context, author, name, version string) (ReleaseData, error)
}

var _ endpointClient = (*Client)(nil)

// Chain queries a list of forge endpoints in order, falling back to the
// next on any error (not just 404 — a private mirror forge may be
// unreachable entirely while the upstream public forge still serves the
// module). Once an endpoint serves a module it is remembered, so later
// release/dependency lookups for that module skip straight to it instead
// of re-probing the chain.
type Chain struct {
	clients []endpointClient

	servedBy   map[string]int // slug -> index into clients
	servedByMu sync.RWMutex
}

// NewChain builds a Chain over clients, tried in the given order.
func NewChain(clients ...endpointClient) *Chain {
	return &Chain{
		clients:  clients,
		servedBy: make(map[string]int),
	}
}

// NewClientChain is the entry point external callers use to build a Chain
// of real HTTP clients from a list of base URLs, tried in order; opts
// applies to every client alike. NewChain itself stays typed on the
// unexported endpointClient interface so package tests can inject fakes.
func NewClientChain(opts []ClientOption, baseURLs ...string) *Chain {
	clients := make([]endpointClient, 0, len(baseURLs))
	for _, url := range baseURLs {
		clients = append(clients, NewClient(url, opts...))
	}
	return NewChain(clients...)
}

func (c *Chain) rememberIndex(slug string, idx int) {
	c.servedByMu.Lock()
	c.servedBy[slug] = idx
	c.servedByMu.Unlock()
}

func (c *Chain) indexFor(slug string) (int, bool) {
	c.servedByMu.RLock()
	defer c.servedByMu.RUnlock()
	idx, ok := c.servedBy[slug]
	return idx, ok
}

// GetModule tries each client in order, returning the first success.
func (c *Chain) GetModule(ctx context.Context, author, name string) (ModuleData, error) {
	slug := author + "-" + name
	if idx, ok := c.indexFor(slug); ok {
		return c.clients[idx].GetModule(ctx, author, name)
	}

	var lastErr error
	for idx, client := range c.clients {
		data, err := client.GetModule(ctx, author, name)
		if err == nil {
			c.rememberIndex(slug, idx)
			return data, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("forge: no registries configured")
	}
	return ModuleData{}, lastErr
}

// GetRelease queries whichever client is already known to serve slug, or
// falls back to the chain if the module hasn't been seen yet.
func (c *Chain) GetRelease(ctx context.Context, author, name, version string) (ReleaseData, error) {
	slug := author + "-" + name
	if idx, ok := c.indexFor(slug); ok {
		return c.clients[idx].GetRelease(ctx, author, name, version)
	}

	var lastErr error
	for idx, client := range c.clients {
		data, err := client.GetRelease(ctx, author, name, version)
		if err == nil {
			c.rememberIndex(slug, idx)
			return data, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("forge: no registries configured")
	}
	return ReleaseData{}, lastErr
}

// BaseURL returns the first configured endpoint, for display purposes.
func (c *Chain) BaseURL() string {
	if len(c.clients) == 0 {
		return ""
	}
	return c.clients[0].BaseURL()
}
