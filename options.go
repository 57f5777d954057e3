package puppetdep

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// discardHandler is a slog.Handler that drops every record. It backs the
// default logger so the library is silent unless a caller opts in with
// WithLogger.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs(_ []slog.Attr) slog.Handler    { return h }
func (h discardHandler) WithGroup(_ string) slog.Handler         { return h }

// resolverConfig accumulates Option values before validate() converts it
// into the immutable ResolutionOptions the resolver actually reads. This
// mirrors the teacher's own options.go: a private mutable config struct,
// one With* function per field, and a validation step, rather than
// chained self-returning setters.
type resolverConfig struct {
	forgeEndpoint     string
	fallbackEndpoints []string
	hide              map[string]bool
	ignore            map[string]bool
	preamble          string
	httpClient        *http.Client
	cloneTimeout      time.Duration
	logger            *slog.Logger
}

// Option configures a resolution run.
type Option func(*resolverConfig) error

// DefaultOptions returns the configuration used when no Option overrides
// it: the public forge, no hidden or ignored modules, no preamble, a
// 30 second clone timeout, and a silent logger.
func DefaultOptions() *resolverConfig {
	return &resolverConfig{
		forgeEndpoint: "https://forgeapi.puppetlabs.com",
		hide:          map[string]bool{},
		ignore:        map[string]bool{},
		cloneTimeout:  30 * time.Second,
	}
}

// WithForgeEndpoint overrides the default forge URL used when a manifest
// contains no "forge" declaration.
func WithForgeEndpoint(url string) Option {
	return func(c *resolverConfig) error {
		c.forgeEndpoint = url
		return nil
	}
}

// WithRegistryChain adds fallback forge endpoints, tried in order after
// the primary endpoint (the manifest's "forge" line, or WithForgeEndpoint)
// fails to serve a module. Use this to point at a private mirror that
// doesn't carry every module, falling back to the public forge.
func WithRegistryChain(endpoints ...string) Option {
	return func(c *resolverConfig) error {
		c.fallbackEndpoints = append(c.fallbackEndpoints, endpoints...)
		return nil
	}
}

// WithHidden adds slugs to the hide list: present in the resolution but
// omitted from the emitted manifest.
func WithHidden(slugs ...string) Option {
	return func(c *resolverConfig) error {
		for _, s := range slugs {
			c.hide[s] = true
		}
		return nil
	}
}

// WithIgnored adds slugs to the ignore list: deprecation and
// no-version-found errors on these slugs are demoted to warnings.
func WithIgnored(slugs ...string) Option {
	return func(c *resolverConfig) error {
		for _, s := range slugs {
			c.ignore[s] = true
		}
		return nil
	}
}

// WithPreamble sets literal text emitted immediately after the forge
// declaration in the output manifest.
func WithPreamble(text string) Option {
	return func(c *resolverConfig) error {
		c.preamble = text
		return nil
	}
}

// WithHTTPClient overrides the transport used for forge requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *resolverConfig) error {
		c.httpClient = client
		return nil
	}
}

// WithCloneTimeout bounds how long a repository clone may run.
func WithCloneTimeout(d time.Duration) Option {
	return func(c *resolverConfig) error {
		c.cloneTimeout = d
		return nil
	}
}

// WithLogger attaches a structured logger. Resolution is silent by
// default; pass slog.Default() to see progress on the standard logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *resolverConfig) error {
		c.logger = l
		return nil
	}
}

func newResolverConfig(opts ...Option) (*resolverConfig, error) {
	c := DefaultOptions()
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, c.validate()
}

func (c *resolverConfig) validate() error {
	if c.forgeEndpoint == "" {
		return ErrNoForgeEndpoint
	}
	return nil
}

func (c *resolverConfig) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(discardHandler{})
	}
	return c.logger
}

// ResolutionOptions is the immutable configuration record the resolver
// reads. It is built once from a validated resolverConfig and never
// mutated afterward.
type ResolutionOptions struct {
	ForgeEndpoint     string
	FallbackEndpoints []string
	Hide              map[string]bool
	Ignore            map[string]bool
	Preamble          string
	HTTPClient        *http.Client
	CloneTimeout      time.Duration
	Logger            *slog.Logger
}

// Log returns the configured logger, or a silent one if none was set.
func (o ResolutionOptions) Log() *slog.Logger {
	if o.Logger == nil {
		return slog.New(discardHandler{})
	}
	return o.Logger
}

func (c *resolverConfig) toResolutionOptions() ResolutionOptions {
	return ResolutionOptions{
		ForgeEndpoint:     c.forgeEndpoint,
		FallbackEndpoints: c.fallbackEndpoints,
		Hide:              c.hide,
		Ignore:            c.ignore,
		Preamble:          c.preamble,
		HTTPClient:        c.httpClient,
		CloneTimeout:      c.cloneTimeout,
		Logger:            c.logger,
	}
}
