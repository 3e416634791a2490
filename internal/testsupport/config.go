package testsupport

import (
	"path/filepath"
	"testing"

	"urldeck/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ListFile = filepath.Join(base, "urls.txt")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.IconDir = filepath.Join(base, "icons")
	cfgVal.Fetch.TimeoutSeconds = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithListFormat overrides the list file convention.
func WithListFormat(format string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.List.Format = format
	}
}

// WithLookupService points the third candidate at a test server.
func WithLookupService(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resolver.LookupServiceURL = url
	}
}

// WithMaxInFlight bounds the enrichment scheduler.
func WithMaxInFlight(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Enrich.MaxInFlight = n
	}
}

// WithCacheDisabled turns the icon cache off.
func WithCacheDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = false
	}
}
