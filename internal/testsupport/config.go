package testsupport

import (
	"testing"

	"cbzsanitize/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a finalized default config with the provided options applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize test config: %v", err)
	}
	return &cfg
}

// WithMaxDimension overrides the transcode dimension bound.
func WithMaxDimension(px int) ConfigOption {
	return func(c *config.Config) {
		c.Transcode.MaxDimension = px
	}
}

// WithSizeThreshold overrides the transcode size trigger, e.g. "20 KB".
func WithSizeThreshold(size string) ConfigOption {
	return func(c *config.Config) {
		c.Transcode.SizeThreshold = size
	}
}

// WithQuality overrides the JPEG quality.
func WithQuality(q int) ConfigOption {
	return func(c *config.Config) {
		c.Transcode.Quality = q
	}
}

// WithKeepOriginal enables source backups.
func WithKeepOriginal() ConfigOption {
	return func(c *config.Config) {
		c.Output.KeepOriginal = true
	}
}
