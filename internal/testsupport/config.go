package testsupport

import (
	"path/filepath"
	"testing"

	"reelcheck/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.MediaDir = filepath.Join(base, "media")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithTranscriptPolicy overrides the transcript policy on the test config.
func WithTranscriptPolicy(policy string) ConfigOption {
	return func(c *config.Config) {
		c.Pipeline.TranscriptPolicy = policy
	}
}

// WithEvidenceCaching enables per-claim evidence caching on the test config.
func WithEvidenceCaching() ConfigOption {
	return func(c *config.Config) {
		c.Cache.Evidence = true
	}
}
