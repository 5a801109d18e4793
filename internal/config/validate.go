package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that configuration values are usable. It returns the first
// problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		return errors.New("paths.api_bind must not be empty")
	}

	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}

	switch c.Cache.Backend {
	case "", CacheBackendSQLite:
	case CacheBackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New("cache.redis_addr is required when cache.backend is redis")
		}
	default:
		return fmt.Errorf("cache.backend: unsupported value %q", c.Cache.Backend)
	}

	switch c.Pipeline.TranscriptPolicy {
	case "", TranscriptRequire, TranscriptCaption:
	default:
		return fmt.Errorf("pipeline.transcript_policy: unsupported value %q", c.Pipeline.TranscriptPolicy)
	}

	if c.Retrieval.SearxURL == "" {
		return errors.New("retrieval.searx_url must not be empty")
	}
	if c.Retrieval.TopK > c.Retrieval.MaxResults {
		return fmt.Errorf("retrieval.top_k (%d) must not exceed retrieval.max_results (%d)", c.Retrieval.TopK, c.Retrieval.MaxResults)
	}

	if c.Embeddings.BaseURL == "" {
		return errors.New("embeddings.base_url must not be empty")
	}
	return nil
}
