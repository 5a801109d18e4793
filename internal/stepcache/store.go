package stepcache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reelcheck/internal/config"
)

// ErrEmptyKey is returned when a caller passes a blank workflow key.
var ErrEmptyKey = errors.New("workflow key must not be empty")

// Store is the durable mapping from workflow keys to per-step results.
//
// PutStep must be an idempotent upsert that never replaces an existing ok
// result; Get for an unknown key returns an empty Record, not an error.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)
	PutStep(ctx context.Context, key, step string, result StepResult) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Open builds the store selected by cache.backend in the configuration.
func Open(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	switch cfg.Cache.Backend {
	case "", config.CacheBackendSQLite:
		return OpenSQLite(cfg)
	case config.CacheBackendRedis:
		return OpenRedis(cfg)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func validateKeyStep(key, step string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	if strings.TrimSpace(step) == "" {
		return errors.New("step name must not be empty")
	}
	return nil
}
