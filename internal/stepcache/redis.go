package stepcache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"reelcheck/internal/config"
)

const (
	redisWorkflowPrefix = "reelcheck:wf:"
	redisIndexKey       = "reelcheck:workflows"
)

// putStepScript upserts one step field atomically while refusing to replace
// an existing ok result.
var putStepScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], ARGV[1])
if current then
	local decoded = cjson.decode(current)
	if decoded['status'] == 'ok' then
		return 0
	end
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
redis.call('SADD', KEYS[2], ARGV[3])
return 1
`)

// RedisStore persists workflow step results in a Redis hash per workflow key.
type RedisStore struct {
	client *redis.Client
}

// OpenRedis connects to the configured Redis instance and verifies it is
// reachable before returning.
func OpenRedis(cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Cache.RedisAddr, err)
	}
	return &RedisStore{client: client}, nil
}

// Close releases the Redis connection pool.
func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Get loads the cached record for key. Unknown keys yield an empty record.
func (s *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrEmptyKey
	}
	ctx = ensureContext(ctx)

	fields, err := s.client.HGetAll(ctx, redisWorkflowPrefix+key).Result()
	if err != nil {
		return nil, fmt.Errorf("load workflow %s: %w", key, err)
	}

	record := &Record{Key: key, Steps: make(map[string]StepResult, len(fields))}
	for step, raw := range fields {
		var result StepResult
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return nil, fmt.Errorf("decode step %s/%s: %w", key, step, err)
		}
		record.Steps[step] = result
		if result.UpdatedAt.After(record.UpdatedAt) {
			record.UpdatedAt = result.UpdatedAt
		}
	}
	return record, nil
}

// PutStep durably upserts one step result without replacing an existing ok.
func (s *RedisStore) PutStep(ctx context.Context, key, step string, result StepResult) error {
	if err := validateKeyStep(key, step); err != nil {
		return err
	}
	ctx = ensureContext(ctx)

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode step %s/%s: %w", key, step, err)
	}
	err = putStepScript.Run(ctx, s.client,
		[]string{redisWorkflowPrefix + key, redisIndexKey},
		step, string(encoded), key,
	).Err()
	if err != nil {
		return fmt.Errorf("upsert step %s/%s: %w", key, step, err)
	}
	return nil
}

// Delete removes one workflow and all of its step results.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	ctx = ensureContext(ctx)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, redisWorkflowPrefix+key)
	pipe.SRem(ctx, redisIndexKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete workflow %s: %w", key, err)
	}
	return nil
}

// Keys lists all cached workflow keys.
func (s *RedisStore) Keys(ctx context.Context) ([]string, error) {
	ctx = ensureContext(ctx)
	keys, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	return keys, nil
}
