package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "chat:session:"

// RedisStore is the multi-process Store. Each session is a redis list of
// JSON-encoded turns; appends push the question/answer pair in one pipeline
// and trims use LTRIM, which keeps pairs intact because every push is paired.
// Expiry uses native key TTLs.
type RedisStore struct {
	rdb      *redis.Client
	maxTurns int
	ttl      time.Duration
}

func NewRedisStore(rdb *redis.Client, maxTurns int, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, maxTurns: maxTurns, ttl: ttl}
}

func redisKey(key string) string { return redisKeyPrefix + key }

// GetOrCreate is a no-op: an empty redis list cannot exist, so sessions
// materialize on first append.
func (r *RedisStore) GetOrCreate(ctx context.Context, key string) error { return nil }

func (r *RedisStore) AppendInteraction(ctx context.Context, key, question, answer string) error {
	q, err := json.Marshal(Turn{Role: RoleUser, Content: question})
	if err != nil {
		return err
	}
	a, err := json.Marshal(Turn{Role: RoleAssistant, Content: answer})
	if err != nil {
		return err
	}
	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, redisKey(key), q, a)
	pipe.LTrim(ctx, redisKey(key), int64(-r.maxTurns), -1)
	if r.ttl > 0 {
		pipe.Expire(ctx, redisKey(key), r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append: %w", err)
	}
	return nil
}

func (r *RedisStore) History(ctx context.Context, key string) ([]Turn, error) {
	raw, err := r.rdb.LRange(ctx, redisKey(key), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis history: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]Turn, 0, len(raw))
	for _, item := range raw {
		var t Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, fmt.Errorf("redis history decode: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *RedisStore) Trim(ctx context.Context, key string) error {
	if err := r.rdb.LTrim(ctx, redisKey(key), int64(-r.maxTurns), -1).Err(); err != nil {
		return fmt.Errorf("redis trim: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Del(ctx, redisKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis clear: %w", err)
	}
	return n > 0, nil
}

func (r *RedisStore) Stats(ctx context.Context, key string) (SessionStats, bool, error) {
	n, err := r.rdb.LLen(ctx, redisKey(key)).Result()
	if err != nil {
		return SessionStats{}, false, fmt.Errorf("redis stats: %w", err)
	}
	if n == 0 {
		return SessionStats{}, false, nil
	}
	return SessionStats{
		TurnCount:        int(n),
		MaxTurns:         r.maxTurns,
		InteractionCount: int(n) / 2,
		MaxInteractions:  r.maxTurns / 2,
	}, true, nil
}

func (r *RedisStore) Keys(ctx context.Context) ([]string, error) {
	var out []string
	iter := r.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		out = append(out, strings.TrimPrefix(iter.Val(), redisKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis keys: %w", err)
	}
	return out, nil
}
