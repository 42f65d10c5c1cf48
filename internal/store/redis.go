package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fakeyudi/stride/internal/session"
)

// DefaultRedisPrefix namespaces stride keys.
const DefaultRedisPrefix = "stride:"

// RedisStore keeps runs in a hash of run id -> JSON and the in-progress
// session under its own key.
//
//	{prefix}runs     hash
//	{prefix}session  string
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) runsKey() string    { return r.prefix + "runs" }
func (r *RedisStore) sessionKey() string { return r.prefix + "session" }

func (r *RedisStore) LoadAllRuns(ctx context.Context) ([]session.Run, error) {
	all, err := r.client.HGetAll(ctx, r.runsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load runs: %w", err)
	}
	raw := make([][]byte, 0, len(all))
	for _, v := range all {
		raw = append(raw, []byte(v))
	}
	runs, _ := decodeRuns(ctx, raw)
	return runs, nil
}

func (r *RedisStore) LoadRun(ctx context.Context, id string) (session.Run, error) {
	data, err := r.client.HGet(ctx, r.runsKey(), id).Result()
	if errors.Is(err, redis.Nil) {
		return session.Run{}, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return session.Run{}, fmt.Errorf("failed to get run: %w", err)
	}
	return decodeRun(ctx, id, []byte(data))
}

func (r *RedisStore) Save(ctx context.Context, run session.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run data: %w", err)
	}
	if err := r.client.HSet(ctx, r.runsKey(), run.ID, data).Err(); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := r.client.HDel(ctx, r.runsKey(), id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	return nil
}

func (r *RedisStore) LoadInProgress(ctx context.Context) (*session.RunSession, error) {
	data, err := r.client.Get(ctx, r.sessionKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get in-progress run: %w", err)
	}
	return decodeSession(data)
}

func (r *RedisStore) SaveInProgress(ctx context.Context, s *session.RunSession) error {
	if s == nil {
		if err := r.client.Del(ctx, r.sessionKey()).Err(); err != nil {
			return fmt.Errorf("failed to clear in-progress run: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal in-progress run: %w", err)
	}
	if err := r.client.Set(ctx, r.sessionKey(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save in-progress run: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error { return r.client.Close() }
