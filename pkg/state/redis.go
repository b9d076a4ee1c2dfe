package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/faceaug/pkg/cache"
)

// DefaultRedisKey holds the state when no key is configured.
const DefaultRedisKey = "faceaug:state"

// RedisStore keeps the state as a JSON document under one Redis key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to addr (host:port or a redis:// URL).
func NewRedisStore(ctx context.Context, addr, key string) (*RedisStore, error) {
	client, err := cache.NewRedisClient(addr)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}, nil
}

func (s *RedisStore) Load(ctx context.Context) (*State, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	st.normalize()
	return &st, nil
}

func (s *RedisStore) Save(ctx context.Context, st *State) error {
	st.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
			return cache.Retryable(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
