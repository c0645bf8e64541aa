package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisOptions describes the connection parameters for a Redis-backed
// knowledge base.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	// Prefix namespaces every key so multiple assistants can share one Redis.
	Prefix string
}

// RedisStore is a KnowledgeBase backed by Redis. Values are stored as JSON
// under a configurable key prefix, so entries survive process restarts and
// can be shared between processes. Retrieve returns decoded JSON values
// (maps, slices, strings, numbers).
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Address == "" {
		return nil, errors.New("redis address is required")
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "arcana:knowledge:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{client: client, prefix: prefix}, nil
}

// NewRedisStoreFromClient wraps an existing client, useful when the caller
// already manages a connection pool.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "arcana:knowledge:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Store persists value as JSON under the prefixed key.
func (s *RedisStore) Store(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode knowledge entry %q: %w", key, err)
	}
	if err := s.client.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("store knowledge entry %q: %w", key, err)
	}
	return nil
}

// Retrieve returns the decoded value stored under key or ErrNotFound.
func (s *RedisStore) Retrieve(ctx context.Context, key string) (any, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("key %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("retrieve knowledge entry %q: %w", key, err)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decode knowledge entry %q: %w", key, err)
	}
	return value, nil
}

// Keys lists all keys in the store's namespace, with the prefix stripped.
func (s *RedisStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan knowledge keys: %w", err)
	}
	return keys, nil
}

// Delete removes key if present.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("delete knowledge entry %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error { return s.client.Close() }
