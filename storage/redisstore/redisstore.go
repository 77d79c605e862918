// Package redisstore backs the SDK's key-value state with Redis, for
// server-side hosts that embed the client (e.g. a backend completing the
// code flow on behalf of a device).
package redisstore

import (
	"context"

	"github.com/jrsteele09/go-authkit/storage"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ storage.Adapter = (*Store)(nil)

// Store is a Redis-backed adapter. The caller owns the client's lifecycle.
type Store struct {
	client *redis.Client
	prefix string
}

// New wraps an existing Redis client. prefix namespaces this SDK instance's
// keys; Clear only touches keys under it.
func New(client *redis.Client, prefix string) (*Store, error) {
	if client == nil {
		return nil, errors.New("[redisstore.New] client is required")
	}
	return &Store{client: client, prefix: prefix}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "[redisstore.Get] GET")
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return errors.Wrap(s.client.Set(ctx, s.prefix+key, value, 0).Err(), "[redisstore.Set] SET")
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return errors.Wrap(s.client.Del(ctx, s.prefix+key).Err(), "[redisstore.Remove] DEL")
}

func (s *Store) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return errors.Wrap(err, "[redisstore.Clear] DEL")
		}
	}
	return errors.Wrap(iter.Err(), "[redisstore.Clear] SCAN")
}
