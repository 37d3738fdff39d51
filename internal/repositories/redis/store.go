package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/chrisdamba/fleetops/internal/repositories"
)

// Store keeps snapshots as plain Redis strings, optionally under a key prefix.
type Store struct {
	client *goredis.Client
	prefix string
}

func NewStore(addr string, db int, prefix string) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr, DB: db})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis store: ping %s: %w", addr, err)
	}
	return &Store{client: client, prefix: prefix}, nil
}

// NewStoreFromClient wraps an existing client; the store takes ownership of it.
func NewStoreFromClient(client *goredis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis store: get %q: %w", key, err)
	}
	return b, nil
}

// PutMany writes all keys inside MULTI/EXEC.
func (s *Store) PutMany(ctx context.Context, snapshots map[string][]byte) error {
	if len(snapshots) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for k, v := range snapshots {
			pipe.Set(ctx, s.prefix+k, v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis store: put %d keys: %w", len(snapshots), err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
