package repositories

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when nothing has been stored under the key yet.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore keeps one opaque snapshot per key. PutMany writes all keys
// together on backends that support it.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	PutMany(ctx context.Context, snapshots map[string][]byte) error
	Close() error
}
