package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/chrisdamba/fleetops/internal/repositories"
)

// Store keeps each snapshot in <dir>/<key>.json. Writes go through a temp file
// and a rename so a crash never leaves a half-written snapshot behind.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("file store: directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: create %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read %q: %w", key, err)
	}
	return b, nil
}

// PutMany stages every snapshot before renaming any, so a failed write leaves
// all previous snapshots in place.
func (s *Store) PutMany(ctx context.Context, snapshots map[string][]byte) error {
	staged := make(map[string]string, len(snapshots))
	defer func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}()

	for key, value := range snapshots {
		if err := ctx.Err(); err != nil {
			return err
		}
		tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
		if err != nil {
			return fmt.Errorf("file store: stage %q: %w", key, err)
		}
		staged[key] = tmp.Name()

		if _, err := tmp.Write(value); err != nil {
			tmp.Close()
			return fmt.Errorf("file store: write %q: %w", key, err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("file store: close %q: %w", key, err)
		}
	}

	for key, tmp := range staged {
		if err := os.Rename(tmp, s.path(key)); err != nil {
			return fmt.Errorf("file store: commit %q: %w", key, err)
		}
		delete(staged, key)
	}
	return nil
}

func (s *Store) Close() error { return nil }
