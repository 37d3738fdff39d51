// Package storetest holds the behaviour every SnapshotStore must share.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/chrisdamba/fleetops/internal/repositories"
)

// Run exercises a fresh store returned by newStore.
func Run(t *testing.T, newStore func(t *testing.T) repositories.SnapshotStore) {
	t.Run("missing key", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Get(context.Background(), "fleet-trips"); !errors.Is(err, repositories.ErrNotFound) {
			t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("put many then get", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		in := map[string][]byte{
			"fleet-trips":   []byte(`[{"id":"trip001"}]`),
			"fleet-drivers": []byte(`[{"id":"drv1"}]`),
		}
		if err := s.PutMany(ctx, in); err != nil {
			t.Fatalf("PutMany() error = %v", err)
		}
		for k, want := range in {
			got, err := s.Get(ctx, k)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", k, err)
			}
			if string(got) != string(want) {
				t.Errorf("Get(%q) = %s, want %s", k, got, want)
			}
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		_ = s.PutMany(ctx, map[string][]byte{"fleet-kpis": []byte(`{"active_trips":4}`)})
		if err := s.PutMany(ctx, map[string][]byte{"fleet-kpis": []byte(`{"active_trips":5}`)}); err != nil {
			t.Fatalf("PutMany() error = %v", err)
		}
		got, _ := s.Get(ctx, "fleet-kpis")
		if string(got) != `{"active_trips":5}` {
			t.Errorf("Get() = %s, want the second write", got)
		}
	})

	t.Run("put leaves other keys alone", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		_ = s.PutMany(ctx, map[string][]byte{"fleet-assets": []byte(`[]`)})
		_ = s.PutMany(ctx, map[string][]byte{"fleet-trailers": []byte(`[]`)})
		if _, err := s.Get(ctx, "fleet-assets"); err != nil {
			t.Errorf("Get(fleet-assets) error = %v", err)
		}
	})
}
