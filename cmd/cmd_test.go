package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/chrisdamba/fleetops/internal/ledger"
	"github.com/chrisdamba/fleetops/internal/models"
)

func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--store", "file", "--data-dir", dataDir, "--log-level", "error"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAssignAndReportThroughCLI(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "assign", "trip004", "drv3", "ast3", "trl3")
	if err != nil {
		t.Fatalf("assign error = %v", err)
	}
	if !strings.Contains(out, "ORD-2024-0489 Dispatched") {
		t.Errorf("assign output = %q", out)
	}

	_, err = run(t, dir, "assign", "trip004", "drv5", "ast5", "trl5")
	if !ledger.IsValidation(err) {
		t.Errorf("second assign error = %v, want validation error from the stored state", err)
	}

	out, err = run(t, dir, "exception", "trip001", "--type", "weather", "--severity", "high", "--description", "Whiteout on I-94")
	if err != nil {
		t.Fatalf("exception error = %v", err)
	}
	if !strings.Contains(out, "on-time risk is now high") {
		t.Errorf("exception output = %q", out)
	}

	out, err = run(t, dir, "trips", "--view", "at-risk")
	if err != nil {
		t.Fatalf("trips error = %v", err)
	}
	for _, id := range []string{"trip001", "trip002", "trip003"} {
		if !strings.Contains(out, id) {
			t.Errorf("at-risk listing missing %s:\n%s", id, out)
		}
	}
	if strings.Contains(out, "trip004") {
		t.Errorf("at-risk listing includes low-risk trip004:\n%s", out)
	}
}

func TestUnknownView(t *testing.T) {
	if _, err := run(t, t.TempDir(), "trips", "--view", "late"); err == nil {
		t.Error("trips --view late error = nil")
	}
}

func TestSeedFunc(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	mock := seedFunc(models.FixtureConfig{Source: "mock", Now: now})()
	if len(mock.Trips) != 4 || !mock.Trips[0].CreatedAt.Equal(now.Add(-5*time.Hour)) {
		t.Errorf("mock seed = %d trips, first created %v", len(mock.Trips), mock.Trips[0].CreatedAt)
	}

	gen := seedFunc(models.FixtureConfig{Source: "generated", Seed: 7, Drivers: 8, Assets: 6, Trailers: 6, Trips: 5, Now: now})()
	if len(gen.Drivers) != 8 || len(gen.Trips) != 5 {
		t.Errorf("generated seed = %d drivers, %d trips, want 8, 5", len(gen.Drivers), len(gen.Trips))
	}
}

func TestOpenStoreRejectsUnknownBackend(t *testing.T) {
	if _, err := openStore(context.Background(), models.StoreConfig{Backend: "etcd"}); err == nil {
		t.Error("openStore(etcd) error = nil")
	}
}
