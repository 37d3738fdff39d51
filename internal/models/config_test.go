package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(viper.New(), "")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Store.Backend != "file" || cfg.Assignment.MinHOSHours != 4 || cfg.Assignment.AllowAssignedDrivers {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Kafka.DialTimeout != 30*time.Second {
		t.Errorf("Kafka.DialTimeout = %v, want 30s", cfg.Kafka.DialTimeout)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fleetops.yaml")
	yaml := `
store:
  backend: redis
  redis_addr: cache:6379
assignment:
  min_hos_hours: 6
fixtures:
  now: 2024-03-15T12:00:00Z
export:
  format: parquet
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FLEETOPS_ASSIGNMENT_ALLOW_ASSIGNED_DRIVERS", "true")

	cfg, err := LoadConfig(viper.New(), path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Store.Backend != "redis" || cfg.Store.RedisAddr != "cache:6379" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Assignment.MinHOSHours != 6 || !cfg.Assignment.AllowAssignedDrivers {
		t.Errorf("assignment = %+v", cfg.Assignment)
	}
	if want := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC); !cfg.Fixtures.Now.Equal(want) {
		t.Errorf("fixtures.now = %v, want %v", cfg.Fixtures.Now, want)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Store:    StoreConfig{Backend: "memory"},
			Export:   ExportConfig{Format: "json"},
			Fixtures: FixtureConfig{Source: "mock"},
		}
	}
	if err := (func() *Config { c := base(); return &c })().Validate(); err != nil {
		t.Fatalf("Validate(base) error = %v", err)
	}

	bad := []func(*Config){
		func(c *Config) { c.Store.Backend = "etcd" },
		func(c *Config) { c.Store.Backend = "postgres" },
		func(c *Config) { c.Assignment.MinHOSHours = -1 },
		func(c *Config) { c.Export.Format = "csv" },
		func(c *Config) { c.Fixtures.Source = "csv" },
	}
	for i, mutate := range bad {
		c := base()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: Validate() error = nil", i)
		}
	}
}
