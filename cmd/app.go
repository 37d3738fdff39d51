package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chrisdamba/fleetops/internal/factories"
	"github.com/chrisdamba/fleetops/internal/ledger"
	"github.com/chrisdamba/fleetops/internal/models"
	"github.com/chrisdamba/fleetops/internal/repositories"
	"github.com/chrisdamba/fleetops/internal/repositories/file"
	"github.com/chrisdamba/fleetops/internal/repositories/memory"
	"github.com/chrisdamba/fleetops/internal/repositories/postgres"
	"github.com/chrisdamba/fleetops/internal/repositories/redis"
)

func openStore(ctx context.Context, sc models.StoreConfig) (repositories.SnapshotStore, error) {
	switch sc.Backend {
	case "memory":
		return memory.NewStore(), nil
	case "file":
		return file.NewStore(sc.Directory)
	case "redis":
		return redis.NewStore(sc.RedisAddr, sc.RedisDB, sc.RedisPrefix)
	case "postgres":
		return postgres.Connect(ctx, sc.PostgresDSN)
	}
	return nil, fmt.Errorf("unsupported store backend %q", sc.Backend)
}

// seedFunc builds fixtures per the config. Timestamps are relative to the
// configured clock, or to the moment of seeding when none is set.
func seedFunc(fc models.FixtureConfig) ledger.SeedFunc {
	return func() models.Fleet {
		now := fc.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		if fc.Source == "generated" {
			return factories.NewFleetFactory(fc.Seed).CreateFleet(fc, now)
		}
		return factories.MockFleet(now)
	}
}

func policyFrom(ac models.AssignmentConfig) ledger.Policy {
	return ledger.Policy{
		MinHOSHours:          ac.MinHOSHours,
		AllowAssignedDrivers: ac.AllowAssignedDrivers,
	}
}

// openLedger opens the configured store and loads the ledger from it, seeding
// from seed or, when nil, from the configured fixtures. The returned func
// closes the store.
func openLedger(ctx context.Context, seed ledger.SeedFunc) (*ledger.Ledger, func(), error) {
	if seed == nil {
		seed = seedFunc(cfg.Fixtures)
	}
	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}

	l, err := ledger.Open(ctx, store, seed,
		ledger.WithPolicy(policyFrom(cfg.Assignment)),
		ledger.WithLogger(logger.Named("ledger")),
	)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	logger.Debug("ledger opened", zap.String("store", cfg.Store.Backend))
	return l, closeStore, nil
}
