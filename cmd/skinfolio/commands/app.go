package commands

import (
	"context"
	"fmt"

	"github.com/skinfolio/skinfolio/internal/contracts"
	"github.com/skinfolio/skinfolio/internal/ingest"
	"github.com/skinfolio/skinfolio/internal/provider"
	"github.com/skinfolio/skinfolio/internal/scoring"
	"github.com/skinfolio/skinfolio/internal/simulation"
	"github.com/skinfolio/skinfolio/internal/store"
	"github.com/skinfolio/skinfolio/internal/strategyconfig"
	"github.com/skinfolio/skinfolio/pkg/config"
	"github.com/skinfolio/skinfolio/pkg/database"
	"github.com/skinfolio/skinfolio/pkg/logger"
	"github.com/skinfolio/skinfolio/pkg/redis"
)

// app bundles the wired dependencies every command needs. Wiring happens in
// one place so commands stay thin.
type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	db       *database.DB
	cache    *redis.Client
	items    contracts.ItemRepository
	snaps    contracts.SnapshotRepository
	pipeline *ingest.Pipeline
	strategy *strategyconfig.Config
	scoring  *scoring.Service
	sim      *simulation.Simulator
}

// newApp loads config, connects infrastructure, and wires the services.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := store.EnsureSchema(ctx, db.Pool); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	cache, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	prov, err := provider.New(cfg, log, cache)
	if err != nil {
		cache.Close()
		db.Close()
		return nil, err
	}

	strategy, err := strategyconfig.LoadOrDefault(cfg.StrategyConfigPath)
	if err != nil {
		cache.Close()
		db.Close()
		return nil, fmt.Errorf("load strategy config: %w", err)
	}
	if hash, err := strategyconfig.Hash(strategy); err == nil {
		log.WithFields(map[string]interface{}{
			"strategy": strategy.Meta.StrategyID,
			"hash":     hash[:12],
		}).Info("strategy config loaded")
	}

	items := store.NewItemStore(db.Pool)
	snaps := store.NewSnapshotStore(db.Pool)
	pipeline := ingest.New(items, snaps, prov, log, cfg.Provider.Workers, cfg.Provider.FetchTimeout)
	scoringSvc := scoring.NewService(items, snaps, strategy, log)
	sim := simulation.New(items, snaps, scoringSvc.Engine(), strategy, log)

	return &app{
		cfg:      cfg,
		logger:   log,
		db:       db,
		cache:    cache,
		items:    items,
		snaps:    snaps,
		pipeline: pipeline,
		strategy: strategy,
		scoring:  scoringSvc,
		sim:      sim,
	}, nil
}

// Close releases infrastructure connections.
func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
