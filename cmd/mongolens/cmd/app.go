package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/dbsmedya/mongolens/internal/cache"
	"github.com/dbsmedya/mongolens/internal/config"
	"github.com/dbsmedya/mongolens/internal/discovery"
	"github.com/dbsmedya/mongolens/internal/logger"
	"github.com/dbsmedya/mongolens/internal/registry"
	"github.com/dbsmedya/mongolens/internal/store"
	"github.com/dbsmedya/mongolens/internal/store/mongo"
)

// app wires the engine components a command needs: config, logger, the
// connected store, the registry, the snapshot cache and the orchestrator.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	store store.Store
	reg   *registry.Registry
	cache cache.Cache
	orch  *discovery.Orchestrator
}

// newApp loads configuration, applies CLI overrides and connects to the
// store. Callers must Close the returned app.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat,
		overrides.URI, overrides.Database,
		overrides.SampleSize, overrides.Concurrency, overrides.NoCache)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	st, err := mongo.Connect(ctx, &cfg.Store, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	reg := registry.New()
	ch := cache.New(&cfg.Cache, cfg.Store.Database)

	orch, err := discovery.New(st, reg, ch, cfg, log)
	if err != nil {
		st.Close(ctx)
		return nil, fmt.Errorf("failed to build orchestrator: %w", err)
	}

	return &app{
		cfg:   cfg,
		log:   log,
		store: st,
		reg:   reg,
		cache: ch,
		orch:  orch,
	}, nil
}

// Close releases the store and cache connections and flushes the logger.
func (a *app) Close(ctx context.Context) {
	if err := a.cache.Close(); err != nil {
		a.log.Warnw("cache close failed", "error", err)
	}
	if err := a.store.Close(ctx); err != nil {
		a.log.Warnw("store close failed", "error", err)
	}
	_ = a.log.Sync()
}

// ensureRegistry populates the registry, preferring a cached snapshot over
// a fresh discovery pass. A stale or unreadable snapshot falls back to
// discovery; it is never an error on its own.
func (a *app) ensureRegistry(ctx context.Context) (*discovery.Report, error) {
	snap, err := a.cache.Load(ctx)
	if err == nil {
		report, rerr := a.orch.Restore(snap)
		if rerr == nil {
			return report, nil
		}
		a.log.Warnw("snapshot restore failed, rediscovering", "error", rerr)
	} else if !errors.Is(err, cache.ErrNoSnapshot) {
		a.log.Warnw("snapshot load failed, rediscovering", "error", err)
	}
	return a.orch.Discover(ctx)
}
