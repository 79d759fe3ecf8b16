package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mkrall/gymsync/internal/application/handlers"
	"github.com/mkrall/gymsync/internal/domain/entities"
	"github.com/mkrall/gymsync/internal/domain/ports"
	"github.com/mkrall/gymsync/internal/domain/services"
	"github.com/mkrall/gymsync/internal/infrastructure/cache"
	"github.com/mkrall/gymsync/internal/infrastructure/config"
	"github.com/mkrall/gymsync/internal/infrastructure/metrics"
	"github.com/mkrall/gymsync/internal/infrastructure/notify"
	"github.com/mkrall/gymsync/internal/infrastructure/source/iclasspro"
	"github.com/mkrall/gymsync/internal/infrastructure/store/sqlite"
)

// allEventTypes is the batch universe for a full sync pass.
var allEventTypes = []entities.EventType{
	entities.EventTypeCamp,
	entities.EventTypeClinic,
	entities.EventTypeKidsNightOut,
	entities.EventTypeOpenGym,
	entities.EventTypeSpecialEvent,
}

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config        *config.Config
	Logger        *zap.Logger
	SyncHandler   *handlers.SyncHandler
	ReviewHandler *handlers.ReviewHandler
}

// internalDeps holds all dependencies including low-level components.
// Used internally by helper functions.
type internalDeps struct {
	Deps
	repo     *sqlite.Repository
	recorder *metrics.Recorder
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level components.
// Used by commands that need direct repository or metrics access.
func withInternalDeps(fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // stderr sync failure is unactionable

	repo, err := sqlite.NewRepository(cfg.SQLite)
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	source := iclasspro.NewClient(cfg.Source)
	eventCache := cache.NewMemory(cfg.CacheTTL())
	notifier := notify.NewLog(logger)

	// The Prometheus endpoint is opt-in; without a listen address the
	// recorder is a no-op.
	var recorder *metrics.Recorder
	var metricsPort ports.MetricsRecorder = metrics.Nop{}
	if cfg.Metrics.Addr != "" {
		recorder = metrics.NewRecorder()
		metricsPort = recorder
	}

	syncService := services.NewSyncService(repo, source, repo, eventCache, notifier, metricsPort, logger, services.SyncConfig{
		FetchTimeout: cfg.FetchTimeout(),
		RetryDelay:   cfg.RetryDelay(),
		Guard: services.GuardConfig{
			MaxDeletions:    cfg.Sync.MaxDeletions,
			MaxDeletedRatio: cfg.Sync.MaxDeletedRatio,
		},
		PortalURLTemplate: cfg.Portal.URLTemplate,
		GymSlugs:          cfg.Portal.GymSlugs,
	})
	reviewService := services.NewReviewService(repo, logger)

	deps := &internalDeps{
		Deps: Deps{
			Config:        cfg,
			Logger:        logger,
			SyncHandler:   handlers.NewSyncHandler(syncService, cfg.GymIDs(), allEventTypes),
			ReviewHandler: handlers.NewReviewHandler(reviewService, repo, repo),
		},
		repo:     repo,
		recorder: recorder,
	}

	return fn(deps)
}

// withReviewHandler provides access to the ReviewHandler for review commands.
func withReviewHandler(fn func(*handlers.ReviewHandler) error) error {
	return withDeps(func(d *Deps) error {
		return fn(d.ReviewHandler)
	})
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("GYMSYNC_DEBUG") != "" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
