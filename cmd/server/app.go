package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/kanban-api/internal/config"
	"github.com/phrazzld/kanban-api/internal/platform/postgres"
	"github.com/phrazzld/kanban-api/internal/platform/redis"
	"github.com/phrazzld/kanban-api/internal/scheduler"
	"github.com/phrazzld/kanban-api/internal/service"
	"github.com/phrazzld/kanban-api/internal/store"
	"github.com/phrazzld/kanban-api/internal/ws"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	issueStore    store.IssueStore
	columnStore   store.ColumnStore
	boardStore    store.BoardStore
	templateStore store.TemplateStore
	historyStore  store.HistoryStore

	// Board change notification
	hub      *ws.Hub
	notifier *service.Notifier

	// Cache invalidation; a redis client when enabled, a no-op otherwise
	cache       service.CacheInvalidator
	cacheCloser interface{ Close() error }

	boardService service.BoardService
	scheduler    *scheduler.Scheduler
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies that must be established before
// application initialization: configuration, logger and database connection.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize stores
	app.issueStore = postgres.NewPostgresIssueStore(db, logger)
	app.columnStore = postgres.NewPostgresColumnStore(db, logger)
	app.boardStore = postgres.NewPostgresBoardStore(db, logger)
	app.templateStore = postgres.NewPostgresTemplateStore(db, logger)
	app.historyStore = postgres.NewPostgresHistoryStore(db, logger)

	// Board rooms and the full-snapshot notifier
	app.hub = ws.NewHub(logger)
	app.notifier = service.NewNotifier(app.issueStore, app.hub, logger)

	// Cache invalidation
	if cfg.Cache.Enabled {
		invalidator, err := redis.NewInvalidator(ctx, cfg.Cache.Addr, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache invalidator: %w", err)
		}
		app.cache = invalidator
		app.cacheCloser = invalidator
		logger.Info("Redis cache invalidation enabled", "addr", cfg.Cache.Addr)
	} else {
		app.cache = service.NoopInvalidator{}
		logger.Info("Cache invalidation disabled, using no-op invalidator")
	}

	// Board service
	boardService, err := service.NewBoardService(
		db,
		app.issueStore,
		app.columnStore,
		app.boardStore,
		app.historyStore,
		app.notifier,
		app.cache,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create board service: %w", err)
	}
	app.boardService = boardService

	// Recurrence scheduler; synthesized issues go through the board service
	// so they carry the same audit, cache and broadcast side effects.
	app.scheduler = scheduler.New(
		app.templateStore,
		app.columnStore,
		app.boardService,
		logger,
		scheduler.WithTickInterval(time.Duration(cfg.Scheduler.TickIntervalSeconds)*time.Second),
		scheduler.WithMaxCatchUp(cfg.Scheduler.MaxCatchUp),
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the scheduler and the HTTP server, handling lifecycle and
// cleanup. It blocks until the server shuts down.
func (app *application) Run(ctx context.Context) error {
	app.scheduler.Start()

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.cacheCloser != nil {
		if err := app.cacheCloser.Close(); err != nil {
			app.logger.Error("Error closing cache connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
