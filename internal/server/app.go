// Package server initializes and runs the cardbook server: it selects the
// storage backend (PostgreSQL or the built-in sample set), runs migrations,
// wires the services into the HTTP API, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/cardbook/cardbook/internal/logging"
	"github.com/cardbook/cardbook/internal/server/config"
	"github.com/cardbook/cardbook/internal/server/repositories/cards"
	"github.com/cardbook/cardbook/internal/server/repositories/repomanager"
	"github.com/cardbook/cardbook/internal/server/services"
	"github.com/cardbook/cardbook/internal/server/web"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	sessionService *services.SessionService
	cardService    *services.CardService
}

// NewApp wires the application together. With a configured backend it opens
// the database and runs migrations; otherwise everything runs against the
// sample data set and nothing is persisted.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewJSONLoggerLevel(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	var db *sql.DB
	var cardRepo cards.Repository
	rm := repomanager.NewPostgresRepositoryManager()

	if cfg.BackendConfigured() {
		var err error
		db, err = sql.Open("pgx", cfg.BackendURL)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		if err := rm.RunMigrations(ctx, db); err != nil {
			return nil, fmt.Errorf("migration error: %w", err)
		}
		cardRepo = cards.NewPostgresRepository(db)
	} else {
		logger.Warn(ctx, "backend not configured, serving sample data")
		cardRepo = cards.NewSampleRepository()
	}

	ss := services.NewSessionService(db, rm, cfg, logger)
	cs := services.NewCardService(cardRepo)

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		sessionService: ss,
		cardService:    cs,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// watchAuthEvents logs authentication state changes until ctx is done.
func (app *App) watchAuthEvents(ctx context.Context) {
	events, cancel := app.sessionService.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			app.logger.Info(ctx, "auth state changed", "event", string(ev))
		}
	}
}

// Run starts the HTTP server and blocks until shutdown completes.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app...", "addr", app.config.EndpointAddr, "configured", app.config.BackendConfigured())

	app.initSignalHandler(cancelFunc)

	api := web.NewAPI(app.sessionService, app.cardService, app.logger)
	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: api.Router(),
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.watchAuthEvents(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error(ctx, "http server error", "error", err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "error", err.Error())
	}

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "db close error", "error", err.Error())
		}
	}

	app.logger.Info(context.Background(), "app stopped")
}
