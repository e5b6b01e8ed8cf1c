// Package server wires configuration, storage and services together and
// runs the gRPC and metrics listeners until shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/server/config"
	"github.com/dmitrijs2005/daybook/internal/server/mailer"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/daybook/internal/server/services"
	"github.com/dmitrijs2005/daybook/internal/server/streakcache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/daybook/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	cache  *streakcache.RedisCache
	grpc   *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, logging.ParseLevel(c.LogLevel))

	db, err := repomanager.Open(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	cache, err := streakcache.Connect(ctx, c.RedisAddr, c.StreakCacheTTL, logger)
	if err != nil {
		// the cache is optional
		logger.Warn(ctx, "streak cache disabled", "error", err)
		cache = streakcache.NewRedisCache(nil, c.StreakCacheTTL, logger)
	}

	svc := gs.Services{
		Users:    services.NewUserService(db, rm, c),
		Moments:  services.NewMomentService(db, rm, logger),
		Streaks:  services.NewStreakService(db, rm, cache, logger),
		Profiles: services.NewProfileService(db, rm),
		Shares:   services.NewShareService(db, rm, mailer.NewLogMailer(logger), c, logger),
		Photos:   services.NewPhotoService(c),
	}

	return &App{
		config: c,
		logger: logger,
		db:     db,
		cache:  cache,
		grpc:   gs.NewGRPCServer(c.EndpointAddrGRPC, logger, svc, c.SecretKey),
	}, nil
}

func (app *App) startMetricsServer(ctx context.Context) error {
	if app.config.MetricsAddr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: app.config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run blocks until SIGINT/SIGTERM or a listener fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.grpc.Run(ctx) })
	g.Go(func() error { return app.startMetricsServer(ctx) })

	err := g.Wait()

	if cerr := app.cache.Close(); cerr != nil {
		app.logger.Warn(ctx, "redis close", "error", cerr)
	}
	if cerr := app.db.Close(); cerr != nil {
		app.logger.Warn(ctx, "db close", "error", cerr)
	}
	app.logger.Info(ctx, "Stopped")
	return err
}
