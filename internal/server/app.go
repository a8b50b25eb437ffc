// Package server initializes and runs the Invaders server: the JSON API,
// the gRPC health service and the metrics endpoint, all sharing one
// PostgreSQL pool and stopping together.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/invaders/internal/dbx"
	"github.com/dmitrijs2005/invaders/internal/logging"
	"github.com/dmitrijs2005/invaders/internal/server/config"
	"github.com/dmitrijs2005/invaders/internal/server/httpapi"
	"github.com/dmitrijs2005/invaders/internal/server/observability"
	"github.com/dmitrijs2005/invaders/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/invaders/internal/server/services"
	"github.com/dmitrijs2005/invaders/internal/server/storage"

	gs "github.com/dmitrijs2005/invaders/internal/server/grpc"
)

// healthProbeInterval is how often the gRPC health status re-checks the database.
const healthProbeInterval = 5 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	api     *httpapi.API
	metrics *observability.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New("invaders-server", c.LogFormat, slog.LevelInfo, os.Stdout)

	db, err := dbx.OpenWithRetry(ctx, "pgx", c.DatabaseDSN, dbx.DefaultConnectBackoff)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	avatars, err := storage.NewS3Storage(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	metrics := observability.NewServer(c.EndpointAddrMetrics, logger)

	api := httpapi.NewAPI(
		services.NewCredentialService(db, rm, c),
		services.NewProfileService(db, rm, avatars),
		services.NewPointService(db, rm),
		metrics.Metrics(),
		logger,
	)

	return &App{config: c, logger: logger, db: db, api: api, metrics: metrics}, nil
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

// runComponent runs one server and cancels the whole app if it fails.
func (app *App) runComponent(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		logging.LogError(ctx, app.logger, name+" failed", err)
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	httpServer := httpapi.NewServer(app.config.EndpointAddrHTTP, app.api.Router(), app.logger)
	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db.PingContext, healthProbeInterval, app.metrics.Metrics().SetDBUp)

	components := map[string]func(context.Context) error{
		"http server":    httpServer.Run,
		"grpc server":    grpcServer.Run,
		"metrics server": app.metrics.Run,
	}

	var wg sync.WaitGroup
	for name, run := range components {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.runComponent(ctx, cancelFunc, name, run)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
