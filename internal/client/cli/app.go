package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/invaders/internal/client/authflow"
	"github.com/dmitrijs2005/invaders/internal/client/client"
	"github.com/dmitrijs2005/invaders/internal/client/config"
	"github.com/dmitrijs2005/invaders/internal/client/geocode"
	"github.com/dmitrijs2005/invaders/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/invaders/internal/client/repositories/pointcache"
	"github.com/dmitrijs2005/invaders/internal/client/services"
	"github.com/dmitrijs2005/invaders/internal/client/session"
	"github.com/dmitrijs2005/invaders/internal/filex"
	"github.com/dmitrijs2005/invaders/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

// localDataDir, under the working directory, holds the local database when
// the configured file name has no directory of its own.
const localDataDir = ".invaders"

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config *config.Config
	logger logging.Logger

	session  *session.Manager
	auth     *authflow.Controller
	profiles *services.ProfileService
	points   *services.PointService
	health   pinger

	suggester   *geocode.Suggester
	suggestions chan geocode.Result

	reader *bufio.Reader
	outMu  sync.Mutex
	out    io.Writer

	modeMu sync.RWMutex
	mode   Mode

	closers []func() error
}

// NewApp opens the local database, builds the API clients and wires the
// services together. The returned App owns every resource it opened and
// releases them in Close.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	a := &App{
		config:      c,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		mode:        ModeOffline,
		suggestions: make(chan geocode.Result, 8),
	}

	var logOut io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, f.Close)
		logOut = f
	}
	a.logger = logging.New("invaders-client", "text", slog.LevelInfo, logOut)

	dbPath, err := localDBPath(c.LocalDBFile)
	if err != nil {
		a.Close()
		return nil, err
	}
	db, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init local database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	api, err := client.NewHTTPClient(c.ServerBaseURL, nil)
	if err != nil {
		a.Close()
		return nil, err
	}

	hc, err := client.NewHealthChecker(c.HealthEndpointAddr)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, hc.Close)
	a.health = hc

	a.wire(db, api)

	a.suggester = geocode.NewSuggester(geocode.NewClient(c.GeocoderBaseURL, nil), a.deliverSuggestions)
	a.closers = append(a.closers, func() error {
		a.suggester.Close()
		return nil
	})

	return a, nil
}

func localDBPath(file string) (string, error) {
	if filepath.Dir(file) != "." {
		return file, nil
	}
	dir, err := filex.EnsureSubdDir(localDataDir)
	if err != nil {
		return "", fmt.Errorf("prepare local data dir: %w", err)
	}
	return filepath.Join(dir, file), nil
}

func (a *App) wire(db *sql.DB, api *client.HTTPClient) {
	a.session = session.NewManager(metadata.NewSQLiteRepository(db), session.WithLogger(a.logger))
	a.auth = authflow.New(api, a.session,
		authflow.WithLogger(a.logger),
		authflow.WithOnChange(a.onAuthChange),
	)
	a.profiles = services.NewProfileService(api, a.session, nil, a.logger)
	a.points = services.NewPointService(api,
		services.WithPointCache(pointcache.NewSQLiteRepository(db)),
		services.WithPointLogger(a.logger),
	)
}

// Run starts the connectivity watcher and the REPL and blocks until the
// user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := a.profiles.Watch(ctx)
	defer stop()

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	if a.session.IsAuthenticated(ctx) {
		if err := a.profiles.Reload(ctx); err != nil {
			a.fail(ctx, "could not load profiles", err)
		}
	}

	a.Root(ctx)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.logger != nil {
			a.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) Mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.logger.Info(ctx, "connectivity changed", "mode", mode)
		a.println(mutedStyle.Render("Switched to " + string(mode) + " mode"))
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.health.Ping(pctx)
	cancel()

	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

// StartOnlineStatusWatcher pings the health endpoint every interval until
// ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.session.IsAuthenticated(ctx)
}

func (a *App) onAuthChange(st authflow.State) {
	a.logger.Debug(context.Background(), "auth state changed",
		"mode", st.Mode, "step", st.Step, "loading", st.IsLoading)
}

func (a *App) deliverSuggestions(r geocode.Result) {
	select {
	case a.suggestions <- r:
	default:
		a.logger.Debug(context.Background(), "suggestion dropped", "query", r.Query)
	}
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) fail(ctx context.Context, msg string, err error) {
	logging.LogError(ctx, a.logger, msg, err)
	a.println(errorStyle.Render(fmt.Sprintf("%s: %v", msg, err)))
	if errors.Is(err, client.ErrUnauthorized) {
		a.expireSession(ctx)
	}
}

// expireSession ends a local session the server no longer accepts, which
// happens when the access token runs out before the stored expiry.
func (a *App) expireSession(ctx context.Context) {
	if !a.session.IsAuthenticated(ctx) {
		return
	}
	if err := a.session.End(ctx); err != nil {
		logging.LogError(ctx, a.logger, "ending rejected session failed", err)
		return
	}
	a.auth.BackToLogin()
	a.println(offlineStyle.Render("Your session has expired. Please log in again."))
}
