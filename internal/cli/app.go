/*
Package cli implements the geocalc command tree.

Every command shares one App. The App loads configuration and builds the
logger once, and it opens the history store on first use. The store is
closed when the process exits.
*/
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/khanglvm/geocalc/internal/analytics"
	"github.com/khanglvm/geocalc/internal/calc"
	"github.com/khanglvm/geocalc/internal/clock"
	"github.com/khanglvm/geocalc/internal/config"
	"github.com/khanglvm/geocalc/internal/logging"
	"github.com/khanglvm/geocalc/internal/metrics"
	"github.com/khanglvm/geocalc/internal/storage"
	"github.com/khanglvm/geocalc/internal/tracking"
)

// App holds the state shared by all commands.
type App struct {
	// ConfigPath overrides ~/.geocalc.yaml.
	ConfigPath string

	// DBPath overrides the configured database path.
	DBPath string

	// Clock defaults to the wall clock.
	Clock clock.Clock

	// LogWriter receives diagnostic logs. Defaults to stderr.
	LogWriter io.Writer

	cfg     *config.Config
	logger  zerolog.Logger
	store   *analytics.Store
	metrics *metrics.Collector
}

// NewApp creates an App with default settings.
func NewApp() *App {
	return &App{
		Clock:   clock.Real{},
		metrics: metrics.New(),
	}
}

// load reads configuration and builds the logger. It is safe to call repeatedly.
func (a *App) load() error {
	if a.cfg != nil {
		return nil
	}

	path := a.ConfigPath
	if path == "" {
		var err error
		if path, err = config.GetDefaultConfigPath(); err != nil {
			return err
		}
		a.ConfigPath = path
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return err
	}
	if a.DBPath != "" {
		cfg.Storage.Path = a.DBPath
	}

	w := a.LogWriter
	if w == nil {
		w = os.Stderr
	}
	logger, err := logging.New(cfg.Logging, w)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// Config returns the loaded configuration.
func (a *App) Config() (*config.Config, error) {
	if err := a.load(); err != nil {
		return nil, err
	}
	return a.cfg, nil
}

// Logger returns the application logger.
func (a *App) Logger() zerolog.Logger {
	return a.logger
}

// Metrics returns the process-wide metrics collector.
func (a *App) Metrics() *metrics.Collector {
	return a.metrics
}

// Store opens the history store on first use.
// An unreachable database is logged and every later store call reports
// storage.ErrStorageUnavailable.
func (a *App) Store() (*analytics.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if err := a.load(); err != nil {
		return nil, err
	}

	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}

	var backend storage.Storage
	if a.cfg.Storage.Enabled {
		dbPath, err := a.cfg.DBPath()
		if err != nil {
			return nil, err
		}
		sqlite := storage.NewStorage(dbPath, a.logger)
		if err := sqlite.Init(); err != nil {
			a.logger.Warn().Err(err).Str("path", dbPath).Msg("history database unavailable")
		}
		backend = sqlite
	} else {
		a.logger.Debug().Msg("history persistence disabled, using memory store")
		backend = storage.NewMemoryStorage()
	}

	a.store = analytics.NewStore(backend, analytics.Options{
		Clock:       a.Clock,
		Location:    loc,
		RecentLimit: a.cfg.Stats.RecentLimit,
		Logger:      a.logger,
	})
	return a.store, nil
}

// Calculator builds a calculator over the shared store.
// Background tracking is used when tracker is non-nil.
func (a *App) Calculator(tracker *tracking.Tracker, skipLog bool) (*calc.Calculator, error) {
	store, err := a.Store()
	if err != nil {
		return nil, err
	}
	return calc.New(calc.Options{
		Store:   store,
		Tracker: tracker,
		Clock:   a.Clock,
		Metrics: a.metrics,
		Logger:  a.logger,
		SkipLog: skipLog,
	}), nil
}

// NewTracker starts a background tracker writing to the shared store.
func (a *App) NewTracker() (*tracking.Tracker, error) {
	store, err := a.Store()
	if err != nil {
		return nil, err
	}
	return tracking.NewTracker(store, tracking.Options{
		Logger: a.logger,
		OnError: func(error) {
			a.metrics.ObserveLogFailure()
		},
	}), nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	if err != nil {
		return fmt.Errorf("failed to close history store: %w", err)
	}
	return nil
}
