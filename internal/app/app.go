package app

import (
	"context"
	"fmt"
	"time"

	"github.com/five82/cijene/internal/applog"
	"github.com/five82/cijene/internal/auth"
	"github.com/five82/cijene/internal/cijene"
	"github.com/five82/cijene/internal/config"
	"github.com/five82/cijene/internal/geo"
	"github.com/five82/cijene/internal/notify"
	"github.com/five82/cijene/internal/persist"
	"github.com/five82/cijene/internal/state"
	"github.com/five82/cijene/internal/ui"
)

// userAgent identifies the client to the price API.
const userAgent = "cijene-tui/1.0"

// Options configure the cijene application.
type Options struct {
	ConfigPath   string
	PollEvery    int  // seconds; zero uses the configured interval
	RequireLogin bool // forces the login gate on regardless of config
	// ExportPath writes the saved preferences and collections to a JSON or
	// YAML file and exits instead of starting the UI.
	ExportPath string
}

// Run boots the cijene TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = time.Duration(opts.PollEvery) * time.Second
	}
	if opts.RequireLogin {
		cfg.RequireLogin = true
	}

	logPath := cfg.LogPath()
	logger, logFile, err := applog.Open(logPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()
	logger.Info().Str("api", cfg.APIURL).Str("data_dir", cfg.DataDir).Msg("starting cijene")

	storage, err := persist.NewFileStorage(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	store := state.New(storage, logger)

	if opts.ExportPath != "" {
		if err := persist.ExportFile(opts.ExportPath, store.Persisted()); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		logger.Info().Str("path", opts.ExportPath).Msg("exported preferences")
		return nil
	}

	client, err := cijene.NewClient(cijene.Options{
		BaseURL:           cfg.APIURL,
		Token:             cfg.APIToken,
		Timeout:           cfg.Timeout,
		DownloadTimeout:   cfg.DownloadTimeout,
		RetryAttempts:     cfg.RetryAttempts,
		RetryDelay:        cfg.RetryDelay,
		RequestsPerSecond: cfg.RequestsPerSecond,
		UserAgent:         userAgent,
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	authSvc, err := auth.NewService(storage, cfg.RequireLogin, logger)
	if err != nil {
		return fmt.Errorf("init auth: %w", err)
	}

	seedLocation(store, cfg)

	var home *geo.Point
	if cfg.HasDefaultLocation() {
		home = &geo.Point{Lat: *cfg.DefaultLat, Lon: *cfg.DefaultLon}
	}
	tracker := geo.NewTracker(geo.StaticLocator{Point: home}, 0)

	// Start background poller
	remote := &state.Remote{}
	StartPoller(ctx, remote, client, cfg.PollInterval, logger, nil)

	return ui.Run(ui.Options{
		Context:  ctx,
		API:      client,
		Store:    store,
		Remote:   remote,
		Auth:     authSvc,
		Notifier: notify.NewCenter(logger),
		Location: tracker,
		LogPath:  logPath,
		Logger:   logger,
		DataDir:  storage.Dir(),

		RequestTimeout: requestBudget(cfg),
	})
}

// requestBudget covers every attempt of one API call plus the linearly
// growing pauses between them.
func requestBudget(cfg config.Config) time.Duration {
	n := time.Duration(cfg.RetryAttempts)
	return cfg.Timeout*(n+1) + cfg.RetryDelay*n*(n+1)/2
}

// seedLocation copies the configured home location into the store the first
// time, so nearby searches work before the user sets one.
func seedLocation(store *state.Store, cfg config.Config) {
	if !cfg.HasDefaultLocation() || store.Snapshot().DefaultLocation.HasCoordinates() {
		return
	}
	lat, lon := *cfg.DefaultLat, *cfg.DefaultLon
	loc := state.Location{Lat: &lat, Lon: &lon, Country: state.DefaultCountry}
	if cfg.DefaultCity != "" {
		city := cfg.DefaultCity
		loc.City = &city
	}
	store.SetDefaultLocation(loc)
}
