package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/cijene/internal/cijene"
	"github.com/five82/cijene/internal/state"
)

const (
	defaultPollInterval = 5 * time.Minute
	failureBackoffBase  = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// chainSource is the part of the API the poller needs.
type chainSource interface {
	ListChains(ctx context.Context) ([]cijene.Chain, error)
	Version(ctx context.Context) (string, error)
	Health(ctx context.Context) (cijene.HealthStatus, error)
}

// StartPoller launches a background goroutine that refreshes the chains list.
// After a failure the next attempt comes sooner, backing off exponentially
// but never waiting longer than interval. It returns immediately; onUpdate,
// when set, runs after each refresh.
func StartPoller(ctx context.Context, remote *state.Remote, source chainSource, interval time.Duration, logger zerolog.Logger, onUpdate func()) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	logger = logger.With().Str("component", "poller").Logger()
	go func() {
		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			refresh(ctx, remote, source, logger)
			if onUpdate != nil {
				onUpdate()
			}

			wait := interval
			if failures := remote.Snapshot().ConsecutiveFailures; failures > 0 {
				wait = min(interval, calculateBackoff(failures-1, failureBackoffBase))
				logger.Debug().Int("failures", failures).Dur("retry_in", wait).Msg("backing off")
			}
			timer.Reset(wait)
		}
	}()
}

// refresh fetches chains, the API version and its health, and records the
// outcome.
func refresh(ctx context.Context, remote *state.Remote, source chainSource, logger zerolog.Logger) error {
	chains, err := source.ListChains(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		remote.Update(nil, "", err)
		logger.Warn().Err(err).Msg("chains poll failed")
		checkHealth(ctx, remote, source, logger)
		return err
	}

	version, err := source.Version(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("version poll failed")
		version = ""
	}
	remote.Update(chains, version, nil)
	logger.Info().Int("count", len(chains)).Msg("chains refreshed")
	checkHealth(ctx, remote, source, logger)
	return nil
}

func checkHealth(ctx context.Context, remote *state.Remote, source chainSource, logger zerolog.Logger) {
	status, err := source.Health(ctx)
	if err != nil && ctx.Err() != nil {
		return
	}
	if err != nil {
		logger.Debug().Err(err).Msg("health check failed")
	}
	remote.SetHealth(status, err)
}

// calculateBackoff returns base doubled once per failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
