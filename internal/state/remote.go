package state

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/five82/cijene/internal/cijene"
)

// HealthUnreachable is recorded when the health endpoint could not be queried.
const HealthUnreachable = "unreachable"

// RemoteSnapshot is the latest API data available to the UI.
type RemoteSnapshot struct {
	Chains              []cijene.Chain
	HasChains           bool
	Version             string
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive refresh failures

	// Health is the status reported by the health endpoint, empty until the
	// first check and "unreachable" when the check itself failed.
	Health          string
	HealthCheckedAt time.Time
}

// Healthy reports whether the last health check answered "ok".
func (s RemoteSnapshot) Healthy() bool {
	return strings.EqualFold(s.Health, "ok") || strings.EqualFold(s.Health, "healthy")
}

// IsOffline returns true when the API has been unreachable for multiple refreshes.
func (s RemoteSnapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Remote coordinates concurrent refreshes of API data.
type Remote struct {
	mu       sync.RWMutex
	snapshot RemoteSnapshot
}

// Update replaces the chains list. When err is non-nil the previous data is
// kept but the error is recorded for visibility. An empty version keeps the
// last known one.
func (r *Remote) Update(chains []cijene.Chain, version string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshot.LastUpdated = time.Now()
	if err != nil {
		r.snapshot.LastError = err
		r.snapshot.ConsecutiveFailures++
		return
	}

	r.snapshot.Chains = cloneSlice(chains)
	r.snapshot.HasChains = true
	if version != "" {
		r.snapshot.Version = version
	}
	r.snapshot.LastError = nil
	r.snapshot.ConsecutiveFailures = 0
}

// SetHealth records the outcome of a health check.
func (r *Remote) SetHealth(status cijene.HealthStatus, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshot.HealthCheckedAt = time.Now()
	switch {
	case err != nil:
		r.snapshot.Health = HealthUnreachable
	case strings.TrimSpace(status.Status) == "":
		r.snapshot.Health = "unknown"
	default:
		r.snapshot.Health = strings.TrimSpace(status.Status)
	}
}

// Snapshot returns a copy of the current remote snapshot.
func (r *Remote) Snapshot() RemoteSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := r.snapshot
	snap.Chains = cloneSlice(r.snapshot.Chains)
	if r.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", r.snapshot.LastError)
	}
	return snap
}

func cloneSlice[T any](items []T) []T {
	if items == nil {
		return nil
	}
	return append(make([]T, 0, len(items)), items...)
}
