package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/cijene/internal/cijene"
	"github.com/five82/cijene/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type fakeSource struct {
	mu         sync.Mutex
	chains     []cijene.Chain
	chainsErr  error
	versionErr error
	health     string
	healthErr  error
	calls      int
}

func (f *fakeSource) ListChains(context.Context) ([]cijene.Chain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.chains, f.chainsErr
}

func (f *fakeSource) Version(context.Context) (string, error) {
	if f.versionErr != nil {
		return "", f.versionErr
	}
	return "1.4.0", nil
}

func (f *fakeSource) Health(context.Context) (cijene.HealthStatus, error) {
	if f.healthErr != nil {
		return cijene.HealthStatus{}, f.healthErr
	}
	status := f.health
	if status == "" {
		status = "ok"
	}
	return cijene.HealthStatus{Status: status, Timestamp: "2026-10-14T08:00:00Z"}, nil
}

func TestRefreshRecordsHealth(t *testing.T) {
	remote := &state.Remote{}
	src := &fakeSource{chains: []cijene.Chain{{Code: "konzum"}}}

	if err := refresh(context.Background(), remote, src, zerolog.Nop()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if snap := remote.Snapshot(); !snap.Healthy() {
		t.Fatalf("Health = %q, want ok", snap.Health)
	}

	src.health = "degraded"
	_ = refresh(context.Background(), remote, src, zerolog.Nop())
	if got := remote.Snapshot().Health; got != "degraded" {
		t.Fatalf("Health = %q, want degraded", got)
	}

	src.chainsErr = errors.New("connection refused")
	src.healthErr = errors.New("connection refused")
	_ = refresh(context.Background(), remote, src, zerolog.Nop())
	if got := remote.Snapshot().Health; got != state.HealthUnreachable {
		t.Fatalf("Health after outage = %q, want %q", got, state.HealthUnreachable)
	}
}

func TestRefreshRecordsChainsAndVersion(t *testing.T) {
	remote := &state.Remote{}
	src := &fakeSource{chains: []cijene.Chain{{Code: "konzum", Name: "Konzum"}}}

	if err := refresh(context.Background(), remote, src, zerolog.Nop()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	snap := remote.Snapshot()
	if !snap.HasChains || len(snap.Chains) != 1 || snap.Version != "1.4.0" {
		t.Fatalf("snapshot = %#v", snap)
	}

	src.versionErr = errors.New("no version endpoint")
	if err := refresh(context.Background(), remote, src, zerolog.Nop()); err != nil {
		t.Fatalf("refresh with version failure: %v", err)
	}
	if got := remote.Snapshot().Version; got != "1.4.0" {
		t.Fatalf("Version = %q, want last known 1.4.0", got)
	}
}

func TestRefreshFailureKeepsData(t *testing.T) {
	remote := &state.Remote{}
	src := &fakeSource{chains: []cijene.Chain{{Code: "spar"}}}
	_ = refresh(context.Background(), remote, src, zerolog.Nop())

	src.chainsErr = &cijene.Error{Kind: cijene.KindServer, Status: 503}
	if err := refresh(context.Background(), remote, src, zerolog.Nop()); err == nil {
		t.Fatalf("expected refresh error")
	}
	_ = refresh(context.Background(), remote, src, zerolog.Nop())

	snap := remote.Snapshot()
	if len(snap.Chains) != 1 || snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("snapshot = %#v", snap)
	}
}

func TestRefreshIgnoresCancellation(t *testing.T) {
	remote := &state.Remote{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &fakeSource{chainsErr: context.Canceled}

	_ = refresh(ctx, remote, src, zerolog.Nop())
	if remote.Snapshot().ConsecutiveFailures != 0 {
		t.Fatalf("cancelled refresh counted as failure")
	}
}

func TestStartPollerRefreshesImmediately(t *testing.T) {
	remote := &state.Remote{}
	src := &fakeSource{chains: []cijene.Chain{{Code: "lidl"}}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updated := make(chan struct{}, 4)
	StartPoller(ctx, remote, src, time.Hour, zerolog.Nop(), func() { updated <- struct{}{} })

	select {
	case <-updated:
	case <-time.After(2 * time.Second):
		t.Fatalf("poller did not refresh")
	}
	if !remote.Snapshot().HasChains {
		t.Fatalf("HasChains = false after first poll")
	}
}
