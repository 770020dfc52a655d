package app

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/cijene/internal/config"
	"github.com/five82/cijene/internal/persist"
	"github.com/five82/cijene/internal/state"
)

func TestRequestBudget(t *testing.T) {
	cfg := config.Config{Timeout: 10 * time.Second, RetryAttempts: 3, RetryDelay: time.Second}
	// 4 attempts of 10s plus pauses of 1s, 2s and 3s.
	if got, want := requestBudget(cfg), 46*time.Second; got != want {
		t.Fatalf("requestBudget = %s, want %s", got, want)
	}

	cfg.RetryAttempts = 0
	if got := requestBudget(cfg); got != 10*time.Second {
		t.Fatalf("requestBudget without retries = %s", got)
	}
}

func TestSeedLocation(t *testing.T) {
	lat, lon := 45.815, 15.9819
	cfg := config.Config{DefaultLat: &lat, DefaultLon: &lon, DefaultCity: "Zagreb"}

	store := state.New(persist.NewMemoryStorage(), zerolog.Nop())
	seedLocation(store, cfg)

	loc := store.Snapshot().DefaultLocation
	if !loc.HasCoordinates() || *loc.Lat != lat || *loc.Lon != lon {
		t.Fatalf("location not seeded: %+v", loc)
	}
	if loc.City == nil || *loc.City != "Zagreb" {
		t.Fatalf("city = %v, want Zagreb", loc.City)
	}

	other := 43.5
	seedLocation(store, config.Config{DefaultLat: &other, DefaultLon: &other})
	if got := *store.Snapshot().DefaultLocation.Lat; got != lat {
		t.Fatalf("existing location overwritten: lat = %v", got)
	}
}

func TestSeedLocationWithoutConfig(t *testing.T) {
	store := state.New(persist.NewMemoryStorage(), zerolog.Nop())
	seedLocation(store, config.Config{})
	if store.Snapshot().DefaultLocation.HasCoordinates() {
		t.Fatalf("location seeded from empty config")
	}
}
