// Package state owns cijene's in-memory application state.
//
// # Store
//
// Store is the single source of truth for user-local data: preferences,
// favorite products and stores, search histories, recently viewed items and
// the compare list. It is created once by the application root and passed to
// the components that need it; there is no package-level instance.
//
// Collection rules:
//
//	collection         cap  duplicate add
//	favorites          -    no-op
//	compare            4    no-op (a 5th distinct add is also a no-op)
//	search history     10   no-op, existing entry keeps its position
//	recently viewed    20   existing entry is moved to the front
//
// Products are keyed by EAN, falling back to id. Stores are keyed by id,
// then code, then "<chain_code>-<address>". The search radius is clamped to
// [100, 50000] meters.
//
// Every durable change is saved through persist.Storage under the
// "cijene-app-store" key. Save failures are logged and swallowed. The compare
// list and the sidebar flag live only in memory.
//
// Subscribers registered with Subscribe receive a copy of the state after
// each change, outside the store's lock.
//
// # Remote
//
// Remote holds the latest chains list fetched by the background poller
// together with error and failure-count bookkeeping:
//
//	Poller:                     UI:
//	ListChains()                remote.Snapshot()
//	remote.Update(chains, err)  render
//
// # Concurrency Model
//
// Both Store and Remote guard their data with a sync.RWMutex and hand out
// copies, so the poller, Bubble Tea commands and the UI loop can use them
// from different goroutines.
package state
