// Package ui provides the terminal user interface for cijene.
//
// The UI is a single Bubble Tea model. Each view (chains, stores, products,
// product detail, favorites, compare, settings, archives and logs) keeps its
// own state struct on Model and renders into a titled box beneath a shared
// header and command bar.
//
// # Data flow
//
// User preferences and collections live in state.Store and are re-read into a
// snapshot after every update. A store subscription also wakes the model when
// something outside Update changes the store. The chain list comes from state.Remote, which
// a background poller keeps current. Searches and price comparisons run as
// tea.Cmd values against cijene.API, each bounded by a request timeout.
// Search and price results carry a generation counter so late responses
// never overwrite newer ones.
//
// # Errors
//
// Failed requests go through notify.Center. Errors for the active list are
// shown inline with a retry hint. Everything else appears in the command bar
// until it expires. Rejected API credentials also flip the header status.
//
// # Key bindings
//
//   - 1-7, l: switch views
//   - /: search the current list
//   - j/k, g/G, pgup/pgdown: move the selection
//   - enter: open the selected row
//   - f, c: toggle favorite or compare
//   - s/S, m/M: cycle sort and filters
//   - b: history sidebar on the products view
//   - r: refresh or retry
//   - ?: help
//   - q, ctrl+c: quit
package ui
