// Package app wires configuration, logging, storage, the price API client,
// the chains poller and the UI into the running cijene application.
//
// Run is the composition root:
//
//  1. Load ~/.config/cijene/config.toml, with .env and CIJENE_* overrides
//  2. Open the log file in the data directory
//  3. Restore preferences and collections from file storage
//  4. Optionally export them and exit
//  5. Build the API client, auth service and location tracker
//  6. Start the background chains poller
//  7. Run the TUI until the user quits or the context is cancelled
//
// The poller refreshes the chain list into a shared state.Remote. After a
// failure it retries sooner with exponential backoff, and two consecutive
// failures mark the app offline in the header. The last good list stays on
// screen while offline. Each refresh also records the API health status,
// which the header shows when it is not healthy.
package app
