// Package applog sets up the application's zerolog logger and reads its log
// file back for the Logs view.
//
// The TUI owns the terminal, so logs go to a file in the data directory using
// zerolog's console format without color:
//
//	2025-06-01 12:00:01 INF chains refreshed component=poller count=12
//
// Tail uses a ring buffer of maxLines entries so only one pass over the file
// is needed regardless of its size. It returns nil, nil for a missing file.
package applog
