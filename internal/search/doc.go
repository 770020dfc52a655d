// Package search coordinates interactive searches.
//
// A Tracker hands out one generation per search and cancels the context of
// the search it supersedes, so a late response from an older query can be
// recognized and dropped. A Debouncer holds suggestion lookups back until
// typing pauses for DebounceDelay, and queries shorter than MinQueryLength
// never reach the API.
package search
