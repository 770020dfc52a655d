// Package persist stores serialized application state.
//
// Storage is a minimal key/value interface. FileStorage keeps each key in
// <dir>/<key>.json and replaces files atomically; MemoryStorage backs tests.
//
// State is saved inside an Envelope:
//
//	{"state": {...}, "version": 0}
//
// LoadJSON distinguishes a missing key (ErrNotFound) from an undecodable blob
// (ErrCorrupt) so callers can fall back to defaults and log only the latter.
//
// Export renders any value as indented JSON or as YAML for the -export flag.
package persist
