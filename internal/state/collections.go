package state

import "strings"

func indexOfKey[T any](items []T, key string, keyOf func(T) string) int {
	for i, item := range items {
		if keyOf(item) == key {
			return i
		}
	}
	return -1
}

// appendUnique appends item unless its key is empty or already present.
func appendUnique[T any](items []T, item T, keyOf func(T) string) ([]T, bool) {
	key := keyOf(item)
	if key == "" || indexOfKey(items, key, keyOf) >= 0 {
		return items, false
	}
	return append(items, item), true
}

// removeKey drops every entry with key.
func removeKey[T any](items []T, key string, keyOf func(T) string) ([]T, bool) {
	if indexOfKey(items, key, keyOf) < 0 {
		return items, false
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keyOf(item) != key {
			out = append(out, item)
		}
	}
	return out, true
}

// replaceKey swaps the entry sharing item's key for item. Absent keys are
// left alone.
func replaceKey[T any](items []T, item T, keyOf func(T) string) ([]T, bool) {
	i := indexOfKey(items, keyOf(item), keyOf)
	if i < 0 {
		return items, false
	}
	out := append([]T(nil), items...)
	out[i] = item
	return out, true
}

// promote moves item to the front, dropping any stale copy, and truncates
// to limit.
func promote[T any](items []T, item T, keyOf func(T) string, limit int) ([]T, bool) {
	key := keyOf(item)
	if key == "" {
		return items, false
	}
	out := make([]T, 0, min(len(items)+1, limit))
	out = append(out, item)
	for _, existing := range items {
		if len(out) == limit {
			break
		}
		if keyOf(existing) != key {
			out = append(out, existing)
		}
	}
	return out, true
}

// prependQuery adds a trimmed query to the front of a history. A query that is
// already present anywhere keeps its position.
func prependQuery(history []string, query string, limit int) ([]string, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return history, false
	}
	for _, existing := range history {
		if existing == query {
			return history, false
		}
	}
	out := make([]string, 0, min(len(history)+1, limit))
	out = append(out, query)
	for _, existing := range history {
		if len(out) == limit {
			break
		}
		out = append(out, existing)
	}
	return out, true
}

func identity(s string) string { return s }
