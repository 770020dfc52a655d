package persist

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt wraps decode failures of a stored blob.
var ErrCorrupt = errors.New("persist: corrupt blob")

// Envelope is the on-disk shape of a persisted snapshot.
type Envelope[T any] struct {
	State   T   `json:"state"`
	Version int `json:"version"`
}

// LoadJSON decodes the envelope stored under key into state. It returns
// ErrNotFound when nothing is stored and an error wrapping ErrCorrupt when the
// blob cannot be decoded; state is left untouched in both cases.
func LoadJSON[T any](s Storage, key string, state *T) (int, error) {
	bytes, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	var env Envelope[T]
	if err := json.Unmarshal(bytes, &env); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	*state = env.State
	return env.Version, nil
}

// SaveJSON encodes state inside an envelope and stores it under key.
func SaveJSON[T any](s Storage, key string, state T, version int) error {
	bytes, err := json.Marshal(Envelope[T]{State: state, Version: version})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.Set(key, bytes); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
