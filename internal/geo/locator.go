package geo

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrorCode classifies a failed location request.
type ErrorCode int

const (
	PermissionDenied    ErrorCode = 1
	PositionUnavailable ErrorCode = 2
	Timeout             ErrorCode = 3
)

// DefaultTimeout bounds a single Locate call when the caller's context has no
// deadline.
const DefaultTimeout = 10 * time.Second

var errorMessages = map[ErrorCode]string{
	PermissionDenied:    "Location access denied. Please enable location services.",
	PositionUnavailable: "Location unavailable. Please check your GPS or network connection.",
	Timeout:             "Location request timed out. Please try again.",
}

// Error is a classified location failure.
type Error struct {
	Code ErrorCode
}

func (e *Error) Error() string {
	if msg, ok := errorMessages[e.Code]; ok {
		return msg
	}
	return "Unable to retrieve location."
}

// Locator resolves the current position.
type Locator interface {
	Locate(ctx context.Context) (Position, error)
}

// StaticLocator answers with a fixed, configured point. A nil Point means the
// position is unknown. Denied simulates a user who refused location access.
type StaticLocator struct {
	Point    *Point
	Accuracy float64
	Denied   bool
	Now      func() time.Time
}

// Locate implements Locator.
func (l StaticLocator) Locate(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, contextError(err)
	}
	if l.Denied {
		return Position{}, &Error{Code: PermissionDenied}
	}
	if l.Point == nil {
		return Position{}, &Error{Code: PositionUnavailable}
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	return Position{Point: *l.Point, Accuracy: l.Accuracy, Timestamp: now()}, nil
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: Timeout}
	}
	return err
}

// Update is one watch result: either a position or an error.
type Update struct {
	Position Position
	Err      error
}

// Tracker wraps a Locator and remembers the last successful fix.
type Tracker struct {
	locator Locator
	timeout time.Duration

	mu   sync.RWMutex
	last *Position
}

// NewTracker returns a Tracker using locator. A non-positive timeout uses
// DefaultTimeout.
func NewTracker(locator Locator, timeout time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Tracker{locator: locator, timeout: timeout}
}

// Current queries the locator once.
func (t *Tracker) Current(ctx context.Context) (Position, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	pos, err := t.locator.Locate(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Position{}, contextError(ctxErr)
		}
		return Position{}, err
	}
	t.mu.Lock()
	t.last = &pos
	t.mu.Unlock()
	return pos, nil
}

// Last returns the most recent successful position.
func (t *Tracker) Last() (Position, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.last == nil {
		return Position{}, false
	}
	return *t.last, true
}

// Watch reports the position immediately and then every interval until ctx
// is done. The channel is closed when watching stops.
func (t *Tracker) Watch(ctx context.Context, interval time.Duration) <-chan Update {
	if interval <= 0 {
		interval = time.Minute
	}
	out := make(chan Update, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			pos, err := t.Current(ctx)
			if ctx.Err() != nil {
				return
			}
			select {
			case out <- Update{Position: pos, Err: err}:
			case <-ctx.Done():
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return out
}
