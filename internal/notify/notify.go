package notify

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/five82/cijene/internal/cijene"
)

// Type is the notification severity.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Duration returns how long a notification of type t stays visible.
func (t Type) Duration() time.Duration {
	switch t {
	case TypeError:
		return 5 * time.Second
	case TypeWarning:
		return 4 * time.Second
	default:
		return 3 * time.Second
	}
}

// Scope describes where an error was raised.
type Scope int

const (
	// Inline errors are rendered next to the input that caused them.
	Inline Scope = iota
	// Global errors escaped their form or view and are shown to the user.
	Global
)

// Notification is one dismissible message.
type Notification struct {
	ID        string
	Type      Type
	Title     string
	Message   string
	Retryable bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AuthHandler receives authentication and authorization failures instead of
// the notification list.
type AuthHandler func(*cijene.Error)

// Center collects notifications for the UI.
type Center struct {
	mu     sync.Mutex
	items  []Notification
	auth   AuthHandler
	now    func() time.Time
	logger zerolog.Logger
}

// NewCenter returns an empty Center.
func NewCenter(logger zerolog.Logger) *Center {
	return &Center{
		now:    time.Now,
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

// SetAuthHandler registers the handler for auth failures.
func (c *Center) SetAuthHandler(h AuthHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = h
}

// Report routes err by its kind. It returns the created notification id, or
// "" when err was handled without a notification.
func (c *Center) Report(err error, scope Scope) string {
	if err == nil {
		return ""
	}
	kind, msg := Classify(err)
	c.logger.Debug().Err(err).Str("kind", kind.String()).Msg("error reported")

	switch kind {
	case cijene.KindAuthentication, cijene.KindAuthorization:
		c.mu.Lock()
		h := c.auth
		c.mu.Unlock()
		if h != nil {
			apiErr, _ := cijene.AsError(err)
			h(apiErr)
		}
		return ""
	case cijene.KindValidation:
		if scope == Inline {
			return ""
		}
		return c.add(TypeError, "Invalid input", msg, false)
	case cijene.KindNetwork, cijene.KindServer:
		return c.add(TypeError, "Connection problem", msg, true)
	case cijene.KindNotFound:
		return c.add(TypeWarning, "Not found", msg, false)
	default:
		return c.add(TypeError, "Error", msg, false)
	}
}

// Success adds a success notification.
func (c *Center) Success(title, message string) string {
	return c.add(TypeSuccess, title, message, false)
}

// Info adds an informational notification.
func (c *Center) Info(title, message string) string {
	return c.add(TypeInfo, title, message, false)
}

// Warning adds a warning notification.
func (c *Center) Warning(title, message string) string {
	return c.add(TypeWarning, title, message, false)
}

func (c *Center) add(t Type, title, message string, retryable bool) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := Notification{
		ID:        uuid.NewString(),
		Type:      t,
		Title:     title,
		Message:   message,
		Retryable: retryable,
		CreatedAt: now,
		ExpiresAt: now.Add(t.Duration()),
	}
	c.items = append(c.items, n)
	return n.ID
}

// Dismiss removes the notification with id.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = slices.DeleteFunc(c.items, func(n Notification) bool { return n.ID == id })
}

// Clear removes every notification.
func (c *Center) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Active returns the notifications still visible at now, oldest first.
func (c *Center) Active(now time.Time) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, 0, len(c.items))
	for _, n := range c.items {
		if now.Before(n.ExpiresAt) {
			out = append(out, n)
		}
	}
	return out
}

// Latest returns the newest visible notification.
func (c *Center) Latest(now time.Time) (Notification, bool) {
	active := c.Active(now)
	if len(active) == 0 {
		return Notification{}, false
	}
	return active[len(active)-1], true
}

// Prune drops expired notifications and reports how many were removed.
func (c *Center) Prune(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	before := len(c.items)
	c.items = slices.DeleteFunc(c.items, func(n Notification) bool { return !now.Before(n.ExpiresAt) })
	return before - len(c.items)
}

// Classify maps err to a kind and a message suitable for display.
func Classify(err error) (cijene.Kind, string) {
	apiErr, ok := cijene.AsError(err)
	if !ok {
		if err == nil {
			return cijene.KindUnknown, ""
		}
		if msg := err.Error(); msg != "" {
			return cijene.KindUnknown, msg
		}
		return cijene.KindUnknown, genericMessage
	}

	switch apiErr.Kind {
	case cijene.KindNetwork:
		if apiErr.Message != "" {
			return apiErr.Kind, apiErr.Message
		}
		return apiErr.Kind, cijene.Message(cijene.CodeNetwork)
	case cijene.KindAuthentication:
		return apiErr.Kind, cijene.Message(cijene.CodeAuth)
	case cijene.KindAuthorization:
		return apiErr.Kind, cijene.Message(cijene.CodeForbidden)
	case cijene.KindServer:
		return apiErr.Kind, cijene.Message(cijene.CodeAPI)
	default:
		if apiErr.Message != "" {
			return apiErr.Kind, apiErr.Message
		}
		return apiErr.Kind, genericMessage
	}
}

const genericMessage = "Something went wrong. Please try again."

// IsRetryable reports whether err may succeed when retried.
func IsRetryable(err error) bool {
	var apiErr *cijene.Error
	return errors.As(err, &apiErr) && apiErr.Retryable()
}
