package cijene

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// Kind groups errors by how the application should react to them.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindAuthentication
	KindAuthorization
	KindValidation
	KindNotFound
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Retryable reports whether an error of this kind may succeed on a later attempt.
func (k Kind) Retryable() bool {
	return k == KindNetwork || k == KindServer
}

// Machine-readable error codes.
const (
	CodeNetwork           = "NETWORK_ERROR"
	CodeAPI               = "API_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeDNS               = "DNS_ERROR"
	CodeConnectionRefused = "CONNECTION_REFUSED"
	CodeTimeout           = "TIMEOUT_ERROR"
	CodeAuth              = "AUTH_ERROR"
	CodeValidation        = "VALIDATION_ERROR"
)

var messages = map[string]string{
	CodeNetwork:           "Network error. Please check your connection.",
	CodeAPI:               "Service temporarily unavailable. Please try again later.",
	CodeUnauthorized:      "You are not authorized to access this resource.",
	CodeForbidden:         "Access to this resource is forbidden.",
	CodeDNS:               "Unable to connect to the API server. This may be due to network restrictions or the server being temporarily unavailable.",
	CodeConnectionRefused: "Connection refused by the API server. The server may be down.",
	CodeTimeout:           "Request timed out. Please check your connection and try again.",
	CodeAuth:              "Authentication failed. Please check your credentials.",
	CodeValidation:        "Please check your input and try again.",
}

// Message returns the user-facing text for a code, or the generic API message.
func Message(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return messages[CodeAPI]
}

// Error is a classified API failure.
type Error struct {
	Kind      Kind
	Code      string
	Message   string
	Details   json.RawMessage
	Status    int
	Timestamp time.Time
	Err       error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%s, status %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether retrying the operation could succeed.
func (e *Error) Retryable() bool {
	return e != nil && e.Kind.Retryable()
}

// AsError extracts a classified *Error from err.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ValidationError builds a Validation-kind error for invalid request input.
func ValidationError(message string) *Error {
	if strings.TrimSpace(message) == "" {
		message = messages[CodeValidation]
	}
	return &Error{
		Kind:      KindValidation,
		Code:      CodeValidation,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// classifyTransport wraps a failure that produced no HTTP response.
func classifyTransport(err error, now time.Time) *Error {
	code := CodeNetwork

	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.As(err, &dnsErr):
		code = CodeDNS
	case errors.Is(err, syscall.ECONNREFUSED):
		code = CodeConnectionRefused
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		code = CodeTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		code = CodeTimeout
	}

	details, _ := json.Marshal(map[string]string{"originalError": err.Error()})
	return &Error{
		Kind:      KindNetwork,
		Code:      code,
		Message:   messages[code],
		Details:   details,
		Timestamp: now,
		Err:       err,
	}
}

type errorBody struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
	Code    json.RawMessage `json:"code"`
	Details json.RawMessage `json:"details"`
}

// classifyStatus turns an error response into an *Error.
func classifyStatus(status int, body []byte, now time.Time) *Error {
	var parsed errorBody
	_ = json.Unmarshal(body, &parsed)

	serverMsg := strings.TrimSpace(parsed.Message)
	if serverMsg == "" {
		var detail string
		if json.Unmarshal(parsed.Detail, &detail) == nil {
			serverMsg = strings.TrimSpace(detail)
		}
	}
	serverCode := rawCode(parsed.Code)

	out := &Error{
		Status:    status,
		Details:   nonNull(parsed.Details),
		Timestamp: now,
	}

	switch {
	case status == http.StatusUnauthorized:
		out.Kind = KindAuthentication
		out.Code = CodeUnauthorized
		out.Message = fallback(serverMsg, messages[CodeUnauthorized])
	case status == http.StatusForbidden:
		out.Kind = KindAuthorization
		out.Code = CodeForbidden
		out.Message = fallback(serverMsg, messages[CodeForbidden])
	default:
		out.Kind = kindForStatus(status)
		out.Code = fallback(serverCode, strconv.Itoa(status))
		out.Message = fallback(serverMsg, messages[CodeAPI])
	}
	return out
}

func kindForStatus(status int) Kind {
	switch {
	case status >= 500:
		return KindServer
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindUnknown
	}
}

func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

func nonNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
