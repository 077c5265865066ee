package weather

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a fetch failure.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindHTTPStatus
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTPStatus:
		return "http status"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error is returned by Client for every failed fetch.
type Error struct {
	Kind       Kind
	StatusCode int // set for KindHTTPStatus
	Err        error
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrNetwork    = &Error{Kind: KindNetwork}
	ErrHTTPStatus = &Error{Kind: KindHTTPStatus}
	ErrParse      = &Error{Kind: KindParse}
)

func (e *Error) Error() string {
	switch {
	case e.Kind == KindHTTPStatus && e.Err != nil:
		return fmt.Sprintf("weather %s error: status %d: %v", e.Kind, e.StatusCode, e.Err)
	case e.Kind == KindHTTPStatus:
		return fmt.Sprintf("weather %s error: status %d", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("weather %s error: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("weather %s error", e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Retryable reports whether the same request may succeed later.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetwork:
		return true
	case KindHTTPStatus:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
	default:
		return false
	}
}

// IsRetryable reports whether err wraps a retryable *Error.
func IsRetryable(err error) bool {
	var we *Error
	if errors.As(err, &we) {
		return we.Retryable()
	}
	return false
}

func networkError(err error) error {
	return &Error{Kind: KindNetwork, Err: err}
}

func parseError(format string, args ...any) error {
	return &Error{Kind: KindParse, Err: fmt.Errorf(format, args...)}
}
