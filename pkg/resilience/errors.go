package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrTransient marks an error as retryable. Callers that know a failure is
// transient wrap it: fmt.Errorf("…: %w", resilience.ErrTransient).
var ErrTransient = errors.New("transient failure")

// StatusError is an HTTP call that completed with a failure status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// ExhaustedError is the terminal failure after every permitted attempt of a
// retryable operation has failed.
type ExhaustedError struct {
	JobType  string
	Provider string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s via %s: retries exhausted after %d attempts: %v",
		e.JobType, e.Provider, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// IsTransient is the default retryability classifier: network timeouts,
// context deadlines, HTTP 429 and 5xx, and explicitly marked errors retry;
// everything else (auth failures, malformed requests, cancellation) fails
// fast.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}

	return false
}
