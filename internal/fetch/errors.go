package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// TransientError covers failures worth retrying: timeouts, connection
// resets, HTTP 5xx and 429.
type TransientError struct {
	Err error
}

func (e TransientError) Error() string {
	return fmt.Errorf("transient: %w", e.Err).Error()
}

func (e TransientError) Unwrap() error {
	return e.Err
}

// PermanentError covers failures a retry cannot fix: malformed URLs and
// HTTP 4xx other than 429.
type PermanentError struct {
	Err error
}

func (e PermanentError) Error() string {
	return fmt.Errorf("permanent: %w", e.Err).Error()
}

func (e PermanentError) Unwrap() error {
	return e.Err
}

func IsTransient(err error) bool {
	var te TransientError
	return errors.As(err, &te)
}

func IsPermanent(err error) bool {
	var pe PermanentError
	return errors.As(err, &pe)
}

// classify buckets a transport error or HTTP status into the retry
// taxonomy. Context cancellation passes through untouched so callers can
// tell an aborted run from a flaky site.
func classify(err error, statusCode int) error {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		var nerr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
			return TransientError{Err: err}
		}
		// Remaining transport failures (resets, refused connections,
		// DNS blips) are treated as retryable.
		return TransientError{Err: err}
	}

	switch {
	case statusCode == http.StatusTooManyRequests:
		return TransientError{Err: fmt.Errorf("HTTP %d", statusCode)}
	case statusCode >= 500:
		return TransientError{Err: fmt.Errorf("HTTP %d", statusCode)}
	case statusCode >= 400:
		return PermanentError{Err: fmt.Errorf("HTTP %d", statusCode)}
	}

	return nil
}

// ErrorLabel names the error class for metrics.
func ErrorLabel(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case IsTransient(err):
		return "transient"
	case IsPermanent(err):
		return "permanent"
	default:
		return "other"
	}
}
