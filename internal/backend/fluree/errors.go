package fluree

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
)

var (
	// ErrRemoteUnavailable indicates a network, timeout or open-breaker failure.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrRemoteError indicates a non-2xx query response or an unusable body.
	ErrRemoteError = errors.New("remote store error")

	// ErrTransactionRejected indicates a non-2xx transact response.
	ErrTransactionRejected = errors.New("transaction rejected")

	// ErrTimeout accompanies ErrRemoteUnavailable when the call deadline passed.
	ErrTimeout = errors.New("request timed out")

	// ErrUnauthorized accompanies a 401/403 status.
	ErrUnauthorized = errors.New("unauthorized (check the token setting)")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
	Kind       error
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %v (status %d)", e.Op, e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v (status %d): %s", e.Op, e.Kind, e.StatusCode, e.Body)
}

// Unwrap exposes the error class, plus ErrUnauthorized for auth statuses.
func (e *StatusError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		errs = append(errs, ErrUnauthorized)
	}
	return errs
}

// wrapError classifies transport failures.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", op, ErrRemoteUnavailable, ErrTimeout)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%s: %w: %v", op, ErrRemoteUnavailable, err)
	case errors.Is(err, ErrRemoteUnavailable), errors.Is(err, ErrRemoteError), errors.Is(err, ErrTransactionRejected):
		return err
	}

	return fmt.Errorf("%s: %w: %v", op, ErrRemoteUnavailable, err)
}
