// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"todolists/internal/backend/fluree"
	"todolists/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, not found, ambiguous, rejected input).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a remote store, network or timeout error.
	BackendError = 3
)

// For maps an error returned by the service layer to an exit code.
func For(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, fluree.ErrUnauthorized):
		return AuthError
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrListNotFound),
		errors.Is(err, service.ErrAmbiguousList),
		errors.Is(err, service.ErrInvalidDraft):
		return UserError
	}
	return BackendError
}
