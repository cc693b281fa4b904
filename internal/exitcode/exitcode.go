// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"taskboard/internal/credential"
	"taskboard/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, validation, not found,
	// any other 4xx answer).
	UserError = 1

	// AuthError indicates a missing, expired or rejected credential.
	AuthError = 2

	// BackendError indicates a remote API or network error.
	BackendError = 3
)

// FromError maps an operation error to an exit code.
func FromError(err error) int {
	if err == nil {
		return Success
	}
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return UserError
	}
	if errors.Is(err, credential.ErrNotSignedIn) || errors.Is(err, credential.ErrExpired) {
		return AuthError
	}
	var rerr *service.RemoteError
	if errors.As(err, &rerr) {
		switch {
		case rerr.IsAuth():
			return AuthError
		case rerr.StatusCode >= 400 && rerr.StatusCode < 500:
			return UserError
		}
	}
	return BackendError
}
