package service

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mptwarrior/warrior/internal/auth"
	"github.com/mptwarrior/warrior/internal/calculator"
	"github.com/mptwarrior/warrior/internal/discipline"
	"github.com/mptwarrior/warrior/internal/invitation"
	"github.com/mptwarrior/warrior/internal/storage"
)

// errValidation wraps request field problems.
var errValidation = errors.New("validation failed")

// invalidArgument builds an InvalidArgument error with msg.
func invalidArgument(msg string) error {
	return connect.NewError(connect.CodeInvalidArgument, errors.Join(errValidation, errors.New(msg)))
}

// toConnectError maps domain and storage errors to Connect codes. Errors that
// are already *connect.Error pass through; unknown errors become Internal.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return err
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict), errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, auth.ErrAccountRejected), errors.Is(err, auth.ErrAccountSuspended):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, invitation.ErrInvalidCode),
		errors.Is(err, invitation.ErrInvalidParams),
		errors.Is(err, calculator.ErrInvalidAnswer),
		errors.Is(err, calculator.ErrInvalidQuestion),
		errors.Is(err, calculator.ErrInvalidModule),
		errors.Is(err, discipline.ErrUnknownAction),
		errors.Is(err, calculator.ErrInvalidBalance),
		errors.Is(err, calculator.ErrInvalidRisk),
		errors.Is(err, calculator.ErrInvalidStopLoss),
		errors.Is(err, calculator.ErrInvalidTarget),
		errors.Is(err, errValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	}

	slog.Error("Unhandled service error", "error", err)
	return connect.NewError(connect.CodeInternal, errors.New("internal error"))
}
