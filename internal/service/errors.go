package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/splitvote/internal/ledger"
	"github.com/mmynk/splitvote/internal/middleware"
)

// toConnectError maps a ledger error onto a connect error code.
func toConnectError(err error) error {
	var code connect.Code
	switch {
	case errors.Is(err, ledger.ErrInvalidArgument):
		code = connect.CodeInvalidArgument
	case errors.Is(err, ledger.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, ledger.ErrPermissionDenied):
		code = connect.CodePermissionDenied
	case errors.Is(err, ledger.ErrStorageUnavailable):
		code = connect.CodeUnavailable
	case errors.Is(err, ledger.ErrConflict):
		code = connect.CodeAborted
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	default:
		code = connect.CodeInternal
	}
	return connect.NewError(code, err)
}

// orCaller returns id, or the authenticated caller when id is empty.
func orCaller(ctx context.Context, id string) string {
	if id != "" {
		return id
	}
	return middleware.GetUserID(ctx)
}
