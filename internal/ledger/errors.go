package ledger

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitvote/internal/storage"
)

// Every ledger operation either succeeds or fails with an error matching one
// of these with errors.Is.
var (
	// ErrNotFound means a referenced user, group, expense or join code is absent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument means a required field is missing or malformed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict means a generated join code collided with an existing one.
	// It is retried internally and only surfaces wrapped in ErrStorageUnavailable.
	ErrConflict = errors.New("conflict")

	// ErrStorageUnavailable means the store failed or did not answer in time.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrPermissionDenied means the join policy rejected the caller.
	ErrPermissionDenied = errors.New("permission denied")
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// storeError maps a storage failure onto the ledger taxonomy, keeping the
// original error in the chain.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}
}
