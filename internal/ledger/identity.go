package ledger

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/mmynk/splitvote/internal/models"
	"github.com/mmynk/splitvote/internal/storage"
)

// Identity resolves opaque device identifiers to users.
type Identity struct {
	core
	users storage.UserStore
}

// NewIdentity creates an Identity backed by users.
func NewIdentity(users storage.UserStore, opts Options) *Identity {
	opts = opts.withDefaults()
	return &Identity{core: newCore(opts, nil), users: users}
}

// HashDevice returns the hex BLAKE2b-256 digest under which a device
// identifier is stored.
func HashDevice(deviceID string) string {
	sum := blake2b.Sum256([]byte(deviceID))
	return hex.EncodeToString(sum[:])
}

// ResolveUser returns the user for deviceID, creating one on first sight.
// A non-empty displayName that differs from the stored one replaces it.
// Safe to call on every client launch.
func (i *Identity) ResolveUser(ctx context.Context, deviceID, displayName string) (*models.User, error) {
	deviceID = strings.TrimSpace(deviceID)
	displayName = strings.TrimSpace(displayName)
	if deviceID == "" {
		return nil, invalidArgument("device id is required")
	}

	ctx, cancel := i.bounded(ctx)
	defer cancel()

	hash := HashDevice(deviceID)
	user, err := i.users.GetUserByDevice(ctx, hash)
	if err == nil {
		return i.rename(ctx, user, displayName)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, storeError("resolve user", err)
	}

	user = models.NewUser(hash, displayName)
	err = i.users.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrConflict) {
		// Another request created this device's user first.
		existing, err := i.users.GetUserByDevice(ctx, hash)
		if err != nil {
			return nil, storeError("resolve user", err)
		}
		return i.rename(ctx, existing, displayName)
	}
	if err != nil {
		return nil, storeError("create user", err)
	}

	i.logger.Info("User created", "user_id", user.ID)
	return user, nil
}

func (i *Identity) rename(ctx context.Context, user *models.User, displayName string) (*models.User, error) {
	if displayName == "" || displayName == user.DisplayName {
		return user, nil
	}
	if err := i.users.UpdateDisplayName(ctx, user.ID, displayName); err != nil {
		return nil, storeError("update display name", err)
	}
	user.DisplayName = displayName
	return user, nil
}
