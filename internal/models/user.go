package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a person using the app from a particular device.
// Users are created the first time their device is seen and are never deleted.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// DeviceHash is the hex encoded hash of the device identifier the user was
	// resolved from. The raw device identifier is never stored.
	DeviceHash string

	// DisplayName is the name shown to other group members.
	DisplayName string

	// CurrentGroupID is the group the user most recently created or joined.
	// Empty when the user has no group.
	CurrentGroupID string

	// CreatedAt is the Unix timestamp when the user was first seen.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change to the user.
	UpdatedAt int64
}

// NewUser creates a User for the given device hash with a fresh ID.
func NewUser(deviceHash, displayName string) *User {
	now := time.Now().Unix()
	return &User{
		ID:          uuid.New().String(),
		DeviceHash:  deviceHash,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
