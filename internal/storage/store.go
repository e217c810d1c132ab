// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitvote/internal/models"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when an insert violates a uniqueness constraint,
	// such as a duplicate join code or device hash.
	ErrConflict = errors.New("unique constraint violated")
)

// UserStore persists users.
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrConflict if the device hash is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID. Returns ErrNotFound if missing.
	GetUser(ctx context.Context, id string) (*models.User, error)

	// GetUserByDevice retrieves a user by device hash. Returns ErrNotFound if missing.
	GetUserByDevice(ctx context.Context, deviceHash string) (*models.User, error)

	// GetUsersByIDs retrieves multiple users keyed by ID. Unknown IDs are omitted.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// UpdateDisplayName changes a user's display name.
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

// GroupStore persists groups and their membership sets.
//
// Membership mutations are atomic at the storage layer: concurrent calls for the
// same group never lose an update or duplicate an entry.
type GroupStore interface {
	// CreateGroup inserts the group, enrolls its creator as the only member and
	// points the creator's current group at it, all in one transaction.
	// The group's ID, CreatedAt and UpdatedAt are populated by the store.
	// Returns ErrConflict if the join code is already in use.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members and join requests.
	// Returns ErrNotFound if missing.
	GetGroup(ctx context.Context, id string) (*models.Group, error)

	// GetGroupByJoinCode retrieves a group by join code. Returns ErrNotFound if missing.
	GetGroupByJoinCode(ctx context.Context, joinCode string) (*models.Group, error)

	// ListGroupsForUser returns the groups userID is a member of, most recently
	// updated first, ties broken by creation order.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// AddJoinRequest records a join request unless userID is already a member or
	// already requested. Reports whether a request was added.
	AddJoinRequest(ctx context.Context, groupID, userID string) (bool, error)

	// ApproveMember removes userID's join request, adds it to the members if
	// absent and sets the user's current group. Reports whether a membership
	// was added.
	ApproveMember(ctx context.Context, groupID, userID string) (bool, error)

	// RemoveMember removes userID from the members and clears the user's current
	// group if it pointed at groupID. Reports whether a membership was removed.
	RemoveMember(ctx context.Context, groupID, userID string) (bool, error)

	// CountMembers returns the number of members of a group.
	CountMembers(ctx context.Context, groupID string) (int, error)
}

// ExpenseStore persists expenses and approval casts.
type ExpenseStore interface {
	// CreateExpense inserts a new expense. ID and timestamps are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its approvals. Returns ErrNotFound if missing.
	GetExpense(ctx context.Context, id string) (*models.Expense, error)

	// ListExpensesByGroup returns a group's expenses in submission order.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// AddApproval records userID's approval if absent. Reports whether it was added.
	AddApproval(ctx context.Context, expenseID, userID string) (bool, error)

	// MarkApproved sets the approved flag if it is not already set. Reports
	// whether this call performed the transition.
	MarkApproved(ctx context.Context, expenseID string) (bool, error)
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore

	// Close releases any resources held by the store.
	Close() error
}
