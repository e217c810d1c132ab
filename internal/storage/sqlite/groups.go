package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/splitvote/internal/models"
	"github.com/mmynk/splitvote/internal/storage"
)

const groupColumns = "id, name, creator_id, join_code, created_at, updated_at"

// CreateGroup persists a new group with its creator as the only member.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	now := s.timestamp()
	group.CreatedAt = now
	group.UpdatedAt = now

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO groups ("+groupColumns+") VALUES (?, ?, ?, ?, ?, ?)",
			group.ID, group.Name, group.CreatorID, group.JoinCode, group.CreatedAt, group.UpdatedAt,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("join code %s: %w", group.JoinCode, storage.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)",
			group.ID, group.CreatorID, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert creator membership: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE users SET current_group_id = ?, updated_at = ? WHERE id = ?",
			group.ID, now, group.CreatorID,
		)
		if err != nil {
			return fmt.Errorf("failed to set creator's current group: %w", err)
		}
		if ok, err := affected(res); err != nil {
			return fmt.Errorf("failed to set creator's current group: %w", err)
		} else if !ok {
			return fmt.Errorf("user %s: %w", group.CreatorID, storage.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	group.Members = []string{group.CreatorID}
	group.JoinRequests = nil
	return nil
}

// GetGroup retrieves a group by ID, including members and join requests.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM groups WHERE id = ?", id)
	return s.loadGroup(ctx, row, "group "+id)
}

// GetGroupByJoinCode retrieves a group by its join code.
func (s *SQLiteStore) GetGroupByJoinCode(ctx context.Context, joinCode string) (*models.Group, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM groups WHERE join_code = ?", joinCode)
	return s.loadGroup(ctx, row, "join code "+joinCode)
}

func (s *SQLiteStore) loadGroup(ctx context.Context, row *sql.Row, what string) (*models.Group, error) {
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if err := s.loadMembership(ctx, s.db, group); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroupsForUser returns all groups the user is a member of.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.creator_id, g.join_code, g.created_at, g.updated_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = ?
		ORDER BY g.updated_at DESC, g.rowid ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var groups []*models.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	// Membership is loaded after the cursor is closed: the store holds a
	// single connection.
	for _, group := range groups {
		if err := s.loadMembership(ctx, s.db, group); err != nil {
			return nil, err
		}
	}

	return groups, nil
}

// AddJoinRequest records a pending join request in a single statement so that
// concurrent requests can neither duplicate it nor add it for an existing member.
func (s *SQLiteStore) AddJoinRequest(ctx context.Context, groupID, userID string) (bool, error) {
	var added bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO group_join_requests (group_id, user_id, requested_at)
			SELECT ?, ?, ?
			WHERE NOT EXISTS (
				SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?
			)
		`, groupID, userID, s.timestamp(), groupID, userID)
		if err != nil {
			return fmt.Errorf("failed to insert join request: %w", err)
		}
		if added, err = affected(res); err != nil {
			return fmt.Errorf("failed to insert join request: %w", err)
		}
		if !added {
			return nil
		}
		return s.touchGroup(ctx, tx, groupID)
	})
	return added, err
}

// ApproveMember moves a user from the join requests into the members.
func (s *SQLiteStore) ApproveMember(ctx context.Context, groupID, userID string) (bool, error) {
	var added bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.touchGroup(ctx, tx, groupID); err != nil {
			return err
		}

		// The request is dropped whether or not the user was already a member.
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM group_join_requests WHERE group_id = ? AND user_id = ?",
			groupID, userID,
		); err != nil {
			return fmt.Errorf("failed to delete join request: %w", err)
		}

		now := s.timestamp()
		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)",
			groupID, userID, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
		if added, err = affected(res); err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}

		res, err = tx.ExecContext(ctx,
			"UPDATE users SET current_group_id = ?, updated_at = ? WHERE id = ?",
			groupID, now, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to set current group: %w", err)
		}
		if ok, err := affected(res); err != nil {
			return fmt.Errorf("failed to set current group: %w", err)
		} else if !ok {
			return fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
		}
		return nil
	})
	return added, err
}

// RemoveMember removes a user from a group's members.
func (s *SQLiteStore) RemoveMember(ctx context.Context, groupID, userID string) (bool, error) {
	var removed bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM group_members WHERE group_id = ? AND user_id = ?",
			groupID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete member: %w", err)
		}
		if removed, err = affected(res); err != nil {
			return fmt.Errorf("failed to delete member: %w", err)
		}
		if !removed {
			return nil
		}

		now := s.timestamp()
		if _, err := tx.ExecContext(ctx,
			"UPDATE users SET current_group_id = NULL, updated_at = ? WHERE id = ? AND current_group_id = ?",
			now, userID, groupID,
		); err != nil {
			return fmt.Errorf("failed to clear current group: %w", err)
		}
		return s.touchGroup(ctx, tx, groupID)
	})
	return removed, err
}

// CountMembers returns the number of members in a group.
func (s *SQLiteStore) CountMembers(ctx context.Context, groupID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM group_members WHERE group_id = ?",
		groupID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

// loadMembership fills in a group's members and join requests in insertion order.
func (s *SQLiteStore) loadMembership(ctx context.Context, q querier, group *models.Group) error {
	members, err := queryIDs(ctx, q,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY seq",
		group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get members: %w", err)
	}

	requests, err := queryIDs(ctx, q,
		"SELECT user_id FROM group_join_requests WHERE group_id = ? ORDER BY seq",
		group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get join requests: %w", err)
	}

	group.Members = members
	group.JoinRequests = requests
	return nil
}

func scanGroup(row scanner) (*models.Group, error) {
	group := &models.Group{}
	err := row.Scan(
		&group.ID,
		&group.Name,
		&group.CreatorID,
		&group.JoinCode,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return group, nil
}
