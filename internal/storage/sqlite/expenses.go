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

const expenseColumns = "id, group_id, submitter_id, description, amount, approved, created_at, updated_at"

// CreateExpense persists a new expense with no approvals.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := s.timestamp()
	expense.CreatedAt = now
	expense.UpdatedAt = now
	expense.Approvals = nil
	expense.Approved = false

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.touchGroup(ctx, tx, expense.GroupID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, 0, ?, ?)",
			expense.ID, expense.GroupID, expense.SubmitterID, expense.Description,
			expense.Amount, expense.CreatedAt, expense.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		return nil
	})
}

// GetExpense retrieves an expense by ID, including its approvals.
func (s *SQLiteStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	expense.Approvals, err = queryIDs(ctx, s.db,
		"SELECT user_id FROM expense_approvals WHERE expense_id = ? ORDER BY seq",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get approvals: %w", err)
	}
	return expense, nil
}

// ListExpensesByGroup returns all expenses of a group in submission order.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY created_at, rowid",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
		byID[expense.ID] = expense
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	approvalRows, err := s.db.QueryContext(ctx, `
		SELECT a.expense_id, a.user_id
		FROM expense_approvals a
		JOIN expenses e ON e.id = a.expense_id
		WHERE e.group_id = ?
		ORDER BY a.seq
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get approvals: %w", err)
	}
	defer approvalRows.Close()

	for approvalRows.Next() {
		var expenseID, userID string
		if err := approvalRows.Scan(&expenseID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		if expense, ok := byID[expenseID]; ok {
			expense.Approvals = append(expense.Approvals, userID)
		}
	}
	if err := approvalRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate approvals: %w", err)
	}

	return expenses, nil
}

// AddApproval records an approval cast. The insert is a single conditional
// statement, so concurrent casts by the same user are counted once and casts by
// different users are all kept.
func (s *SQLiteStore) AddApproval(ctx context.Context, expenseID, userID string) (bool, error) {
	var added bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.timestamp()
		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO expense_approvals (expense_id, user_id, approved_at) VALUES (?, ?, ?)",
			expenseID, userID, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert approval: %w", err)
		}
		if added, err = affected(res); err != nil {
			return fmt.Errorf("failed to insert approval: %w", err)
		}
		if !added {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE expenses SET updated_at = ? WHERE id = ?",
			now, expenseID,
		); err != nil {
			return fmt.Errorf("failed to touch expense: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE groups SET updated_at = ? WHERE id = (SELECT group_id FROM expenses WHERE id = ?)",
			now, expenseID,
		); err != nil {
			return fmt.Errorf("failed to touch group: %w", err)
		}
		return nil
	})
	return added, err
}

// MarkApproved flips the approved flag. The approved = 0 guard makes the flip
// happen at most once however many callers race to it.
func (s *SQLiteStore) MarkApproved(ctx context.Context, expenseID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET approved = 1, updated_at = ? WHERE id = ? AND approved = 0",
		s.timestamp(), expenseID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark expense approved: %w", err)
	}
	flipped, err := affected(res)
	if err != nil {
		return false, fmt.Errorf("failed to mark expense approved: %w", err)
	}
	return flipped, nil
}

func scanExpense(row scanner) (*models.Expense, error) {
	expense := &models.Expense{}
	err := row.Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.SubmitterID,
		&expense.Description,
		&expense.Amount,
		&expense.Approved,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return expense, nil
}
