package ledger

import (
	"context"
	"math"
	"strings"

	"github.com/mmynk/splitvote/internal/approval"
	"github.com/mmynk/splitvote/internal/metrics"
	"github.com/mmynk/splitvote/internal/models"
	"github.com/mmynk/splitvote/internal/notify"
	"github.com/mmynk/splitvote/internal/storage"
)

// Ledger records expenses and approval casts.
type Ledger struct {
	core
	store storage.Store
}

// NewLedger creates a Ledger that persists to store and announces changes
// through publisher.
func NewLedger(store storage.Store, publisher notify.Publisher, opts Options) *Ledger {
	opts = opts.withDefaults()
	return &Ledger{core: newCore(opts, publisher), store: store}
}

// SubmitExpense records a new, unapproved expense in groupID.
//
// The submitter does not have to be a member of the group.
func (l *Ledger) SubmitExpense(ctx context.Context, groupID, submitterID, description string, amount float64) (*models.Expense, error) {
	if groupID == "" {
		return nil, invalidArgument("group id is required")
	}
	if submitterID == "" {
		return nil, invalidArgument("submitter id is required")
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, invalidArgument("amount must be a positive number, got %v", amount)
	}

	ctx, cancel := l.bounded(ctx)
	defer cancel()

	if _, err := l.store.GetGroup(ctx, groupID); err != nil {
		return nil, storeError("submit expense", err)
	}
	if _, err := l.store.GetUser(ctx, submitterID); err != nil {
		return nil, storeError("submit expense", err)
	}

	expense := &models.Expense{
		GroupID:     groupID,
		SubmitterID: submitterID,
		Description: strings.TrimSpace(description),
		Amount:      amount,
	}
	if err := l.store.CreateExpense(ctx, expense); err != nil {
		return nil, storeError("submit expense", err)
	}

	metrics.RecordExpenseSubmitted()
	l.logger.Info("Expense submitted", "expense_id", expense.ID, "group_id", groupID, "amount", amount)
	l.publish(groupID, notify.Event{Name: notify.EventExpenseAdded, GroupID: groupID, Expense: expense})
	return expense, nil
}

// CastApproval records userID's approval of expenseID and re-evaluates the
// approved flag against the group's membership at this moment.
//
// A repeated cast by the same user records nothing and publishes nothing,
// unless it finds the expense over its threshold but still unapproved.
// expenseApproved is published only by the cast that flips the flag.
func (l *Ledger) CastApproval(ctx context.Context, expenseID, userID string) (*models.Expense, error) {
	if expenseID == "" {
		return nil, invalidArgument("expense id is required")
	}
	if userID == "" {
		return nil, invalidArgument("user id is required")
	}

	ctx, cancel := l.bounded(ctx)
	defer cancel()

	expense, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, storeError("cast approval", err)
	}
	if _, err := l.store.GetUser(ctx, userID); err != nil {
		return nil, storeError("cast approval", err)
	}

	added, err := l.store.AddApproval(ctx, expense.ID, userID)
	if err != nil {
		return nil, storeError("cast approval", err)
	}
	metrics.RecordApprovalCast(!added)

	// Re-read so approvals cast concurrently by other users are counted.
	expense, err = l.store.GetExpense(ctx, expense.ID)
	if err != nil {
		return nil, storeError("cast approval", err)
	}
	if !added && expense.Approved {
		return expense, nil
	}

	// A repeated cast still re-evaluates an unapproved expense, so a flip lost
	// to a failed MarkApproved is applied on retry.
	members, err := l.store.CountMembers(ctx, expense.GroupID)
	if err != nil {
		return nil, storeError("cast approval", err)
	}

	decision := approval.Evaluate(expense.Approved, len(expense.Approvals), members)
	flipped := false
	if decision.Transitioned {
		flipped, err = l.store.MarkApproved(ctx, expense.ID)
		if err != nil {
			return nil, storeError("cast approval", err)
		}
	}
	expense.Approved = decision.Approved

	l.logger.Info("Approval cast",
		"expense_id", expense.ID,
		"user_id", userID,
		"duplicate", !added,
		"approvals", len(expense.Approvals),
		"threshold", approval.Threshold(members),
		"approved", expense.Approved,
	)

	if added || flipped {
		l.publish(expense.GroupID, notify.Event{Name: notify.EventExpenseUpdated, GroupID: expense.GroupID, Expense: expense})
	}
	if flipped {
		metrics.RecordExpenseApproved()
		l.publish(expense.GroupID, notify.Event{Name: notify.EventExpenseApproved, GroupID: expense.GroupID, Expense: expense})
	}
	return expense, nil
}
