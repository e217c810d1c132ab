package models

// Expense is an amount submitted to a group for its members to approve.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group that owns this expense.
	GroupID string

	// SubmitterID is the user who submitted the expense.
	SubmitterID string

	// Description is free text describing what the money was spent on.
	Description string

	// Amount is the positive amount spent.
	Amount float64

	// Approvals are the IDs of users who approved the expense, in cast order.
	// Each user appears at most once.
	Approvals []string

	// Approved becomes true once a strict majority of the group's members at
	// the time of an approval cast has approved. It never reverts to false.
	Approved bool

	// CreatedAt is the Unix timestamp when the expense was submitted.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last approval.
	UpdatedAt int64
}

// HasApproval reports whether userID has approved the expense.
func (e *Expense) HasApproval(userID string) bool {
	for _, a := range e.Approvals {
		if a == userID {
			return true
		}
	}
	return false
}
