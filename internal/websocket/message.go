package websocket

import (
	"github.com/mmynk/splitvote/internal/models"
	"github.com/mmynk/splitvote/internal/notify"
)

// Message is the JSON frame sent to subscribers for every published event.
type Message struct {
	Type    string          `json:"type"`
	GroupID string          `json:"groupId"`
	User    *UserPayload    `json:"user,omitempty"`
	Expense *ExpensePayload `json:"expense,omitempty"`
}

// UserPayload is the public view of a user in a notification.
type UserPayload struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// ExpensePayload is the public view of an expense in a notification.
type ExpensePayload struct {
	ID          string   `json:"id"`
	GroupID     string   `json:"groupId"`
	SubmitterID string   `json:"submitterId"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	Approvals   []string `json:"approvals"`
	Approved    bool     `json:"approved"`
}

// NewMessage converts a ledger event into its wire frame.
func NewMessage(evt notify.Event) Message {
	msg := Message{Type: evt.Name, GroupID: evt.GroupID}
	if evt.User != nil {
		msg.User = userPayload(evt.User)
	}
	if evt.Expense != nil {
		msg.Expense = expensePayload(evt.Expense)
		if msg.GroupID == "" {
			msg.GroupID = evt.Expense.GroupID
		}
	}
	return msg
}

func userPayload(u *models.User) *UserPayload {
	return &UserPayload{ID: u.ID, DisplayName: u.DisplayName}
}

func expensePayload(e *models.Expense) *ExpensePayload {
	approvals := e.Approvals
	if approvals == nil {
		approvals = []string{}
	}
	return &ExpensePayload{
		ID:          e.ID,
		GroupID:     e.GroupID,
		SubmitterID: e.SubmitterID,
		Description: e.Description,
		Amount:      e.Amount,
		Approvals:   approvals,
		Approved:    e.Approved,
	}
}

// control is a frame sent by clients to manage their room subscriptions.
type control struct {
	Action  string `json:"action"`
	GroupID string `json:"groupId"`
}

const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
)
