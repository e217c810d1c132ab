// Package notify defines the notification channel the ledger publishes
// state changes to. Each group is a room; subscribers of a room receive every
// event published to it.
package notify

import (
	"github.com/mmynk/splitvote/internal/models"
)

// Event names delivered to subscribers.
const (
	EventJoinRequest     = "joinRequest"
	EventMemberApproved  = "memberApproved"
	EventMemberLeft      = "memberLeft"
	EventExpenseAdded    = "expenseAdded"
	EventExpenseUpdated  = "expenseUpdated"
	EventExpenseApproved = "expenseApproved"
)

// Event is a named state change scoped to a group.
// Membership events carry User; expense events carry Expense.
type Event struct {
	Name    string
	GroupID string
	User    *models.User
	Expense *models.Expense
}

// Publisher delivers events to a room's subscribers.
//
// Delivery is best-effort and at most once. Events published in one call
// sequence reach each subscriber in that order. An error means the event
// could not be delivered at all; callers must not treat it as a failure of
// the change being announced.
type Publisher interface {
	Publish(room string, evt Event) error
}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(string, Event) error { return nil }
