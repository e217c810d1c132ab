package ledger

import (
	"fmt"

	"github.com/mmynk/splitvote/internal/models"
)

// JoinPolicy decides whether callerID may approve join requests for group.
// A non-nil error rejects the approval and should wrap ErrPermissionDenied.
type JoinPolicy interface {
	AuthorizeJoinApproval(callerID string, group *models.Group) error
}

// JoinPolicyFunc adapts a function to JoinPolicy.
type JoinPolicyFunc func(callerID string, group *models.Group) error

// AuthorizeJoinApproval calls f.
func (f JoinPolicyFunc) AuthorizeJoinApproval(callerID string, group *models.Group) error {
	return f(callerID, group)
}

// AllowAnyCaller lets anyone approve join requests, including anonymous
// callers. Restricting approvals is left to whoever fronts the ledger; use
// CreatorOnly to enforce it here instead.
var AllowAnyCaller JoinPolicy = JoinPolicyFunc(func(string, *models.Group) error {
	return nil
})

// CreatorOnly only lets the group's creator approve join requests.
var CreatorOnly JoinPolicy = JoinPolicyFunc(func(callerID string, group *models.Group) error {
	if callerID == "" || callerID != group.CreatorID {
		return fmt.Errorf("%w: only the group creator can approve join requests", ErrPermissionDenied)
	}
	return nil
})
