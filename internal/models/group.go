package models

// Group is a set of users who share expenses.
//
// The creator is always a member. A user ID appears in at most one of Members
// and JoinRequests at a time. JoinCode is globally unique and never changes.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// CreatorID is the user who created the group.
	CreatorID string

	// JoinCode is the short public token prospective members use to request entry.
	JoinCode string

	// Members are the user IDs of the group's members, in the order they joined.
	Members []string

	// JoinRequests are the user IDs waiting for approval, in request order.
	JoinRequests []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last membership or expense change.
	UpdatedAt int64
}

// HasMember reports whether userID is a member of the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// HasJoinRequest reports whether userID has a pending join request.
func (g *Group) HasJoinRequest(userID string) bool {
	for _, r := range g.JoinRequests {
		if r == userID {
			return true
		}
	}
	return false
}

// MemberRef is a user reference resolved to its display name.
type MemberRef struct {
	UserID      string
	DisplayName string
}

// GroupView is a group assembled with its members' and requesters' names and
// all of its expenses.
type GroupView struct {
	Group        *Group
	Members      []MemberRef
	JoinRequests []MemberRef
	Expenses     []*Expense
}

// JoinStatus describes the outcome of a join request.
type JoinStatus string

const (
	// JoinStatusPending means a new join request was recorded.
	JoinStatusPending JoinStatus = "pending"
	// JoinStatusAlreadyRequested means the user already had a pending request.
	JoinStatusAlreadyRequested JoinStatus = "already_requested"
	// JoinStatusAlreadyMember means the user is already a member.
	JoinStatusAlreadyMember JoinStatus = "already_member"
)

// JoinRequestResult is the group state after a join request together with
// what the request did.
type JoinRequestResult struct {
	Group  *Group
	Status JoinStatus
}
