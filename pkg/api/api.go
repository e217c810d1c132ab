// Package api defines the request and response messages of the splitvote.v1
// RPC services. Messages travel as JSON; field names are camelCase.
package api

// User is a device-resolved identity.
type User struct {
	ID             string `json:"id"`
	DisplayName    string `json:"displayName"`
	CurrentGroupID string `json:"currentGroupId,omitempty"`
	CreatedAt      int64  `json:"createdAt"`
	UpdatedAt      int64  `json:"updatedAt"`
}

// Member names a user referenced by a group. DisplayName is empty when the
// group was returned without resolving names.
type Member struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
}

type Expense struct {
	ID          string   `json:"id"`
	GroupID     string   `json:"groupId"`
	SubmitterID string   `json:"submitterId"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	Approvals   []string `json:"approvals"`
	Approved    bool     `json:"approved"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

type Group struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	CreatorID    string     `json:"creatorId"`
	JoinCode     string     `json:"joinCode"`
	Members      []Member   `json:"members"`
	JoinRequests []Member   `json:"joinRequests"`
	Expenses     []*Expense `json:"expenses,omitempty"`
	CreatedAt    int64      `json:"createdAt"`
	UpdatedAt    int64      `json:"updatedAt"`
}

type ResolveUserRequest struct {
	DeviceID    string `json:"deviceId"`
	DisplayName string `json:"displayName"`
}

// ResolveUserResponse carries the user and a session token to send as
// "Authorization: Bearer <token>" on later calls.
type ResolveUserResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// CreateGroupRequest creates a group. OwnerID defaults to the caller.
type CreateGroupRequest struct {
	Name    string `json:"name"`
	OwnerID string `json:"ownerId,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

// RequestJoinRequest asks to join by code. UserID defaults to the caller.
type RequestJoinRequest struct {
	JoinCode string `json:"joinCode"`
	UserID   string `json:"userId,omitempty"`
}

// RequestJoinResponse reports the group and one of "pending",
// "already_requested" or "already_member".
type RequestJoinResponse struct {
	Group  *Group `json:"group"`
	Status string `json:"status"`
}

type ApproveJoinRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

type ApproveJoinResponse struct {
	Group *Group `json:"group"`
}

// LeaveGroupRequest removes a member. UserID defaults to the caller.
type LeaveGroupRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId,omitempty"`
}

type LeaveGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

// ListGroupsRequest lists a user's groups. UserID defaults to the caller.
type ListGroupsRequest struct {
	UserID string `json:"userId,omitempty"`
}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

// SubmitExpenseRequest records an expense. SubmitterID defaults to the caller.
type SubmitExpenseRequest struct {
	GroupID     string  `json:"groupId"`
	SubmitterID string  `json:"submitterId,omitempty"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type SubmitExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// ApproveExpenseRequest casts an approval. UserID defaults to the caller.
type ApproveExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
	UserID    string `json:"userId,omitempty"`
}

type ApproveExpenseResponse struct {
	Expense *Expense `json:"expense"`
}
