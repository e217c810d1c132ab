package service

import (
	"github.com/mmynk/splitvote/internal/models"
	"github.com/mmynk/splitvote/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:             u.ID,
		DisplayName:    u.DisplayName,
		CurrentGroupID: u.CurrentGroupID,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	approvals := e.Approvals
	if approvals == nil {
		approvals = []string{}
	}
	return &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		SubmitterID: e.SubmitterID,
		Description: e.Description,
		Amount:      e.Amount,
		Approvals:   approvals,
		Approved:    e.Approved,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// toAPIGroup converts a bare group; members carry IDs only.
func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		ID:           g.ID,
		Name:         g.Name,
		CreatorID:    g.CreatorID,
		JoinCode:     g.JoinCode,
		Members:      idsToMembers(g.Members),
		JoinRequests: idsToMembers(g.JoinRequests),
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

// toAPIGroupView converts a read view with resolved names and expenses.
func toAPIGroupView(v *models.GroupView) *api.Group {
	g := toAPIGroup(v.Group)
	g.Members = refsToMembers(v.Members)
	g.JoinRequests = refsToMembers(v.JoinRequests)
	g.Expenses = make([]*api.Expense, len(v.Expenses))
	for i, e := range v.Expenses {
		g.Expenses[i] = toAPIExpense(e)
	}
	return g
}

func idsToMembers(ids []string) []api.Member {
	members := make([]api.Member, len(ids))
	for i, id := range ids {
		members[i] = api.Member{UserID: id}
	}
	return members
}

func refsToMembers(refs []models.MemberRef) []api.Member {
	members := make([]api.Member, len(refs))
	for i, r := range refs {
		members[i] = api.Member{UserID: r.UserID, DisplayName: r.DisplayName}
	}
	return members
}
