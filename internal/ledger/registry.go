package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mmynk/splitvote/internal/metrics"
	"github.com/mmynk/splitvote/internal/models"
	"github.com/mmynk/splitvote/internal/notify"
	"github.com/mmynk/splitvote/internal/storage"
)

const joinCodeRetryDelay = 10 * time.Millisecond

// Registry creates groups and manages their membership.
type Registry struct {
	core
	store    storage.Store
	policy   JoinPolicy
	codes    JoinCodeGenerator
	attempts int
}

// NewRegistry creates a Registry that persists to store and announces changes
// through publisher.
func NewRegistry(store storage.Store, publisher notify.Publisher, opts Options) *Registry {
	opts = opts.withDefaults()
	return &Registry{
		core:     newCore(opts, publisher),
		store:    store,
		policy:   opts.Policy,
		codes:    opts.JoinCodes,
		attempts: opts.JoinCodeAttempts,
	}
}

// CreateGroup creates a group owned by ownerID with a fresh unique join code.
// The owner becomes the only member and the group becomes their current group.
func (r *Registry) CreateGroup(ctx context.Context, name, ownerID string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArgument("group name is required")
	}
	if ownerID == "" {
		return nil, invalidArgument("owner id is required")
	}

	ctx, cancel := r.bounded(ctx)
	defer cancel()

	if _, err := r.store.GetUser(ctx, ownerID); err != nil {
		return nil, storeError("create group", err)
	}

	var group *models.Group
	backoff := retry.WithMaxRetries(uint64(r.attempts-1), retry.NewConstant(joinCodeRetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		code, err := r.codes()
		if err != nil {
			return err
		}

		candidate := &models.Group{Name: name, CreatorID: ownerID, JoinCode: code}
		err = r.store.CreateGroup(ctx, candidate)
		if errors.Is(err, storage.ErrConflict) {
			metrics.RecordJoinCodeCollision()
			r.logger.Warn("Join code collision, retrying", "join_code", code)
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}

		group = candidate
		return nil
	})
	if errors.Is(err, storage.ErrConflict) {
		return nil, fmt.Errorf("create group: %w: %w: no unique join code after %d attempts",
			ErrStorageUnavailable, ErrConflict, r.attempts)
	}
	if err != nil {
		return nil, storeError("create group", err)
	}

	metrics.RecordGroupCreated()
	r.logger.Info("Group created", "group_id", group.ID, "owner_id", ownerID)
	return group, nil
}

// RequestJoin asks to join the group identified by joinCode. Repeating the
// request, or requesting as an existing member, changes nothing and reports
// the current state.
func (r *Registry) RequestJoin(ctx context.Context, joinCode, userID string) (*models.JoinRequestResult, error) {
	joinCode = NormalizeJoinCode(joinCode)
	if joinCode == "" {
		return nil, invalidArgument("join code is required")
	}
	if userID == "" {
		return nil, invalidArgument("user id is required")
	}

	ctx, cancel := r.bounded(ctx)
	defer cancel()

	group, err := r.store.GetGroupByJoinCode(ctx, joinCode)
	if err != nil {
		return nil, storeError("request join", err)
	}
	user, err := r.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError("request join", err)
	}

	added, err := r.store.AddJoinRequest(ctx, group.ID, user.ID)
	if err != nil {
		return nil, storeError("request join", err)
	}

	group, err = r.store.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, storeError("request join", err)
	}

	result := &models.JoinRequestResult{Group: group}
	switch {
	case added:
		result.Status = models.JoinStatusPending
	case group.HasMember(user.ID):
		result.Status = models.JoinStatusAlreadyMember
	default:
		result.Status = models.JoinStatusAlreadyRequested
	}

	if added {
		metrics.RecordMembershipChange("requested")
		r.publish(group.ID, notify.Event{Name: notify.EventJoinRequest, GroupID: group.ID, User: user})
	}
	return result, nil
}

// ApproveJoin makes userID a member of groupID and clears any pending request.
// The configured JoinPolicy decides whether callerID may do this.
func (r *Registry) ApproveJoin(ctx context.Context, callerID, groupID, userID string) (*models.Group, error) {
	if groupID == "" {
		return nil, invalidArgument("group id is required")
	}
	if userID == "" {
		return nil, invalidArgument("user id is required")
	}

	ctx, cancel := r.bounded(ctx)
	defer cancel()

	group, err := r.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeError("approve join", err)
	}
	user, err := r.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError("approve join", err)
	}

	if err := r.policy.AuthorizeJoinApproval(callerID, group); err != nil {
		return nil, fmt.Errorf("approve join: %w", err)
	}

	added, err := r.store.ApproveMember(ctx, group.ID, user.ID)
	if err != nil {
		return nil, storeError("approve join", err)
	}

	group, err = r.store.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, storeError("approve join", err)
	}
	user.CurrentGroupID = group.ID

	if added {
		metrics.RecordMembershipChange("approved")
	}
	r.publish(group.ID, notify.Event{Name: notify.EventMemberApproved, GroupID: group.ID, User: user})
	return group, nil
}

// LeaveGroup removes userID from groupID's members. The creator cannot leave.
// Expenses already approved stay approved.
func (r *Registry) LeaveGroup(ctx context.Context, groupID, userID string) (*models.Group, error) {
	if groupID == "" {
		return nil, invalidArgument("group id is required")
	}
	if userID == "" {
		return nil, invalidArgument("user id is required")
	}

	ctx, cancel := r.bounded(ctx)
	defer cancel()

	group, err := r.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeError("leave group", err)
	}
	if userID == group.CreatorID {
		return nil, invalidArgument("the group creator cannot leave the group")
	}

	removed, err := r.store.RemoveMember(ctx, group.ID, userID)
	if err != nil {
		return nil, storeError("leave group", err)
	}
	if !removed {
		return group, nil
	}

	group, err = r.store.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, storeError("leave group", err)
	}

	user, err := r.store.GetUser(ctx, userID)
	if err != nil {
		user = &models.User{ID: userID}
	}
	metrics.RecordMembershipChange("left")
	r.publish(group.ID, notify.Event{Name: notify.EventMemberLeft, GroupID: group.ID, User: user})
	return group, nil
}

// GetGroupDetail returns a group with its members' names and all its expenses.
func (r *Registry) GetGroupDetail(ctx context.Context, groupID string) (*models.GroupView, error) {
	if groupID == "" {
		return nil, invalidArgument("group id is required")
	}

	ctx, cancel := r.bounded(ctx)
	defer cancel()

	group, err := r.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeError("get group", err)
	}

	views, err := r.assemble(ctx, []*models.Group{group})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// ListGroupsForUser returns every group userID belongs to, with expenses,
// most recently updated first.
func (r *Registry) ListGroupsForUser(ctx context.Context, userID string) ([]*models.GroupView, error) {
	if userID == "" {
		return nil, invalidArgument("user id is required")
	}

	ctx, cancel := r.bounded(ctx)
	defer cancel()

	groups, err := r.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, storeError("list groups", err)
	}
	return r.assemble(ctx, groups)
}

// assemble builds read views for groups: member and requester names are
// resolved in one lookup, expenses are fetched per group.
func (r *Registry) assemble(ctx context.Context, groups []*models.Group) ([]*models.GroupView, error) {
	var ids []string
	seen := make(map[string]bool)
	for _, g := range groups {
		for _, id := range append(append([]string{}, g.Members...), g.JoinRequests...) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	users, err := r.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, storeError("resolve members", err)
	}

	views := make([]*models.GroupView, 0, len(groups))
	for _, g := range groups {
		expenses, err := r.store.ListExpensesByGroup(ctx, g.ID)
		if err != nil {
			return nil, storeError("list expenses", err)
		}
		views = append(views, &models.GroupView{
			Group:        g,
			Members:      memberRefs(g.Members, users),
			JoinRequests: memberRefs(g.JoinRequests, users),
			Expenses:     expenses,
		})
	}
	return views, nil
}

func memberRefs(ids []string, users map[string]*models.User) []models.MemberRef {
	refs := make([]models.MemberRef, len(ids))
	for i, id := range ids {
		refs[i] = models.MemberRef{UserID: id}
		if u, ok := users[id]; ok {
			refs[i].DisplayName = u.DisplayName
		}
	}
	return refs
}
