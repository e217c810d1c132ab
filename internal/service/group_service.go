package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitvote/internal/ledger"
	"github.com/mmynk/splitvote/internal/middleware"
	"github.com/mmynk/splitvote/pkg/api"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	registry *ledger.Registry
	logger   *slog.Logger
}

// NewGroupService creates a new GroupService backed by registry.
func NewGroupService(registry *ledger.Registry, logger *slog.Logger) *GroupService {
	return &GroupService{registry: registry, logger: logger}
}

// CreateGroup creates a new group owned by the requested owner or the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	ownerID := orCaller(ctx, req.Msg.OwnerID)
	s.logger.Debug("CreateGroup request received", "name", req.Msg.Name, "owner_id", ownerID)

	group, err := s.registry.CreateGroup(ctx, req.Msg.Name, ownerID)
	if err != nil {
		s.logger.Debug("CreateGroup failed", "owner_id", ownerID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// RequestJoin files a join request using a join code.
func (s *GroupService) RequestJoin(ctx context.Context, req *connect.Request[api.RequestJoinRequest]) (*connect.Response[api.RequestJoinResponse], error) {
	userID := orCaller(ctx, req.Msg.UserID)

	result, err := s.registry.RequestJoin(ctx, req.Msg.JoinCode, userID)
	if err != nil {
		s.logger.Debug("RequestJoin failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Debug("RequestJoin successful", "group_id", result.Group.ID, "status", result.Status)
	return connect.NewResponse(&api.RequestJoinResponse{
		Group:  toAPIGroup(result.Group),
		Status: string(result.Status),
	}), nil
}

// ApproveJoin admits a user to a group on behalf of the authenticated caller.
func (s *GroupService) ApproveJoin(ctx context.Context, req *connect.Request[api.ApproveJoinRequest]) (*connect.Response[api.ApproveJoinResponse], error) {
	callerID := middleware.GetUserID(ctx)

	group, err := s.registry.ApproveJoin(ctx, callerID, req.Msg.GroupID, req.Msg.UserID)
	if err != nil {
		s.logger.Debug("ApproveJoin failed",
			"group_id", req.Msg.GroupID,
			"user_id", req.Msg.UserID,
			"caller_id", callerID,
			"error", err,
		)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ApproveJoinResponse{Group: toAPIGroup(group)}), nil
}

// LeaveGroup removes the requested user or the caller from a group.
func (s *GroupService) LeaveGroup(ctx context.Context, req *connect.Request[api.LeaveGroupRequest]) (*connect.Response[api.LeaveGroupResponse], error) {
	userID := orCaller(ctx, req.Msg.UserID)

	group, err := s.registry.LeaveGroup(ctx, req.Msg.GroupID, userID)
	if err != nil {
		s.logger.Debug("LeaveGroup failed", "group_id", req.Msg.GroupID, "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.LeaveGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup returns a group with member names and expenses.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	view, err := s.registry.GetGroupDetail(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Debug("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroupView(view)}), nil
}

// ListGroups returns the groups a user belongs to, most recently active first.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID := orCaller(ctx, req.Msg.UserID)

	views, err := s.registry.ListGroupsForUser(ctx, userID)
	if err != nil {
		s.logger.Debug("ListGroups failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	groups := make([]*api.Group, len(views))
	for i, v := range views {
		groups[i] = toAPIGroupView(v)
	}

	s.logger.Debug("ListGroups successful", "user_id", userID, "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: groups}), nil
}
