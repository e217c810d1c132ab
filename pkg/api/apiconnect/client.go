package apiconnect

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitvote/pkg/api"
)

// UserServiceClient calls the user service.
type UserServiceClient struct {
	resolveUser *connect.Client[api.ResolveUserRequest, api.ResolveUserResponse]
}

// NewUserServiceClient returns a client for the service at baseURL.
func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *UserServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withClientCodec(opts)
	return &UserServiceClient{
		resolveUser: connect.NewClient[api.ResolveUserRequest, api.ResolveUserResponse](httpClient, baseURL+UserServiceResolveUserProcedure, opts...),
	}
}

func (c *UserServiceClient) ResolveUser(ctx context.Context, req *connect.Request[api.ResolveUserRequest]) (*connect.Response[api.ResolveUserResponse], error) {
	return c.resolveUser.CallUnary(ctx, req)
}

// GroupServiceClient calls the group service.
type GroupServiceClient struct {
	createGroup *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	requestJoin *connect.Client[api.RequestJoinRequest, api.RequestJoinResponse]
	approveJoin *connect.Client[api.ApproveJoinRequest, api.ApproveJoinResponse]
	leaveGroup  *connect.Client[api.LeaveGroupRequest, api.LeaveGroupResponse]
	getGroup    *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups  *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
}

// NewGroupServiceClient returns a client for the service at baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withClientCodec(opts)
	return &GroupServiceClient{
		createGroup: connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		requestJoin: connect.NewClient[api.RequestJoinRequest, api.RequestJoinResponse](httpClient, baseURL+GroupServiceRequestJoinProcedure, opts...),
		approveJoin: connect.NewClient[api.ApproveJoinRequest, api.ApproveJoinResponse](httpClient, baseURL+GroupServiceApproveJoinProcedure, opts...),
		leaveGroup:  connect.NewClient[api.LeaveGroupRequest, api.LeaveGroupResponse](httpClient, baseURL+GroupServiceLeaveGroupProcedure, opts...),
		getGroup:    connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:  connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) RequestJoin(ctx context.Context, req *connect.Request[api.RequestJoinRequest]) (*connect.Response[api.RequestJoinResponse], error) {
	return c.requestJoin.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ApproveJoin(ctx context.Context, req *connect.Request[api.ApproveJoinRequest]) (*connect.Response[api.ApproveJoinResponse], error) {
	return c.approveJoin.CallUnary(ctx, req)
}

func (c *GroupServiceClient) LeaveGroup(ctx context.Context, req *connect.Request[api.LeaveGroupRequest]) (*connect.Response[api.LeaveGroupResponse], error) {
	return c.leaveGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

// ExpenseServiceClient calls the expense service.
type ExpenseServiceClient struct {
	submitExpense  *connect.Client[api.SubmitExpenseRequest, api.SubmitExpenseResponse]
	approveExpense *connect.Client[api.ApproveExpenseRequest, api.ApproveExpenseResponse]
}

// NewExpenseServiceClient returns a client for the service at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withClientCodec(opts)
	return &ExpenseServiceClient{
		submitExpense:  connect.NewClient[api.SubmitExpenseRequest, api.SubmitExpenseResponse](httpClient, baseURL+ExpenseServiceSubmitExpenseProcedure, opts...),
		approveExpense: connect.NewClient[api.ApproveExpenseRequest, api.ApproveExpenseResponse](httpClient, baseURL+ExpenseServiceApproveExpenseProcedure, opts...),
	}
}

func (c *ExpenseServiceClient) SubmitExpense(ctx context.Context, req *connect.Request[api.SubmitExpenseRequest]) (*connect.Response[api.SubmitExpenseResponse], error) {
	return c.submitExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ApproveExpense(ctx context.Context, req *connect.Request[api.ApproveExpenseRequest]) (*connect.Response[api.ApproveExpenseResponse], error) {
	return c.approveExpense.CallUnary(ctx, req)
}

func withClientCodec(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
}
