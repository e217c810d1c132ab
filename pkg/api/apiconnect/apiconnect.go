// Package apiconnect wires the splitvote.v1 services to connect handlers and
// clients.
package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitvote/pkg/api"
)

const (
	UserServiceName    = "splitvote.v1.UserService"
	GroupServiceName   = "splitvote.v1.GroupService"
	ExpenseServiceName = "splitvote.v1.ExpenseService"
)

const (
	UserServiceResolveUserProcedure       = "/splitvote.v1.UserService/ResolveUser"
	GroupServiceCreateGroupProcedure      = "/splitvote.v1.GroupService/CreateGroup"
	GroupServiceRequestJoinProcedure      = "/splitvote.v1.GroupService/RequestJoin"
	GroupServiceApproveJoinProcedure      = "/splitvote.v1.GroupService/ApproveJoin"
	GroupServiceLeaveGroupProcedure       = "/splitvote.v1.GroupService/LeaveGroup"
	GroupServiceGetGroupProcedure         = "/splitvote.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure       = "/splitvote.v1.GroupService/ListGroups"
	ExpenseServiceSubmitExpenseProcedure  = "/splitvote.v1.ExpenseService/SubmitExpense"
	ExpenseServiceApproveExpenseProcedure = "/splitvote.v1.ExpenseService/ApproveExpense"
)

// UserServiceHandler is implemented by the user service.
type UserServiceHandler interface {
	ResolveUser(context.Context, *connect.Request[api.ResolveUserRequest]) (*connect.Response[api.ResolveUserResponse], error)
}

// GroupServiceHandler is implemented by the group service.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	RequestJoin(context.Context, *connect.Request[api.RequestJoinRequest]) (*connect.Response[api.RequestJoinResponse], error)
	ApproveJoin(context.Context, *connect.Request[api.ApproveJoinRequest]) (*connect.Response[api.ApproveJoinResponse], error)
	LeaveGroup(context.Context, *connect.Request[api.LeaveGroupRequest]) (*connect.Response[api.LeaveGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
}

// ExpenseServiceHandler is implemented by the expense service.
type ExpenseServiceHandler interface {
	SubmitExpense(context.Context, *connect.Request[api.SubmitExpenseRequest]) (*connect.Response[api.SubmitExpenseResponse], error)
	ApproveExpense(context.Context, *connect.Request[api.ApproveExpenseRequest]) (*connect.Response[api.ApproveExpenseResponse], error)
}

// NewUserServiceHandler builds an HTTP handler for svc and returns the path
// prefix to mount it on.
func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	return serviceMux(UserServiceName, map[string]http.Handler{
		UserServiceResolveUserProcedure: connect.NewUnaryHandler(UserServiceResolveUserProcedure, svc.ResolveUser, opts...),
	})
}

// NewGroupServiceHandler builds an HTTP handler for svc and returns the path
// prefix to mount it on.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	return serviceMux(GroupServiceName, map[string]http.Handler{
		GroupServiceCreateGroupProcedure: connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...),
		GroupServiceRequestJoinProcedure: connect.NewUnaryHandler(GroupServiceRequestJoinProcedure, svc.RequestJoin, opts...),
		GroupServiceApproveJoinProcedure: connect.NewUnaryHandler(GroupServiceApproveJoinProcedure, svc.ApproveJoin, opts...),
		GroupServiceLeaveGroupProcedure:  connect.NewUnaryHandler(GroupServiceLeaveGroupProcedure, svc.LeaveGroup, opts...),
		GroupServiceGetGroupProcedure:    connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...),
		GroupServiceListGroupsProcedure:  connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...),
	})
}

// NewExpenseServiceHandler builds an HTTP handler for svc and returns the path
// prefix to mount it on.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	return serviceMux(ExpenseServiceName, map[string]http.Handler{
		ExpenseServiceSubmitExpenseProcedure:  connect.NewUnaryHandler(ExpenseServiceSubmitExpenseProcedure, svc.SubmitExpense, opts...),
		ExpenseServiceApproveExpenseProcedure: connect.NewUnaryHandler(ExpenseServiceApproveExpenseProcedure, svc.ApproveExpense, opts...),
	})
}

func withCodec(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

func serviceMux(service string, routes map[string]http.Handler) (string, http.Handler) {
	return "/" + service + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}
