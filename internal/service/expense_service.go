package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitvote/internal/ledger"
	"github.com/mmynk/splitvote/pkg/api"
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewExpenseService creates a new ExpenseService backed by l.
func NewExpenseService(l *ledger.Ledger, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{ledger: l, logger: logger}
}

// SubmitExpense records a new expense awaiting approval.
func (s *ExpenseService) SubmitExpense(ctx context.Context, req *connect.Request[api.SubmitExpenseRequest]) (*connect.Response[api.SubmitExpenseResponse], error) {
	submitterID := orCaller(ctx, req.Msg.SubmitterID)

	expense, err := s.ledger.SubmitExpense(ctx, req.Msg.GroupID, submitterID, req.Msg.Description, req.Msg.Amount)
	if err != nil {
		s.logger.Debug("SubmitExpense failed", "group_id", req.Msg.GroupID, "submitter_id", submitterID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.SubmitExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// ApproveExpense casts the requested user's or the caller's approval.
func (s *ExpenseService) ApproveExpense(ctx context.Context, req *connect.Request[api.ApproveExpenseRequest]) (*connect.Response[api.ApproveExpenseResponse], error) {
	userID := orCaller(ctx, req.Msg.UserID)

	expense, err := s.ledger.CastApproval(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		s.logger.Debug("ApproveExpense failed", "expense_id", req.Msg.ExpenseID, "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Debug("ApproveExpense successful",
		"expense_id", expense.ID,
		"approvals", len(expense.Approvals),
		"approved", expense.Approved,
	)
	return connect.NewResponse(&api.ApproveExpenseResponse{Expense: toAPIExpense(expense)}), nil
}
