package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitvote/internal/auth"
	"github.com/mmynk/splitvote/internal/ledger"
	"github.com/mmynk/splitvote/pkg/api"
)

// UserService implements the Connect UserService.
type UserService struct {
	identity   *ledger.Identity
	jwtManager *auth.JWTManager
	logger     *slog.Logger
}

// NewUserService creates a UserService that signs session tokens with jwtManager.
func NewUserService(identity *ledger.Identity, jwtManager *auth.JWTManager, logger *slog.Logger) *UserService {
	return &UserService{identity: identity, jwtManager: jwtManager, logger: logger}
}

// ResolveUser maps a device to its user, creating one on first sight, and
// issues a session token for it.
func (s *UserService) ResolveUser(ctx context.Context, req *connect.Request[api.ResolveUserRequest]) (*connect.Response[api.ResolveUserResponse], error) {
	s.logger.Debug("ResolveUser request received", "display_name", req.Msg.DisplayName)

	user, err := s.identity.ResolveUser(ctx, req.Msg.DeviceID, req.Msg.DisplayName)
	if err != nil {
		s.logger.Debug("ResolveUser failed", "error", err)
		return nil, toConnectError(err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Debug("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&api.ResolveUserResponse{
		User:  toAPIUser(user),
		Token: token,
	}), nil
}
