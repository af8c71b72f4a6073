package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/clubhouse/internal/apperr"
	"github.com/mmynk/clubhouse/internal/auth"
	"github.com/mmynk/clubhouse/internal/middleware"
	"github.com/mmynk/clubhouse/internal/storage"
	"github.com/mmynk/clubhouse/pkg/api"
	"github.com/mmynk/clubhouse/pkg/api/apiconnect"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	revoker       auth.Revoker
	users         storage.UserStore
	validate      *ValidationHelper
	logger        *slog.Logger
}

var _ apiconnect.AuthServiceHandler = (*AuthService)(nil)

// NewAuthService creates a new authentication service. A nil revoker makes
// Logout a no-op on the server side.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, revoker auth.Revoker, users storage.UserStore, logger *slog.Logger) *AuthService {
	if revoker == nil {
		revoker = auth.NopRevoker{}
	}
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		revoker:       revoker,
		users:         users,
		validate:      NewValidationHelper(),
		logger:        logger,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	s.logger.Info("Register request", "email", req.Msg.Email)

	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	user, err := s.authenticator.Register(ctx, auth.Registration{
		Email:       req.Msg.Email,
		DisplayName: req.Msg.DisplayName,
		Nickname:    req.Msg.Nickname,
		Credential:  req.Msg.Password,
	})
	if err != nil {
		s.logger.Warn("Registration failed", "email", req.Msg.Email, "error", err)
		return nil, s.authError(err)
	}

	token, _, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, toConnectError("Register", err)
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&api.RegisterResponse{User: toUser(user), Token: token}), nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Msg.Email, "error", err)
		return nil, s.authError(err)
	}

	token, _, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, toConnectError("Login", err)
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "is_admin", user.IsAdmin)
	return connect.NewResponse(&api.LoginResponse{User: toUser(user), Token: token}), nil
}

// Logout revokes the caller's token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, req *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error) {
	p := middleware.PrincipalFrom(ctx)
	if p == nil {
		return nil, apiconnect.NewError(apperr.New(apperr.KindUnauthenticated, auth.ErrMissingToken.Error()), nil)
	}

	ttl := time.Until(p.ExpiresAt)
	if ttl > 0 && p.TokenID != "" {
		if err := s.revoker.Revoke(ctx, p.TokenID, ttl); err != nil {
			s.logger.Error("Failed to revoke token", "user_id", p.UserID, "error", err)
			return nil, toConnectError("Logout", err)
		}
	}

	s.logger.Info("Logout request", "user_id", p.UserID)
	return connect.NewResponse(&api.LogoutResponse{}), nil
}

// GetCurrentUser returns the currently authenticated user's information.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, apiconnect.NewError(apperr.New(apperr.KindUnauthenticated, auth.ErrMissingToken.Error()), nil)
	}

	s.logger.Info("GetCurrentUser request", "user_id", userID)

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, toConnectError("GetCurrentUser", err)
	}

	return connect.NewResponse(&api.GetCurrentUserResponse{User: toUser(user)}), nil
}

func (s *AuthService) authError(err error) error {
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		return apiconnect.NewError(apperr.Wrap(apperr.KindAlreadyExists, err.Error(), err), nil)
	case errors.Is(err, auth.ErrWeakPassword):
		return apiconnect.NewError(apperr.Wrap(apperr.KindValidation, err.Error(), err), map[string]string{"password": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apiconnect.NewError(apperr.Wrap(apperr.KindUnauthenticated, err.Error(), err), nil)
	}
	return toConnectError("auth", err)
}
