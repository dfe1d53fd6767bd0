package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/admin-console/internal/auth"
	"github.com/spec-kit/admin-console/internal/config"
	"github.com/spec-kit/admin-console/internal/domain"
	"github.com/spec-kit/admin-console/internal/repository"
	apperrors "github.com/spec-kit/admin-console/pkg/util"
)

// MessageBadCredentials is returned for unknown emails and wrong passwords alike.
const MessageBadCredentials = "Bad credentials"

// AuthService issues tokens for the dev backend.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL()),
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// Login authenticates an account and returns a signed token carrying its role.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (domain.LoginResult, error) {
	if creds.Email == "" || creds.Password == "" {
		return domain.LoginResult{}, apperrors.NewValidationError("email and password required", nil)
	}

	user, err := s.users.GetByEmail(ctx, creds.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.LoginResult{}, apperrors.NewUnauthorized(MessageBadCredentials)
	}
	if err != nil {
		return domain.LoginResult{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, creds.Password); err != nil {
		return domain.LoginResult{}, apperrors.NewUnauthorized(MessageBadCredentials)
	}

	token, _, err := s.tokenMgr.GenerateToken(user.ID, user.Email, RolesFor(user.Role))
	if err != nil {
		return domain.LoginResult{}, apperrors.NewInternalError(err)
	}
	s.logger.Info("issued token", zap.Int("user_id", user.ID), zap.String("role", string(user.Role)))
	return domain.LoginResult{
		Token:     token,
		ExpiresIn: s.tokenMgr.TTL().Milliseconds(),
		UserID:    user.ID,
	}, nil
}

// HashPassword hashes with the configured cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	return auth.HashPassword(password, s.bcryptCost)
}

// RolesFor maps an account role to the token's roles claim.
func RolesFor(role domain.UserRole) []string {
	if role == domain.UserRoleAdmin {
		return []string{auth.RoleAdmin}
	}
	return []string{auth.RoleUser}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// TokenTTL returns the lifetime of issued tokens.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenMgr.TTL()
}
