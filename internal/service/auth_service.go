package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tigerapp/oficina-api/internal/auth"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/mapper"
	"github.com/tigerapp/oficina-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService signs staff in and out and handles password resets
type AuthService struct {
	db       *gorm.DB
	users    *repository.UserRepository
	resets   *repository.PasswordResetRepository
	sessions auth.SessionStore
	tokens   *auth.TokenManager
	hasher   *auth.Hasher
	throttle *auth.SignInThrottle
	resetTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	users *repository.UserRepository,
	resets *repository.PasswordResetRepository,
	sessions auth.SessionStore,
	tokens *auth.TokenManager,
	hasher *auth.Hasher,
	throttle *auth.SignInThrottle,
	resetTTL time.Duration,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		db:       db,
		users:    users,
		resets:   resets,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		throttle: throttle,
		resetTTL: resetTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// SignUp creates a staff account. The first account becomes the manager;
// afterwards only managers may choose a role, everyone else signs up as a mechanic.
func (s *AuthService) SignUp(ctx context.Context, req *domain.SignUpRequest) (*domain.UserDTO, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, storeError("count users", "user", "", err)
	}

	role := domain.RoleMechanic
	switch actor := auth.Actor(ctx); {
	case count == 0:
		role = domain.RoleManager
	case actor != nil && actor.HasAnyRole(domain.RoleManager) && req.Role != "":
		role = req.Role
	}
	if !role.IsValid() {
		v := newValidationError()
		v.Add("role", "unknown role")
		return nil, v
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         role,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeError("create user", "user with this email", user.Email, err)
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID.String()), zap.String("role", string(role)))
	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// SignIn verifies credentials, opens a session and issues its token.
// Repeated failures for one address are throttled.
func (s *AuthService) SignIn(ctx context.Context, req *domain.SignInRequest) (*domain.SignInResponse, error) {
	if s.throttle.Blocked(req.Email) {
		return nil, ErrTooManyTries
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.throttle.Failure(req.Email)
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, storeError("get user", "user", req.Email, err)
	}
	if err := s.hasher.Verify(user.PasswordHash, req.Password); err != nil {
		s.throttle.Failure(req.Email)
		s.logger.Warn("failed sign-in", zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", ErrForbidden)
	}

	sessionID, err := s.sessions.Create(ctx, user.ID, s.tokens.TTL())
	if err != nil {
		return nil, &PersistenceError{Op: "create session", Err: err}
	}
	token, expiresAt, err := s.tokens.Issue(user, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	user.LastLoginAt = &now

	return &domain.SignInResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.Format(time.RFC3339),
		User:        mapper.ToUserDTO(user),
	}, nil
}

// SignOut ends the caller's session; its token stops working immediately
func (s *AuthService) SignOut(ctx context.Context) error {
	actor := auth.Actor(ctx)
	if actor == nil || actor.SessionID == uuid.Nil {
		return fmt.Errorf("%w: no active session", ErrUnauthorized)
	}
	if err := s.sessions.Revoke(ctx, actor.SessionID); err != nil {
		return &PersistenceError{Op: "revoke session", Err: err}
	}
	s.logger.Info("user signed out", zap.String("user_id", actor.UserID.String()))
	return nil
}

// Me returns the signed-in user
func (s *AuthService) Me(ctx context.Context) (*domain.UserDTO, error) {
	actor := auth.Actor(ctx)
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if actor.IsSystem() {
		return &domain.UserDTO{FullName: actor.DisplayName, Email: actor.Email, Role: actor.Role, IsActive: true}, nil
	}
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, storeError("get user", "user", actor.UserID, err)
	}
	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// ListMechanics returns active users that can be assigned to work orders
func (s *AuthService) ListMechanics(ctx context.Context) ([]domain.UserDTO, error) {
	users, err := s.users.List(ctx, domain.RoleMechanic)
	if err != nil {
		return nil, storeError("list users", "user", "", err)
	}
	dtos := make([]domain.UserDTO, len(users))
	for i := range users {
		dtos[i] = mapper.ToUserDTO(&users[i])
	}
	return dtos, nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RequestPasswordReset creates a single-use reset token. Unknown addresses
// are accepted silently. The token is logged, not mailed.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req *domain.PasswordResetRequest) error {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return storeError("get user", "user", req.Email, err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	record := &domain.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashResetToken(token),
		ExpiresAt: s.now().UTC().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, record); err != nil {
		return storeError("create reset token", "reset token", user.ID, err)
	}

	s.logger.Info("password reset requested",
		zap.String("user_id", user.ID.String()),
		zap.String("reset_token", token),
		zap.Time("expires_at", record.ExpiresAt))
	return nil
}

// ConfirmPasswordReset sets a new password and ends every session of the user
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, req *domain.PasswordResetConfirmRequest) error {
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	var userID uuid.UUID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resets := s.resets.WithTx(tx)
		now := s.now().UTC()

		record, err := resets.GetUsable(ctx, hashResetToken(req.Token), now)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalidState("reset token is invalid or expired")
			}
			return storeError("get reset token", "reset token", "", err)
		}
		used, err := resets.MarkUsed(ctx, record.ID, now)
		if err != nil {
			return storeError("use reset token", "reset token", record.ID, err)
		}
		if !used {
			return invalidState("reset token is invalid or expired")
		}
		if err := s.users.WithTx(tx).UpdatePassword(ctx, record.UserID, hash); err != nil {
			return storeError("update password", "user", record.UserID, err)
		}
		userID = record.UserID
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.sessions.RevokeUser(ctx, userID); err != nil {
		return &PersistenceError{Op: "revoke sessions", Err: err}
	}
	s.logger.Info("password reset completed", zap.String("user_id", userID.String()))
	return nil
}

// PurgeExpired removes expired sessions and reset tokens
func (s *AuthService) PurgeExpired(ctx context.Context) (sessions, tokens int64, err error) {
	sessions, err = s.sessions.Purge(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	tokens, err = s.resets.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return sessions, 0, fmt.Errorf("failed to purge reset tokens: %w", err)
	}
	s.throttle.Sweep()
	return sessions, tokens, nil
}
