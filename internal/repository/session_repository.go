package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tigerapp/oficina-api/internal/domain"
	"gorm.io/gorm"
)

// SessionRepository persists sign-in sessions when Redis is not configured
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// GetActive returns the session if it exists and has not expired
func (r *SessionRepository) GetActive(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).First(&session, "id = ? AND expires_at > ?", id, now).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Session{}, "id = ?", id).Error
}

// DeleteByUser ends every session of a user
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Session{}, "user_id = ?", userID).Error
}

// DeleteExpired removes sessions that expired before now
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Session{}, "expires_at <= ?", now)
	return result.RowsAffected, result.Error
}

// PasswordResetRepository stores hashed single-use reset tokens
type PasswordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) WithTx(tx *gorm.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: tx}
}

func (r *PasswordResetRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetUsable returns an unused, unexpired token by hash
func (r *PasswordResetRepository) GetUsable(ctx context.Context, hash string, now time.Time) (*domain.PasswordResetToken, error) {
	var token domain.PasswordResetToken
	err := r.db.WithContext(ctx).
		First(&token, "token_hash = ? AND used_at IS NULL AND expires_at > ?", hash, now).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// MarkUsed consumes the token; it reports false if it was already used
func (r *PasswordResetRepository) MarkUsed(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&domain.PasswordResetToken{}).
		Where("id = ? AND used_at IS NULL", id).
		Updates(map[string]interface{}{"used_at": now, "updated_at": now})
	return result.RowsAffected == 1, result.Error
}

// DeleteExpired removes tokens past their expiry or already used
func (r *PasswordResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.PasswordResetToken{}, "expires_at <= ? OR used_at IS NOT NULL", now)
	return result.RowsAffected, result.Error
}
