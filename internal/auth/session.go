package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/repository"
	"gorm.io/gorm"
)

// ErrSessionNotFound is returned for missing, expired or signed-out sessions
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps track of live sign-in sessions
type SessionStore interface {
	Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (uuid.UUID, error)
	// Validate returns the session owner or ErrSessionNotFound
	Validate(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error)
	Revoke(ctx context.Context, sessionID uuid.UUID) error
	RevokeUser(ctx context.Context, userID uuid.UUID) error
	// Purge drops expired sessions and returns how many were removed
	Purge(ctx context.Context) (int64, error)
}

// DBSessionStore stores sessions in the sessions table
type DBSessionStore struct {
	repo *repository.SessionRepository
	now  func() time.Time
}

func NewDBSessionStore(repo *repository.SessionRepository) *DBSessionStore {
	return &DBSessionStore{repo: repo, now: time.Now}
}

func (s *DBSessionStore) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (uuid.UUID, error) {
	now := s.now().UTC()
	session := &domain.Session{ID: uuid.New(), UserID: userID, CreatedAt: now, ExpiresAt: now.Add(ttl)}
	if err := s.repo.Create(ctx, session); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session.ID, nil
}

func (s *DBSessionStore) Validate(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error) {
	session, err := s.repo.GetActive(ctx, sessionID, s.now().UTC())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session.UserID, nil
}

func (s *DBSessionStore) Revoke(ctx context.Context, sessionID uuid.UUID) error {
	return s.repo.Delete(ctx, sessionID)
}

func (s *DBSessionStore) RevokeUser(ctx context.Context, userID uuid.UUID) error {
	return s.repo.DeleteByUser(ctx, userID)
}

func (s *DBSessionStore) Purge(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now().UTC())
}

// RedisSessionStore keeps sessions as expiring keys. A per-user set tracks
// session ids so RevokeUser can end all of them.
type RedisSessionStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisSessionStore(client redis.UniversalClient) *RedisSessionStore {
	return &RedisSessionStore{client: client, prefix: "oficina:session:"}
}

func (s *RedisSessionStore) sessionKey(id uuid.UUID) string {
	return s.prefix + id.String()
}

func (s *RedisSessionStore) userKey(id uuid.UUID) string {
	return s.prefix + "user:" + id.String()
}

func (s *RedisSessionStore) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (uuid.UUID, error) {
	id := uuid.New()
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.sessionKey(id), userID.String(), ttl)
	pipe.SAdd(ctx, s.userKey(userID), id.String())
	pipe.Expire(ctx, s.userKey(userID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to store session: %w", err)
	}
	return id, nil
}

func (s *RedisSessionStore) Validate(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, s.sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to load session: %w", err)
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, ErrSessionNotFound
	}
	return userID, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, sessionID uuid.UUID) error {
	return s.client.Del(ctx, s.sessionKey(sessionID)).Err()
}

func (s *RedisSessionStore) RevokeUser(ctx context.Context, userID uuid.UUID) error {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.prefix+id)
	}
	keys = append(keys, s.userKey(userID))
	return s.client.Del(ctx, keys...).Err()
}

// Purge is a no-op: Redis expires session keys itself
func (s *RedisSessionStore) Purge(ctx context.Context) (int64, error) {
	return 0, nil
}
