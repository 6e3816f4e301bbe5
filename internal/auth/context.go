package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/tigerapp/oficina-api/internal/domain"
)

// AuthMethod records how a request was authenticated
type AuthMethod string

const (
	AuthMethodSession AuthMethod = "session"
	AuthMethodAPIKey  AuthMethod = "api_key"
)

// UserContext is the acting staff member of a request. It is created by the
// middleware from a live session and passed down through context.Context.
type UserContext struct {
	UserID      uuid.UUID
	SessionID   uuid.UUID
	DisplayName string
	Email       string
	Role        domain.UserRole
	Method      AuthMethod
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}

// HasAnyRole reports whether the user holds one of roles. System callers
// (API key) pass every role check.
func (u *UserContext) HasAnyRole(roles ...domain.UserRole) bool {
	if u.Role == domain.RoleSystem {
		return true
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// IsSystem reports whether the caller is an integration using the API key
func (u *UserContext) IsSystem() bool {
	return u.Method == AuthMethodAPIKey
}

// ActorID returns the user id to attribute writes to, nil for system callers
func (u *UserContext) ActorID() *uuid.UUID {
	if u == nil || u.UserID == uuid.Nil {
		return nil
	}
	id := u.UserID
	return &id
}

// Actor returns the caller from ctx, or nil when unauthenticated
func Actor(ctx context.Context) *UserContext {
	user, _ := FromContext(ctx)
	return user
}
