package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigerapp/oficina-api/internal/auth"
	"github.com/tigerapp/oficina-api/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Email:     "carlos@oficina.test",
		FullName:  "Carlos Mecânico",
		Role:      domain.RoleMechanic,
		IsActive:  true,
	}
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := auth.NewTokenManager("", "oficina-api", time.Hour)
	assert.Error(t, err)
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	tokens, err := auth.NewTokenManager("secret", "oficina-api", time.Hour)
	require.NoError(t, err)
	user := testUser()
	sessionID := uuid.New()

	signed, expiresAt, err := tokens.Issue(user, sessionID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	userCtx, err := tokens.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userCtx.UserID)
	assert.Equal(t, sessionID, userCtx.SessionID)
	assert.Equal(t, "Carlos Mecânico", userCtx.DisplayName)
	assert.Equal(t, user.Email, userCtx.Email)
	assert.Equal(t, domain.RoleMechanic, userCtx.Role)
	assert.Equal(t, auth.AuthMethodSession, userCtx.Method)
}

func TestTokenManager_Validate_Rejects(t *testing.T) {
	tokens, err := auth.NewTokenManager("secret", "oficina-api", time.Hour)
	require.NoError(t, err)
	user := testUser()

	otherSecret, err := auth.NewTokenManager("other-secret", "oficina-api", time.Hour)
	require.NoError(t, err)
	forged, _, err := otherSecret.Issue(user, uuid.New())
	require.NoError(t, err)

	otherIssuer, err := auth.NewTokenManager("secret", "someone-else", time.Hour)
	require.NoError(t, err)
	foreign, _, err := otherIssuer.Issue(user, uuid.New())
	require.NoError(t, err)

	expired, err := auth.NewTokenManager("secret", "oficina-api", -time.Minute)
	require.NoError(t, err)
	stale, _, err := expired.Issue(user, uuid.New())
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": user.ID.String(),
		"jti": uuid.NewString(),
		"iss": "oficina-api",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "not-a-uuid",
		"jti": uuid.NewString(),
		"iss": "oficina-api",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"wrong secret", forged, auth.ErrInvalidToken},
		{"wrong issuer", foreign, auth.ErrInvalidToken},
		{"expired", stale, auth.ErrExpiredToken},
		{"alg none", unsigned, auth.ErrInvalidToken},
		{"bad subject", badSubject, auth.ErrInvalidToken},
		{"garbage", "not.a.token", auth.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Validate(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
