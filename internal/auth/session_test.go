package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigerapp/oficina-api/internal/auth"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/repository"
	"github.com/tigerapp/oficina-api/internal/testutil"
)

func TestDBSessionStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := auth.NewDBSessionStore(repository.NewSessionRepository(db))
	ctx := context.Background()
	userID := testutil.CreateTestUser(t, db, "Ana", domain.RoleCashier).ID

	first, err := store.Create(ctx, userID, time.Hour)
	require.NoError(t, err)
	second, err := store.Create(ctx, userID, time.Hour)
	require.NoError(t, err)
	expired, err := store.Create(ctx, userID, -time.Minute)
	require.NoError(t, err)

	owner, err := store.Validate(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, userID, owner)

	_, err = store.Validate(ctx, expired)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	_, err = store.Validate(ctx, uuid.New())
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)

	purged, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	require.NoError(t, store.Revoke(ctx, first))
	_, err = store.Validate(ctx, first)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	_, err = store.Validate(ctx, second)
	assert.NoError(t, err)

	require.NoError(t, store.RevokeUser(ctx, userID))
	_, err = store.Validate(ctx, second)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}
