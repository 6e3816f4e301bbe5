package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigerapp/oficina-api/internal/repository"
	"github.com/tigerapp/oficina-api/internal/testutil"
)

func TestNumberSequenceRepository_GetNextNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	ctx := context.Background()

	current, err := repo.GetCurrentSequence(ctx, "OS", 2024)
	require.NoError(t, err)
	assert.Zero(t, current)

	for want := 1; want <= 3; want++ {
		got, err := repo.GetNextNumber(ctx, "OS", 2024)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// kinds and years are counted separately
	got, err := repo.GetNextNumber(ctx, "FAT", 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	got, err = repo.GetNextNumber(ctx, "OS", 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	current, err = repo.GetCurrentSequence(ctx, "OS", 2024)
	require.NoError(t, err)
	assert.Equal(t, 3, current)
}
