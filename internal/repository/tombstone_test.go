package repository

import (
	"context"
	"testing"

	"mosaic/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTombstoneRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTombstoneRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.DeletionTombstone{UserID: 7}).Error)
	require.NoError(t, db.Create(&models.DeletionTombstone{UserID: 9}).Error)

	pending, err := repo.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, uint(7), pending[0].UserID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, repo.RecordAttempt(ctx, pending[0].ID))
	require.NoError(t, repo.RecordAttempt(ctx, pending[0].ID))

	pending, err = repo.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, pending[0].Attempts)

	require.NoError(t, repo.Clear(ctx, pending[0].ID))
	pending, err = repo.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, uint(9), pending[0].UserID)
}
