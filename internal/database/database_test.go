package database

import (
	"testing"

	"mosaic/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "posts", "comments", "likes", "follows", "deletion_tombstones"} {
		assert.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}

	// The follow edge carries its uniqueness guarantee in the schema.
	assert.True(t, db.Migrator().HasIndex(&models.Follow{}, "idx_follower_following"))

	// Running migrations twice must be a no-op.
	assert.NoError(t, Migrate(db))
}
