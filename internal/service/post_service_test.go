package service

import (
	"context"
	"testing"

	"mosaic/internal/models"
	"mosaic/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPostService(db *gorm.DB, store *storeStub) *PostService {
	return NewPostService(
		repository.NewPostRepository(db),
		repository.NewUserRepository(db),
		store,
	)
}

func TestPostService_CreatePost(t *testing.T) {
	db := setupTestDB(t)
	store := &storeStub{}
	svc := newPostService(db, store)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")

	t.Run("Success", func(t *testing.T) {
		post, err := svc.CreatePost(ctx, alice.ID, "  a caption  ", []byte("imagebytes"))
		require.NoError(t, err)
		assert.Equal(t, "a caption", post.Caption)
		assert.NotEmpty(t, post.ImageObjectID)
		assert.NotEmpty(t, post.ImageURL)
		assert.Equal(t, 1, store.uploads)
	})

	t.Run("Missing image rejected", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, alice.ID, "caption", nil)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	db := setupTestDB(t)
	store := &storeStub{}
	svc := newPostService(db, store)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	post, err := svc.CreatePost(ctx, alice.ID, "mine", []byte("img"))
	require.NoError(t, err)

	t.Run("Only the author may delete", func(t *testing.T) {
		err := svc.DeletePost(ctx, bob.ID, post.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "UNAUTHORIZED", appErr.Code)
	})

	t.Run("Author delete removes post and image", func(t *testing.T) {
		require.NoError(t, svc.DeletePost(ctx, alice.ID, post.ID))
		assert.Contains(t, store.deleted, post.ImageObjectID)

		_, err := svc.GetPost(ctx, post.ID)
		assert.Error(t, err)
	})
}

func TestPostService_ToggleLike(t *testing.T) {
	db := setupTestDB(t)
	svc := newPostService(db, &storeStub{})
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post, err := svc.CreatePost(ctx, alice.ID, "likeable", []byte("img"))
	require.NoError(t, err)

	liked, err := svc.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = svc.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	// Re-liking after an unlike must land a fresh live row, not trip over
	// a remnant of the removed one.
	liked, err = svc.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	var live int64
	require.NoError(t, db.Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", bob.ID, post.ID).Count(&live).Error)
	assert.EqualValues(t, 1, live)

	t.Run("Unknown post", func(t *testing.T) {
		_, err := svc.ToggleLike(ctx, bob.ID, 9999)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}

func TestPostService_Comments(t *testing.T) {
	db := setupTestDB(t)
	svc := newPostService(db, &storeStub{})
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	post, err := svc.CreatePost(ctx, alice.ID, "discuss", []byte("img"))
	require.NoError(t, err)

	comment, err := svc.AddComment(ctx, bob.ID, post.ID, "  nice shot  ")
	require.NoError(t, err)
	assert.Equal(t, "nice shot", comment.Content)

	t.Run("Empty comment rejected", func(t *testing.T) {
		_, err := svc.AddComment(ctx, bob.ID, post.ID, "   ")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("Bystander cannot delete", func(t *testing.T) {
		err := svc.DeleteComment(ctx, carol.ID, comment.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "UNAUTHORIZED", appErr.Code)
	})

	t.Run("Post author can delete another user's comment", func(t *testing.T) {
		require.NoError(t, svc.DeleteComment(ctx, alice.ID, comment.ID))

		comments, err := svc.ListComments(ctx, post.ID, 50, 0)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})
}
