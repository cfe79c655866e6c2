package service

import (
	"context"
	"testing"

	"mosaic/internal/models"
	"mosaic/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_Register(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db), &storeStub{})
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		user, err := svc.Register(ctx, "newuser", "New@Example.com", "Password123!")
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "new@example.com", user.Email)
		// Stored hash, not the plaintext.
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("Password123!")))
	})

	t.Run("Duplicate", func(t *testing.T) {
		_, err := svc.Register(ctx, "newuser", "other@example.com", "Password123!")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "CONFLICT", appErr.Code)
	})

	t.Run("Bad username", func(t *testing.T) {
		_, err := svc.Register(ctx, "x", "short@example.com", "Password123!")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("Weak password", func(t *testing.T) {
		_, err := svc.Register(ctx, "validname", "valid@example.com", "weak")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db), &storeStub{})
	ctx := context.Background()

	_, err := svc.Register(ctx, "loginuser", "login@example.com", "Password123!")
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "login@example.com", "Password123!")
		require.NoError(t, err)
		assert.Equal(t, "loginuser", user.Username)
	})

	t.Run("Wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, errWrong := svc.Authenticate(ctx, "login@example.com", "WrongPassword1!")
		_, errUnknown := svc.Authenticate(ctx, "nobody@example.com", "Password123!")

		var appErrWrong, appErrUnknown *models.AppError
		require.ErrorAs(t, errWrong, &appErrWrong)
		require.ErrorAs(t, errUnknown, &appErrUnknown)
		assert.Equal(t, appErrWrong.Code, appErrUnknown.Code)
		assert.Equal(t, appErrWrong.Message, appErrUnknown.Message)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	store := &storeStub{}
	svc := NewUserService(repository.NewUserRepository(db), store)
	ctx := context.Background()

	user, err := svc.Register(ctx, "profileuser", "profile@example.com", "Password123!")
	require.NoError(t, err)

	t.Run("Partial update leaves other fields alone", func(t *testing.T) {
		bio := "hello there"
		updated, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Bio: &bio})
		require.NoError(t, err)
		assert.Equal(t, "hello there", updated.Bio)
		assert.Equal(t, "profileuser", updated.Username)
	})

	t.Run("New avatar replaces the old object", func(t *testing.T) {
		first, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Avatar: []byte("img1")})
		require.NoError(t, err)
		require.NotEmpty(t, first.AvatarObjectID)

		second, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Avatar: []byte("img2")})
		require.NoError(t, err)
		assert.NotEqual(t, first.AvatarObjectID, second.AvatarObjectID)
		assert.Contains(t, store.deleted, first.AvatarObjectID)
	})

	t.Run("Invalid username rejected", func(t *testing.T) {
		bad := "_nope"
		_, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Username: &bad})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})
}
