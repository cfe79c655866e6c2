package server

import (
	"net/http"
	"testing"

	"mosaic/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteAccountHandler(t *testing.T) {
	s, db, _, _ := newTestServer(t)
	alice := createHandlerTestUser(t, db, "alice")
	bob := createHandlerTestUser(t, db, "bob")

	alicePost := &models.Post{Caption: "mine", ImageObjectID: "o1", ImageURL: "u", UserID: alice.ID}
	require.NoError(t, db.Create(alicePost).Error)
	bobPost := &models.Post{Caption: "his", ImageObjectID: "o2", ImageURL: "u", UserID: bob.ID}
	require.NoError(t, db.Create(bobPost).Error)

	require.NoError(t, db.Create(&models.Follow{FollowerID: alice.ID, FollowingID: bob.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: bob.ID, FollowingID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: alice.ID, PostID: bobPost.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{Content: "hi", UserID: alice.ID, PostID: bobPost.ID}).Error)

	app := fiber.New()
	app.Use(asUser(alice.ID))
	app.Delete("/api/profile", s.DeleteAccount)

	resp, err := app.Test(newRequest(t, "DELETE", "/api/profile", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Account deleted", body["message"])

	var count int64
	db.Unscoped().Model(&models.User{}).Where("id = ?", alice.ID).Count(&count)
	assert.EqualValues(t, 0, count, "user row gone")

	db.Unscoped().Model(&models.Post{}).Where("user_id = ?", alice.ID).Count(&count)
	assert.EqualValues(t, 0, count, "owned posts gone")

	db.Model(&models.Follow{}).
		Where("follower_id = ? OR following_id = ?", alice.ID, alice.ID).Count(&count)
	assert.EqualValues(t, 0, count, "both follow directions gone")

	db.Model(&models.Like{}).Where("user_id = ?", alice.ID).Count(&count)
	assert.EqualValues(t, 0, count, "authored likes swept")

	db.Unscoped().Model(&models.Comment{}).Where("user_id = ?", alice.ID).Count(&count)
	assert.EqualValues(t, 0, count, "authored comments swept")

	db.Unscoped().Model(&models.Post{}).Where("id = ?", bobPost.ID).Count(&count)
	assert.EqualValues(t, 1, count, "other users' posts untouched")

	t.Run("second call reports missing account", func(t *testing.T) {
		resp, err := app.Test(newRequest(t, "DELETE", "/api/profile", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
