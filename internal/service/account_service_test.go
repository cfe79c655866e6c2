package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"mosaic/internal/models"
	"mosaic/internal/repository"
	"mosaic/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.Follow{},
		&models.DeletionTombstone{},
	))
	return db
}

// storeStub records object-store calls and can be made to fail.
type storeStub struct {
	mu        sync.Mutex
	uploads   int
	deleted   []string
	deleteErr error
}

func (s *storeStub) Upload(_ context.Context, _ []byte, folder string) (*storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	id := fmt.Sprintf("%s/upload-%d.webp", folder, s.uploads)
	return &storage.Object{ID: id, URL: "http://localhost/uploads/" + id}, nil
}

func (s *storeStub) Delete(_ context.Context, objectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, objectID)
	return nil
}

func newAccountService(t *testing.T, db *gorm.DB, store *storeStub) *AccountService {
	return NewAccountService(
		db,
		repository.NewUserRepository(db),
		repository.NewPostRepository(db),
		repository.NewTombstoneRepository(db),
		store,
	)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	user := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestAccountService_DeleteAccount(t *testing.T) {
	db := setupTestDB(t)
	store := &storeStub{}
	svc := newAccountService(t, db, store)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	// alice's own post, with engagement from bob
	alicePost := &models.Post{Caption: "mine", UserID: alice.ID, ImageObjectID: "posts/alice.webp"}
	require.NoError(t, db.Create(alicePost).Error)
	require.NoError(t, db.Create(&models.Like{UserID: bob.ID, PostID: alicePost.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{Content: "nice", UserID: bob.ID, PostID: alicePost.ID}).Error)

	// bob's post, with engagement from alice (authored content that
	// outlives the synchronous cascade)
	bobPost := &models.Post{Caption: "bobs", UserID: bob.ID}
	require.NoError(t, db.Create(bobPost).Error)
	require.NoError(t, db.Create(&models.Like{UserID: alice.ID, PostID: bobPost.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{Content: "from alice", UserID: alice.ID, PostID: bobPost.ID}).Error)

	// mutual follow alice<->bob, plus carol->alice
	require.NoError(t, db.Create(&models.Follow{FollowerID: alice.ID, FollowingID: bob.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: bob.ID, FollowingID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: carol.ID, FollowingID: alice.ID}).Error)

	require.NoError(t, svc.DeleteAccount(ctx, alice.ID))

	// User row is gone.
	var users int64
	require.NoError(t, db.Unscoped().Model(&models.User{}).Where("id = ?", alice.ID).Count(&users).Error)
	assert.Zero(t, users)

	// Her posts and the engagement on them are gone.
	var posts, likesOnHers, commentsOnHers int64
	require.NoError(t, db.Unscoped().Model(&models.Post{}).Where("user_id = ?", alice.ID).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", alicePost.ID).Count(&likesOnHers).Error)
	require.NoError(t, db.Unscoped().Model(&models.Comment{}).Where("post_id = ?", alicePost.ID).Count(&commentsOnHers).Error)
	assert.Zero(t, posts)
	assert.Zero(t, likesOnHers)
	assert.Zero(t, commentsOnHers)

	// Every follow edge touching her is gone, in both directions.
	var edges int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("follower_id = ? OR following_id = ?", alice.ID, alice.ID).
		Count(&edges).Error)
	assert.Zero(t, edges)

	// Her content on bob's post was swept (DeleteAccount runs one sweep
	// inline after commit).
	var authoredLikes, authoredComments int64
	require.NoError(t, db.Model(&models.Like{}).Where("user_id = ?", alice.ID).Count(&authoredLikes).Error)
	require.NoError(t, db.Unscoped().Model(&models.Comment{}).Where("user_id = ?", alice.ID).Count(&authoredComments).Error)
	assert.Zero(t, authoredLikes)
	assert.Zero(t, authoredComments)

	// Sweep succeeded, so the tombstone is cleared.
	var tombstones int64
	require.NoError(t, db.Model(&models.DeletionTombstone{}).Count(&tombstones).Error)
	assert.Zero(t, tombstones)

	// Post image released; bob and his content untouched.
	assert.Contains(t, store.deleted, "posts/alice.webp")
	var bobPosts int64
	require.NoError(t, db.Model(&models.Post{}).Where("user_id = ?", bob.ID).Count(&bobPosts).Error)
	assert.Equal(t, int64(1), bobPosts)
	var carolRows int64
	require.NoError(t, db.Unscoped().Model(&models.User{}).Where("id = ?", carol.ID).Count(&carolRows).Error)
	assert.Equal(t, int64(1), carolRows)
}

func TestAccountService_DeleteAccount_Idempotence(t *testing.T) {
	db := setupTestDB(t)
	svc := newAccountService(t, db, &storeStub{})
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	require.NoError(t, svc.DeleteAccount(ctx, alice.ID))

	err := svc.DeleteAccount(ctx, alice.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestAccountService_DeletedUserCannotFollow(t *testing.T) {
	db := setupTestDB(t)
	svc := newAccountService(t, db, &storeStub{})
	graph := NewGraphService(repository.NewUserRepository(db), repository.NewFollowRepository(db))
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	require.NoError(t, svc.DeleteAccount(ctx, alice.ID))

	// A toggle on behalf of the removed account must not re-create edges
	// pointing at it.
	_, err := graph.ToggleFollow(ctx, alice.ID, bob.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	var edges int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("follower_id = ? OR following_id = ?", alice.ID, alice.ID).
		Count(&edges).Error)
	assert.Zero(t, edges)
}

func TestAccountService_SweepRepairsStragglers(t *testing.T) {
	db := setupTestDB(t)
	svc := newAccountService(t, db, &storeStub{})
	ctx := context.Background()

	bob := seedUser(t, db, "bob")
	bobPost := &models.Post{Caption: "bobs", UserID: bob.ID}
	require.NoError(t, db.Create(bobPost).Error)

	// Simulate a crash after the cascade committed but before the sweep
	// ran: user 42 is gone, their authored content and the tombstone
	// remain.
	require.NoError(t, db.Create(&models.Like{UserID: 42, PostID: bobPost.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{Content: "orphan", UserID: 42, PostID: bobPost.ID}).Error)
	require.NoError(t, db.Create(&models.DeletionTombstone{UserID: 42}).Error)

	svc.sweepPending(ctx)

	var likes, comments, tombstones int64
	require.NoError(t, db.Model(&models.Like{}).Where("user_id = ?", 42).Count(&likes).Error)
	require.NoError(t, db.Unscoped().Model(&models.Comment{}).Where("user_id = ?", 42).Count(&comments).Error)
	require.NoError(t, db.Model(&models.DeletionTombstone{}).Count(&tombstones).Error)
	assert.Zero(t, likes)
	assert.Zero(t, comments)
	assert.Zero(t, tombstones)
}

func TestAccountService_AvatarReleaseFailureDoesNotBlock(t *testing.T) {
	db := setupTestDB(t)
	store := &storeStub{deleteErr: assert.AnError}
	svc := newAccountService(t, db, store)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", alice.ID).
		Update("avatar_object_id", "avatars/alice.webp").Error)

	require.NoError(t, svc.DeleteAccount(ctx, alice.ID))

	var users int64
	require.NoError(t, db.Unscoped().Model(&models.User{}).Where("id = ?", alice.ID).Count(&users).Error)
	assert.Zero(t, users)
}
