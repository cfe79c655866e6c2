package service

import (
	"context"
	"sync"
	"time"

	"mosaic/internal/cache"
	"mosaic/internal/middleware"
	"mosaic/internal/models"
	"mosaic/internal/observability"
	"mosaic/internal/repository"
	"mosaic/internal/storage"

	"gorm.io/gorm"
)

// SweepInterval is how often the background sweeper reconciles pending
// deletion tombstones.
const SweepInterval = 30 * time.Second

// AccountService orchestrates account deletion. It holds the *gorm.DB
// directly because the cascade spans several tables and must commit as a
// single transaction.
type AccountService struct {
	db            *gorm.DB
	userRepo      repository.UserRepository
	postRepo      repository.PostRepository
	tombstoneRepo repository.TombstoneRepository
	store         storage.ObjectStore

	sweepOnce sync.Once
	sweepDone chan struct{}
}

// NewAccountService creates a new account service
func NewAccountService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	tombstoneRepo repository.TombstoneRepository,
	store storage.ObjectStore,
) *AccountService {
	return &AccountService{
		db:            db,
		userRepo:      userRepo,
		postRepo:      postRepo,
		tombstoneRepo: tombstoneRepo,
		store:         store,
		sweepDone:     make(chan struct{}),
	}
}

// DeleteAccount removes a user and everything anchored to them.
//
// The relational cascade (the user row, their posts, likes and comments on
// those posts, and every follow edge touching them) commits in one
// transaction together with a tombstone row. Content the user authored on
// other people's posts is swept asynchronously by the tombstone worker, so
// a crash between commit and sweep never strands orphaned rows: the
// tombstone survives and the sweep is retried.
//
// Object-store releases are best effort and never block the deletion; an
// orphaned image costs storage, a failed deletion costs correctness.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		observability.AccountDeletions.WithLabelValues("error").Inc()
		return err
	}

	imageIDs, err := s.postRepo.ImageObjectIDsByOwner(ctx, userID)
	if err != nil {
		observability.AccountDeletions.WithLabelValues("error").Inc()
		return err
	}

	if user.AvatarObjectID != "" {
		s.release(ctx, user.AvatarObjectID)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&models.Post{}).
			Where("user_id = ?", userID).
			Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Like{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.Post{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("follower_id = ? OR following_id = ?", userID, userID).
			Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&models.User{}, userID).Error; err != nil {
			return err
		}
		return tx.Create(&models.DeletionTombstone{UserID: userID}).Error
	})
	if err != nil {
		observability.AccountDeletions.WithLabelValues("error").Inc()
		middleware.Logger.ErrorContext(ctx, "account deletion failed",
			"user_id", userID, "error", err)
		return models.NewInternalError(err)
	}

	cache.InvalidateUser(ctx, userID)
	for _, objectID := range imageIDs {
		s.release(ctx, objectID)
	}

	observability.AccountDeletions.WithLabelValues("ok").Inc()
	middleware.Logger.InfoContext(ctx, "account deleted",
		"user_id", userID, "posts_removed", len(imageIDs))

	// Run one sweep right away; the periodic worker catches anything this
	// attempt misses.
	s.sweepPending(ctx)
	return nil
}

// StartSweeper launches the background tombstone worker. The first run
// repairs sweeps left unfinished by an earlier crash. Safe to call more
// than once; only the first call starts the goroutine.
func (s *AccountService) StartSweeper(ctx context.Context) {
	s.sweepOnce.Do(func() {
		go func() {
			defer close(s.sweepDone)
			s.sweepPending(ctx)
			ticker := time.NewTicker(SweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					s.sweepPending(ctx)
				}
			}
		}()
	})
}

// WaitSweeper blocks until the sweeper goroutine has exited.
func (s *AccountService) WaitSweeper() {
	<-s.sweepDone
}

// sweepPending clears authored content for every pending tombstone. Each
// tombstone is handled independently so one failure does not block the rest.
func (s *AccountService) sweepPending(ctx context.Context) {
	tombstones, err := s.tombstoneRepo.Pending(ctx)
	if err != nil {
		observability.CascadeSweepRuns.WithLabelValues("error").Inc()
		middleware.Logger.ErrorContext(ctx, "tombstone scan failed", "error", err)
		return
	}
	observability.PendingTombstones.Set(float64(len(tombstones)))
	if len(tombstones) == 0 {
		observability.CascadeSweepRuns.WithLabelValues("clean").Inc()
		return
	}

	swept := true
	for _, t := range tombstones {
		if err := s.sweepOne(ctx, t); err != nil {
			swept = false
			middleware.Logger.ErrorContext(ctx, "content sweep failed",
				"user_id", t.UserID, "attempts", t.Attempts+1, "error", err)
		}
	}
	if swept {
		observability.CascadeSweepRuns.WithLabelValues("swept").Inc()
	} else {
		observability.CascadeSweepRuns.WithLabelValues("error").Inc()
	}
}

// sweepOne deletes likes and comments the deleted user authored on posts
// that still exist, then clears the tombstone. Deletes are idempotent, so a
// retry after a partial failure is safe.
func (s *AccountService) sweepOne(ctx context.Context, t models.DeletionTombstone) error {
	if err := s.tombstoneRepo.RecordAttempt(ctx, t.ID); err != nil {
		return err
	}

	likes, err := s.sweepLikes(ctx, t.UserID)
	if err != nil {
		return err
	}
	comments, err := s.sweepComments(ctx, t.UserID)
	if err != nil {
		return err
	}

	if err := s.tombstoneRepo.Clear(ctx, t.ID); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "content sweep completed",
		"user_id", t.UserID, "likes_removed", likes, "comments_removed", comments)
	return nil
}

func (s *AccountService) sweepLikes(ctx context.Context, userID uint) (int64, error) {
	var postIDs []uint
	if err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).
		Pluck("post_id", &postIDs).Error; err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Like{})
	if res.Error != nil {
		return 0, res.Error
	}
	for _, postID := range postIDs {
		cache.InvalidatePost(ctx, postID)
	}
	return res.RowsAffected, nil
}

func (s *AccountService) sweepComments(ctx context.Context, userID uint) (int64, error) {
	var postIDs []uint
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("user_id = ?", userID).
		Pluck("post_id", &postIDs).Error; err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Unscoped().Where("user_id = ?", userID).Delete(&models.Comment{})
	if res.Error != nil {
		return 0, res.Error
	}
	for _, postID := range postIDs {
		cache.InvalidatePost(ctx, postID)
	}
	return res.RowsAffected, nil
}

func (s *AccountService) release(ctx context.Context, objectID string) {
	if err := s.store.Delete(ctx, objectID); err != nil {
		observability.ObjectStoreReleases.WithLabelValues("error").Inc()
		middleware.Logger.WarnContext(ctx, "object release failed",
			"object_id", objectID, "error", err)
		return
	}
	observability.ObjectStoreReleases.WithLabelValues("ok").Inc()
}
