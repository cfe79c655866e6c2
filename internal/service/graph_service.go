package service

import (
	"context"

	"mosaic/internal/middleware"
	"mosaic/internal/models"
	"mosaic/internal/observability"
	"mosaic/internal/repository"
)

// GraphService manages the follow graph between users.
type GraphService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// NewGraphService creates a new graph service
func NewGraphService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *GraphService {
	return &GraphService{userRepo: userRepo, followRepo: followRepo}
}

// ToggleFollow flips the actor->target follow edge and reports the resulting
// state. Following and unfollowing are the same operation applied to
// opposite starting states, so a double toggle always restores the original
// graph.
func (s *GraphService) ToggleFollow(ctx context.Context, actorID, targetID uint) (bool, error) {
	if actorID == targetID {
		return false, models.NewValidationError("Cannot follow yourself")
	}

	// Both endpoints must exist. The actor check matters after account
	// deletion: a stale session must not re-create edges pointing at the
	// removed user.
	if _, err := s.userRepo.GetByID(ctx, actorID); err != nil {
		return false, err
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return false, err
	}

	followed, err := s.followRepo.Toggle(ctx, actorID, targetID)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "follow toggle failed",
			"actor_id", actorID, "target_id", targetID, "error", err)
		return false, err
	}

	outcome := "unfollowed"
	if followed {
		outcome = "followed"
	}
	observability.FollowToggles.WithLabelValues(outcome).Inc()
	middleware.Logger.InfoContext(ctx, "follow toggled",
		"actor_id", actorID, "target_id", targetID, "outcome", outcome)
	return followed, nil
}

// Followers lists the users following userID.
func (s *GraphService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Followers(ctx, userID)
}

// Following lists the users userID follows.
func (s *GraphService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Following(ctx, userID)
}

// IsFollowing reports whether the actor currently follows the target.
func (s *GraphService) IsFollowing(ctx context.Context, actorID, targetID uint) (bool, error) {
	return s.followRepo.EdgeExists(ctx, actorID, targetID)
}
