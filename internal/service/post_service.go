package service

import (
	"context"
	"strings"

	"mosaic/internal/middleware"
	"mosaic/internal/models"
	"mosaic/internal/repository"
	"mosaic/internal/storage"
)

// PostService handles posts, likes and comments.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	store    storage.ObjectStore
}

// NewPostService creates a new post service
func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, store storage.ObjectStore) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo, store: store}
}

// CreatePost uploads the image and stores the post.
func (s *PostService) CreatePost(ctx context.Context, userID uint, caption string, image []byte) (*models.Post, error) {
	caption = strings.TrimSpace(caption)
	if len(caption) > 2000 {
		return nil, models.NewValidationError("Caption must be at most 2000 characters")
	}
	if len(image) == 0 {
		return nil, models.NewValidationError("Image is required")
	}

	obj, err := s.store.Upload(ctx, image, "posts")
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Caption:       caption,
		ImageObjectID: obj.ID,
		ImageURL:      obj.URL,
		UserID:        userID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		// The row never landed, so the uploaded object is already orphaned.
		if delErr := s.store.Delete(ctx, obj.ID); delErr != nil {
			middleware.Logger.WarnContext(ctx, "orphaned upload cleanup failed",
				"object_id", obj.ID, "error", delErr)
		}
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "post created", "post_id", post.ID, "user_id", userID)
	return post, nil
}

// GetPost returns a post with its author and counts.
func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

// ListPosts returns the newest posts first.
func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.postRepo.List(ctx, limit, offset)
}

// ListUserPosts returns a user's posts, newest first.
func (s *PostService) ListUserPosts(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.postRepo.ListByUser(ctx, userID, limit, offset)
}

// DeletePost removes a post and its image. Only the author may delete.
func (s *PostService) DeletePost(ctx context.Context, actorID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, post); err != nil {
		return err
	}
	if post.ImageObjectID != "" {
		if err := s.store.Delete(ctx, post.ImageObjectID); err != nil {
			middleware.Logger.WarnContext(ctx, "post image release failed",
				"post_id", postID, "object_id", post.ImageObjectID, "error", err)
		}
	}
	middleware.Logger.InfoContext(ctx, "post deleted", "post_id", postID, "user_id", actorID)
	return nil
}

// ToggleLike flips the actor's like on a post and reports the resulting
// state (true = liked).
func (s *PostService) ToggleLike(ctx context.Context, actorID, postID uint) (bool, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return false, err
	}

	removed, err := s.postRepo.RemoveLike(ctx, actorID, postID)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}
	if _, err := s.postRepo.AddLike(ctx, actorID, postID); err != nil {
		return false, err
	}
	return true, nil
}

// AddComment attaches a comment to a post.
func (s *PostService) AddComment(ctx context.Context, actorID, postID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Comment cannot be empty")
	}
	if len(content) > 1000 {
		return nil, models.NewValidationError("Comment must be at most 1000 characters")
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: content,
		UserID:  actorID,
		PostID:  postID,
	}
	if err := s.postRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment. The comment's author and the post's
// author may both delete it.
func (s *PostService) DeleteComment(ctx context.Context, actorID, commentID uint) error {
	comment, err := s.postRepo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actorID {
		post, err := s.postRepo.GetByID(ctx, comment.PostID)
		if err != nil {
			return err
		}
		if post.UserID != actorID {
			return models.NewUnauthorizedError("You can only delete your own comments")
		}
	}
	return s.postRepo.DeleteComment(ctx, comment)
}

// ListComments returns a post's comments in insertion order.
func (s *PostService) ListComments(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.postRepo.ListComments(ctx, postID, limit, offset)
}
