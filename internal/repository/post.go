package repository

import (
	"context"

	"mosaic/internal/cache"
	"mosaic/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, post *models.Post) error
	AddLike(ctx context.Context, userID, postID uint) (bool, error)
	RemoveLike(ctx context.Context, userID, postID uint) (bool, error)
	AddComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, commentID uint) (*models.Comment, error)
	DeleteComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error)
	ImageObjectIDsByOwner(ctx context.Context, userID uint) ([]string, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// GetByID serves reads through the cache. The cached copy carries the
// computed counts so a hit skips the count queries entirely.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return r.fillCounts(ctx, &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) fillCounts(ctx context.Context, post *models.Post) error {
	var likes, comments int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ?", post.ID).Count(&likes).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ?", post.ID).Count(&comments).Error; err != nil {
		return models.NewInternalError(err)
	}
	post.LikesCount = int(likes)
	post.CommentsCount = int(comments)
	return nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range posts {
		if err := r.fillCounts(ctx, &posts[i]); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range posts {
		if err := r.fillCounts(ctx, &posts[i]); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the post and its likes and comments in one transaction.
func (r *postRepository) Delete(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(post).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// AddLike reports false when the like already existed. The unique index on
// (user_id, post_id) makes double-liking under concurrency a no-op.
func (r *postRepository) AddLike(ctx context.Context, userID, postID uint) (bool, error) {
	like := models.Like{UserID: userID, PostID: postID}
	if err := r.db.WithContext(ctx).Create(&like).Error; err != nil {
		if isUniqueConstraintError(err) {
			return false, nil
		}
		return false, models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return true, nil
}

func (r *postRepository) RemoveLike(ctx context.Context, userID, postID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidatePost(ctx, postID)
		return true, nil
	}
	return false, nil
}

func (r *postRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

func (r *postRepository) GetComment(ctx context.Context, commentID uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, commentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("Comment", commentID)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *postRepository) DeleteComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Unscoped().Delete(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

// ListComments returns comments oldest first; insertion order is the
// autoincrement id.
func (r *postRepository) ListComments(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *postRepository) ImageObjectIDsByOwner(ctx context.Context, userID uint) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("user_id = ? AND image_object_id <> ''", userID).
		Pluck("image_object_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
