package service

import (
	"context"
	"strings"

	"mosaic/internal/middleware"
	"mosaic/internal/models"
	"mosaic/internal/repository"
	"mosaic/internal/storage"
	"mosaic/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles signup, login and profile management.
type UserService struct {
	userRepo repository.UserRepository
	store    storage.ObjectStore
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, store storage.ObjectStore) *UserService {
	return &UserService{userRepo: userRepo, store: store}
}

// Register validates credentials, hashes the password and creates the user.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", username)
	return user, nil
}

// Authenticate checks the email/password pair. Both unknown email and wrong
// password return the same unauthorized error, so callers cannot probe for
// registered addresses.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// GetProfile returns the user with their recent posts.
func (s *UserService) GetProfile(ctx context.Context, userID uint, postLimit int) (*models.User, error) {
	return s.userRepo.GetByIDWithPosts(ctx, userID, postLimit)
}

// ProfileUpdate carries the mutable profile fields. Nil pointers leave the
// field unchanged.
type ProfileUpdate struct {
	Username *string
	Bio      *string
	Avatar   []byte
}

// UpdateProfile applies a partial update to the user's profile. A new avatar
// replaces the old one in the object store.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = username
	}
	if update.Bio != nil {
		bio := strings.TrimSpace(*update.Bio)
		if len(bio) > 500 {
			return nil, models.NewValidationError("Bio must be at most 500 characters")
		}
		user.Bio = bio
	}

	oldAvatar := ""
	if len(update.Avatar) > 0 {
		obj, err := s.store.Upload(ctx, update.Avatar, "avatars")
		if err != nil {
			return nil, err
		}
		oldAvatar = user.AvatarObjectID
		user.AvatarObjectID = obj.ID
		user.AvatarURL = obj.URL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if oldAvatar != "" {
		if err := s.store.Delete(ctx, oldAvatar); err != nil {
			middleware.Logger.WarnContext(ctx, "old avatar release failed",
				"user_id", userID, "object_id", oldAvatar, "error", err)
		}
	}
	return user, nil
}

// ListUsers returns a page of users.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}
