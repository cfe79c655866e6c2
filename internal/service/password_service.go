package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"mosaic/internal/mail"
	"mosaic/internal/middleware"
	"mosaic/internal/models"
	"mosaic/internal/repository"
	"mosaic/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = 10 * time.Minute

// PasswordService handles password changes and the reset-token lifecycle.
type PasswordService struct {
	userRepo repository.UserRepository
	mailer   mail.Mailer
	baseURL  string
	now      func() time.Time
}

// NewPasswordService creates a new password service
func NewPasswordService(userRepo repository.UserRepository, mailer mail.Mailer, baseURL string) *PasswordService {
	return &PasswordService{
		userRepo: userRepo,
		mailer:   mailer,
		baseURL:  baseURL,
		now:      time.Now,
	}
}

// RequestReset issues a reset token for the account behind email and mails
// the plaintext token. Only the sha256 digest is stored; the plaintext never
// touches the database or the logs. Issuing a new token replaces any
// previous one.
func (s *PasswordService) RequestReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("User", email)
	}

	token, hash, err := generateResetToken()
	if err != nil {
		return models.NewInternalError(err)
	}

	expire := s.now().Add(ResetTokenTTL)
	user.ResetPasswordToken = hash
	user.ResetPasswordExpire = &expire
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/password/reset/%s", s.baseURL, token)
	body := fmt.Sprintf("You requested a password reset.\n\nReset your password here: %s\n\nThis link expires in %d minutes. If you did not request this, ignore this email.",
		resetURL, int(ResetTokenTTL.Minutes()))
	if err := s.mailer.Send(ctx, user.Email, "Password reset request", body); err != nil {
		// The stored hash is useless without the mail, so roll it back
		// rather than leave a live token nobody received.
		user.ClearResetToken()
		if clearErr := s.userRepo.Update(ctx, user); clearErr != nil {
			middleware.Logger.ErrorContext(ctx, "reset token rollback failed",
				"user_id", user.ID, "error", clearErr)
		}
		middleware.Logger.ErrorContext(ctx, "reset mail failed", "user_id", user.ID, "error", err)
		return models.NewExternalError("mail", err)
	}

	middleware.Logger.InfoContext(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

// ConsumeReset redeems a plaintext reset token and sets the new password.
// A token can be consumed once: the stored hash is cleared in the same
// update that writes the password.
func (s *PasswordService) ConsumeReset(ctx context.Context, token, newPassword string) (*models.User, error) {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash := hashResetToken(token)
	user, err := s.userRepo.GetByResetTokenHash(ctx, hash, s.now())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewInvalidTokenError()
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user.Password = string(hashed)
	user.ClearResetToken()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "password reset completed", "user_id", user.ID)
	return user, nil
}

// UpdatePassword changes the password for an authenticated user after
// verifying the current one.
func (s *PasswordService) UpdatePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return models.NewUnauthorizedError("Current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hashed)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "password updated", "user_id", userID)
	return nil
}

// generateResetToken returns the plaintext token and its stored sha256 hex
// digest.
func generateResetToken() (token string, hash string, err error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(buf)
	return token, hashResetToken(token), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
