// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account in the Mosaic application.
//
// The follow graph is not embedded here: follower/following views are derived
// from Follow rows so both directions of an edge always come from the same
// record.
type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Username       string `gorm:"unique;not null" json:"username"`
	Email          string `gorm:"unique;not null" json:"email"`
	Password       string `gorm:"not null" json:"-"`
	Bio            string `json:"bio"`
	AvatarObjectID string `json:"-"`
	AvatarURL      string `json:"avatar_url"`

	// ResetPasswordToken holds the sha256 hex digest of an outstanding reset
	// token. Both fields are set together and cleared together.
	ResetPasswordToken  string     `gorm:"index" json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// HasPendingReset reports whether an unexpired reset token is outstanding.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetPasswordToken != "" &&
		u.ResetPasswordExpire != nil &&
		u.ResetPasswordExpire.After(now)
}

// ClearResetToken resets the token state back to none.
func (u *User) ClearResetToken() {
	u.ResetPasswordToken = ""
	u.ResetPasswordExpire = nil
}
