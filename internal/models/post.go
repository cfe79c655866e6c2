package models

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Caption       string `json:"caption"`
	ImageObjectID string `json:"-"`
	ImageURL      string `json:"image_url"`
	UserID        uint   `gorm:"not null;index" json:"user_id"`
	User          User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"-" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int            `gorm:"-" json:"comments_count"`
	Likes         []Like         `gorm:"foreignKey:PostID" json:"likes,omitempty"`
	Comments      []Comment      `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
