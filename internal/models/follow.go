// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Follow represents a directed follow edge: FollowerID follows FollowingID.
//
// One row carries both sides of the relationship. "A's following" is the set
// of rows with follower_id = A, "B's followers" the set with following_id = B,
// so the two views can never disagree the way a pair of embedded id lists can.
// The unique index serializes concurrent toggles of the same pair: the losing
// insert fails with a unique violation instead of producing a duplicate edge.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;index;uniqueIndex:idx_follower_following" json:"follower_id"`
	FollowingID uint      `gorm:"not null;index;uniqueIndex:idx_follower_following" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// BeforeCreate rejects self-edges at the lowest layer; services validate this
// too, but a Follow row with follower == following must never exist.
func (f *Follow) BeforeCreate(_ *gorm.DB) error {
	if f.FollowerID == f.FollowingID {
		return NewValidationError("Cannot follow yourself")
	}
	return nil
}
