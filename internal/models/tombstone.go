package models

import "time"

// DeletionTombstone marks a deleted user whose authored likes and comments on
// other users' posts have not been swept yet. The row is written in the same
// transaction that removes the user and cleared by the sweeper once the
// content store no longer references the user, so a crash between the two
// leaves a durable marker instead of permanently orphaned rows.
type DeletionTombstone struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Attempts  int       `gorm:"not null;default:0" json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (DeletionTombstone) TableName() string {
	return "deletion_tombstones"
}
