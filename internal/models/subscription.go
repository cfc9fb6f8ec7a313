package models

import (
	"time"
)

// Subscription links a user to a project for comment/update notifications.
// The (user, project) pair is unique: subscribing twice leaves exactly one
// active record, and unsubscribing flips IsActive rather than deleting.
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_project_sub" json:"user_id"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_user_project_sub;index" json:"project_id"`
	Project   Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
