package models

import (
	"time"
)

// NotificationType classifies a notification record.
type NotificationType string

// Notification types created as side effects of other mutations.
const (
	NotificationLike          NotificationType = "like"
	NotificationReply         NotificationType = "reply"
	NotificationComment       NotificationType = "comment"
	NotificationSubscription  NotificationType = "subscription"
	NotificationEventReminder NotificationType = "event_reminder"
)

// Notification is a typed event record addressed to one user. Notifications
// are only ever created by domain services, never directly by API callers.
type Notification struct {
	ID     uint             `gorm:"primaryKey" json:"id"`
	UserID uint             `gorm:"not null;index" json:"user_id"`
	Type   NotificationType `gorm:"type:varchar(32);not null" json:"type"`

	// ActorID is the user whose action produced the notification; nil for
	// system-generated records such as event reminders.
	ActorID *uint `gorm:"index" json:"actor_id,omitempty"`
	Actor   *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`

	Message   string `gorm:"type:text" json:"message"`
	ProjectID *uint  `json:"project_id,omitempty"`
	CommentID *uint  `json:"comment_id,omitempty"`
	EventID   *uint  `json:"event_id,omitempty"`

	Read      bool      `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
