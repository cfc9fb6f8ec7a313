package models

import (
	"time"
)

// Event is a community calendar entry.
type Event struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `json:"location"`

	StartsAt time.Time `gorm:"not null;index" json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`

	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	CreatorID uint `gorm:"not null;index" json:"creator_id"`
	Creator   User `gorm:"foreignKey:CreatorID" json:"creator"`

	// RemindedAt is stamped once the reminder fan-out for this event has
	// run, so the scheduler pass is idempotent.
	RemindedAt *time.Time `json:"-"`

	// AttendeeCount is not persisted; computed at query time.
	AttendeeCount int `gorm:"->" json:"attendee_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventRSVP marks a user as attending an event. The (user, event) pair is
// unique; RSVP is an idempotent toggle.
type EventRSVP struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_event_rsvp" json:"user_id"`
	EventID   uint      `gorm:"not null;uniqueIndex:idx_event_rsvp;index" json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}
