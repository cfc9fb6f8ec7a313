// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User roles. Admins may moderate any project or comment.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Theme modes persisted as user preferences.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// User represents a registered account. Users are never hard-deleted.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"not null;default:user" json:"role"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"`
	Major     string    `json:"major"`
	GradYear  int       `json:"grad_year,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Theme preferences survive across sessions; there is no other
	// cross-request UI state on the server.
	ThemeMode   string `gorm:"default:system" json:"theme_mode"`
	AccentColor string `json:"accent_color"`

	Projects []Project `gorm:"foreignKey:OwnerID" json:"projects,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
