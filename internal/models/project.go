package models

import (
	"time"
)

// Project lifecycle statuses.
const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusArchived  = "archived"
)

// Analytics holds the denormalized engagement counters embedded on a project.
// TotalComments must equal the count of non-deleted comments for the project
// after any comment create/delete completes; cmd/reconcile recomputes it
// by aggregation when the counter drifts.
type Analytics struct {
	Views         int64 `gorm:"default:0" json:"views"`
	Likes         int64 `gorm:"default:0" json:"likes"`
	TotalComments int64 `gorm:"default:0" json:"total_comments"`
	Shares        int64 `gorm:"default:0" json:"shares"`
}

// Project represents a published project showcase. Projects are soft-deleted
// via IsDeleted and never purged.
type Project struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	MediaURL    string `json:"media_url"`
	DemoURL     string `json:"demo_url"`
	RepoURL     string `json:"repo_url"`

	FundingGoal   int64 `json:"funding_goal"`
	FundingRaised int64 `json:"funding_raised"`

	Status    string `gorm:"not null;default:active;index" json:"status"`
	Featured  bool   `gorm:"default:false;index" json:"featured"`
	IsDeleted bool   `gorm:"default:false;index" json:"is_deleted"`

	OwnerID    uint      `gorm:"not null;index" json:"owner_id"`
	Owner      User      `gorm:"foreignKey:OwnerID" json:"owner"`
	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Analytics Analytics `gorm:"embedded;embeddedPrefix:analytics_" json:"analytics"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectLike is one user's like on a project. The (user, project) pair is
// unique; like/unlike maintain Analytics.Likes on the parent.
type ProjectLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_project_like" json:"user_id"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_project_like;index" json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectView is a single recorded view event. Rows in a trailing 7-day
// window drive the trending query; the lifetime total lives on Analytics.
type ProjectView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index" json:"project_id"`
	ViewerID  *uint     `json:"viewer_id,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// Category is a named grouping for projects and events.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
