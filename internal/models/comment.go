package models

import (
	"time"
)

// Reaction types accepted on comments.
const (
	ReactionLike      = "like"
	ReactionHeart     = "heart"
	ReactionRocket    = "rocket"
	ReactionCelebrate = "celebrate"
)

// Comment represents a comment on a project. Threading is one level deep via
// ParentCommentID. Soft-delete flags only this comment: replies stay
// addressable, and listings substitute a placeholder body for a deleted
// parent that still has visible children.
type Comment struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Content   string `gorm:"type:text;not null" json:"content"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	User      User   `gorm:"foreignKey:UserID" json:"user"`
	ProjectID uint   `gorm:"not null;index" json:"project_id"`

	ParentCommentID *uint `gorm:"index" json:"parent_comment_id,omitempty"`

	IsDeleted bool `gorm:"default:false;index" json:"is_deleted"`
	IsEdited  bool `gorm:"default:false" json:"is_edited"`

	Reactions []Reaction        `gorm:"foreignKey:CommentID" json:"reactions,omitempty"`
	Revisions []CommentRevision `gorm:"foreignKey:CommentID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reaction is one user's reaction on a comment. The (user, comment) pair is
// unique; reacting again with the same type removes it, a different type
// replaces it.
type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_reaction" json:"user_id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_reaction;index" json:"comment_id"`
	Type      string    `gorm:"not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidReactionType reports whether t is an accepted reaction type.
func ValidReactionType(t string) bool {
	switch t {
	case ReactionLike, ReactionHeart, ReactionRocket, ReactionCelebrate:
		return true
	}
	return false
}

// CommentRevision preserves the previous body of an edited comment.
type CommentRevision struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;index" json:"comment_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	EditedAt  time.Time `json:"edited_at"`
}

// DeletedCommentPlaceholder is the body shown for a soft-deleted parent whose
// replies are still visible.
const DeletedCommentPlaceholder = "[deleted]"
