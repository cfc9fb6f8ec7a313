package models

import (
	"time"
)

// ThreadSummary caches the AI-generated summary of a project's comment
// thread. The cached text is served until at least three new comments arrive
// or 24 hours elapse, whichever comes first.
type ThreadSummary struct {
	ID        uint `gorm:"primaryKey" json:"-"`
	ProjectID uint `gorm:"uniqueIndex;not null" json:"project_id"`

	Summary    string `gorm:"type:text" json:"summary"`
	HasSummary bool   `gorm:"default:false" json:"has_summary"`

	// CommentCount is the number of non-deleted comments at generation time.
	CommentCount int64     `json:"comment_count"`
	LastUpdated  time.Time `json:"last_updated"`
}

// Staleness thresholds for cached thread summaries.
const (
	SummaryStaleAfter       = 24 * time.Hour
	SummaryStaleNewComments = 3
)

// Stale reports whether the cached summary must be regenerated given the
// current non-deleted comment count.
func (s *ThreadSummary) Stale(now time.Time, currentComments int64) bool {
	if !s.HasSummary {
		return true
	}
	if currentComments-s.CommentCount >= SummaryStaleNewComments {
		return true
	}
	return now.Sub(s.LastUpdated) >= SummaryStaleAfter
}
