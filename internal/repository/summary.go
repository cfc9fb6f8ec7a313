package repository

import (
	"context"
	"errors"

	"shipits/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SummaryRepository stores cached AI thread summaries, one per project.
type SummaryRepository interface {
	// GetByProject returns (nil, nil) when no summary has been generated.
	GetByProject(ctx context.Context, projectID uint) (*models.ThreadSummary, error)
	Upsert(ctx context.Context, summary *models.ThreadSummary) error
}

type summaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository returns a new SummaryRepository implementation.
func NewSummaryRepository(db *gorm.DB) SummaryRepository {
	return &summaryRepository{db: db}
}

func (r *summaryRepository) GetByProject(ctx context.Context, projectID uint) (*models.ThreadSummary, error) {
	var summary models.ThreadSummary
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &summary, nil
}

func (r *summaryRepository) Upsert(ctx context.Context, summary *models.ThreadSummary) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "project_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"summary", "has_summary", "comment_count", "last_updated",
		}),
	}).Create(summary).Error
}
