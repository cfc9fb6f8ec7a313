// Package reconcile recomputes denormalized project counters from their
// source rows and repairs any drift.
package reconcile

import (
	"context"
	"log/slog"

	"shipits/internal/middleware"
	"shipits/internal/models"
	"shipits/internal/observability"

	"gorm.io/gorm"
)

// Report summarizes one reconciliation run.
type Report struct {
	ProjectsChecked int
	CommentsFixed   int
	LikesFixed      int
}

// Run recounts comment and like totals for every project, fixing rows whose
// stored counters drifted from the aggregate. Running it twice in a row
// finds nothing to fix on the second pass.
func Run(ctx context.Context, db *gorm.DB) (*Report, error) {
	var projects []models.Project
	if err := db.WithContext(ctx).Where("is_deleted = ?", false).Find(&projects).Error; err != nil {
		return nil, err
	}

	report := &Report{ProjectsChecked: len(projects)}
	for i := range projects {
		project := &projects[i]

		var comments int64
		err := db.WithContext(ctx).Model(&models.Comment{}).
			Where("project_id = ? AND is_deleted = ?", project.ID, false).
			Count(&comments).Error
		if err != nil {
			return nil, err
		}

		var likes int64
		err = db.WithContext(ctx).Model(&models.ProjectLike{}).
			Where("project_id = ?", project.ID).
			Count(&likes).Error
		if err != nil {
			return nil, err
		}

		updates := map[string]any{}
		if comments != project.Analytics.TotalComments {
			observability.CounterDrift.WithLabelValues("total_comments").
				Observe(abs(comments - project.Analytics.TotalComments))
			updates["analytics_total_comments"] = comments
			report.CommentsFixed++
		}
		if likes != project.Analytics.Likes {
			observability.CounterDrift.WithLabelValues("likes").
				Observe(abs(likes - project.Analytics.Likes))
			updates["analytics_likes"] = likes
			report.LikesFixed++
		}
		if len(updates) == 0 {
			continue
		}

		err = db.WithContext(ctx).Model(&models.Project{}).
			Where("id = ?", project.ID).
			Updates(updates).Error
		if err != nil {
			return nil, err
		}

		middleware.Logger.WarnContext(ctx, "repaired drifted counters",
			slog.Uint64("project_id", uint64(project.ID)),
			slog.Int64("stored_comments", project.Analytics.TotalComments),
			slog.Int64("actual_comments", comments),
			slog.Int64("stored_likes", project.Analytics.Likes),
			slog.Int64("actual_likes", likes),
		)
	}

	return report, nil
}

func abs(n int64) float64 {
	if n < 0 {
		n = -n
	}
	return float64(n)
}
