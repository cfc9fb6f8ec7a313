package service

import (
	"context"
	"log/slog"

	"shipits/internal/middleware"
	"shipits/internal/observability"
	"shipits/internal/repository"
)

// AnalyticsService records engagement events. Recording is fire-and-forget:
// failures are logged and counted but never surfaced, so a broken analytics
// store can never break a page view.
type AnalyticsService struct {
	projectRepo repository.ProjectRepository
}

func NewAnalyticsService(projectRepo repository.ProjectRepository) *AnalyticsService {
	return &AnalyticsService{projectRepo: projectRepo}
}

// RecordView notes one view of a project. ViewerID is nil for anonymous
// visitors.
func (s *AnalyticsService) RecordView(ctx context.Context, projectID uint, viewerID *uint) {
	if err := s.projectRepo.RecordView(ctx, projectID, viewerID); err != nil {
		s.drop(ctx, "view", projectID, err)
	}
}

// RecordShare notes one share of a project. Platform is the client-reported
// destination ("twitter", "linkedin", ...); empty means unknown.
func (s *AnalyticsService) RecordShare(ctx context.Context, projectID uint, platform string) {
	if platform == "" {
		platform = "unknown"
	}
	if err := s.projectRepo.RecordShare(ctx, projectID); err != nil {
		s.drop(ctx, "share", projectID, err)
		return
	}
	observability.SharesRecorded.WithLabelValues(platform).Inc()
}

func (s *AnalyticsService) drop(ctx context.Context, kind string, projectID uint, err error) {
	observability.AnalyticsDropped.WithLabelValues(kind).Inc()
	middleware.Logger.WarnContext(ctx, "analytics recording dropped",
		slog.String("kind", kind),
		slog.Uint64("project_id", uint64(projectID)),
		slog.String("error", err.Error()),
	)
}
