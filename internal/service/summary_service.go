package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shipits/internal/models"
	"shipits/internal/observability"
	"shipits/internal/repository"
	"shipits/internal/summary"
)

// Summarizer is the external provider surface; *summary.Client satisfies it.
type Summarizer interface {
	Configured() bool
	Summarize(ctx context.Context, thread string) (string, error)
}

// SummaryService serves AI summaries of a project's comment thread, caching
// the generated text until it goes stale (enough new comments or enough time).
type SummaryService struct {
	summaryRepo repository.SummaryRepository
	commentRepo repository.CommentRepository
	projectRepo repository.ProjectRepository
	provider    Summarizer
	now         func() time.Time
}

// SummaryResult is what the API returns for a summary request.
type SummaryResult struct {
	ProjectID    uint      `json:"project_id"`
	Summary      string    `json:"summary"`
	HasSummary   bool      `json:"has_summary"`
	Enabled      bool      `json:"enabled"`
	CommentCount int64     `json:"comment_count"`
	GeneratedAt  time.Time `json:"generated_at,omitempty"`
}

func NewSummaryService(
	summaryRepo repository.SummaryRepository,
	commentRepo repository.CommentRepository,
	projectRepo repository.ProjectRepository,
	provider Summarizer,
) *SummaryService {
	return &SummaryService{
		summaryRepo: summaryRepo,
		commentRepo: commentRepo,
		projectRepo: projectRepo,
		provider:    provider,
		now:         time.Now,
	}
}

// GetThreadSummary returns the cached summary when fresh, regenerating it
// otherwise. An unconfigured provider disables the feature without error; a
// configured provider failing is surfaced as a retryable upstream error.
func (s *SummaryService) GetThreadSummary(ctx context.Context, projectID uint) (*SummaryResult, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if !s.provider.Configured() {
		observability.SummaryRequests.WithLabelValues("disabled").Inc()
		return &SummaryResult{ProjectID: projectID, Enabled: false}, nil
	}

	count, err := s.projectRepo.CountComments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		observability.SummaryRequests.WithLabelValues("empty").Inc()
		return &SummaryResult{ProjectID: projectID, Enabled: true, CommentCount: 0}, nil
	}

	cached, err := s.summaryRepo.GetByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if cached != nil && !cached.Stale(s.now(), count) {
		observability.SummaryRequests.WithLabelValues("cached").Inc()
		return &SummaryResult{
			ProjectID:    projectID,
			Summary:      cached.Summary,
			HasSummary:   true,
			Enabled:      true,
			CommentCount: cached.CommentCount,
			GeneratedAt:  cached.LastUpdated,
		}, nil
	}

	text, err := s.regenerate(ctx, project, count)
	if err != nil {
		if errors.Is(err, summary.ErrNotConfigured) {
			observability.SummaryRequests.WithLabelValues("disabled").Inc()
			return &SummaryResult{ProjectID: projectID, Enabled: false}, nil
		}
		observability.SummaryRequests.WithLabelValues("failed").Inc()
		return nil, models.NewUpstreamError("Summary generation failed", err)
	}

	observability.SummaryRequests.WithLabelValues("regenerated").Inc()
	generatedAt := s.now()
	return &SummaryResult{
		ProjectID:    projectID,
		Summary:      text,
		HasSummary:   true,
		Enabled:      true,
		CommentCount: count,
		GeneratedAt:  generatedAt,
	}, nil
}

func (s *SummaryService) regenerate(ctx context.Context, project *models.Project, count int64) (string, error) {
	comments, err := s.commentRepo.ListByProject(ctx, project.ID, false)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n\n", project.Title)
	for _, c := range comments {
		if c.IsDeleted {
			continue
		}
		fmt.Fprintf(&b, "- %s\n", c.Content)
	}

	text, err := s.provider.Summarize(ctx, b.String())
	if err != nil {
		return "", err
	}

	if err := s.summaryRepo.Upsert(ctx, &models.ThreadSummary{
		ProjectID:    project.ID,
		Summary:      text,
		HasSummary:   true,
		CommentCount: count,
		LastUpdated:  s.now(),
	}); err != nil {
		return "", err
	}
	return text, nil
}
