package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shipits/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// summarizerStub is a stub for the Summarizer provider surface.
type summarizerStub struct {
	configured  bool
	summarizeFn func(context.Context, string) (string, error)
	calls       int
}

func (s *summarizerStub) Configured() bool { return s.configured }
func (s *summarizerStub) Summarize(ctx context.Context, thread string) (string, error) {
	s.calls++
	return s.summarizeFn(ctx, thread)
}

func newSummaryService(summaryRepo *summaryRepoStub, projectRepo *projectRepoStub, provider *summarizerStub) *SummaryService {
	if summaryRepo == nil {
		summaryRepo = noopSummaryRepo()
	}
	if projectRepo == nil {
		projectRepo = noopProjectRepo()
	}
	return NewSummaryService(summaryRepo, noopCommentRepo(), projectRepo, provider)
}

func TestSummaryService_Disabled(t *testing.T) {
	t.Parallel()

	provider := &summarizerStub{configured: false}
	svc := newSummaryService(nil, nil, provider)

	res, err := svc.GetThreadSummary(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, res.Enabled)
	assert.False(t, res.HasSummary)
	assert.Zero(t, provider.calls)
}

func TestSummaryService_EmptyThread(t *testing.T) {
	t.Parallel()

	provider := &summarizerStub{configured: true}
	svc := newSummaryService(nil, nil, provider)

	res, err := svc.GetThreadSummary(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, res.Enabled)
	assert.False(t, res.HasSummary)
	assert.Zero(t, provider.calls)
}

func TestSummaryService_ServesFreshCache(t *testing.T) {
	t.Parallel()

	projectRepo := noopProjectRepo()
	projectRepo.countCommentsFn = func(_ context.Context, _ uint) (int64, error) { return 5, nil }

	summaryRepo := noopSummaryRepo()
	summaryRepo.getByProjectFn = func(_ context.Context, projectID uint) (*models.ThreadSummary, error) {
		return &models.ThreadSummary{
			ProjectID:    projectID,
			Summary:      "cached summary",
			HasSummary:   true,
			CommentCount: 4,
			LastUpdated:  time.Now().Add(-time.Hour),
		}, nil
	}

	provider := &summarizerStub{configured: true, summarizeFn: func(_ context.Context, _ string) (string, error) {
		return "fresh summary", nil
	}}
	svc := newSummaryService(summaryRepo, projectRepo, provider)

	res, err := svc.GetThreadSummary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "cached summary", res.Summary)
	assert.Zero(t, provider.calls, "fresh cache must not hit the provider")
}

func TestSummaryService_RegeneratesWhenStale(t *testing.T) {
	t.Parallel()

	t.Run("enough new comments", func(t *testing.T) {
		t.Parallel()
		projectRepo := noopProjectRepo()
		projectRepo.countCommentsFn = func(_ context.Context, _ uint) (int64, error) { return 7, nil }

		var upserted *models.ThreadSummary
		summaryRepo := noopSummaryRepo()
		summaryRepo.getByProjectFn = func(_ context.Context, projectID uint) (*models.ThreadSummary, error) {
			return &models.ThreadSummary{
				ProjectID:    projectID,
				Summary:      "old",
				HasSummary:   true,
				CommentCount: 4,
				LastUpdated:  time.Now().Add(-time.Hour),
			}, nil
		}
		summaryRepo.upsertFn = func(_ context.Context, s *models.ThreadSummary) error {
			upserted = s
			return nil
		}

		provider := &summarizerStub{configured: true, summarizeFn: func(_ context.Context, _ string) (string, error) {
			return "regenerated", nil
		}}
		svc := newSummaryService(summaryRepo, projectRepo, provider)

		res, err := svc.GetThreadSummary(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "regenerated", res.Summary)
		assert.Equal(t, 1, provider.calls)
		require.NotNil(t, upserted)
		assert.EqualValues(t, 7, upserted.CommentCount)
	})

	t.Run("cache older than a day", func(t *testing.T) {
		t.Parallel()
		projectRepo := noopProjectRepo()
		projectRepo.countCommentsFn = func(_ context.Context, _ uint) (int64, error) { return 4, nil }

		summaryRepo := noopSummaryRepo()
		summaryRepo.getByProjectFn = func(_ context.Context, projectID uint) (*models.ThreadSummary, error) {
			return &models.ThreadSummary{
				ProjectID:    projectID,
				Summary:      "old",
				HasSummary:   true,
				CommentCount: 4,
				LastUpdated:  time.Now().Add(-25 * time.Hour),
			}, nil
		}

		provider := &summarizerStub{configured: true, summarizeFn: func(_ context.Context, _ string) (string, error) {
			return "regenerated", nil
		}}
		svc := newSummaryService(summaryRepo, projectRepo, provider)

		res, err := svc.GetThreadSummary(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "regenerated", res.Summary)
	})
}

func TestSummaryService_ProviderFailureIsRetryable(t *testing.T) {
	t.Parallel()

	projectRepo := noopProjectRepo()
	projectRepo.countCommentsFn = func(_ context.Context, _ uint) (int64, error) { return 3, nil }

	provider := &summarizerStub{configured: true, summarizeFn: func(_ context.Context, _ string) (string, error) {
		return "", errors.New("provider exploded")
	}}
	svc := newSummaryService(nil, projectRepo, provider)

	_, err := svc.GetThreadSummary(context.Background(), 1)
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "UPSTREAM_ERROR", appErr.Code)
	assert.True(t, appErr.Retryable)
}
