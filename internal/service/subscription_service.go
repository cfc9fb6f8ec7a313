package service

import (
	"context"

	"shipits/internal/models"
	"shipits/internal/repository"
)

type SubscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	projectRepo      repository.ProjectRepository
	notifier         *NotificationService
}

func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	projectRepo repository.ProjectRepository,
	notifier *NotificationService,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		projectRepo:      projectRepo,
		notifier:         notifier,
	}
}

// Subscribe is idempotent; only a fresh (or reactivated) subscription
// notifies the project owner.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, projectID uint) (*models.Subscription, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	existing, _ := s.subscriptionRepo.Get(ctx, userID, projectID)
	alreadyActive := existing != nil && existing.IsActive

	sub, err := s.subscriptionRepo.Upsert(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	if !alreadyActive {
		s.notifier.NotifySubscribed(ctx, project, userID)
	}
	return sub, nil
}

// Unsubscribe deactivates rather than deletes, preserving history. It is
// idempotent: unsubscribing when not subscribed succeeds.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, projectID uint) error {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return err
	}
	return s.subscriptionRepo.Deactivate(ctx, userID, projectID)
}

func (s *SubscriptionService) IsSubscribed(ctx context.Context, userID, projectID uint) (bool, error) {
	sub, err := s.subscriptionRepo.Get(ctx, userID, projectID)
	if err != nil {
		// Missing row means not subscribed.
		return false, nil
	}
	return sub.IsActive, nil
}

func (s *SubscriptionService) ListSubscriptions(ctx context.Context, userID uint, limit, offset int) ([]*models.Subscription, error) {
	return s.subscriptionRepo.ListActiveByUser(ctx, userID, limit, offset)
}
