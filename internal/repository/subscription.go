package repository

import (
	"context"

	"shipits/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository defines persistence operations for project subscriptions.
type SubscriptionRepository interface {
	// Upsert activates the (user, project) subscription, creating it if
	// absent. Subscribing twice leaves exactly one active record.
	Upsert(ctx context.Context, userID, projectID uint) (*models.Subscription, error)
	Deactivate(ctx context.Context, userID, projectID uint) error
	Get(ctx context.Context, userID, projectID uint) (*models.Subscription, error)
	ListActiveByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Subscription, error)
	ActiveSubscriberIDs(ctx context.Context, projectID uint) ([]uint, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository returns a new SubscriptionRepository implementation.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Upsert(ctx context.Context, userID, projectID uint) (*models.Subscription, error) {
	sub := models.Subscription{
		UserID:    userID,
		ProjectID: projectID,
		IsActive:  true,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "project_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"is_active": true}),
	}).Create(&sub).Error
	if err != nil {
		return nil, err
	}

	// Re-read so callers get the canonical row (the upsert path does not
	// populate ID on conflict with every driver).
	var out models.Subscription
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *subscriptionRepository) Deactivate(ctx context.Context, userID, projectID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Update("is_active", false).Error
}

func (r *subscriptionRepository) Get(ctx context.Context, userID, projectID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) ListActiveByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Subscription, error) {
	var subs []*models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Project.Owner").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) ActiveSubscriberIDs(ctx context.Context, projectID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("project_id = ? AND is_active = ?", projectID, true).
		Pluck("user_id", &ids).Error
	return ids, err
}
