package repository

import (
	"context"
	"errors"
	"time"

	"shipits/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository defines persistence operations for calendar events.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uint) (*models.Event, error)
	ListRange(ctx context.Context, from, to time.Time, categoryID *uint) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uint) error

	// ToggleRSVP flips the caller's attendance. Returns true when the user
	// is attending after the call.
	ToggleRSVP(ctx context.Context, userID, eventID uint) (bool, error)
	AttendeeIDs(ctx context.Context, eventID uint) ([]uint, error)

	// DueForReminder returns events starting within the horizon that have
	// not been reminded yet. MarkReminded stamps them so a rerun of the
	// pass skips them.
	DueForReminder(ctx context.Context, now time.Time, horizon time.Duration) ([]*models.Event, error)
	MarkReminded(ctx context.Context, eventID uint, at time.Time) error
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository returns a new EventRepository implementation.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

const attendeeCountSelect = "events.*, (SELECT COUNT(*) FROM event_rsvps WHERE event_rsvps.event_id = events.id) AS attendee_count"

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Creator").
		Select(attendeeCountSelect).
		First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Event", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &event, nil
}

func (r *eventRepository) ListRange(ctx context.Context, from, to time.Time, categoryID *uint) ([]*models.Event, error) {
	q := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Creator").
		Select(attendeeCountSelect).
		Where("starts_at >= ? AND starts_at < ?", from, to)
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}

	var events []*models.Event
	err := q.Order("starts_at ASC").Find(&events).Error
	return events, err
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.EventRSVP{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Event{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Event", id)
		}
		return nil
	})
}

func (r *eventRepository) ToggleRSVP(ctx context.Context, userID, eventID uint) (bool, error) {
	var attending bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND event_id = ?", userID, eventID).
			Delete(&models.EventRSVP{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		attending = true
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
			DoNothing: true,
		}).Create(&models.EventRSVP{UserID: userID, EventID: eventID}).Error
	})
	return attending, err
}

func (r *eventRepository) AttendeeIDs(ctx context.Context, eventID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.EventRSVP{}).
		Where("event_id = ?", eventID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *eventRepository) DueForReminder(ctx context.Context, now time.Time, horizon time.Duration) ([]*models.Event, error) {
	var events []*models.Event
	err := r.db.WithContext(ctx).
		Where("starts_at > ? AND starts_at <= ? AND reminded_at IS NULL", now, now.Add(horizon)).
		Order("starts_at ASC").
		Find(&events).Error
	return events, err
}

func (r *eventRepository) MarkReminded(ctx context.Context, eventID uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND reminded_at IS NULL", eventID).
		Update("reminded_at", at).Error
}
