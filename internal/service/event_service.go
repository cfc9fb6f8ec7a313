package service

import (
	"context"
	"time"

	"shipits/internal/models"
	"shipits/internal/repository"
)

type EventService struct {
	eventRepo    repository.EventRepository
	categoryRepo repository.CategoryRepository
	isAdmin      func(ctx context.Context, userID uint) (bool, error)
}

type CreateEventInput struct {
	CreatorID   uint
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	CategoryID  *uint
}

type UpdateEventInput struct {
	UserID      uint
	EventID     uint
	Title       string
	Description string
	Location    string
	StartsAt    *time.Time
	EndsAt      *time.Time
	CategoryID  *uint
}

func NewEventService(
	eventRepo repository.EventRepository,
	categoryRepo repository.CategoryRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *EventService {
	return &EventService{
		eventRepo:    eventRepo,
		categoryRepo: categoryRepo,
		isAdmin:      isAdmin,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.StartsAt.IsZero() {
		return nil, models.NewValidationError("Start time is required")
	}
	if !in.EndsAt.IsZero() && in.EndsAt.Before(in.StartsAt) {
		return nil, models.NewValidationError("End time cannot precede start time")
	}
	if in.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	event := &models.Event{
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		CategoryID:  in.CategoryID,
		CreatorID:   in.CreatorID,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return s.eventRepo.GetByID(ctx, event.ID)
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

// ListEvents returns events in [from, to), optionally filtered by category.
// The default window is the next 30 days.
func (s *EventService) ListEvents(ctx context.Context, from, to time.Time, categoryID *uint) ([]*models.Event, error) {
	if from.IsZero() {
		from = time.Now()
	}
	if to.IsZero() {
		to = from.Add(30 * 24 * time.Hour)
	}
	if to.Before(from) {
		return nil, models.NewValidationError("Range end cannot precede range start")
	}
	return s.eventRepo.ListRange(ctx, from, to, categoryID)
}

func (s *EventService) UpdateEvent(ctx context.Context, in UpdateEventInput) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, in.UserID, event.CreatorID, "You can only update your own events"); err != nil {
		return nil, err
	}

	if in.Title != "" {
		event.Title = in.Title
	}
	if in.Description != "" {
		event.Description = in.Description
	}
	if in.Location != "" {
		event.Location = in.Location
	}
	if in.StartsAt != nil {
		event.StartsAt = *in.StartsAt
		// A rescheduled event earns a fresh reminder.
		event.RemindedAt = nil
	}
	if in.EndsAt != nil {
		event.EndsAt = *in.EndsAt
	}
	if !event.EndsAt.IsZero() && event.EndsAt.Before(event.StartsAt) {
		return nil, models.NewValidationError("End time cannot precede start time")
	}
	if in.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		event.CategoryID = in.CategoryID
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return s.eventRepo.GetByID(ctx, event.ID)
}

func (s *EventService) DeleteEvent(ctx context.Context, userID, eventID uint) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, userID, event.CreatorID, "You can only delete your own events"); err != nil {
		return err
	}
	return s.eventRepo.Delete(ctx, eventID)
}

// ToggleRSVP flips attendance; returns the refreshed event and whether the
// caller is attending after the call.
func (s *EventService) ToggleRSVP(ctx context.Context, userID, eventID uint) (*models.Event, bool, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, false, err
	}
	attending, err := s.eventRepo.ToggleRSVP(ctx, userID, eventID)
	if err != nil {
		return nil, false, err
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	return event, attending, err
}

func (s *EventService) authorize(ctx context.Context, userID, creatorID uint, denial string) error {
	if userID == creatorID {
		return nil
	}
	if s.isAdmin == nil {
		return models.NewUnauthorizedError(denial)
	}
	admin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewUnauthorizedError(denial)
	}
	return nil
}
