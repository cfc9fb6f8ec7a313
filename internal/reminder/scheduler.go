// Package reminder runs the periodic pass that notifies attendees of
// upcoming events.
package reminder

import (
	"context"
	"log/slog"
	"time"

	"shipits/internal/middleware"
	"shipits/internal/observability"
	"shipits/internal/repository"
	"shipits/internal/service"

	"github.com/robfig/cron/v3"
)

const (
	// Horizon is how far ahead an event must start to earn a reminder.
	Horizon = 24 * time.Hour

	// schedule runs the pass every 15 minutes.
	schedule = "*/15 * * * *"
)

// Scheduler periodically reminds RSVP'd attendees of events starting soon.
// Each event is reminded at most once; a rescheduled event is re-armed by the
// event service clearing its reminded stamp.
type Scheduler struct {
	eventRepo repository.EventRepository
	notifier  *service.NotificationService
	cron      *cron.Cron
	now       func() time.Time
}

func NewScheduler(eventRepo repository.EventRepository, notifier *service.NotificationService) *Scheduler {
	return &Scheduler{
		eventRepo: eventRepo,
		notifier:  notifier,
		cron:      cron.New(),
		now:       time.Now,
	}
}

// Start schedules the reminder pass. The returned stop function blocks until
// a running pass finishes.
func (s *Scheduler) Start(ctx context.Context) (stop func(), err error) {
	_, err = s.cron.AddFunc(schedule, func() {
		if err := s.RunPass(ctx); err != nil {
			middleware.Logger.ErrorContext(ctx, "event reminder pass failed",
				slog.String("error", err.Error()),
			)
		}
	})
	if err != nil {
		return nil, err
	}
	s.cron.Start()
	return func() { <-s.cron.Stop().Done() }, nil
}

// RunPass reminds attendees of every due event, stamping each event so a
// rerun (or an overlapping pass on another instance) skips it.
func (s *Scheduler) RunPass(ctx context.Context) error {
	now := s.now()
	due, err := s.eventRepo.DueForReminder(ctx, now, Horizon)
	if err != nil {
		observability.ReminderRuns.WithLabelValues("error").Inc()
		return err
	}

	for _, event := range due {
		attendeeIDs, err := s.eventRepo.AttendeeIDs(ctx, event.ID)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "skipping event reminder",
				slog.Uint64("event_id", uint64(event.ID)),
				slog.String("error", err.Error()),
			)
			continue
		}

		sent, err := s.notifier.NotifyEventReminder(ctx, event, attendeeIDs)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "event reminder fan-out failed",
				slog.Uint64("event_id", uint64(event.ID)),
				slog.String("error", err.Error()),
			)
			continue
		}

		// Stamp only after the fan-out lands, so a failed pass retries.
		if err := s.eventRepo.MarkReminded(ctx, event.ID, now); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to stamp reminded event",
				slog.Uint64("event_id", uint64(event.ID)),
				slog.String("error", err.Error()),
			)
			continue
		}

		middleware.Logger.InfoContext(ctx, "event reminder sent",
			slog.Uint64("event_id", uint64(event.ID)),
			slog.Int("attendees", sent),
		)
	}

	observability.ReminderRuns.WithLabelValues("ok").Inc()
	return nil
}
