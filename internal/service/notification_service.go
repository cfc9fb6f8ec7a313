package service

import (
	"context"
	"fmt"
	"log/slog"

	"shipits/internal/middleware"
	"shipits/internal/models"
	"shipits/internal/observability"
	"shipits/internal/repository"
)

// NotificationService creates notifications as side effects of domain
// mutations and serves each user's feed. Fan-out is best-effort: a failure to
// notify never fails the mutation that triggered it.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	subscriptionRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
	}
}

func (s *NotificationService) ListNotifications(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.notificationRepo.UnreadCount(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	return s.notificationRepo.MarkRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) DeleteNotification(ctx context.Context, userID, id uint) error {
	return s.notificationRepo.Delete(ctx, userID, id)
}

// NotifyProjectLiked tells the project owner about a new like.
func (s *NotificationService) NotifyProjectLiked(ctx context.Context, project *models.Project, actorID uint) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		s.logDropped(ctx, models.NotificationLike, err)
		return
	}

	n := &models.Notification{
		UserID:    project.OwnerID,
		Type:      models.NotificationLike,
		ActorID:   &actorID,
		Message:   fmt.Sprintf("%s liked your project %q", actor.Username, project.Title),
		ProjectID: &project.ID,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logDropped(ctx, models.NotificationLike, err)
		return
	}
	observability.NotificationsFanned.WithLabelValues(string(models.NotificationLike)).Inc()
}

// NotifyNewComment fans a comment out to the project's active subscribers,
// excluding the commenter and anyone already notified directly.
func (s *NotificationService) NotifyNewComment(ctx context.Context, project *models.Project, comment *models.Comment, skipUserIDs ...uint) {
	actor, err := s.userRepo.GetByID(ctx, comment.UserID)
	if err != nil {
		s.logDropped(ctx, models.NotificationComment, err)
		return
	}

	subscriberIDs, err := s.subscriptionRepo.ActiveSubscriberIDs(ctx, project.ID)
	if err != nil {
		s.logDropped(ctx, models.NotificationComment, err)
		return
	}

	skip := map[uint]bool{comment.UserID: true}
	for _, id := range skipUserIDs {
		skip[id] = true
	}

	var batch []*models.Notification
	for _, subscriberID := range subscriberIDs {
		if skip[subscriberID] {
			continue
		}
		batch = append(batch, &models.Notification{
			UserID:    subscriberID,
			Type:      models.NotificationComment,
			ActorID:   &comment.UserID,
			Message:   fmt.Sprintf("%s commented on %q", actor.Username, project.Title),
			ProjectID: &project.ID,
			CommentID: &comment.ID,
		})
	}
	if len(batch) == 0 {
		return
	}
	if err := s.notificationRepo.CreateBatch(ctx, batch); err != nil {
		s.logDropped(ctx, models.NotificationComment, err)
		return
	}
	observability.NotificationsFanned.WithLabelValues(string(models.NotificationComment)).Add(float64(len(batch)))
}

// NotifyReply tells a comment's author that someone replied.
func (s *NotificationService) NotifyReply(ctx context.Context, project *models.Project, parent *models.Comment, reply *models.Comment) {
	if parent.UserID == reply.UserID {
		return
	}
	actor, err := s.userRepo.GetByID(ctx, reply.UserID)
	if err != nil {
		s.logDropped(ctx, models.NotificationReply, err)
		return
	}

	n := &models.Notification{
		UserID:    parent.UserID,
		Type:      models.NotificationReply,
		ActorID:   &reply.UserID,
		Message:   fmt.Sprintf("%s replied to your comment on %q", actor.Username, project.Title),
		ProjectID: &project.ID,
		CommentID: &reply.ID,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logDropped(ctx, models.NotificationReply, err)
		return
	}
	observability.NotificationsFanned.WithLabelValues(string(models.NotificationReply)).Inc()
}

// NotifySubscribed tells the project owner about a new subscriber.
func (s *NotificationService) NotifySubscribed(ctx context.Context, project *models.Project, subscriberID uint) {
	if project.OwnerID == subscriberID {
		return
	}
	actor, err := s.userRepo.GetByID(ctx, subscriberID)
	if err != nil {
		s.logDropped(ctx, models.NotificationSubscription, err)
		return
	}

	n := &models.Notification{
		UserID:    project.OwnerID,
		Type:      models.NotificationSubscription,
		ActorID:   &subscriberID,
		Message:   fmt.Sprintf("%s subscribed to %q", actor.Username, project.Title),
		ProjectID: &project.ID,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logDropped(ctx, models.NotificationSubscription, err)
		return
	}
	observability.NotificationsFanned.WithLabelValues(string(models.NotificationSubscription)).Inc()
}

// NotifyEventReminder fans a reminder out to every RSVP'd attendee. Returns
// the number of notifications written so the scheduler can log it.
func (s *NotificationService) NotifyEventReminder(ctx context.Context, event *models.Event, attendeeIDs []uint) (int, error) {
	var batch []*models.Notification
	for _, attendeeID := range attendeeIDs {
		batch = append(batch, &models.Notification{
			UserID:  attendeeID,
			Type:    models.NotificationEventReminder,
			Message: fmt.Sprintf("%q starts at %s", event.Title, event.StartsAt.Format("Mon Jan 2 3:04 PM")),
			EventID: &event.ID,
		})
	}
	if len(batch) == 0 {
		return 0, nil
	}
	if err := s.notificationRepo.CreateBatch(ctx, batch); err != nil {
		return 0, err
	}
	observability.NotificationsFanned.WithLabelValues(string(models.NotificationEventReminder)).Add(float64(len(batch)))
	return len(batch), nil
}

func (s *NotificationService) logDropped(ctx context.Context, typ models.NotificationType, err error) {
	middleware.Logger.WarnContext(ctx, "notification fan-out dropped",
		slog.String("type", string(typ)),
		slog.String("error", err.Error()),
	)
}
