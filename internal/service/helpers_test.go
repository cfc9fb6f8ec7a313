package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shipits/internal/models"
	"shipits/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

// assertUnauthorizedError asserts that err is an AppError with code UNAUTHORIZED.
func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)
}

// projectRepoStub is a stub for repository.ProjectRepository.
type projectRepoStub struct {
	createFn        func(context.Context, *models.Project) error
	getByIDFn       func(context.Context, uint) (*models.Project, error)
	listFn          func(context.Context, repository.ProjectFilter) ([]*models.Project, error)
	featuredFn      func(context.Context, int) ([]*models.Project, error)
	trendingFn      func(context.Context, int, time.Time) ([]*models.Project, error)
	updateFn        func(context.Context, *models.Project) error
	softDeleteFn    func(context.Context, uint) error
	isLikedFn       func(context.Context, uint, uint) (bool, error)
	likeFn          func(context.Context, uint, uint) (bool, error)
	unlikeFn        func(context.Context, uint, uint) (bool, error)
	recordViewFn    func(context.Context, uint, *uint) error
	recordShareFn   func(context.Context, uint) error
	countCommentsFn func(context.Context, uint) (int64, error)
}

func (s *projectRepoStub) Create(ctx context.Context, p *models.Project) error {
	return s.createFn(ctx, p)
}
func (s *projectRepoStub) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	return s.getByIDFn(ctx, id)
}
func (s *projectRepoStub) List(ctx context.Context, f repository.ProjectFilter) ([]*models.Project, error) {
	return s.listFn(ctx, f)
}
func (s *projectRepoStub) Featured(ctx context.Context, limit int) ([]*models.Project, error) {
	return s.featuredFn(ctx, limit)
}
func (s *projectRepoStub) Trending(ctx context.Context, limit int, now time.Time) ([]*models.Project, error) {
	return s.trendingFn(ctx, limit, now)
}
func (s *projectRepoStub) Update(ctx context.Context, p *models.Project) error {
	return s.updateFn(ctx, p)
}
func (s *projectRepoStub) SoftDelete(ctx context.Context, id uint) error {
	return s.softDeleteFn(ctx, id)
}
func (s *projectRepoStub) IsLiked(ctx context.Context, userID, projectID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, projectID)
}
func (s *projectRepoStub) Like(ctx context.Context, userID, projectID uint) (bool, error) {
	return s.likeFn(ctx, userID, projectID)
}
func (s *projectRepoStub) Unlike(ctx context.Context, userID, projectID uint) (bool, error) {
	return s.unlikeFn(ctx, userID, projectID)
}
func (s *projectRepoStub) RecordView(ctx context.Context, projectID uint, viewerID *uint) error {
	return s.recordViewFn(ctx, projectID, viewerID)
}
func (s *projectRepoStub) RecordShare(ctx context.Context, projectID uint) error {
	return s.recordShareFn(ctx, projectID)
}
func (s *projectRepoStub) CountComments(ctx context.Context, projectID uint) (int64, error) {
	return s.countCommentsFn(ctx, projectID)
}

func noopProjectRepo() *projectRepoStub {
	return &projectRepoStub{
		createFn: func(_ context.Context, _ *models.Project) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Project, error) {
			return &models.Project{ID: id, Title: "Project", OwnerID: 1}, nil
		},
		listFn:          func(_ context.Context, _ repository.ProjectFilter) ([]*models.Project, error) { return nil, nil },
		featuredFn:      func(_ context.Context, _ int) ([]*models.Project, error) { return nil, nil },
		trendingFn:      func(_ context.Context, _ int, _ time.Time) ([]*models.Project, error) { return nil, nil },
		updateFn:        func(_ context.Context, _ *models.Project) error { return nil },
		softDeleteFn:    func(_ context.Context, _ uint) error { return nil },
		isLikedFn:       func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		likeFn:          func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unlikeFn:        func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		recordViewFn:    func(_ context.Context, _ uint, _ *uint) error { return nil },
		recordShareFn:   func(_ context.Context, _ uint) error { return nil },
		countCommentsFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn         func(context.Context, *models.Comment) error
	getByIDFn        func(context.Context, uint) (*models.Comment, error)
	listByProjectFn  func(context.Context, uint, bool) ([]*models.Comment, error)
	listRepliesFn    func(context.Context, uint) ([]*models.Comment, error)
	updateFn         func(context.Context, *models.Comment, string) error
	softDeleteFn     func(context.Context, uint) (bool, error)
	toggleReactionFn func(context.Context, uint, uint, string) (bool, error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByProject(ctx context.Context, projectID uint, topLevelOnly bool) ([]*models.Comment, error) {
	return s.listByProjectFn(ctx, projectID, topLevelOnly)
}
func (s *commentRepoStub) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	return s.listRepliesFn(ctx, parentID)
}
func (s *commentRepoStub) Update(ctx context.Context, c *models.Comment, previousContent string) error {
	return s.updateFn(ctx, c, previousContent)
}
func (s *commentRepoStub) SoftDelete(ctx context.Context, id uint) (bool, error) {
	return s.softDeleteFn(ctx, id)
}
func (s *commentRepoStub) ToggleReaction(ctx context.Context, userID, commentID uint, reactionType string) (bool, error) {
	return s.toggleReactionFn(ctx, userID, commentID, reactionType)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: 1, ProjectID: 1}, nil
		},
		listByProjectFn:  func(_ context.Context, _ uint, _ bool) ([]*models.Comment, error) { return nil, nil },
		listRepliesFn:    func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateFn:         func(_ context.Context, _ *models.Comment, _ string) error { return nil },
		softDeleteFn:     func(_ context.Context, _ uint) (bool, error) { return true, nil },
		toggleReactionFn: func(_ context.Context, _, _ uint, _ string) (bool, error) { return true, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	setRoleFn       func(context.Context, uint, string) error
	listFn          func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userRepoStub) Update(ctx context.Context, u *models.User) error { return s.updateFn(ctx, u) }
func (s *userRepoStub) SetRole(ctx context.Context, id uint, role string) error {
	return s.setRoleFn(ctx, id, role)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user", Role: models.RoleUser}, nil
		},
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		setRoleFn:       func(_ context.Context, _ uint, _ string) error { return nil },
		listFn:          func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
	}
}

// notificationRepoStub is a stub for repository.NotificationRepository that
// records created notifications for assertions.
type notificationRepoStub struct {
	created []*models.Notification
}

func (s *notificationRepoStub) Create(_ context.Context, n *models.Notification) error {
	s.created = append(s.created, n)
	return nil
}
func (s *notificationRepoStub) CreateBatch(_ context.Context, ns []*models.Notification) error {
	s.created = append(s.created, ns...)
	return nil
}
func (s *notificationRepoStub) ListByUser(_ context.Context, _ uint, _ bool, _, _ int) ([]*models.Notification, error) {
	return s.created, nil
}
func (s *notificationRepoStub) UnreadCount(_ context.Context, _ uint) (int64, error) {
	return int64(len(s.created)), nil
}
func (s *notificationRepoStub) MarkRead(_ context.Context, _, _ uint) error { return nil }
func (s *notificationRepoStub) MarkAllRead(_ context.Context, _ uint) error { return nil }
func (s *notificationRepoStub) Delete(_ context.Context, _, _ uint) error   { return nil }

// subscriptionRepoStub is a stub for repository.SubscriptionRepository.
type subscriptionRepoStub struct {
	upsertFn        func(context.Context, uint, uint) (*models.Subscription, error)
	deactivateFn    func(context.Context, uint, uint) error
	getFn           func(context.Context, uint, uint) (*models.Subscription, error)
	listActiveFn    func(context.Context, uint, int, int) ([]*models.Subscription, error)
	subscriberIDsFn func(context.Context, uint) ([]uint, error)
}

func (s *subscriptionRepoStub) Upsert(ctx context.Context, userID, projectID uint) (*models.Subscription, error) {
	return s.upsertFn(ctx, userID, projectID)
}
func (s *subscriptionRepoStub) Deactivate(ctx context.Context, userID, projectID uint) error {
	return s.deactivateFn(ctx, userID, projectID)
}
func (s *subscriptionRepoStub) Get(ctx context.Context, userID, projectID uint) (*models.Subscription, error) {
	return s.getFn(ctx, userID, projectID)
}
func (s *subscriptionRepoStub) ListActiveByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Subscription, error) {
	return s.listActiveFn(ctx, userID, limit, offset)
}
func (s *subscriptionRepoStub) ActiveSubscriberIDs(ctx context.Context, projectID uint) ([]uint, error) {
	return s.subscriberIDsFn(ctx, projectID)
}

func noopSubscriptionRepo() *subscriptionRepoStub {
	return &subscriptionRepoStub{
		upsertFn: func(_ context.Context, userID, projectID uint) (*models.Subscription, error) {
			return &models.Subscription{UserID: userID, ProjectID: projectID, IsActive: true}, nil
		},
		deactivateFn: func(_ context.Context, _, _ uint) error { return nil },
		getFn: func(_ context.Context, _, _ uint) (*models.Subscription, error) {
			return nil, errors.New("not found")
		},
		listActiveFn:    func(_ context.Context, _ uint, _, _ int) ([]*models.Subscription, error) { return nil, nil },
		subscriberIDsFn: func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
	}
}

// categoryRepoStub is a stub for repository.CategoryRepository.
type categoryRepoStub struct {
	listFn    func(context.Context) ([]models.Category, error)
	getByIDFn func(context.Context, uint) (*models.Category, error)
	createFn  func(context.Context, *models.Category) error
}

func (s *categoryRepoStub) List(ctx context.Context) ([]models.Category, error) {
	return s.listFn(ctx)
}
func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return s.getByIDFn(ctx, id)
}
func (s *categoryRepoStub) Create(ctx context.Context, c *models.Category) error {
	return s.createFn(ctx, c)
}

func noopCategoryRepo() *categoryRepoStub {
	return &categoryRepoStub{
		listFn: func(_ context.Context) ([]models.Category, error) { return nil, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Category, error) {
			return &models.Category{ID: id, Name: "Category"}, nil
		},
		createFn: func(_ context.Context, _ *models.Category) error { return nil },
	}
}

// eventRepoStub is a stub for repository.EventRepository.
type eventRepoStub struct {
	createFn         func(context.Context, *models.Event) error
	getByIDFn        func(context.Context, uint) (*models.Event, error)
	listRangeFn      func(context.Context, time.Time, time.Time, *uint) ([]*models.Event, error)
	updateFn         func(context.Context, *models.Event) error
	deleteFn         func(context.Context, uint) error
	toggleRSVPFn     func(context.Context, uint, uint) (bool, error)
	attendeeIDsFn    func(context.Context, uint) ([]uint, error)
	dueForReminderFn func(context.Context, time.Time, time.Duration) ([]*models.Event, error)
	markRemindedFn   func(context.Context, uint, time.Time) error
}

func (s *eventRepoStub) Create(ctx context.Context, e *models.Event) error { return s.createFn(ctx, e) }
func (s *eventRepoStub) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	return s.getByIDFn(ctx, id)
}
func (s *eventRepoStub) ListRange(ctx context.Context, from, to time.Time, categoryID *uint) ([]*models.Event, error) {
	return s.listRangeFn(ctx, from, to, categoryID)
}
func (s *eventRepoStub) Update(ctx context.Context, e *models.Event) error { return s.updateFn(ctx, e) }
func (s *eventRepoStub) Delete(ctx context.Context, id uint) error         { return s.deleteFn(ctx, id) }
func (s *eventRepoStub) ToggleRSVP(ctx context.Context, userID, eventID uint) (bool, error) {
	return s.toggleRSVPFn(ctx, userID, eventID)
}
func (s *eventRepoStub) AttendeeIDs(ctx context.Context, eventID uint) ([]uint, error) {
	return s.attendeeIDsFn(ctx, eventID)
}
func (s *eventRepoStub) DueForReminder(ctx context.Context, now time.Time, horizon time.Duration) ([]*models.Event, error) {
	return s.dueForReminderFn(ctx, now, horizon)
}
func (s *eventRepoStub) MarkReminded(ctx context.Context, eventID uint, at time.Time) error {
	return s.markRemindedFn(ctx, eventID, at)
}

func noopEventRepo() *eventRepoStub {
	return &eventRepoStub{
		createFn: func(_ context.Context, _ *models.Event) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Event, error) {
			return &models.Event{ID: id, Title: "Event", CreatorID: 1, StartsAt: time.Now().Add(time.Hour)}, nil
		},
		listRangeFn:      func(_ context.Context, _, _ time.Time, _ *uint) ([]*models.Event, error) { return nil, nil },
		updateFn:         func(_ context.Context, _ *models.Event) error { return nil },
		deleteFn:         func(_ context.Context, _ uint) error { return nil },
		toggleRSVPFn:     func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		attendeeIDsFn:    func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		dueForReminderFn: func(_ context.Context, _ time.Time, _ time.Duration) ([]*models.Event, error) { return nil, nil },
		markRemindedFn:   func(_ context.Context, _ uint, _ time.Time) error { return nil },
	}
}

// summaryRepoStub is a stub for repository.SummaryRepository.
type summaryRepoStub struct {
	getByProjectFn func(context.Context, uint) (*models.ThreadSummary, error)
	upsertFn       func(context.Context, *models.ThreadSummary) error
}

func (s *summaryRepoStub) GetByProject(ctx context.Context, projectID uint) (*models.ThreadSummary, error) {
	return s.getByProjectFn(ctx, projectID)
}
func (s *summaryRepoStub) Upsert(ctx context.Context, summary *models.ThreadSummary) error {
	return s.upsertFn(ctx, summary)
}

func noopSummaryRepo() *summaryRepoStub {
	return &summaryRepoStub{
		getByProjectFn: func(_ context.Context, _ uint) (*models.ThreadSummary, error) { return nil, nil },
		upsertFn:       func(_ context.Context, _ *models.ThreadSummary) error { return nil },
	}
}

// newTestNotifier builds a NotificationService over a recording stub.
func newTestNotifier(subs *subscriptionRepoStub, users *userRepoStub) (*NotificationService, *notificationRepoStub) {
	store := &notificationRepoStub{}
	if subs == nil {
		subs = noopSubscriptionRepo()
	}
	if users == nil {
		users = noopUserRepo()
	}
	return NewNotificationService(store, subs, users), store
}
