package repository

import (
	"context"
	"errors"
	"time"

	"shipits/internal/cache"
	"shipits/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectFilter narrows and orders project listings.
type ProjectFilter struct {
	CategoryID *uint
	Status     string
	OwnerID    *uint
	Sort       string // "new" (default), "top", "trending"
	Limit      int
	Offset     int
}

// TrendingWindow is the trailing interval over which view events are counted
// for the trending sort.
const TrendingWindow = 7 * 24 * time.Hour

// ProjectRepository defines the interface for project data operations.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*models.Project, error)
	Featured(ctx context.Context, limit int) ([]*models.Project, error)
	Trending(ctx context.Context, limit int, now time.Time) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	SoftDelete(ctx context.Context, id uint) error

	IsLiked(ctx context.Context, userID, projectID uint) (bool, error)
	Like(ctx context.Context, userID, projectID uint) (bool, error)
	Unlike(ctx context.Context, userID, projectID uint) (bool, error)

	RecordView(ctx context.Context, projectID uint, viewerID *uint) error
	RecordShare(ctx context.Context, projectID uint) error

	CountComments(ctx context.Context, projectID uint) (int64, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	err := r.db.WithContext(ctx).Create(project).Error
	if err == nil {
		cache.InvalidateProjectLists(ctx)
	}
	return err
}

// GetByID returns a non-deleted project with its owner and category. Soft
// deletion makes the project invisible here as everywhere else; rows are
// never purged.
func (r *projectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Category").
		Where("is_deleted = ?", false).
		First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Project", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context, filter ProjectFilter) ([]*models.Project, error) {
	q := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Category").
		Where("is_deleted = ?", false)

	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.OwnerID != nil {
		q = q.Where("owner_id = ?", *filter.OwnerID)
	}

	switch filter.Sort {
	case "top":
		q = q.Order("analytics_likes DESC, created_at DESC")
	case "trending":
		return r.trendingQuery(q, filter.Limit, filter.Offset, time.Now())
	default: // "new" and anything unrecognized
		q = q.Order("created_at DESC")
	}

	var projects []*models.Project
	err := q.Limit(filter.Limit).Offset(filter.Offset).Find(&projects).Error
	return projects, err
}

func (r *projectRepository) Featured(ctx context.Context, limit int) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Category").
		Where("is_deleted = ? AND featured = ?", false, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

// Trending ranks projects by view events recorded in the trailing window,
// not by the lifetime counter, so old hits do not dominate.
func (r *projectRepository) Trending(ctx context.Context, limit int, now time.Time) ([]*models.Project, error) {
	q := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Category").
		Where("is_deleted = ?", false)
	return r.trendingQuery(q, limit, 0, now)
}

func (r *projectRepository) trendingQuery(q *gorm.DB, limit, offset int, now time.Time) ([]*models.Project, error) {
	since := now.Add(-TrendingWindow)
	var projects []*models.Project
	err := q.
		Select("projects.*, (SELECT COUNT(*) FROM project_views WHERE project_views.project_id = projects.id AND project_views.created_at > ?) AS recent_views", since).
		Order("recent_views DESC, projects.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Save(project).Error; err != nil {
		return err
	}
	cache.InvalidateProject(ctx, project.ID)
	cache.InvalidateProjectLists(ctx)
	return nil
}

func (r *projectRepository) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Project", id)
	}
	cache.InvalidateProject(ctx, id)
	cache.InvalidateProjectLists(ctx)
	return nil
}

func (r *projectRepository) IsLiked(ctx context.Context, userID, projectID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProjectLike{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Like inserts the (user, project) like if absent and bumps the denormalized
// counter in the same transaction. Returns true when a new like was recorded.
func (r *projectRepository) Like(ctx context.Context, userID, projectID uint) (bool, error) {
	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "project_id"}},
			DoNothing: true,
		}).Create(&models.ProjectLike{UserID: userID, ProjectID: projectID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		return tx.Model(&models.Project{}).
			Where("id = ?", projectID).
			UpdateColumn("analytics_likes", gorm.Expr("analytics_likes + ?", 1)).Error
	})
	if err == nil && created {
		cache.InvalidateProject(ctx, projectID)
	}
	return created, err
}

// Unlike removes the like and decrements the counter when a row was deleted.
func (r *projectRepository) Unlike(ctx context.Context, userID, projectID uint) (bool, error) {
	var removed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND project_id = ?", userID, projectID).
			Delete(&models.ProjectLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		return tx.Model(&models.Project{}).
			Where("id = ? AND analytics_likes > 0", projectID).
			UpdateColumn("analytics_likes", gorm.Expr("analytics_likes - ?", 1)).Error
	})
	if err == nil && removed {
		cache.InvalidateProject(ctx, projectID)
	}
	return removed, err
}

// RecordView appends a view event row and bumps the lifetime counter in one
// transaction. The event rows feed the trending window query.
func (r *projectRepository) RecordView(ctx context.Context, projectID uint, viewerID *uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.ProjectView{ProjectID: projectID, ViewerID: viewerID}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Project{}).
			Where("id = ?", projectID).
			UpdateColumn("analytics_views", gorm.Expr("analytics_views + ?", 1)).Error
	})
}

func (r *projectRepository) RecordShare(ctx context.Context, projectID uint) error {
	return r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", projectID).
		UpdateColumn("analytics_shares", gorm.Expr("analytics_shares + ?", 1)).Error
}

// CountComments recomputes the non-deleted comment count by aggregation.
// This is the source of truth the denormalized counter is checked against.
func (r *projectRepository) CountComments(ctx context.Context, projectID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("project_id = ? AND is_deleted = ?", projectID, false).
		Count(&count).Error
	return count, err
}
