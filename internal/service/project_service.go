package service

import (
	"context"
	"fmt"

	"shipits/internal/models"
	"shipits/internal/repository"
)

type ProjectService struct {
	projectRepo  repository.ProjectRepository
	categoryRepo repository.CategoryRepository
	notifier     *NotificationService
	isAdmin      func(ctx context.Context, userID uint) (bool, error)
}

type CreateProjectInput struct {
	OwnerID     uint
	Title       string
	Description string
	MediaURL    string
	DemoURL     string
	RepoURL     string
	FundingGoal int64
	CategoryID  *uint
}

type UpdateProjectInput struct {
	UserID      uint
	ProjectID   uint
	Title       string
	Description string
	MediaURL    string
	DemoURL     string
	RepoURL     string
	FundingGoal *int64
	Status      string
	CategoryID  *uint
}

func NewProjectService(
	projectRepo repository.ProjectRepository,
	categoryRepo repository.CategoryRepository,
	notifier *NotificationService,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		categoryRepo: categoryRepo,
		notifier:     notifier,
		isAdmin:      isAdmin,
	}
}

const (
	maxTitleLen       = 120
	maxDescriptionLen = 20000
)

func (s *ProjectService) CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError(fmt.Sprintf("Title too long (max %d characters)", maxTitleLen))
	}
	if in.Description == "" {
		return nil, models.NewValidationError("Description is required")
	}
	if len(in.Description) > maxDescriptionLen {
		return nil, models.NewValidationError(fmt.Sprintf("Description too long (max %d characters)", maxDescriptionLen))
	}
	if in.FundingGoal < 0 {
		return nil, models.NewValidationError("Funding goal cannot be negative")
	}
	if in.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	project := &models.Project{
		Title:       in.Title,
		Description: in.Description,
		MediaURL:    in.MediaURL,
		DemoURL:     in.DemoURL,
		RepoURL:     in.RepoURL,
		FundingGoal: in.FundingGoal,
		Status:      models.ProjectStatusActive,
		OwnerID:     in.OwnerID,
		CategoryID:  in.CategoryID,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	return s.projectRepo.GetByID(ctx, project.ID)
}

func (s *ProjectService) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	return s.projectRepo.GetByID(ctx, id)
}

func (s *ProjectService) ListProjects(ctx context.Context, filter repository.ProjectFilter) ([]*models.Project, error) {
	if filter.Status != "" {
		switch filter.Status {
		case models.ProjectStatusActive, models.ProjectStatusCompleted, models.ProjectStatusArchived:
		default:
			return nil, models.NewValidationError("Status must be active, completed, or archived")
		}
	}
	return s.projectRepo.List(ctx, filter)
}

func (s *ProjectService) FeaturedProjects(ctx context.Context, limit int) ([]*models.Project, error) {
	return s.projectRepo.Featured(ctx, limit)
}

func (s *ProjectService) UpdateProject(ctx context.Context, in UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, in.UserID, project.OwnerID, "You can only update your own projects"); err != nil {
		return nil, err
	}

	if in.Title != "" {
		if len(in.Title) > maxTitleLen {
			return nil, models.NewValidationError(fmt.Sprintf("Title too long (max %d characters)", maxTitleLen))
		}
		project.Title = in.Title
	}
	if in.Description != "" {
		if len(in.Description) > maxDescriptionLen {
			return nil, models.NewValidationError(fmt.Sprintf("Description too long (max %d characters)", maxDescriptionLen))
		}
		project.Description = in.Description
	}
	if in.MediaURL != "" {
		project.MediaURL = in.MediaURL
	}
	if in.DemoURL != "" {
		project.DemoURL = in.DemoURL
	}
	if in.RepoURL != "" {
		project.RepoURL = in.RepoURL
	}
	if in.FundingGoal != nil {
		if *in.FundingGoal < 0 {
			return nil, models.NewValidationError("Funding goal cannot be negative")
		}
		project.FundingGoal = *in.FundingGoal
	}
	if in.Status != "" {
		switch in.Status {
		case models.ProjectStatusActive, models.ProjectStatusCompleted, models.ProjectStatusArchived:
			project.Status = in.Status
		default:
			return nil, models.NewValidationError("Status must be active, completed, or archived")
		}
	}
	if in.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		project.CategoryID = in.CategoryID
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}
	return s.projectRepo.GetByID(ctx, project.ID)
}

func (s *ProjectService) DeleteProject(ctx context.Context, userID, projectID uint) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, userID, project.OwnerID, "You can only delete your own projects"); err != nil {
		return err
	}
	return s.projectRepo.SoftDelete(ctx, projectID)
}

// SetFeatured is admin-only curation of the front-page carousel.
func (s *ProjectService) SetFeatured(ctx context.Context, actorID, projectID uint, featured bool) (*models.Project, error) {
	admin, err := s.isAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, models.NewUnauthorizedError("Only admins can feature projects")
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	project.Featured = featured
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// LikeProject records the like and notifies the owner. Liking twice is a
// no-op and sends nothing.
func (s *ProjectService) LikeProject(ctx context.Context, userID, projectID uint) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	created, err := s.projectRepo.Like(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if created && project.OwnerID != userID {
		s.notifier.NotifyProjectLiked(ctx, project, userID)
	}

	return s.projectRepo.GetByID(ctx, projectID)
}

func (s *ProjectService) UnlikeProject(ctx context.Context, userID, projectID uint) (*models.Project, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	if _, err := s.projectRepo.Unlike(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.projectRepo.GetByID(ctx, projectID)
}

func (s *ProjectService) IsLiked(ctx context.Context, userID, projectID uint) (bool, error) {
	return s.projectRepo.IsLiked(ctx, userID, projectID)
}

func (s *ProjectService) authorize(ctx context.Context, userID, ownerID uint, denial string) error {
	if userID == ownerID {
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
