package server

import (
	"shipits/internal/models"
	"shipits/internal/repository"
	"shipits/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateProject handles POST /api/projects
func (s *Server) CreateProject(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		MediaURL    string `json:"media_url"`
		DemoURL     string `json:"demo_url"`
		RepoURL     string `json:"repo_url"`
		FundingGoal int64  `json:"funding_goal"`
		CategoryID  *uint  `json:"category_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	project, err := s.projectService.CreateProject(c.UserContext(), service.CreateProjectInput{
		OwnerID:     currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		MediaURL:    req.MediaURL,
		DemoURL:     req.DemoURL,
		RepoURL:     req.RepoURL,
		FundingGoal: req.FundingGoal,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// GetProjects handles GET /api/projects
func (s *Server) GetProjects(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	filter := repository.ProjectFilter{
		Status: c.Query("status"),
		Sort:   c.Query("sort"),
		Limit:  p.Limit,
		Offset: p.Offset,
	}
	if categoryID := c.QueryInt("category_id", 0); categoryID > 0 {
		id := uint(categoryID)
		filter.CategoryID = &id
	}
	if ownerID := c.QueryInt("owner_id", 0); ownerID > 0 {
		id := uint(ownerID)
		filter.OwnerID = &id
	}

	projects, err := s.projectService.ListProjects(c.UserContext(), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"projects": projects})
}

// GetFeaturedProjects handles GET /api/projects/featured
func (s *Server) GetFeaturedProjects(c *fiber.Ctx) error {
	p := parsePagination(c, 10)
	projects, err := s.projectService.FeaturedProjects(c.UserContext(), p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"projects": projects})
}

// GetTrendingProjects handles GET /api/projects/trending
func (s *Server) GetTrendingProjects(c *fiber.Ctx) error {
	p := parsePagination(c, 10)
	projects, err := s.projectService.ListProjects(c.UserContext(), repository.ProjectFilter{
		Sort:   "trending",
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"projects": projects})
}

// GetProject handles GET /api/projects/:id. Each fetch records a view for
// the analytics counters; recording never blocks or fails the read.
func (s *Server) GetProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	project, err := s.projectService.GetProject(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	var viewerID *uint
	if userID, ok := s.optionalUserID(c); ok {
		viewerID = &userID
	}
	s.analyticsService.RecordView(c.UserContext(), id, viewerID)

	return c.JSON(project)
}

// UpdateProject handles PUT /api/projects/:id
func (s *Server) UpdateProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		MediaURL    string `json:"media_url"`
		DemoURL     string `json:"demo_url"`
		RepoURL     string `json:"repo_url"`
		FundingGoal *int64 `json:"funding_goal"`
		Status      string `json:"status"`
		CategoryID  *uint  `json:"category_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	project, err := s.projectService.UpdateProject(c.UserContext(), service.UpdateProjectInput{
		UserID:      currentUserID(c),
		ProjectID:   id,
		Title:       req.Title,
		Description: req.Description,
		MediaURL:    req.MediaURL,
		DemoURL:     req.DemoURL,
		RepoURL:     req.RepoURL,
		FundingGoal: req.FundingGoal,
		Status:      req.Status,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(project)
}

// DeleteProject handles DELETE /api/projects/:id
func (s *Server) DeleteProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.projectService.DeleteProject(c.UserContext(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikeProject handles POST /api/projects/:id/like
func (s *Server) LikeProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	project, err := s.projectService.LikeProject(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"liked": true, "likes": project.Analytics.Likes})
}

// UnlikeProject handles DELETE /api/projects/:id/like
func (s *Server) UnlikeProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	project, err := s.projectService.UnlikeProject(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"liked": false, "likes": project.Analytics.Likes})
}

// FeatureProject handles POST /api/projects/:id/feature (admin only)
func (s *Server) FeatureProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Featured *bool `json:"featured"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	featured := true
	if req.Featured != nil {
		featured = *req.Featured
	}

	project, err := s.projectService.SetFeatured(c.UserContext(), currentUserID(c), id, featured)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(project)
}

// RecordProjectView handles POST /api/projects/:id/view. Anonymous views
// count; the endpoint always answers 204.
func (s *Server) RecordProjectView(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var viewerID *uint
	if userID, ok := s.optionalUserID(c); ok {
		viewerID = &userID
	}
	s.analyticsService.RecordView(c.UserContext(), id, viewerID)
	return c.SendStatus(fiber.StatusNoContent)
}

// RecordProjectShare handles POST /api/projects/:id/share
func (s *Server) RecordProjectShare(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var body struct {
		Platform string `json:"platform"`
	}
	// Body is optional; a bare POST still counts as a share.
	_ = c.BodyParser(&body)

	s.analyticsService.RecordShare(c.UserContext(), id, body.Platform)
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.categoryRepo.List(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// CreateCategory handles POST /api/admin/categories (admin only)
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name is required"))
	}

	category := &models.Category{Name: req.Name, Description: req.Description}
	if err := s.categoryRepo.Create(c.UserContext(), category); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}
