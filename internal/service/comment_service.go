package service

import (
	"context"

	"shipits/internal/models"
	"shipits/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	projectRepo repository.ProjectRepository
	notifier    *NotificationService
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

type CreateCommentInput struct {
	UserID          uint
	ProjectID       uint
	Content         string
	ParentCommentID *uint
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

type ReactInput struct {
	UserID    uint
	CommentID uint
	Type      string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	projectRepo repository.ProjectRepository,
	notifier *NotificationService,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		projectRepo: projectRepo,
		notifier:    notifier,
		isAdmin:     isAdmin,
	}
}

const maxCommentLen = 10000

// CreateComment posts a comment or a reply. Replies nest one level: the
// parent must be a top-level comment on the same project, and replying to a
// deleted comment is rejected.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	project, err := s.projectRepo.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}

	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	var parent *models.Comment
	if in.ParentCommentID != nil {
		parent, err = s.commentRepo.GetByID(ctx, *in.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.ProjectID != in.ProjectID {
			return nil, models.NewValidationError("Parent comment belongs to a different project")
		}
		if parent.ParentCommentID != nil {
			return nil, models.NewValidationError("Replies cannot be nested further")
		}
		if parent.IsDeleted {
			return nil, models.NewValidationError("Cannot reply to a deleted comment")
		}
	}

	comment := &models.Comment{
		Content:         in.Content,
		UserID:          in.UserID,
		ProjectID:       in.ProjectID,
		ParentCommentID: in.ParentCommentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if parent != nil {
		s.notifier.NotifyReply(ctx, project, parent, comment)
		s.notifier.NotifyNewComment(ctx, project, comment, parent.UserID)
	} else {
		s.notifier.NotifyNewComment(ctx, project, comment)
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns the project's thread. Soft-deleted parents that still
// have visible replies appear with a placeholder body and no author.
func (s *CommentService) ListComments(ctx context.Context, projectID uint, topLevelOnly bool) ([]*models.Comment, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByProject(ctx, projectID, topLevelOnly)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		maskDeleted(c)
	}
	return comments, nil
}

func (s *CommentService) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	if _, err := s.commentRepo.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListReplies(ctx, parentID)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.IsDeleted {
		return nil, models.NewValidationError("Cannot edit a deleted comment")
	}
	if comment.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only update your own comments")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	previous := comment.Content
	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment, previous); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return err
	}

	if comment.UserID != in.UserID {
		if s.isAdmin == nil {
			return models.NewUnauthorizedError("You can only delete your own comments")
		}
		admin, err := s.isAdmin(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewUnauthorizedError("You can only delete your own comments")
		}
	}

	_, err = s.commentRepo.SoftDelete(ctx, in.CommentID)
	return err
}

// React toggles the caller's reaction on a comment.
func (s *CommentService) React(ctx context.Context, in ReactInput) (*models.Comment, error) {
	if !models.ValidReactionType(in.Type) {
		return nil, models.NewValidationError("Reaction must be like, heart, rocket, or celebrate")
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.IsDeleted {
		return nil, models.NewValidationError("Cannot react to a deleted comment")
	}

	if _, err := s.commentRepo.ToggleReaction(ctx, in.UserID, in.CommentID, in.Type); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, in.CommentID)
}

func maskDeleted(c *models.Comment) {
	if !c.IsDeleted {
		return
	}
	c.Content = models.DeletedCommentPlaceholder
	c.UserID = 0
	c.User = models.User{}
	c.Reactions = nil
}
