package repository

import (
	"context"
	"errors"
	"time"

	"shipits/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations.
//
// Create and SoftDelete maintain the parent project's denormalized
// analytics_total_comments counter inside the same transaction as the
// comment mutation, so the invariant "counter == count of non-deleted
// comments" holds after every call.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByProject(ctx context.Context, projectID uint, topLevelOnly bool) ([]*models.Comment, error)
	ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment, previousContent string) error
	SoftDelete(ctx context.Context, id uint) (bool, error)
	ToggleReaction(ctx context.Context, userID, commentID uint, reactionType string) (added bool, err error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Project{}).
			Where("id = ?", comment.ProjectID).
			UpdateColumn("analytics_total_comments", gorm.Expr("analytics_total_comments + ?", 1)).Error
	})
}

// GetByID returns the comment regardless of its is_deleted flag; callers
// decide how a deleted comment is presented.
func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Reactions").
		First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListByProject returns the project's visible comments: every non-deleted
// comment, plus soft-deleted parents that still have non-deleted replies
// (so the thread structure stays navigable). The service layer substitutes
// a placeholder body for the deleted parents.
func (r *commentRepository) ListByProject(ctx context.Context, projectID uint, topLevelOnly bool) ([]*models.Comment, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("Reactions").
		Where("project_id = ?", projectID).
		Where(
			r.db.Where("is_deleted = ?", false).
				Or("id IN (?)", r.db.Model(&models.Comment{}).
					Select("parent_comment_id").
					Where("project_id = ? AND is_deleted = ? AND parent_comment_id IS NOT NULL", projectID, false)),
		)
	if topLevelOnly {
		q = q.Where("parent_comment_id IS NULL")
	}

	var comments []*models.Comment
	err := q.Order("created_at ASC").Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Reactions").
		Where("parent_comment_id = ? AND is_deleted = ?", parentID, false).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// Update saves the edited comment and preserves the previous body as a
// revision row in the same transaction.
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment, previousContent string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comment.IsEdited = true
		if err := tx.Save(comment).Error; err != nil {
			return err
		}
		return tx.Create(&models.CommentRevision{
			CommentID: comment.ID,
			Content:   previousContent,
			EditedAt:  time.Now(),
		}).Error
	})
}

// SoftDelete flags the comment and decrements the parent counter, in one
// transaction. Deleting an already-deleted comment is a no-op (returns
// false) and must not decrement again.
func (r *commentRepository) SoftDelete(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Comment", id)
			}
			return err
		}

		res := tx.Model(&models.Comment{}).
			Where("id = ? AND is_deleted = ?", id, false).
			Update("is_deleted", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Model(&models.Project{}).
			Where("id = ? AND analytics_total_comments > 0", comment.ProjectID).
			UpdateColumn("analytics_total_comments", gorm.Expr("analytics_total_comments - ?", 1)).Error
	})
	return deleted, err
}

// ToggleReaction is an idempotent toggle keyed by user: reacting again with
// the same type removes the reaction, a different type replaces it.
// Returns true when a reaction is present after the call.
func (r *commentRepository) ToggleReaction(ctx context.Context, userID, commentID uint, reactionType string) (bool, error) {
	var added bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Reaction
		err := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			added = true
			return tx.Create(&models.Reaction{
				UserID:    userID,
				CommentID: commentID,
				Type:      reactionType,
			}).Error
		case err != nil:
			return err
		case existing.Type == reactionType:
			return tx.Delete(&existing).Error
		default:
			added = true
			return tx.Model(&existing).Update("type", reactionType).Error
		}
	})
	return added, err
}
