package repositories

import (
	"context"

	"github.com/sociogram/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID uint) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id uint) error
	DeleteCommentsByPostID(ctx context.Context, postID uint) error
	IncrementRepliesCount(ctx context.Context, commentID uint) error
	DecrementRepliesCount(ctx context.Context, commentID uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Create(comment).Error)
}

// GetCommentByID retrieves a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

// GetCommentsByPostID retrieves all comments for a specific post, oldest first
func (r *PostgresCommentRepository) GetCommentsByPostID(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, translate(err)
	}
	return comments, nil
}

// DeleteComment deletes a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) DeleteComment(ctx context.Context, id uint) error {
	return translate(r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error)
}

// DeleteCommentsByPostID deletes all comments belonging to a post
func (r *PostgresCommentRepository) DeleteCommentsByPostID(ctx context.Context, postID uint) error {
	return translate(r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Comment{}).Error)
}

// IncrementRepliesCount increments the replies count in a single update
func (r *PostgresCommentRepository) IncrementRepliesCount(ctx context.Context, commentID uint) error {
	return translate(r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", commentID).
		UpdateColumn("replies_count", gorm.Expr("replies_count + 1")).Error)
}

// DecrementRepliesCount decrements the replies count, clamped at zero
func (r *PostgresCommentRepository) DecrementRepliesCount(ctx context.Context, commentID uint) error {
	return translate(r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", commentID).
		UpdateColumn("replies_count", gorm.Expr("GREATEST(replies_count - 1, 0)")).Error)
}
