package repositories

import (
	"context"

	"github.com/sociogram/backend/internal/models"
	"gorm.io/gorm"
)

// ReplyRepository defines the interface for reply data operations
type ReplyRepository interface {
	CreateReply(ctx context.Context, reply *models.Reply) error
	GetReplyByID(ctx context.Context, id uint) (*models.Reply, error)
	GetRepliesByCommentID(ctx context.Context, commentID uint) ([]models.Reply, error)
	DeleteReply(ctx context.Context, id uint) error
	DeleteRepliesByCommentID(ctx context.Context, commentID uint) error
	DeleteRepliesByPostID(ctx context.Context, postID uint) error
}

// PostgresReplyRepository implements ReplyRepository for PostgreSQL
type PostgresReplyRepository struct {
	db *gorm.DB
}

// NewPostgresReplyRepository creates a new PostgresReplyRepository
func NewPostgresReplyRepository(db *gorm.DB) *PostgresReplyRepository {
	return &PostgresReplyRepository{db: db}
}

// CreateReply creates a new reply in PostgreSQL
func (r *PostgresReplyRepository) CreateReply(ctx context.Context, reply *models.Reply) error {
	return translate(r.db.WithContext(ctx).Create(reply).Error)
}

// GetReplyByID retrieves a reply by ID from PostgreSQL
func (r *PostgresReplyRepository) GetReplyByID(ctx context.Context, id uint) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).First(&reply, id).Error; err != nil {
		return nil, translate(err)
	}
	return &reply, nil
}

// GetRepliesByCommentID retrieves all replies for a specific comment, oldest first
func (r *PostgresReplyRepository) GetRepliesByCommentID(ctx context.Context, commentID uint) ([]models.Reply, error) {
	var replies []models.Reply
	err := r.db.WithContext(ctx).
		Where("comment_id = ?", commentID).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, translate(err)
	}
	return replies, nil
}

// DeleteReply deletes a reply by ID from PostgreSQL
func (r *PostgresReplyRepository) DeleteReply(ctx context.Context, id uint) error {
	return translate(r.db.WithContext(ctx).Delete(&models.Reply{}, id).Error)
}

// DeleteRepliesByCommentID deletes all replies belonging to a comment
func (r *PostgresReplyRepository) DeleteRepliesByCommentID(ctx context.Context, commentID uint) error {
	return translate(r.db.WithContext(ctx).Where("comment_id = ?", commentID).Delete(&models.Reply{}).Error)
}

// DeleteRepliesByPostID deletes all replies hanging off any comment of a post
func (r *PostgresReplyRepository) DeleteRepliesByPostID(ctx context.Context, postID uint) error {
	sub := r.db.Model(&models.Comment{}).Select("id").Where("post_id = ?", postID)
	return translate(r.db.WithContext(ctx).Where("comment_id IN (?)", sub).Delete(&models.Reply{}).Error)
}
