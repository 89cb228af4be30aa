package repositories

import (
	"context"

	"github.com/sociogram/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations. The counter
// methods adjust the denormalized likes/comments counts with a single atomic
// update expression; decrements clamp at zero.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPosts(ctx context.Context, offset, limit int) ([]models.Post, error)
	GetPostsByUserID(ctx context.Context, userID uint, offset, limit int) ([]models.Post, error)
	CountPosts(ctx context.Context) (int64, error)
	CountPostsByUserID(ctx context.Context, userID uint) (int64, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
	IncrementLikesCount(ctx context.Context, postID uint) error
	DecrementLikesCount(ctx context.Context, postID uint) error
	IncrementCommentsCount(ctx context.Context, postID uint) error
	DecrementCommentsCount(ctx context.Context, postID uint) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost creates a new post in PostgreSQL
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Create(post).Error)
}

// GetPostByID retrieves a post by ID from PostgreSQL
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// GetPosts retrieves a page of posts, newest first
func (r *PostgresPostRepository) GetPosts(ctx context.Context, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, translate(err)
	}
	return posts, nil
}

// GetPostsByUserID retrieves a page of one user's posts, newest first
func (r *PostgresPostRepository) GetPostsByUserID(ctx context.Context, userID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, translate(err)
	}
	return posts, nil
}

// CountPosts returns the total number of posts
func (r *PostgresPostRepository) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}

// CountPostsByUserID returns the number of posts authored by a user
func (r *PostgresPostRepository) CountPostsByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}

// UpdatePost updates an existing post in PostgreSQL
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Save(post).Error)
}

// DeletePost deletes the post row itself. Child comments, replies and likes
// are removed by the caller's cascade routine.
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	return translate(r.db.WithContext(ctx).Delete(&models.Post{}, id).Error)
}

// IncrementLikesCount increments the likes count in a single update
func (r *PostgresPostRepository) IncrementLikesCount(ctx context.Context, postID uint) error {
	return translate(r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error)
}

// DecrementLikesCount decrements the likes count, clamped at zero
func (r *PostgresPostRepository) DecrementLikesCount(ctx context.Context, postID uint) error {
	return translate(r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("likes_count", gorm.Expr("GREATEST(likes_count - 1, 0)")).Error)
}

// IncrementCommentsCount increments the comments count in a single update
func (r *PostgresPostRepository) IncrementCommentsCount(ctx context.Context, postID uint) error {
	return translate(r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error)
}

// DecrementCommentsCount decrements the comments count, clamped at zero
func (r *PostgresPostRepository) DecrementCommentsCount(ctx context.Context, postID uint) error {
	return translate(r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("comments_count", gorm.Expr("GREATEST(comments_count - 1, 0)")).Error)
}
