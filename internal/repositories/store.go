package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the per-entity repositories behind a single handle so a
// request can run several writes plus an outbox insert atomically.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Comments() CommentRepository
	Replies() ReplyRepository
	Likes() LikeRepository
	Outbox() OutboxRepository

	// Atomically runs fn against a Store bound to a single transaction.
	// Returning an error from fn rolls the whole transaction back.
	Atomically(ctx context.Context, fn func(Store) error) error
}

// GormStore implements Store on top of a gorm connection (or transaction)
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GormStore
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository       { return NewPostgresUserRepository(s.db) }
func (s *GormStore) Posts() PostRepository       { return NewPostgresPostRepository(s.db) }
func (s *GormStore) Comments() CommentRepository { return NewPostgresCommentRepository(s.db) }
func (s *GormStore) Replies() ReplyRepository    { return NewPostgresReplyRepository(s.db) }
func (s *GormStore) Likes() LikeRepository       { return NewPostgresLikeRepository(s.db) }
func (s *GormStore) Outbox() OutboxRepository    { return NewPostgresOutboxRepository(s.db) }

// Atomically runs fn inside a database transaction
func (s *GormStore) Atomically(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}
