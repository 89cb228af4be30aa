package repositories

import (
	"context"
	"time"

	"github.com/sociogram/backend/internal/models"
	"gorm.io/gorm"
)

// OutboxRepository defines the interface for staged notification events.
// Enqueue is called inside the interaction's transaction; the dispatcher
// drains pending rows afterwards.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event *models.OutboxEvent) error
	// FetchPending returns unpublished events that have not exhausted
	// their delivery attempts, oldest first.
	FetchPending(ctx context.Context, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublished(ctx context.Context, id uint) error
	RecordFailure(ctx context.Context, id uint) error
}

// PostgresOutboxRepository implements OutboxRepository for PostgreSQL
type PostgresOutboxRepository struct {
	db *gorm.DB
}

// NewPostgresOutboxRepository creates a new PostgresOutboxRepository
func NewPostgresOutboxRepository(db *gorm.DB) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{db: db}
}

// Enqueue stages an event in the caller's transaction
func (r *PostgresOutboxRepository) Enqueue(ctx context.Context, event *models.OutboxEvent) error {
	return translate(r.db.WithContext(ctx).Create(event).Error)
}

// FetchPending returns undelivered events, oldest first
func (r *PostgresOutboxRepository) FetchPending(ctx context.Context, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	var events []models.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL AND attempts < ?", maxAttempts).
		Order("id ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, translate(err)
	}
	return events, nil
}

// MarkPublished stamps an event as delivered
func (r *PostgresOutboxRepository) MarkPublished(ctx context.Context, id uint) error {
	now := time.Now()
	return translate(r.db.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Update("published_at", &now).Error)
}

// RecordFailure bumps the attempt counter after a failed delivery
func (r *PostgresOutboxRepository) RecordFailure(ctx context.Context, id uint) error {
	return translate(r.db.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error)
}
