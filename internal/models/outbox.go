package models

import "time"

// OutboxEvent is a pending realtime notification. Rows are inserted in the
// same transaction as the write that produced them, so a crash between
// commit and publish can no longer drop the notification silently.
type OutboxEvent struct {
	ID          uint       `gorm:"primaryKey"`
	Topic       string     `gorm:"size:100;not null"`
	Payload     string     `gorm:"type:text;not null"`
	Attempts    int        `gorm:"not null;default:0"`
	PublishedAt *time.Time `gorm:"index"`
	CreatedAt   time.Time
}
