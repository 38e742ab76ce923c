package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hostel-allocation-api/internal/models"
)

// NotificationRepository writes student notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateBatch inserts notifications in a single statement.
func (r *NotificationRepository) CreateBatch(ctx context.Context, items []models.Notification) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = now
		}
	}
	const query = `INSERT INTO notifications (id, student_id, title, message, type, priority, is_read, created_at)
        VALUES (:id, :student_id, :title, :message, :type, :priority, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, items); err != nil {
		return fmt.Errorf("create notifications: %w", err)
	}
	return nil
}
