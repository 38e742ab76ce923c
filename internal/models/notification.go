package models

import "time"

// Notification is a message delivered to a student's inbox.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"studentId"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Type      string    `db:"type" json:"type"`
	Priority  string    `db:"priority" json:"priority"`
	IsRead    bool      `db:"is_read" json:"isRead"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Notification types and priorities.
const (
	NotificationTypeInfo    = "info"
	NotificationTypeSuccess = "success"

	NotificationPriorityLow  = "low"
	NotificationPriorityHigh = "high"
)
