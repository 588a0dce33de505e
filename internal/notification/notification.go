package notification

import (
	"time"
)

// Notification kinds mirror the business events that produce them.
const (
	KindNewMessage          = "new_message"
	KindFileUploaded        = "file_uploaded"
	KindTaskCompleted       = "task_completed"
	KindProjectStatusChange = "project_status_changed"
)

// Notification is the durable copy of a fan-out event. The row is written
// unconditionally; realtime delivery rides behind it best effort.
type Notification struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"column:user_id;index;not null"`
	Kind      string    `json:"kind" gorm:"not null"`
	Message   string    `json:"message" gorm:"not null"`
	ProjectID *int64    `json:"project_id,omitempty" gorm:"column:project_id"`
	IsRead    bool      `json:"is_read" gorm:"column:is_read;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
