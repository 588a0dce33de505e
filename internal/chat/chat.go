package chat

import (
	"time"
)

// Message is one chat line in a project room. Messages are immutable once
// stored.
type Message struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	ProjectID  int64     `json:"project_id" gorm:"column:project_id;index;not null"`
	SenderID   int64     `json:"sender_id" gorm:"column:sender_id;not null"`
	SenderName string    `json:"sender_name" gorm:"column:sender_name"`
	Body       string    `json:"body" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Message) TableName() string {
	return "chat_messages"
}
