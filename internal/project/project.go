package project

import (
	"time"
)

const (
	StatusActive    = "active"
	StatusOnHold    = "on_hold"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

func IsValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusOnHold, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

func IsValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Project is the unit of visibility for chat rooms and notifications.
type Project struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	ClientID    int64     `json:"client_id" gorm:"column:client_id;index;not null"`
	CreatedBy   int64     `json:"created_by" gorm:"column:created_by;not null"`
	Status      string    `json:"status" gorm:"default:active"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

// Task assignment is what grants a developer visibility into a project.
type Task struct {
	ID         int64      `json:"id" gorm:"primaryKey"`
	ProjectID  int64      `json:"project_id" gorm:"column:project_id;index;not null"`
	AssignedTo *int64     `json:"assigned_to,omitempty" gorm:"column:assigned_to;index"`
	Title      string     `json:"title" gorm:"not null"`
	Status     string     `json:"status" gorm:"default:todo"`
	DueDate    *time.Time `json:"due_date,omitempty" gorm:"column:due_date"`
	CreatedBy  int64      `json:"created_by" gorm:"column:created_by"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}
