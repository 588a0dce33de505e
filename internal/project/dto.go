package project

import (
	"github.com/novadesk/agency-management/internal"
)

type CreateProjectDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ClientID    int64  `json:"client_id"`
}

func (d CreateProjectDTO) Validate() error {
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if d.ClientID <= 0 {
		return internal.NewValidationFieldError("client_id", "client_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateProjectDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (d UpdateProjectDTO) Validate() error {
	if d.Name != nil && *d.Name == "" {
		return internal.NewValidationFieldError("name", "name cannot be empty", internal.ErrCodeValidationFailed)
	}
	if d.Status != nil && !IsValidStatus(*d.Status) {
		return internal.NewValidationFieldError("status", "invalid project status", internal.ErrCodeInvalidStatus)
	}
	return nil
}

type CreateTaskDTO struct {
	Title      string `json:"title"`
	AssignedTo *int64 `json:"assigned_to,omitempty"`
	DueDate    string `json:"due_date,omitempty"`
}

func (d CreateTaskDTO) Validate() error {
	if d.Title == "" {
		return internal.NewValidationFieldError("title", "title is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateTaskStatusDTO struct {
	Status string `json:"status"`
}

func (d UpdateTaskStatusDTO) Validate() error {
	if !IsValidTaskStatus(d.Status) {
		return internal.NewValidationFieldError("status", "invalid task status", internal.ErrCodeInvalidStatus)
	}
	return nil
}
