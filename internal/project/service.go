package project

import (
	"context"
	"time"

	"github.com/novadesk/agency-management/internal"
	"github.com/novadesk/agency-management/internal/auth"
	"github.com/novadesk/agency-management/internal/core/events"
)

// RepositoryAPI persists projects and tasks and answers visibility queries.
type RepositoryAPI interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id int64) (*Project, error)
	List(ctx context.Context) ([]*Project, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*Project, error)
	Update(ctx context.Context, p *Project) error

	AllIDs(ctx context.Context) ([]int64, error)
	IDsForClient(ctx context.Context, clientID int64) ([]int64, error)
	IDsForAssignee(ctx context.Context, userID int64) ([]int64, error)

	CreateTask(ctx context.Context, t *Task) error
	GetTask(ctx context.Context, id int64) (*Task, error)
	ListTasks(ctx context.Context, projectID int64) ([]*Task, error)
	UpdateTask(ctx context.Context, t *Task) error
	TaskAssignees(ctx context.Context, projectID int64) ([]int64, error)
}

type Service struct {
	repo RepositoryAPI
	bus  *events.EventBus
}

func NewService(repo RepositoryAPI, bus *events.EventBus) *Service {
	return &Service{repo: repo, bus: bus}
}

func (s *Service) CreateProject(ctx context.Context, dto CreateProjectDTO, actorID int64) (*Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	p := &Project{
		Name:        dto.Name,
		Description: dto.Description,
		ClientID:    dto.ClientID,
		CreatedBy:   actorID,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetProject(ctx context.Context, id int64) (*Project, error) {
	return s.repo.GetByID(ctx, id)
}

// ListProjects returns only what the caller may see.
func (s *Service) ListProjects(ctx context.Context, user *auth.User) ([]*Project, error) {
	if user.Role.IsStaff() {
		return s.repo.List(ctx)
	}
	ids, err := s.VisibleProjectIDs(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByIDs(ctx, ids)
}

func (s *Service) UpdateProject(ctx context.Context, id int64, dto UpdateProjectDTO, actorID int64) (*Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	statusChanged := false
	if dto.Name != nil {
		p.Name = *dto.Name
	}
	if dto.Description != nil {
		p.Description = *dto.Description
	}
	if dto.Status != nil && *dto.Status != p.Status {
		p.Status = *dto.Status
		statusChanged = true
	}
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if statusChanged && s.bus != nil {
		s.bus.Publish(ctx, events.NewProjectActivityEvent(
			events.EventTypeProjectStatusChanged, p.ID, actorID, p.Status))
	}
	return p, nil
}

// VisibleProjectIDs implements the role visibility matrix: admin and
// operational head see everything, a developer sees projects holding a task
// assigned to them, a client sees their own projects.
func (s *Service) VisibleProjectIDs(ctx context.Context, user *auth.User) ([]int64, error) {
	switch user.Role {
	case auth.RoleAdmin, auth.RoleOperationalHead:
		return s.repo.AllIDs(ctx)
	case auth.RoleDeveloper:
		return s.repo.IDsForAssignee(ctx, user.ID)
	case auth.RoleClient:
		if user.ClientID == nil {
			return nil, nil
		}
		return s.repo.IDsForClient(ctx, *user.ClientID)
	}
	return nil, internal.NewForbiddenError("unknown role", internal.ErrCodeInvalidRole)
}

// CanAccess reports whether the user may read or write inside the project.
func (s *Service) CanAccess(ctx context.Context, user *auth.User, projectID int64) (bool, error) {
	switch user.Role {
	case auth.RoleAdmin, auth.RoleOperationalHead:
		// Existence check only.
		if _, err := s.repo.GetByID(ctx, projectID); err != nil {
			return false, err
		}
		return true, nil
	}

	ids, err := s.VisibleProjectIDs(ctx, user)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == projectID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) CreateTask(ctx context.Context, projectID int64, dto CreateTaskDTO, actorID int64) (*Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	now := time.Now()
	t := &Task{
		ProjectID:  projectID,
		AssignedTo: dto.AssignedTo,
		Title:      dto.Title,
		Status:     TaskStatusTodo,
		CreatedBy:  actorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if dto.DueDate != "" {
		due, err := time.ParseInLocation("2006-01-02", dto.DueDate, time.Local)
		if err != nil {
			return nil, internal.NewValidationFieldError("due_date", "due_date must be YYYY-MM-DD", internal.ErrCodeInvalidDate)
		}
		t.DueDate = &due
	}

	if err := s.repo.CreateTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) ListTasks(ctx context.Context, projectID int64) ([]*Task, error) {
	if _, err := s.repo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListTasks(ctx, projectID)
}

func (s *Service) UpdateTaskStatus(ctx context.Context, taskID int64, dto UpdateTaskStatusDTO, actorID int64) (*Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	completed := dto.Status == TaskStatusDone && t.Status != TaskStatusDone
	t.Status = dto.Status
	t.UpdatedAt = time.Now()

	if err := s.repo.UpdateTask(ctx, t); err != nil {
		return nil, err
	}

	if completed && s.bus != nil {
		s.bus.Publish(ctx, events.NewProjectActivityEvent(
			events.EventTypeTaskCompleted, t.ProjectID, actorID, t.Title))
	}
	return t, nil
}

// TaskAssignees is used by the notification fan-out to build recipient sets.
func (s *Service) TaskAssignees(ctx context.Context, projectID int64) ([]int64, error) {
	return s.repo.TaskAssignees(ctx, projectID)
}
