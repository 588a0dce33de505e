package postgres

import (
	"context"

	"github.com/novadesk/agency-management/internal"
	"github.com/novadesk/agency-management/internal/project"
	"gorm.io/gorm"
)

// ProjectRepository implements project.RepositoryAPI using GORM
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*project.Project, error) {
	var p project.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]*project.Project, error) {
	var projects []*project.Project
	err := r.db.WithContext(ctx).Order("id ASC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) ListByIDs(ctx context.Context, ids []int64) ([]*project.Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var projects []*project.Project
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProjectRepository) AllIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&project.Project{}).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *ProjectRepository) IDsForClient(ctx context.Context, clientID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&project.Project{}).
		Where("client_id = ?", clientID).
		Pluck("id", &ids).Error
	return ids, err
}

// IDsForAssignee resolves developer visibility through task assignment.
func (r *ProjectRepository) IDsForAssignee(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&project.Task{}).
		Where("assigned_to = ?", userID).
		Distinct().
		Pluck("project_id", &ids).Error
	return ids, err
}

func (r *ProjectRepository) CreateTask(ctx context.Context, t *project.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *ProjectRepository) GetTask(ctx context.Context, id int64) (*project.Task, error) {
	var t project.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.NewNotFoundError("Task not found", internal.ErrCodeProjectNotFound)
		}
		return nil, err
	}
	return &t, nil
}

func (r *ProjectRepository) ListTasks(ctx context.Context, projectID int64) ([]*project.Task, error) {
	var tasks []*project.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *ProjectRepository) UpdateTask(ctx context.Context, t *project.Task) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *ProjectRepository) TaskAssignees(ctx context.Context, projectID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&project.Task{}).
		Where("project_id = ? AND assigned_to IS NOT NULL", projectID).
		Distinct().
		Pluck("assigned_to", &ids).Error
	return ids, err
}
