package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"taskpulse/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// GetByOwner retrieves all tasks belonging to a user, newest first
func (r *TaskRepository) GetByOwner(ctx context.Context, ownerID uint) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Order("created_at DESC").Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// Update applies the given field set to a task in a single UPDATE and
// returns the resulting row. Field pairs that must change together
// (completed/completed_at, the routine columns) rely on this being one
// statement.
func (r *TaskRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) (*model.Task, error) {
	result := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrTaskNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a task by its ID. It reports whether a row was
// actually deleted; deleting an absent task is not an error.
func (r *TaskRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
