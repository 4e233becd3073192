package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"daily-tasks/internal/model"
)

// TaskRepository handles CRUD for task instances. Rows keep their insertion
// order through the Position column.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createTasks(tx, []*model.Task{task})
	})
}

// Update applies the patch to a single task. It returns gorm.ErrRecordNotFound
// when no row has the given id.
func (r *TaskRepository) Update(ctx context.Context, id string, patch model.TaskPatch) error {
	updates := patch.Columns()
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a task by id, regardless of it being recurring or not.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteOneTime removes every non-recurring task and reports how many went.
func (r *TaskRepository) DeleteOneTime(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("is_recurring = ?", false).Delete(&model.Task{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete one-time tasks: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ReplaceRecurring swaps all recurring instances for the given ones in one
// transaction. New instances are ordered after the surviving one-time tasks.
func (r *TaskRepository) ReplaceRecurring(ctx context.Context, instances []model.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("is_recurring = ?", true).Delete(&model.Task{}).Error; err != nil {
			return fmt.Errorf("drop recurring instances: %w", err)
		}
		batch := make([]*model.Task, 0, len(instances))
		for i := range instances {
			task := instances[i]
			batch = append(batch, &task)
		}
		return createTasks(tx, batch)
	})
}

func createTasks(tx *gorm.DB, tasks []*model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	var last int64
	if err := tx.Model(&model.Task{}).Select("COALESCE(MAX(position), 0)").Scan(&last).Error; err != nil {
		return fmt.Errorf("next task position: %w", err)
	}
	for _, task := range tasks {
		last++
		task.Position = last
		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}
	}
	return nil
}
