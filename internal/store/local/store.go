package local

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"daily-tasks/internal/model"
	"daily-tasks/internal/repository"
	"daily-tasks/internal/store"
)

// Store keeps tasks in the local SQLite database.
type Store struct {
	repo *repository.TaskRepository
}

var _ store.TaskStore = (*Store)(nil)

func New(repo *repository.TaskRepository) *Store {
	return &Store{repo: repo}
}

func (s *Store) FetchAll(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, store.Persistence("fetch tasks", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

func (s *Store) Add(ctx context.Context, task model.Task) error {
	if err := s.repo.Create(ctx, &task); err != nil {
		return store.Persistence("add task", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, id string, patch model.TaskPatch) error {
	return mapErr("update task", id, s.repo.Update(ctx, id, patch))
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return mapErr("delete task", id, s.repo.Delete(ctx, id))
}

func (s *Store) ClearOneTime(ctx context.Context) error {
	if _, err := s.repo.DeleteOneTime(ctx); err != nil {
		return store.Persistence("clear one-time tasks", err)
	}
	return nil
}

func (s *Store) ResetRecurring(ctx context.Context, instances []model.Task) error {
	if err := s.repo.ReplaceRecurring(ctx, instances); err != nil {
		return store.Persistence("reset recurring tasks", err)
	}
	return nil
}

func mapErr(op, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s %s: %w", op, id, store.ErrNotFound)
	default:
		return store.Persistence(op, err)
	}
}
