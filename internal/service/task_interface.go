package service

import (
	"context"
	"todoList/internal/models/task"

	"github.com/google/uuid"
)

// TaskRepository - граница долговременного хранилища.
// List обязан отдавать задачи по created_at по убыванию.
type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	Delete(context.Context, uuid.UUID) error
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	List(context.Context) ([]*task.Task, error)
}
