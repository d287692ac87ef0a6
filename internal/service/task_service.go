package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"todoList/internal/logger"
	"todoList/internal/metrics"
	"todoList/internal/models/task"
	rep "todoList/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	repo  TaskRepository
	now   func() time.Time
	newID func() uuid.UUID

	// мутации выполняются строго по одной: чтение-изменение-запись
	// должно быть атомарным для переключателей
	mtx  sync.Mutex
	subs *subscribers
}

type Option func(*TaskService)

func WithClock(now func() time.Time) Option {
	return func(s *TaskService) {
		s.now = now
	}
}

func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *TaskService) {
		s.newID = newID
	}
}

func NewTaskService(repo TaskRepository, opts ...Option) *TaskService {
	s := &TaskService{
		repo:  repo,
		now:   time.Now,
		newID: uuid.New,
		subs:  newSubscribers(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe регистрирует обработчик изменений. Обработчик вызывается синхронно
// после того, как запись стала долговременной.
func (s *TaskService) Subscribe(fn func(Change)) (unsubscribe func()) {
	return s.subs.add(fn)
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

func (s *TaskService) Add(ctx context.Context, content string, reminderTime *time.Time) (*task.Task, error) {
	s.mtx.Lock()
	// постгрес хранит микросекунды, обрезаем заранее, чтобы все хранилища вели себя одинаково
	newTask := task.New(s.newID(), content, s.now().Truncate(time.Microsecond), reminderTime)
	if newTask.ReminderTime != nil {
		rt := newTask.ReminderTime.Truncate(time.Microsecond)
		newTask.ReminderTime = &rt
	}
	err := s.repo.Create(ctx, newTask)
	s.mtx.Unlock()

	if err != nil {
		metrics.RecordTaskMutation("add", "failed")
		logger.Error("Service: Не удалось сохранить задачу", err)
		return nil, NewPersistenceFailure("add", err)
	}

	metrics.RecordTaskMutation("add", "ok")
	logger.Info("Service: Задача создана",
		zap.String("task_id", newTask.UUID.String()),
		zap.Bool("reminder", newTask.HasReminder()))

	s.subs.notify(Change{Kind: ChangeAdded, TaskID: newTask.UUID, Task: newTask})
	return newTask.Clone(), nil
}

func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound(id.String())
		}
		return nil, NewPersistenceFailure("get", err)
	}
	return t, nil
}

// List возвращает все задачи, новые сверху
func (s *TaskService) List(ctx context.Context) ([]*task.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, NewPersistenceFailure("list", err)
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	return tasks, nil
}

func (s *TaskService) SetCompleted(ctx context.Context, id uuid.UUID, value bool) (*task.Task, error) {
	return s.mutate(ctx, "set_completed", id, task.WithCompleted(value))
}

func (s *TaskService) SetStarred(ctx context.Context, id uuid.UUID, value bool) (*task.Task, error) {
	return s.mutate(ctx, "set_starred", id, task.WithStarred(value))
}

func (s *TaskService) SetTrashed(ctx context.Context, id uuid.UUID, value bool) (*task.Task, error) {
	return s.mutate(ctx, "set_trashed", id, task.WithTrashed(value))
}

// Trash - мягкое удаление
func (s *TaskService) Trash(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	return s.SetTrashed(ctx, id, true)
}

func (s *TaskService) Restore(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	return s.SetTrashed(ctx, id, false)
}

func (s *TaskService) ToggleCompleted(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	return s.mutate(ctx, "toggle_completed", id, task.ToggleCompleted())
}

func (s *TaskService) ToggleStarred(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	return s.mutate(ctx, "toggle_starred", id, task.ToggleStarred())
}

// Remove - окончательное удаление
func (s *TaskService) Remove(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	err := s.repo.Delete(ctx, id)
	s.mtx.Unlock()

	if err != nil {
		return s.mutationError("remove", id, err)
	}

	metrics.RecordTaskMutation("remove", "ok")
	logger.Info("Service: Задача удалена окончательно", zap.String("task_id", id.String()))

	s.subs.notify(Change{Kind: ChangeRemoved, TaskID: id})
	return nil
}

func (s *TaskService) mutate(ctx context.Context, operation string, id uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	s.mtx.Lock()
	current, err := s.repo.GetByID(ctx, id)
	if err == nil {
		current.Apply(options...)
		err = s.repo.Update(ctx, current)
	}
	s.mtx.Unlock()

	if err != nil {
		return nil, s.mutationError(operation, id, err)
	}

	metrics.RecordTaskMutation(operation, "ok")
	logger.Info("Service: Задача обновлена",
		zap.String("operation", operation),
		zap.String("task_id", id.String()))

	s.subs.notify(Change{Kind: ChangeUpdated, TaskID: id, Task: current})
	return current.Clone(), nil
}

func (s *TaskService) mutationError(operation string, id uuid.UUID, err error) error {
	if errors.Is(err, rep.ErrNotFound) {
		metrics.RecordTaskMutation(operation, "not_found")
		logger.Info("Service: Задача не найдена",
			zap.String("operation", operation),
			zap.String("target_id", id.String()))
		return NewNotFound(id.String())
	}

	metrics.RecordTaskMutation(operation, "failed")
	logger.Error("Service: Ошибка записи в хранилище", err,
		zap.String("operation", operation),
		zap.String("task_id", id.String()))
	return NewPersistenceFailure(operation, err)
}
