package inmemory

import (
	"context"
	"sync"
	"time"
	"todoList/internal/logger"
	"todoList/internal/metrics"
	"todoList/internal/models/task"
	repo "todoList/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const backend = "inmemory"

type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID // порядок вставки
	closed  bool
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if s.closed {
		return repo.ErrUnavailable
	}
	logger.Debug("Repository: Соединение стабильно", zap.String("backend", backend))
	return nil
}

// Close переводит хранилище в недоступное состояние, дальнейшие операции вернут ErrUnavailable
func (s *TaskStorage) Close() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.closed = true
	logger.Info("Repository: Хранилище в памяти закрыто")
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	defer metrics.ObserveStoreQuery(backend, "create", time.Now())
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.closed {
		return repo.ErrUnavailable
	}

	s.storage[taskToCreate.UUID] = taskToCreate.Clone()
	s.ids = append(s.ids, taskToCreate.UUID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	defer metrics.ObserveStoreQuery(backend, "update", time.Now())
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.closed {
		return repo.ErrUnavailable
	}

	existed, ok := s.storage[taskToUpdate.UUID]
	if !ok {
		return repo.ErrNotFound
	}

	updated := taskToUpdate.Clone()
	// id и время создания не меняются
	updated.CreatedAt = existed.CreatedAt
	s.storage[taskToUpdate.UUID] = updated
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	defer metrics.ObserveStoreQuery(backend, "get", time.Now())
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if s.closed {
		return nil, repo.ErrUnavailable
	}

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return taskToGet.Clone(), nil
}

// полное удаление
func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	defer metrics.ObserveStoreQuery(backend, "delete", time.Now())
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.closed {
		return repo.ErrUnavailable
	}

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

// все задачи, новые сверху
func (s *TaskStorage) List(ctx context.Context) ([]*task.Task, error) {
	defer metrics.ObserveStoreQuery(backend, "list", time.Now())
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if s.closed {
		return nil, repo.ErrUnavailable
	}

	res := make([]*task.Task, 0, len(s.ids))
	for i := len(s.ids) - 1; i >= 0; i-- {
		res = append(res, s.storage[s.ids[i]].Clone())
	}
	repo.SortNewestFirst(res)

	return res, nil
}
