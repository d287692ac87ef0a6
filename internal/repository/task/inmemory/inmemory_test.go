package inmemory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
	"todoList/internal/models/task"
	"todoList/internal/repository"
	"todoList/internal/repository/task/inmemory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTaskStorage_New тестирует создание хранилища
func TestTaskStorage_New(t *testing.T) {
	storage := inmemory.NewTaskStorage()
	assert.NotNil(t, storage)
}

// TestTaskStorage_HealthCheck тестирует проверку здоровья
func TestTaskStorage_HealthCheck(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	err := storage.HealthCheck(ctx)
	assert.NoError(t, err)

	storage.Close()
	err = storage.HealthCheck(ctx)
	assert.ErrorIs(t, err, repository.ErrUnavailable)
}

// TestTaskStorage_Create тестирует создание задачи
func TestTaskStorage_Create(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	taskToCreate := task.New(uuid.New(), "Test Task", time.Now(), nil)

	err := storage.Create(ctx, taskToCreate)
	require.NoError(t, err)

	retrievedTask, err := storage.GetByID(ctx, taskToCreate.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Test Task", retrievedTask.Content)
	assert.Equal(t, taskToCreate.CreatedAt, retrievedTask.CreatedAt)

	// хранилище держит копию, а не указатель вызывающего
	taskToCreate.Content = "mutated outside"
	retrievedTask, err = storage.GetByID(ctx, taskToCreate.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Test Task", retrievedTask.Content)
}

// TestTaskStorage_GetByID тестирует получение задачи по ID
func TestTaskStorage_GetByID(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	taskID := uuid.New()
	err := storage.Create(ctx, task.New(taskID, "Test Get Task", time.Now(), nil))
	require.NoError(t, err)

	retrievedTask, err := storage.GetByID(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, taskID, retrievedTask.UUID)
	assert.Equal(t, "Test Get Task", retrievedTask.Content)

	// Пытаемся получить несуществующую задачу
	_, err = storage.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestTaskStorage_Update тестирует обновление задачи
func TestTaskStorage_Update(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	created := time.Now()
	taskToCreate := task.New(uuid.New(), "Original", created, nil)
	require.NoError(t, storage.Create(ctx, taskToCreate))

	updated := taskToCreate.Clone()
	updated.Apply(task.WithCompleted(true), task.WithStarred(true), task.WithTrashed(true))
	updated.CreatedAt = created.Add(time.Hour) // не должно сохраниться

	err := storage.Update(ctx, updated)
	require.NoError(t, err)

	retrievedTask, err := storage.GetByID(ctx, taskToCreate.UUID)
	require.NoError(t, err)
	assert.True(t, retrievedTask.Completed)
	assert.True(t, retrievedTask.Starred)
	assert.True(t, retrievedTask.Trashed)
	assert.Equal(t, created, retrievedTask.CreatedAt)
}

// TestTaskStorage_Update_NonExistent тестирует обновление несуществующей задачи
func TestTaskStorage_Update_NonExistent(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	nonExistentTask := task.New(uuid.New(), "Non-existent Task", time.Now(), nil)

	err := storage.Update(ctx, nonExistentTask)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// Проверяем, что задача не создалась
	_, err = storage.GetByID(ctx, nonExistentTask.UUID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestTaskStorage_Delete тестирует полное удаление
func TestTaskStorage_Delete(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	taskID := uuid.New()
	require.NoError(t, storage.Create(ctx, task.New(taskID, "Task to purge", time.Now(), nil)))

	err := storage.Delete(ctx, taskID)
	require.NoError(t, err)

	_, err = storage.GetByID(ctx, taskID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// повторное удаление
	err = storage.Delete(ctx, taskID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestTaskStorage_List тестирует порядок выдачи
func TestTaskStorage_List(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()
	base := time.Now()

	a := task.New(uuid.New(), "A", base, nil)
	b := task.New(uuid.New(), "B", base.Add(time.Second), nil)
	// старая задача, вставленная последней
	old := task.New(uuid.New(), "old", base.Add(-time.Hour), nil)
	// та же метка времени, что у B, но вставлена позже
	tie := task.New(uuid.New(), "tie", base.Add(time.Second), nil)

	for _, tk := range []*task.Task{a, b, old, tie} {
		require.NoError(t, storage.Create(ctx, tk))
	}

	tasks, err := storage.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	contents := make([]string, 0, len(tasks))
	for _, tk := range tasks {
		contents = append(contents, tk.Content)
	}
	assert.Equal(t, []string{"tie", "B", "A", "old"}, contents)
}

// TestTaskStorage_Closed тестирует операции на закрытом хранилище
func TestTaskStorage_Closed(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()
	existing := task.New(uuid.New(), "existing", time.Now(), nil)
	require.NoError(t, storage.Create(ctx, existing))

	storage.Close()

	assert.ErrorIs(t, storage.Create(ctx, task.New(uuid.New(), "new", time.Now(), nil)), repository.ErrUnavailable)
	assert.ErrorIs(t, storage.Update(ctx, existing), repository.ErrUnavailable)
	assert.ErrorIs(t, storage.Delete(ctx, existing.UUID), repository.ErrUnavailable)

	_, err := storage.GetByID(ctx, existing.UUID)
	assert.ErrorIs(t, err, repository.ErrUnavailable)

	_, err = storage.List(ctx)
	assert.ErrorIs(t, err, repository.ErrUnavailable)
}

// TestTaskStorage_ConcurrentAccess тестирует конкурентный доступ
func TestTaskStorage_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()
	taskCount := 100
	goroutines := 10

	var wg sync.WaitGroup
	errors := make(chan error, taskCount)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := 0; j < taskCount/goroutines; j++ {
				taskToCreate := task.New(uuid.New(), fmt.Sprintf("Task %d-%d", workerID, j), time.Now(), nil)
				if err := storage.Create(ctx, taskToCreate); err != nil {
					errors <- err
				}
			}
		}(i)
	}
	wg.Wait()
	close(errors)

	for err := range errors {
		assert.NoError(t, err)
	}

	tasks, err := storage.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, taskCount)
}

// TestTaskStorage_IdsSliceConsistency тестирует согласованность среза IDs
func TestTaskStorage_IdsSliceConsistency(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()
	base := time.Now()

	tasks := make([]*task.Task, 5)
	for i := 0; i < 5; i++ {
		tasks[i] = task.New(uuid.New(), fmt.Sprintf("Task %d", i), base.Add(time.Duration(i)*time.Minute), nil)
		require.NoError(t, storage.Create(ctx, tasks[i]))
	}

	// Удаляем задачу из середины
	require.NoError(t, storage.Delete(ctx, tasks[2].UUID))

	for i, tk := range tasks {
		if i == 2 {
			_, err := storage.GetByID(ctx, tk.UUID)
			assert.Error(t, err)
			continue
		}
		retrievedTask, err := storage.GetByID(ctx, tk.UUID)
		require.NoError(t, err)
		assert.Equal(t, tk.Content, retrievedTask.Content)
	}

	allTasks, err := storage.List(ctx)
	require.NoError(t, err)
	require.Len(t, allTasks, 4)
	assert.Equal(t, "Task 4", allTasks[0].Content)
	assert.Equal(t, "Task 0", allTasks[3].Content)
}

// TestTaskStorage_EmptyList тестирует пустое хранилище
func TestTaskStorage_EmptyList(t *testing.T) {
	storage := inmemory.NewTaskStorage()

	tasks, err := storage.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}
