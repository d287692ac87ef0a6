package presenter_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"todoList/internal/models/task"
	"todoList/internal/presenter"
	"todoList/internal/repository/task/inmemory"
	"todoList/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) List(ctx context.Context) ([]*task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockStore) Subscribe(fn func(service.Change)) func() {
	args := m.Called(fn)
	return args.Get(0).(func())
}

// pausingRepo один раз задерживает List уже после чтения, чтобы результат успел устареть
type pausingRepo struct {
	*inmemory.TaskStorage

	mtx      sync.Mutex
	armed    bool
	captured chan struct{}
	release  chan struct{}
}

func newPausingRepo() *pausingRepo {
	return &pausingRepo{
		TaskStorage: inmemory.NewTaskStorage(),
		captured:    make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (r *pausingRepo) arm() {
	r.mtx.Lock()
	r.armed = true
	r.mtx.Unlock()
}

func (r *pausingRepo) List(ctx context.Context) ([]*task.Task, error) {
	tasks, err := r.TaskStorage.List(ctx)

	r.mtx.Lock()
	pause := r.armed
	r.armed = false
	r.mtx.Unlock()

	if pause {
		close(r.captured)
		<-r.release
	}
	return tasks, err
}

func newService() *service.TaskService {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	return service.NewTaskService(inmemory.NewTaskStorage(),
		service.WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Minute)
		}))
}

func ids(tasks []*task.Task) []uuid.UUID {
	res := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, t.UUID)
	}
	return res
}

func TestPartition(t *testing.T) {
	now := time.Now()
	a := task.New(uuid.New(), "a", now, nil)
	b := task.New(uuid.New(), "b", now, nil)
	b.Trashed = true
	c := task.New(uuid.New(), "c", now, nil)

	tests := []struct {
		name        string
		input       []*task.Task
		wantVisible []*task.Task
		wantTrashed []*task.Task
	}{
		{name: "empty", input: nil, wantVisible: []*task.Task{}, wantTrashed: []*task.Task{}},
		{name: "mixed keeps order", input: []*task.Task{a, b, c}, wantVisible: []*task.Task{a, c}, wantTrashed: []*task.Task{b}},
		{name: "all trashed", input: []*task.Task{b}, wantVisible: []*task.Task{}, wantTrashed: []*task.Task{b}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visible, trashed := presenter.Partition(tt.input)
			assert.Equal(t, tt.wantVisible, visible)
			assert.Equal(t, tt.wantTrashed, trashed)
			assert.Equal(t, len(tt.input), len(visible)+len(trashed))
		})
	}
}

func TestPresenter_EmptyState(t *testing.T) {
	p := presenter.New(newService())
	require.NoError(t, p.Start(context.Background()))
	defer p.Close()

	visible := p.VisibleTasks()
	assert.True(t, visible.Empty)
	assert.Equal(t, presenter.MessageNoTasks, visible.EmptyMessage)
	assert.NotNil(t, visible.Tasks)

	trashed := p.TrashedTasks()
	assert.True(t, trashed.Empty)
	assert.Equal(t, presenter.MessageTrashEmpty, trashed.EmptyMessage)
}

func TestPresenter_FollowsStoreChanges(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	p := presenter.New(svc)
	require.NoError(t, p.Start(ctx))
	defer p.Close()

	a, err := svc.Add(ctx, "A", nil)
	require.NoError(t, err)
	b, err := svc.Add(ctx, "B", nil)
	require.NoError(t, err)
	c, err := svc.Add(ctx, "C", nil)
	require.NoError(t, err)

	visible := p.VisibleTasks()
	assert.False(t, visible.Empty)
	assert.Empty(t, visible.EmptyMessage)
	assert.Equal(t, []uuid.UUID{c.UUID, b.UUID, a.UUID}, ids(visible.Tasks))

	_, err = svc.Trash(ctx, b.UUID)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{c.UUID, a.UUID}, ids(p.VisibleTasks().Tasks))
	assert.Equal(t, []uuid.UUID{b.UUID}, ids(p.TrashedTasks().Tasks))

	_, err = svc.Restore(ctx, b.UUID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{c.UUID, b.UUID, a.UUID}, ids(p.VisibleTasks().Tasks))
	assert.True(t, p.TrashedTasks().Empty)

	require.NoError(t, svc.Remove(ctx, a.UUID))
	assert.Equal(t, []uuid.UUID{c.UUID, b.UUID}, ids(p.VisibleTasks().Tasks))
}

func TestPresenter_ViewsPartitionList(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	p := presenter.New(svc)
	require.NoError(t, p.Start(ctx))
	defer p.Close()

	for i := 0; i < 6; i++ {
		created, err := svc.Add(ctx, "task", nil)
		require.NoError(t, err)
		if i%2 == 0 {
			_, err = svc.Trash(ctx, created.UUID)
			require.NoError(t, err)
		}
	}

	all, err := svc.List(ctx)
	require.NoError(t, err)

	visible := p.VisibleTasks().Tasks
	trashed := p.TrashedTasks().Tasks
	assert.Len(t, visible, 3)
	assert.Len(t, trashed, 3)
	assert.ElementsMatch(t, ids(all), append(ids(visible), ids(trashed)...))
	for _, tk := range visible {
		assert.False(t, tk.Trashed)
	}
	for _, tk := range trashed {
		assert.True(t, tk.Trashed)
	}
}

func TestPresenter_OnChange(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	p := presenter.New(svc)

	var calls int
	var last presenter.View
	p.OnChange(func(visible, _ presenter.View) {
		calls++
		last = visible
	})

	require.NoError(t, p.Start(ctx))
	assert.Equal(t, 1, calls)
	assert.True(t, last.Empty)

	_, err := svc.Add(ctx, "observed", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, last.Tasks, 1)
	assert.Equal(t, "observed", last.Tasks[0].Content)

	p.Close()
	_, err = svc.Add(ctx, "after close", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestPresenter_RefreshErrorKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	existing := task.New(uuid.New(), "kept", time.Now(), nil)

	store := new(MockStore)
	store.On("List", mock.Anything).Return([]*task.Task{existing}, nil).Once()
	store.On("List", mock.Anything).Return(nil, errors.New("store offline")).Once()
	store.On("Subscribe", mock.Anything).Return(func() {})

	p := presenter.New(store)
	require.NoError(t, p.Start(ctx))

	err := p.Refresh(ctx)
	assert.Error(t, err)

	visible := p.VisibleTasks()
	require.Len(t, visible.Tasks, 1)
	assert.Equal(t, existing.UUID, visible.Tasks[0].UUID)

	store.AssertExpectations(t)
}

func TestPresenter_StartFailsWhenStoreFails(t *testing.T) {
	store := new(MockStore)
	store.On("List", mock.Anything).Return(nil, errors.New("store offline"))

	p := presenter.New(store)
	err := p.Start(context.Background())
	assert.Error(t, err)
	store.AssertNotCalled(t, "Subscribe", mock.Anything)
}

func TestPresenter_ConcurrentRefreshesKeepNewestSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := newPausingRepo()
	svc := service.NewTaskService(repo)
	p := presenter.New(svc)
	require.NoError(t, p.Start(ctx))
	defer p.Close()

	a, err := svc.Add(ctx, "A", nil)
	require.NoError(t, err)
	b, err := svc.Add(ctx, "B", nil)
	require.NoError(t, err)

	repo.arm()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.Trash(ctx, a.UUID)
		assert.NoError(t, err)
	}()

	select {
	case <-repo.captured:
	case <-time.After(time.Second):
		t.Fatal("обновление после Trash(A) не дошло до List")
	}

	// Trash(B) записывается, пока первое обновление держит устаревший список
	go func() {
		defer wg.Done()
		_, err := svc.Trash(ctx, b.UUID)
		assert.NoError(t, err)
	}()
	require.Eventually(t, func() bool {
		got, err := repo.GetByID(ctx, b.UUID)
		return err == nil && got.Trashed
	}, time.Second, time.Millisecond)

	close(repo.release)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("мутации не завершились")
	}

	all, err := svc.List(ctx)
	require.NoError(t, err)
	for _, tk := range all {
		require.True(t, tk.Trashed)
	}

	assert.Empty(t, p.VisibleTasks().Tasks)
	assert.ElementsMatch(t, []uuid.UUID{a.UUID, b.UUID}, ids(p.TrashedTasks().Tasks))
}
