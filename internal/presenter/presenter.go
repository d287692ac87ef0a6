package presenter

import (
	"context"
	"fmt"
	"sync"
	"todoList/internal/logger"
	"todoList/internal/models/task"
	"todoList/internal/service"

	"go.uber.org/zap"
)

const (
	MessageNoTasks    = "No tasks yet"
	MessageTrashEmpty = "Trash is empty"
)

// Store - то, что презентеру нужно от сервиса задач
type Store interface {
	List(ctx context.Context) ([]*task.Task, error)
	Subscribe(fn func(service.Change)) (unsubscribe func())
}

// View - снимок одного списка для отображения
type View struct {
	Tasks        []*task.Task
	Empty        bool
	EmptyMessage string
}

func newView(tasks []*task.Task, emptyMessage string) View {
	v := View{Tasks: tasks, Empty: len(tasks) == 0}
	if v.Empty {
		v.EmptyMessage = emptyMessage
	}
	return v
}

// Partition делит задачи на видимые и удалённые в корзину с сохранением порядка
func Partition(tasks []*task.Task) (visible, trashed []*task.Task) {
	visible = make([]*task.Task, 0, len(tasks))
	trashed = make([]*task.Task, 0)
	for _, t := range tasks {
		if t.Trashed {
			trashed = append(trashed, t)
		} else {
			visible = append(visible, t)
		}
	}
	return visible, trashed
}

type Presenter struct {
	store Store

	// refreshMtx держится от List до записи снимка, иначе старый List может перетереть новый
	refreshMtx sync.Mutex

	mtx         sync.RWMutex
	visible     []*task.Task
	trashed     []*task.Task
	unsubscribe func()
	listeners   []func(visible, trashed View)
}

func New(store Store) *Presenter {
	return &Presenter{
		store:   store,
		visible: []*task.Task{},
		trashed: []*task.Task{},
	}
}

// Start строит начальные снимки и подписывается на изменения хранилища
func (p *Presenter) Start(ctx context.Context) error {
	if err := p.Refresh(ctx); err != nil {
		return fmt.Errorf("начальная загрузка списка: %w", err)
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.unsubscribe == nil {
		p.unsubscribe = p.store.Subscribe(func(c service.Change) {
			if err := p.Refresh(context.Background()); err != nil {
				logger.Warn("Presenter: Не удалось обновить список после изменения",
					zap.String("change", string(c.Kind)),
					zap.String("task_id", c.TaskID.String()),
					zap.Error(err))
			}
		})
	}
	return nil
}

// Refresh перечитывает хранилище. При ошибке остаётся предыдущий снимок.
// Обновления выполняются строго по одному, наблюдатели вызываются в том же порядке.
// Наблюдатель не должен вызывать Refresh.
func (p *Presenter) Refresh(ctx context.Context) error {
	p.refreshMtx.Lock()
	defer p.refreshMtx.Unlock()

	tasks, err := p.store.List(ctx)
	if err != nil {
		return err
	}
	visible, trashed := Partition(tasks)

	p.mtx.Lock()
	p.visible = visible
	p.trashed = trashed
	listeners := append([]func(visible, trashed View){}, p.listeners...)
	p.mtx.Unlock()

	logger.Debug("Presenter: Снимки обновлены",
		zap.Int("visible", len(visible)),
		zap.Int("trashed", len(trashed)))

	for _, fn := range listeners {
		fn(newView(visible, MessageNoTasks), newView(trashed, MessageTrashEmpty))
	}
	return nil
}

// OnChange регистрирует наблюдателя свежих снимков
func (p *Presenter) OnChange(fn func(visible, trashed View)) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *Presenter) VisibleTasks() View {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return newView(cloneAll(p.visible), MessageNoTasks)
}

func (p *Presenter) TrashedTasks() View {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return newView(cloneAll(p.trashed), MessageTrashEmpty)
}

func (p *Presenter) Close() {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
}

func cloneAll(tasks []*task.Task) []*task.Task {
	res := make([]*task.Task, len(tasks))
	for i, t := range tasks {
		res[i] = t.Clone()
	}
	return res
}
