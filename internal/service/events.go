package service

import (
	"sync"
	"todoList/internal/models/task"

	"github.com/google/uuid"
)

type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeUpdated ChangeKind = "updated"
	ChangeRemoved ChangeKind = "removed"
)

// Change рассылается подписчикам после каждой успешной мутации.
// Task пуст для ChangeRemoved.
type Change struct {
	Kind   ChangeKind
	TaskID uuid.UUID
	Task   *task.Task
}

type subscribers struct {
	mtx    sync.RWMutex
	nextID int
	fns    map[int]func(Change)
}

func newSubscribers() *subscribers {
	return &subscribers{fns: make(map[int]func(Change))}
}

func (s *subscribers) add(fn func(Change)) func() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	id := s.nextID
	s.nextID++
	s.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mtx.Lock()
			delete(s.fns, id)
			s.mtx.Unlock()
		})
	}
}

func (s *subscribers) notify(change Change) {
	s.mtx.RLock()
	fns := make([]func(Change), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mtx.RUnlock()

	for _, fn := range fns {
		c := change
		c.Task = change.Task.Clone()
		fn(c)
	}
}
