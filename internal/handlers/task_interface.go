package handlers

import (
	"context"
	"time"
	"todoList/internal/models/task"
	"todoList/internal/presenter"
	"todoList/internal/weather"

	"github.com/google/uuid"
)

type Service interface {
	HealthCheck(context.Context) error
	Add(context.Context, string, *time.Time) (*task.Task, error)
	GetTask(context.Context, uuid.UUID) (*task.Task, error)
	List(context.Context) ([]*task.Task, error)
	SetCompleted(context.Context, uuid.UUID, bool) (*task.Task, error)
	SetStarred(context.Context, uuid.UUID, bool) (*task.Task, error)
	SetTrashed(context.Context, uuid.UUID, bool) (*task.Task, error)
	ToggleCompleted(context.Context, uuid.UUID) (*task.Task, error)
	ToggleStarred(context.Context, uuid.UUID) (*task.Task, error)
	Remove(context.Context, uuid.UUID) error
}

// Views - готовые снимки списков
type Views interface {
	VisibleTasks() presenter.View
	TrashedTasks() presenter.View
}

type WeatherState interface {
	State() weather.State
}

type WeatherEvents interface {
	Activate() bool
	LocationUpdated(lat, lon float64) bool
}
