package dto

import (
	"time"
	"todoList/internal/models/task"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Content      string     `json:"content"`
	ReminderTime *time.Time `json:"reminder_time,omitempty"`
}

// SetFlagRequest - тело PUT /tasks/{id}/completed и /starred
type SetFlagRequest struct {
	Value *bool `json:"value"`
}

type LocationRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type TaskResponse struct {
	UUID         uuid.UUID  `json:"id"`
	Content      string     `json:"content"`
	CreatedAt    time.Time  `json:"created_at"`
	Completed    bool       `json:"completed"`
	Starred      bool       `json:"starred"`
	Trashed      bool       `json:"trashed"`
	ReminderTime *time.Time `json:"reminder_time,omitempty"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		UUID:         t.UUID,
		Content:      t.Content,
		CreatedAt:    t.CreatedAt,
		Completed:    t.Completed,
		Starred:      t.Starred,
		Trashed:      t.Trashed,
		ReminderTime: t.ReminderTime,
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}
