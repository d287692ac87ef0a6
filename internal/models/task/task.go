package task

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	UUID         uuid.UUID  `json:"uuid" db:"uuid"`
	Content      string     `json:"content" db:"content"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	Completed    bool       `json:"completed" db:"completed"`
	Starred      bool       `json:"starred" db:"starred"`
	Trashed      bool       `json:"trashed" db:"trashed"`
	ReminderTime *time.Time `json:"reminder_time,omitempty" db:"reminder_time,omitempty"`
}

// New собирает задачу с флагами по умолчанию
func New(id uuid.UUID, content string, createdAt time.Time, reminderTime *time.Time) *Task {
	t := &Task{
		UUID:      id,
		Content:   content,
		CreatedAt: createdAt,
	}
	if reminderTime != nil {
		rt := *reminderTime
		t.ReminderTime = &rt
	}
	return t
}

// Clone возвращает независимую копию, хранилища отдают наружу только копии
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.ReminderTime != nil {
		rt := *t.ReminderTime
		c.ReminderTime = &rt
	}
	return &c
}

func (t *Task) HasReminder() bool {
	return t.ReminderTime != nil
}
