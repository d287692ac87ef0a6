package task

type TaskOption func(*Task)

func WithContent(content string) TaskOption {
	return func(task *Task) {
		task.Content = content
	}
}

func WithCompleted(completed bool) TaskOption {
	return func(task *Task) {
		task.Completed = completed
	}
}

func WithStarred(starred bool) TaskOption {
	return func(task *Task) {
		task.Starred = starred
	}
}

func WithTrashed(trashed bool) TaskOption {
	return func(task *Task) {
		task.Trashed = trashed
	}
}

// ToggleCompleted и ToggleStarred читают текущее значение внутри опции,
// поэтому атомарны, если применяются под блокировкой сервиса
func ToggleCompleted() TaskOption {
	return func(task *Task) {
		task.Completed = !task.Completed
	}
}

func ToggleStarred() TaskOption {
	return func(task *Task) {
		task.Starred = !task.Starred
	}
}

func (t *Task) Apply(options ...TaskOption) {
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
}
