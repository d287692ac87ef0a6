package repository

import (
	"sort"
	"todoList/internal/models/task"
)

// SortNewestFirst упорядочивает задачи по created_at по убыванию.
// Срез должен приходить в порядке от последней вставки к первой:
// сортировка стабильная, так что при равном created_at позже добавленная задача идёт первой.
func SortNewestFirst(tasks []*task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
