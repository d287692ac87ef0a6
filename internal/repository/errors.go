package repository

import "errors"

var (
	ErrNotFound = errors.New("задача не найдена")
	// ErrUnavailable возвращается, когда хранилище закрыто или недоступно
	ErrUnavailable = errors.New("хранилище недоступно")
)
