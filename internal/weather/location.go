package weather

import (
	"context"
	"errors"
)

// ErrPermissionDenied - пользователь не дал доступ к геопозиции, цикл запроса завершается без значка
var ErrPermissionDenied = errors.New("нет доступа к геопозиции")

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type LocationProvider interface {
	Location(ctx context.Context) (Coordinates, error)
}

// StaticLocation отдаёт координаты из конфига. Нулевое значение считается отказом в доступе.
type StaticLocation struct {
	Coords  Coordinates
	Enabled bool
}

func (s StaticLocation) Location(ctx context.Context) (Coordinates, error) {
	if !s.Enabled {
		return Coordinates{}, ErrPermissionDenied
	}
	return s.Coords, nil
}
