package weather

import (
	"context"
	"fmt"
	"sync"
	"time"
	"todoList/internal/metrics"
)

type Resolver interface {
	ResolveIcon(ctx context.Context, lat, lon float64) (Icon, error)
}

// State - то, что видит клиент
type State struct {
	Icon      Icon      `json:"icon"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Widget хранит текущий значок. Каждый запуск получает номер поколения,
// результат старого поколения после применения нового отбрасывается.
type Widget struct {
	resolver Resolver
	location LocationProvider
	now      func() time.Time

	mtx       sync.RWMutex
	icon      Icon
	updatedAt time.Time
	issued    uint64
	applied   uint64
}

func NewWidget(resolver Resolver, location LocationProvider) *Widget {
	return &Widget{
		resolver: resolver,
		location: location,
		now:      time.Now,
		icon:     IconUnknown,
	}
}

func (w *Widget) Icon() Icon {
	w.mtx.RLock()
	defer w.mtx.RUnlock()
	return w.icon
}

func (w *Widget) State() State {
	w.mtx.RLock()
	defer w.mtx.RUnlock()
	return State{Icon: w.icon, UpdatedAt: w.updatedAt}
}

// Begin выдаёт номер поколения для нового запуска. Вызывать в порядке поступления событий.
func (w *Widget) Begin() uint64 {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	w.issued++
	return w.issued
}

// Apply записывает значок, если поколение новее уже применённого
func (w *Widget) Apply(generation uint64, icon Icon) bool {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	if generation <= w.applied {
		metrics.RecordWeatherLookup("stale")
		return false
	}
	w.applied = generation
	w.icon = icon
	w.updatedAt = w.now()
	return true
}

// Refresh выполняет один цикл: координаты, запрос, применение.
// coords == nil - координаты берутся у LocationProvider.
// При любой ошибке значок остаётся прежним, ошибка возвращается для логирования.
func (w *Widget) Refresh(ctx context.Context, generation uint64, coords *Coordinates) error {
	var at Coordinates
	if coords != nil {
		at = *coords
	} else {
		if w.location == nil {
			return ErrPermissionDenied
		}
		loc, err := w.location.Location(ctx)
		if err != nil {
			return fmt.Errorf("получение геопозиции: %w", err)
		}
		at = loc
	}

	icon, err := w.resolver.ResolveIcon(ctx, at.Lat, at.Lon)
	if err != nil {
		return err
	}
	w.Apply(generation, icon)
	return nil
}
