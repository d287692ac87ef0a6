package worker

import (
	"context"
	"errors"
	"time"
	"todoList/internal/logger"
	"todoList/internal/weather"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// Refresher - виджет погоды, который обновляет воркер
type Refresher interface {
	Begin() uint64
	Refresh(ctx context.Context, generation uint64, coords *weather.Coordinates) error
}

type trigger struct {
	reason string
	coords *weather.Coordinates
}

// WeatherWorker обрабатывает события "приложение активно" и "новая геопозиция".
// Каждый запрос идёт в своей горутине, повторов нет.
type WeatherWorker struct {
	widget   Refresher
	interval time.Duration
	timeout  time.Duration
	triggers chan trigger
	inflight conc.WaitGroup
}

func NewWeatherWorker(widget Refresher, interval *time.Duration, timeout *time.Duration, bufferSize *int) *WeatherWorker {
	// нулевой интервал отключает периодическое обновление
	var intervalToSet time.Duration
	if interval != nil {
		intervalToSet = *interval
	}

	// нулевой или отрицательный таймаут заменяется значением по умолчанию
	timeoutToSet := 10 * time.Second
	if timeout != nil && *timeout > 0 {
		timeoutToSet = *timeout
	}

	bufferToSet := 8
	if bufferSize != nil && *bufferSize > 0 {
		bufferToSet = *bufferSize
	}

	return &WeatherWorker{
		widget:   widget,
		interval: intervalToSet,
		timeout:  timeoutToSet,
		triggers: make(chan trigger, bufferToSet),
	}
}

// Activate - приложение стало активным. Не блокирует: при полном буфере событие отбрасывается.
func (w *WeatherWorker) Activate() bool {
	return w.enqueue(trigger{reason: "activate"})
}

func (w *WeatherWorker) LocationUpdated(lat, lon float64) bool {
	return w.enqueue(trigger{
		reason: "location",
		coords: &weather.Coordinates{Lat: lat, Lon: lon},
	})
}

func (w *WeatherWorker) enqueue(t trigger) bool {
	select {
	case w.triggers <- t:
		return true
	default:
		logger.Warn("Worker: Очередь погоды переполнена, событие отброшено", zap.String("reason", t.reason))
		return false
	}
}

func (w *WeatherWorker) Start(ctx context.Context) {
	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-tick:
			w.dispatch(ctx, trigger{reason: "interval"})
		case t := <-w.triggers:
			w.dispatch(ctx, t)
		case <-ctx.Done():
			logger.Info("Worker: Обновление погоды останавливается")
			// паника в одном запросе не должна ронять остановку
			if r := w.inflight.WaitAndRecover(); r != nil {
				logger.Error("Worker: Паника при обновлении погоды", r.AsError())
			}
			return
		}
	}
}

func (w *WeatherWorker) dispatch(ctx context.Context, t trigger) {
	// поколение берётся в порядке событий, а не в порядке ответов
	generation := w.widget.Begin()

	w.inflight.Go(func() {
		w.run(ctx, generation, t)
	})
}

func (w *WeatherWorker) run(ctx context.Context, generation uint64, t trigger) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	err := w.widget.Refresh(ctx, generation, t.coords)
	if err != nil {
		if errors.Is(err, weather.ErrPermissionDenied) {
			logger.Info("Worker: Нет доступа к геопозиции, погода не обновлена", zap.String("reason", t.reason))
			return
		}
		logger.Warn("Worker: Не удалось обновить погоду",
			zap.String("reason", t.reason),
			zap.Uint64("generation", generation),
			zap.Error(err))
		return
	}

	logger.Debug("Worker: Погода обновлена",
		zap.String("reason", t.reason),
		zap.Uint64("generation", generation),
		zap.Duration("ms", time.Since(start)))
}
