package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"todoList/internal/config"
	"todoList/internal/handlers"
	"todoList/internal/logger"
	"todoList/internal/middleware"
	"todoList/internal/presenter"
	"todoList/internal/repository/task/inmemory"
	"todoList/internal/repository/task/postgres"
	redisrepo "todoList/internal/repository/task/redis"
	"todoList/internal/service"
	"todoList/internal/weather"
	"todoList/internal/worker"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

type App struct {
	config     *config.Config
	server     *http.Server
	router     *chi.Mux
	repository service.TaskRepository // интерфейс!
	service    *service.TaskService
	presenter  *presenter.Presenter
	widget     *weather.Widget
	worker     *worker.WeatherWorker
	shutdowns  []func() // функции для graceful shutdown

	workerCancel context.CancelFunc
	workerDone   conc.WaitGroup
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	if err := a.initRepository(ctx); err != nil {
		a.Shutdown()
		return nil, err
	}

	a.service = service.NewTaskService(a.repository)

	a.presenter = presenter.New(a.service)
	if err := a.presenter.Start(ctx); err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("запуск презентера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, a.presenter.Close)

	a.initWeather()
	a.initRouter()

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.server.Addr))
	return a, nil
}

func (a *App) initRepository(ctx context.Context) error {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		db := a.config.Database
		storage, err := postgres.New(ctx, db.URL, postgres.PoolSettings{
			MaxConns:    int32(db.MaxConnections),
			MinConns:    int32(db.MinConnections),
			IdleTimeout: db.IdleTimeout,
		})
		if err != nil {
			return fmt.Errorf("подключение к postgres: %w", err)
		}
		a.shutdowns = append(a.shutdowns, storage.Close)

		if db.Migrate {
			if err := storage.Migrate(); err != nil {
				return fmt.Errorf("миграции postgres: %w", err)
			}
		}
		a.repository = storage

	case config.RepositoryRedis:
		rc := a.config.Redis
		storage, err := redisrepo.New(ctx, redisrepo.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
			Prefix:   rc.Prefix,
		})
		if err != nil {
			return fmt.Errorf("подключение к redis: %w", err)
		}
		a.shutdowns = append(a.shutdowns, storage.Close)
		a.repository = storage

	default:
		storage := inmemory.NewTaskStorage()
		a.shutdowns = append(a.shutdowns, storage.Close)
		a.repository = storage
	}

	logger.Info("Хранилище готово", zap.String("type", a.config.Repository.Type))
	return nil
}

func (a *App) initWeather() {
	wc := a.config.Weather
	if wc.APIKey == "" {
		logger.Warn("Weather: Ключ API не задан, значок погоды обновляться не будет")
	}

	client := weather.NewClient(wc.BaseURL, wc.APIKey, wc.Timeout)
	location := weather.StaticLocation{
		Coords:  weather.Coordinates{Lat: wc.Location.Lat, Lon: wc.Location.Lon},
		Enabled: wc.Location.Enabled,
	}

	a.widget = weather.NewWidget(client, location)

	interval := wc.RefreshInterval
	timeout := wc.Timeout
	queueSize := wc.QueueSize
	a.worker = worker.NewWeatherWorker(a.widget, &interval, &timeout, &queueSize)
}

func (a *App) initRouter() {
	taskHandler := handlers.NewTaskHandler(a.service, a.presenter)
	weatherHandler := handlers.NewWeatherHandler(a.widget, a.worker)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:         300,
	}))

	r.Get("/health", taskHandler.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if a.config.Server.RequestTimeout > 0 {
			r.Use(middleware.Timeout(a.config.Server.RequestTimeout))
		}
		if a.config.RateLimit.RequestsPerMinute > 0 {
			r.Use(middleware.RateLimit(a.config.RateLimit.RequestsPerMinute))
		}

		r.Route("/tasks", taskHandler.Routes)
		r.Route("/weather", weatherHandler.Routes)
	})

	a.router = r
}

// Router - корневой обработчик, нужен и для тестов
func (a *App) Router() http.Handler {
	return a.router
}

// Run запускает воркер погоды и HTTP сервер, блокируется до отмены ctx
func (a *App) Run(ctx context.Context) error {
	workerCtx, cancel := context.WithCancel(ctx)
	a.workerCancel = cancel
	a.workerDone.Go(func() {
		a.worker.Start(workerCtx)
	})
	// первое обновление погоды при старте
	a.worker.Activate()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		a.Shutdown()
		if ok {
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Получен сигнал остановки")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки HTTP сервера", err)
	}

	a.Shutdown()
	return nil
}

// Shutdown останавливает воркер и освобождает ресурсы в обратном порядке
func (a *App) Shutdown() {
	if a.workerCancel != nil {
		a.workerCancel()
		a.workerDone.Wait()
		a.workerCancel = nil
	}
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
