package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"
	"todoList/internal/logger"
	"todoList/internal/metrics"
	"todoList/internal/models/task"
	repo "todoList/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	backend       = "postgres"
	slowThreshold = 100 * time.Millisecond
)

const taskColumns = `uuid, content, created_at, completed, starred, trashed, reminder_time`

type PoolSettings struct {
	MaxConns    int32
	MinConns    int32
	IdleTimeout time.Duration
}

type Storage struct {
	pool       *pgxpool.Pool
	connString string
}

func New(ctx context.Context, connString string, settings PoolSettings) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	if settings.MaxConns > 0 {
		config.MaxConns = settings.MaxConns
	}
	if settings.MinConns > 0 {
		config.MinConns = settings.MinConns
	}
	if settings.IdleTimeout > 0 {
		config.MaxConnIdleTime = settings.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool, connString: connString}, nil
}

func (s *Storage) Close() {
	if s.pool == nil {
		return
	}
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	logger.Debug("Repository: Соединение стабильно", zap.String("backend", backend))
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer observe("create", start)

	query := `INSERT INTO todo_tasks
				(uuid, content, created_at, completed, starred, trashed, reminder_time)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		taskToCreate.UUID,
		taskToCreate.Content,
		taskToCreate.CreatedAt,
		taskToCreate.Completed,
		taskToCreate.Starred,
		taskToCreate.Trashed,
		taskToCreate.ReminderTime,
	)
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}
	return nil
}

// обновляются только изменяемые поля, uuid и created_at неизменны
func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()
	defer observe("update", start)

	query := `UPDATE todo_tasks
			SET content = $1,
				completed = $2,
				starred = $3,
				trashed = $4
			WHERE uuid = $5`

	tag, err := s.pool.Exec(ctx, query,
		taskToUpdate.Content,
		taskToUpdate.Completed,
		taskToUpdate.Starred,
		taskToUpdate.Trashed,
		taskToUpdate.UUID,
	)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("обновление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// полное удаление из БД
func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer observe("delete", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM todo_tasks WHERE uuid = $1`, id)
	if err != nil {
		logger.Error("Repository: Полное удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("полное удаление: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()
	defer observe("get", start)

	query := `SELECT ` + taskColumns + ` FROM todo_tasks WHERE uuid = $1`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

// все задачи, новые сверху; при равном created_at выше та, что вставлена позже
func (s *Storage) List(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()
	defer observe("list", start)

	query := `SELECT ` + taskColumns + `
				FROM todo_tasks
				ORDER BY created_at DESC, seq DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	return tasks, nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.UUID,
		&t.Content,
		&t.CreatedAt,
		&t.Completed,
		&t.Starred,
		&t.Trashed,
		&t.ReminderTime,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func observe(operation string, start time.Time) {
	metrics.ObserveStoreQuery(backend, operation, start)
	if elapsed := time.Since(start); elapsed > slowThreshold {
		logger.Warn("Repository: Медленный запрос",
			zap.String("operation", operation),
			zap.Duration("ms", elapsed))
	}
}
