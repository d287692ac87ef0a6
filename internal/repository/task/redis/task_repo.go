package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"todoList/internal/logger"
	"todoList/internal/metrics"
	"todoList/internal/models/task"
	repo "todoList/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	backend       = "redis"
	defaultPrefix = "todo"
	slowThreshold = 50 * time.Millisecond
)

type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix пространства ключей, по умолчанию "todo"
	Prefix string
}

// Storage хранит каждую задачу JSON-строкой под ключом {prefix}:task:{uuid},
// а порядок вставки держит в sorted set {prefix}:order со счётчиком {prefix}:seq
type Storage struct {
	rdb    *redis.Client
	prefix string
}

func New(ctx context.Context, opts Options) (*Storage, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		logger.Error("Repository: Неудачная проверка ping Redis", err, zap.String("addr", opts.Addr))
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное подключение к Redis", zap.String("addr", opts.Addr))
	return NewWithClient(rdb, opts.Prefix), nil
}

func NewWithClient(rdb *redis.Client, prefix string) *Storage {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Storage{rdb: rdb, prefix: prefix}
}

func (s *Storage) Close() {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Close(); err != nil {
		logger.Warn("Repository: Ошибка закрытия Redis", zap.Error(err))
		return
	}
	logger.Info("Repository: Соединение с Redis закрыто")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Repository: Неудачная проверка ping Redis", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	logger.Debug("Repository: Соединение стабильно", zap.String("backend", backend))
	return nil
}

func (s *Storage) taskKey(id uuid.UUID) string {
	return s.prefix + ":task:" + id.String()
}

func (s *Storage) orderKey() string {
	return s.prefix + ":order"
}

func (s *Storage) seqKey() string {
	return s.prefix + ":seq"
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer observe("create", start)

	payload, err := json.Marshal(taskToCreate)
	if err != nil {
		return fmt.Errorf("сериализация задачи: %w", err)
	}

	created, err := s.rdb.SetNX(ctx, s.taskKey(taskToCreate.UUID), payload, 0).Result()
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}
	if !created {
		return fmt.Errorf("добавление задачи: задача %s уже существует", taskToCreate.UUID)
	}

	seq, err := s.rdb.Incr(ctx, s.seqKey()).Result()
	if err == nil {
		err = s.rdb.ZAdd(ctx, s.orderKey(), redis.Z{Score: float64(seq), Member: taskToCreate.UUID.String()}).Err()
	}
	if err != nil {
		// без записи в индексе порядка задача невидима, откатываем
		s.rdb.Del(ctx, s.taskKey(taskToCreate.UUID))
		logger.Error("Repository: Не удалось записать порядок задачи", err)
		return fmt.Errorf("добавление задачи: %w", err)
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()
	defer observe("update", start)

	key := s.taskKey(taskToUpdate.UUID)

	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return repo.ErrNotFound
		}
		if err != nil {
			return err
		}

		var existing task.Task
		if err := json.Unmarshal(raw, &existing); err != nil {
			return fmt.Errorf("десериализация задачи: %w", err)
		}

		updated := taskToUpdate.Clone()
		updated.CreatedAt = existing.CreatedAt
		payload, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("сериализация задачи: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}, key)

	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("обновление задачи: %w", err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer observe("delete", start)

	var del *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.taskKey(id))
		pipe.ZRem(ctx, s.orderKey(), id.String())
		return nil
	})
	if err != nil {
		logger.Error("Repository: Полное удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("полное удаление: %w", err)
	}
	if del.Val() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()
	defer observe("get", start)

	raw, err := s.rdb.Get(ctx, s.taskKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	t := &task.Task{}
	if err := json.Unmarshal(raw, t); err != nil {
		return nil, fmt.Errorf("десериализация задачи: %w", err)
	}
	return t, nil
}

func (s *Storage) List(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()
	defer observe("list", start)

	// от последней вставки к первой
	ids, err := s.rdb.ZRevRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		logger.Error("Repository: Не удалось получить порядок задач", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	tasks := []*task.Task{}
	if len(ids) == 0 {
		return tasks, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.prefix + ":task:" + id
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// индекс пережил запись, пропускаем
			logger.Warn("Repository: Задача из индекса отсутствует", zap.String("task_id", ids[i]))
			continue
		}
		t := &task.Task{}
		if err := json.Unmarshal([]byte(raw), t); err != nil {
			return nil, fmt.Errorf("десериализация задачи %s: %w", ids[i], err)
		}
		tasks = append(tasks, t)
	}

	repo.SortNewestFirst(tasks)
	return tasks, nil
}

func observe(operation string, start time.Time) {
	metrics.ObserveStoreQuery(backend, operation, start)
	if elapsed := time.Since(start); elapsed > slowThreshold {
		logger.Warn("Repository: Медленный запрос",
			zap.String("operation", operation),
			zap.Duration("ms", elapsed))
	}
}
