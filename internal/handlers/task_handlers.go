package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
	"todoList/internal/handlers/dto"
	"todoList/internal/logger"
	"todoList/internal/models/task"
	"todoList/internal/presenter"
	"todoList/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService Service
	Views       Views
}

func NewTaskHandler(taskService Service, views Views) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
		Views:       views,
	}
}

// Routes монтирует /tasks
func (s *TaskHandler) Routes(r chi.Router) {
	r.Get("/", s.GetVisibleTasks)      // GET /tasks
	r.Post("/", s.PostTask)            // POST /tasks
	r.Get("/all", s.GetAllTasks)       // GET /tasks/all
	r.Get("/trash", s.GetTrashedTasks) // GET /tasks/trash

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.GetTaskByID)       // GET /tasks/{id}
		r.Delete("/", s.DeleteTaskByID) // DELETE /tasks/{id}

		r.Put("/completed", s.SetCompleted) // PUT /tasks/{id}/completed
		r.Put("/starred", s.SetStarred)     // PUT /tasks/{id}/starred

		r.Post("/toggle-completed", s.ToggleCompleted) // POST /tasks/{id}/toggle-completed
		r.Post("/toggle-starred", s.ToggleStarred)     // POST /tasks/{id}/toggle-starred
		r.Post("/trash", s.TrashTask)                  // POST /tasks/{id}/trash
		r.Post("/restore", s.RestoreTask)              // POST /tasks/{id}/restore
	})
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	err := s.TaskService.HealthCheck(r.Context())
	if err != nil {
		logger.Warn("HTTP: Сервис нездоров", zap.Error(err))
	}
	healthCheck(w, err)
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !requireJSON(w, r) {
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	logger.Info("HTTP: Вызов сервиса создания задач")
	created, err := s.TaskService.Add(r.Context(), request.Content, request.ReminderTime)
	if err != nil {
		handleServiceError(w, r, err, "add")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("task", dto.FromTask(created)))
}

// GetVisibleTasks - основной список без корзины
func (s *TaskHandler) GetVisibleTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")
	respondWithView(w, s.Views.VisibleTasks())
}

func (s *TaskHandler) GetTrashedTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")
	respondWithView(w, s.Views.TrashedTasks())
}

func (s *TaskHandler) GetAllTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	tasks, err := s.TaskService.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "list")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("tasks", dto.FromTaskList(tasks)),
		toPayload("count", len(tasks)),
	)
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	found, err := s.TaskService.GetTask(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.String("task_id", found.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(found)))
}

// DeleteTaskByID - окончательное удаление
func (s *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := s.TaskService.Remove(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "remove")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	responseWithJSON(w, http.StatusNoContent)
}

func (s *TaskHandler) SetCompleted(w http.ResponseWriter, r *http.Request) {
	s.setFlag(w, r, "set_completed", s.TaskService.SetCompleted)
}

func (s *TaskHandler) SetStarred(w http.ResponseWriter, r *http.Request) {
	s.setFlag(w, r, "set_starred", s.TaskService.SetStarred)
}

func (s *TaskHandler) ToggleCompleted(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "toggle_completed", s.TaskService.ToggleCompleted)
}

func (s *TaskHandler) ToggleStarred(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "toggle_starred", s.TaskService.ToggleStarred)
}

func (s *TaskHandler) TrashTask(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "trash", func(ctx context.Context, id uuid.UUID) (*task.Task, error) {
		return s.TaskService.SetTrashed(ctx, id, true)
	})
}

func (s *TaskHandler) RestoreTask(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "restore", func(ctx context.Context, id uuid.UUID) (*task.Task, error) {
		return s.TaskService.SetTrashed(ctx, id, false)
	})
}

func (s *TaskHandler) setFlag(w http.ResponseWriter, r *http.Request, operation string,
	set func(context.Context, uuid.UUID, bool) (*task.Task, error)) {
	if !requireJSON(w, r) {
		return
	}

	var request dto.SetFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if request.Value == nil {
		handleServiceError(w, r, service.NewValidationError("value", "обязательное поле"), operation)
		return
	}

	s.mutate(w, r, operation, func(ctx context.Context, id uuid.UUID) (*task.Task, error) {
		return set(ctx, id, *request.Value)
	})
}

func (s *TaskHandler) mutate(w http.ResponseWriter, r *http.Request, operation string,
	apply func(context.Context, uuid.UUID) (*task.Task, error)) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	updated, err := apply(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, operation)
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("operation", operation),
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(updated)))
}

func respondWithView(w http.ResponseWriter, view presenter.View) {
	responseWithJSON(w, http.StatusOK,
		toPayload("tasks", dto.FromTaskList(view.Tasks)),
		toPayload("count", len(view.Tasks)),
		toPayload("empty", view.Empty),
		toPayload("message", view.EmptyMessage),
	)
}
