package handlers

import (
	"errors"
	"net/http"
	"todoList/internal/logger"
	"todoList/internal/service"

	"go.uber.org/zap"
)

// handleServiceError отвечает клиенту по ошибке сервиса. Неизвестные ошибки - 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		if statusCode >= http.StatusInternalServerError {
			logger.Error("HTTP: Ошибка хранилища", err,
				zap.String("operation", operation),
				zap.String("error_code", businessErr.Code),
				zap.Int("http_status", statusCode))
		} else {
			logger.Warn("HTTP: Бизнес-ошибка",
				zap.String("operation", operation),
				zap.String("error_code", businessErr.Code),
				zap.Int("http_status", statusCode),
				zap.String("client_ip", r.RemoteAddr))
		}

		responseWithJSON(w, statusCode,
			toPayload("error", businessErr.Code),
			toPayload("message", businessErr.Message),
			toPayload("details", businessErr.Details),
		)
		return
	}

	logger.Error("HTTP: Ошибка Service", err,
		zap.String("operation", operation),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodePersistenceFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
