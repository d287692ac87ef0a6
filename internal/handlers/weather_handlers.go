package handlers

import (
	"encoding/json"
	"net/http"
	"todoList/internal/handlers/dto"
	"todoList/internal/logger"
	"todoList/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// WeatherHandler никогда не отдаёт ошибку из-за неудачного запроса погоды:
// события только ставятся в очередь воркера.
type WeatherHandler struct {
	Widget WeatherState
	Events WeatherEvents
}

func NewWeatherHandler(widget WeatherState, events WeatherEvents) *WeatherHandler {
	return &WeatherHandler{
		Widget: widget,
		Events: events,
	}
}

// Routes монтирует /weather
func (h *WeatherHandler) Routes(r chi.Router) {
	r.Get("/", h.GetWeather)              // GET /weather
	r.Post("/location", h.UpdateLocation) // POST /weather/location
	r.Post("/activate", h.Activate)       // POST /weather/activate
}

func (h *WeatherHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	state := h.Widget.State()
	payload := []Payload{toPayload("icon", state.Icon)}
	if !state.UpdatedAt.IsZero() {
		payload = append(payload, toPayload("updated_at", state.UpdatedAt))
	}
	responseWithJSON(w, http.StatusOK, payload...)
}

func (h *WeatherHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !requireJSON(w, r) {
		return
	}

	var request dto.LocationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if err := validateLocation(request); err != nil {
		handleServiceError(w, r, err, "update_location")
		return
	}

	queued := h.Events.LocationUpdated(*request.Lat, *request.Lon)
	responseWithJSON(w, http.StatusAccepted, toPayload("queued", queued))
}

func (h *WeatherHandler) Activate(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	queued := h.Events.Activate()
	responseWithJSON(w, http.StatusAccepted, toPayload("queued", queued))
}

func validateLocation(request dto.LocationRequest) error {
	switch {
	case request.Lat == nil:
		return service.NewValidationError("lat", "обязательное поле")
	case request.Lon == nil:
		return service.NewValidationError("lon", "обязательное поле")
	case *request.Lat < -90 || *request.Lat > 90:
		return service.NewValidationError("lat", "должно быть в диапазоне [-90, 90]")
	case *request.Lon < -180 || *request.Lon > 180:
		return service.NewValidationError("lon", "должно быть в диапазоне [-180, 180]")
	}
	return nil
}
