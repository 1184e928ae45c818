package provider_settings

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/settings"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/settings/models"
)

const (
	msgInvalidProviderID  = "некорректный ID мастера"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "настройки меняет только сам мастер"
	msgSpecialDayNotFound = "особый день не найден"
	msgWorkingDayNotFound = "рабочий день не настроен"
	msgMissingPeriod      = "параметры from и to обязательны, период не больше года"
)

const specialHoursRangeLimit = 366 * 24 * time.Hour

type Handler struct {
	service SettingsService
	logger  Logger
}

func NewHandler(service SettingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// GetBusinessHours GET /api/v1/providers/{providerId}/business-hours
func (h *Handler) GetBusinessHours(w http.ResponseWriter, r *http.Request) {
	providerID, ok := h.providerID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.GetBusinessHours(r.Context(), providerID)
	if err != nil {
		h.respondError(w, "GET /providers/{id}/business-hours", err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// UpdateBusinessHours PUT /api/v1/providers/{providerId}/business-hours
// Дни недели в теле запроса нумеруются с понедельника (0) по воскресенье (6)
func (h *Handler) UpdateBusinessHours(w http.ResponseWriter, r *http.Request) {
	providerID, userID, ok := h.writer(w, r)
	if !ok {
		return
	}

	var req models.UpdateBusinessHoursRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.UserID, req.ProviderID = userID, providerID

	resp, err := h.service.UpdateBusinessHours(r.Context(), &req)
	if err != nil {
		h.respondError(w, "PUT /providers/{id}/business-hours", err)
		return
	}

	h.logger.Info("PUT /providers/{id}/business-hours - Saved: provider_id=%d", providerID)
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// ListSpecialHours GET /api/v1/providers/{providerId}/special-hours?from=&to=
func (h *Handler) ListSpecialHours(w http.ResponseWriter, r *http.Request) {
	providerID, ok := h.providerID(w, r)
	if !ok {
		return
	}

	from, errFrom := handlers.QueryDate(r, "from")
	to, errTo := handlers.QueryDate(r, "to")
	if errFrom != nil || errTo != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	if from == nil || to == nil || to.Sub(*from) > specialHoursRangeLimit {
		handlers.RespondBadRequest(w, msgMissingPeriod)
		return
	}

	resp, err := h.service.ListSpecialHours(r.Context(), providerID, *from, *to)
	if err != nil {
		h.respondError(w, "GET /providers/{id}/special-hours", err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// UpsertSpecialHours PUT /api/v1/providers/{providerId}/special-hours/{date}
func (h *Handler) UpsertSpecialHours(w http.ResponseWriter, r *http.Request) {
	providerID, userID, ok := h.writer(w, r)
	if !ok {
		return
	}
	date, ok := h.date(w, r)
	if !ok {
		return
	}

	var req models.UpsertSpecialHoursRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.UserID, req.ProviderID, req.Date = userID, providerID, date

	resp, err := h.service.UpsertSpecialHours(r.Context(), &req)
	if err != nil {
		h.respondError(w, "PUT /providers/{id}/special-hours/{date}", err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// DeleteSpecialHours DELETE /api/v1/providers/{providerId}/special-hours/{date}
func (h *Handler) DeleteSpecialHours(w http.ResponseWriter, r *http.Request) {
	providerID, userID, ok := h.writer(w, r)
	if !ok {
		return
	}
	date, ok := h.date(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSpecialHours(r.Context(), userID, providerID, date); err != nil {
		h.respondError(w, "DELETE /providers/{id}/special-hours/{date}", err)
		return
	}
	handlers.RespondNoContent(w)
}

// GetWorkingDay GET /api/v1/providers/{providerId}/working-days/{date}
func (h *Handler) GetWorkingDay(w http.ResponseWriter, r *http.Request) {
	providerID, ok := h.providerID(w, r)
	if !ok {
		return
	}
	date, ok := h.date(w, r)
	if !ok {
		return
	}

	resp, err := h.service.GetWorkingDay(r.Context(), providerID, date)
	if err != nil {
		h.respondError(w, "GET /providers/{id}/working-days/{date}", err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// UpsertWorkingDay PUT /api/v1/providers/{providerId}/working-days/{date}
func (h *Handler) UpsertWorkingDay(w http.ResponseWriter, r *http.Request) {
	providerID, userID, ok := h.writer(w, r)
	if !ok {
		return
	}
	date, ok := h.date(w, r)
	if !ok {
		return
	}

	var req models.UpsertWorkingDayRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.UserID, req.ProviderID, req.Date = userID, providerID, date

	resp, err := h.service.UpsertWorkingDay(r.Context(), &req)
	if err != nil {
		h.respondError(w, "PUT /providers/{id}/working-days/{date}", err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// DeleteWorkingDay DELETE /api/v1/providers/{providerId}/working-days/{date}
func (h *Handler) DeleteWorkingDay(w http.ResponseWriter, r *http.Request) {
	providerID, userID, ok := h.writer(w, r)
	if !ok {
		return
	}
	date, ok := h.date(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteWorkingDay(r.Context(), userID, providerID, date); err != nil {
		h.respondError(w, "DELETE /providers/{id}/working-days/{date}", err)
		return
	}
	handlers.RespondNoContent(w)
}

// GetPolicy GET /api/v1/providers/{providerId}/cancellation-policy
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	providerID, userID, ok := h.writer(w, r)
	if !ok {
		return
	}

	resp, err := h.service.GetPolicy(r.Context(), userID, providerID)
	if err != nil {
		h.respondError(w, "GET /providers/{id}/cancellation-policy", err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// UpdatePolicy PUT /api/v1/providers/{providerId}/cancellation-policy
func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	providerID, userID, ok := h.writer(w, r)
	if !ok {
		return
	}

	var req models.UpdatePolicyRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.UserID, req.ProviderID = userID, providerID

	resp, err := h.service.UpdatePolicy(r.Context(), &req)
	if err != nil {
		h.respondError(w, "PUT /providers/{id}/cancellation-policy", err)
		return
	}

	h.logger.Info("PUT /providers/{id}/cancellation-policy - Saved: provider_id=%d, enabled=%t",
		providerID, resp.IsEnabled)
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// Вспомогательные методы

func (h *Handler) providerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return 0, false
	}
	return providerID, true
}

func (h *Handler) writer(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	providerID, ok := h.providerID(w, r)
	if !ok {
		return 0, 0, false
	}
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return 0, 0, false
	}
	return providerID, userID, true
}

func (h *Handler) date(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	date, err := handlers.PathDate(r, "date")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return time.Time{}, false
	}
	return date, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := handlers.DecodeJSON(r, dst); err != nil {
		h.logger.Warn("%s %s - Invalid request body: %v", r.Method, r.URL.Path, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, settings.ErrInvalidInput):
		h.logger.Warn("%s - Validation failed: %v", route, err)
		handlers.RespondBadRequest(w, err.Error())

	case errors.Is(err, settings.ErrAccessDenied):
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, settings.ErrSpecialHoursNotFound):
		handlers.RespondNotFound(w, msgSpecialDayNotFound)

	case errors.Is(err, settings.ErrWorkingDayNotFound):
		handlers.RespondNotFound(w, msgWorkingDayNotFound)

	default:
		h.logger.Error("%s - Failed: %v", route, err)
		handlers.RespondInternalError(w)
	}
}
