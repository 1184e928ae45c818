package get_effective_hours

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/schedule"
)

const (
	msgInvalidProviderID = "некорректный ID мастера"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
)

// EffectiveHoursResponse HTTP response model
type EffectiveHoursResponse struct {
	Date           string  `json:"date"`
	IsOpen         bool    `json:"isOpen"`
	OpenTime       string  `json:"openTime,omitempty"`
	CloseTime      string  `json:"closeTime,omitempty"`
	IsSpecialDay   bool    `json:"isSpecialDay"`
	SpecialDayName *string `json:"specialDayName,omitempty"`
	Source         string  `json:"source"`
}

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/effective-hours?date=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	date, err := time.Parse(domain.DateFormat, r.URL.Query().Get("date"))
	if err != nil {
		h.logger.Warn("GET /providers/{id}/effective-hours - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	hours, err := h.service.GetEffectiveHours(r.Context(), providerID, date)
	if err != nil {
		if errors.Is(err, schedule.ErrResolutionFailed) {
			h.logger.Warn("GET /providers/{id}/effective-hours - Resolution failed: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondServiceUnavailable(w)
			return
		}
		h.logger.Error("GET /providers/{id}/effective-hours - Failed: provider_id=%d, error=%v", providerID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, &EffectiveHoursResponse{
		Date:           date.Format(domain.DateFormat),
		IsOpen:         hours.IsOpen,
		OpenTime:       hours.OpenTime.String(),
		CloseTime:      hours.CloseTime.String(),
		IsSpecialDay:   hours.IsSpecialDay,
		SpecialDayName: hours.SpecialDayName,
		Source:         string(hours.Source),
	})
}
