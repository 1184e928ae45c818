package create_appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/appointments/models"
	createAppointment "github.com/m04kA/SMC-AvailabilityService/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты записи, ожидается YYYY-MM-DD"
	msgInvalidTime        = "некорректный формат времени начала, ожидается HH:MM"
	msgSlotConflict       = "выбранное время уже занято, выберите другое"
	msgClientBlocked      = "запись временно недоступна из-за отмен и неявок"
	msgProviderClosed     = "мастер не работает в выбранную дату"
	msgInvalidBookingDate = "дата записи в прошлом"
	msgDateTooFar         = "дата записи слишком далеко в будущем"
	msgInvalidTimeSlot    = "время вне рабочих часов или попадает на перерыв"
	msgTooLateToBook      = "выбранное время уже прошло"
	msgInvalidInput       = "некорректные данные записи"
	msgPhoneNotAllowed    = "телефон клиента может указать только мастер"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	var userID *int64
	if id, ok := middleware.GetUserID(r.Context()); ok {
		userID = &id
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		switch {
		case errors.Is(err, errPhoneNotAllowed):
			handlers.RespondBadRequest(w, msgPhoneNotAllowed)
		case errors.Is(err, errInvalidTime):
			handlers.RespondBadRequest(w, msgInvalidTime)
		default:
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var blocked *createAppointment.BlockedError
		switch {
		case errors.As(err, &blocked):
			h.logger.Warn("POST /appointments - Client blocked: provider_id=%d, unblocks_at=%s",
				req.ProviderID, blocked.UnblocksAt.Format(time.RFC3339))
			handlers.RespondJSON(w, http.StatusForbidden, &BlockedResponse{
				Code:       http.StatusForbidden,
				Message:    msgClientBlocked,
				UnblocksAt: blocked.UnblocksAt.Format(time.RFC3339),
			})

		case errors.Is(err, createAppointment.ErrClientBlocked):
			handlers.RespondForbidden(w, msgClientBlocked)

		case errors.Is(err, createAppointment.ErrSlotConflict):
			h.logger.Warn("POST /appointments - Slot conflict: provider_id=%d, date=%s, start=%s",
				req.ProviderID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotConflict)

		case errors.Is(err, createAppointment.ErrBlockCheckFailed),
			errors.Is(err, createAppointment.ErrScheduleUnavailable):
			h.logger.Warn("POST /appointments - Dependency unavailable: provider_id=%d, error=%v", req.ProviderID, err)
			handlers.RespondServiceUnavailable(w)

		case errors.Is(err, createAppointment.ErrProviderClosed):
			handlers.RespondBadRequest(w, msgProviderClosed)

		case errors.Is(err, createAppointment.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		case errors.Is(err, createAppointment.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createAppointment.ErrInvalidTimeSlot):
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, createAppointment.ErrTooLateToBook):
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: provider_id=%d, error=%v",
				req.ProviderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created: appointment_id=%d, provider_id=%d",
		result.ID, result.ProviderID)
	handlers.RespondJSON(w, http.StatusCreated, models.FromDomainAppointment(result))
}
