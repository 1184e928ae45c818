package create_appointment

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	createAppointment "github.com/m04kA/SMC-AvailabilityService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

var (
	errInvalidDate = errors.New("invalid date")
	errInvalidTime = errors.New("invalid start time")
	// errPhoneNotAllowed клиентский телефон может указать только сам мастер (запись без аккаунта)
	errPhoneNotAllowed = errors.New("client phone is accepted only from the provider")
)

// CreateAppointmentRequest HTTP request model
// Клиент с аккаунтом берется из X-User-ID; clientPhone передает мастер, записывающий клиента без аккаунта
type CreateAppointmentRequest struct {
	ProviderID      int64   `json:"providerId"`
	ClientPhone     *string `json:"clientPhone,omitempty"`
	ServiceName     string  `json:"serviceName"`
	Date            string  `json:"date"`      // "2025-10-15"
	StartTime       string  `json:"startTime"` // "10:00"
	DurationMinutes int     `json:"durationMinutes"`
	Notes           *string `json:"notes,omitempty"`
}

// BlockedResponse тело ответа 403 для заблокированного клиента
type BlockedResponse struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	UnblocksAt string `json:"unblocksAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(userID *int64) (*createAppointment.Request, error) {
	isProvider := userID != nil && *userID == r.ProviderID
	if r.ClientPhone != nil && !isProvider {
		return nil, errPhoneNotAllowed
	}

	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, errInvalidDate
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, errInvalidTime
	}

	req := &createAppointment.Request{
		ProviderID:      r.ProviderID,
		ClientPhone:     r.ClientPhone,
		ServiceName:     r.ServiceName,
		Date:            date,
		StartTime:       startTime,
		DurationMinutes: r.DurationMinutes,
		Notes:           r.Notes,
	}
	if r.ClientPhone == nil {
		req.ClientID = userID
	}
	return req, nil
}
