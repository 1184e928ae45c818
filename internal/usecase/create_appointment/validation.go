package create_appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	if req.ClientID != nil && *req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	if req.ClientID == nil && (req.ClientPhone == nil || strings.TrimSpace(*req.ClientPhone) == "") {
		return fmt.Errorf("%w: clientId or clientPhone is required", ErrInvalidInput)
	}

	if strings.TrimSpace(req.ServiceName) == "" {
		return fmt.Errorf("%w: serviceName is required", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.DurationMinutes < domain.MinServiceDurationMinutes || req.DurationMinutes > domain.MaxServiceDurationMinutes {
		return fmt.Errorf("%w: durationMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinServiceDurationMinutes, domain.MaxServiceDurationMinutes)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateDate проверяет, что запись не в прошлом и не дальше maxAdvanceDays
func validateDate(date time.Time, start types.TimeString, now time.Time, loc *time.Location, maxAdvanceDays int) error {
	today := domain.DateOnly(now, loc)

	if date.Before(today) {
		return ErrInvalidDate
	}

	if maxAdvanceDays > 0 && date.After(today.AddDate(0, 0, maxAdvanceDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, maxAdvanceDays)
	}

	// Для сегодняшней даты время начала должно быть позже текущего
	if domain.SameDay(date, now, loc) && !start.IsAfter(types.NewTimeString(now)) {
		return ErrTooLateToBook
	}

	return nil
}

// validateInterval проверяет, что интервал записи лежит в рабочих часах и не задевает перерывы
func validateInterval(interval domain.Interval, day *domain.DaySchedule) error {
	if !day.Hours.Interval().Contains(interval) {
		return fmt.Errorf("%w: %s is outside %s", ErrInvalidTimeSlot, interval, day.Hours.Interval())
	}

	if domain.OverlapsAny(interval, day.Breaks) {
		return fmt.Errorf("%w: %s overlaps a break", ErrInvalidTimeSlot, interval)
	}

	return nil
}
