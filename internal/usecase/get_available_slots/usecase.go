package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/schedule"
	"github.com/m04kA/SMC-AvailabilityService/pkg/ptr"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// UseCase use case для получения слотов мастера на дату
type UseCase struct {
	schedule        ScheduleService
	appointmentRepo AppointmentRepository
	timeProvider    TimeProvider
	location        *time.Location
	maxAdvanceDays  int
	recorder        Recorder
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	schedule ScheduleService,
	appointmentRepo AppointmentRepository,
	timeProvider TimeProvider,
	location *time.Location,
	maxAdvanceDays int,
	recorder Recorder,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		schedule:        schedule,
		appointmentRepo: appointmentRepo,
		timeProvider:    timeProvider,
		location:        location,
		maxAdvanceDays:  maxAdvanceDays,
		recorder:        recorder,
		logger:          logger,
	}
}

// Execute выполняет use case получения слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: provider=%d, date=%s, duration=%d",
		req.ProviderID, req.Date.Format(domain.DateFormat), req.DurationMinutes)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Текущее время берем один раз на весь запрос
	now := uc.timeProvider.Now().In(uc.location)
	date := domain.InLocation(req.Date, uc.location)

	if err := validateDate(date, now, uc.location, uc.maxAdvanceDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 3. Расписание дня: часы работы, шаг слотов, перерывы
	day, err := uc.schedule.GetDaySchedule(ctx, req.ProviderID, date)
	if err != nil {
		if errors.Is(err, schedule.ErrResolutionFailed) {
			return nil, fmt.Errorf("%w: %v", ErrScheduleUnavailable, err)
		}
		uc.logger.Error("GetAvailableSlots: failed to get schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = day.SlotIntervalMinutes
	}

	response := &Response{
		ProviderID:          req.ProviderID,
		Date:                date,
		Hours:               day.Hours,
		SlotIntervalMinutes: day.SlotIntervalMinutes,
		DurationMinutes:     duration,
		Slots:               []domain.Slot{},
	}

	// 4. Выходной день - слотов нет
	if !day.Hours.IsOpen {
		uc.logger.Info("GetAvailableSlots: provider=%d is closed on %s", req.ProviderID, date.Format(domain.DateFormat))
		return response, nil
	}

	// 5. Активные записи на эту дату
	appointments, err := uc.appointmentRepo.GetByProviderWithFilter(ctx, domain.AppointmentsFilter{
		ProviderID:      req.ProviderID,
		StartDate:       &date,
		EndDate:         &date,
		IncludeInactive: false,
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrScheduleUnavailable, err)
	}

	busy := make([]domain.Interval, 0, len(appointments))
	for _, a := range appointments {
		if a.IsActive() {
			busy = append(busy, a.Interval())
		}
	}

	// 6. Генерируем слоты
	params := SlotParams{
		Open:            day.Hours.OpenTime,
		Close:           day.Hours.CloseTime,
		IntervalMinutes: day.SlotIntervalMinutes,
		DurationMinutes: duration,
		Breaks:          day.Breaks,
		Appointments:    busy,
	}
	if domain.SameDay(date, now, uc.location) {
		params.Now = ptr.Ptr(types.NewTimeString(now))
	}

	slots, err := GenerateSlots(params)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}
	response.Slots = slots

	available, unavailable := countAvailability(slots)
	if uc.recorder != nil {
		uc.recorder.ObserveSlots(available, unavailable)
	}

	uc.logger.Info("GetAvailableSlots: generated %d slots (%d available) for provider=%d, date=%s",
		len(slots), available, req.ProviderID, date.Format(domain.DateFormat))

	return response, nil
}
