package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/schedule"
	"github.com/m04kA/SMC-AvailabilityService/pkg/txmanager"
)

const (
	conflictStageDetector   = "detector"
	conflictStageConstraint = "constraint"
)

// Options настройки use case
type Options struct {
	Location       *time.Location
	MaxAdvanceDays int  // 0 - без ограничения
	AutoConfirm    bool // новая запись сразу получает статус confirmed, иначе pending
}

// UseCase use case для создания записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	schedule        ScheduleService
	blocking        BlockingService
	txManager       TransactionManager
	timeProvider    TimeProvider
	opts            Options
	recorder        Recorder
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	schedule ScheduleService,
	blocking BlockingService,
	txManager TransactionManager,
	timeProvider TimeProvider,
	opts Options,
	recorder Recorder,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &UseCase{
		appointmentRepo: appointmentRepo,
		schedule:        schedule,
		blocking:        blocking,
		txManager:       txManager,
		timeProvider:    timeProvider,
		opts:            opts,
		recorder:        recorder,
		logger:          logger,
	}
}

// Execute выполняет use case создания записи
// Проверка пересечений и вставка выполняются в одной сериализуемой транзакции:
// слоты, показанные клиенту, могли устареть
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*domain.Appointment, error) {
	client := domain.ClientRef{ID: req.ClientID, Phone: req.ClientPhone}

	uc.logger.Info("CreateAppointment: provider=%d, %s, date=%s, time=%s, duration=%d",
		req.ProviderID, client, req.Date.Format(domain.DateFormat), req.StartTime, req.DurationMinutes)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Текущее время берем один раз на весь запрос
	now := uc.timeProvider.Now().In(uc.opts.Location)
	date := domain.InLocation(req.Date, uc.opts.Location)

	if err := validateDate(date, req.StartTime, now, uc.opts.Location, uc.opts.MaxAdvanceDays); err != nil {
		uc.logger.Warn("CreateAppointment: date validation failed: %v", err)
		return nil, err
	}

	endTime, err := req.StartTime.AddMinutes(req.DurationMinutes)
	if err != nil {
		uc.logger.Warn("CreateAppointment: appointment crosses midnight: %v", err)
		return nil, fmt.Errorf("%w: appointment must end before midnight", ErrInvalidTimeSlot)
	}
	interval := domain.Interval{Start: req.StartTime, End: endTime}

	// 3. Проверяем блокировку клиента; при ошибке не угадываем, а отказываем
	status, err := uc.blocking.IsClientBlocked(ctx, client, req.ProviderID, now)
	if err != nil {
		uc.logger.Error("CreateAppointment: block check failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrBlockCheckFailed, err)
	}
	if status.Blocked {
		uc.logger.Warn("CreateAppointment: %s is blocked at provider=%d until %s",
			client, req.ProviderID, status.UnblocksAt.Format(time.RFC3339))
		return nil, &BlockedError{UnblocksAt: *status.UnblocksAt}
	}

	// 4. Проверяем, что интервал попадает в рабочие часы и не задевает перерывы
	day, err := uc.schedule.GetDaySchedule(ctx, req.ProviderID, date)
	if err != nil {
		if errors.Is(err, schedule.ErrResolutionFailed) {
			return nil, fmt.Errorf("%w: %v", ErrScheduleUnavailable, err)
		}
		uc.logger.Error("CreateAppointment: failed to get schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}
	if !day.Hours.IsOpen {
		uc.logger.Warn("CreateAppointment: provider=%d is closed on %s", req.ProviderID, date.Format(domain.DateFormat))
		return nil, ErrProviderClosed
	}
	if err := validateInterval(interval, day); err != nil {
		uc.logger.Warn("CreateAppointment: %v", err)
		return nil, err
	}

	initialStatus := domain.StatusPending
	if uc.opts.AutoConfirm {
		initialStatus = domain.StatusConfirmed
	}

	// Переменная для хранения результата
	var result *domain.Appointment

	// 5. Проверка пересечений и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Активные записи мастера на дату с блокировкой (FOR UPDATE)
		existing, err := uc.appointmentRepo.GetByProviderWithFilter(txCtx, domain.AppointmentsFilter{
			ProviderID:      req.ProviderID,
			StartDate:       &date,
			EndDate:         &date,
			IncludeInactive: false,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to get appointments: %w", ErrInternal, err)
		}

		// 5.2. Повторная проверка пересечения
		for _, a := range existing {
			if a.IsActive() && domain.Overlaps(interval, a.Interval()) {
				uc.logger.Warn("CreateAppointment: %s overlaps appointment id=%d (%s)", interval, a.ID, a.Interval())
				uc.recordConflict(conflictStageDetector)
				return ErrSlotConflict
			}
		}

		// 5.3. Создаем запись
		created, err := uc.appointmentRepo.Create(txCtx, &domain.Appointment{
			ProviderID:  req.ProviderID,
			ClientID:    req.ClientID,
			ClientPhone: req.ClientPhone,
			ServiceName: req.ServiceName,
			Date:        date,
			StartTime:   interval.Start,
			EndTime:     interval.End,
			Status:      initialStatus,
			Notes:       req.Notes,
		})
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrSlotTaken) {
				uc.recordConflict(conflictStageConstraint)
				return ErrSlotConflict
			}
			return fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrSlotConflict):
			return nil, err
		case errors.Is(err, txmanager.ErrSerialization):
			// Конкурентная транзакция заняла интервал раньше нас
			uc.logger.Warn("CreateAppointment: serialization conflict for provider=%d date=%s: %v",
				req.ProviderID, date.Format(domain.DateFormat), err)
			uc.recordConflict(conflictStageConstraint)
			return nil, ErrSlotConflict
		default:
			uc.logger.Error("CreateAppointment: transaction failed: %v", err)
			if errors.Is(err, ErrInternal) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}

	uc.logger.Info("CreateAppointment: successfully created appointment id=%d", result.ID)
	return result, nil
}

func (uc *UseCase) recordConflict(stage string) {
	if uc.recorder != nil {
		uc.recorder.IncBookingConflict(stage)
	}
}
