package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	hoursRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/hours"
	workingDayRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/workingday"
)

// Service определяет часы работы мастера на конкретную дату
type Service struct {
	hoursRepo       HoursRepository
	workingDayRepo  WorkingDayRepository
	defaultInterval int
	recorder        Recorder
	logger          Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	hoursRepo HoursRepository,
	workingDayRepo WorkingDayRepository,
	defaultInterval int,
	recorder Recorder,
	logger Logger,
) *Service {
	if defaultInterval <= 0 {
		defaultInterval = domain.DefaultSlotIntervalMinutes
	}
	return &Service{
		hoursRepo:       hoursRepo,
		workingDayRepo:  workingDayRepo,
		defaultInterval: defaultInterval,
		recorder:        recorder,
		logger:          logger,
	}
}

// GetEffectiveHours возвращает часы работы мастера на дату
// Ошибка хранилища возвращается как ErrResolutionFailed, а не как расписание по умолчанию
func (s *Service) GetEffectiveHours(ctx context.Context, providerID int64, date time.Time) (*domain.EffectiveHours, error) {
	// 1. Особый день на точную дату
	special, err := s.hoursRepo.GetSpecialHours(ctx, providerID, date)
	if err != nil && !errors.Is(err, hoursRepo.ErrSpecialHoursNotFound) {
		s.logger.Error("GetEffectiveHours: failed to get special hours provider=%d date=%s: %v",
			providerID, date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: special hours: %v", ErrResolutionFailed, err)
	}

	// 2. Недельное расписание нужно только если особого дня нет
	var weekly []*domain.BusinessHours
	if special == nil {
		weekly, err = s.hoursRepo.GetBusinessHours(ctx, providerID)
		if err != nil {
			s.logger.Error("GetEffectiveHours: failed to get business hours provider=%d: %v", providerID, err)
			return nil, fmt.Errorf("%w: business hours: %v", ErrResolutionFailed, err)
		}
	}

	// 3. Применяем приоритет
	hours, err := ResolveEffectiveHours(date, special, weekly)
	if err != nil {
		s.logger.Error("GetEffectiveHours: provider=%d date=%s: %v", providerID, date.Format(domain.DateFormat), err)
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.ObserveHoursResolution(string(hours.Source))
	}

	return hours, nil
}

// GetDaySchedule возвращает расписание дня для генерации слотов:
// часы работы с учетом индивидуального рабочего дня, шаг слотов и перерывы
func (s *Service) GetDaySchedule(ctx context.Context, providerID int64, date time.Time) (*domain.DaySchedule, error) {
	hours, err := s.GetEffectiveHours(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	var workingDay *domain.WorkingDay
	if !hours.IsSpecialDay {
		workingDay, err = s.workingDayRepo.Get(ctx, providerID, date)
		if err != nil && !errors.Is(err, workingDayRepo.ErrWorkingDayNotFound) {
			s.logger.Error("GetDaySchedule: failed to get working day provider=%d date=%s: %v",
				providerID, date.Format(domain.DateFormat), err)
			return nil, fmt.Errorf("%w: working day: %v", ErrResolutionFailed, err)
		}
	}

	day, err := ApplyWorkingDay(hours, workingDay, s.defaultInterval)
	if err != nil {
		s.logger.Error("GetDaySchedule: provider=%d date=%s: %v", providerID, date.Format(domain.DateFormat), err)
		return nil, err
	}

	return day, nil
}
