package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	hoursRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/hours"
	policyRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/policy"
	workingDayRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/workingday"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/settings/models"
)

// Service сервис настроек мастера: расписание, особые дни, рабочие дни, политика отмен
type Service struct {
	hoursRepo      HoursRepository
	workingDayRepo WorkingDayRepository
	policyRepo     PolicyRepository
	validate       *validator.Validate
	logger         Logger
}

// NewService создает новый экземпляр сервиса настроек
func NewService(
	hoursRepo HoursRepository,
	workingDayRepo WorkingDayRepository,
	policyRepo PolicyRepository,
	logger Logger,
) *Service {
	return &Service{
		hoursRepo:      hoursRepo,
		workingDayRepo: workingDayRepo,
		policyRepo:     policyRepo,
		validate:       newValidator(),
		logger:         logger,
	}
}

// GetBusinessHours возвращает недельное расписание мастера
// Если расписание не настроено, возвращается шаблон по умолчанию с isDefault=true
func (s *Service) GetBusinessHours(ctx context.Context, providerID int64) (*models.BusinessHoursResponse, error) {
	s.logger.Info("GetBusinessHours: fetching business hours for provider=%d", providerID)

	rows, err := s.hoursRepo.GetBusinessHours(ctx, providerID)
	if err != nil {
		s.logger.Error("GetBusinessHours: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetBusinessHours - repository error: %v", ErrInternal, err)
	}

	if len(rows) == 0 {
		return models.DefaultBusinessHours(providerID), nil
	}
	return models.FromDomainBusinessHours(providerID, rows), nil
}

// UpdateBusinessHours сохраняет недельное расписание
// Дни приходят в нумерации с понедельника и хранятся в нумерации time.Weekday
func (s *Service) UpdateBusinessHours(ctx context.Context, req *models.UpdateBusinessHoursRequest) (*models.BusinessHoursResponse, error) {
	s.logger.Info("UpdateBusinessHours: updating %d days for provider=%d by user=%d",
		len(req.Days), req.ProviderID, req.UserID)

	// 1. Проверяем права доступа
	if err := s.requireProvider("UpdateBusinessHours", req.UserID, req.ProviderID); err != nil {
		return nil, err
	}

	// 2. Валидируем входные данные
	if err := s.validateStruct(req); err != nil {
		s.logger.Warn("UpdateBusinessHours: validation failed: %v", err)
		return nil, err
	}

	rows, err := req.ToDomainBusinessHours()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	for _, row := range rows {
		if !row.IsOpen {
			continue
		}
		if err := validateOpenInterval(row.Weekday.String(), row.OpenTime, row.CloseTime); err != nil {
			s.logger.Warn("UpdateBusinessHours: validation failed: %v", err)
			return nil, err
		}
	}

	// 3. Сохраняем
	if err := s.hoursRepo.UpsertBusinessHours(ctx, req.ProviderID, rows); err != nil {
		s.logger.Error("UpdateBusinessHours: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: UpdateBusinessHours - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateBusinessHours: saved business hours for provider=%d", req.ProviderID)
	return s.GetBusinessHours(ctx, req.ProviderID)
}

// ListSpecialHours возвращает особые дни за период [from, to]
func (s *Service) ListSpecialHours(ctx context.Context, providerID int64, from, to time.Time) (*models.SpecialHoursListResponse, error) {
	s.logger.Info("ListSpecialHours: fetching special hours for provider=%d, period=%s to %s",
		providerID, from.Format(domain.DateFormat), to.Format(domain.DateFormat))

	if to.Before(from) {
		return nil, fmt.Errorf("%w: 'to' is before 'from'", ErrInvalidInput)
	}

	list, err := s.hoursRepo.ListSpecialHours(ctx, providerID, from, to)
	if err != nil {
		s.logger.Error("ListSpecialHours: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: ListSpecialHours - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSpecialHoursList(list), nil
}

// UpsertSpecialHours сохраняет особый день (праздник, сокращенный или дополнительный рабочий день)
func (s *Service) UpsertSpecialHours(ctx context.Context, req *models.UpsertSpecialHoursRequest) (*models.SpecialHoursResponse, error) {
	s.logger.Info("UpsertSpecialHours: saving special day %s for provider=%d by user=%d",
		req.Date.Format(domain.DateFormat), req.ProviderID, req.UserID)

	if err := s.requireProvider("UpsertSpecialHours", req.UserID, req.ProviderID); err != nil {
		return nil, err
	}

	if err := s.validateStruct(req); err != nil {
		s.logger.Warn("UpsertSpecialHours: validation failed: %v", err)
		return nil, err
	}

	special, err := req.ToDomainSpecialHours()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if special.IsOpen {
		if err := validateOpenInterval("special day", special.OpenTime, special.CloseTime); err != nil {
			s.logger.Warn("UpsertSpecialHours: validation failed: %v", err)
			return nil, err
		}
	}

	saved, err := s.hoursRepo.UpsertSpecialHours(ctx, special)
	if err != nil {
		s.logger.Error("UpsertSpecialHours: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: UpsertSpecialHours - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpsertSpecialHours: saved special day %s for provider=%d",
		req.Date.Format(domain.DateFormat), req.ProviderID)
	return models.FromDomainSpecialHours(saved), nil
}

// DeleteSpecialHours удаляет особый день; дата снова подчиняется недельному расписанию
func (s *Service) DeleteSpecialHours(ctx context.Context, userID, providerID int64, date time.Time) error {
	s.logger.Info("DeleteSpecialHours: deleting special day %s for provider=%d by user=%d",
		date.Format(domain.DateFormat), providerID, userID)

	if err := s.requireProvider("DeleteSpecialHours", userID, providerID); err != nil {
		return err
	}

	if err := s.hoursRepo.DeleteSpecialHours(ctx, providerID, date); err != nil {
		if errors.Is(err, hoursRepo.ErrSpecialHoursNotFound) {
			return ErrSpecialHoursNotFound
		}
		s.logger.Error("DeleteSpecialHours: repository error for provider=%d: %v", providerID, err)
		return fmt.Errorf("%w: DeleteSpecialHours - repository error: %v", ErrInternal, err)
	}

	return nil
}

// GetWorkingDay возвращает настроенный рабочий день
func (s *Service) GetWorkingDay(ctx context.Context, providerID int64, date time.Time) (*models.WorkingDayResponse, error) {
	day, err := s.workingDayRepo.Get(ctx, providerID, date)
	if err != nil {
		if errors.Is(err, workingDayRepo.ErrWorkingDayNotFound) {
			return nil, ErrWorkingDayNotFound
		}
		s.logger.Error("GetWorkingDay: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetWorkingDay - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainWorkingDay(day), nil
}

// UpsertWorkingDay сохраняет рабочий день с часами, шагом слотов и перерывами
// Перерывы должны лежать внутри рабочих часов
func (s *Service) UpsertWorkingDay(ctx context.Context, req *models.UpsertWorkingDayRequest) (*models.WorkingDayResponse, error) {
	s.logger.Info("UpsertWorkingDay: saving working day %s for provider=%d by user=%d",
		req.Date.Format(domain.DateFormat), req.ProviderID, req.UserID)

	if err := s.requireProvider("UpsertWorkingDay", req.UserID, req.ProviderID); err != nil {
		return nil, err
	}

	if err := s.validateStruct(req); err != nil {
		s.logger.Warn("UpsertWorkingDay: validation failed: %v", err)
		return nil, err
	}

	day, err := req.ToDomainWorkingDay()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validateWorkingDay(day); err != nil {
		s.logger.Warn("UpsertWorkingDay: validation failed: %v", err)
		return nil, err
	}

	saved, err := s.workingDayRepo.Upsert(ctx, day)
	if err != nil {
		s.logger.Error("UpsertWorkingDay: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: UpsertWorkingDay - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainWorkingDay(saved), nil
}

// DeleteWorkingDay удаляет рабочий день; дата снова подчиняется расписанию
func (s *Service) DeleteWorkingDay(ctx context.Context, userID, providerID int64, date time.Time) error {
	s.logger.Info("DeleteWorkingDay: deleting working day %s for provider=%d by user=%d",
		date.Format(domain.DateFormat), providerID, userID)

	if err := s.requireProvider("DeleteWorkingDay", userID, providerID); err != nil {
		return err
	}

	if err := s.workingDayRepo.Delete(ctx, providerID, date); err != nil {
		if errors.Is(err, workingDayRepo.ErrWorkingDayNotFound) {
			return ErrWorkingDayNotFound
		}
		s.logger.Error("DeleteWorkingDay: repository error for provider=%d: %v", providerID, err)
		return fmt.Errorf("%w: DeleteWorkingDay - repository error: %v", ErrInternal, err)
	}

	return nil
}

// GetPolicy возвращает политику отмен мастера
// Мастер без сохраненной политики получает выключенную политику со значениями по умолчанию
func (s *Service) GetPolicy(ctx context.Context, userID, providerID int64) (*models.PolicyResponse, error) {
	if err := s.requireProvider("GetPolicy", userID, providerID); err != nil {
		return nil, err
	}

	policy, err := s.policyRepo.GetByProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, policyRepo.ErrPolicyNotFound) {
			return models.FromDomainPolicy(domain.DisabledPolicy(providerID)), nil
		}
		s.logger.Error("GetPolicy: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetPolicy - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainPolicy(policy), nil
}

// UpdatePolicy сохраняет политику отмен
func (s *Service) UpdatePolicy(ctx context.Context, req *models.UpdatePolicyRequest) (*models.PolicyResponse, error) {
	s.logger.Info("UpdatePolicy: saving policy for provider=%d by user=%d, enabled=%t",
		req.ProviderID, req.UserID, req.IsEnabled)

	if err := s.requireProvider("UpdatePolicy", req.UserID, req.ProviderID); err != nil {
		return nil, err
	}

	if err := s.validateStruct(req); err != nil {
		s.logger.Warn("UpdatePolicy: validation failed: %v", err)
		return nil, err
	}

	saved, err := s.policyRepo.Upsert(ctx, req.ToDomainPolicy())
	if err != nil {
		s.logger.Error("UpdatePolicy: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: UpdatePolicy - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainPolicy(saved), nil
}

// requireProvider разрешает запись настроек только самому мастеру
func (s *Service) requireProvider(op string, userID, providerID int64) error {
	if userID != providerID {
		s.logger.Warn("%s: user=%d is not provider=%d", op, userID, providerID)
		return ErrAccessDenied
	}
	return nil
}
