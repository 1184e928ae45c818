package blocking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	policyRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/policy"
)

// Service решает, заблокирован ли клиент у мастера
type Service struct {
	policyRepo      PolicyRepository
	appointmentRepo AppointmentRepository
	location        *time.Location
	recorder        Recorder
	logger          Logger
}

// NewService создает новый экземпляр сервиса блокировок
func NewService(
	policyRepo PolicyRepository,
	appointmentRepo AppointmentRepository,
	location *time.Location,
	recorder Recorder,
	logger Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		policyRepo:      policyRepo,
		appointmentRepo: appointmentRepo,
		location:        location,
		recorder:        recorder,
		logger:          logger,
	}
}

// IsClientBlocked вычисляет статус блокировки клиента на момент now
// Ошибка получения данных возвращается как ErrDataSource: ни "не заблокирован", ни "заблокирован" не подставляются
func (s *Service) IsClientBlocked(ctx context.Context, client domain.ClientRef, providerID int64, now time.Time) (*domain.ClientBlockStatus, error) {
	if client.IsZero() {
		return nil, ErrInvalidClient
	}

	// 1. Получаем политику; отсутствие политики означает, что она выключена
	policy, err := s.policyRepo.GetByProvider(ctx, providerID)
	if err != nil {
		if !errors.Is(err, policyRepo.ErrPolicyNotFound) {
			s.logger.Error("IsClientBlocked: failed to get policy provider=%d: %v", providerID, err)
			return nil, fmt.Errorf("%w: policy: %v", ErrDataSource, err)
		}
		policy = domain.DisabledPolicy(providerID)
	}

	if !policy.IsEnabled {
		status := Decide(policy, domain.CancellationStats{}, now)
		s.observe(status)
		return &status, nil
	}

	// 2. История клиента в окне политики
	cutoff := now.AddDate(0, 0, -policy.PeriodDays)
	history, err := s.appointmentRepo.GetClientHistory(ctx, providerID, client, cutoff, domain.DateOnly(cutoff, s.location))
	if err != nil {
		s.logger.Error("IsClientBlocked: failed to get history provider=%d %s: %v", providerID, client, err)
		return nil, fmt.Errorf("%w: history: %v", ErrDataSource, err)
	}

	// 3. Агрегируем и принимаем решение
	stats := Aggregate(history, policy.PeriodDays, policy.NoShowMultiplier, now, s.location)
	status := Decide(policy, stats, now)

	if status.Blocked {
		s.logger.Info("IsClientBlocked: provider=%d %s blocked until %s (count=%.2f max=%d)",
			providerID, client, status.UnblocksAt.Format(time.RFC3339), stats.EffectiveCount, policy.MaxCancellations)
	}

	s.observe(status)
	return &status, nil
}

func (s *Service) observe(status domain.ClientBlockStatus) {
	if s.recorder != nil {
		s.recorder.ObserveBlockDecision(string(status.State))
	}
}
