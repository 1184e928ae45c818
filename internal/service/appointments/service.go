package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/appointments/models"
)

// Service сервис для работы с записями
type Service struct {
	appointmentRepo AppointmentRepository
	timeProvider    TimeProvider
	location        *time.Location
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	timeProvider TimeProvider,
	location *time.Location,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		timeProvider:    timeProvider,
		location:        location,
		logger:          logger,
	}
}

// GetByID получает запись по ID
// Запись видят только мастер и клиент, который её создал
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for user=%d", id, userID)

	appointment, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !isProvider(appointment, userID) && !isClient(appointment, userID) {
		s.logger.Warn("GetByID: access denied for user=%d to appointment id=%d", userID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainAppointment(appointment), nil
}

// GetProviderAppointments получает записи мастера с фильтрацией
// Доступно только самому мастеру
func (s *Service) GetProviderAppointments(ctx context.Context, req *models.GetProviderAppointmentsRequest) (*models.AppointmentListResponse, error) {
	logMsg := fmt.Sprintf("GetProviderAppointments: fetching appointments for provider=%d, user=%d", req.ProviderID, req.UserID)
	if req.StartDate != nil {
		logMsg += fmt.Sprintf(", from=%s", req.StartDate.Format(domain.DateFormat))
	}
	if req.EndDate != nil {
		logMsg += fmt.Sprintf(", to=%s", req.EndDate.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	s.logger.Info(logMsg)

	if req.UserID != req.ProviderID {
		s.logger.Warn("GetProviderAppointments: user=%d is not provider=%d", req.UserID, req.ProviderID)
		return nil, ErrAccessDenied
	}

	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("%w: 'to' is before 'from'", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetProviderAppointments: invalid filter for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	appointments, err := s.appointmentRepo.GetByProviderWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetProviderAppointments: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: GetProviderAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetProviderAppointments: fetched %d appointments for provider=%d", len(appointments), req.ProviderID)
	return models.FromDomainAppointmentList(appointments), nil
}

// Cancel отменяет запись
// Клиент отменяет свою запись (cancelled_by=client), мастер - любую свою (cancelled_by=provider).
// Момент отмены берется из TimeProvider: по нему считается окно политики отмен
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelRequest) error {
	s.logger.Info("Cancel: cancelling appointment id=%d by user=%d", id, req.UserID)

	if req.CancellationReason != nil && len(*req.CancellationReason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: cancellationReason must be at most %d characters",
			ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	appointment, err := s.get(ctx, "Cancel", id)
	if err != nil {
		return err
	}

	var by domain.CancelledBy
	switch {
	case isProvider(appointment, req.UserID):
		by = domain.CancelledByProvider
	case isClient(appointment, req.UserID):
		by = domain.CancelledByClient
	default:
		s.logger.Warn("Cancel: access denied for user=%d to appointment id=%d", req.UserID, id)
		return ErrAccessDenied
	}

	if !appointment.CanBeCancelled() {
		s.logger.Warn("Cancel: appointment id=%d cannot be cancelled, status=%s", id, appointment.Status)
		return ErrCannotCancel
	}

	reason := req.CancellationReason
	if reason != nil && strings.TrimSpace(*reason) == "" {
		reason = nil
	}

	if err := s.appointmentRepo.Cancel(ctx, id, by, reason, s.timeProvider.Now().UTC()); err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			// Статус сменился между чтением и обновлением
			s.logger.Warn("Cancel: appointment id=%d changed concurrently", id)
			return ErrCannotCancel
		}
		s.logger.Error("Cancel: repository error for appointment id=%d: %v", id, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: cancelled appointment id=%d by %s", id, by)
	return nil
}

// UpdateStatus меняет статус записи
// Доступно только мастеру; допустимые переходы описаны в domain.Appointment.CanTransitionTo
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) error {
	s.logger.Info("UpdateStatus: updating appointment id=%d to status=%s by user=%d", id, req.Status, req.UserID)

	newStatus, err := models.ToDomainStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for appointment id=%d", req.Status, id)
		return fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	// Отмена идет через Cancel: ей нужны сторона и момент отмены
	if newStatus == domain.StatusCancelled {
		return fmt.Errorf("%w: use the cancel endpoint", ErrInvalidTransition)
	}

	appointment, err := s.get(ctx, "UpdateStatus", id)
	if err != nil {
		return err
	}

	if !isProvider(appointment, req.UserID) {
		s.logger.Warn("UpdateStatus: user=%d is not provider of appointment id=%d", req.UserID, id)
		return ErrAccessDenied
	}

	if !appointment.CanTransitionTo(newStatus) {
		s.logger.Warn("UpdateStatus: transition %s -> %s is not allowed for appointment id=%d",
			appointment.Status, newStatus, id)
		return ErrInvalidTransition
	}

	// Завершение и неявка возможны только после начала записи
	if domain.RequiresStart(newStatus) {
		startsAt := appointment.StartsAt(s.location)
		if s.timeProvider.Now().Before(startsAt) {
			s.logger.Warn("UpdateStatus: appointment id=%d starts at %s, status=%s is too early",
				id, startsAt.Format(time.RFC3339), newStatus)
			return ErrNotStarted
		}
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, id, newStatus); err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			return ErrAppointmentNotFound
		}
		s.logger.Error("UpdateStatus: repository error for appointment id=%d: %v", id, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateStatus: updated appointment id=%d to status=%s", id, newStatus)
	return nil
}

// Вспомогательные методы

func (s *Service) get(ctx context.Context, op string, id int64) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return appointment, nil
}

func isProvider(a *domain.Appointment, userID int64) bool {
	return a.ProviderID == userID
}

func isClient(a *domain.Appointment, userID int64) bool {
	return a.ClientID != nil && *a.ClientID == userID
}
