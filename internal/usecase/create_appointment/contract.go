package create_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
	GetByProviderWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
}

// ScheduleService источник расписания дня (реализуется schedule.Service)
type ScheduleService interface {
	GetDaySchedule(ctx context.Context, providerID int64, date time.Time) (*domain.DaySchedule, error)
}

// BlockingService проверка блокировки клиента (реализуется blocking.Service)
type BlockingService interface {
	IsClientBlocked(ctx context.Context, client domain.ClientRef, providerID int64, now time.Time) (*domain.ClientBlockStatus, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Recorder приемник метрик (реализуется *metrics.Metrics)
type Recorder interface {
	IncBookingConflict(stage string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
