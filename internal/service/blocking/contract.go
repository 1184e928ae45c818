package blocking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// PolicyRepository источник политики отмен
type PolicyRepository interface {
	GetByProvider(ctx context.Context, providerID int64) (*domain.CancellationPolicy, error)
}

// AppointmentRepository источник истории отмен и неявок клиента
type AppointmentRepository interface {
	GetClientHistory(
		ctx context.Context,
		providerID int64,
		client domain.ClientRef,
		cancelledSince time.Time,
		noShowSince time.Time,
	) ([]*domain.Appointment, error)
}

// Recorder приемник метрик (реализуется *metrics.Metrics)
type Recorder interface {
	ObserveBlockDecision(state string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
