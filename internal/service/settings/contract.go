package settings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// HoursRepository интерфейс репозитория расписания
type HoursRepository interface {
	GetBusinessHours(ctx context.Context, providerID int64) ([]*domain.BusinessHours, error)
	UpsertBusinessHours(ctx context.Context, providerID int64, days []*domain.BusinessHours) error
	ListSpecialHours(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.SpecialHours, error)
	UpsertSpecialHours(ctx context.Context, special *domain.SpecialHours) (*domain.SpecialHours, error)
	DeleteSpecialHours(ctx context.Context, providerID int64, date time.Time) error
}

// WorkingDayRepository интерфейс репозитория рабочих дней
type WorkingDayRepository interface {
	Get(ctx context.Context, providerID int64, date time.Time) (*domain.WorkingDay, error)
	Upsert(ctx context.Context, day *domain.WorkingDay) (*domain.WorkingDay, error)
	Delete(ctx context.Context, providerID int64, date time.Time) error
}

// PolicyRepository интерфейс репозитория политик отмен
type PolicyRepository interface {
	GetByProvider(ctx context.Context, providerID int64) (*domain.CancellationPolicy, error)
	Upsert(ctx context.Context, p *domain.CancellationPolicy) (*domain.CancellationPolicy, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
