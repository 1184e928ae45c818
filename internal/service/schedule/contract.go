package schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// HoursRepository источник недельного расписания и особых дней
type HoursRepository interface {
	GetBusinessHours(ctx context.Context, providerID int64) ([]*domain.BusinessHours, error)
	GetSpecialHours(ctx context.Context, providerID int64, date time.Time) (*domain.SpecialHours, error)
}

// WorkingDayRepository источник индивидуальных рабочих дней
type WorkingDayRepository interface {
	Get(ctx context.Context, providerID int64, date time.Time) (*domain.WorkingDay, error)
}

// Recorder приемник метрик (реализуется *metrics.Metrics)
type Recorder interface {
	ObserveHoursResolution(source string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
