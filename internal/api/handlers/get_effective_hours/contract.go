package get_effective_hours

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

type ScheduleService interface {
	GetEffectiveHours(ctx context.Context, providerID int64, date time.Time) (*domain.EffectiveHours, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
