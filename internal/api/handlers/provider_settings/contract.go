package provider_settings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/service/settings/models"
)

type SettingsService interface {
	GetBusinessHours(ctx context.Context, providerID int64) (*models.BusinessHoursResponse, error)
	UpdateBusinessHours(ctx context.Context, req *models.UpdateBusinessHoursRequest) (*models.BusinessHoursResponse, error)
	ListSpecialHours(ctx context.Context, providerID int64, from, to time.Time) (*models.SpecialHoursListResponse, error)
	UpsertSpecialHours(ctx context.Context, req *models.UpsertSpecialHoursRequest) (*models.SpecialHoursResponse, error)
	DeleteSpecialHours(ctx context.Context, userID, providerID int64, date time.Time) error
	GetWorkingDay(ctx context.Context, providerID int64, date time.Time) (*models.WorkingDayResponse, error)
	UpsertWorkingDay(ctx context.Context, req *models.UpsertWorkingDayRequest) (*models.WorkingDayResponse, error)
	DeleteWorkingDay(ctx context.Context, userID, providerID int64, date time.Time) error
	GetPolicy(ctx context.Context, userID, providerID int64) (*models.PolicyResponse, error)
	UpdatePolicy(ctx context.Context, req *models.UpdatePolicyRequest) (*models.PolicyResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
