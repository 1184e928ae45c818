package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// RedisClient подмножество *redis.Client, используемое кэшем
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// HoursRepository репозиторий расписания (реализуется hours.Repository)
type HoursRepository interface {
	GetBusinessHours(ctx context.Context, providerID int64) ([]*domain.BusinessHours, error)
	UpsertBusinessHours(ctx context.Context, providerID int64, days []*domain.BusinessHours) error
	GetSpecialHours(ctx context.Context, providerID int64, date time.Time) (*domain.SpecialHours, error)
	ListSpecialHours(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.SpecialHours, error)
	UpsertSpecialHours(ctx context.Context, special *domain.SpecialHours) (*domain.SpecialHours, error)
	DeleteSpecialHours(ctx context.Context, providerID int64, date time.Time) error
}

// PolicyRepository репозиторий политик отмен (реализуется policy.Repository)
type PolicyRepository interface {
	GetByProvider(ctx context.Context, providerID int64) (*domain.CancellationPolicy, error)
	Upsert(ctx context.Context, p *domain.CancellationPolicy) (*domain.CancellationPolicy, error)
}

// Recorder приемник метрик кэша (реализуется *metrics.Metrics)
type Recorder interface {
	ObserveCache(result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}
