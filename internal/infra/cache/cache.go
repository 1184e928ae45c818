package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// DefaultTTL время жизни закэшированных настроек
const DefaultTTL = 5 * time.Minute

const (
	keyPrefix        = "availability"
	resultHit        = "hit"
	resultMiss       = "miss"
	resultError      = "error"
	businessHoursKey = "business_hours"
	policyKey        = "cancellation_policy"
)

// store общая логика read-through кэша
// Любая ошибка Redis логируется и приводит к чтению из БД: кэш не влияет на корректность
type store struct {
	client   RedisClient
	ttl      time.Duration
	recorder Recorder
	logger   Logger
}

func newStore(client RedisClient, ttl time.Duration, recorder Recorder, logger Logger) store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return store{client: client, ttl: ttl, recorder: recorder, logger: logger}
}

func key(kind string, providerID int64) string {
	return fmt.Sprintf("%s:%s:%d", keyPrefix, kind, providerID)
}

// load читает значение из кэша; false означает промах или ошибку
func (s store) load(ctx context.Context, k string, dst interface{}) bool {
	raw, err := s.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		s.observe(resultMiss)
		return false
	}
	if err != nil {
		s.observe(resultError)
		s.logger.Warn("Cache: get failed key=%s: %v", k, err)
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		s.observe(resultError)
		s.logger.Warn("Cache: decode failed key=%s: %v", k, err)
		return false
	}

	s.observe(resultHit)
	return true
}

// fill кладет прочитанное из БД значение, только если ключа еще нет:
// запоздавшее чтение не перетирает значение, записанное после изменения настроек
func (s store) fill(ctx context.Context, k string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("Cache: encode failed key=%s: %v", k, err)
		return
	}
	if err := s.client.SetNX(ctx, k, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("Cache: set failed key=%s: %v", k, err)
	}
}

// replace перезаписывает значение после изменения настроек
// Если записать не удалось, ключ удаляется
func (s store) replace(ctx context.Context, k string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("Cache: encode failed key=%s: %v", k, err)
		s.invalidate(ctx, k)
		return
	}
	if err := s.client.Set(ctx, k, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("Cache: set failed key=%s: %v", k, err)
		s.invalidate(ctx, k)
	}
}

func (s store) invalidate(ctx context.Context, k string) {
	if err := s.client.Del(ctx, k).Err(); err != nil {
		s.logger.Warn("Cache: delete failed key=%s: %v", k, err)
	}
}

func (s store) observe(result string) {
	if s.recorder != nil {
		s.recorder.ObserveCache(result)
	}
}

// Hours кэширует недельное расписание мастера поверх репозитория
// Особые дни читаются напрямую: они запрашиваются по конкретной дате
type Hours struct {
	HoursRepository
	store store
}

// NewHours создает кэширующую обертку над репозиторием расписания
func NewHours(repo HoursRepository, client RedisClient, ttl time.Duration, recorder Recorder, logger Logger) *Hours {
	return &Hours{
		HoursRepository: repo,
		store:           newStore(client, ttl, recorder, logger),
	}
}

// GetBusinessHours возвращает недельное расписание из кэша или из БД
func (h *Hours) GetBusinessHours(ctx context.Context, providerID int64) ([]*domain.BusinessHours, error) {
	k := key(businessHoursKey, providerID)

	var cached []*domain.BusinessHours
	if h.store.load(ctx, k, &cached) {
		return cached, nil
	}

	days, err := h.HoursRepository.GetBusinessHours(ctx, providerID)
	if err != nil {
		return nil, err
	}

	h.store.fill(ctx, k, days)
	return days, nil
}

// UpsertBusinessHours сохраняет расписание и перезаписывает кэш свежими строками из БД
func (h *Hours) UpsertBusinessHours(ctx context.Context, providerID int64, days []*domain.BusinessHours) error {
	if err := h.HoursRepository.UpsertBusinessHours(ctx, providerID, days); err != nil {
		return err
	}

	k := key(businessHoursKey, providerID)
	fresh, err := h.HoursRepository.GetBusinessHours(ctx, providerID)
	if err != nil {
		h.store.logger.Warn("Cache: reload failed key=%s: %v", k, err)
		h.store.invalidate(ctx, k)
		return nil
	}
	h.store.replace(ctx, k, fresh)
	return nil
}

// Policy кэширует политику отмен мастера поверх репозитория
// Отсутствие политики не кэшируется
type Policy struct {
	PolicyRepository
	store store
}

// NewPolicy создает кэширующую обертку над репозиторием политик
func NewPolicy(repo PolicyRepository, client RedisClient, ttl time.Duration, recorder Recorder, logger Logger) *Policy {
	return &Policy{
		PolicyRepository: repo,
		store:            newStore(client, ttl, recorder, logger),
	}
}

// GetByProvider возвращает политику из кэша или из БД
func (p *Policy) GetByProvider(ctx context.Context, providerID int64) (*domain.CancellationPolicy, error) {
	k := key(policyKey, providerID)

	var cached domain.CancellationPolicy
	if p.store.load(ctx, k, &cached) {
		return &cached, nil
	}

	policy, err := p.PolicyRepository.GetByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	p.store.fill(ctx, k, policy)
	return policy, nil
}

// Upsert сохраняет политику и перезаписывает кэш сохраненным значением
func (p *Policy) Upsert(ctx context.Context, policy *domain.CancellationPolicy) (*domain.CancellationPolicy, error) {
	saved, err := p.PolicyRepository.Upsert(ctx, policy)
	if err != nil {
		return nil, err
	}
	p.store.replace(ctx, key(policyKey, policy.ProviderID), saved)
	return saved, nil
}
