package blocking

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// Aggregate считает отмены и неявки клиента в скользящем окне periodDays, заканчивающемся в now
//
// Отмены отбираются по моменту отмены (cancelledAt >= cutoff), неявки - по дате записи
// (date >= календарная дата cutoff в loc). События позже now не учитываются.
// Неявка весит noShowMultiplier отмен
func Aggregate(history []*domain.Appointment, periodDays int, noShowMultiplier float64, now time.Time, loc *time.Location) domain.CancellationStats {
	cutoff := now.AddDate(0, 0, -periodDays)
	cutoffDate := domain.DateOnly(cutoff, loc)

	var stats domain.CancellationStats
	for _, a := range history {
		var event time.Time

		switch a.Status {
		case domain.StatusCancelled:
			if a.CancelledAt == nil || a.CancelledAt.Before(cutoff) || a.CancelledAt.After(now) {
				continue
			}
			stats.Cancellations++
			event = *a.CancelledAt
		case domain.StatusNoShow:
			date := domain.InLocation(a.Date, loc)
			if date.Before(cutoffDate) || date.After(now) {
				continue
			}
			stats.NoShows++
			event = date
		default:
			continue
		}

		if stats.MostRecentEvent == nil || event.After(*stats.MostRecentEvent) {
			e := event
			stats.MostRecentEvent = &e
		}
	}

	stats.EffectiveCount = float64(stats.Cancellations) + float64(stats.NoShows)*noShowMultiplier
	return stats
}

// Decide вычисляет состояние клиента по политике и статистике
// Состояние не хранится: блокировка истекает сама, когда now доходит до unblocksAt
func Decide(policy *domain.CancellationPolicy, stats domain.CancellationStats, now time.Time) domain.ClientBlockStatus {
	if policy == nil || !policy.IsEnabled {
		return domain.ClientBlockStatus{Blocked: false, State: domain.BlockStateClear}
	}

	blockStats := &domain.BlockStats{
		EffectiveCount: stats.EffectiveCount,
		Max:            policy.MaxCancellations,
	}

	if stats.EffectiveCount < float64(policy.MaxCancellations) {
		return domain.ClientBlockStatus{Blocked: false, State: domain.BlockStateWarned, Stats: blockStats}
	}

	// Порог достигнут, но событий в окне нет (возможно только при пороге 0)
	if stats.MostRecentEvent == nil {
		return domain.ClientBlockStatus{Blocked: false, State: domain.BlockStateExpired, Stats: blockStats}
	}

	unblocksAt := stats.MostRecentEvent.AddDate(0, 0, policy.BlockDurationDays)
	if !unblocksAt.After(now) {
		return domain.ClientBlockStatus{Blocked: false, State: domain.BlockStateExpired, Stats: blockStats}
	}

	return domain.ClientBlockStatus{
		Blocked:    true,
		State:      domain.BlockStateBlocked,
		UnblocksAt: &unblocksAt,
		Stats:      blockStats,
	}
}
