package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// SlotParams входные данные генератора слотов
type SlotParams struct {
	Open            types.TimeString
	Close           types.TimeString
	IntervalMinutes int // шаг между началами слотов
	DurationMinutes int // длина каждого слота
	Breaks          []domain.Interval
	Appointments    []domain.Interval // интервалы активных записей
	// Now текущее время суток, если слоты строятся на сегодня; nil для других дат
	Now *types.TimeString
}

// GenerateSlots строит слоты от Open с шагом IntervalMinutes
//
// Слот, который заканчивается позже Close, не включается (и не обрезается).
// Слот недоступен, если пересекается с перерывом или активной записью
// (полуоткрытые интервалы: соседние записи встык не пересекаются),
// а для сегодняшней даты - если начинается не позже Now.
// Функция не выполняет I/O, результат отсортирован по началу
func GenerateSlots(p SlotParams) ([]domain.Slot, error) {
	if p.IntervalMinutes <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive, got %d", ErrInvalidInput, p.IntervalMinutes)
	}
	if p.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidInput, p.DurationMinutes)
	}
	if err := (domain.Interval{Start: p.Open, End: p.Close}).Validate(); err != nil {
		return nil, fmt.Errorf("%w: open hours: %v", ErrInvalidInput, err)
	}

	// Перерывы сливаем заранее, чтобы пересекающиеся не учитывались дважды
	breaks := domain.MergeIntervals(p.Breaks)

	nowMinutes := -1
	if p.Now != nil {
		nowMinutes = p.Now.Minutes()
	}

	openMinutes := p.Open.Minutes()
	closeMinutes := p.Close.Minutes()

	slots := make([]domain.Slot, 0, (closeMinutes-openMinutes)/p.IntervalMinutes+1)
	for start := openMinutes; start+p.DurationMinutes <= closeMinutes; start += p.IntervalMinutes {
		startTime, err := types.FromMinutes(start)
		if err != nil {
			return nil, fmt.Errorf("%w: slot start: %v", ErrInternal, err)
		}
		endTime, err := types.FromMinutes(start + p.DurationMinutes)
		if err != nil {
			return nil, fmt.Errorf("%w: slot end: %v", ErrInternal, err)
		}

		slot := domain.Slot{Start: startTime, End: endTime}
		candidate := slot.Interval()

		slot.Available = start > nowMinutes &&
			!domain.OverlapsAny(candidate, breaks) &&
			!domain.OverlapsAny(candidate, p.Appointments)

		slots = append(slots, slot)
	}

	return slots, nil
}

// countAvailability считает доступные и недоступные слоты (для метрик и логов)
func countAvailability(slots []domain.Slot) (available, unavailable int) {
	for _, s := range slots {
		if s.Available {
			available++
		} else {
			unavailable++
		}
	}
	return available, unavailable
}
