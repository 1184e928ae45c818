package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// Request модель запроса на получение слотов
type Request struct {
	ProviderID      int64     // ID мастера
	Date            time.Time // Дата (без времени, в часовом поясе мастера)
	DurationMinutes int       // Длительность услуги; 0 - равна шагу слотов
}

// Response модель ответа со списком слотов
type Response struct {
	ProviderID          int64
	Date                time.Time
	Hours               domain.EffectiveHours
	SlotIntervalMinutes int
	DurationMinutes     int
	Slots               []domain.Slot
}
