package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	ProviderID      int64            // ID мастера
	ClientID        *int64           // ID клиента с аккаунтом
	ClientPhone     *string          // Телефон клиента без аккаунта
	ServiceName     string           // Название услуги
	Date            time.Time        // Дата записи (без времени)
	StartTime       types.TimeString // Время начала (например, "10:00")
	DurationMinutes int              // Длительность услуги
	Notes           *string          // Дополнительные заметки (опционально)
}
