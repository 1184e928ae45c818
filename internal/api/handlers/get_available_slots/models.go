package get_available_slots

import (
	"strconv"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-AvailabilityService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	ProviderID          int64   `json:"providerId"`
	Date                string  `json:"date"`
	IsOpen              bool    `json:"isOpen"`
	OpenTime            string  `json:"openTime,omitempty"`
	CloseTime           string  `json:"closeTime,omitempty"`
	IsSpecialDay        bool    `json:"isSpecialDay"`
	SpecialDayName      *string `json:"specialDayName,omitempty"`
	SlotIntervalMinutes int     `json:"slotIntervalMinutes"`
	DurationMinutes     int     `json:"durationMinutes"`
	Slots               []Slot  `json:"slots"`
}

// Slot модель временного слота
type Slot struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]Slot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = Slot{
			Start:     slot.Start.String(),
			End:       slot.End.String(),
			Available: slot.Available,
		}
	}

	return &AvailableSlotsResponse{
		ProviderID:          resp.ProviderID,
		Date:                resp.Date.Format(domain.DateFormat),
		IsOpen:              resp.Hours.IsOpen,
		OpenTime:            resp.Hours.OpenTime.String(),
		CloseTime:           resp.Hours.CloseTime.String(),
		IsSpecialDay:        resp.Hours.IsSpecialDay,
		SpecialDayName:      resp.Hours.SpecialDayName,
		SlotIntervalMinutes: resp.SlotIntervalMinutes,
		DurationMinutes:     resp.DurationMinutes,
		Slots:               slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
// durationMinutes необязателен: пустое значение означает шаг слотов
func ToUseCaseRequest(providerID int64, dateStr, durationStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	duration := 0
	if durationStr != "" {
		if duration, err = strconv.Atoi(durationStr); err != nil {
			return nil, err
		}
	}

	return &getAvailableSlots.Request{
		ProviderID:      providerID,
		Date:            date,
		DurationMinutes: duration,
	}, nil
}
