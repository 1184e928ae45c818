package models

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// Request модели

// BusinessHoursDay один день недельного расписания.
// Weekday в нумерации экранов настроек: понедельник = 0, воскресенье = 6
type BusinessHoursDay struct {
	Weekday   int    `json:"weekday" validate:"min=0,max=6"`
	IsOpen    bool   `json:"isOpen"`
	OpenTime  string `json:"openTime,omitempty" validate:"omitempty,hhmm"`
	CloseTime string `json:"closeTime,omitempty" validate:"omitempty,hhmm"`
}

// UpdateBusinessHoursRequest запрос на сохранение недельного расписания
type UpdateBusinessHoursRequest struct {
	UserID     int64              `json:"-"`
	ProviderID int64              `json:"-"`
	Days       []BusinessHoursDay `json:"days" validate:"required,min=1,max=7,unique=Weekday,dive"`
}

// UpsertSpecialHoursRequest запрос на сохранение особого дня
type UpsertSpecialHoursRequest struct {
	UserID     int64     `json:"-"`
	ProviderID int64     `json:"-"`
	Date       time.Time `json:"-"`
	Name       string    `json:"name" validate:"required,max=100"`
	IsOpen     bool      `json:"isOpen"`
	OpenTime   string    `json:"openTime,omitempty" validate:"omitempty,hhmm"`
	CloseTime  string    `json:"closeTime,omitempty" validate:"omitempty,hhmm"`
}

// BreakRequest перерыв внутри рабочего дня
type BreakRequest struct {
	Start string `json:"start" validate:"required,hhmm"`
	End   string `json:"end" validate:"required,hhmm"`
}

// UpsertWorkingDayRequest запрос на сохранение рабочего дня
type UpsertWorkingDayRequest struct {
	UserID              int64          `json:"-"`
	ProviderID          int64          `json:"-"`
	Date                time.Time      `json:"-"`
	IsWorking           bool           `json:"isWorking"`
	StartTime           string         `json:"startTime,omitempty" validate:"omitempty,hhmm"`
	EndTime             string         `json:"endTime,omitempty" validate:"omitempty,hhmm"`
	SlotIntervalMinutes int            `json:"slotIntervalMinutes,omitempty" validate:"omitempty,min=5,max=480"`
	Breaks              []BreakRequest `json:"breaks,omitempty" validate:"max=10,dive"`
}

// UpdatePolicyRequest запрос на сохранение политики отмен
type UpdatePolicyRequest struct {
	UserID            int64   `json:"-"`
	ProviderID        int64   `json:"-"`
	IsEnabled         bool    `json:"isEnabled"`
	PeriodDays        int     `json:"periodDays" validate:"min=1,max=365"`
	MaxCancellations  int     `json:"maxCancellations" validate:"min=1,max=100"`
	NoShowMultiplier  float64 `json:"noShowMultiplier" validate:"gt=0,max=10"`
	BlockDurationDays int     `json:"blockDurationDays" validate:"min=1,max=365"`
}

// Response модели

// BusinessHoursResponse недельное расписание мастера
type BusinessHoursResponse struct {
	ProviderID int64              `json:"providerId"`
	IsDefault  bool               `json:"isDefault"` // расписание не настроено, показан шаблон по умолчанию
	Days       []BusinessHoursDay `json:"days"`
}

// SpecialHoursResponse особый день
type SpecialHoursResponse struct {
	ProviderID int64  `json:"providerId"`
	Date       string `json:"date"`
	Name       string `json:"name"`
	IsOpen     bool   `json:"isOpen"`
	OpenTime   string `json:"openTime,omitempty"`
	CloseTime  string `json:"closeTime,omitempty"`
}

// SpecialHoursListResponse список особых дней
type SpecialHoursListResponse struct {
	SpecialHours []SpecialHoursResponse `json:"specialHours"`
}

// WorkingDayResponse рабочий день
type WorkingDayResponse struct {
	ProviderID          int64          `json:"providerId"`
	Date                string         `json:"date"`
	IsWorking           bool           `json:"isWorking"`
	StartTime           string         `json:"startTime,omitempty"`
	EndTime             string         `json:"endTime,omitempty"`
	SlotIntervalMinutes int            `json:"slotIntervalMinutes,omitempty"`
	Breaks              []BreakRequest `json:"breaks"`
}

// PolicyResponse политика отмен
type PolicyResponse struct {
	ProviderID        int64   `json:"providerId"`
	IsEnabled         bool    `json:"isEnabled"`
	PeriodDays        int     `json:"periodDays"`
	MaxCancellations  int     `json:"maxCancellations"`
	NoShowMultiplier  float64 `json:"noShowMultiplier"`
	BlockDurationDays int     `json:"blockDurationDays"`
}

// Методы конвертации

// FromDomainBusinessHours конвертирует строки расписания в DTO (дни в нумерации с понедельника)
func FromDomainBusinessHours(providerID int64, rows []*domain.BusinessHours) *BusinessHoursResponse {
	resp := &BusinessHoursResponse{
		ProviderID: providerID,
		Days:       make([]BusinessHoursDay, 0, len(rows)),
	}
	for _, row := range rows {
		resp.Days = append(resp.Days, BusinessHoursDay{
			Weekday:   domain.WeekdayToUI(row.Weekday),
			IsOpen:    row.IsOpen,
			OpenTime:  row.OpenTime.String(),
			CloseTime: row.CloseTime.String(),
		})
	}
	sortDays(resp.Days)
	return resp
}

// DefaultBusinessHours возвращает встроенный шаблон недели
func DefaultBusinessHours(providerID int64) *BusinessHoursResponse {
	resp := &BusinessHoursResponse{
		ProviderID: providerID,
		IsDefault:  true,
		Days:       make([]BusinessHoursDay, 0, len(domain.DefaultWeeklyTemplate)),
	}
	for weekday, tpl := range domain.DefaultWeeklyTemplate {
		resp.Days = append(resp.Days, BusinessHoursDay{
			Weekday:   domain.WeekdayToUI(weekday),
			IsOpen:    tpl.IsOpen,
			OpenTime:  tpl.OpenTime.String(),
			CloseTime: tpl.CloseTime.String(),
		})
	}
	sortDays(resp.Days)
	return resp
}

// FromDomainSpecialHours конвертирует особый день в DTO
func FromDomainSpecialHours(s *domain.SpecialHours) *SpecialHoursResponse {
	if s == nil {
		return nil
	}
	return &SpecialHoursResponse{
		ProviderID: s.ProviderID,
		Date:       s.Date.Format(domain.DateFormat),
		Name:       s.Name,
		IsOpen:     s.IsOpen,
		OpenTime:   s.OpenTime.String(),
		CloseTime:  s.CloseTime.String(),
	}
}

// FromDomainSpecialHoursList конвертирует список особых дней в DTO
func FromDomainSpecialHoursList(list []*domain.SpecialHours) *SpecialHoursListResponse {
	resp := &SpecialHoursListResponse{SpecialHours: make([]SpecialHoursResponse, 0, len(list))}
	for _, s := range list {
		if item := FromDomainSpecialHours(s); item != nil {
			resp.SpecialHours = append(resp.SpecialHours, *item)
		}
	}
	return resp
}

// FromDomainWorkingDay конвертирует рабочий день в DTO
func FromDomainWorkingDay(w *domain.WorkingDay) *WorkingDayResponse {
	if w == nil {
		return nil
	}
	resp := &WorkingDayResponse{
		ProviderID:          w.ProviderID,
		Date:                w.Date.Format(domain.DateFormat),
		IsWorking:           w.IsWorking,
		StartTime:           w.StartTime.String(),
		EndTime:             w.EndTime.String(),
		SlotIntervalMinutes: w.SlotIntervalMinutes,
		Breaks:              make([]BreakRequest, 0, len(w.Breaks)),
	}
	for _, b := range w.Breaks {
		resp.Breaks = append(resp.Breaks, BreakRequest{Start: b.Start.String(), End: b.End.String()})
	}
	return resp
}

// FromDomainPolicy конвертирует политику отмен в DTO
func FromDomainPolicy(p *domain.CancellationPolicy) *PolicyResponse {
	if p == nil {
		return nil
	}
	return &PolicyResponse{
		ProviderID:        p.ProviderID,
		IsEnabled:         p.IsEnabled,
		PeriodDays:        p.PeriodDays,
		MaxCancellations:  p.MaxCancellations,
		NoShowMultiplier:  p.NoShowMultiplier,
		BlockDurationDays: p.BlockDurationDays,
	}
}

// ToDomainPolicy конвертирует запрос в domain модель
func (r *UpdatePolicyRequest) ToDomainPolicy() *domain.CancellationPolicy {
	return &domain.CancellationPolicy{
		ProviderID:        r.ProviderID,
		IsEnabled:         r.IsEnabled,
		PeriodDays:        r.PeriodDays,
		MaxCancellations:  r.MaxCancellations,
		NoShowMultiplier:  r.NoShowMultiplier,
		BlockDurationDays: r.BlockDurationDays,
	}
}

// ToDomainBusinessHours конвертирует запрос в строки расписания (дни в нумерации с воскресенья)
func (r *UpdateBusinessHoursRequest) ToDomainBusinessHours() ([]*domain.BusinessHours, error) {
	rows := make([]*domain.BusinessHours, 0, len(r.Days))
	for _, day := range r.Days {
		weekday, err := domain.WeekdayFromUI(day.Weekday)
		if err != nil {
			return nil, err
		}
		row := &domain.BusinessHours{ProviderID: r.ProviderID, Weekday: weekday, IsOpen: day.IsOpen}
		if day.IsOpen {
			if row.OpenTime, err = parseTime(day.OpenTime); err != nil {
				return nil, err
			}
			if row.CloseTime, err = parseTime(day.CloseTime); err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ToDomainSpecialHours конвертирует запрос в domain модель
func (r *UpsertSpecialHoursRequest) ToDomainSpecialHours() (*domain.SpecialHours, error) {
	special := &domain.SpecialHours{
		ProviderID: r.ProviderID,
		Date:       r.Date,
		Name:       r.Name,
		IsOpen:     r.IsOpen,
	}
	if r.IsOpen {
		var err error
		if special.OpenTime, err = parseTime(r.OpenTime); err != nil {
			return nil, err
		}
		if special.CloseTime, err = parseTime(r.CloseTime); err != nil {
			return nil, err
		}
	}
	return special, nil
}

// ToDomainWorkingDay конвертирует запрос в domain модель
func (r *UpsertWorkingDayRequest) ToDomainWorkingDay() (*domain.WorkingDay, error) {
	day := &domain.WorkingDay{
		ProviderID:          r.ProviderID,
		Date:                r.Date,
		IsWorking:           r.IsWorking,
		SlotIntervalMinutes: r.SlotIntervalMinutes,
		Breaks:              make([]domain.Interval, 0, len(r.Breaks)),
	}
	if !r.IsWorking {
		return day, nil
	}

	var err error
	if day.StartTime, err = parseTime(r.StartTime); err != nil {
		return nil, err
	}
	if day.EndTime, err = parseTime(r.EndTime); err != nil {
		return nil, err
	}
	for _, b := range r.Breaks {
		start, err := parseTime(b.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseTime(b.End)
		if err != nil {
			return nil, err
		}
		day.Breaks = append(day.Breaks, domain.Interval{Start: start, End: end})
	}
	return day, nil
}

// parseTime разбирает HH:MM; пустая строка дает пустое время
func parseTime(s string) (types.TimeString, error) {
	if s == "" {
		return "", nil
	}
	return types.NewTimeStringFromString(s)
}

func sortDays(days []BusinessHoursDay) {
	sort.Slice(days, func(i, j int) bool { return days[i].Weekday < days[j].Weekday })
}
