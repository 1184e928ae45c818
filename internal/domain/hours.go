package domain

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// BusinessHours is the weekly template row for one weekday of a provider.
// Invariant: if IsOpen, OpenTime < CloseTime.
type BusinessHours struct {
	ID         int64
	ProviderID int64
	Weekday    time.Weekday
	IsOpen     bool
	OpenTime   types.TimeString
	CloseTime  types.TimeString
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SpecialHours overrides the weekly template for one exact calendar date
// (holiday, shortened day, extra working day)
type SpecialHours struct {
	ID         int64
	ProviderID int64
	Date       time.Time
	Name       string
	IsOpen     bool
	OpenTime   types.TimeString
	CloseTime  types.TimeString
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HoursSource tells which rule produced the effective hours
type HoursSource string

const (
	HoursSourceSpecial HoursSource = "special"
	HoursSourceWeekly  HoursSource = "weekly"
	HoursSourceDefault HoursSource = "default"
)

// EffectiveHours is the resolved open state and hours for one date
type EffectiveHours struct {
	Date           time.Time
	IsOpen         bool
	OpenTime       types.TimeString // empty when closed
	CloseTime      types.TimeString // empty when closed
	IsSpecialDay   bool
	SpecialDayName *string
	Source         HoursSource
}

// Interval returns the open interval; meaningful only when IsOpen
func (h *EffectiveHours) Interval() Interval {
	return Interval{Start: h.OpenTime, End: h.CloseTime}
}

// DayTemplate is one entry of the built-in weekly template
type DayTemplate struct {
	IsOpen    bool
	OpenTime  types.TimeString
	CloseTime types.TimeString
}

// DefaultWeeklyTemplate is used only when a provider has configured no
// business hours at all: Mon-Fri 09:00-18:00, Sat 10:00-16:00, Sun closed
var DefaultWeeklyTemplate = map[time.Weekday]DayTemplate{
	time.Sunday:    {IsOpen: false},
	time.Monday:    {IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"},
	time.Tuesday:   {IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"},
	time.Wednesday: {IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"},
	time.Thursday:  {IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"},
	time.Friday:    {IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"},
	time.Saturday:  {IsOpen: true, OpenTime: "10:00", CloseTime: "16:00"},
}
