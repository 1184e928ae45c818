package domain

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// WorkingDay is a concrete, possibly customized schedule for one date.
// Providers who plan day by day configure these instead of relying on
// the weekly template alone.
type WorkingDay struct {
	ID                  int64
	ProviderID          int64
	Date                time.Time
	IsWorking           bool
	StartTime           types.TimeString
	EndTime             types.TimeString
	SlotIntervalMinutes int
	Breaks              []Interval
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Interval returns the working interval
func (w *WorkingDay) Interval() Interval {
	return Interval{Start: w.StartTime, End: w.EndTime}
}

// DaySchedule is what the slot generator needs for one date: the open
// interval, the step between candidate slots and the breaks to avoid
type DaySchedule struct {
	Hours               EffectiveHours
	SlotIntervalMinutes int
	Breaks              []Interval
	FromWorkingDay      bool
}
