package domain

import "github.com/m04kA/SMC-AvailabilityService/pkg/types"

// Slot is a candidate bookable interval of fixed length
type Slot struct {
	Start     types.TimeString
	End       types.TimeString
	Available bool
}

// Interval returns the slot's [Start, End) interval
func (s Slot) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}
