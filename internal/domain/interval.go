package domain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// ErrInvalidInterval is returned when an interval does not satisfy start < end
var ErrInvalidInterval = errors.New("invalid interval: start must be before end")

// Interval is a half-open time-of-day range [Start, End)
type Interval struct {
	Start types.TimeString
	End   types.TimeString
}

// Validate checks both bounds and that Start < End
func (i Interval) Validate() error {
	if err := i.Start.Validate(); err != nil {
		return err
	}
	if err := i.End.Validate(); err != nil {
		return err
	}
	if !i.Start.IsBefore(i.End) {
		return fmt.Errorf("%w: %s-%s", ErrInvalidInterval, i.Start, i.End)
	}
	return nil
}

// Contains returns true if other lies entirely within i
func (i Interval) Contains(other Interval) bool {
	return !other.Start.IsBefore(i.Start) && !other.End.IsAfter(i.End)
}

// String returns the interval as "HH:MM-HH:MM"
func (i Interval) String() string {
	return fmt.Sprintf("%s-%s", i.Start, i.End)
}

// Overlaps reports whether two half-open intervals intersect.
// Intervals that only touch (a.End == b.Start) do not overlap, so
// back-to-back appointments are allowed.
func Overlaps(a, b Interval) bool {
	return a.Start.Minutes() < b.End.Minutes() && b.Start.Minutes() < a.End.Minutes()
}

// OverlapsAny reports whether candidate overlaps any of the given intervals
func OverlapsAny(candidate Interval, intervals []Interval) bool {
	for _, other := range intervals {
		if Overlaps(candidate, other) {
			return true
		}
	}
	return false
}

// MergeIntervals sorts intervals by start and coalesces overlapping or
// touching ones. The input slice is not modified.
func MergeIntervals(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return []Interval{}
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Minutes() < sorted[j].Start.Minutes()
	})

	merged := []Interval{sorted[0]}
	for _, current := range sorted[1:] {
		last := &merged[len(merged)-1]
		if current.Start.Minutes() <= last.End.Minutes() {
			if current.End.Minutes() > last.End.Minutes() {
				last.End = current.End
			}
			continue
		}
		merged = append(merged, current)
	}

	return merged
}
