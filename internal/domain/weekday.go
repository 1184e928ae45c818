package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWeekday is returned for weekday numbers outside 0..6
var ErrInvalidWeekday = errors.New("weekday must be in range 0..6")

// Weekdays are stored and handled internally using time.Weekday numbering
// (Sunday = 0 ... Saturday = 6). Settings screens number days starting
// from Monday (Monday = 0 ... Sunday = 6); the helpers below convert at
// that boundary.

// ParseWeekday validates a stored weekday number (Sunday = 0)
func ParseWeekday(n int) (time.Weekday, error) {
	if n < 0 || n > 6 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidWeekday, n)
	}
	return time.Weekday(n), nil
}

// WeekdayFromUI converts a Monday-based index (Monday = 0) to time.Weekday
func WeekdayFromUI(n int) (time.Weekday, error) {
	if n < 0 || n > 6 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidWeekday, n)
	}
	return time.Weekday((n + 1) % 7), nil
}

// WeekdayToUI converts time.Weekday to a Monday-based index (Monday = 0)
func WeekdayToUI(d time.Weekday) int {
	return (int(d) + 6) % 7
}
