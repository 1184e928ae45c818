package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdayFromUI(t *testing.T) {
	expected := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}

	for ui, want := range expected {
		got, err := WeekdayFromUI(ui)
		require.NoError(t, err)
		assert.Equal(t, want, got, "ui index %d", ui)
		assert.Equal(t, ui, WeekdayToUI(got), "round trip for %s", got)
	}

	_, err := WeekdayFromUI(7)
	assert.ErrorIs(t, err, ErrInvalidWeekday)
	_, err = WeekdayFromUI(-1)
	assert.ErrorIs(t, err, ErrInvalidWeekday)
}

func TestParseWeekday(t *testing.T) {
	got, err := ParseWeekday(0)
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, got)

	_, err = ParseWeekday(7)
	assert.ErrorIs(t, err, ErrInvalidWeekday)
}
