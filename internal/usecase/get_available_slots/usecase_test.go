package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/schedule"
)

type mockSchedule struct {
	mock.Mock
}

func (m *mockSchedule) GetDaySchedule(ctx context.Context, providerID int64, date time.Time) (*domain.DaySchedule, error) {
	args := m.Called(ctx, providerID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DaySchedule), args.Error(1)
}

type mockAppointmentRepo struct {
	mock.Mock
}

func (m *mockAppointmentRepo) GetByProviderWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Appointment), args.Error(1)
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time {
	return f.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var (
	loc      = time.UTC
	today    = time.Date(2025, 1, 15, 0, 0, 0, 0, loc)
	tomorrow = today.AddDate(0, 0, 1)
	clock    = fixedTime{now: time.Date(2025, 1, 15, 10, 5, 0, 0, loc)}
)

func openDay(date time.Time) *domain.DaySchedule {
	return &domain.DaySchedule{
		Hours: domain.EffectiveHours{
			Date: date, IsOpen: true, OpenTime: "09:00", CloseTime: "12:00", Source: domain.HoursSourceWeekly,
		},
		SlotIntervalMinutes: 30,
		Breaks:              []domain.Interval{},
	}
}

func TestUseCase_Execute_Tomorrow(t *testing.T) {
	ctx := context.Background()
	sched := new(mockSchedule)
	sched.On("GetDaySchedule", ctx, int64(1), tomorrow).Return(openDay(tomorrow), nil)

	appts := new(mockAppointmentRepo)
	appts.On("GetByProviderWithFilter", ctx, mock.MatchedBy(func(f domain.AppointmentsFilter) bool {
		return f.ProviderID == 1 && f.StartDate.Equal(tomorrow) && f.EndDate.Equal(tomorrow) && !f.IncludeInactive
	})).Return([]*domain.Appointment{
		{Status: domain.StatusConfirmed, StartTime: "10:00", EndTime: "11:00"},
		{Status: domain.StatusCancelled, StartTime: "09:00", EndTime: "09:30"},
	}, nil)

	uc := NewUseCase(sched, appts, clock, loc, 0, nil, nopLogger{})
	resp, err := uc.Execute(ctx, &Request{ProviderID: 1, Date: tomorrow})

	require.NoError(t, err)
	assert.Equal(t, 30, resp.DurationMinutes)
	assert.Equal(t, []string{"09:00", "09:30", "11:00", "11:30"}, availableStarts(resp.Slots))
	assert.Len(t, resp.Slots, 6)
}

func TestUseCase_Execute_TodayHidesPast(t *testing.T) {
	ctx := context.Background()
	sched := new(mockSchedule)
	sched.On("GetDaySchedule", ctx, int64(1), today).Return(openDay(today), nil)
	appts := new(mockAppointmentRepo)
	appts.On("GetByProviderWithFilter", ctx, mock.Anything).Return([]*domain.Appointment{}, nil)

	uc := NewUseCase(sched, appts, clock, loc, 0, nil, nopLogger{})
	resp, err := uc.Execute(ctx, &Request{ProviderID: 1, Date: today, DurationMinutes: 60})

	require.NoError(t, err)
	assert.Equal(t, []string{"10:30", "11:00"}, availableStarts(resp.Slots))
}

func TestUseCase_Execute_Closed(t *testing.T) {
	ctx := context.Background()
	day := openDay(tomorrow)
	day.Hours.IsOpen = false
	sched := new(mockSchedule)
	sched.On("GetDaySchedule", ctx, int64(1), tomorrow).Return(day, nil)
	appts := new(mockAppointmentRepo)

	uc := NewUseCase(sched, appts, clock, loc, 0, nil, nopLogger{})
	resp, err := uc.Execute(ctx, &Request{ProviderID: 1, Date: tomorrow})

	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
	appts.AssertNotCalled(t, "GetByProviderWithFilter", mock.Anything, mock.Anything)
}

func TestUseCase_Execute_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("past date", func(t *testing.T) {
		uc := NewUseCase(new(mockSchedule), new(mockAppointmentRepo), clock, loc, 0, nil, nopLogger{})
		_, err := uc.Execute(ctx, &Request{ProviderID: 1, Date: today.AddDate(0, 0, -1)})
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("too far", func(t *testing.T) {
		uc := NewUseCase(new(mockSchedule), new(mockAppointmentRepo), clock, loc, 30, nil, nopLogger{})
		_, err := uc.Execute(ctx, &Request{ProviderID: 1, Date: today.AddDate(0, 0, 31)})
		assert.ErrorIs(t, err, ErrDateTooFarInFuture)
	})

	t.Run("invalid duration", func(t *testing.T) {
		uc := NewUseCase(new(mockSchedule), new(mockAppointmentRepo), clock, loc, 0, nil, nopLogger{})
		_, err := uc.Execute(ctx, &Request{ProviderID: 1, Date: tomorrow, DurationMinutes: 1})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("resolution failed", func(t *testing.T) {
		sched := new(mockSchedule)
		sched.On("GetDaySchedule", ctx, int64(1), tomorrow).
			Return(nil, errors.Join(schedule.ErrResolutionFailed, errors.New("db down")))

		uc := NewUseCase(sched, new(mockAppointmentRepo), clock, loc, 0, nil, nopLogger{})
		_, err := uc.Execute(ctx, &Request{ProviderID: 1, Date: tomorrow})
		assert.ErrorIs(t, err, ErrScheduleUnavailable)
	})

	t.Run("appointments failed", func(t *testing.T) {
		sched := new(mockSchedule)
		sched.On("GetDaySchedule", ctx, int64(1), tomorrow).Return(openDay(tomorrow), nil)
		appts := new(mockAppointmentRepo)
		appts.On("GetByProviderWithFilter", ctx, mock.Anything).Return(nil, errors.New("timeout"))

		uc := NewUseCase(sched, appts, clock, loc, 0, nil, nopLogger{})
		_, err := uc.Execute(ctx, &Request{ProviderID: 1, Date: tomorrow})
		assert.ErrorIs(t, err, ErrScheduleUnavailable)
	})
}
