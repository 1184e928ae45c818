package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	hoursRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/hours"
	policyRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/policy"
	workingDayRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/workingday"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/settings/models"
)

type mockHoursRepo struct {
	mock.Mock
}

func (m *mockHoursRepo) GetBusinessHours(ctx context.Context, providerID int64) ([]*domain.BusinessHours, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BusinessHours), args.Error(1)
}

func (m *mockHoursRepo) UpsertBusinessHours(ctx context.Context, providerID int64, days []*domain.BusinessHours) error {
	return m.Called(ctx, providerID, days).Error(0)
}

func (m *mockHoursRepo) ListSpecialHours(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.SpecialHours, error) {
	args := m.Called(ctx, providerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SpecialHours), args.Error(1)
}

func (m *mockHoursRepo) UpsertSpecialHours(ctx context.Context, special *domain.SpecialHours) (*domain.SpecialHours, error) {
	args := m.Called(ctx, special)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SpecialHours), args.Error(1)
}

func (m *mockHoursRepo) DeleteSpecialHours(ctx context.Context, providerID int64, date time.Time) error {
	return m.Called(ctx, providerID, date).Error(0)
}

type mockWorkingDayRepo struct {
	mock.Mock
}

func (m *mockWorkingDayRepo) Get(ctx context.Context, providerID int64, date time.Time) (*domain.WorkingDay, error) {
	args := m.Called(ctx, providerID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkingDay), args.Error(1)
}

func (m *mockWorkingDayRepo) Upsert(ctx context.Context, day *domain.WorkingDay) (*domain.WorkingDay, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkingDay), args.Error(1)
}

func (m *mockWorkingDayRepo) Delete(ctx context.Context, providerID int64, date time.Time) error {
	return m.Called(ctx, providerID, date).Error(0)
}

type mockPolicyRepo struct {
	mock.Mock
}

func (m *mockPolicyRepo) GetByProvider(ctx context.Context, providerID int64) (*domain.CancellationPolicy, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CancellationPolicy), args.Error(1)
}

func (m *mockPolicyRepo) Upsert(ctx context.Context, p *domain.CancellationPolicy) (*domain.CancellationPolicy, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CancellationPolicy), args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

const providerID = int64(7)

var day = time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)

type fixture struct {
	hours   *mockHoursRepo
	days    *mockWorkingDayRepo
	policy  *mockPolicyRepo
	service *Service
}

func newFixture() *fixture {
	f := &fixture{
		hours:  new(mockHoursRepo),
		days:   new(mockWorkingDayRepo),
		policy: new(mockPolicyRepo),
	}
	f.service = NewService(f.hours, f.days, f.policy, nopLogger{})
	return f
}

func TestUpdateBusinessHours_ConvertsWeekdays(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	var saved []*domain.BusinessHours
	f.hours.On("UpsertBusinessHours", ctx, providerID, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(2).([]*domain.BusinessHours) }).
		Return(nil)
	f.hours.On("GetBusinessHours", ctx, providerID).Return([]*domain.BusinessHours{
		{ProviderID: providerID, Weekday: time.Sunday, IsOpen: false},
		{ProviderID: providerID, Weekday: time.Monday, IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"},
	}, nil)

	resp, err := f.service.UpdateBusinessHours(ctx, &models.UpdateBusinessHoursRequest{
		UserID:     providerID,
		ProviderID: providerID,
		Days: []models.BusinessHoursDay{
			{Weekday: 0, IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"},
			{Weekday: 6, IsOpen: false},
		},
	})

	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, time.Monday, saved[0].Weekday)
	assert.Equal(t, time.Sunday, saved[1].Weekday)
	assert.True(t, saved[1].OpenTime.IsZero())

	require.Len(t, resp.Days, 2)
	assert.Equal(t, 0, resp.Days[0].Weekday)
	assert.Equal(t, 6, resp.Days[1].Weekday)
	assert.False(t, resp.IsDefault)
}

func TestUpdateBusinessHours_Validation(t *testing.T) {
	tests := []struct {
		name string
		days []models.BusinessHoursDay
	}{
		{name: "no days", days: nil},
		{name: "weekday out of range", days: []models.BusinessHoursDay{{Weekday: 7}}},
		{name: "duplicate weekday", days: []models.BusinessHoursDay{{Weekday: 1}, {Weekday: 1}}},
		{name: "bad time format", days: []models.BusinessHoursDay{{Weekday: 1, IsOpen: true, OpenTime: "9am", CloseTime: "18:00"}}},
		{name: "open after close", days: []models.BusinessHoursDay{{Weekday: 1, IsOpen: true, OpenTime: "18:00", CloseTime: "09:00"}}},
		{name: "open without times", days: []models.BusinessHoursDay{{Weekday: 1, IsOpen: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.service.UpdateBusinessHours(context.Background(), &models.UpdateBusinessHoursRequest{
				UserID: providerID, ProviderID: providerID, Days: tt.days,
			})
			assert.ErrorIs(t, err, ErrInvalidInput)
			f.hours.AssertNotCalled(t, "UpsertBusinessHours", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateBusinessHours_OnlyProvider(t *testing.T) {
	f := newFixture()
	_, err := f.service.UpdateBusinessHours(context.Background(), &models.UpdateBusinessHoursRequest{
		UserID: providerID + 1, ProviderID: providerID,
		Days: []models.BusinessHoursDay{{Weekday: 0, IsOpen: false}},
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetBusinessHours_DefaultTemplate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.hours.On("GetBusinessHours", ctx, providerID).Return([]*domain.BusinessHours{}, nil)

	resp, err := f.service.GetBusinessHours(ctx, providerID)

	require.NoError(t, err)
	assert.True(t, resp.IsDefault)
	require.Len(t, resp.Days, 7)
	assert.Equal(t, models.BusinessHoursDay{Weekday: 0, IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"}, resp.Days[0])
	assert.Equal(t, models.BusinessHoursDay{Weekday: 5, IsOpen: true, OpenTime: "10:00", CloseTime: "16:00"}, resp.Days[5])
	assert.False(t, resp.Days[6].IsOpen)
}

func TestUpsertSpecialHours(t *testing.T) {
	ctx := context.Background()

	t.Run("closed holiday", func(t *testing.T) {
		f := newFixture()
		f.hours.On("UpsertSpecialHours", ctx, mock.MatchedBy(func(s *domain.SpecialHours) bool {
			return !s.IsOpen && s.Name == "Holiday" && s.OpenTime.IsZero()
		})).Return(&domain.SpecialHours{ProviderID: providerID, Date: day, Name: "Holiday"}, nil)

		resp, err := f.service.UpsertSpecialHours(ctx, &models.UpsertSpecialHoursRequest{
			UserID: providerID, ProviderID: providerID, Date: day, Name: "Holiday",
			OpenTime: "10:00", CloseTime: "12:00",
		})
		require.NoError(t, err)
		assert.Equal(t, "2025-03-08", resp.Date)
	})

	t.Run("missing name", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.UpsertSpecialHours(ctx, &models.UpsertSpecialHoursRequest{
			UserID: providerID, ProviderID: providerID, Date: day,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("open with inverted hours", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.UpsertSpecialHours(ctx, &models.UpsertSpecialHoursRequest{
			UserID: providerID, ProviderID: providerID, Date: day, Name: "Short day",
			IsOpen: true, OpenTime: "14:00", CloseTime: "10:00",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestDeleteSpecialHours(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		f.hours.On("DeleteSpecialHours", ctx, providerID, day).Return(hoursRepo.ErrSpecialHoursNotFound)

		err := f.service.DeleteSpecialHours(ctx, providerID, providerID, day)
		assert.ErrorIs(t, err, ErrSpecialHoursNotFound)
	})

	t.Run("repository failure", func(t *testing.T) {
		f := newFixture()
		f.hours.On("DeleteSpecialHours", ctx, providerID, day).Return(errors.New("db down"))

		err := f.service.DeleteSpecialHours(ctx, providerID, providerID, day)
		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestUpsertWorkingDay(t *testing.T) {
	ctx := context.Background()

	t.Run("breaks inside hours", func(t *testing.T) {
		f := newFixture()
		f.days.On("Upsert", ctx, mock.MatchedBy(func(d *domain.WorkingDay) bool {
			return d.IsWorking && len(d.Breaks) == 1 && d.Breaks[0].Start == "13:00"
		})).Return(&domain.WorkingDay{
			ProviderID: providerID, Date: day, IsWorking: true, StartTime: "10:00", EndTime: "19:00",
			SlotIntervalMinutes: 15, Breaks: []domain.Interval{{Start: "13:00", End: "14:00"}},
		}, nil)

		resp, err := f.service.UpsertWorkingDay(ctx, &models.UpsertWorkingDayRequest{
			UserID: providerID, ProviderID: providerID, Date: day, IsWorking: true,
			StartTime: "10:00", EndTime: "19:00", SlotIntervalMinutes: 15,
			Breaks: []models.BreakRequest{{Start: "13:00", End: "14:00"}},
		})
		require.NoError(t, err)
		assert.Equal(t, []models.BreakRequest{{Start: "13:00", End: "14:00"}}, resp.Breaks)
	})

	t.Run("break outside hours", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.UpsertWorkingDay(ctx, &models.UpsertWorkingDayRequest{
			UserID: providerID, ProviderID: providerID, Date: day, IsWorking: true,
			StartTime: "10:00", EndTime: "19:00",
			Breaks: []models.BreakRequest{{Start: "18:30", End: "19:30"}},
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("interval too small", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.UpsertWorkingDay(ctx, &models.UpsertWorkingDayRequest{
			UserID: providerID, ProviderID: providerID, Date: day, IsWorking: true,
			StartTime: "10:00", EndTime: "19:00", SlotIntervalMinutes: 2,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("day off needs no hours", func(t *testing.T) {
		f := newFixture()
		f.days.On("Upsert", ctx, mock.Anything).
			Return(&domain.WorkingDay{ProviderID: providerID, Date: day}, nil)

		resp, err := f.service.UpsertWorkingDay(ctx, &models.UpsertWorkingDayRequest{
			UserID: providerID, ProviderID: providerID, Date: day,
		})
		require.NoError(t, err)
		assert.False(t, resp.IsWorking)
	})
}

func TestDeleteWorkingDay_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.days.On("Delete", ctx, providerID, day).Return(workingDayRepo.ErrWorkingDayNotFound)

	err := f.service.DeleteWorkingDay(ctx, providerID, providerID, day)
	assert.ErrorIs(t, err, ErrWorkingDayNotFound)
}

func TestGetPolicy_MissingIsDisabled(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.policy.On("GetByProvider", ctx, providerID).Return(nil, policyRepo.ErrPolicyNotFound)

	resp, err := f.service.GetPolicy(ctx, providerID, providerID)

	require.NoError(t, err)
	assert.False(t, resp.IsEnabled)
	assert.Equal(t, domain.DefaultPolicyMaxCancellations, resp.MaxCancellations)
}

func TestUpdatePolicy(t *testing.T) {
	ctx := context.Background()

	valid := models.UpdatePolicyRequest{
		UserID: providerID, ProviderID: providerID, IsEnabled: true,
		PeriodDays: 30, MaxCancellations: 3, NoShowMultiplier: 2, BlockDurationDays: 7,
	}

	t.Run("saved", func(t *testing.T) {
		f := newFixture()
		f.policy.On("Upsert", ctx, valid.ToDomainPolicy()).Return(valid.ToDomainPolicy(), nil)

		req := valid
		resp, err := f.service.UpdatePolicy(ctx, &req)
		require.NoError(t, err)
		assert.True(t, resp.IsEnabled)
		assert.Equal(t, 2.0, resp.NoShowMultiplier)
	})

	bad := []struct {
		name   string
		mutate func(r *models.UpdatePolicyRequest)
	}{
		{name: "zero period", mutate: func(r *models.UpdatePolicyRequest) { r.PeriodDays = 0 }},
		{name: "zero max", mutate: func(r *models.UpdatePolicyRequest) { r.MaxCancellations = 0 }},
		{name: "zero multiplier", mutate: func(r *models.UpdatePolicyRequest) { r.NoShowMultiplier = 0 }},
		{name: "zero block", mutate: func(r *models.UpdatePolicyRequest) { r.BlockDurationDays = 0 }},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := valid
			tt.mutate(&req)
			_, err := f.service.UpdatePolicy(ctx, &req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	t.Run("other user", func(t *testing.T) {
		f := newFixture()
		req := valid
		req.UserID = providerID + 1
		_, err := f.service.UpdatePolicy(ctx, &req)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}
