package create_appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/blocking"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/schedule"
	"github.com/m04kA/SMC-AvailabilityService/pkg/ptr"
	"github.com/m04kA/SMC-AvailabilityService/pkg/txmanager"
)

type mockAppointmentRepo struct {
	mock.Mock
}

func (m *mockAppointmentRepo) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) GetByProviderWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Appointment), args.Error(1)
}

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

type mockBlocking struct {
	mock.Mock
}

func (m *mockBlocking) IsClientBlocked(ctx context.Context, client domain.ClientRef, providerID int64, now time.Time) (*domain.ClientBlockStatus, error) {
	args := m.Called(ctx, client, providerID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClientBlockStatus), args.Error(1)
}

// inlineTx выполняет fn без настоящей транзакции
type inlineTx struct {
	err error
}

func (t inlineTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.err != nil {
		return t.err
	}
	return fn(ctx)
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time {
	return f.now
}

type conflictRecorder struct {
	stages []string
}

func (r *conflictRecorder) IncBookingConflict(stage string) {
	r.stages = append(r.stages, stage)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var (
	now      = time.Date(2025, 1, 15, 10, 5, 0, 0, time.UTC)
	tomorrow = time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)
	clientID = ptr.Ptr(int64(42))
	client   = domain.ClientRef{ID: clientID}
)

func validRequest() *Request {
	return &Request{
		ProviderID:      1,
		ClientID:        clientID,
		ServiceName:     "Manicure",
		Date:            tomorrow,
		StartTime:       "11:00",
		DurationMinutes: 60,
	}
}

func openDay() *domain.DaySchedule {
	return &domain.DaySchedule{
		Hours:               domain.EffectiveHours{Date: tomorrow, IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"},
		SlotIntervalMinutes: 30,
		Breaks:              []domain.Interval{{Start: "13:00", End: "14:00"}},
	}
}

type fixture struct {
	repo     *mockAppointmentRepo
	schedule *mockSchedule
	blocking *mockBlocking
	recorder *conflictRecorder
	tx       inlineTx
}

func newFixture() *fixture {
	return &fixture{
		repo:     new(mockAppointmentRepo),
		schedule: new(mockSchedule),
		blocking: new(mockBlocking),
		recorder: &conflictRecorder{},
	}
}

func (f *fixture) useCase(opts Options) *UseCase {
	return NewUseCase(f.repo, f.schedule, f.blocking, f.tx, fixedTime{now: now}, opts, f.recorder, nopLogger{})
}

func (f *fixture) allowClient() {
	f.blocking.On("IsClientBlocked", mock.Anything, client, int64(1), now).
		Return(&domain.ClientBlockStatus{Blocked: false, State: domain.BlockStateWarned}, nil)
}

func TestUseCase_Execute_Success(t *testing.T) {
	f := newFixture()
	f.allowClient()
	f.schedule.On("GetDaySchedule", mock.Anything, int64(1), tomorrow).Return(openDay(), nil)
	f.repo.On("GetByProviderWithFilter", mock.Anything, mock.Anything).Return([]*domain.Appointment{
		{ID: 7, Status: domain.StatusConfirmed, StartTime: "10:00", EndTime: "11:00"},
		{ID: 8, Status: domain.StatusConfirmed, StartTime: "12:00", EndTime: "12:30"},
	}, nil)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Appointment) bool {
		return a.StartTime == "11:00" && a.EndTime == "12:00" && a.Status == domain.StatusConfirmed && *a.ClientID == 42
	})).Return(&domain.Appointment{ID: 9, Status: domain.StatusConfirmed}, nil)

	result, err := f.useCase(Options{AutoConfirm: true}).Execute(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(9), result.ID)
	f.repo.AssertExpectations(t)
}

func TestUseCase_Execute_PendingWithoutAutoConfirm(t *testing.T) {
	f := newFixture()
	f.allowClient()
	f.schedule.On("GetDaySchedule", mock.Anything, int64(1), tomorrow).Return(openDay(), nil)
	f.repo.On("GetByProviderWithFilter", mock.Anything, mock.Anything).Return([]*domain.Appointment{}, nil)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Appointment) bool {
		return a.Status == domain.StatusPending
	})).Return(&domain.Appointment{ID: 1, Status: domain.StatusPending}, nil)

	_, err := f.useCase(Options{}).Execute(context.Background(), validRequest())
	require.NoError(t, err)
}

func TestUseCase_Execute_DetectorConflict(t *testing.T) {
	f := newFixture()
	f.allowClient()
	f.schedule.On("GetDaySchedule", mock.Anything, int64(1), tomorrow).Return(openDay(), nil)
	f.repo.On("GetByProviderWithFilter", mock.Anything, mock.Anything).Return([]*domain.Appointment{
		{ID: 7, Status: domain.StatusPending, StartTime: "11:30", EndTime: "12:30"},
	}, nil)

	_, err := f.useCase(Options{}).Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, []string{"detector"}, f.recorder.stages)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUseCase_Execute_ConstraintConflict(t *testing.T) {
	f := newFixture()
	f.allowClient()
	f.schedule.On("GetDaySchedule", mock.Anything, int64(1), tomorrow).Return(openDay(), nil)
	f.repo.On("GetByProviderWithFilter", mock.Anything, mock.Anything).Return([]*domain.Appointment{}, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil, appointmentRepo.ErrSlotTaken)

	_, err := f.useCase(Options{}).Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, []string{"constraint"}, f.recorder.stages)
}

func TestUseCase_Execute_SerializationFailureIsConflict(t *testing.T) {
	f := newFixture()
	f.allowClient()
	f.schedule.On("GetDaySchedule", mock.Anything, int64(1), tomorrow).Return(openDay(), nil)
	f.tx = inlineTx{err: txmanager.ErrSerialization}

	_, err := f.useCase(Options{}).Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestUseCase_Execute_Blocked(t *testing.T) {
	f := newFixture()
	unblocksAt := now.AddDate(0, 0, 5)
	f.blocking.On("IsClientBlocked", mock.Anything, client, int64(1), now).
		Return(&domain.ClientBlockStatus{Blocked: true, State: domain.BlockStateBlocked, UnblocksAt: &unblocksAt}, nil)

	_, err := f.useCase(Options{}).Execute(context.Background(), validRequest())

	require.ErrorIs(t, err, ErrClientBlocked)
	var blockedErr *BlockedError
	require.True(t, errors.As(err, &blockedErr))
	assert.Equal(t, unblocksAt, blockedErr.UnblocksAt)
	f.schedule.AssertNotCalled(t, "GetDaySchedule", mock.Anything, mock.Anything, mock.Anything)
}

func TestUseCase_Execute_BlockCheckFailureRefuses(t *testing.T) {
	f := newFixture()
	f.blocking.On("IsClientBlocked", mock.Anything, client, int64(1), now).
		Return(nil, blocking.ErrDataSource)

	_, err := f.useCase(Options{}).Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrBlockCheckFailed)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUseCase_Execute_ScheduleErrors(t *testing.T) {
	t.Run("resolution failed", func(t *testing.T) {
		f := newFixture()
		f.allowClient()
		f.schedule.On("GetDaySchedule", mock.Anything, int64(1), tomorrow).Return(nil, schedule.ErrResolutionFailed)

		_, err := f.useCase(Options{}).Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrScheduleUnavailable)
	})

	t.Run("closed", func(t *testing.T) {
		f := newFixture()
		f.allowClient()
		day := openDay()
		day.Hours = domain.EffectiveHours{Date: tomorrow, IsOpen: false}
		f.schedule.On("GetDaySchedule", mock.Anything, int64(1), tomorrow).Return(day, nil)

		_, err := f.useCase(Options{}).Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrProviderClosed)
	})

	t.Run("outside hours", func(t *testing.T) {
		f := newFixture()
		f.allowClient()
		f.schedule.On("GetDaySchedule", mock.Anything, int64(1), tomorrow).Return(openDay(), nil)

		req := validRequest()
		req.StartTime = "17:30"
		_, err := f.useCase(Options{}).Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidTimeSlot)
	})

	t.Run("on a break", func(t *testing.T) {
		f := newFixture()
		f.allowClient()
		f.schedule.On("GetDaySchedule", mock.Anything, int64(1), tomorrow).Return(openDay(), nil)

		req := validRequest()
		req.StartTime = "12:30"
		_, err := f.useCase(Options{}).Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidTimeSlot)
	})
}

func TestUseCase_Execute_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr error
	}{
		{name: "no client", mutate: func(r *Request) { r.ClientID = nil }, wantErr: ErrInvalidInput},
		{name: "no service", mutate: func(r *Request) { r.ServiceName = " " }, wantErr: ErrInvalidInput},
		{name: "bad time", mutate: func(r *Request) { r.StartTime = "25:00" }, wantErr: ErrInvalidInput},
		{name: "short duration", mutate: func(r *Request) { r.DurationMinutes = 1 }, wantErr: ErrInvalidInput},
		{name: "past date", mutate: func(r *Request) { r.Date = tomorrow.AddDate(0, 0, -2) }, wantErr: ErrInvalidDate},
		{
			name:    "today already started",
			mutate:  func(r *Request) { r.Date = tomorrow.AddDate(0, 0, -1); r.StartTime = "10:00" },
			wantErr: ErrTooLateToBook,
		},
		{
			name:    "crosses midnight",
			mutate:  func(r *Request) { r.StartTime = "23:30" },
			wantErr: ErrInvalidTimeSlot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := validRequest()
			tt.mutate(req)

			_, err := f.useCase(Options{}).Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUseCase_Execute_TooFarInFuture(t *testing.T) {
	f := newFixture()
	req := validRequest()
	req.Date = tomorrow.AddDate(0, 0, 60)

	_, err := f.useCase(Options{MaxAdvanceDays: 30}).Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrDateTooFarInFuture)
}

func TestUseCase_Execute_PhoneClient(t *testing.T) {
	f := newFixture()
	phone := ptr.Ptr("+79990001122")
	f.blocking.On("IsClientBlocked", mock.Anything, domain.ClientRef{Phone: phone}, int64(1), now).
		Return(&domain.ClientBlockStatus{State: domain.BlockStateClear}, nil)
	f.schedule.On("GetDaySchedule", mock.Anything, int64(1), tomorrow).Return(openDay(), nil)
	f.repo.On("GetByProviderWithFilter", mock.Anything, mock.Anything).Return([]*domain.Appointment{}, nil)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Appointment) bool {
		return a.ClientID == nil && *a.ClientPhone == "+79990001122"
	})).Return(&domain.Appointment{ID: 3}, nil)

	req := validRequest()
	req.ClientID = nil
	req.ClientPhone = phone

	result, err := f.useCase(Options{}).Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.ID)
}
