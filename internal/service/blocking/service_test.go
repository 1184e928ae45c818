package blocking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	policyRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/policy"
	"github.com/m04kA/SMC-AvailabilityService/pkg/ptr"
)

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

type mockAppointmentRepo struct {
	mock.Mock
}

func (m *mockAppointmentRepo) GetClientHistory(
	ctx context.Context,
	providerID int64,
	client domain.ClientRef,
	cancelledSince time.Time,
	noShowSince time.Time,
) ([]*domain.Appointment, error) {
	args := m.Called(ctx, providerID, client, cancelledSince, noShowSince)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Appointment), args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type stateRecorder struct {
	states []string
}

func (r *stateRecorder) ObserveBlockDecision(state string) {
	r.states = append(r.states, state)
}

func TestService_IsClientBlocked_NoPolicyIsClear(t *testing.T) {
	ctx := context.Background()
	policies := new(mockPolicyRepo)
	policies.On("GetByProvider", ctx, int64(5)).Return(nil, policyRepo.ErrPolicyNotFound)
	appts := new(mockAppointmentRepo)
	rec := &stateRecorder{}

	svc := NewService(policies, appts, time.UTC, rec, nopLogger{})
	status, err := svc.IsClientBlocked(ctx, domain.ClientRef{ID: ptr.Ptr(int64(9))}, 5, now)

	require.NoError(t, err)
	assert.False(t, status.Blocked)
	assert.Nil(t, status.Stats)
	assert.Equal(t, []string{"clear"}, rec.states)
	appts.AssertNotCalled(t, "GetClientHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_IsClientBlocked_Blocked(t *testing.T) {
	ctx := context.Background()
	client := domain.ClientRef{ID: ptr.Ptr(int64(9))}
	cutoff := now.AddDate(0, 0, -30)

	policies := new(mockPolicyRepo)
	policies.On("GetByProvider", ctx, int64(5)).Return(enabledPolicy(), nil)
	appts := new(mockAppointmentRepo)
	appts.On("GetClientHistory", ctx, int64(5), client, cutoff, domain.DateOnly(cutoff, time.UTC)).
		Return([]*domain.Appointment{
			cancelled(now.AddDate(0, 0, -2)),
			cancelled(now.AddDate(0, 0, -8)),
			noShow(now.AddDate(0, 0, -12)),
		}, nil)

	svc := NewService(policies, appts, time.UTC, nil, nopLogger{})
	status, err := svc.IsClientBlocked(ctx, client, 5, now)

	require.NoError(t, err)
	assert.True(t, status.Blocked)
	assert.Equal(t, now.AddDate(0, 0, 5), *status.UnblocksAt)
	assert.Equal(t, 4.0, status.Stats.EffectiveCount)
	appts.AssertExpectations(t)
}

func TestService_IsClientBlocked_PhoneClient(t *testing.T) {
	ctx := context.Background()
	client := domain.ClientRef{Phone: ptr.Ptr("+79990001122")}

	policies := new(mockPolicyRepo)
	policies.On("GetByProvider", ctx, int64(5)).Return(enabledPolicy(), nil)
	appts := new(mockAppointmentRepo)
	appts.On("GetClientHistory", ctx, int64(5), client, mock.Anything, mock.Anything).
		Return([]*domain.Appointment{}, nil)

	svc := NewService(policies, appts, time.UTC, nil, nopLogger{})
	status, err := svc.IsClientBlocked(ctx, client, 5, now)

	require.NoError(t, err)
	assert.False(t, status.Blocked)
	assert.Equal(t, domain.BlockStateWarned, status.State)
	assert.Equal(t, 0.0, status.Stats.EffectiveCount)
}

func TestService_IsClientBlocked_DataSourceErrors(t *testing.T) {
	ctx := context.Background()
	client := domain.ClientRef{ID: ptr.Ptr(int64(9))}
	dbErr := errors.New("connection refused")

	t.Run("policy", func(t *testing.T) {
		policies := new(mockPolicyRepo)
		policies.On("GetByProvider", ctx, int64(5)).Return(nil, dbErr)

		svc := NewService(policies, new(mockAppointmentRepo), time.UTC, nil, nopLogger{})
		status, err := svc.IsClientBlocked(ctx, client, 5, now)

		assert.Nil(t, status)
		assert.ErrorIs(t, err, ErrDataSource)
	})

	t.Run("history", func(t *testing.T) {
		policies := new(mockPolicyRepo)
		policies.On("GetByProvider", ctx, int64(5)).Return(enabledPolicy(), nil)
		appts := new(mockAppointmentRepo)
		appts.On("GetClientHistory", ctx, int64(5), client, mock.Anything, mock.Anything).Return(nil, dbErr)

		svc := NewService(policies, appts, time.UTC, nil, nopLogger{})
		status, err := svc.IsClientBlocked(ctx, client, 5, now)

		assert.Nil(t, status)
		assert.ErrorIs(t, err, ErrDataSource)
	})
}

func TestService_IsClientBlocked_RequiresClient(t *testing.T) {
	svc := NewService(new(mockPolicyRepo), new(mockAppointmentRepo), time.UTC, nil, nopLogger{})
	_, err := svc.IsClientBlocked(context.Background(), domain.ClientRef{}, 5, now)
	assert.ErrorIs(t, err, ErrInvalidClient)
}
