package autocomplete

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CompleteFinished(ctx context.Context, localNow time.Time) (int64, error) {
	args := m.Called(ctx, localNow)
	return args.Get(0).(int64), args.Error(1)
}

type recorder struct {
	runs []error
}

func (r *recorder) ObserveJobRun(job string, err error) {
	r.runs = append(r.runs, err)
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

func TestRunOnce_UsesLocalTime(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2025, 1, 15, 20, 30, 0, 0, time.UTC)

	repo := new(mockRepo)
	repo.On("CompleteFinished", mock.Anything, mock.MatchedBy(func(local time.Time) bool {
		return local.Location() == loc && local.Hour() == 23 && local.Minute() == 30
	})).Return(int64(4), nil)
	rec := &recorder{}

	job := NewJob(repo, fixedTime{now: now}, loc, time.Second, rec, nopLogger{})
	completed, err := job.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(4), completed)
	assert.Equal(t, []error{nil}, rec.runs)
}

func TestRunOnce_Error(t *testing.T) {
	dbErr := errors.New("db down")
	repo := new(mockRepo)
	repo.On("CompleteFinished", mock.Anything, mock.Anything).Return(int64(0), dbErr)
	rec := &recorder{}

	job := NewJob(repo, fixedTime{now: time.Now()}, time.UTC, time.Second, rec, nopLogger{})
	_, err := job.RunOnce(context.Background())

	assert.ErrorIs(t, err, dbErr)
	require.Len(t, rec.runs, 1)
	assert.ErrorIs(t, rec.runs[0], dbErr)
}

func TestSchedule(t *testing.T) {
	job := NewJob(new(mockRepo), RealTimeProvider{}, time.UTC, time.Second, nil, nopLogger{})
	c := cron.New()

	_, err := Schedule(c, "*/5 * * * *", job)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	_, err = Schedule(c, "not a spec", job)
	assert.Error(t, err)
}
