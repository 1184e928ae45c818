package autocomplete

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// JobName имя задачи в метриках и логах
const JobName = "autocomplete"

// Job переводит подтвержденные записи, время окончания которых прошло, в completed.
// Неявки автоматически не проставляются: это делает мастер
type Job struct {
	repo         AppointmentRepository
	timeProvider TimeProvider
	location     *time.Location
	timeout      time.Duration
	recorder     Recorder
	logger       Logger
}

// NewJob создает задачу автозавершения
func NewJob(
	repo AppointmentRepository,
	timeProvider TimeProvider,
	location *time.Location,
	timeout time.Duration,
	recorder Recorder,
	logger Logger,
) *Job {
	return &Job{
		repo:         repo,
		timeProvider: timeProvider,
		location:     location,
		timeout:      timeout,
		recorder:     recorder,
		logger:       logger,
	}
}

// RunOnce выполняет один проход и возвращает количество завершенных записей
func (j *Job) RunOnce(ctx context.Context) (int64, error) {
	localNow := j.timeProvider.Now().In(j.location)

	completed, err := j.repo.CompleteFinished(ctx, localNow)
	if j.recorder != nil {
		j.recorder.ObserveJobRun(JobName, err)
	}
	if err != nil {
		j.logger.Error("RunOnce: failed to complete finished appointments: %v", err)
		return 0, fmt.Errorf("%s: RunOnce - complete finished: %w", JobName, err)
	}

	if completed > 0 {
		j.logger.Info("RunOnce: completed %d appointments (local time %s)", completed, localNow.Format(time.RFC3339))
	}
	return completed, nil
}

// Run выполняет проход с таймаутом; используется как cron.Job
func (j *Job) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	_, _ = j.RunOnce(ctx)
}

// Schedule регистрирует задачу в планировщике по cron-выражению
func Schedule(c *cron.Cron, spec string, job *Job) (cron.EntryID, error) {
	id, err := c.AddJob(spec, cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(job))
	if err != nil {
		return 0, fmt.Errorf("%s: Schedule - invalid spec %q: %w", JobName, spec, err)
	}
	return id, nil
}
