package worker

import (
	"fmt"
	"time"

	"github.com/Keeferf/SYSC4806-AmazinBookstore/pkg/logger"
	"github.com/robfig/cron/v3"
)

const defaultInterval = time.Hour

// JobFunc defines the function signature for scheduled jobs
type JobFunc func() error

// JobWorker runs one job on a fixed cron interval
type JobWorker struct {
	name     string
	cron     *cron.Cron
	job      JobFunc
	interval time.Duration
	logger   *logger.Logger
	entryID  cron.EntryID
}

// NewJobWorker creates a cron-scheduled worker with validation and defaults.
// An empty interval means one hour.
func NewJobWorker(name, interval string, job JobFunc, log *logger.Logger) (*JobWorker, error) {
	every := defaultInterval
	if interval != "" {
		duration, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid job interval '%s': %v", interval, err)
		}
		if duration < time.Second {
			return nil, fmt.Errorf("invalid job interval '%s': must be at least 1s", interval)
		}
		every = duration
	}

	workerLogger := log.WithComponent("job-worker").WithField("job", name)

	return &JobWorker{
		name: name,
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{workerLogger}),
			cron.SkipIfStillRunning(cronLogger{workerLogger}),
		)),
		job:      job,
		interval: every,
		logger:   workerLogger,
	}, nil
}

// Start schedules and begins the worker
func (w *JobWorker) Start() error {
	w.logger.Info(fmt.Sprintf("Starting job worker: %s (every %v)", w.name, w.interval))

	entryID, err := w.cron.AddFunc(w.schedule(), w.run)
	if err != nil {
		w.logger.Error("Failed to schedule job worker " + w.name + ": " + err.Error())
		return err
	}

	w.entryID = entryID
	w.cron.Start()

	return nil
}

// RunNow executes the job once on the calling goroutine
func (w *JobWorker) RunNow() error {
	return w.job()
}

// Stop gracefully shuts down the worker, waiting for a running job to finish
func (w *JobWorker) Stop() error {
	w.logger.Info("Stopping job worker: " + w.name)

	if w.entryID > 0 {
		w.cron.Remove(w.entryID)
		w.entryID = 0
	}

	ctx := w.cron.Stop()
	<-ctx.Done()

	w.logger.Info("Job worker stopped: " + w.name)

	return nil
}

// IsRunning checks if the worker has active cron entries
func (w *JobWorker) IsRunning() bool {
	return len(w.cron.Entries()) > 0
}

func (w *JobWorker) run() {
	start := time.Now()
	if err := w.job(); err != nil {
		w.logger.Error("Job failed for worker " + w.name + ": " + err.Error())
		return
	}
	w.logger.Debug(fmt.Sprintf("Job completed for worker %s in %v", w.name, time.Since(start)))
}

// schedule converts the interval to a cron descriptor
func (w *JobWorker) schedule() string {
	return "@every " + w.interval.String()
}

// cronLogger routes cron's internal logging to the service logger
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(fmt.Sprintf("%s %v", msg, keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(fmt.Sprintf("%s: %v %v", msg, err, keysAndValues))
}
