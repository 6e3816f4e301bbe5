// Package jobs runs the shop's periodic housekeeping on robfig/cron.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tigerapp/oficina-api/internal/logger"
	"go.uber.org/zap"
)

// Job is one unit of scheduled work. It must honor ctx cancellation.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs jobs on cron expressions with a seconds field. Overlapping
// runs of the same job are skipped.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration
	mu      sync.Mutex
	jobs    map[string]cron.EntryID
}

// NewScheduler creates a scheduler; each run gets at most timeout
func NewScheduler(logger *zap.Logger, timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds(), cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
			cron.Recover(cron.DefaultLogger),
		)),
		logger:  logger,
		timeout: timeout,
		jobs:    make(map[string]cron.EntryID),
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("starting job scheduler", zap.Strings("jobs", s.JobNames()))
	s.cron.Start()
}

// Stop stops scheduling; the returned context is done once running jobs finish
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("stopping job scheduler")
	return s.cron.Stop()
}

// Add registers job under cronExpr. An empty expression leaves the job disabled.
//   - "0 */15 * * * *" every 15 minutes
//   - "@hourly"
//   - "@every 30m"
func (s *Scheduler) Add(cronExpr string, job Job) error {
	if cronExpr == "" {
		logger.ForJob(s.logger, job.Name()).Info("scheduled job disabled")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name()]; exists {
		return fmt.Errorf("job %s already exists", job.Name())
	}

	entryID, err := s.cron.AddFunc(cronExpr, func() { s.RunNow(job) })
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", job.Name(), err)
	}

	s.jobs[job.Name()] = entryID
	logger.ForJob(s.logger, job.Name()).Info("added scheduled job", zap.String("cron_expr", cronExpr))
	return nil
}

// RunNow executes job once on the calling goroutine with the run timeout
func (s *Scheduler) RunNow(job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	log := logger.ForJob(s.logger, job.Name())
	start := time.Now()
	err := job.Run(ctx)
	if err != nil {
		log.Error("scheduled job failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return err
	}
	log.Debug("completed scheduled job", zap.Duration("duration", time.Since(start)))
	return nil
}

func (s *Scheduler) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}
	s.cron.Remove(entryID)
	delete(s.jobs, name)
	return nil
}

// JobNames returns the registered job names, sorted
func (s *Scheduler) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
