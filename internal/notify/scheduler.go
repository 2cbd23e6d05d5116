package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler fires the job on a cron spec in the configured zone. A tick that
// arrives while the previous run is still going is skipped.
type Scheduler struct {
	job      *Job
	cron     *cron.Cron
	schedule cron.Schedule
	log      logrus.FieldLogger
	timeout  time.Duration

	mu      sync.Mutex
	running bool
}

func NewScheduler(job *Job, log logrus.FieldLogger) (*Scheduler, error) {
	spec := job.cfg.Schedule
	if spec == "" {
		spec = "5 22 * * *"
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse notify schedule %q: %w", spec, err)
	}

	logger := cron.PrintfLogger(log)
	c := cron.New(
		cron.WithLocation(job.cfg.Location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	s := &Scheduler{job: job, cron: c, schedule: schedule, log: log, timeout: time.Hour}
	c.Schedule(schedule, cron.FuncJob(s.tick))
	return s, nil
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.job.Run(ctx, time.Now()); err != nil {
		s.log.WithError(err).Error("weather notification run failed")
	}
}

// Next reports when the job fires after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.job.cfg.Location))
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	s.cron.Start()
	s.log.WithField("next", s.Next(time.Now()).Format(time.RFC3339)).Info("notification scheduler started")
}

// Stop halts the scheduler and returns a context done once a running job ends.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return s.cron.Stop()
}

// Running reports whether Start was called without a matching Stop.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
