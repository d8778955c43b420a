// Package cron runs the periodic jobs of the backend.
package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// MaxSweepInterval is the longest gap between sweeps. The shortest package term is a day, so
// anything longer would leave expired subscriptions alive past a full term.
const MaxSweepInterval = 24 * time.Hour

// Scheduler triggers the sweeper on a schedule.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  *Sweeper
	schedule cron.Schedule
	logger   *slog.Logger
}

type SchedulerOption func(*Scheduler)

// WithSchedule replaces the fixed interval schedule.
func WithSchedule(schedule cron.Schedule) SchedulerOption {
	return func(s *Scheduler) { s.schedule = schedule }
}

func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = logger }
}

func NewScheduler(sweeper *Sweeper, interval time.Duration, options ...SchedulerOption) (*Scheduler, error) {
	if interval <= 0 || interval > MaxSweepInterval {
		return nil, fmt.Errorf("sweep interval %s must be in (0, %s]", interval, MaxSweepInterval)
	}

	s := &Scheduler{
		sweeper:  sweeper,
		schedule: cron.Every(interval),
		logger:   slog.Default(),
	}
	for _, o := range options {
		o(s)
	}
	s.cron = cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	s.cron.Schedule(s.schedule, cron.FuncJob(s.tick))
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("expiration sweep scheduled")
}

// Stop halts the schedule and waits for a sweep in progress.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) tick() {
	res, err := s.sweeper.RunExpirationSweep(context.Background())
	if errors.Is(err, ErrSweepAlreadyRunning) {
		s.logger.Warn("skipping sweep, previous run still in progress")
		return
	}
	if err != nil {
		s.logger.Error("expiration sweep failed", "error", err)
		return
	}
	if res.Evicted > 0 || res.Failed > 0 {
		s.logger.Info("expired subscriptions evicted", "evicted", res.Evicted, "failed", res.Failed)
	}
}
