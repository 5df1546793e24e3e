// Package scheduler re-runs a comparison on a cron schedule. It is used
// by the CLI's watch mode: input files are re-read on every tick, so a
// scrape job that refreshes them between ticks gets picked up without
// restarting anything.
package scheduler

import (
	"fmt"

	"github.com/apex/log"
	"github.com/robfig/cron/v3"
)

// RunFunc performs one full comparison run.
type RunFunc func() error

// ComparisonScheduler drives periodic comparison runs.
type ComparisonScheduler struct {
	cron *cron.Cron
	run  RunFunc
}

// NewComparisonScheduler creates a scheduler around one run function.
func NewComparisonScheduler(run RunFunc) *ComparisonScheduler {
	return &ComparisonScheduler{
		cron: cron.New(),
		run:  run,
	}
}

// Start schedules runs at the given cron expression and fires one run
// immediately, the way the scrape cycle it shadows does.
func (cs *ComparisonScheduler) Start(schedule string) error {
	_, err := cs.cron.AddFunc(schedule, cs.runOnce)
	if err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", schedule, err)
	}

	go cs.runOnce()
	cs.cron.Start()
	log.WithField("schedule", schedule).Info("comparison scheduler started")
	return nil
}

// Stop stops the scheduler; a run already in flight finishes.
func (cs *ComparisonScheduler) Stop() {
	if cs.cron != nil {
		cs.cron.Stop()
	}
	log.Info("comparison scheduler stopped")
}

func (cs *ComparisonScheduler) runOnce() {
	if err := cs.run(); err != nil {
		log.WithError(err).Error("scheduled comparison run failed")
	}
}
