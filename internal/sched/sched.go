// Package sched runs the sync orchestrator on a recurring cron
// schedule evaluated in a single named time zone.
package sched

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	appLog "clubsync/internal/log"
)

// Scheduler wraps a cron runner with an in-flight guard so a slow run
// can never overlap the next trigger and race on the same event rows.
type Scheduler struct {
	cron     *cron.Cron
	inFlight atomic.Bool
}

// Start schedules job with the given cron expression in the given IANA
// time zone and begins triggering it. An invalid time zone or
// expression is returned as an error; the caller is expected to log it
// loudly and keep the process alive without scheduled sync.
func Start(spec, timezone string, job func(context.Context)) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	s := &Scheduler{cron: cron.New(cron.WithLocation(loc))}

	if _, err := s.cron.AddFunc(spec, func() { s.run(job) }); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	s.cron.Start()
	appLog.Info("sync scheduled", "schedule", spec, "timezone", timezone)
	return s, nil
}

// run executes one guarded invocation. A trigger that fires while the
// previous run is still in flight is skipped, not queued; the following
// trigger is the retry.
func (s *Scheduler) run(job func(context.Context)) {
	if !s.inFlight.CompareAndSwap(false, true) {
		appLog.Warn("previous sync run still in flight, skipping trigger")
		return
	}
	defer s.inFlight.Store(false)

	job(context.Background())
}

// Stop halts future triggers and waits for an in-flight run started by
// the cron runner to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
