// Package schedule runs the periodic leaderboard reset.
package schedule

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Resetter starts a new leaderboard epoch.
type Resetter interface {
	ResetLeaderboard()
}

// Scheduler wraps a cron runner with a single reset job.
type Scheduler struct {
	c   *cron.Cron
	loc *time.Location
}

// New registers r to run on spec (standard 5-field cron) in the named
// time zone. The scheduler is not started.
func New(spec, tz string, r Resetter) (*Scheduler, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", tz, err)
	}
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(spec, func() {
		log.Info().Str("spec", spec).Msg("scheduled leaderboard reset")
		r.ResetLeaderboard()
	}); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return &Scheduler{c: c, loc: loc}, nil
}

// Next reports when the reset will run next.
func (s *Scheduler) Next() time.Time {
	entries := s.c.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	if !entries[0].Next.IsZero() {
		return entries[0].Next
	}
	return entries[0].Schedule.Next(time.Now().In(s.loc))
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() { s.c.Start() }

// Stop halts the scheduler and waits for a running reset to finish or ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.c.Stop().Done():
	case <-ctx.Done():
	}
}
