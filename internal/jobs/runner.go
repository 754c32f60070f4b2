// Package jobs runs the scheduled background work: maintenance reminders
// and OAuth token refresh.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 5 * time.Minute

// Runner wraps the cron scheduler with panic recovery and a bounded
// context per run. A panicking job must never take the process down.
type Runner struct {
	cron *cron.Cron
	log  *slog.Logger
}

func NewRunner(log *slog.Logger) *Runner {
	return &Runner{cron: cron.New(), log: log}
}

func (r *Runner) Schedule(spec, name string, fn func(ctx context.Context)) error {
	_, err := r.cron.AddFunc(spec, func() {
		r.runWithRecovery(name, fn)
	})
	return err
}

func (r *Runner) Start() {
	r.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (r *Runner) Stop(ctx context.Context) error {
	stopped := r.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) runWithRecovery(name string, fn func(ctx context.Context)) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("job panicked", "job", name, "panic", rec)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	started := time.Now()
	r.log.Info("job started", "job", name)
	fn(ctx)
	r.log.Info("job finished", "job", name, "duration_ms", time.Since(started).Milliseconds())
}
