package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type Task func(ctx context.Context) error

// Run executes task on the given cron spec ("@every 30s", "*/5 * * * *", ...)
// until ctx is done. The task also runs once immediately. Overlapping runs are
// skipped rather than queued; a cycle that outlives its interval simply
// swallows the next tick.
func Run(ctx context.Context, spec, name string, task Task, log zerolog.Logger) error {
	log = log.With().Str("component", "scheduler").Str("task", name).Logger()

	running := make(chan struct{}, 1)
	invoke := func() {
		select {
		case running <- struct{}{}:
		default:
			log.Warn().Msg("previous run still in progress, skipping tick")
			return
		}
		defer func() { <-running }()

		if err := task(ctx); err != nil {
			log.Error().Err(err).Msg("task failed")
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, invoke); err != nil {
		return err
	}

	go invoke()

	c.Start()
	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}
