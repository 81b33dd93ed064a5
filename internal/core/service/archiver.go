package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/brandreg/crm-api/internal/core/domain"
	"github.com/brandreg/crm-api/internal/core/ports"
)

// systemActorID marks sweep-driven transitions in the audit history.
const systemActorID = "system"

// Archiver periodically sweeps jobs stuck in a terminal status into the
// archived state, going through the transition engine so the sweep produces
// a regular history entry.
type Archiver struct {
	jobs     ports.JobRepository
	engine   ports.TransitionService
	interval time.Duration
	minAge   time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewArchiver(jobs ports.JobRepository, engine ports.TransitionService, interval, minAge time.Duration, log zerolog.Logger) *Archiver {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Archiver{
		jobs:     jobs,
		engine:   engine,
		interval: interval,
		minAge:   minAge,
		log:      log,
		now:      time.Now,
	}
}

// Start launches the sweep loop. It stops when ctx is cancelled.
func (a *Archiver) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.Sweep(ctx)
			}
		}
	}()
}

// Sweep archives every terminal job older than the configured age.
func (a *Archiver) Sweep(ctx context.Context) {
	cutoff := a.now().UTC().Add(-a.minAge)
	jobs, err := a.jobs.ListTerminalUnarchived(ctx, cutoff)
	if err != nil {
		a.log.Error().Err(err).Msg("archive sweep: listing terminal jobs failed")
		return
	}

	for _, job := range jobs {
		_, err := a.engine.Apply(ctx, ports.ApplyTransitionInput{
			JobID:  job.ID,
			Actor:  ports.Actor{ID: systemActorID, Role: domain.RoleAdmin},
			Target: domain.StatusArchived,
		})
		if err != nil {
			a.log.Warn().Err(err).Str("job_id", job.ID).Msg("archive sweep: transition failed")
			continue
		}
		a.log.Info().Str("job_id", job.ID).Int64("sequence", job.Sequence).Msg("job archived")
	}
}
