package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/config"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/domain"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"

	"golang.org/x/sync/errgroup"
)

type SweepStage string

const (
	SweepStageSnapshot SweepStage = "snapshot"
	SweepStageRemove   SweepStage = "remove"
	SweepStageNotify   SweepStage = "notify"
)

type SweepFailure struct {
	Name  string
	Stage SweepStage
	Err   error
}

func (f SweepFailure) Error() string {
	if f.Name == "" {
		return fmt.Sprintf("sweep %s: %v", f.Stage, f.Err)
	}
	return fmt.Sprintf("sweep %s %q: %v", f.Stage, f.Name, f.Err)
}

func (f SweepFailure) Unwrap() error { return f.Err }

// SweepReport is the outcome of one tick. Expired lists the participants
// that were removed, in registration order. A participant whose removal
// succeeded but whose departure notice failed appears in both Expired and
// Failures.
type SweepReport struct {
	Expired  []string
	Failures []SweepFailure
}

func (r SweepReport) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// Sweeper evicts participants that stopped sending heartbeats and announces
// their departure.
type Sweeper struct {
	participants ParticipantService
	messages     MessageService
	interval     time.Duration
	timeout      time.Duration
	itemTimeout  time.Duration
	concurrency  int
	log          logger.Logger
}

func NewSweeper(participants ParticipantService, messages MessageService, cfg config.ChatConfig, log logger.Logger) *Sweeper {
	concurrency := cfg.SweepConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Sweeper{
		participants: participants,
		messages:     messages,
		interval:     cfg.SweepInterval,
		timeout:      cfg.HeartbeatTimeout,
		itemTimeout:  cfg.SweepItemTimeout,
		concurrency:  concurrency,
		log:          log.With("component", "sweeper"),
	}
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	s.log.Info("Sweeper started", "interval", s.interval, "timeout", s.timeout)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			report := s.Sweep(ctx)
			if len(report.Expired) > 0 {
				s.log.Info("Expired participants removed", "count", len(report.Expired), "names", report.Expired)
			}
			for _, f := range report.Failures {
				s.log.Error("Sweep failure", "stage", f.Stage, "name", f.Name, "error", f.Err)
			}
		}
	}
}

type sweepOutcome struct {
	removed bool
	failure *SweepFailure
}

// Sweep runs a single pass. Each expired participant is handled in its own
// goroutine with its own deadline; one failing never stops the others.
func (s *Sweeper) Sweep(ctx context.Context) SweepReport {
	var report SweepReport

	expired, cutoff, err := s.participants.Expired(ctx, s.timeout)
	if err != nil {
		report.Failures = append(report.Failures, SweepFailure{Stage: SweepStageSnapshot, Err: err})
		return report
	}
	if len(expired) == 0 {
		return report
	}

	outcomes := make([]sweepOutcome, len(expired))
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i, p := range expired {
		g.Go(func() error {
			outcomes[i] = s.evict(ctx, p, cutoff)
			return nil
		})
	}
	_ = g.Wait()

	for i, o := range outcomes {
		if o.removed {
			report.Expired = append(report.Expired, expired[i].Name)
		}
		if o.failure != nil {
			report.Failures = append(report.Failures, *o.failure)
		}
	}
	return report
}

func (s *Sweeper) evict(ctx context.Context, p *domain.Participant, cutoff time.Time) sweepOutcome {
	itemCtx := ctx
	if s.itemTimeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, s.itemTimeout)
		defer cancel()
	}

	removed, err := s.participants.Expire(itemCtx, p.Name, cutoff)
	if err != nil {
		return sweepOutcome{failure: &SweepFailure{Name: p.Name, Stage: SweepStageRemove, Err: err}}
	}
	if !removed {
		// heartbeat arrived after the snapshot, or someone else removed it
		return sweepOutcome{}
	}

	// Removal stands even if the notice fails.
	if _, err := s.messages.AppendStatus(itemCtx, p.Name, domain.StatusLeftText); err != nil {
		return sweepOutcome{
			removed: true,
			failure: &SweepFailure{Name: p.Name, Stage: SweepStageNotify, Err: err},
		}
	}
	return sweepOutcome{removed: true}
}
