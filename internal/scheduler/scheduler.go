package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"coinlend-backend/internal/usecase/expiry"
	"coinlend-backend/internal/usecase/liquidation"
	"coinlend-backend/internal/usecase/matching"
)

// Each tick runs a single batch; backlog drains across ticks.
const jobTimeout = 5 * time.Minute

// Specs holds the cron expressions for the background sweeps.
type Specs struct {
	Match       string
	Liquidation string
	Expiry      string
}

// Scheduler drives the periodic sweeps: matching, margin-call
// liquidation, and offer/application expiry. Jobs pass a zero asOf so
// each service stamps its own clock. A tick that would overlap a
// still-running job is skipped, not queued.
type Scheduler struct {
	cron         *cron.Cron
	matcher      *matching.Engine
	liquidations *liquidation.Service
	expirations  *expiry.Service
	batchSize    int
	log          *logrus.Logger
}

func New(matcher *matching.Engine, liquidations *liquidation.Service, expirations *expiry.Service, batchSize int, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.VerbosePrintfLogger(log)),
		)),
		matcher:      matcher,
		liquidations: liquidations,
		expirations:  expirations,
		batchSize:    batchSize,
		log:          log,
	}
}

// Register wires the three sweeps onto their specs. Call before Start.
func (s *Scheduler) Register(specs Specs) error {
	if _, err := s.cron.AddFunc(specs.Match, s.runMatchBatch); err != nil {
		return fmt.Errorf("match cron spec %q: %w", specs.Match, err)
	}
	if _, err := s.cron.AddFunc(specs.Liquidation, s.runLiquidationSweep); err != nil {
		return fmt.Errorf("liquidation cron spec %q: %w", specs.Liquidation, err)
	}
	if _, err := s.cron.AddFunc(specs.Expiry, s.runExpirySweep); err != nil {
		return fmt.Errorf("expiry cron spec %q: %w", specs.Expiry, err)
	}
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop ends scheduling; the returned context is done once running
// jobs finish.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

func (s *Scheduler) runMatchBatch() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	sum, err := s.matcher.ProcessBatch(ctx, matching.BatchInput{BatchSize: s.batchSize})
	if err != nil {
		s.log.WithError(err).Error("scheduled match batch failed")
		return
	}
	if sum.ProcessedApplications == 0 && !sum.HasMore {
		return
	}
	s.log.WithFields(logrus.Fields{
		"applications": sum.ProcessedApplications,
		"matched":      sum.MatchedPairs,
		"errors":       len(sum.Errors),
		"has_more":     sum.HasMore,
	}).Info("scheduled match batch done")
}

func (s *Scheduler) runLiquidationSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	sum, err := s.liquidations.Sweep(ctx, s.batchSize, time.Time{})
	if err != nil {
		s.log.WithError(err).Error("scheduled liquidation sweep failed")
		return
	}
	if sum.Checked == 0 {
		return
	}
	s.log.WithFields(logrus.Fields{
		"checked":    sum.Checked,
		"breached":   sum.Breached,
		"liquidated": sum.Liquidated,
		"errors":     len(sum.Errors),
		"has_more":   sum.HasMore,
	}).Info("scheduled liquidation sweep done")
}

func (s *Scheduler) runExpirySweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	sum, err := s.expirations.Run(ctx, time.Time{})
	if err != nil {
		s.log.WithError(err).Error("scheduled expiry sweep failed")
		return
	}
	if sum.OffersExpired == 0 && sum.ApplicationsExpired == 0 {
		return
	}
	s.log.WithFields(logrus.Fields{
		"offers_expired":       sum.OffersExpired,
		"applications_expired": sum.ApplicationsExpired,
	}).Info("scheduled expiry sweep done")
}
