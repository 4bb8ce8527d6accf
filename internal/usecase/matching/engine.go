package matching

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	domainApp "coinlend-backend/internal/domain/application"
	domainLoan "coinlend-backend/internal/domain/loan"
	"coinlend-backend/internal/domain/notify"
	domainOffer "coinlend-backend/internal/domain/offer"
	"coinlend-backend/internal/domain/uow"
	"coinlend-backend/internal/usecase/origination"
	"coinlend-backend/internal/usecase/valuation"
)

// Engine walks published applications in first-come order and pairs
// each with the first compatible offer. One application is one
// transactional unit: match claim, capacity reservation and
// origination commit or roll back together, and a failed unit never
// stops the batch.
type Engine struct {
	applications domainApp.Repository
	offers       domainOffer.Repository
	tx           uow.UnitOfWork
	val          *valuation.Service
	origination  *origination.Service
	queue        notify.Queue
	log          *logrus.Logger
	batchSize    int
	now          func() time.Time
}

func NewEngine(applications domainApp.Repository, offers domainOffer.Repository, tx uow.UnitOfWork, val *valuation.Service, orig *origination.Service, queue notify.Queue, log *logrus.Logger, batchSize int) *Engine {
	return &Engine{
		applications: applications,
		offers:       offers,
		tx:           tx,
		val:          val,
		origination:  orig,
		queue:        queue,
		log:          log,
		batchSize:    batchSize,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (e *Engine) ProcessBatch(ctx context.Context, in BatchInput) (*BatchSummary, error) {
	asOf := in.AsOf
	if asOf.IsZero() {
		asOf = e.now()
	}
	size := in.BatchSize
	if size <= 0 {
		size = e.batchSize
	}

	sum := &BatchSummary{Strategy: SelectStrategy(in.LenderCriteria, in.BorrowerCriteria)}
	record := func(applicationID, stage string, err error) {
		sum.Errors = append(sum.Errors, BatchError{ApplicationID: applicationID, Stage: stage, Message: err.Error(), Err: err})
		e.log.WithError(err).WithFields(logrus.Fields{
			"application_id": applicationID,
			"stage":          stage,
		}).Warn("match batch unit failed")
	}

	apps, err := e.fetchApplications(ctx, in, size, sum)
	if err != nil {
		return nil, err
	}

	seenOffers := make(map[string]struct{})
	for i := range apps {
		a := &apps[i]
		sum.ProcessedApplications++

		open, err := e.offers.ListOpen(ctx, a.PrincipalCurrency)
		if err != nil {
			record(a.ApplicationID, "fetch", err)
			continue
		}
		for _, o := range open {
			seenOffers[o.OfferID] = struct{}{}
		}

		cands := FindCompatibleOffers(sum.Strategy, a, open, in.TargetOfferID, in.LenderCriteria, in.BorrowerCriteria)
		if len(cands) == 0 {
			continue
		}
		chosen := cands[0].Offer

		value, price, err := e.val.CollateralValue(ctx, a.CollateralAmount, a.CollateralCurrency, a.PrincipalCurrency, asOf)
		if err != nil {
			record(a.ApplicationID, "valuation", err)
			continue
		}
		ltv := valuation.Ltv(a.PrincipalAmount, value)

		var l *domainLoan.Loan
		var offerClosed bool
		err = e.tx.WithinTx(ctx, func(r uow.Repos) error {
			if err := r.Applications.MarkMatched(ctx, a.ApplicationID, asOf); err != nil {
				return err
			}
			if err := r.Offers.ReserveCapacity(ctx, chosen.OfferID, a.PrincipalAmount); err != nil {
				return err
			}
			var err error
			l, err = e.origination.OriginateIn(ctx, r, origination.OriginateInput{
				Offer:       chosen,
				Application: a,
				MatchedLtv:  ltv,
				Price:       price,
				MatchedAt:   asOf,
			})
			if err != nil {
				return err
			}
			offerClosed, err = r.Offers.CloseIfExhausted(ctx, chosen.OfferID, asOf)
			return err
		})
		if err != nil {
			record(a.ApplicationID, "originate", err)
			continue
		}

		sum.MatchedPairs++
		ml := MatchedLoan{
			LoanID:          l.LoanID,
			OfferID:         chosen.OfferID,
			ApplicationID:   a.ApplicationID,
			BorrowerID:      l.BorrowerID,
			LenderID:        l.LenderID,
			PrincipalAmount: l.PrincipalAmount,
			InterestRate:    l.InterestRate,
			TermMonths:      l.TermMonths,
		}

		e.emit(ctx, notify.EventLoanMatched, map[string]any{"loan_id": l.LoanID, "offer_id": chosen.OfferID, "application_id": a.ApplicationID})
		e.emit(ctx, notify.EventApplicationMatched, map[string]any{"application_id": a.ApplicationID, "loan_id": l.LoanID})
		if offerClosed {
			e.emit(ctx, notify.EventOfferClosed, map[string]any{"offer_id": chosen.OfferID, "reason": "exhausted"})
		}

		if _, err := e.origination.Disburse(ctx, l.LoanID); err != nil {
			record(a.ApplicationID, "disburse", err)
		} else {
			ml.Disbursed = true
			e.emit(ctx, notify.EventLoanDisbursed, map[string]any{"loan_id": l.LoanID, "borrower_id": l.BorrowerID})
		}
		sum.MatchedLoans = append(sum.MatchedLoans, ml)
	}

	sum.ProcessedOffers = len(seenOffers)
	e.log.WithFields(logrus.Fields{
		"strategy":     sum.Strategy,
		"applications": sum.ProcessedApplications,
		"offers":       sum.ProcessedOffers,
		"matched":      sum.MatchedPairs,
		"errors":       len(sum.Errors),
		"has_more":     sum.HasMore,
	}).Info("match batch finished")
	return sum, nil
}

// fetchApplications resolves the batch's working set: one application
// when targeted, else up to size published applications plus one
// look-ahead row for HasMore.
func (e *Engine) fetchApplications(ctx context.Context, in BatchInput, size int, sum *BatchSummary) ([]domainApp.LoanApplication, error) {
	if in.TargetApplicationID != "" {
		a, err := e.applications.GetByApplicationID(ctx, in.TargetApplicationID)
		if err != nil {
			sum.Errors = append(sum.Errors, BatchError{ApplicationID: in.TargetApplicationID, Stage: "fetch", Message: err.Error(), Err: err})
			return nil, nil
		}
		if a.Status != domainApp.StatusPublished {
			stateErr := domainApp.ErrInvalidTransition
			if a.Status == domainApp.StatusMatched {
				stateErr = domainApp.ErrAlreadyMatched
			}
			sum.Errors = append(sum.Errors, BatchError{ApplicationID: in.TargetApplicationID, Stage: "fetch", Message: stateErr.Error(), Err: stateErr})
			return nil, nil
		}
		return []domainApp.LoanApplication{*a}, nil
	}

	apps, err := e.applications.ListPublished(ctx, size+1)
	if err != nil {
		return nil, err
	}
	if len(apps) > size {
		sum.HasMore = true
		apps = apps[:size]
	}
	return apps, nil
}

func (e *Engine) emit(ctx context.Context, event string, payload map[string]any) {
	if err := e.queue.Queue(ctx, event, payload); err != nil {
		e.log.WithError(err).WithField("event", event).Warn("notification enqueue failed")
	}
}
