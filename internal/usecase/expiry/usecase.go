package expiry

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	domainApp "coinlend-backend/internal/domain/application"
	domainOffer "coinlend-backend/internal/domain/offer"
)

type Summary struct {
	OffersExpired       int64 `json:"offers_expired"`
	ApplicationsExpired int64 `json:"applications_expired"`
}

// Service retires offers and applications whose expiry passed without
// reaching a terminal state. Both sweeps are guarded bulk updates, so
// a rerun over the same window expires nothing twice.
type Service struct {
	offers       domainOffer.Repository
	applications domainApp.Repository
	log          *logrus.Logger
	now          func() time.Time
}

func NewService(offers domainOffer.Repository, applications domainApp.Repository, log *logrus.Logger) *Service {
	return &Service{
		offers:       offers,
		applications: applications,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Run(ctx context.Context, asOf time.Time) (*Summary, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	offers, err := s.offers.ExpireStale(ctx, asOf)
	if err != nil {
		return nil, err
	}
	apps, err := s.applications.ExpireStale(ctx, asOf)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"offers_expired":       offers,
		"applications_expired": apps,
	}).Info("expiry sweep finished")
	return &Summary{OffersExpired: offers, ApplicationsExpired: apps}, nil
}
