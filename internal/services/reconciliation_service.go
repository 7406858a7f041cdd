package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rentworks/equipment-rental-backend/internal/models"
)

// laggingBookingStore finds bookings whose status trails their payment rows
type laggingBookingStore interface {
	FindStatusLagging(limit int) ([]models.BookingProjection, error)
}

// ReconciliationService is the background sweep that repairs booking
// projections. A booking-status write can fail while the payment write
// succeeded; without this sweep such a booking stays stuck until the next
// event for it arrives.
type ReconciliationService struct {
	bookings  laggingBookingStore
	state     *BookingStateService
	logger    *logrus.Logger
	stopCh    chan struct{}
	interval  time.Duration
	batchSize int
}

// NewReconciliationService creates a new reconciliation sweep
func NewReconciliationService(
	bookings laggingBookingStore,
	state *BookingStateService,
	logger *logrus.Logger,
	interval time.Duration,
	batchSize int,
) *ReconciliationService {
	return &ReconciliationService{
		bookings:  bookings,
		state:     state,
		logger:    logger,
		stopCh:    make(chan struct{}),
		interval:  interval,
		batchSize: batchSize,
	}
}

// Start begins the background sweep
func (s *ReconciliationService) Start() {
	s.logger.WithField("interval", s.interval).Info("Starting booking reconciliation sweep")
	go s.run()
}

// Stop stops the background sweep
func (s *ReconciliationService) Stop() {
	s.logger.Info("Stopping booking reconciliation sweep")
	close(s.stopCh)
}

func (s *ReconciliationService) run() {
	// Run immediately on start
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			s.logger.Info("Booking reconciliation sweep stopped")
			return
		}
	}
}

// sweep finds status-lagging bookings and reapplies the projection
func (s *ReconciliationService) sweep() {
	projections, err := s.bookings.FindStatusLagging(s.batchSize)
	if err != nil {
		s.logger.WithError(err).Error("Failed to find status-lagging bookings")
		return
	}

	if len(projections) == 0 {
		return
	}

	repaired := 0
	for _, p := range projections {
		target, ok := DeriveStatus(p.HasPayment, p.HasDeposit)
		if !ok || target.Rank() <= p.Status.Rank() {
			continue
		}

		changed, err := s.state.AdvanceTo(p.BookingID, target)
		if err != nil {
			s.logger.WithError(err).WithField("booking_id", p.BookingID).
				Error("Failed to repair booking projection")
			continue
		}
		if changed {
			repaired++
		}
	}

	if repaired > 0 {
		s.logger.WithField("count", repaired).Warn("Repaired stuck booking projections")
	}
}

// RunOnce runs a single sweep cycle (useful for testing or manual trigger)
func (s *ReconciliationService) RunOnce() {
	s.sweep()
}
