package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"bus_booking/model"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultSweepInterval  = 30 * time.Second
	DefaultPendingCutoff  = 15 * time.Minute
	DefaultSweepBatchSize = 500
)

// Sweeper reclaims seats whose lock elapsed without a booking and
// expires pending bookings past the payment cutoff. It is purely
// corrective: correctness never depends on it running, only capacity
// freshness does. All its writes go through the same guarded
// transitions as request traffic, so it can never undo a booking that
// won a race by an instant.
type Sweeper struct {
	store Store
	orch  *Orchestrator
	clock clockwork.Clock

	Interval      time.Duration
	PendingCutoff time.Duration
	BatchSize     int

	stop chan struct{}
	done chan struct{}
}

func NewSweeper(store Store, orch *Orchestrator, clock clockwork.Clock) *Sweeper {
	return &Sweeper{
		store:         store,
		orch:          orch,
		clock:         clock,
		Interval:      DefaultSweepInterval,
		PendingCutoff: DefaultPendingCutoff,
		BatchSize:     DefaultSweepBatchSize,
	}
}

// Start runs the sweep loop in a goroutine until Stop is called.
func (s *Sweeper) Start() {
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	ticker := s.clock.NewTicker(s.Interval)
	go func() {
		defer close(s.done)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.Chan():
				if _, _, err := s.SweepOnce(context.Background()); err != nil {
					log.Printf("sweep: %v", err)
				}
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop = nil
}

// SweepOnce performs one reclamation pass and reports how many seats
// were freed and how many pending bookings expired.
func (s *Sweeper) SweepOnce(ctx context.Context) (freed, expired int, err error) {
	now := s.clock.Now()

	seats, err := s.store.ExpiredLocked(ctx, now, s.BatchSize)
	if err != nil {
		return 0, 0, err
	}
	for _, seat := range seats {
		err := s.store.Reclaim(ctx, seat.TripId, seat.SeatId, now)
		if errors.Is(err, ErrConflict) {
			continue // booked or re-locked in the meantime
		}
		if err != nil {
			return freed, expired, err
		}
		freed++
	}

	locks, err := s.store.ExpiredActiveLocks(ctx, now, s.BatchSize)
	if err != nil {
		return freed, expired, err
	}
	for _, lock := range locks {
		err := s.store.CASLockStatus(ctx, lock.Token, model.LockActive, model.LockExpired)
		if err != nil && !errors.Is(err, ErrConflict) {
			return freed, expired, err
		}
	}

	cutoff := now.Add(-s.PendingCutoff)
	bookings, err := s.store.PendingBefore(ctx, cutoff, s.BatchSize)
	if err != nil {
		return freed, expired, err
	}
	for _, b := range bookings {
		if _, err := s.orch.ExpireAbandoned(ctx, b.ID); err != nil {
			if errors.Is(err, ErrInvalidTransition) {
				continue // paid or cancelled while we scanned
			}
			return freed, expired, err
		}
		expired++
	}
	return freed, expired, nil
}
