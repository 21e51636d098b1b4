package booking

import (
	"context"
	"time"

	"bus_booking/model"
)

// SeatRegistry is the authoritative record of per-(trip, seat) state.
// Every mutation is a conditional transition: the write succeeds only if
// the row is currently in the expected state, otherwise ErrConflict.
// That compare-and-set is the sole synchronization primitive — requests
// may be served by different processes, so an in-process mutex cannot
// protect a seat. A lock whose LockedUntil has elapsed counts as
// available for Lock, and as dead for Book, regardless of whether the
// sweeper has run yet (lazy expiry).
type SeatRegistry interface {
	// Statuses returns the trip's seat rows ordered by seat code.
	// Snapshot read, no side effects.
	Statuses(ctx context.Context, tripId uint) ([]model.TripSeat, error)

	// Lock transitions available → locked, stamping token and expiry.
	// An expired foreign lock may be taken over.
	Lock(ctx context.Context, tripId, seatId uint, token string, until, now time.Time) error

	// Unlock transitions locked → available, only while the row still
	// carries the given token.
	Unlock(ctx context.Context, tripId, seatId uint, token string) error

	// Book transitions locked → booked for a live (unexpired) lock with
	// the given token, binding the booking id. The binding is permanent:
	// booked rows are never unbound.
	Book(ctx context.Context, tripId, seatId uint, token string, bookingId uint, now time.Time) error

	// Reclaim transitions locked → available only if the lock has
	// expired, whoever holds it. A booking that committed an instant
	// earlier wins: the row is no longer locked, so the guard fails.
	Reclaim(ctx context.Context, tripId, seatId uint, now time.Time) error

	// ExpiredLocked lists rows still marked locked whose expiry passed,
	// for the sweeper.
	ExpiredLocked(ctx context.Context, now time.Time, limit int) ([]model.TripSeat, error)
}

// EffectiveStatus applies lazy expiry to a raw row: a locked seat whose
// expiry has passed reads as available even before the sweeper runs.
func EffectiveStatus(seat model.TripSeat, now time.Time) string {
	if seat.Status == model.SeatLocked && (seat.LockedUntil == nil || !seat.LockedUntil.After(now)) {
		return model.SeatAvailable
	}
	return seat.Status
}
