package booking

import (
	"context"
	"time"

	"bus_booking/model"
)

// Store is the persistence surface the core runs against. It extends the
// seat registry with lock, booking and trip access plus an atomic scope
// for the multi-row redeem step.
type Store interface {
	SeatRegistry

	CreateLock(ctx context.Context, lock *model.SeatLock) error
	LockByToken(ctx context.Context, token string) (*model.SeatLock, error)
	// CASLockStatus moves a lock between statuses, guarded on the
	// current one. ErrConflict if the lock is not in from.
	CASLockStatus(ctx context.Context, token, from, to string) error
	// SeatsByToken returns the trip's seat rows currently carrying the
	// token, ordered by seat code.
	SeatsByToken(ctx context.Context, tripId uint, token string) ([]model.TripSeat, error)
	ExpiredActiveLocks(ctx context.Context, now time.Time, limit int) ([]model.SeatLock, error)

	CreateBooking(ctx context.Context, b *model.Booking) error
	BookingByID(ctx context.Context, id uint) (*model.Booking, error)
	// CASBookingStatus moves a booking between statuses, guarded on the
	// current one, stamping paid/cancelled times as appropriate.
	CASBookingStatus(ctx context.Context, id uint, from, to string, at time.Time, paymentRef string) error
	PendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error)

	TripByID(ctx context.Context, id uint) (*model.Trip, error)

	// Atomically runs fn inside a transaction: every write fn performs
	// commits or rolls back as one unit. Implementations without native
	// transactions must restore their prior state when fn errors.
	Atomically(ctx context.Context, fn func(Store) error) error
}
