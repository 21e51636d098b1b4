package booking

import (
	"context"
	"errors"

	"bus_booking/model"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Orchestrator redeems a lock into a durable booking exactly once and
// owns the booking status state machine.
type Orchestrator struct {
	store Store
	locks *Manager
	clock clockwork.Clock
}

func NewOrchestrator(store Store, locks *Manager, clock clockwork.Clock) *Orchestrator {
	return &Orchestrator{store: store, locks: locks, clock: clock}
}

// CreateBooking consumes the lock token and writes the booking, its
// passengers and every seat's booked transition as one atomic unit.
// The token is flipped ACTIVE→REDEEMED inside that unit, so a duplicate
// redeem sees ErrLockAlreadyRedeemed instead of re-locking foreign
// seats. Losing any seat to a concurrent expiry aborts the whole unit
// with ErrSeatLockLost; the caller re-locks and retries.
func (o *Orchestrator) CreateBooking(ctx context.Context, tripId uint, customerId *uint, in model.CreateBookingInput) (*model.Booking, error) {
	info, err := o.locks.Validate(ctx, in.LockToken, tripId)
	if err != nil {
		return nil, err
	}

	if len(in.Passengers) != len(info.Seats) {
		return nil, ErrPassengerSeatMismatch
	}
	seatByCode := make(map[string]model.TripSeat, len(info.Seats))
	for _, seat := range info.Seats {
		seatByCode[seat.SeatCode] = seat
	}
	claimed := make(map[string]bool, len(in.Passengers))
	for _, p := range in.Passengers {
		if _, ok := seatByCode[p.SeatCode]; !ok || claimed[p.SeatCode] {
			return nil, ErrPassengerSeatMismatch
		}
		claimed[p.SeatCode] = true
	}

	trip, err := o.store.TripByID(ctx, tripId)
	if err != nil {
		return nil, err
	}

	now := o.clock.Now()
	passengers := make([]model.Passenger, 0, len(in.Passengers))
	total := 0.0
	for _, p := range in.Passengers {
		seat := seatByCode[p.SeatCode]
		modifier := seat.SeatType.PriceModifier
		if modifier == 0 {
			modifier = 1
		}
		price := trip.Price * modifier
		total += price
		passengers = append(passengers, model.Passenger{
			FullName:   p.FullName,
			DocumentId: p.DocumentId,
			SeatCode:   p.SeatCode,
			Price:      price,
		})
	}

	b := &model.Booking{
		PublicCode:     "BKG-" + uuid.New().String()[:8],
		TripId:         tripId,
		CustomerId:     customerId,
		Status:         model.BookingPending,
		TotalAmount:    total,
		PaymentMethod:  in.PaymentMethod,
		LockToken:      in.LockToken,
		ContactName:    in.Contact.Name,
		Phone:          in.Contact.Phone,
		Email:          in.Contact.Email,
		PickupPointId:  in.PickupPointId,
		DropoffPointId: in.DropoffPointId,
		Passengers:     passengers,
	}
	b.CreatedAt = now
	b.UpdatedAt = now

	err = o.store.Atomically(ctx, func(tx Store) error {
		if err := tx.CASLockStatus(ctx, in.LockToken, model.LockActive, model.LockRedeemed); err != nil {
			if !errors.Is(err, ErrConflict) {
				return err
			}
			lock, lerr := tx.LockByToken(ctx, in.LockToken)
			if lerr == nil && lock.Status == model.LockRedeemed {
				return ErrLockAlreadyRedeemed
			}
			return ErrLockInvalid
		}
		if err := tx.CreateBooking(ctx, b); err != nil {
			return err
		}
		for _, seat := range info.Seats {
			if err := tx.Book(ctx, tripId, seat.SeatId, in.LockToken, b.ID, now); err != nil {
				if errors.Is(err, ErrConflict) {
					return ErrSeatLockLost
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// MarkPaid confirms payment for a pending booking. Calling it again on a
// paid booking is a no-op returning the same booking.
func (o *Orchestrator) MarkPaid(ctx context.Context, bookingId uint, paymentRef string) (*model.Booking, error) {
	return o.transition(ctx, bookingId, model.BookingPaid, paymentRef)
}

// Cancel moves a pending booking to cancelled. Idempotent on cancelled.
func (o *Orchestrator) Cancel(ctx context.Context, bookingId uint) (*model.Booking, error) {
	return o.transition(ctx, bookingId, model.BookingCancelled, "")
}

// ExpireAbandoned marks a pending booking as expired. Idempotent on
// expired; used by the sweeper for bookings past the payment cutoff.
func (o *Orchestrator) ExpireAbandoned(ctx context.Context, bookingId uint) (*model.Booking, error) {
	return o.transition(ctx, bookingId, model.BookingExpired, "")
}

func (o *Orchestrator) transition(ctx context.Context, bookingId uint, target, paymentRef string) (*model.Booking, error) {
	b, err := o.store.BookingByID(ctx, bookingId)
	if err != nil {
		return nil, err
	}
	if b.Status == target {
		return b, nil
	}
	if b.Status != model.BookingPending {
		return nil, ErrInvalidTransition
	}
	err = o.store.CASBookingStatus(ctx, bookingId, model.BookingPending, target, o.clock.Now(), paymentRef)
	if errors.Is(err, ErrConflict) {
		// Raced another transition; re-read and settle idempotently.
		b, rerr := o.store.BookingByID(ctx, bookingId)
		if rerr != nil {
			return nil, rerr
		}
		if b.Status == target {
			return b, nil
		}
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}
	return o.store.BookingByID(ctx, bookingId)
}
