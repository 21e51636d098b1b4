package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"bus_booking/model"
)

func bookingInput(token string, seatCodes ...string) model.CreateBookingInput {
	in := model.CreateBookingInput{
		LockToken:     token,
		PaymentMethod: "CARD",
		Contact:       model.ContactInput{Name: "Tran Van A", Phone: "0901234567", Email: "a@example.com"},
	}
	for i, code := range seatCodes {
		in.Passengers = append(in.Passengers, model.PassengerInput{
			FullName:   "Passenger " + string(rune('A'+i)),
			DocumentId: "0790012345",
			SeatCode:   code,
		})
	}
	return in
}

func TestCreateBookingRedeemsExactlyOnce(t *testing.T) {
	store, _, mgr, orch := newTestEnv(t)
	ctx := context.Background()

	grant, err := mgr.Acquire(ctx, 1, []uint{1, 2}, time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	b, err := orch.CreateBooking(ctx, 1, nil, bookingInput(grant.Token, "A1", "B1"))
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if b.Status != model.BookingPending {
		t.Fatalf("status = %s, want PENDING", b.Status)
	}
	if b.TotalAmount != 200 {
		t.Fatalf("total = %v, want 200", b.TotalAmount)
	}
	if len(b.Passengers) != 2 {
		t.Fatalf("passenger rows = %d, want 2", len(b.Passengers))
	}
	for _, id := range []uint{1, 2} {
		s := seatState(t, store, 1, id)
		if s.Status != model.SeatBooked || s.BookingId == nil || *s.BookingId != b.ID {
			t.Fatalf("seat %d: status=%s bookingId=%v", id, s.Status, s.BookingId)
		}
	}

	// Second redeem with the same token must not create a second booking.
	if _, err := orch.CreateBooking(ctx, 1, nil, bookingInput(grant.Token, "A1", "B1")); !errors.Is(err, ErrLockAlreadyRedeemed) {
		t.Fatalf("expected ErrLockAlreadyRedeemed, got %v", err)
	}
}

func TestCreateBookingPassengerSeatMismatch(t *testing.T) {
	_, _, mgr, orch := newTestEnv(t)
	ctx := context.Background()

	grant, err := mgr.Acquire(ctx, 1, []uint{1, 2}, time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	cases := map[string]model.CreateBookingInput{
		"too few passengers": bookingInput(grant.Token, "A1"),
		"foreign seat code":  bookingInput(grant.Token, "A1", "C1"),
		"duplicate seat":     bookingInput(grant.Token, "A1", "A1"),
	}
	for name, in := range cases {
		if _, err := orch.CreateBooking(ctx, 1, nil, in); !errors.Is(err, ErrPassengerSeatMismatch) {
			t.Errorf("%s: expected ErrPassengerSeatMismatch, got %v", name, err)
		}
	}

	// The lock survives validation failures and is still redeemable.
	if _, err := orch.CreateBooking(ctx, 1, nil, bookingInput(grant.Token, "A1", "B1")); err != nil {
		t.Fatalf("redeem after mismatches: %v", err)
	}
}

func TestCreateBookingSeatLockLostRollsBackEverything(t *testing.T) {
	store, _, mgr, orch := newTestEnv(t)
	ctx := context.Background()

	grant, err := mgr.Acquire(ctx, 1, []uint{1, 2}, time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// Simulate a racing expiry on seat B's row: still carrying the token
	// so validation passes, but dead by the time the commit guards it.
	stale := seatState(t, store, 1, 2)
	past := stale.LockedUntil.Add(-10 * time.Minute)
	stale.LockedUntil = &past
	store.AddSeat(stale)

	if _, err := orch.CreateBooking(ctx, 1, nil, bookingInput(grant.Token, "A1", "B1")); !errors.Is(err, ErrSeatLockLost) {
		t.Fatalf("expected ErrSeatLockLost, got %v", err)
	}

	// Nothing may persist: no partially booked trip, lock still ACTIVE.
	if s := seatState(t, store, 1, 1); s.Status != model.SeatLocked {
		t.Fatalf("seat A: status=%s, want LOCKED (rolled back)", s.Status)
	}
	lock, err := store.LockByToken(ctx, grant.Token)
	if err != nil || lock.Status != model.LockActive {
		t.Fatalf("lock status=%v err=%v, want ACTIVE", lock, err)
	}
	if _, err := store.BookingByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unexpected booking lookup result: %v", err)
	}
}

func TestCreateBookingExpiredLock(t *testing.T) {
	_, clock, mgr, orch := newTestEnv(t)
	ctx := context.Background()

	grant, err := mgr.Acquire(ctx, 1, []uint{1}, time.Second)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	clock.Advance(5 * time.Second)

	if _, err := orch.CreateBooking(ctx, 1, nil, bookingInput(grant.Token, "A1")); !errors.Is(err, ErrLockExpired) {
		t.Fatalf("expected ErrLockExpired, got %v", err)
	}
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	_, _, mgr, orch := newTestEnv(t)
	ctx := context.Background()

	grant, _ := mgr.Acquire(ctx, 1, []uint{1}, time.Minute)
	b, err := orch.CreateBooking(ctx, 1, nil, bookingInput(grant.Token, "A1"))
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	paid, err := orch.MarkPaid(ctx, b.ID, "TXN-1")
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.Status != model.BookingPaid || paid.PaidAt == nil {
		t.Fatalf("status=%s paidAt=%v", paid.Status, paid.PaidAt)
	}

	again, err := orch.MarkPaid(ctx, b.ID, "TXN-1")
	if err != nil {
		t.Fatalf("second mark paid: %v", err)
	}
	if again.Status != model.BookingPaid || !again.PaidAt.Equal(*paid.PaidAt) {
		t.Fatalf("second call changed the booking: %+v", again)
	}
}

func TestTransitionsFromTerminalStateFail(t *testing.T) {
	_, _, mgr, orch := newTestEnv(t)
	ctx := context.Background()

	grant, _ := mgr.Acquire(ctx, 1, []uint{1}, time.Minute)
	b, err := orch.CreateBooking(ctx, 1, nil, bookingInput(grant.Token, "A1"))
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if _, err := orch.MarkPaid(ctx, b.ID, ""); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	if _, err := orch.Cancel(ctx, b.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancel of paid booking: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := orch.ExpireAbandoned(ctx, b.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expire of paid booking: expected ErrInvalidTransition, got %v", err)
	}
}

// Full walkthrough: lock {A,B}, competing lock {B,C} fails and rolls
// back C, booking succeeds, duplicate redeem is rejected.
func TestCheckoutScenario(t *testing.T) {
	store, _, mgr, orch := newTestEnv(t)
	ctx := context.Background()

	l1, err := mgr.Acquire(ctx, 1, []uint{1, 2}, time.Minute)
	if err != nil {
		t.Fatalf("lock {A,B}: %v", err)
	}

	_, err = mgr.Acquire(ctx, 1, []uint{2, 3}, time.Minute)
	var lockErr *LockError
	if !errors.As(err, &lockErr) || lockErr.SeatId != 2 {
		t.Fatalf("lock {B,C}: expected SEAT_UNAVAILABLE on seat 2, got %v", err)
	}
	if s := seatState(t, store, 1, 3); s.Status != model.SeatAvailable {
		t.Fatalf("seat C must be available again, got %s", s.Status)
	}

	b, err := orch.CreateBooking(ctx, 1, nil, bookingInput(l1.Token, "A1", "B1"))
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	for _, id := range []uint{1, 2} {
		if s := seatState(t, store, 1, id); s.Status != model.SeatBooked {
			t.Fatalf("seat %d: %s, want BOOKED", id, s.Status)
		}
	}

	if _, err := orch.CreateBooking(ctx, 1, nil, bookingInput(l1.Token, "A1", "B1")); !errors.Is(err, ErrLockAlreadyRedeemed) {
		t.Fatalf("duplicate redeem: expected ErrLockAlreadyRedeemed, got %v", err)
	}
	if got, err := store.BookingByID(ctx, b.ID); err != nil || got.PublicCode != b.PublicCode {
		t.Fatalf("booking lookup: %v %v", got, err)
	}
}
