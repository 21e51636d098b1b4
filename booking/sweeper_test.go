package booking

import (
	"context"
	"testing"
	"time"

	"bus_booking/model"
)

func TestSweepReclaimsExpiredLocks(t *testing.T) {
	store, clock, mgr, orch := newTestEnv(t)
	ctx := context.Background()
	sweeper := NewSweeper(store, orch, clock)

	grant, err := mgr.Acquire(ctx, 1, []uint{1, 2}, time.Second)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	clock.Advance(2 * time.Second)

	freed, _, err := sweeper.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if freed != 2 {
		t.Fatalf("freed = %d, want 2", freed)
	}
	for _, id := range []uint{1, 2} {
		if s := seatState(t, store, 1, id); s.Status != model.SeatAvailable || s.LockToken != "" {
			t.Fatalf("seat %d not reclaimed: %+v", id, s)
		}
	}
	lock, err := store.LockByToken(ctx, grant.Token)
	if err != nil || lock.Status != model.LockExpired {
		t.Fatalf("lock status=%v err=%v, want EXPIRED", lock, err)
	}
}

func TestSweepLeavesLiveAndBookedSeatsAlone(t *testing.T) {
	store, clock, mgr, orch := newTestEnv(t)
	ctx := context.Background()
	sweeper := NewSweeper(store, orch, clock)

	live, err := mgr.Acquire(ctx, 1, []uint{1}, time.Hour)
	if err != nil {
		t.Fatalf("acquire live: %v", err)
	}
	short, err := mgr.Acquire(ctx, 1, []uint{2}, time.Second)
	if err != nil {
		t.Fatalf("acquire short: %v", err)
	}
	if _, err := orch.CreateBooking(ctx, 1, nil, bookingInput(live.Token, "A1")); err != nil {
		t.Fatalf("book seat A: %v", err)
	}

	clock.Advance(2 * time.Second)
	freed, _, err := sweeper.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if freed != 1 {
		t.Fatalf("freed = %d, want only the short lock's seat", freed)
	}
	if s := seatState(t, store, 1, 1); s.Status != model.SeatBooked {
		t.Fatalf("booked seat regressed to %s", s.Status)
	}
	if s := seatState(t, store, 1, 2); s.Status != model.SeatAvailable {
		t.Fatalf("expired seat not reclaimed: %s", s.Status)
	}
	_ = short
}

func TestSweepExpiresAbandonedPendingBookings(t *testing.T) {
	store, clock, mgr, orch := newTestEnv(t)
	ctx := context.Background()
	sweeper := NewSweeper(store, orch, clock)
	sweeper.PendingCutoff = 15 * time.Minute

	grant, _ := mgr.Acquire(ctx, 1, []uint{1}, time.Minute)
	b, err := orch.CreateBooking(ctx, 1, nil, bookingInput(grant.Token, "A1"))
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	// Young pending booking is untouched.
	clock.Advance(5 * time.Minute)
	if _, expired, err := sweeper.SweepOnce(ctx); err != nil || expired != 0 {
		t.Fatalf("early sweep: expired=%d err=%v", expired, err)
	}

	clock.Advance(20 * time.Minute)
	_, expired, err := sweeper.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expired = %d, want 1", expired)
	}
	got, err := store.BookingByID(ctx, b.ID)
	if err != nil || got.Status != model.BookingExpired {
		t.Fatalf("booking status=%v err=%v, want EXPIRED", got, err)
	}

	// Repeat sweeps stay quiet: the transition is terminal and idempotent.
	if _, expired, err := sweeper.SweepOnce(ctx); err != nil || expired != 0 {
		t.Fatalf("second sweep: expired=%d err=%v", expired, err)
	}
}

func TestSweepSkipsPaidBookings(t *testing.T) {
	store, clock, mgr, orch := newTestEnv(t)
	ctx := context.Background()
	sweeper := NewSweeper(store, orch, clock)

	grant, _ := mgr.Acquire(ctx, 1, []uint{1}, time.Minute)
	b, err := orch.CreateBooking(ctx, 1, nil, bookingInput(grant.Token, "A1"))
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if _, err := orch.MarkPaid(ctx, b.ID, "TXN-9"); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	clock.Advance(time.Hour)
	if _, expired, err := sweeper.SweepOnce(ctx); err != nil || expired != 0 {
		t.Fatalf("sweep touched a paid booking: expired=%d err=%v", expired, err)
	}
	got, _ := store.BookingByID(ctx, b.ID)
	if got.Status != model.BookingPaid {
		t.Fatalf("paid booking regressed to %s", got.Status)
	}
}

func TestSweeperStartStop(t *testing.T) {
	store, clock, mgr, orch := newTestEnv(t)
	_ = store
	_ = mgr
	sweeper := NewSweeper(store, orch, clock)
	sweeper.Interval = 10 * time.Millisecond

	sweeper.Start()
	sweeper.Stop()
	// Stop twice must not panic.
	sweeper.Stop()
}
