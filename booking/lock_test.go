package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bus_booking/model"

	"github.com/jonboulle/clockwork"
)

func newTestEnv(t *testing.T) (*MemoryStore, *clockwork.FakeClock, *Manager, *Orchestrator) {
	t.Helper()
	store := NewMemoryStore()
	clock := clockwork.NewFakeClock()

	trip := &model.Trip{Price: 100, Status: "SCHEDULED"}
	trip.ID = 1
	store.AddTrip(trip)
	for i, code := range []string{"A1", "B1", "C1"} {
		store.AddSeat(model.TripSeat{
			TripId:   1,
			SeatId:   uint(i + 1),
			SeatCode: code,
			Status:   model.SeatAvailable,
			SeatType: model.SeatType{Type: "STANDARD", PriceModifier: 1},
		})
	}

	mgr := NewManager(store, clock)
	orch := NewOrchestrator(store, mgr, clock)
	return store, clock, mgr, orch
}

func seatState(t *testing.T, store *MemoryStore, tripId, seatId uint) model.TripSeat {
	t.Helper()
	seats, err := store.Statuses(context.Background(), tripId)
	if err != nil {
		t.Fatalf("statuses: %v", err)
	}
	for _, s := range seats {
		if s.SeatId == seatId {
			return s
		}
	}
	t.Fatalf("seat %d not found on trip %d", seatId, tripId)
	return model.TripSeat{}
}

func TestAcquireLocksAllSeatsUnderOneToken(t *testing.T) {
	store, clock, mgr, _ := newTestEnv(t)
	ctx := context.Background()

	grant, err := mgr.Acquire(ctx, 1, []uint{2, 1}, time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if len(grant.SeatIds) != 2 || grant.SeatIds[0] != 1 || grant.SeatIds[1] != 2 {
		t.Fatalf("expected sorted seat ids [1 2], got %v", grant.SeatIds)
	}
	if want := clock.Now().Add(time.Minute); !grant.ExpiresAt.Equal(want) {
		t.Fatalf("expiry %v, want %v", grant.ExpiresAt, want)
	}
	for _, id := range grant.SeatIds {
		s := seatState(t, store, 1, id)
		if s.Status != model.SeatLocked || s.LockToken != grant.Token {
			t.Fatalf("seat %d: status=%s token=%s", id, s.Status, s.LockToken)
		}
	}
}

func TestAcquirePartialFailureRollsBack(t *testing.T) {
	store, _, mgr, _ := newTestEnv(t)
	ctx := context.Background()

	if _, err := mgr.Acquire(ctx, 1, []uint{1, 2}, time.Minute); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	// {B, C} must fail entirely: C may not stay locked.
	_, err := mgr.Acquire(ctx, 1, []uint{2, 3}, time.Minute)
	var lockErr *LockError
	if !errors.As(err, &lockErr) {
		t.Fatalf("expected LockError, got %v", err)
	}
	if lockErr.Reason != ReasonSeatUnavailable || lockErr.SeatId != 2 {
		t.Fatalf("unexpected lock error: %+v", lockErr)
	}
	if s := seatState(t, store, 1, 3); s.Status != model.SeatAvailable {
		t.Fatalf("seat C was not rolled back, status=%s", s.Status)
	}
}

func TestConcurrentAcquireSingleWinnerPerSeat(t *testing.T) {
	_, _, mgr, _ := newTestEnv(t)
	ctx := context.Background()

	const workers = 32
	var wg sync.WaitGroup
	grants := make([]*LockGrant, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Overlapping sets: half go for {1,2}, half for {2,3}.
			seats := []uint{1, 2}
			if i%2 == 1 {
				seats = []uint{2, 3}
			}
			g, err := mgr.Acquire(ctx, 1, seats, time.Minute)
			if err == nil {
				grants[i] = g
			}
		}(i)
	}
	wg.Wait()

	claimed := make(map[uint]int)
	winners := 0
	for _, g := range grants {
		if g == nil {
			continue
		}
		winners++
		for _, id := range g.SeatIds {
			claimed[id]++
		}
	}
	if winners == 0 {
		t.Fatal("no acquire succeeded")
	}
	for seatId, n := range claimed {
		if n > 1 {
			t.Fatalf("seat %d claimed by %d concurrent locks", seatId, n)
		}
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	store, _, mgr, _ := newTestEnv(t)
	ctx := context.Background()

	grant, err := mgr.Acquire(ctx, 1, []uint{1}, time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := mgr.Release(ctx, grant.Token); err != nil {
			t.Fatalf("release #%d: %v", i+1, err)
		}
	}
	if err := mgr.Release(ctx, "LCK-deadbeef"); err != nil {
		t.Fatalf("release of unknown token: %v", err)
	}
	if s := seatState(t, store, 1, 1); s.Status != model.SeatAvailable {
		t.Fatalf("seat not freed, status=%s", s.Status)
	}
}

func TestLazyExpiryWithoutSweeper(t *testing.T) {
	store, clock, mgr, _ := newTestEnv(t)
	ctx := context.Background()

	grant, err := mgr.Acquire(ctx, 1, []uint{1}, time.Second)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	clock.Advance(2 * time.Second)

	if _, err := mgr.Validate(ctx, grant.Token, 1); !errors.Is(err, ErrLockExpired) {
		t.Fatalf("expected ErrLockExpired, got %v", err)
	}
	// The row still says LOCKED but reads as available before any sweep.
	if s := seatState(t, store, 1, 1); EffectiveStatus(s, clock.Now()) != model.SeatAvailable {
		t.Fatalf("expired lock should read available, got %s", EffectiveStatus(s, clock.Now()))
	}
	// A fresh acquire may take over the expired lock directly.
	if _, err := mgr.Acquire(ctx, 1, []uint{1}, time.Minute); err != nil {
		t.Fatalf("acquire over expired lock: %v", err)
	}
}

func TestValidateRejectsForeignTrip(t *testing.T) {
	store, _, mgr, _ := newTestEnv(t)
	ctx := context.Background()

	other := &model.Trip{Price: 50}
	other.ID = 2
	store.AddTrip(other)

	grant, err := mgr.Acquire(ctx, 1, []uint{1}, time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := mgr.Validate(ctx, grant.Token, 2); !errors.Is(err, ErrLockInvalid) {
		t.Fatalf("expected ErrLockInvalid for trip mismatch, got %v", err)
	}
	if _, err := mgr.Validate(ctx, "LCK-unknown", 1); !errors.Is(err, ErrLockInvalid) {
		t.Fatalf("expected ErrLockInvalid for unknown token, got %v", err)
	}
}
