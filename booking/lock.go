package booking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"sort"
	"time"

	"bus_booking/model"

	"github.com/jonboulle/clockwork"
)

const DefaultLockTTL = 10 * time.Minute

// LockGrant is returned to a successful Acquire caller. The token is the
// only credential needed to redeem or release the hold.
type LockGrant struct {
	Token     string    `json:"lockToken"`
	TripId    uint      `json:"tripId"`
	SeatIds   []uint    `json:"seatIds"`
	ExpiresAt time.Time `json:"lockedUntil"`
}

// LockInfo describes a validated, still-live lock.
type LockInfo struct {
	Token     string
	TripId    uint
	SeatIds   []uint
	SeatCodes []string
	Seats     []model.TripSeat
	ExpiresAt time.Time
}

// Manager grants, releases and validates time-bounded exclusive holds
// over seat sets. All mutual exclusion comes from the registry's
// conditional transitions; the manager adds ordering and compensation.
type Manager struct {
	store Store
	clock clockwork.Clock
}

func NewManager(store Store, clock clockwork.Clock) *Manager {
	return &Manager{store: store, clock: clock}
}

// NewLockToken returns an unguessable lock credential.
func NewLockToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand failure is not recoverable
	}
	return "LCK-" + hex.EncodeToString(buf)
}

// Acquire locks every requested seat under one token and one expiry, or
// none of them. Seat ids are deduplicated and locked in sorted order so
// overlapping requests contend in the same sequence; on the first
// failure every seat locked so far is unwound before returning.
func (m *Manager) Acquire(ctx context.Context, tripId uint, seatIds []uint, ttl time.Duration) (*LockGrant, error) {
	if len(seatIds) == 0 {
		return nil, errors.New("seatIds must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}

	seen := make(map[uint]bool, len(seatIds))
	ids := make([]uint, 0, len(seatIds))
	for _, id := range seatIds {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	token := NewLockToken()
	now := m.clock.Now()
	until := now.Add(ttl)

	locked := make([]uint, 0, len(ids))
	for _, seatId := range ids {
		if err := m.store.Lock(ctx, tripId, seatId, token, until, now); err != nil {
			m.rollback(ctx, tripId, locked, token)
			if errors.Is(err, ErrConflict) {
				return nil, &LockError{Reason: ReasonSeatUnavailable, SeatId: seatId}
			}
			return nil, err
		}
		locked = append(locked, seatId)
	}

	lock := &model.SeatLock{
		Token:     token,
		TripId:    tripId,
		SeatCount: len(ids),
		Status:    model.LockActive,
		ExpiresAt: until,
	}
	if err := m.store.CreateLock(ctx, lock); err != nil {
		m.rollback(ctx, tripId, locked, token)
		return nil, err
	}

	return &LockGrant{Token: token, TripId: tripId, SeatIds: ids, ExpiresAt: until}, nil
}

func (m *Manager) rollback(ctx context.Context, tripId uint, seatIds []uint, token string) {
	for _, seatId := range seatIds {
		if err := m.store.Unlock(ctx, tripId, seatId, token); err != nil && !errors.Is(err, ErrConflict) {
			log.Printf("lock rollback: seat %d on trip %d: %v", seatId, tripId, err)
		}
	}
}

// Release frees the seats still held under the token. Unknown, expired
// or already consumed tokens are a no-op.
func (m *Manager) Release(ctx context.Context, token string) error {
	lock, err := m.store.LockByToken(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if lock.Status != model.LockActive {
		return nil
	}

	seats, err := m.store.SeatsByToken(ctx, lock.TripId, token)
	if err != nil {
		return err
	}
	for _, seat := range seats {
		if err := m.store.Unlock(ctx, lock.TripId, seat.SeatId, token); err != nil && !errors.Is(err, ErrConflict) {
			return err
		}
	}
	if err := m.store.CASLockStatus(ctx, token, model.LockActive, model.LockReleased); err != nil && !errors.Is(err, ErrConflict) {
		return err
	}
	return nil
}

// Validate checks a token for redemption on the given trip. Expiry is
// evaluated against the clock here, not against sweeper progress.
func (m *Manager) Validate(ctx context.Context, token string, tripId uint) (*LockInfo, error) {
	lock, err := m.store.LockByToken(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrLockInvalid
	}
	if err != nil {
		return nil, err
	}
	if lock.TripId != tripId {
		return nil, ErrLockInvalid
	}
	switch lock.Status {
	case model.LockActive:
	case model.LockRedeemed:
		return nil, ErrLockAlreadyRedeemed
	default:
		return nil, ErrLockInvalid
	}
	if !m.clock.Now().Before(lock.ExpiresAt) {
		return nil, ErrLockExpired
	}

	seats, err := m.store.SeatsByToken(ctx, tripId, token)
	if err != nil {
		return nil, err
	}
	if len(seats) != lock.SeatCount {
		// Part of the hold is gone; the caller must re-lock.
		return nil, ErrSeatLockLost
	}
	info := &LockInfo{
		Token:     token,
		TripId:    tripId,
		ExpiresAt: lock.ExpiresAt,
		Seats:     seats,
	}
	for _, seat := range seats {
		info.SeatIds = append(info.SeatIds, seat.SeatId)
		info.SeatCodes = append(info.SeatCodes, seat.SeatCode)
	}
	return info, nil
}
