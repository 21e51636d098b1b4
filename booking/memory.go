package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"bus_booking/model"
)

type seatKey struct {
	tripId uint
	seatId uint
}

type memData struct {
	seats    map[seatKey]model.TripSeat
	locks    map[string]model.SeatLock
	bookings map[uint]model.Booking
	trips    map[uint]model.Trip
	nextId   uint
}

func newMemData() *memData {
	return &memData{
		seats:    make(map[seatKey]model.TripSeat),
		locks:    make(map[string]model.SeatLock),
		bookings: make(map[uint]model.Booking),
		trips:    make(map[uint]model.Trip),
	}
}

func (d *memData) clone() *memData {
	c := newMemData()
	c.nextId = d.nextId
	for k, v := range d.seats {
		c.seats[k] = v
	}
	for k, v := range d.locks {
		c.locks[k] = v
	}
	for k, v := range d.bookings {
		v.Passengers = append([]model.Passenger(nil), v.Passengers...)
		c.bookings[k] = v
	}
	for k, v := range d.trips {
		c.trips[k] = v
	}
	return c
}

func (d *memData) nextID() uint {
	d.nextId++
	return d.nextId
}

func (d *memData) statuses(tripId uint) []model.TripSeat {
	var out []model.TripSeat
	for k, s := range d.seats {
		if k.tripId == tripId {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatCode < out[j].SeatCode })
	return out
}

func (d *memData) lock(tripId, seatId uint, token string, until, now time.Time) error {
	k := seatKey{tripId, seatId}
	s, ok := d.seats[k]
	if !ok {
		return ErrConflict
	}
	free := s.Status == model.SeatAvailable ||
		(s.Status == model.SeatLocked && s.LockedUntil != nil && s.LockedUntil.Before(now))
	if !free {
		return ErrConflict
	}
	u := until
	s.Status = model.SeatLocked
	s.LockToken = token
	s.LockedUntil = &u
	s.BookingId = nil
	d.seats[k] = s
	return nil
}

func (d *memData) unlock(tripId, seatId uint, token string) error {
	k := seatKey{tripId, seatId}
	s, ok := d.seats[k]
	if !ok || s.Status != model.SeatLocked || s.LockToken != token {
		return ErrConflict
	}
	s.Status = model.SeatAvailable
	s.LockToken = ""
	s.LockedUntil = nil
	d.seats[k] = s
	return nil
}

func (d *memData) book(tripId, seatId uint, token string, bookingId uint, now time.Time) error {
	k := seatKey{tripId, seatId}
	s, ok := d.seats[k]
	if !ok || s.Status != model.SeatLocked || s.LockToken != token ||
		s.LockedUntil == nil || !s.LockedUntil.After(now) {
		return ErrConflict
	}
	id := bookingId
	s.Status = model.SeatBooked
	s.BookingId = &id
	s.LockToken = ""
	s.LockedUntil = nil
	d.seats[k] = s
	return nil
}

func (d *memData) reclaim(tripId, seatId uint, now time.Time) error {
	k := seatKey{tripId, seatId}
	s, ok := d.seats[k]
	if !ok || s.Status != model.SeatLocked || s.LockedUntil == nil || !s.LockedUntil.Before(now) {
		return ErrConflict
	}
	s.Status = model.SeatAvailable
	s.LockToken = ""
	s.LockedUntil = nil
	d.seats[k] = s
	return nil
}

// MemoryStore is a mutex-guarded Store honoring the same conditional
// transition contract as the SQL implementation. It backs the unit and
// race tests and is handy for local development without a database.
type MemoryStore struct {
	mu sync.Mutex
	d  *memData
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{d: newMemData()}
}

// AddTrip registers a trip, assigning an id when missing.
func (s *MemoryStore) AddTrip(trip *model.Trip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if trip.ID == 0 {
		trip.ID = s.d.nextID()
	}
	s.d.trips[trip.ID] = *trip
}

// AddSeat registers a trip-seat row, assigning an id when missing.
func (s *MemoryStore) AddSeat(seat model.TripSeat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seat.ID == 0 {
		seat.ID = s.d.nextID()
	}
	s.d.seats[seatKey{seat.TripId, seat.SeatId}] = seat
}

func (s *MemoryStore) Statuses(ctx context.Context, tripId uint) ([]model.TripSeat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.statuses(tripId), nil
}

func (s *MemoryStore) Lock(ctx context.Context, tripId, seatId uint, token string, until, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.lock(tripId, seatId, token, until, now)
}

func (s *MemoryStore) Unlock(ctx context.Context, tripId, seatId uint, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.unlock(tripId, seatId, token)
}

func (s *MemoryStore) Book(ctx context.Context, tripId, seatId uint, token string, bookingId uint, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.book(tripId, seatId, token, bookingId, now)
}

func (s *MemoryStore) Reclaim(ctx context.Context, tripId, seatId uint, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.reclaim(tripId, seatId, now)
}

func (s *MemoryStore) ExpiredLocked(ctx context.Context, now time.Time, limit int) ([]model.TripSeat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.expiredLocked(now, limit), nil
}

func (d *memData) expiredLocked(now time.Time, limit int) []model.TripSeat {
	var out []model.TripSeat
	for _, seat := range d.seats {
		if seat.Status == model.SeatLocked && seat.LockedUntil != nil && seat.LockedUntil.Before(now) {
			out = append(out, seat)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

func (s *MemoryStore) CreateLock(ctx context.Context, lock *model.SeatLock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.createLock(lock)
}

func (d *memData) createLock(lock *model.SeatLock) error {
	if lock.ID == 0 {
		lock.ID = d.nextID()
	}
	d.locks[lock.Token] = *lock
	return nil
}

func (s *MemoryStore) LockByToken(ctx context.Context, token string) (*model.SeatLock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.lockByToken(token)
}

func (d *memData) lockByToken(token string) (*model.SeatLock, error) {
	lock, ok := d.locks[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &lock, nil
}

func (s *MemoryStore) CASLockStatus(ctx context.Context, token, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.casLockStatus(token, from, to)
}

func (d *memData) casLockStatus(token, from, to string) error {
	lock, ok := d.locks[token]
	if !ok || lock.Status != from {
		return ErrConflict
	}
	lock.Status = to
	d.locks[token] = lock
	return nil
}

func (s *MemoryStore) SeatsByToken(ctx context.Context, tripId uint, token string) ([]model.TripSeat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.seatsByToken(tripId, token), nil
}

func (d *memData) seatsByToken(tripId uint, token string) []model.TripSeat {
	var out []model.TripSeat
	for k, seat := range d.seats {
		if k.tripId == tripId && seat.Status == model.SeatLocked && seat.LockToken == token {
			out = append(out, seat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatCode < out[j].SeatCode })
	return out
}

func (s *MemoryStore) ExpiredActiveLocks(ctx context.Context, now time.Time, limit int) ([]model.SeatLock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.expiredActiveLocks(now, limit), nil
}

func (d *memData) expiredActiveLocks(now time.Time, limit int) []model.SeatLock {
	var out []model.SeatLock
	for _, lock := range d.locks {
		if lock.Status == model.LockActive && lock.ExpiresAt.Before(now) {
			out = append(out, lock)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

func (s *MemoryStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.createBooking(b)
}

func (d *memData) createBooking(b *model.Booking) error {
	if b.ID == 0 {
		b.ID = d.nextID()
	}
	for i := range b.Passengers {
		if b.Passengers[i].ID == 0 {
			b.Passengers[i].ID = d.nextID()
		}
		b.Passengers[i].BookingId = b.ID
	}
	stored := *b
	stored.Passengers = append([]model.Passenger(nil), b.Passengers...)
	d.bookings[b.ID] = stored
	return nil
}

func (s *MemoryStore) BookingByID(ctx context.Context, id uint) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.bookingByID(id)
}

func (d *memData) bookingByID(id uint) (*model.Booking, error) {
	b, ok := d.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	b.Passengers = append([]model.Passenger(nil), b.Passengers...)
	return &b, nil
}

func (s *MemoryStore) CASBookingStatus(ctx context.Context, id uint, from, to string, at time.Time, paymentRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.casBookingStatus(id, from, to, at, paymentRef)
}

func (d *memData) casBookingStatus(id uint, from, to string, at time.Time, paymentRef string) error {
	b, ok := d.bookings[id]
	if !ok || b.Status != from {
		return ErrConflict
	}
	b.Status = to
	switch to {
	case model.BookingPaid:
		t := at
		b.PaidAt = &t
		if paymentRef != "" {
			b.PaymentRef = paymentRef
		}
	case model.BookingCancelled:
		t := at
		b.CancelledAt = &t
	}
	d.bookings[id] = b
	return nil
}

func (s *MemoryStore) PendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.pendingBefore(cutoff, limit), nil
}

func (d *memData) pendingBefore(cutoff time.Time, limit int) []model.Booking {
	var out []model.Booking
	for _, b := range d.bookings {
		if b.Status == model.BookingPending && b.CreatedAt.Before(cutoff) {
			out = append(out, b)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

func (s *MemoryStore) TripByID(ctx context.Context, id uint) (*model.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.tripByID(id)
}

func (d *memData) tripByID(id uint) (*model.Trip, error) {
	trip, ok := d.trips[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &trip, nil
}

func (s *MemoryStore) Atomically(ctx context.Context, fn func(Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.d.clone()
	if err := fn(&memTx{d: s.d}); err != nil {
		*s.d = *snapshot
		return err
	}
	return nil
}

// memTx operates on the data of a MemoryStore whose mutex is already
// held by Atomically.
type memTx struct {
	d *memData
}

func (t *memTx) Statuses(ctx context.Context, tripId uint) ([]model.TripSeat, error) {
	return t.d.statuses(tripId), nil
}

func (t *memTx) Lock(ctx context.Context, tripId, seatId uint, token string, until, now time.Time) error {
	return t.d.lock(tripId, seatId, token, until, now)
}

func (t *memTx) Unlock(ctx context.Context, tripId, seatId uint, token string) error {
	return t.d.unlock(tripId, seatId, token)
}

func (t *memTx) Book(ctx context.Context, tripId, seatId uint, token string, bookingId uint, now time.Time) error {
	return t.d.book(tripId, seatId, token, bookingId, now)
}

func (t *memTx) Reclaim(ctx context.Context, tripId, seatId uint, now time.Time) error {
	return t.d.reclaim(tripId, seatId, now)
}

func (t *memTx) ExpiredLocked(ctx context.Context, now time.Time, limit int) ([]model.TripSeat, error) {
	return t.d.expiredLocked(now, limit), nil
}

func (t *memTx) CreateLock(ctx context.Context, lock *model.SeatLock) error {
	return t.d.createLock(lock)
}

func (t *memTx) LockByToken(ctx context.Context, token string) (*model.SeatLock, error) {
	return t.d.lockByToken(token)
}

func (t *memTx) CASLockStatus(ctx context.Context, token, from, to string) error {
	return t.d.casLockStatus(token, from, to)
}

func (t *memTx) SeatsByToken(ctx context.Context, tripId uint, token string) ([]model.TripSeat, error) {
	return t.d.seatsByToken(tripId, token), nil
}

func (t *memTx) ExpiredActiveLocks(ctx context.Context, now time.Time, limit int) ([]model.SeatLock, error) {
	return t.d.expiredActiveLocks(now, limit), nil
}

func (t *memTx) CreateBooking(ctx context.Context, b *model.Booking) error {
	return t.d.createBooking(b)
}

func (t *memTx) BookingByID(ctx context.Context, id uint) (*model.Booking, error) {
	return t.d.bookingByID(id)
}

func (t *memTx) CASBookingStatus(ctx context.Context, id uint, from, to string, at time.Time, paymentRef string) error {
	return t.d.casBookingStatus(id, from, to, at, paymentRef)
}

func (t *memTx) PendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error) {
	return t.d.pendingBefore(cutoff, limit), nil
}

func (t *memTx) TripByID(ctx context.Context, id uint) (*model.Trip, error) {
	return t.d.tripByID(id)
}

func (t *memTx) Atomically(ctx context.Context, fn func(Store) error) error {
	// Already inside the store-wide critical section.
	return fn(t)
}
