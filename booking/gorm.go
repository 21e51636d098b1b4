package booking

import (
	"context"
	"errors"
	"time"

	"bus_booking/model"

	"gorm.io/gorm"
)

// GormStore implements Store on PostgreSQL. Every transition is a single
// conditional UPDATE whose WHERE clause carries the state guard; a zero
// RowsAffected means another writer got there first.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Statuses(ctx context.Context, tripId uint) ([]model.TripSeat, error) {
	var seats []model.TripSeat
	err := s.db.WithContext(ctx).
		Preload("Seat").
		Preload("SeatType").
		Where("trip_id = ?", tripId).
		Order("seat_code").
		Find(&seats).Error
	return seats, err
}

func (s *GormStore) Lock(ctx context.Context, tripId, seatId uint, token string, until, now time.Time) error {
	db := s.db.WithContext(ctx)
	res := db.Model(&model.TripSeat{}).
		Where("trip_id = ? AND seat_id = ?", tripId, seatId).
		Where(db.Where("status = ?", model.SeatAvailable).
			Or("status = ? AND locked_until < ?", model.SeatLocked, now)).
		Updates(map[string]any{
			"status":       model.SeatLocked,
			"lock_token":   token,
			"locked_until": until,
			"booking_id":   nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *GormStore) Unlock(ctx context.Context, tripId, seatId uint, token string) error {
	res := s.db.WithContext(ctx).Model(&model.TripSeat{}).
		Where("trip_id = ? AND seat_id = ? AND status = ? AND lock_token = ?",
			tripId, seatId, model.SeatLocked, token).
		Updates(map[string]any{
			"status":       model.SeatAvailable,
			"lock_token":   "",
			"locked_until": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *GormStore) Book(ctx context.Context, tripId, seatId uint, token string, bookingId uint, now time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.TripSeat{}).
		Where("trip_id = ? AND seat_id = ? AND status = ? AND lock_token = ? AND locked_until > ?",
			tripId, seatId, model.SeatLocked, token, now).
		Updates(map[string]any{
			"status":       model.SeatBooked,
			"booking_id":   bookingId,
			"lock_token":   "",
			"locked_until": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *GormStore) Reclaim(ctx context.Context, tripId, seatId uint, now time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.TripSeat{}).
		Where("trip_id = ? AND seat_id = ? AND status = ? AND locked_until < ?",
			tripId, seatId, model.SeatLocked, now).
		Updates(map[string]any{
			"status":       model.SeatAvailable,
			"lock_token":   "",
			"locked_until": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *GormStore) ExpiredLocked(ctx context.Context, now time.Time, limit int) ([]model.TripSeat, error) {
	var seats []model.TripSeat
	q := s.db.WithContext(ctx).
		Where("status = ? AND locked_until < ?", model.SeatLocked, now)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&seats).Error
	return seats, err
}

func (s *GormStore) CreateLock(ctx context.Context, lock *model.SeatLock) error {
	return s.db.WithContext(ctx).Create(lock).Error
}

func (s *GormStore) LockByToken(ctx context.Context, token string) (*model.SeatLock, error) {
	var lock model.SeatLock
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&lock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lock, nil
}

func (s *GormStore) CASLockStatus(ctx context.Context, token, from, to string) error {
	res := s.db.WithContext(ctx).Model(&model.SeatLock{}).
		Where("token = ? AND status = ?", token, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *GormStore) SeatsByToken(ctx context.Context, tripId uint, token string) ([]model.TripSeat, error) {
	var seats []model.TripSeat
	err := s.db.WithContext(ctx).
		Preload("SeatType").
		Where("trip_id = ? AND status = ? AND lock_token = ?", tripId, model.SeatLocked, token).
		Order("seat_code").
		Find(&seats).Error
	return seats, err
}

func (s *GormStore) ExpiredActiveLocks(ctx context.Context, now time.Time, limit int) ([]model.SeatLock, error) {
	var locks []model.SeatLock
	q := s.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", model.LockActive, now)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&locks).Error
	return locks, err
}

func (s *GormStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *GormStore) BookingByID(ctx context.Context, id uint) (*model.Booking, error) {
	var b model.Booking
	err := s.db.WithContext(ctx).Preload("Passengers").First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *GormStore) CASBookingStatus(ctx context.Context, id uint, from, to string, at time.Time, paymentRef string) error {
	updates := map[string]any{"status": to}
	switch to {
	case model.BookingPaid:
		updates["paid_at"] = at
		if paymentRef != "" {
			updates["payment_ref"] = paymentRef
		}
	case model.BookingCancelled:
		updates["cancelled_at"] = at
	}
	res := s.db.WithContext(ctx).Model(&model.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *GormStore) PendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error) {
	var bookings []model.Booking
	q := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.BookingPending, cutoff)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&bookings).Error
	return bookings, err
}

func (s *GormStore) TripByID(ctx context.Context, id uint) (*model.Trip, error) {
	var trip model.Trip
	err := s.db.WithContext(ctx).First(&trip, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (s *GormStore) Atomically(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
