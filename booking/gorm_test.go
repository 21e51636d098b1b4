package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return NewGormStore(db), mock
}

// The registry contract hinges on the UPDATE carrying the state guard
// in its WHERE clause and on zero affected rows meaning a lost race.
func TestGormLockIsConditionalUpdate(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectExec(`UPDATE "trip_seats" SET .+ WHERE trip_id = .+ AND seat_id = .+ AND .*status = .+ AND locked_until < .+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := store.Lock(ctx, 1, 7, "LCK-aa", now.Add(time.Minute), now); err != nil {
		t.Fatalf("lock: %v", err)
	}

	mock.ExpectExec(`UPDATE "trip_seats" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := store.Lock(ctx, 1, 7, "LCK-bb", now.Add(time.Minute), now); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on zero rows, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGormBookGuardsTokenAndExpiry(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectExec(`UPDATE "trip_seats" SET .+ WHERE trip_id = .+ AND status = .+ AND lock_token = .+ AND locked_until > .+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := store.Book(ctx, 1, 7, "LCK-aa", 42, now); err != nil {
		t.Fatalf("book: %v", err)
	}

	mock.ExpectExec(`UPDATE "trip_seats" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := store.Book(ctx, 1, 7, "LCK-stale", 42, now); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for dead lock, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGormCASBookingStatusStampsPaidAt(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE "bookings" SET .+ WHERE id = .+ AND status = .+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := store.CASBookingStatus(ctx, 9, "PENDING", "PAID", time.Now(), "TXN-1"); err != nil {
		t.Fatalf("cas booking status: %v", err)
	}

	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := store.CASBookingStatus(ctx, 9, "PENDING", "CANCELLED", time.Now(), ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
