package booking

import (
	"errors"
	"fmt"
)

// Machine-readable reasons surfaced to API clients.
const (
	ReasonSeatUnavailable       = "SEAT_UNAVAILABLE"
	ReasonLockInvalid           = "LOCK_INVALID"
	ReasonLockExpired           = "LOCK_EXPIRED"
	ReasonLockAlreadyRedeemed   = "LOCK_ALREADY_REDEEMED"
	ReasonPassengerSeatMismatch = "PASSENGER_SEAT_MISMATCH"
	ReasonSeatLockLost          = "SEAT_LOCK_LOST"
)

var (
	// ErrConflict is returned by a registry transition whose state guard
	// did not match. It is the only failure mode of a conditional update.
	ErrConflict = errors.New("seat state conflict")

	// ErrNotFound is returned by store lookups for unknown rows.
	ErrNotFound = errors.New("record not found")

	ErrLockInvalid           = errors.New("lock token unknown or not usable")
	ErrLockExpired           = errors.New("lock expired")
	ErrLockAlreadyRedeemed   = errors.New("lock already redeemed")
	ErrPassengerSeatMismatch = errors.New("passengers do not match locked seats")
	ErrSeatLockLost          = errors.New("seat lock lost before booking committed")
	ErrInvalidTransition     = errors.New("invalid booking status transition")
)

// LockError reports a failed acquisition and the first seat that caused it.
type LockError struct {
	Reason string
	SeatId uint
}

func (e *LockError) Error() string {
	return fmt.Sprintf("%s: seat %d", e.Reason, e.SeatId)
}
