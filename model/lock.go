package model

import "time"

// Lock statuses. REDEEMED is a terminal marker kept so a duplicate
// redeem of the same token gets a clear conflict instead of silently
// re-locking someone else's seats.
const (
	LockActive   = "ACTIVE"
	LockRedeemed = "REDEEMED"
	LockReleased = "RELEASED"
	LockExpired  = "EXPIRED"
)

// SeatLock records a time-bounded exclusive hold over a set of seats on
// one trip. The token is the only credential needed to redeem it; no
// user identity is bound at acquisition time.
type SeatLock struct {
	DTO
	Token     string    `gorm:"uniqueIndex;size:40;not null" json:"token"`
	TripId    uint      `gorm:"index" json:"tripId"`
	SeatCount int       `json:"seatCount"`
	Status    string    `gorm:"size:12;index" json:"status"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AcquireLockInput struct {
	SeatIds    []uint `json:"seatIds" validate:"required,min=1,dive,gt=0"`
	TtlSeconds int    `json:"ttlSeconds" validate:"omitempty,min=30,max=1800"`
}

type ReleaseLockInput struct {
	LockToken string `json:"lockToken" validate:"required"`
}
