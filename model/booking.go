package model

import "time"

// Booking statuses. PAID, CANCELLED and EXPIRED are terminal.
const (
	BookingPending   = "PENDING"
	BookingPaid      = "PAID"
	BookingCancelled = "CANCELLED"
	BookingExpired   = "EXPIRED"
)

type Booking struct {
	DTO
	PublicCode     string      `gorm:"unique;size:20" json:"publicCode"` // e.g. BKG-XXXXXXXX
	TripId         uint        `json:"tripId"`
	CustomerId     *uint       `json:"customerId,omitempty"` // nil for guest checkout
	Customer       *Customer   `json:"customer,omitempty"`
	Trip           Trip        `json:"trip"`
	Status         string      `json:"status"`
	TotalAmount    float64     `json:"totalAmount"`
	PaymentMethod  string      `json:"paymentMethod"`
	PaymentRef     string      `gorm:"size:64" json:"paymentRef,omitempty"`
	LockToken      string      `gorm:"size:40;index" json:"-"`
	ContactName    string      `json:"contactName"`
	Phone          string      `json:"phone"`
	Email          string      `json:"email"`
	PickupPointId  *uint       `json:"pickupPointId,omitempty"`
	DropoffPointId *uint       `json:"dropoffPointId,omitempty"`
	PaidAt         *time.Time  `json:"paidAt,omitempty"`
	CancelledAt    *time.Time  `json:"cancelledAt,omitempty"`
	Passengers     []Passenger `gorm:"foreignKey:BookingId" json:"passengers"`
}

// Passenger is one row per seat in a booking, owned by the booking.
type Passenger struct {
	DTO
	BookingId  uint    `gorm:"index" json:"bookingId"`
	FullName   string  `gorm:"not null" json:"fullName"`
	DocumentId string  `gorm:"size:30" json:"documentId"`
	SeatCode   string  `gorm:"size:8;not null" json:"seatCode"`
	Price      float64 `json:"price"`
	Booking    Booking `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

type PassengerInput struct {
	FullName   string `json:"fullName" validate:"required"`
	DocumentId string `json:"documentId"`
	SeatCode   string `json:"seatCode" validate:"required"`
}

type ContactInput struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

type CreateBookingInput struct {
	LockToken      string           `json:"lockToken" validate:"required"`
	Passengers     []PassengerInput `json:"passengers" validate:"required,min=1,dive"`
	Contact        ContactInput     `json:"contact" validate:"required"`
	PaymentMethod  string           `json:"paymentMethod" validate:"required,oneof=CARD CASH GATEWAY"`
	PickupPointId  *uint            `json:"pickupPointId"`
	DropoffPointId *uint            `json:"dropoffPointId"`
}

type FilterBookingInput struct {
	Pagination
	TripId    uint   `query:"tripId" validate:"omitempty,gt=0"`
	Status    string `query:"status" validate:"omitempty,oneof=PENDING PAID CANCELLED EXPIRED"`
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
}
