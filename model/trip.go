package model

import "time"

type Trip struct {
	DTO
	PublicCode    string    `gorm:"size:16;uniqueIndex" json:"publicCode"`
	RouteId       uint      `json:"routeId"`
	BusId         uint      `json:"busId"`
	DepartureTime time.Time `validate:"required" json:"departureTime"`
	ArrivalTime   time.Time `validate:"required" json:"arrivalTime"`
	Price         float64   `json:"price"`
	Status        string    `json:"status"` // SCHEDULED, DEPARTED, COMPLETED, CANCELLED
	Route         Route     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;foreignKey:RouteId" json:"Route"`
	Bus           Bus       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;foreignKey:BusId" json:"Bus"`

	Bookings []Booking `gorm:"foreignKey:TripId" json:"bookings,omitempty"`
}

// Seat states for a TripSeat row. LOCKED is only meaningful while
// LockedUntil is in the future; an elapsed lock reads as available.
const (
	SeatAvailable = "AVAILABLE"
	SeatLocked    = "LOCKED"
	SeatBooked    = "BOOKED"
)

// TripSeat is the per-(trip, seat) availability record. One row per
// physical seat is created when the trip is scheduled; rows change state
// only through the registry's conditional transition.
type TripSeat struct {
	DTO
	TripId      uint       `gorm:"index:idx_trip_seat,unique" json:"tripId"`
	SeatId      uint       `gorm:"index:idx_trip_seat,unique" json:"seatId"`
	SeatCode    string     `gorm:"size:8" json:"seatCode"`
	SeatTypeId  uint       `json:"seatTypeId"`
	Status      string     `gorm:"size:12;index" json:"status"`
	LockToken   string     `gorm:"size:40;index" json:"-"`
	LockedUntil *time.Time `json:"lockedUntil,omitempty"`
	BookingId   *uint      `json:"bookingId,omitempty"`
	Trip        Trip       `json:"-"`
	Seat        Seat       `json:"Seat"`
	SeatType    SeatType   `json:"SeatType"`
}

type CreateTripInput struct {
	RouteId       uint      `json:"routeId" validate:"required,gt=0"`
	BusId         uint      `json:"busId" validate:"required,gt=0"`
	DepartureTime time.Time `json:"departureTime" validate:"required"`
	ArrivalTime   time.Time `json:"arrivalTime" validate:"required,gtfield=DepartureTime"`
	Price         float64   `json:"price" validate:"required,gt=0"`
}

type UpdateTripInput struct {
	DepartureTime *time.Time `json:"departureTime"`
	ArrivalTime   *time.Time `json:"arrivalTime"`
	Price         *float64   `json:"price"`
	Status        *string    `json:"status" validate:"omitempty,oneof=SCHEDULED DEPARTED COMPLETED CANCELLED"`
}

type FilterTripInput struct {
	Pagination
	RouteId   uint   `query:"routeId" validate:"omitempty,gt=0"`
	BusId     uint   `query:"busId" validate:"omitempty,gt=0"`
	Origin    string `query:"origin"`
	Dest      string `query:"dest"`
	Date      string `query:"date"` // YYYY-MM-DD
	Status    string `query:"status" validate:"omitempty,oneof=SCHEDULED DEPARTED COMPLETED CANCELLED"`
}
