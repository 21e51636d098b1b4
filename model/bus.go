package model

type Bus struct {
	DTO
	PlateNumber string  `gorm:"uniqueIndex;size:20;not null" validate:"required" json:"plateNumber"`
	Model       string  `gorm:"size:100" json:"model"`
	Operator    string  `gorm:"size:100" json:"operator"`
	ImageUrl    *string `json:"imageUrl"`
	IsActive    bool    `gorm:"default:true" json:"isActive"`
	Seats       []Seat  `gorm:"foreignKey:BusId" json:"seats,omitempty"`
}

type SeatType struct {
	DTO
	Type          string  `gorm:"uniqueIndex;not null" validate:"required" json:"type"` // STANDARD, VIP, SLEEPER
	PriceModifier float64 `gorm:"not null;default:1" json:"priceModifier"`
}

// Seat is a physical position on a bus. Immutable once created.
type Seat struct {
	DTO
	BusId      uint     `gorm:"index:idx_bus_seat_code,unique" json:"busId"`
	Code       string   `gorm:"index:idx_bus_seat_code,unique;size:8;not null" validate:"required" json:"code"` // e.g. "A1"
	Row        string   `gorm:"not null" validate:"required" json:"row"`
	Column     int      `gorm:"not null" validate:"required,min=1" json:"column"`
	SeatTypeId uint     `json:"seatTypeId"`
	SeatType   SeatType `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"SeatType"`
	Bus        Bus      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

type CreateBusInput struct {
	PlateNumber string           `json:"plateNumber" validate:"required"`
	Model       string           `json:"model"`
	Operator    string           `json:"operator"`
	Seats       []CreateSeatSpec `json:"seats" validate:"required,min=1,dive"`
}

type CreateSeatSpec struct {
	Row      string `json:"row" validate:"required"`
	Column   int    `json:"column" validate:"required,min=1"`
	SeatType string `json:"seatType" validate:"required,oneof=STANDARD VIP SLEEPER"`
}

type FilterBusInput struct {
	Pagination
	SearchKey string `query:"searchKey"`
	IsActive  *bool  `query:"isActive"`
}
