package model

type Route struct {
	DTO
	Origin      string       `gorm:"not null" validate:"required" json:"origin"`
	Destination string       `gorm:"not null" validate:"required" json:"destination"`
	Slug        string       `gorm:"uniqueIndex;size:120" json:"slug"` // e.g. "ha-noi-da-nang"
	DistanceKm  float64      `json:"distanceKm"`
	DurationMin int          `json:"durationMin"`
	IsActive    bool         `gorm:"default:true" json:"isActive"`
	Points      []RoutePoint `gorm:"foreignKey:RouteId" json:"points,omitempty"`
}

// RoutePoint is a pickup or dropoff stop along a route.
type RoutePoint struct {
	DTO
	RouteId   uint    `gorm:"index" json:"routeId"`
	Name      string  `gorm:"not null" validate:"required" json:"name"`
	Address   string  `json:"address"`
	Kind      string  `gorm:"size:10;not null" json:"kind"` // PICKUP, DROPOFF
	OffsetMin int     `json:"offsetMin"`                    // minutes from departure
	Route     Route   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

const (
	PointPickup  = "PICKUP"
	PointDropoff = "DROPOFF"
)

type CreateRouteInput struct {
	Origin      string                  `json:"origin" validate:"required"`
	Destination string                  `json:"destination" validate:"required"`
	DistanceKm  float64                 `json:"distanceKm"`
	DurationMin int                     `json:"durationMin"`
	Points      []CreateRoutePointSpec  `json:"points" validate:"omitempty,dive"`
}

type CreateRoutePointSpec struct {
	Name      string `json:"name" validate:"required"`
	Address   string `json:"address"`
	Kind      string `json:"kind" validate:"required,oneof=PICKUP DROPOFF"`
	OffsetMin int    `json:"offsetMin"`
}

type FilterRouteInput struct {
	Pagination
	SearchKey string `query:"searchKey"`
	IsActive  *bool  `query:"isActive"`
}
