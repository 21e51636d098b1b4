package helper

import "bus_booking/model"

// SeatPrice is the quoted fare for one seat on a trip. A zero or missing
// modifier falls back to the trip's base price.
func SeatPrice(trip model.Trip, seatType model.SeatType) float64 {
	modifier := seatType.PriceModifier
	if modifier <= 0 {
		modifier = 1
	}
	return trip.Price * modifier
}
