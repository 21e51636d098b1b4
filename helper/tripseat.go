package helper

import (
	"bus_booking/model"
	"errors"

	"gorm.io/gorm"
)

// CreateTripSeats materializes one TripSeat row per physical seat of the
// assigned bus. Runs inside the trip-creation transaction.
func CreateTripSeats(tx *gorm.DB, tripId uint, busId uint) error {
	var seats []model.Seat

	if err := tx.Where("bus_id = ?", busId).Find(&seats).Error; err != nil {
		return err
	}

	if len(seats) == 0 {
		return errors.New("bus has no seats")
	}

	var tripSeats []model.TripSeat

	for _, seat := range seats {
		tripSeats = append(tripSeats, model.TripSeat{
			TripId:     tripId,
			SeatId:     seat.ID,
			SeatCode:   seat.Code,
			SeatTypeId: seat.SeatTypeId,
			Status:     model.SeatAvailable,
			LockToken:  "",
		})
	}

	return tx.Create(&tripSeats).Error
}
