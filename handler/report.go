package handler

import (
	"bus_booking/booking"
	"bus_booking/constants"
	"bus_booking/database"
	"bus_booking/helper"
	"bus_booking/model"
	"bus_booking/utils"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

type RevenueDay struct {
	Date     string  `json:"date"`
	Bookings int     `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

type TripOccupancy struct {
	TripId     uint    `json:"tripId"`
	PublicCode string  `json:"publicCode"`
	TotalSeats int     `json:"totalSeats"`
	Booked     int     `json:"booked"`
	Locked     int     `json:"locked"`
	Rate       float64 `json:"rate"`
}

// RevenueReport sums paid bookings per day over the requested window
// (default: last 30 days).
func RevenueReport(c *fiber.Ctx) error {
	db := database.DB

	_, isAdmin, isManager, _, _ := helper.GetInfoAccountFromToken(c)
	if !isAdmin && !isManager {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("manager role required"))
	}

	start := time.Now().AddDate(0, 0, -30)
	if s := c.Query("startDate"); s != "" {
		if parsed, err := time.Parse("2006-01-02", s); err == nil {
			start = parsed
		}
	}
	end := time.Now()
	if s := c.Query("endDate"); s != "" {
		if parsed, err := time.Parse("2006-01-02", s); err == nil {
			end = parsed.Add(24 * time.Hour)
		}
	}

	var report []RevenueDay
	db.Model(&model.Booking{}).
		Select("to_char(paid_at, 'YYYY-MM-DD') AS date, COUNT(*) AS bookings, SUM(total_amount) AS revenue").
		Where("status = ? AND paid_at >= ? AND paid_at < ?", model.BookingPaid, start, end).
		Group("to_char(paid_at, 'YYYY-MM-DD')").
		Order("date ASC").
		Scan(&report)

	return utils.SuccessResponse(c, fiber.StatusOK, report)
}

// OccupancyReport reports seat usage per upcoming trip. Locked counts
// only live holds; elapsed locks read as available.
func OccupancyReport(c *fiber.Ctx) error {
	db := database.DB

	_, isAdmin, isManager, isOperator, _ := helper.GetInfoAccountFromToken(c)
	if !isAdmin && !isManager && !isOperator {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("operator role required"))
	}

	var trips []model.Trip
	db.Where("status IN ?", []string{constants.TRIP_SCHEDULED, constants.TRIP_DEPARTED}).
		Order("departure_time ASC").
		Limit(100).
		Find(&trips)

	now := time.Now()
	report := make([]TripOccupancy, 0, len(trips))
	for _, trip := range trips {
		var seats []model.TripSeat
		db.Where("trip_id = ?", trip.ID).Find(&seats)

		occ := TripOccupancy{TripId: trip.ID, PublicCode: trip.PublicCode, TotalSeats: len(seats)}
		for _, s := range seats {
			switch booking.EffectiveStatus(s, now) {
			case model.SeatBooked:
				occ.Booked++
			case model.SeatLocked:
				occ.Locked++
			}
		}
		if occ.TotalSeats > 0 {
			occ.Rate = float64(occ.Booked) / float64(occ.TotalSeats) * 100
		}
		report = append(report, occ)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, report)
}
