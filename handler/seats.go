package handler

import (
	"bus_booking/booking"
	"bus_booking/constants"
	"bus_booking/database"
	"bus_booking/helper"
	"bus_booking/model"
	"bus_booking/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

type SeatUI struct {
	Id          uint       `json:"id"`
	Label       string     `json:"label"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Price       float64    `json:"price"`
	LockedUntil *time.Time `json:"lockedUntil,omitempty"`
}

// buildSeatMap groups a trip's seats by row with lazy-expiry applied:
// a seat whose lock has elapsed is reported available no matter what
// the stored status says.
func buildSeatMap(tripId uint, now time.Time) (map[string][]SeatUI, error) {
	db := database.DB

	var trip model.Trip
	if err := db.First(&trip, tripId).Error; err != nil {
		return nil, err
	}

	var seats []model.TripSeat
	if err := db.
		Preload("Seat").
		Preload("SeatType").
		Where("trip_id = ?", tripId).
		Find(&seats).Error; err != nil {
		return nil, err
	}

	result := make(map[string][]SeatUI)
	for _, s := range seats {
		row := s.Seat.Row
		status := booking.EffectiveStatus(s, now)

		var lockedUntil *time.Time
		if status == model.SeatLocked {
			lockedUntil = s.LockedUntil
		}

		result[row] = append(result[row], SeatUI{
			Id:          s.SeatId,
			Label:       s.SeatCode,
			Type:        s.SeatType.Type,
			Status:      status,
			Price:       helper.SeatPrice(trip, s.SeatType),
			LockedUntil: lockedUntil,
		})
	}

	return result, nil
}

func GetTripSeats(c *fiber.Ctx) error {
	tripId := c.Locals("inputId").(int)

	seatMap, err := buildSeatMap(uint(tripId), time.Now())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND_RECORDS, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, seatMap)
}

func AcquireSeatLock(c *fiber.Ctx) error {
	tripId := c.Locals("tripId").(uint)
	input, ok := c.Locals("acquireLockInput").(model.AcquireLockInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	ttl := booking.DefaultLockTTL
	if input.TtlSeconds > 0 {
		ttl = time.Duration(input.TtlSeconds) * time.Second
	}

	grant, err := Locks.Acquire(c.Context(), tripId, input.SeatIds, ttl)
	if err != nil {
		return coreErrorResponse(c, err)
	}

	PublishTripSeats(tripId)

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"lockToken": grant.Token,
		"tripId":    grant.TripId,
		"seatIds":   grant.SeatIds,
		"expiresAt": grant.ExpiresAt,
	})
}

func GetSeatLock(c *fiber.Ctx) error {
	tripId := c.Locals("inputId").(int)
	token := c.Params("token")

	info, err := Locks.Validate(c.Context(), token, uint(tripId))
	if err != nil {
		return coreErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"lockToken": token,
		"tripId":    info.TripId,
		"seatIds":   info.SeatIds,
		"expiresAt": info.ExpiresAt,
	})
}

func ReleaseSeatLock(c *fiber.Ctx) error {
	tripId := c.Locals("tripId").(uint)
	input, ok := c.Locals("releaseLockInput").(model.ReleaseLockInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	if err := Locks.Release(c.Context(), input.LockToken); err != nil {
		return coreErrorResponse(c, err)
	}

	PublishTripSeats(tripId)

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"released": true})
}

// coreErrorResponse maps locking-core errors onto HTTP statuses. Seat
// conflicts and stale tokens are client errors, not server faults.
func coreErrorResponse(c *fiber.Ctx, err error) error {
	var lockErr *booking.LockError
	if errors.As(err, &lockErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Seat is not available",
			"reason":  lockErr.Reason,
			"seatId":  lockErr.SeatId,
		})
	}

	switch {
	case errors.Is(err, booking.ErrLockInvalid):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Lock token is not valid for this trip",
			"reason":  booking.ReasonLockInvalid,
		})
	case errors.Is(err, booking.ErrLockExpired):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Lock has expired",
			"reason":  booking.ReasonLockExpired,
		})
	case errors.Is(err, booking.ErrLockAlreadyRedeemed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Lock was already redeemed",
			"reason":  booking.ReasonLockAlreadyRedeemed,
		})
	case errors.Is(err, booking.ErrPassengerSeatMismatch):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Passengers do not match the locked seats",
			"reason":  booking.ReasonPassengerSeatMismatch,
		})
	case errors.Is(err, booking.ErrSeatLockLost):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "A locked seat was lost before booking completed",
			"reason":  booking.ReasonSeatLockLost,
		})
	case errors.Is(err, booking.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Booking is not in a state that allows this operation",
		})
	case errors.Is(err, booking.ErrNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND_RECORDS, err)
	}

	return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
}

// PublishTripSeats pushes the current seat map to the trip's Redis
// channel so websocket subscribers repaint immediately.
func PublishTripSeats(tripId uint) {
	seatMap, err := buildSeatMap(tripId, time.Now())
	if err != nil {
		log.Printf("failed to build seat map for trip %d: %v", tripId, err)
		return
	}

	payload, err := json.Marshal(seatMap)
	if err != nil {
		log.Printf("failed to marshal seat map for trip %d: %v", tripId, err)
		return
	}

	if err := redisClient.Publish(context.Background(), fmt.Sprintf("trip:%d", tripId), payload).Err(); err != nil {
		log.Printf("failed to publish seat map for trip %d: %v", tripId, err)
	}
}
