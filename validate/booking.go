package validate

import (
	"bus_booking/constants"
	"bus_booking/database"
	"bus_booking/model"
	"bus_booking/utils"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// AcquireSeatLock validates the hold request and confirms the trip is
// still open for sale. Seat-level availability is settled by the lock
// manager, not here.
func AcquireSeatLock(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := c.Params(key)
		valueKey, err := strconv.Atoi(params)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, errors.New("params invalid"))
		}

		var input model.AcquireLockInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Invalid input %s", err.Error()),
			})
		}

		if err := validate.Struct(input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		var trip model.Trip
		if err := database.DB.First(&trip, valueKey).Error; err != nil {
			return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Trip does not exist", err, "tripId")
		}
		if trip.Status != constants.TRIP_SCHEDULED {
			return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Trip is not open for booking", nil, "tripId")
		}

		c.Locals("tripId", uint(valueKey))
		c.Locals("acquireLockInput", input)
		return c.Next()
	}
}

func ReleaseSeatLock(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := c.Params(key)
		valueKey, err := strconv.Atoi(params)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, errors.New("params invalid"))
		}

		var input model.ReleaseLockInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Invalid input %s", err.Error()),
			})
		}

		if err := validate.Struct(input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals("tripId", uint(valueKey))
		c.Locals("releaseLockInput", input)
		return c.Next()
	}
}

func CreateBooking(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := c.Params(key)
		valueKey, err := strconv.Atoi(params)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, errors.New("params invalid"))
		}

		var input model.CreateBookingInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Invalid input %s", err.Error()),
			})
		}

		if err := validate.Struct(input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		var trip model.Trip
		if err := database.DB.First(&trip, valueKey).Error; err != nil {
			return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Trip does not exist", err, "tripId")
		}

		if input.PickupPointId != nil {
			var point model.RoutePoint
			if err := database.DB.Where("id = ? AND route_id = ? AND kind = ?", *input.PickupPointId, trip.RouteId, model.PointPickup).First(&point).Error; err != nil {
				return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Pickup point does not belong to this route", err, "pickupPointId")
			}
		}
		if input.DropoffPointId != nil {
			var point model.RoutePoint
			if err := database.DB.Where("id = ? AND route_id = ? AND kind = ?", *input.DropoffPointId, trip.RouteId, model.PointDropoff).First(&point).Error; err != nil {
				return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Dropoff point does not belong to this route", err, "dropoffPointId")
			}
		}

		c.Locals("tripId", uint(valueKey))
		c.Locals("createBookingInput", input)
		return c.Next()
	}
}

func FilterBookings() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.FilterBookingInput

		if err := c.QueryParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_INPUT, err)
		}

		if err := validate.Struct(input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals("filterBookingInput", input)
		return c.Next()
	}
}
