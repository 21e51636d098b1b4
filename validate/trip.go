package validate

import (
	"bus_booking/constants"
	"bus_booking/database"
	"bus_booking/helper"
	"bus_booking/model"
	"bus_booking/utils"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func CreateTrip() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreateTripInput

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

		_, isAdmin, isManager, isOperator, _ := helper.GetInfoAccountFromToken(c)
		if !isAdmin && !isManager && !isOperator {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("operator role required"))
		}

		var route model.Route
		if err := database.DB.First(&route, input.RouteId).Error; err != nil {
			return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Route does not exist", err, "routeId")
		}

		var bus model.Bus
		if err := database.DB.First(&bus, input.BusId).Error; err != nil {
			return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Bus does not exist", err, "busId")
		}
		if !bus.IsActive {
			return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Bus is not in service", nil, "busId")
		}

		// One bus cannot run two overlapping trips.
		var overlapping int64
		database.DB.Model(&model.Trip{}).
			Where("bus_id = ? AND status IN ? AND departure_time < ? AND arrival_time > ?",
				input.BusId,
				[]string{constants.TRIP_SCHEDULED, constants.TRIP_DEPARTED},
				input.ArrivalTime, input.DepartureTime).
			Count(&overlapping)
		if overlapping > 0 {
			return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Bus already has a trip in this window", nil, "busId")
		}

		c.Locals("createTripInput", input)
		return c.Next()
	}
}

func EditTrip(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := c.Params(key)
		valueKey, err := strconv.Atoi(params)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, errors.New("params invalid"))
		}

		var input model.UpdateTripInput
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

		_, isAdmin, isManager, isOperator, _ := helper.GetInfoAccountFromToken(c)
		if !isAdmin && !isManager && !isOperator {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("operator role required"))
		}

		var trip model.Trip
		if err := database.DB.First(&trip, valueKey).Error; err != nil {
			return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Trip does not exist", err, "tripId")
		}

		c.Locals("tripId", uint(valueKey))
		c.Locals("updateTripInput", input)
		return c.Next()
	}
}

func FilterTrips() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.FilterTripInput

		if err := c.QueryParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_INPUT, err)
		}

		if err := validate.Struct(input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		if input.Limit == nil {
			input.Limit = utils.Ptr(20)
		}
		if input.Page == nil {
			input.Page = utils.Ptr(1)
		}

		c.Locals("filterTripInput", input)
		return c.Next()
	}
}
