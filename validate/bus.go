package validate

import (
	"bus_booking/constants"
	"bus_booking/database"
	"bus_booking/helper"
	"bus_booking/model"
	"bus_booking/utils"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

func CreateBus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreateBusInput

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

		_, isAdmin, isManager, _, _ := helper.GetInfoAccountFromToken(c)
		if !isAdmin && !isManager {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("manager role required"))
		}

		var count int64
		database.DB.Model(&model.Bus{}).Where("plate_number = ?", input.PlateNumber).Count(&count)
		if count > 0 {
			return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Plate number already registered", nil, "plateNumber")
		}

		// Seat layout must not repeat a position.
		seen := map[string]bool{}
		for _, s := range input.Seats {
			key := fmt.Sprintf("%s%d", s.Row, s.Column)
			if seen[key] {
				return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Duplicate seat position "+key, nil, "seats")
			}
			seen[key] = true
		}

		c.Locals("createBusInput", input)
		return c.Next()
	}
}

func FilterBuses() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.FilterBusInput

		if err := c.QueryParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_INPUT, err)
		}

		c.Locals("filterBusInput", input)
		return c.Next()
	}
}
