package validate

import (
	"bus_booking/constants"
	"bus_booking/helper"
	"bus_booking/model"
	"bus_booking/utils"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

func CreateRoute() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreateRouteInput

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

		c.Locals("createRouteInput", input)
		return c.Next()
	}
}

func FilterRoutes() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.FilterRouteInput

		if err := c.QueryParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_INPUT, err)
		}

		c.Locals("filterRouteInput", input)
		return c.Next()
	}
}
