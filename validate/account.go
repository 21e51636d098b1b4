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

func CreateAccount() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreateAccountInput

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

		if !utils.IsValidValueOfConstant(input.Role, constants.ROLES) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_INPUT, fmt.Errorf("unknown role %s", input.Role))
		}

		_, isAdmin, _, _, _ := helper.GetInfoAccountFromToken(c)
		if !isAdmin {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("admin role required"))
		}

		c.Locals("createAccountInput", input)
		return c.Next()
	}
}

func FilterAccounts() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.FilterAccount

		if err := c.QueryParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_INPUT, err)
		}

		_, isAdmin, _, _, _ := helper.GetInfoAccountFromToken(c)
		if !isAdmin {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("admin role required"))
		}

		c.Locals("filterAccountInput", input)
		return c.Next()
	}
}
