package handler

import (
	"bus_booking/constants"
	"bus_booking/database"
	"bus_booking/helper"
	"bus_booking/model"
	"bus_booking/utils"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func CreateRoute(c *fiber.Ctx) error {
	db := database.DB

	routeInput, ok := c.Locals("createRouteInput").(model.CreateRouteInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	tx := db.Begin()

	newRoute := model.Route{
		Origin:      routeInput.Origin,
		Destination: routeInput.Destination,
		DistanceKm:  routeInput.DistanceKm,
		DurationMin: routeInput.DurationMin,
		IsActive:    true,
	}
	newRoute.Slug = helper.GenerateUniqueRouteSlug(tx, routeInput.Origin, routeInput.Destination)

	if err := tx.Create(&newRoute).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_CREATE, err)
	}

	for _, spec := range routeInput.Points {
		point := model.RoutePoint{
			RouteId:   newRoute.ID,
			Name:      spec.Name,
			Address:   spec.Address,
			Kind:      spec.Kind,
			OffsetMin: spec.OffsetMin,
		}
		if err := tx.Create(&point).Error; err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_CREATE, err)
		}
	}

	tx.Commit()

	db.Preload("Points").First(&newRoute, newRoute.ID)
	return utils.SuccessResponse(c, fiber.StatusOK, newRoute)
}

func GetRoutes(c *fiber.Ctx) error {
	db := database.DB

	filterInput, ok := c.Locals("filterRouteInput").(model.FilterRouteInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	condition := db.Model(&model.Route{})
	if filterInput.SearchKey != "" {
		key := "%" + strings.ToLower(filterInput.SearchKey) + "%"
		condition = condition.Where("LOWER(origin) LIKE ? OR LOWER(destination) LIKE ?", key, key)
	}
	if filterInput.IsActive != nil {
		condition = condition.Where("is_active = ?", filterInput.IsActive)
	}

	var totalCount int64
	condition.Count(&totalCount)

	condition = utils.ApplyPagination(condition, filterInput.Limit, filterInput.Page)

	var routes []model.Route
	condition.Preload("Points").Order("id ASC").Find(&routes)

	response := &model.ResponseCustom{
		Rows:       routes,
		Limit:      filterInput.Limit,
		Page:       filterInput.Page,
		TotalCount: totalCount,
	}
	return utils.SuccessResponse(c, fiber.StatusOK, response)
}

func GetRouteBySlug(c *fiber.Ctx) error {
	db := database.DB

	slug := c.Params("slug")
	var route model.Route
	if err := db.Preload("Points").Where("slug = ?", slug).First(&route).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND_RECORDS, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, route)
}

func DeleteRoutes(c *fiber.Ctx) error {
	db := database.DB

	deleteInput, ok := c.Locals("deleteIds").(model.ArrayId)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	_, isAdmin, isManager, _, _ := helper.GetInfoAccountFromToken(c)
	if !isAdmin && !isManager {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("manager role required"))
	}

	var tripCount int64
	db.Model(&model.Trip{}).
		Where("route_id IN ? AND status IN ?", deleteInput.IDs, []string{constants.TRIP_SCHEDULED, constants.TRIP_DEPARTED}).
		Count(&tripCount)
	if tripCount > 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Route still has scheduled trips", nil)
	}

	if err := db.Delete(&model.Route{}, deleteInput.IDs).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_DELETE, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"deleted": deleteInput.IDs})
}
