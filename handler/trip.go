package handler

import (
	"bus_booking/constants"
	"bus_booking/database"
	"bus_booking/helper"
	"bus_booking/model"
	"bus_booking/utils"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func CreateTrip(c *fiber.Ctx) error {
	db := database.DB

	tripInput, ok := c.Locals("createTripInput").(model.CreateTripInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	newTrip := model.Trip{
		PublicCode:    "TRP-" + strings.ToUpper(uuid.New().String()[:8]),
		RouteId:       tripInput.RouteId,
		BusId:         tripInput.BusId,
		DepartureTime: tripInput.DepartureTime,
		ArrivalTime:   tripInput.ArrivalTime,
		Price:         tripInput.Price,
		Status:        constants.TRIP_SCHEDULED,
	}

	tx := db.Begin()

	if err := tx.Create(&newTrip).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_CREATE, err)
	}

	// Seat inventory is materialized with the trip so selling can start
	// immediately.
	if err := helper.CreateTripSeats(tx, newTrip.ID, newTrip.BusId); err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Could not create trip seats", err)
	}

	tx.Commit()

	db.Preload("Route").Preload("Bus").First(&newTrip, newTrip.ID)
	return utils.SuccessResponse(c, fiber.StatusOK, newTrip)
}

func GetTrips(c *fiber.Ctx) error {
	db := database.DB

	filterInput, ok := c.Locals("filterTripInput").(model.FilterTripInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	condition := db.Model(&model.Trip{}).Joins("JOIN routes ON routes.id = trips.route_id")
	if filterInput.RouteId > 0 {
		condition = condition.Where("trips.route_id = ?", filterInput.RouteId)
	}
	if filterInput.BusId > 0 {
		condition = condition.Where("trips.bus_id = ?", filterInput.BusId)
	}
	if filterInput.Origin != "" {
		condition = condition.Where("LOWER(routes.origin) LIKE ?", "%"+strings.ToLower(filterInput.Origin)+"%")
	}
	if filterInput.Dest != "" {
		condition = condition.Where("LOWER(routes.destination) LIKE ?", "%"+strings.ToLower(filterInput.Dest)+"%")
	}
	if filterInput.Date != "" {
		day, err := time.Parse("2006-01-02", filterInput.Date)
		if err != nil {
			return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Date must be YYYY-MM-DD", err, "date")
		}
		condition = condition.Where("trips.departure_time >= ? AND trips.departure_time < ?", day, day.Add(24*time.Hour))
	}
	if filterInput.Status != "" {
		condition = condition.Where("trips.status = ?", filterInput.Status)
	}

	var totalCount int64
	condition.Count(&totalCount)

	condition = utils.ApplyPagination(condition, filterInput.Limit, filterInput.Page)

	var trips []model.Trip
	condition.Preload("Route").Preload("Bus").Order("trips.departure_time ASC").Find(&trips)

	response := &model.ResponseCustom{
		Rows:       trips,
		Limit:      filterInput.Limit,
		Page:       filterInput.Page,
		TotalCount: totalCount,
	}
	return utils.SuccessResponse(c, fiber.StatusOK, response)
}

func GetTripById(c *fiber.Ctx) error {
	db := database.DB

	tripId := c.Locals("inputId").(int)
	var trip model.Trip
	if err := db.Preload("Route.Points").Preload("Bus").First(&trip, tripId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND_RECORDS, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, trip)
}

func UpdateTrip(c *fiber.Ctx) error {
	db := database.DB

	tripId := c.Locals("tripId").(uint)
	tripInput, ok := c.Locals("updateTripInput").(model.UpdateTripInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	var trip model.Trip
	if err := db.First(&trip, tripId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND_RECORDS, err)
	}

	if trip.Status == constants.TRIP_COMPLETED || trip.Status == constants.TRIP_CANCELLED {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Trip is already closed", nil)
	}

	if tripInput.DepartureTime != nil {
		trip.DepartureTime = *tripInput.DepartureTime
	}
	if tripInput.ArrivalTime != nil {
		trip.ArrivalTime = *tripInput.ArrivalTime
	}
	if tripInput.Price != nil {
		trip.Price = *tripInput.Price
	}
	if tripInput.Status != nil {
		trip.Status = *tripInput.Status
	}

	if err := db.Save(&trip).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, trip)
}
