package handler

import (
	"bus_booking/constants"
	"bus_booking/database"
	"bus_booking/helper"
	"bus_booking/model"
	"bus_booking/utils"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
)

func CreateBus(c *fiber.Ctx) error {
	db := database.DB

	busInput, ok := c.Locals("createBusInput").(model.CreateBusInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	var seatTypes []model.SeatType
	if err := db.Find(&seatTypes).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	typeByName := map[string]uint{}
	for _, st := range seatTypes {
		typeByName[st.Type] = st.ID
	}

	tx := db.Begin()

	newBus := model.Bus{
		PlateNumber: busInput.PlateNumber,
		Model:       busInput.Model,
		Operator:    busInput.Operator,
		IsActive:    true,
	}
	if err := tx.Create(&newBus).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_CREATE, err)
	}

	var seats []model.Seat
	for _, spec := range busInput.Seats {
		seats = append(seats, model.Seat{
			BusId:      newBus.ID,
			Code:       fmt.Sprintf("%s%d", spec.Row, spec.Column),
			Row:        spec.Row,
			Column:     spec.Column,
			SeatTypeId: typeByName[spec.SeatType],
		})
	}
	if err := tx.Create(&seats).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_CREATE, err)
	}

	tx.Commit()

	newBus.Seats = seats
	return utils.SuccessResponse(c, fiber.StatusOK, newBus)
}

func GetBuses(c *fiber.Ctx) error {
	db := database.DB

	filterInput, ok := c.Locals("filterBusInput").(model.FilterBusInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	condition := db.Model(&model.Bus{})
	if filterInput.SearchKey != "" {
		key := "%" + strings.ToLower(filterInput.SearchKey) + "%"
		condition = condition.Where("LOWER(plate_number) LIKE ? OR LOWER(operator) LIKE ?", key, key)
	}
	if filterInput.IsActive != nil {
		condition = condition.Where("is_active = ?", filterInput.IsActive)
	}

	var totalCount int64
	condition.Count(&totalCount)

	condition = utils.ApplyPagination(condition, filterInput.Limit, filterInput.Page)

	var buses []model.Bus
	condition.Preload("Seats.SeatType").Order("id ASC").Find(&buses)

	response := &model.ResponseCustom{
		Rows:       buses,
		Limit:      filterInput.Limit,
		Page:       filterInput.Page,
		TotalCount: totalCount,
	}
	return utils.SuccessResponse(c, fiber.StatusOK, response)
}

func GetBusById(c *fiber.Ctx) error {
	db := database.DB

	busId := c.Locals("inputId").(int)
	var bus model.Bus
	if err := db.Preload("Seats.SeatType").First(&bus, busId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND_RECORDS, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, bus)
}

// UploadBusImage replaces the bus photo on Cloudinary. The previous
// asset is destroyed after a successful upload.
func UploadBusImage(c *fiber.Ctx) error {
	db := database.DB

	busId := c.Locals("inputId").(int)
	var bus model.Bus
	if err := db.First(&bus, busId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND_RECORDS, err)
	}

	_, isAdmin, isManager, _, _ := helper.GetInfoAccountFromToken(c)
	if !isAdmin && !isManager {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("manager role required"))
	}

	file, err := c.FormFile("image")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Missing image file", err)
	}

	f, err := file.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Cannot open file", err)
	}
	defer f.Close()

	cld := helper.InitCloudinary()
	publicID := fmt.Sprintf("bus_%d_%d", bus.ID, time.Now().UnixNano())
	uploadResult, err := cld.Upload.Upload(c.Context(), f, uploader.UploadParams{
		Folder:       "buses",
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Cloudinary upload failed", err)
	}

	oldUrl := bus.ImageUrl
	bus.ImageUrl = utils.StringPtr(uploadResult.SecureURL)
	if err := db.Save(&bus).Error; err != nil {
		cld.Upload.Destroy(context.Background(), uploader.DestroyParams{PublicID: uploadResult.PublicID})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
	}

	if oldUrl != nil {
		if oldID := helper.ExtractPublicID(*oldUrl); oldID != "" {
			cld.Upload.Destroy(context.Background(), uploader.DestroyParams{PublicID: oldID})
		}
	}

	return utils.SuccessResponse(c, fiber.StatusOK, bus)
}

func DeleteBuses(c *fiber.Ctx) error {
	db := database.DB

	deleteInput, ok := c.Locals("deleteIds").(model.ArrayId)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	_, isAdmin, isManager, _, _ := helper.GetInfoAccountFromToken(c)
	if !isAdmin && !isManager {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("manager role required"))
	}

	// A bus with scheduled trips cannot be removed.
	var tripCount int64
	db.Model(&model.Trip{}).
		Where("bus_id IN ? AND status IN ?", deleteInput.IDs, []string{constants.TRIP_SCHEDULED, constants.TRIP_DEPARTED}).
		Count(&tripCount)
	if tripCount > 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Bus still has scheduled trips", nil)
	}

	if err := db.Delete(&model.Bus{}, deleteInput.IDs).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_DELETE, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"deleted": deleteInput.IDs})
}
