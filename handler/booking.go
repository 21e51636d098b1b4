package handler

import (
	"bus_booking/constants"
	"bus_booking/database"
	"bus_booking/helper"
	"bus_booking/model"
	"bus_booking/utils"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

func CreateBooking(c *fiber.Ctx) error {
	tripId := c.Locals("tripId").(uint)
	input, ok := c.Locals("createBookingInput").(model.CreateBookingInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	// Guest checkout is allowed; the booking binds to a customer only
	// when the request carries a valid token.
	var customerId *uint
	if id, ok := c.Locals("customerId").(uint); ok && id > 0 {
		customerId = &id
	}

	newBooking, err := Orch.CreateBooking(c.Context(), tripId, customerId, input)
	if err != nil {
		return coreErrorResponse(c, err)
	}

	PublishTripSeats(tripId)

	if input.Contact.Email != "" {
		sendBookingConfirmation(newBooking)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, newBooking)
}

func sendBookingConfirmation(b *model.Booking) {
	db := database.DB

	var trip model.Trip
	if err := db.Preload("Route").First(&trip, b.TripId).Error; err != nil {
		log.Printf("failed to load trip %d for confirmation email: %v", b.TripId, err)
		return
	}

	var seatCodes, names []string
	for _, p := range b.Passengers {
		seatCodes = append(seatCodes, p.SeatCode)
		names = append(names, p.FullName)
	}

	qrPNG, err := utils.GenerateQRCode(b.PublicCode, 256)
	if err != nil {
		log.Printf("failed to render boarding QR for %s: %v", b.PublicCode, err)
		qrPNG = nil
	}

	utils.SendBookingConfirmationEmail(b.Email, utils.BookingConfirmationData{
		BookingCode:   b.PublicCode,
		RouteName:     fmt.Sprintf("%s - %s", trip.Route.Origin, trip.Route.Destination),
		DepartureTime: trip.DepartureTime.Format("2006-01-02 15:04"),
		Seats:         strings.Join(seatCodes, ", "),
		Passengers:    strings.Join(names, ", "),
		TotalAmount:   b.TotalAmount,
		PaymentMethod: b.PaymentMethod,
	}, qrPNG)
}

func GetBookingByCode(c *fiber.Ctx) error {
	db := database.DB

	code := c.Params("code")
	var booking model.Booking
	if err := db.
		Preload("Passengers").
		Preload("Trip.Route").
		Preload("Trip.Bus").
		Where("public_code = ?", code).
		First(&booking).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND_RECORDS, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, booking)
}

func GetMyBookings(c *fiber.Ctx) error {
	db := database.DB

	customerInfo, _ := helper.GetInfoCustomerFromToken(c)
	if customerInfo.CustomerId == 0 {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Not signed in", nil)
	}

	var bookings []model.Booking
	db.
		Preload("Passengers").
		Preload("Trip.Route").
		Where("customer_id = ?", customerInfo.CustomerId).
		Order("id DESC").
		Find(&bookings)

	return utils.SuccessResponse(c, fiber.StatusOK, bookings)
}

// CancelBooking cancels a pending booking addressed by its public code.
// The unguessable code is the capability for guest bookings; a booking
// bound to a customer can only be cancelled by that customer. Booked
// seats stay bound to the booking record.
func CancelBooking(c *fiber.Ctx) error {
	db := database.DB

	code := c.Params("code")

	var existing model.Booking
	if err := db.Where("public_code = ?", code).First(&existing).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND_RECORDS, err)
	}

	customerId, _ := c.Locals("customerId").(uint)
	if !canCancelBooking(existing, customerId) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Booking belongs to another customer", nil)
	}

	cancelled, err := Orch.Cancel(c.Context(), existing.ID)
	if err != nil {
		return coreErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, cancelled)
}

func canCancelBooking(b model.Booking, customerId uint) bool {
	if b.CustomerId == nil {
		return true
	}
	return customerId == *b.CustomerId
}

// ConfirmCashPayment settles a counter sale. Ticketing staff only.
func ConfirmCashPayment(c *fiber.Ctx) error {
	bookingId := c.Locals("inputId").(int)

	_, isAdmin, isManager, _, isTicketing := helper.GetInfoAccountFromToken(c)
	if !isAdmin && !isManager && !isTicketing {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("ticketing role required"))
	}

	paymentRef := fmt.Sprintf("CASH-%s", time.Now().Format("20060102150405"))
	paid, err := Orch.MarkPaid(c.Context(), uint(bookingId), paymentRef)
	if err != nil {
		return coreErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, paid)
}

func GetBookings(c *fiber.Ctx) error {
	db := database.DB

	filterInput, ok := c.Locals("filterBookingInput").(model.FilterBookingInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	_, isAdmin, isManager, _, isTicketing := helper.GetInfoAccountFromToken(c)
	if !isAdmin && !isManager && !isTicketing {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("staff role required"))
	}

	condition := db.Model(&model.Booking{})
	if filterInput.TripId > 0 {
		condition = condition.Where("trip_id = ?", filterInput.TripId)
	}
	if filterInput.Status != "" {
		condition = condition.Where("status = ?", filterInput.Status)
	}
	if filterInput.StartDate != "" {
		if start, err := time.Parse("2006-01-02", filterInput.StartDate); err == nil {
			condition = condition.Where("created_at >= ?", start)
		}
	}
	if filterInput.EndDate != "" {
		if end, err := time.Parse("2006-01-02", filterInput.EndDate); err == nil {
			condition = condition.Where("created_at < ?", end.Add(24*time.Hour))
		}
	}

	var totalCount int64
	condition.Count(&totalCount)

	condition = utils.ApplyPagination(condition, filterInput.Limit, filterInput.Page)

	var bookings []model.Booking
	condition.
		Preload("Passengers").
		Preload("Trip.Route").
		Order("id DESC").
		Find(&bookings)

	response := &model.ResponseCustom{
		Rows:       bookings,
		Limit:      filterInput.Limit,
		Page:       filterInput.Page,
		TotalCount: totalCount,
	}
	return utils.SuccessResponse(c, fiber.StatusOK, response)
}
