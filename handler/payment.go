package handler

import (
	"bus_booking/constants"
	"bus_booking/database"
	"bus_booking/model"
	"bus_booking/utils"
	"fmt"
	"net/url"
	"os"

	"github.com/gofiber/fiber/v2"
)

// CreatePayment builds a gateway redirect URL for a pending booking.
func CreatePayment(c *fiber.Ctx) error {
	db := database.DB

	bookingId := c.Locals("inputId").(int)

	var pending model.Booking
	if err := db.First(&pending, bookingId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND_RECORDS, err)
	}
	if pending.Status != model.BookingPending {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Booking is not awaiting payment", nil)
	}
	if pending.PaymentMethod != constants.PAYMENT_GATEWAY {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Booking is not a gateway payment", nil)
	}

	gateway := NewGateway()
	req := model.PaymentRequest{
		Amount:    int64(pending.TotalAmount),
		OrderInfo: fmt.Sprintf("Bus booking %s", pending.PublicCode),
		TxnRef:    pending.PublicCode,
		IPAddr:    c.IP(),
	}

	paymentUrl, err := gateway.BuildPaymentUrl(req)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Could not build payment URL", err)
	}

	return c.JSON(fiber.Map{
		"message":    "Payment created",
		"paymentUrl": paymentUrl,
		"txnRef":     pending.PublicCode,
	})
}

// GatewayCallback handles the customer's browser redirect back from the
// provider. Settlement happens in the IPN; this only routes the UX.
func GatewayCallback(c *fiber.Ctx) error {
	gateway := NewGateway()

	query, _ := url.ParseQuery(string(c.Request().URI().QueryString()))

	result := gateway.VerifyReturnUrl(query)
	if result.IsSuccess {
		return c.Redirect(fmt.Sprintf("%s/success?code=%s", os.Getenv("APP_URL"), result.TxnRef))
	}

	return c.Redirect(fmt.Sprintf("%s/payment-failed?reason=%s", os.Getenv("APP_URL"), result.Message))
}

// GatewayIPN is the server-to-server settlement notification. MarkPaid
// is idempotent, so provider retries are harmless.
func GatewayIPN(c *fiber.Ctx) error {
	db := database.DB
	gateway := NewGateway()

	query, _ := url.ParseQuery(string(c.Request().URI().QueryString()))

	result := gateway.VerifyIPN(query)
	if !result.IsSuccess {
		return c.JSON(fiber.Map{"RspCode": "97", "Message": result.Message})
	}

	var pending model.Booking
	if err := db.Where("public_code = ?", result.TxnRef).First(&pending).Error; err != nil {
		return c.JSON(fiber.Map{"RspCode": "01", "Message": "Booking not found"})
	}

	if _, err := Orch.MarkPaid(c.Context(), pending.ID, result.TxnRef); err != nil {
		return c.JSON(fiber.Map{"RspCode": "02", "Message": "Booking not payable"})
	}

	return c.JSON(fiber.Map{"RspCode": "00", "Message": "Confirm success"})
}
