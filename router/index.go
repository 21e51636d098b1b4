package router

import (
	"bus_booking/handler"
	"bus_booking/middleware"
	"bus_booking/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App) {
	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1", logger.New())

	auth := v1.Group("/auth")
	auth.Post("/login", handler.Login)
	auth.Post("/refresh-token", handler.RefreshToken)
	auth.Post("/logout", handler.Logout)

	account := v1.Group("/account", logger.New())
	account.Get("/", middleware.Protected(), validate.FilterAccounts(), handler.GetAccounts)
	account.Post("/", middleware.Protected(), validate.CreateAccount(), handler.CreateAccount)
	account.Patch("/:accountId/active", middleware.Protected(), validate.GetById("accountId"), handler.ToggleAccountActive)
	account.Delete("/", middleware.Protected(), validate.Delete(), handler.DeleteAccounts)

	bus := v1.Group("/bus", logger.New())
	bus.Get("/", middleware.Protected(), validate.FilterBuses(), handler.GetBuses)
	bus.Get("/:busId", middleware.Protected(), validate.GetById("busId"), handler.GetBusById)
	bus.Post("/", middleware.Protected(), validate.CreateBus(), handler.CreateBus)
	bus.Post("/:busId/image", middleware.Protected(), validate.GetById("busId"), handler.UploadBusImage)
	bus.Delete("/", middleware.Protected(), validate.Delete(), handler.DeleteBuses)

	route := v1.Group("/route", logger.New())
	route.Get("/", validate.FilterRoutes(), handler.GetRoutes)
	route.Get("/:slug", handler.GetRouteBySlug)
	route.Post("/", middleware.Protected(), validate.CreateRoute(), handler.CreateRoute)
	route.Delete("/", middleware.Protected(), validate.Delete(), handler.DeleteRoutes)

	trip := v1.Group("/trip", logger.New())
	trip.Get("/", validate.FilterTrips(), handler.GetTrips)
	trip.Get("/:tripId", validate.GetById("tripId"), handler.GetTripById)
	trip.Post("/", middleware.Protected(), validate.CreateTrip(), handler.CreateTrip)
	trip.Put("/:tripId", middleware.Protected(), validate.EditTrip("tripId"), handler.UpdateTrip)

	// Seat map, holds and checkout. Guests may hold and book; a valid
	// customer token binds the booking to the account.
	trip.Get("/:tripId/seats", validate.GetById("tripId"), handler.GetTripSeats)
	trip.Post("/:tripId/seats/lock", middleware.OptionalJWT(), middleware.OptionalAuth(), validate.AcquireSeatLock("tripId"), handler.AcquireSeatLock)
	trip.Get("/:tripId/seats/lock/:token", validate.GetById("tripId"), handler.GetSeatLock)
	trip.Post("/:tripId/seats/release", middleware.OptionalJWT(), middleware.OptionalAuth(), validate.ReleaseSeatLock("tripId"), handler.ReleaseSeatLock)
	trip.Post("/:tripId/booking", middleware.OptionalJWT(), middleware.OptionalAuth(), validate.CreateBooking("tripId"), handler.CreateBooking)

	trip.Get("/:id/seats/live", websocket.New(handler.TripSeatWebsocket))

	booking := v1.Group("/booking", logger.New())
	booking.Get("/", middleware.Protected(), validate.FilterBookings(), handler.GetBookings)
	booking.Get("/my", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.GetMyBookings)
	booking.Get("/:code", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.GetBookingByCode)
	booking.Post("/:code/cancel", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.CancelBooking)
	booking.Post("/:bookingId/cash", middleware.Protected(), validate.GetById("bookingId"), handler.ConfirmCashPayment)
	booking.Post("/:bookingId/payment", middleware.OptionalJWT(), middleware.OptionalAuth(), validate.GetById("bookingId"), handler.CreatePayment)

	report := v1.Group("/report", logger.New())
	report.Get("/revenue", middleware.Protected(), handler.RevenueReport)
	report.Get("/occupancy", middleware.Protected(), handler.OccupancyReport)

	customer := v1.Group("/customer", logger.New())
	customer.Post("/register", validate.RegisterCustomer(), handler.RegisterCustomer)
	customer.Post("/login", handler.CustomerLogin)
	customer.Get("/me", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.GetCurrentCustomer)
	customer.Put("/me", middleware.OptionalJWT(), middleware.OptionalAuth(), validate.EditCustomer(), handler.EditCustomer)
	customer.Post("/change-password", middleware.OptionalJWT(), middleware.OptionalAuth(), validate.ChangePassword(), handler.ChangePasswordCustomer)
	customer.Post("/forgot-password", validate.ForgotPassword(), handler.ForgotPassword)
	customer.Post("/reset-password", validate.ResetPassword(), handler.ResetPassword)

	// Gateway redirect and server-to-server settlement.
	app.Get("/payment/return", handler.GatewayCallback)
	app.Post("/payment/ipn", handler.GatewayIPN)
}
