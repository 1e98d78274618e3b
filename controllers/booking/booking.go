package booking

import (
	"fmt"
	"strconv"

	"parcel-delivery/apperror"
	"parcel-delivery/logger"
	"parcel-delivery/middleware"
	bookingService "parcel-delivery/services/booking"
	"parcel-delivery/types"
	bookingTypes "parcel-delivery/types/booking"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// BookingController handles parcel booking HTTP requests.
type BookingController struct {
	DB      *gorm.DB
	Service *bookingService.Service
	Logger  *logger.AsyncLogger
}

// NewBookingController creates a new booking controller.
func NewBookingController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *BookingController {
	return &BookingController{
		DB:      db,
		Service: bookingService.NewService(db),
		Logger:  asyncLogger,
	}
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.BadRequest("Invalid " + param)
	}
	return uint(id), nil
}

// Store books a new parcel and seeds its tracking ledger.
func (bc *BookingController) Store(c *fiber.Ctx) error {
	var req bookingTypes.CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return apperror.FromValidationErrors(err)
	}

	b, err := bc.Service.Create(middleware.GetClaims(c), &req)
	if err != nil {
		return err
	}

	logger.Success(fmt.Sprintf("Booking created: %s", b.TrackingID))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Success: true,
		Message: "Booking created successfully",
		Data:    b,
	})
}

// Update patches a booking's fields.
func (bc *BookingController) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "bookingId")
	if err != nil {
		return err
	}

	var req bookingTypes.UpdateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return apperror.FromValidationErrors(err)
	}

	b, err := bc.Service.Update(middleware.GetClaims(c), id, &req)
	if err != nil {
		return err
	}

	return c.JSON(types.ApiResponse{
		Success: true,
		Message: "Booking updated successfully",
		Data:    b,
	})
}

// AddTrackingEvent appends one event to a booking's ledger.
func (bc *BookingController) AddTrackingEvent(c *fiber.Ctx) error {
	id, err := parseID(c, "bookingId")
	if err != nil {
		return err
	}

	var req bookingTypes.AddTrackingEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return apperror.FromValidationErrors(err)
	}

	b, err := bc.Service.AddTrackingEvent(id, &req)
	if err != nil {
		return err
	}

	logger.Info(fmt.Sprintf("Tracking event %s added to %s", req.Status, b.TrackingID))
	return c.JSON(types.ApiResponse{
		Success: true,
		Message: "Tracking event added successfully",
		Data:    b,
	})
}

// Destroy hard-deletes an unprocessed booking.
func (bc *BookingController) Destroy(c *fiber.Ctx) error {
	id, err := parseID(c, "bookingId")
	if err != nil {
		return err
	}

	if err := bc.Service.Delete(id); err != nil {
		return err
	}

	return c.JSON(types.ApiResponse{
		Success: true,
		Message: "Booking deleted successfully",
		Data:    nil,
	})
}

// Index lists all bookings, newest first.
func (bc *BookingController) Index(c *fiber.Ctx) error {
	page, limit := utils.ParsePagination(c)
	result, err := bc.Service.List(page, limit)
	if err != nil {
		return err
	}

	return c.JSON(types.ApiResponse{
		Success: true,
		Message: "Bookings retrieved successfully",
		Data:    result,
	})
}

// Track is the public, unauthenticated lookup by tracking code.
func (bc *BookingController) Track(c *fiber.Ctx) error {
	trackingID := c.Params("trackingId")
	if trackingID == "" {
		return apperror.BadRequest("Invalid tracking id")
	}

	b, err := bc.Service.GetByTrackingID(trackingID)
	if err != nil {
		return err
	}

	return c.JSON(types.ApiResponse{
		Success: true,
		Message: "Booking retrieved successfully",
		Data:    b,
	})
}

// IndexByUser lists the bookings a user participates in. Non-elevated
// callers may only look at their own list.
func (bc *BookingController) IndexByUser(c *fiber.Ctx) error {
	id, err := parseID(c, "userId")
	if err != nil {
		return err
	}

	claims := middleware.GetClaims(c)
	if !claims.Role.IsElevated() && claims.UserID != id {
		return apperror.Forbidden("You can only view your own bookings")
	}

	page, limit := utils.ParsePagination(c)
	result, err := bc.Service.ListByUser(id, page, limit)
	if err != nil {
		return err
	}

	return c.JSON(types.ApiResponse{
		Success: true,
		Message: "Bookings retrieved successfully",
		Data:    result,
	})
}

// Stats returns the aggregate reporting snapshot.
func (bc *BookingController) Stats(c *fiber.Ctx) error {
	stats, err := bc.Service.GetStats()
	if err != nil {
		return err
	}

	return c.JSON(types.ApiResponse{
		Success: true,
		Message: "Stats retrieved successfully",
		Data:    stats,
	})
}
