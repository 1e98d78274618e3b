package routes

import (
	authController "parcel-delivery/controllers/auth"
	bookingController "parcel-delivery/controllers/booking"
	userController "parcel-delivery/controllers/user"
	"parcel-delivery/logger"
	"parcel-delivery/middleware"
	userModel "parcel-delivery/models/user"
	"parcel-delivery/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	asyncLogger := logger.NewAsyncLogger(db)
	auth := authController.NewAuthController(db, asyncLogger)
	users := userController.NewUserController(db, asyncLogger)
	bookings := bookingController.NewBookingController(db, asyncLogger)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	// Index route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(types.ApiResponse{
			Success: true,
			Message: "Parcel delivery API is running",
			Data:    nil,
		})
	})

	api := app.Group("/api/v1", middleware.RequestLogger(asyncLogger))

	/*=============================================================================
	| Auth Routes
	===============================================================================*/
	authGroup := api.Group("/auth")
	authGroup.Post("/login", auth.Login)
	authGroup.Post("/refresh-token", auth.Refresh)
	authGroup.Post("/logout", middleware.CheckAuth(db), auth.Logout)

	/*=============================================================================
	| User Routes
	===============================================================================*/
	userGroup := api.Group("/user")
	userGroup.Post("/create-user", users.Store)
	userGroup.Get("/", middleware.CheckAuth(db,
		userModel.RoleAdmin, userModel.RoleSuperAdmin,
	), users.Index)
	userGroup.Get("/:userId", middleware.CheckAuth(db), users.Show)
	userGroup.Patch("/:userId", middleware.CheckAuth(db), users.Update)
	userGroup.Delete("/:userId", middleware.CheckAuth(db,
		userModel.RoleAdmin, userModel.RoleSuperAdmin,
	), users.Destroy)

	/*=============================================================================
	| Booking Routes
	===============================================================================*/
	bookingGroup := api.Group("/booking")

	// Public parcel tracking: no token required.
	bookingGroup.Get("/tracking/:trackingId", bookings.Track)

	bookingGroup.Post("/create-booking", middleware.CheckAuth(db), bookings.Store)
	bookingGroup.Patch("/update/:bookingId", middleware.CheckAuth(db), bookings.Update)

	bookingGroup.Post("/:bookingId/tracking", middleware.CheckAuth(db,
		userModel.RoleAdmin, userModel.RoleSuperAdmin,
	), bookings.AddTrackingEvent)

	bookingGroup.Delete("/:bookingId", middleware.CheckAuth(db,
		userModel.RoleSuperAdmin,
	), bookings.Destroy)

	bookingGroup.Get("/stats", middleware.CheckAuth(db,
		userModel.RoleAdmin, userModel.RoleSuperAdmin,
	), bookings.Stats)
	bookingGroup.Get("/all-bookings", middleware.CheckAuth(db,
		userModel.RoleAdmin, userModel.RoleSuperAdmin,
	), bookings.Index)

	bookingGroup.Get("/user/:userId", middleware.CheckAuth(db), bookings.IndexByUser)
}
