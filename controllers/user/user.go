package user

import (
	"fmt"
	"strconv"

	"parcel-delivery/apperror"
	"parcel-delivery/logger"
	"parcel-delivery/middleware"
	userService "parcel-delivery/services/user"
	"parcel-delivery/types"
	userTypes "parcel-delivery/types/user"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserController handles user-directory HTTP requests.
type UserController struct {
	DB      *gorm.DB
	Service *userService.Service
	Logger  *logger.AsyncLogger
}

// NewUserController creates a new user controller.
func NewUserController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *UserController {
	return &UserController{
		DB:      db,
		Service: userService.NewService(db),
		Logger:  asyncLogger,
	}
}

func parseUserID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("userId"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.BadRequest("Invalid user id")
	}
	return uint(id), nil
}

// Store registers a new account. This is the public registration endpoint.
func (uc *UserController) Store(c *fiber.Ctx) error {
	var req userTypes.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return apperror.FromValidationErrors(err)
	}

	u, err := uc.Service.Create(&req)
	if err != nil {
		return err
	}

	logger.Success(fmt.Sprintf("User registered: %s", u.Email))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Success: true,
		Message: "User created successfully",
		Data:    u,
	})
}

// Index lists every account. Elevated roles only; enforced by the route.
func (uc *UserController) Index(c *fiber.Ctx) error {
	users, err := uc.Service.List()
	if err != nil {
		return err
	}

	return c.JSON(types.ApiResponse{
		Success: true,
		Message: "Users retrieved successfully",
		Data:    users,
	})
}

// Show returns a single account.
func (uc *UserController) Show(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	u, err := uc.Service.Get(id)
	if err != nil {
		return err
	}

	return c.JSON(types.ApiResponse{
		Success: true,
		Message: "User retrieved successfully",
		Data:    u,
	})
}

// Update patches a profile. Ownership rules live in the service.
func (uc *UserController) Update(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	var req userTypes.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return apperror.FromValidationErrors(err)
	}

	u, err := uc.Service.Update(id, &req, middleware.GetClaims(c))
	if err != nil {
		return err
	}

	return c.JSON(types.ApiResponse{
		Success: true,
		Message: "User updated successfully",
		Data:    u,
	})
}

// Destroy soft-deletes an account.
func (uc *UserController) Destroy(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	u, err := uc.Service.Delete(id)
	if err != nil {
		return err
	}

	logger.Info(fmt.Sprintf("User deleted: %s", u.Email))
	return c.JSON(types.ApiResponse{
		Success: true,
		Message: "User deleted successfully",
		Data:    u,
	})
}
