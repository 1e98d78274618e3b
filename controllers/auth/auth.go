package auth

import (
	"fmt"
	"os"
	"time"

	"parcel-delivery/apperror"
	"parcel-delivery/logger"
	authService "parcel-delivery/services/auth"
	"parcel-delivery/types"
	authTypes "parcel-delivery/types/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthController handles login, token refresh and logout.
type AuthController struct {
	DB      *gorm.DB
	Service *authService.Service
	Logger  *logger.AsyncLogger
}

// NewAuthController creates a new auth controller.
func NewAuthController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *AuthController {
	return &AuthController{
		DB:      db,
		Service: authService.NewService(db),
		Logger:  asyncLogger,
	}
}

func cookieSecure() bool {
	return os.Getenv("APP_ENV") == "production"
}

// Login verifies credentials and sets the token pair as httpOnly cookies in
// addition to returning them in the body.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req authTypes.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return apperror.FromValidationErrors(err)
	}

	result, err := ac.Service.Login(req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access",
		Value:    result.AccessToken,
		HTTPOnly: true,
		Secure:   cookieSecure(),
		SameSite: "Lax",
		Expires:  time.Now().Add(24 * time.Hour),
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh",
		Value:    result.RefreshToken,
		HTTPOnly: true,
		Secure:   cookieSecure(),
		SameSite: "Lax",
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})

	logger.Success(fmt.Sprintf("User logged in: %s", result.User.Email))
	return c.JSON(types.ApiResponse{
		Success: true,
		Message: "Logged in successfully",
		Data:    result,
	})
}

// Refresh exchanges a refresh token for a fresh access token. The token is
// read from the body, falling back to the refresh cookie.
func (ac *AuthController) Refresh(c *fiber.Ctx) error {
	var req authTypes.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperror.BadRequest("Invalid request body")
	}
	if req.RefreshToken == "" {
		req.RefreshToken = c.Cookies("refresh")
	}
	if req.RefreshToken == "" {
		return apperror.Unauthorized("No refresh token provided")
	}

	accessToken, err := ac.Service.Refresh(req.RefreshToken)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access",
		Value:    accessToken,
		HTTPOnly: true,
		Secure:   cookieSecure(),
		SameSite: "Lax",
		Expires:  time.Now().Add(24 * time.Hour),
	})

	return c.JSON(types.ApiResponse{
		Success: true,
		Message: "New access token retrieved successfully",
		Data:    fiber.Map{"accessToken": accessToken},
	})
}

// Logout clears the auth cookies. Tokens themselves stay valid until expiry.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	for _, name := range []string{"access", "refresh"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			HTTPOnly: true,
			Secure:   cookieSecure(),
			SameSite: "Lax",
			Expires:  time.Now().Add(-time.Hour),
		})
	}

	return c.JSON(types.ApiResponse{
		Success: true,
		Message: "Logged out successfully",
		Data:    nil,
	})
}
