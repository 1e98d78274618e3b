package middleware

import (
	"errors"
	"strings"

	"parcel-delivery/apperror"
	userModel "parcel-delivery/models/user"
	userService "parcel-delivery/services/user"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ClaimsKey is the c.Locals key under which CheckAuth stores the verified
// token claims.
const ClaimsKey = "claims"

// CheckAuth verifies the bearer token, re-checks the account against the
// database and enforces the role allow-list. An empty allow-list admits any
// valid role.
func CheckAuth(db *gorm.DB, allowedRoles ...userModel.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			return apperror.Unauthorized("No token provided")
		}

		claims, err := utils.VerifyAccessToken(tokenString)
		if err != nil {
			return apperror.Unauthorized("Invalid or expired token")
		}

		// Tokens outlive account changes, so the account is re-checked on
		// every request.
		u, err := userService.FindByID(db, claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Unauthorized("User no longer exists")
			}
			return err
		}

		switch u.IsActive {
		case userModel.StatusActive:
		case userModel.StatusDeleted:
			return apperror.Unauthorized("User no longer exists")
		default:
			return apperror.Forbidden("Your account is " + strings.ToLower(u.IsActive.String()))
		}

		if len(allowedRoles) > 0 {
			allowed := false
			for _, role := range allowedRoles {
				if u.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				return apperror.Forbidden("You are not permitted to access this resource")
			}
		}

		claims.Role = u.Role
		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// GetClaims returns the claims CheckAuth stored on the request context.
func GetClaims(c *fiber.Ctx) *utils.TokenClaims {
	claims, _ := c.Locals(ClaimsKey).(*utils.TokenClaims)
	return claims
}

func extractToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Cookies("access")
}
