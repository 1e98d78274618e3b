package utils

import (
	"fmt"
	"os"
	"time"

	"parcel-delivery/models/user"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultAccessExpiry  = 15 * time.Minute
	defaultRefreshExpiry = 7 * 24 * time.Hour
)

// TokenClaims is the payload carried by both access and refresh tokens.
type TokenClaims struct {
	UserID uint      `json:"userId"`
	Email  string    `json:"email"`
	Role   user.Role `json:"role"`
	jwt.RegisteredClaims
}

func tokenExpiry(envKey string, fallback time.Duration) time.Duration {
	raw := os.Getenv(envKey)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func signToken(u *user.User, secret string, expiry time.Duration) (string, error) {
	claims := TokenClaims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Uuid,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateAccessToken issues a short-lived HS256 access token.
func GenerateAccessToken(u *user.User) (string, error) {
	secret := os.Getenv("JWT_ACCESS_SECRET")
	if secret == "" {
		return "", fmt.Errorf("JWT_ACCESS_SECRET is not set")
	}
	return signToken(u, secret, tokenExpiry("JWT_ACCESS_EXPIRY", defaultAccessExpiry))
}

// GenerateRefreshToken issues a long-lived HS256 refresh token.
func GenerateRefreshToken(u *user.User) (string, error) {
	secret := os.Getenv("JWT_REFRESH_SECRET")
	if secret == "" {
		return "", fmt.Errorf("JWT_REFRESH_SECRET is not set")
	}
	return signToken(u, secret, tokenExpiry("JWT_REFRESH_EXPIRY", defaultRefreshExpiry))
}

func verifyToken(tokenString, secret string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// VerifyAccessToken validates an access token and returns its claims.
func VerifyAccessToken(tokenString string) (*TokenClaims, error) {
	return verifyToken(tokenString, os.Getenv("JWT_ACCESS_SECRET"))
}

// VerifyRefreshToken validates a refresh token and returns its claims.
func VerifyRefreshToken(tokenString string) (*TokenClaims, error) {
	return verifyToken(tokenString, os.Getenv("JWT_REFRESH_SECRET"))
}
