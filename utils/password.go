package utils

import (
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plain password with bcrypt. Cost comes from the
// SALT_ROUND env variable, falling back to bcrypt's default.
func HashPassword(password string) (string, error) {
	cost := bcrypt.DefaultCost
	if raw := os.Getenv("SALT_ROUND"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= bcrypt.MinCost && parsed <= bcrypt.MaxCost {
			cost = parsed
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword reports whether the plain password matches the hash.
func ComparePassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
