package auth

import (
	"errors"
	"strings"

	"parcel-delivery/apperror"
	userModel "parcel-delivery/models/user"
	userService "parcel-delivery/services/user"
	"parcel-delivery/utils"

	"gorm.io/gorm"
)

// Service issues and renews credentials against the user directory.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// LoginResult bundles the authenticated user with its token pair.
type LoginResult struct {
	User         *userModel.User `json:"user"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

// Login verifies credentials and returns an access/refresh token pair.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(email, password string) (*LoginResult, error) {
	u, err := userService.FindByEmail(s.db, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("Invalid email or password")
		}
		return nil, err
	}

	if u.IsActive != userModel.StatusActive {
		return nil, apperror.Forbidden("Your account is " + strings.ToLower(u.IsActive.String()))
	}

	if !utils.ComparePassword(u.Password, password) {
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	accessToken, err := utils.GenerateAccessToken(u)
	if err != nil {
		return nil, err
	}
	refreshToken, err := utils.GenerateRefreshToken(u)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:         u,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token, re-checking
// the account status so revoked users cannot keep renewing.
func (s *Service) Refresh(refreshToken string) (string, error) {
	claims, err := utils.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", apperror.Unauthorized("Invalid or expired refresh token")
	}

	u, err := userService.FindByEmail(s.db, claims.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperror.NotFound("No user found with this email")
		}
		return "", err
	}

	if u.IsActive != userModel.StatusActive {
		return "", apperror.Forbidden("Sorry, your account is " + u.IsActive.String())
	}

	return utils.GenerateAccessToken(u)
}
