package auth

import "github.com/go-playground/validator/v10"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (req *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (req *RefreshTokenRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}
