package user

import "github.com/go-playground/validator/v10"

// CreateUserRequest is the registration payload. Role is optional and limited
// to the self-service roles; elevated roles are never assignable here.
type CreateUserRequest struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=255"`
	LastName  string `json:"lastName" validate:"required,min=1,max=255"`
	Role      string `json:"role" validate:"omitempty,oneof=Sender Receiver Admin SuperAdmin"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=6,max=128"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Address   string `json:"address" validate:"required,min=1"`
}

func (req *CreateUserRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}

// UpdateUserRequest is a partial profile update; nil fields are left as-is.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=255"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=255"`
	Role      *string `json:"role" validate:"omitempty,oneof=Sender Receiver Admin SuperAdmin"`
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	Password  *string `json:"password" validate:"omitempty,min=6,max=128"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	Address   *string `json:"address" validate:"omitempty,min=1"`
	IsActive  *string `json:"isActive" validate:"omitempty,oneof=Active Inactive Blocked Deleted"`
}

func (req *UpdateUserRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}
