package user

import (
	"errors"

	"parcel-delivery/apperror"
	"parcel-delivery/database"
	userModel "parcel-delivery/models/user"
	userTypes "parcel-delivery/types/user"
	"parcel-delivery/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the user directory: account CRUD plus the membership maintainer
// used by the booking lifecycle.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// FindByID looks a user up by primary key. Absence surfaces as
// gorm.ErrRecordNotFound so callers can choose their own domain error.
func FindByID(db *gorm.DB, id uint) (*userModel.User, error) {
	var u userModel.User
	if err := db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail looks a user up by unique email.
func FindByEmail(db *gorm.DB, email string) (*userModel.User, error) {
	var u userModel.User
	if err := db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateMembership adds or removes a booking id in a user's membership set.
// Must run inside the caller's transaction: the row is locked so concurrent
// moves cannot interleave, and a failure rolls back the whole unit of work.
func UpdateMembership(tx *gorm.DB, userID, bookingID uint, add bool) error {
	var u userModel.User
	if err := database.LockForUpdate(tx).First(&u, userID).Error; err != nil {
		return err
	}

	if add {
		u.Bookings = u.Bookings.Add(bookingID)
	} else {
		u.Bookings = u.Bookings.Remove(bookingID)
	}

	return tx.Model(&u).Update("bookings", u.Bookings).Error
}

// Create registers a new account. Elevated roles are never assignable through
// registration.
func (s *Service) Create(req *userTypes.CreateUserRequest) (*userModel.User, error) {
	role := userModel.Role(req.Role)
	if role == "" {
		role = userModel.RoleSender
	}
	if role.IsElevated() {
		return nil, apperror.Forbidden("Cannot assign Admin or SuperAdmin role")
	}

	if _, err := FindByEmail(s.db, req.Email); err == nil {
		return nil, apperror.Conflict("User already exists with this email")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	newUser := userModel.User{
		Uuid:      uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
		IsActive:  userModel.StatusActive,
		Email:     req.Email,
		Password:  hashed,
		Phone:     req.Phone,
		Address:   req.Address,
		Bookings:  userModel.UintSlice{},
	}

	if err := s.db.Create(&newUser).Error; err != nil {
		return nil, err
	}
	return &newUser, nil
}

// Update patches a profile. Users may only edit themselves; SuperAdmin may
// edit anyone and is the only role allowed to change account status.
func (s *Service) Update(userID uint, req *userTypes.UpdateUserRequest, actor *utils.TokenClaims) (*userModel.User, error) {
	if actor.UserID != userID && actor.Role != userModel.RoleSuperAdmin {
		return nil, apperror.Forbidden("You can only update your own profile")
	}

	u, err := FindByID(s.db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}

	if req.Role != nil {
		role := userModel.Role(*req.Role)
		if role.IsElevated() {
			return nil, apperror.Forbidden("Cannot assign Admin or SuperAdmin role")
		}
		u.Role = role
	}

	if req.Email != nil && *req.Email != u.Email {
		if _, err := FindByEmail(s.db, *req.Email); err == nil {
			return nil, apperror.Conflict("Email is already in use")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		u.Email = *req.Email
	}

	if req.IsActive != nil {
		if actor.Role != userModel.RoleSuperAdmin {
			return nil, apperror.Forbidden("Only SuperAdmin can change Active status")
		}
		u.IsActive = userModel.ActiveStatus(*req.IsActive)
	}

	if req.Password != nil {
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hashed
	}

	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Address != nil {
		u.Address = *req.Address
	}

	if err := s.db.Save(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// Get returns a single user by id.
func (s *Service) Get(userID uint) (*userModel.User, error) {
	u, err := FindByID(s.db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}
	return u, nil
}

// List returns all users.
func (s *Service) List() ([]userModel.User, error) {
	var users []userModel.User
	if err := s.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Delete soft-deletes an account by flipping its status; the record is kept.
func (s *Service) Delete(userID uint) (*userModel.User, error) {
	u, err := FindByID(s.db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}

	if u.IsActive == userModel.StatusInactive || u.IsActive == userModel.StatusBlocked {
		return nil, apperror.BadRequest("This user is " + u.IsActive.String() + ". Contact Admin")
	}

	u.IsActive = userModel.StatusDeleted
	if err := s.db.Save(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}
