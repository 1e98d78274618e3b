package user

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Role determines what a user may do. Sender and Receiver are self-service
// roles; Admin and SuperAdmin are elevated.
type Role string

const (
	RoleSender     Role = "Sender"
	RoleReceiver   Role = "Receiver"
	RoleAdmin      Role = "Admin"
	RoleSuperAdmin Role = "SuperAdmin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleSender, RoleReceiver, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// IsElevated returns true for roles allowed beyond self-service operations.
func (r Role) IsElevated() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// ActiveStatus is the account state. Deleted is a soft delete: the record is
// retained but access is revoked.
type ActiveStatus string

const (
	StatusActive   ActiveStatus = "Active"
	StatusInactive ActiveStatus = "Inactive"
	StatusBlocked  ActiveStatus = "Blocked"
	StatusDeleted  ActiveStatus = "Deleted"
)

func (s ActiveStatus) String() string {
	return string(s)
}

func (s ActiveStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusBlocked, StatusDeleted:
		return true
	default:
		return false
	}
}

// User is an identity participating in bookings, as sender or receiver.
type User struct {
	ID        uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Uuid      string       `gorm:"type:varchar(64);not null;unique" json:"uuid"`
	FirstName string       `gorm:"type:varchar(255);not null" json:"first_name"`
	LastName  string       `gorm:"type:varchar(255);not null" json:"last_name"`
	Role      Role         `gorm:"type:varchar(20);not null;default:Sender" json:"role"`
	IsActive  ActiveStatus `gorm:"type:varchar(20);not null;default:Active" json:"is_active"`
	Email     string       `gorm:"type:varchar(255);not null;unique" json:"email"`
	Password  string       `gorm:"type:varchar(255);not null" json:"-"`
	Phone     string       `gorm:"type:varchar(20)" json:"phone"`
	Address   string       `gorm:"type:text;not null" json:"address"`

	// Bookings holds the ids of every booking this user currently participates
	// in, as sender or receiver. Mutated only through the membership helpers in
	// services/user, inside the same transaction as the booking write.
	Bookings UintSlice `gorm:"type:json" json:"bookings"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UintSlice is a custom type storing a slice of ids in a JSON column.
type UintSlice []uint

// Scan implements the Scanner interface for database deserialization.
func (us *UintSlice) Scan(value interface{}) error {
	if value == nil {
		*us = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, us)
	case string:
		return json.Unmarshal([]byte(v), us)
	default:
		return errors.New("unsupported type for UintSlice")
	}
}

// Value implements the driver Valuer interface for database serialization.
func (us UintSlice) Value() (driver.Value, error) {
	if us == nil {
		return json.Marshal(UintSlice{})
	}
	return json.Marshal(us)
}

// Contains reports whether id is present in the slice.
func (us UintSlice) Contains(id uint) bool {
	for _, v := range us {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id if absent.
func (us UintSlice) Add(id uint) UintSlice {
	if us.Contains(id) {
		return us
	}
	return append(us, id)
}

// Remove drops every occurrence of id.
func (us UintSlice) Remove(id uint) UintSlice {
	out := make(UintSlice, 0, len(us))
	for _, v := range us {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
