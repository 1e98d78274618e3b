package booking

import (
	"time"
)

// TrackingEvent is one immutable record in a booking's journey. Rows are only
// ever inserted; updates and deletes would break the ledger.
type TrackingEvent struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	BookingID uint `gorm:"not null;index" json:"booking_id"`

	Status   ParcelStatus `gorm:"type:varchar(20);not null;default:Requested" json:"status"`
	Location string       `gorm:"type:varchar(100);not null" json:"location"`
	Note     *string      `gorm:"type:varchar(200)" json:"note,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the TrackingEvent model
func (TrackingEvent) TableName() string {
	return "tracking_events"
}
