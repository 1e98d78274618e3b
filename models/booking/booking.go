package booking

import (
	"time"

	"parcel-delivery/models/user"

	"github.com/shopspring/decimal"
)

// Booking is a parcel shipment contract between a sender and a receiver.
// TrackingID is the public handle; the numeric ID stays internal.
type Booking struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	TrackingID string `gorm:"type:varchar(50);not null;uniqueIndex" json:"tracking_id"`

	SenderID uint      `gorm:"not null;index" json:"sender_id"`
	Sender   user.User `gorm:"foreignKey:SenderID" json:"sender"`

	ReceiverID uint      `gorm:"not null;index" json:"receiver_id"`
	Receiver   user.User `gorm:"foreignKey:ReceiverID" json:"receiver"`

	ParcelType ParcelType      `gorm:"type:varchar(20);not null;default:Document" json:"parcel_type"`
	Weight     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"weight"`
	Fee        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"fee"`

	IsBlocked   bool `gorm:"default:false" json:"is_blocked"`
	IsCancelled bool `gorm:"default:false" json:"is_cancelled"`

	// Append-only; the last element is the authoritative current status.
	TrackingEvents []TrackingEvent `gorm:"foreignKey:BookingID" json:"tracking_events"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// LastEvent returns the most recent tracking event, or nil when none are
// loaded. Callers must preload TrackingEvents in id order.
func (b *Booking) LastEvent() *TrackingEvent {
	if len(b.TrackingEvents) == 0 {
		return nil
	}
	return &b.TrackingEvents[len(b.TrackingEvents)-1]
}
