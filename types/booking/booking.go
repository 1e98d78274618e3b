package booking

import "github.com/go-playground/validator/v10"

// SeedTrackingEvent optionally overrides the location/note of the initial
// Requested event created with the booking.
type SeedTrackingEvent struct {
	Location string `json:"location" validate:"omitempty,min=1,max=100"`
	Note     string `json:"note" validate:"omitempty,max=200"`
}

// CreateBookingRequest is the payload for booking a new parcel. The fee is
// never part of the request; it is always derived server-side.
type CreateBookingRequest struct {
	SenderID      uint               `json:"sender" validate:"required"`
	ReceiverID    uint               `json:"receiver" validate:"required"`
	ParcelType    string             `json:"parcelType" validate:"omitempty,oneof=Document Package Fragile"`
	Weight        float64            `json:"weight" validate:"required,gte=0.1,lte=10"`
	TrackingEvent *SeedTrackingEvent `json:"trackingEvent" validate:"omitempty"`
}

func (req *CreateBookingRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}

// UpdateBookingRequest is a partial edit of a booking's non-event fields.
type UpdateBookingRequest struct {
	ReceiverID  *uint    `json:"receiver" validate:"omitempty,gt=0"`
	ParcelType  *string  `json:"parcelType" validate:"omitempty,oneof=Document Package Fragile"`
	Weight      *float64 `json:"weight" validate:"omitempty,gte=0.1,lte=10"`
	IsCancelled *bool    `json:"isCancelled"`
	IsBlocked   *bool    `json:"isBlocked"`
}

func (req *UpdateBookingRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}

// AddTrackingEventRequest appends one event to a booking's ledger.
type AddTrackingEventRequest struct {
	Status   string `json:"status" validate:"required,oneof=Requested Confirmed Dispatched InTransit OutForDelivery Delivered"`
	Location string `json:"location" validate:"required,min=1,max=100"`
	Note     string `json:"note" validate:"omitempty,max=200"`
}

func (req *AddTrackingEventRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}
