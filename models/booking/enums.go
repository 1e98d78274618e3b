package booking

// ParcelType categorizes the parcel and drives the fee table.
type ParcelType string

const (
	ParcelTypeDocument ParcelType = "Document"
	ParcelTypePackage  ParcelType = "Package"
	ParcelTypeFragile  ParcelType = "Fragile"
)

func (pt ParcelType) String() string {
	return string(pt)
}

func (pt ParcelType) IsValid() bool {
	switch pt {
	case ParcelTypeDocument, ParcelTypePackage, ParcelTypeFragile:
		return true
	default:
		return false
	}
}

// ParcelStatus is the state recorded by a tracking event.
type ParcelStatus string

const (
	StatusRequested      ParcelStatus = "Requested"
	StatusConfirmed      ParcelStatus = "Confirmed"
	StatusDispatched     ParcelStatus = "Dispatched"
	StatusInTransit      ParcelStatus = "InTransit"
	StatusOutForDelivery ParcelStatus = "OutForDelivery"
	StatusDelivered      ParcelStatus = "Delivered"
)

func (ps ParcelStatus) String() string {
	return string(ps)
}

func (ps ParcelStatus) IsValid() bool {
	switch ps {
	case StatusRequested, StatusConfirmed, StatusDispatched, StatusInTransit, StatusOutForDelivery, StatusDelivered:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once the ledger accepts no further events.
func (ps ParcelStatus) IsTerminal() bool {
	return ps == StatusDelivered
}

// AllowsFieldEdits returns true while non-event booking fields may still be
// changed. Once dispatched, only tracking events may be appended.
func (ps ParcelStatus) AllowsFieldEdits() bool {
	return ps == StatusRequested || ps == StatusConfirmed
}

// GetAllParcelStatuses returns all valid parcel statuses in journey order.
func GetAllParcelStatuses() []ParcelStatus {
	return []ParcelStatus{
		StatusRequested,
		StatusConfirmed,
		StatusDispatched,
		StatusInTransit,
		StatusOutForDelivery,
		StatusDelivered,
	}
}
