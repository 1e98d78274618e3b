package booking

import (
	"errors"
	"math"

	"parcel-delivery/apperror"
	"parcel-delivery/database"
	bookingModel "parcel-delivery/models/booking"
	userModel "parcel-delivery/models/user"
	"parcel-delivery/services/fee"
	userService "parcel-delivery/services/user"
	bookingTypes "parcel-delivery/types/booking"
	"parcel-delivery/utils"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	seedEventLocation = "Origin"
	seedEventNote     = "Parcel booking created"

	// Tracking codes carry only 8 hex chars of entropy per day, so a
	// duplicate-key insert is retried with a fresh code before giving up.
	trackingIDAttempts = 3
)

// Service owns the parcel booking lifecycle: creation, field edits,
// the tracking ledger, deletion, and reporting.
type Service struct {
	db            *gorm.DB
	newTrackingID func() string
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, newTrackingID: utils.GenerateTrackingID}
}

// PagedBookings is a page of bookings plus the pagination metadata
// callers need to render page links.
type PagedBookings struct {
	Bookings []bookingModel.Booking `json:"bookings"`
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	Limit    int                    `json:"limit"`
	Pages    int                    `json:"pages"`
}

// TypeStat aggregates bookings of one parcel type.
type TypeStat struct {
	ParcelType  bookingModel.ParcelType `json:"parcelType"`
	Count       int64                   `json:"count"`
	TotalWeight decimal.Decimal         `json:"totalWeight"`
	TotalFee    decimal.Decimal         `json:"totalFee"`
}

// StatusStat counts tracking events per status across all ledgers.
type StatusStat struct {
	Status bookingModel.ParcelStatus `json:"status"`
	Count  int64                     `json:"count"`
}

// Stats is the aggregate reporting snapshot for the whole system.
type Stats struct {
	TotalBookings     int64           `json:"totalBookings"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	BookingsThisMonth int64           `json:"bookingsThisMonth"`
	ByParcelType      []TypeStat      `json:"byParcelType"`
	ByStatus          []StatusStat    `json:"byStatus"`
}

// preloaded attaches the relations every booking response carries. Tracking
// events are ordered by id so the last element is the current status.
func preloaded(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Sender").
		Preload("Receiver").
		Preload("TrackingEvents", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("tracking_events.id ASC")
		})
}

func loadBooking(db *gorm.DB, id uint) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	if err := preloaded(db).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Booking not found")
		}
		return nil, err
	}
	return &b, nil
}

// Create books a parcel for the given sender/receiver pair. Non-elevated
// actors may only book for themselves. The fee is computed server-side and
// the ledger is seeded with a single Requested event; both users' membership
// lists are updated in the same transaction as the booking row.
func (s *Service) Create(actor *utils.TokenClaims, req *bookingTypes.CreateBookingRequest) (*bookingModel.Booking, error) {
	sender, err := userService.FindByID(s.db, req.SenderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Sender not found")
		}
		return nil, err
	}

	if !actor.Role.IsElevated() && actor.UserID != sender.ID {
		return nil, apperror.Forbidden("Users can only create bookings for themselves")
	}

	receiver, err := userService.FindByID(s.db, req.ReceiverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Receiver not found")
		}
		return nil, err
	}

	if sender.ID == receiver.ID {
		return nil, apperror.BadRequest("Sender and receiver cannot be the same user")
	}
	if receiver.IsActive != userModel.StatusActive {
		return nil, apperror.BadRequest("Receiver account is " + receiver.IsActive.String())
	}

	parcelType := bookingModel.ParcelTypeDocument
	if req.ParcelType != "" {
		parcelType = bookingModel.ParcelType(req.ParcelType)
	}

	weight := decimal.NewFromFloat(req.Weight)
	parcelFee, err := fee.Calculate(parcelType, weight)
	if err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	location := seedEventLocation
	note := seedEventNote
	if req.TrackingEvent != nil {
		if req.TrackingEvent.Location != "" {
			location = req.TrackingEvent.Location
		}
		if req.TrackingEvent.Note != "" {
			note = req.TrackingEvent.Note
		}
	}

	var b bookingModel.Booking
	for attempt := 1; ; attempt++ {
		b = bookingModel.Booking{
			TrackingID: s.newTrackingID(),
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
			ParcelType: parcelType,
			Weight:     weight,
			Fee:        parcelFee,
			TrackingEvents: []bookingModel.TrackingEvent{{
				Status:   bookingModel.StatusRequested,
				Location: location,
				Note:     &note,
			}},
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&b).Error; err != nil {
				return err
			}
			if err := userService.UpdateMembership(tx, sender.ID, b.ID, true); err != nil {
				return err
			}
			return userService.UpdateMembership(tx, receiver.ID, b.ID, true)
		})
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		if attempt >= trackingIDAttempts {
			return nil, apperror.Conflict("Could not allocate a unique tracking code")
		}
	}

	return loadBooking(s.db, b.ID)
}

// Update applies a partial edit to a booking. Every patched field, the
// cancel/block flags included, is allowed only while the booking is still
// Requested or Confirmed; once dispatched only tracking events may be
// appended. Cancelled bookings reject every edit. Blocking is reserved for
// elevated roles. Changing the receiver moves the booking between the old
// and new receivers' membership lists atomically.
func (s *Service) Update(actor *utils.TokenClaims, id uint, req *bookingTypes.UpdateBookingRequest) (*bookingModel.Booking, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var b bookingModel.Booking
		if err := preloaded(database.LockForUpdate(tx)).First(&b, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Booking not found")
			}
			return err
		}

		if !actor.Role.IsElevated() && actor.UserID != b.SenderID {
			return apperror.Forbidden("You are not allowed to update this booking")
		}
		if b.IsCancelled {
			return apperror.BadRequest("Cannot update a cancelled booking")
		}

		// Re-sending the current receiver is a no-op, not an edit.
		receiverChanged := req.ReceiverID != nil && *req.ReceiverID != b.ReceiverID
		wantsFieldEdit := receiverChanged || req.ParcelType != nil || req.Weight != nil ||
			req.IsCancelled != nil || req.IsBlocked != nil
		if wantsFieldEdit {
			last := b.LastEvent()
			if last == nil || !last.Status.AllowsFieldEdits() {
				return apperror.Forbidden("Booking cannot be updated at this stage")
			}
		}

		if receiverChanged {
			newReceiver, err := userService.FindByID(tx, *req.ReceiverID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.BadRequest("Receiver not found")
				}
				return err
			}
			if newReceiver.ID == b.SenderID {
				return apperror.BadRequest("Sender and receiver cannot be the same user")
			}
			if newReceiver.IsActive != userModel.StatusActive {
				return apperror.BadRequest("Receiver account is " + newReceiver.IsActive.String())
			}

			if err := userService.UpdateMembership(tx, b.ReceiverID, b.ID, false); err != nil {
				return err
			}
			if err := userService.UpdateMembership(tx, newReceiver.ID, b.ID, true); err != nil {
				return err
			}
			b.ReceiverID = newReceiver.ID
		}

		if req.ParcelType != nil {
			b.ParcelType = bookingModel.ParcelType(*req.ParcelType)
		}
		if req.Weight != nil {
			b.Weight = decimal.NewFromFloat(*req.Weight)
		}
		if req.ParcelType != nil || req.Weight != nil {
			newFee, err := fee.Calculate(b.ParcelType, b.Weight)
			if err != nil {
				return apperror.BadRequest(err.Error())
			}
			b.Fee = newFee
		}

		if req.IsCancelled != nil {
			b.IsCancelled = *req.IsCancelled
		}
		if req.IsBlocked != nil {
			if !actor.Role.IsElevated() {
				return apperror.Forbidden("Only admins can block or unblock bookings")
			}
			b.IsBlocked = *req.IsBlocked
		}

		return tx.Omit("Sender", "Receiver", "TrackingEvents").Save(&b).Error
	})
	if err != nil {
		return nil, err
	}

	return loadBooking(s.db, id)
}

// AddTrackingEvent appends one event to a booking's ledger. The ledger is
// append-only and closes permanently once a Delivered event lands; cancelled
// and blocked bookings do not accept events either.
func (s *Service) AddTrackingEvent(id uint, req *bookingTypes.AddTrackingEventRequest) (*bookingModel.Booking, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var b bookingModel.Booking
		if err := preloaded(database.LockForUpdate(tx)).First(&b, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Booking not found")
			}
			return err
		}

		if b.IsCancelled {
			return apperror.BadRequest("Cannot add tracking events to a cancelled booking")
		}
		if b.IsBlocked {
			return apperror.BadRequest("Cannot add tracking events to a blocked booking")
		}
		if last := b.LastEvent(); last != nil && last.Status.IsTerminal() {
			return apperror.Forbidden("Parcel already delivered; tracking is closed")
		}

		event := bookingModel.TrackingEvent{
			BookingID: b.ID,
			Status:    bookingModel.ParcelStatus(req.Status),
			Location:  req.Location,
		}
		if req.Note != "" {
			note := req.Note
			event.Note = &note
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, err
	}

	return loadBooking(s.db, id)
}

// Delete hard-deletes a booking, but only while its ledger still holds
// nothing beyond the initial Requested event. Both members' lists are
// cleaned up in the same transaction.
func (s *Service) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var b bookingModel.Booking
		if err := preloaded(database.LockForUpdate(tx)).First(&b, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Booking not found")
			}
			return err
		}

		if len(b.TrackingEvents) != 1 || b.TrackingEvents[0].Status != bookingModel.StatusRequested {
			return apperror.Forbidden("Cannot delete booking that has been processed")
		}

		if err := userService.UpdateMembership(tx, b.SenderID, b.ID, false); err != nil {
			return err
		}
		if err := userService.UpdateMembership(tx, b.ReceiverID, b.ID, false); err != nil {
			return err
		}
		if err := tx.Where("booking_id = ?", b.ID).Delete(&bookingModel.TrackingEvent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&bookingModel.Booking{}, b.ID).Error
	})
}

// GetByTrackingID looks a booking up by its public tracking code. This is
// the unauthenticated parcel-tracking path.
func (s *Service) GetByTrackingID(trackingID string) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	err := preloaded(s.db).Where("tracking_id = ?", trackingID).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("No booking found with this tracking id")
		}
		return nil, err
	}
	return &b, nil
}

func paginate(db *gorm.DB, page, limit int) (*PagedBookings, error) {
	var total int64
	if err := db.Model(&bookingModel.Booking{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var bookings []bookingModel.Booking
	err := preloaded(db).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}

	return &PagedBookings{
		Bookings: bookings,
		Total:    total,
		Page:     page,
		Limit:    limit,
		Pages:    int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// List returns all bookings newest-first, paginated.
func (s *Service) List(page, limit int) (*PagedBookings, error) {
	return paginate(s.db, page, limit)
}

// ListByUser returns the bookings a user participates in. Senders see the
// parcels they sent; every other role sees the parcels addressed to them.
func (s *Service) ListByUser(userID uint, page, limit int) (*PagedBookings, error) {
	target, err := userService.FindByID(s.db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}

	column := "receiver_id"
	if target.Role == userModel.RoleSender {
		column = "sender_id"
	}
	return paginate(s.db.Where(column+" = ?", target.ID), page, limit)
}

// GetStats aggregates booking counts, revenue, per-type and per-status
// breakdowns, plus the number of bookings created in the current month.
func (s *Service) GetStats() (*Stats, error) {
	stats := Stats{
		TotalRevenue: decimal.Zero,
		ByParcelType: []TypeStat{},
		ByStatus:     []StatusStat{},
	}

	if err := s.db.Model(&bookingModel.Booking{}).Count(&stats.TotalBookings).Error; err != nil {
		return nil, err
	}

	var revenue decimal.NullDecimal
	err := s.db.Model(&bookingModel.Booking{}).
		Select("COALESCE(SUM(fee), 0)").
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	if revenue.Valid {
		stats.TotalRevenue = revenue.Decimal
	}

	err = s.db.Model(&bookingModel.Booking{}).
		Where("created_at >= ?", now.BeginningOfMonth()).
		Count(&stats.BookingsThisMonth).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&bookingModel.Booking{}).
		Select("parcel_type, COUNT(*) AS count, COALESCE(SUM(weight), 0) AS total_weight, COALESCE(SUM(fee), 0) AS total_fee").
		Group("parcel_type").
		Order("parcel_type ASC").
		Scan(&stats.ByParcelType).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&bookingModel.TrackingEvent{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status ASC").
		Scan(&stats.ByStatus).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
