package booking

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"parcel-delivery/apperror"
	"parcel-delivery/database"
	bookingModel "parcel-delivery/models/booking"
	userModel "parcel-delivery/models/user"
	bookingTypes "parcel-delivery/types/booking"
	"parcel-delivery/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, role userModel.Role) *userModel.User {
	t.Helper()

	u := &userModel.User{
		Uuid:      uuid.NewString(),
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
		IsActive:  userModel.StatusActive,
		Email:     uuid.NewString() + "@example.com",
		Password:  "not-a-real-hash",
		Address:   "Dhaka",
		Bookings:  userModel.UintSlice{},
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func claimsFor(u *userModel.User) *utils.TokenClaims {
	return &utils.TokenClaims{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func createTestBooking(t *testing.T, svc *Service, sender, receiver *userModel.User) *bookingModel.Booking {
	t.Helper()

	b, err := svc.Create(claimsFor(sender), &bookingTypes.CreateBookingRequest{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		ParcelType: "Package",
		Weight:     2,
	})
	require.NoError(t, err)
	return b
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) *userModel.User {
	t.Helper()

	var u userModel.User
	require.NoError(t, db.First(&u, id).Error)
	return &u
}

func requireAppError(t *testing.T, err error, status int) {
	t.Helper()

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, status, appErr.StatusCode)
}

func TestCreateBooking(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)

	b := createTestBooking(t, svc, sender, receiver)

	require.True(t, strings.HasPrefix(b.TrackingID, "TRK-"))
	require.True(t, b.Fee.Equal(decimal.NewFromInt(180)), "Package 2kg fee, got %s", b.Fee)

	require.Len(t, b.TrackingEvents, 1)
	require.Equal(t, bookingModel.StatusRequested, b.TrackingEvents[0].Status)
	require.Equal(t, "Origin", b.TrackingEvents[0].Location)
	require.NotNil(t, b.TrackingEvents[0].Note)
	require.Equal(t, "Parcel booking created", *b.TrackingEvents[0].Note)

	require.Equal(t, sender.ID, b.Sender.ID)
	require.Equal(t, receiver.ID, b.Receiver.ID)

	require.True(t, reloadUser(t, db, sender.ID).Bookings.Contains(b.ID))
	require.True(t, reloadUser(t, db, receiver.ID).Bookings.Contains(b.ID))
}

func TestCreateBookingSeedEventOverrides(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)

	b, err := svc.Create(claimsFor(sender), &bookingTypes.CreateBookingRequest{
		SenderID:      sender.ID,
		ReceiverID:    receiver.ID,
		ParcelType:    "Fragile",
		Weight:        1,
		TrackingEvent: &bookingTypes.SeedTrackingEvent{Location: "Chattogram Hub", Note: "Handle with care"},
	})
	require.NoError(t, err)

	require.Len(t, b.TrackingEvents, 1)
	require.Equal(t, "Chattogram Hub", b.TrackingEvents[0].Location)
	require.Equal(t, "Handle with care", *b.TrackingEvents[0].Note)
	require.True(t, b.Fee.Equal(decimal.NewFromInt(200)))
}

func TestCreateBookingForAnotherUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	other := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)

	_, err := svc.Create(claimsFor(other), &bookingTypes.CreateBookingRequest{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Weight:     1,
	})
	requireAppError(t, err, 403)

	// Admins may book on behalf of any sender.
	admin := createTestUser(t, db, userModel.RoleAdmin)
	_, err = svc.Create(claimsFor(admin), &bookingTypes.CreateBookingRequest{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Weight:     1,
	})
	require.NoError(t, err)
}

func TestCreateBookingRejectsSelfDelivery(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)

	_, err := svc.Create(claimsFor(sender), &bookingTypes.CreateBookingRequest{
		SenderID:   sender.ID,
		ReceiverID: sender.ID,
		Weight:     1,
	})
	requireAppError(t, err, 400)
}

func TestCreateBookingUnknownParticipants(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)

	_, err := svc.Create(claimsFor(sender), &bookingTypes.CreateBookingRequest{
		SenderID:   9999,
		ReceiverID: sender.ID,
		Weight:     1,
	})
	requireAppError(t, err, 404)

	_, err = svc.Create(claimsFor(sender), &bookingTypes.CreateBookingRequest{
		SenderID:   sender.ID,
		ReceiverID: 9999,
		Weight:     1,
	})
	requireAppError(t, err, 404)
}

func TestUpdateBookingRecomputesFee(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)
	b := createTestBooking(t, svc, sender, receiver)

	newType := "Fragile"
	newWeight := 3.0
	updated, err := svc.Update(claimsFor(sender), b.ID, &bookingTypes.UpdateBookingRequest{
		ParcelType: &newType,
		Weight:     &newWeight,
	})
	require.NoError(t, err)

	// Fragile 3kg: 200 + 2 * 200 * 0.30 = 320
	require.True(t, updated.Fee.Equal(decimal.NewFromInt(320)), "got %s", updated.Fee)
	require.Equal(t, bookingModel.ParcelTypeFragile, updated.ParcelType)
}

func TestUpdateBookingMovesReceiverMembership(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	oldReceiver := createTestUser(t, db, userModel.RoleReceiver)
	newReceiver := createTestUser(t, db, userModel.RoleReceiver)
	b := createTestBooking(t, svc, sender, oldReceiver)

	updated, err := svc.Update(claimsFor(sender), b.ID, &bookingTypes.UpdateBookingRequest{
		ReceiverID: &newReceiver.ID,
	})
	require.NoError(t, err)
	require.Equal(t, newReceiver.ID, updated.ReceiverID)

	require.False(t, reloadUser(t, db, oldReceiver.ID).Bookings.Contains(b.ID))
	require.True(t, reloadUser(t, db, newReceiver.ID).Bookings.Contains(b.ID))
	require.True(t, reloadUser(t, db, sender.ID).Bookings.Contains(b.ID))
}

func TestUpdateBookingOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)
	stranger := createTestUser(t, db, userModel.RoleSender)
	b := createTestBooking(t, svc, sender, receiver)

	cancelled := true
	_, err := svc.Update(claimsFor(stranger), b.ID, &bookingTypes.UpdateBookingRequest{
		IsCancelled: &cancelled,
	})
	requireAppError(t, err, 403)
}

func TestUpdateCancelledBooking(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)
	b := createTestBooking(t, svc, sender, receiver)

	cancelled := true
	_, err := svc.Update(claimsFor(sender), b.ID, &bookingTypes.UpdateBookingRequest{IsCancelled: &cancelled})
	require.NoError(t, err)

	newWeight := 5.0
	_, err = svc.Update(claimsFor(sender), b.ID, &bookingTypes.UpdateBookingRequest{Weight: &newWeight})
	requireAppError(t, err, 400)
}

func TestUpdateBookingStageLock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)
	b := createTestBooking(t, svc, sender, receiver)

	_, err := svc.AddTrackingEvent(b.ID, &bookingTypes.AddTrackingEventRequest{
		Status:   "Dispatched",
		Location: "Dhaka Hub",
	})
	require.NoError(t, err)

	newWeight := 5.0
	_, err = svc.Update(claimsFor(sender), b.ID, &bookingTypes.UpdateBookingRequest{Weight: &newWeight})
	requireAppError(t, err, 403)

	// The cancel/block flags are booking fields and lock with the rest.
	cancelled := true
	_, err = svc.Update(claimsFor(sender), b.ID, &bookingTypes.UpdateBookingRequest{IsCancelled: &cancelled})
	requireAppError(t, err, 403)

	admin := createTestUser(t, db, userModel.RoleAdmin)
	blocked := true
	_, err = svc.Update(claimsFor(admin), b.ID, &bookingTypes.UpdateBookingRequest{IsBlocked: &blocked})
	requireAppError(t, err, 403)

	// Re-sending the unchanged receiver is a no-op, not a field edit.
	updated, err := svc.Update(claimsFor(sender), b.ID, &bookingTypes.UpdateBookingRequest{ReceiverID: &receiver.ID})
	require.NoError(t, err)
	require.Equal(t, receiver.ID, updated.ReceiverID)
	require.False(t, updated.IsCancelled)
}

func TestBlockBookingRequiresElevatedRole(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)
	admin := createTestUser(t, db, userModel.RoleAdmin)
	b := createTestBooking(t, svc, sender, receiver)

	blocked := true
	_, err := svc.Update(claimsFor(sender), b.ID, &bookingTypes.UpdateBookingRequest{IsBlocked: &blocked})
	requireAppError(t, err, 403)

	updated, err := svc.Update(claimsFor(admin), b.ID, &bookingTypes.UpdateBookingRequest{IsBlocked: &blocked})
	require.NoError(t, err)
	require.True(t, updated.IsBlocked)
}

func TestAddTrackingEventAppends(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)
	b := createTestBooking(t, svc, sender, receiver)

	updated, err := svc.AddTrackingEvent(b.ID, &bookingTypes.AddTrackingEventRequest{
		Status:   "Confirmed",
		Location: "Dhaka Hub",
		Note:     "Picked up",
	})
	require.NoError(t, err)
	require.Len(t, updated.TrackingEvents, 2)

	last := updated.LastEvent()
	require.Equal(t, bookingModel.StatusConfirmed, last.Status)
	require.Equal(t, "Dhaka Hub", last.Location)
	require.Equal(t, "Picked up", *last.Note)
}

func TestDeliveredClosesLedger(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)
	b := createTestBooking(t, svc, sender, receiver)

	_, err := svc.AddTrackingEvent(b.ID, &bookingTypes.AddTrackingEventRequest{
		Status:   "Delivered",
		Location: "Receiver address",
	})
	require.NoError(t, err)

	_, err = svc.AddTrackingEvent(b.ID, &bookingTypes.AddTrackingEventRequest{
		Status:   "InTransit",
		Location: "Nowhere",
	})
	requireAppError(t, err, 403)

	// The rejected append must leave the ledger untouched.
	var count int64
	require.NoError(t, db.Model(&bookingModel.TrackingEvent{}).
		Where("booking_id = ?", b.ID).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestAddTrackingEventCancelledOrBlocked(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)
	b := createTestBooking(t, svc, sender, receiver)

	require.NoError(t, db.Model(&bookingModel.Booking{}).
		Where("id = ?", b.ID).Update("is_cancelled", true).Error)

	_, err := svc.AddTrackingEvent(b.ID, &bookingTypes.AddTrackingEventRequest{
		Status:   "Confirmed",
		Location: "Dhaka Hub",
	})
	requireAppError(t, err, 400)
}

func TestReceiverMoveRollsBackAtomically(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	oldReceiver := createTestUser(t, db, userModel.RoleReceiver)
	newReceiver := createTestUser(t, db, userModel.RoleReceiver)
	b := createTestBooking(t, svc, sender, oldReceiver)

	// Refuse the membership write on the new receiver's row. The old
	// receiver's removal has already run inside the transaction by then, so
	// a non-atomic implementation would leave the id in neither set.
	err := db.Callback().Update().Before("gorm:update").Register("membership_write_failure", func(tx *gorm.DB) {
		if u, ok := tx.Statement.Model.(*userModel.User); ok && u.ID == newReceiver.ID {
			tx.AddError(errors.New("membership write refused"))
		}
	})
	require.NoError(t, err)

	_, err = svc.Update(claimsFor(sender), b.ID, &bookingTypes.UpdateBookingRequest{
		ReceiverID: &newReceiver.ID,
	})
	require.Error(t, err)

	var got bookingModel.Booking
	require.NoError(t, db.First(&got, b.ID).Error)
	require.Equal(t, oldReceiver.ID, got.ReceiverID)

	require.True(t, reloadUser(t, db, oldReceiver.ID).Bookings.Contains(b.ID))
	require.False(t, reloadUser(t, db, newReceiver.ID).Bookings.Contains(b.ID))
}

func TestTrackingCodeCollisionRetries(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)

	codes := []string{"TRK-20260828-AAAAAAAA", "TRK-20260828-AAAAAAAA", "TRK-20260828-BBBBBBBB"}
	call := 0
	svc.newTrackingID = func() string {
		code := codes[call]
		call++
		return code
	}

	first := createTestBooking(t, svc, sender, receiver)
	require.Equal(t, "TRK-20260828-AAAAAAAA", first.TrackingID)

	// The second booking collides on its first attempt and retries.
	second := createTestBooking(t, svc, sender, receiver)
	require.Equal(t, "TRK-20260828-BBBBBBBB", second.TrackingID)
}

func TestTrackingCodeCollisionExhaustion(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)

	svc.newTrackingID = func() string { return "TRK-20260828-CCCCCCCC" }
	createTestBooking(t, svc, sender, receiver)

	_, err := svc.Create(claimsFor(sender), &bookingTypes.CreateBookingRequest{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		ParcelType: "Package",
		Weight:     2,
	})
	requireAppError(t, err, 409)
}

func TestDeleteBooking(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)
	b := createTestBooking(t, svc, sender, receiver)

	require.NoError(t, svc.Delete(b.ID))

	var count int64
	require.NoError(t, db.Model(&bookingModel.Booking{}).Where("id = ?", b.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&bookingModel.TrackingEvent{}).
		Where("booking_id = ?", b.ID).Count(&count).Error)
	require.Zero(t, count)

	require.False(t, reloadUser(t, db, sender.ID).Bookings.Contains(b.ID))
	require.False(t, reloadUser(t, db, receiver.ID).Bookings.Contains(b.ID))
}

func TestDeleteProcessedBooking(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)
	b := createTestBooking(t, svc, sender, receiver)

	_, err := svc.AddTrackingEvent(b.ID, &bookingTypes.AddTrackingEventRequest{
		Status:   "Confirmed",
		Location: "Dhaka Hub",
	})
	require.NoError(t, err)

	requireAppError(t, svc.Delete(b.ID), 403)

	var count int64
	require.NoError(t, db.Model(&bookingModel.Booking{}).Where("id = ?", b.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestGetByTrackingID(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)
	b := createTestBooking(t, svc, sender, receiver)

	found, err := svc.GetByTrackingID(b.TrackingID)
	require.NoError(t, err)
	require.Equal(t, b.ID, found.ID)
	require.Len(t, found.TrackingEvents, 1)

	_, err = svc.GetByTrackingID("TRK-00000000-DEADBEEF")
	requireAppError(t, err, 404)
}

func TestListPagination(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)
	for i := 0; i < 12; i++ {
		createTestBooking(t, svc, sender, receiver)
	}

	page, err := svc.List(2, 5)
	require.NoError(t, err)
	require.Len(t, page.Bookings, 5)
	require.EqualValues(t, 12, page.Total)
	require.Equal(t, 3, page.Pages)

	page, err = svc.List(4, 5)
	require.NoError(t, err)
	require.Empty(t, page.Bookings)
	require.EqualValues(t, 12, page.Total)
}

func TestListByUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiverA := createTestUser(t, db, userModel.RoleReceiver)
	receiverB := createTestUser(t, db, userModel.RoleReceiver)

	createTestBooking(t, svc, sender, receiverA)
	createTestBooking(t, svc, sender, receiverA)
	createTestBooking(t, svc, sender, receiverB)

	page, err := svc.ListByUser(sender.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Bookings, 3)

	page, err = svc.ListByUser(receiverA.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Bookings, 2)

	_, err = svc.ListByUser(9999, 1, 10)
	requireAppError(t, err, 404)
}

func TestGetStats(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	// Empty system reports zeros, not errors.
	stats, err := svc.GetStats()
	require.NoError(t, err)
	require.Zero(t, stats.TotalBookings)
	require.True(t, stats.TotalRevenue.IsZero())
	require.Empty(t, stats.ByParcelType)
	require.Empty(t, stats.ByStatus)

	sender := createTestUser(t, db, userModel.RoleSender)
	receiver := createTestUser(t, db, userModel.RoleReceiver)
	b1 := createTestBooking(t, svc, sender, receiver) // Package 2kg, fee 180
	createTestBooking(t, svc, sender, receiver)       // Package 2kg, fee 180

	_, err = svc.AddTrackingEvent(b1.ID, &bookingTypes.AddTrackingEventRequest{
		Status:   "Confirmed",
		Location: "Dhaka Hub",
	})
	require.NoError(t, err)

	stats, err = svc.GetStats()
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.TotalBookings)
	require.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(360)), "got %s", stats.TotalRevenue)
	require.EqualValues(t, 2, stats.BookingsThisMonth)

	require.Len(t, stats.ByParcelType, 1)
	require.Equal(t, bookingModel.ParcelTypePackage, stats.ByParcelType[0].ParcelType)
	require.EqualValues(t, 2, stats.ByParcelType[0].Count)
	require.True(t, stats.ByParcelType[0].TotalWeight.Equal(decimal.NewFromInt(4)))

	statusCounts := map[bookingModel.ParcelStatus]int64{}
	for _, s := range stats.ByStatus {
		statusCounts[s.Status] = s.Count
	}
	require.EqualValues(t, 2, statusCounts[bookingModel.StatusRequested])
	require.EqualValues(t, 1, statusCounts[bookingModel.StatusConfirmed])
}
