package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/motorent-api/models"
	"github.com/linesmerrill/motorent-api/services"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestTotalPrice(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		start string
		end   string
		want  float64
	}{
		{name: "two days", price: 800, start: "2026-03-04", end: "2026-03-06", want: 1600},
		{name: "same day bills one", price: 650.5, start: "2026-03-04", end: "2026-03-04", want: 650.5},
		{name: "float noise rounds", price: 0.1, start: "2026-03-01", end: "2026-03-04", want: 0.3},
		{name: "week", price: 1199.99, start: "2026-03-01", end: "2026-03-08", want: 8399.93},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.TotalPrice(tt.price, day(tt.start), day(tt.end)))
		})
	}
}

func bookingInput() models.ReservationInput {
	return models.ReservationInput{
		MotorcycleID:  "M1",
		StartDate:     "2026-03-04",
		EndDate:       "2026-03-06",
		PickupTime:    "09:00",
		CustomerName:  "Una User",
		CustomerEmail: "Una@Example.com",
		CustomerPhone: "+639171234567",
	}
}

var customer = models.Identity{ID: "U1", Email: "una@example.com", Role: models.RoleCustomer}

func TestCreateReservation(t *testing.T) {
	f := newFixture(t)
	f.motorcycles.On("FindOne", mock.Anything, bson.M{"_id": "M1"}).
		Return(&models.MotorcycleRow{ID: "M1", Name: "Honda ADV 160", PricePerDay: 800, Availability: "Available"}, nil)
	f.reservations.On("CountDocuments", mock.Anything, mock.MatchedBy(func(filter bson.M) bool {
		status, ok := filter["status"].(bson.M)
		return ok && filter["motorcycle_id"] == "M1" && len(status["$in"].([]string)) == 2
	})).Return(int64(0), nil)
	var row models.ReservationRow
	f.reservations.On("InsertOne", mock.Anything, mock.MatchedBy(func(r models.ReservationRow) bool {
		row = r
		return true
	})).Return(nil)
	f.mailer.On("Send", mock.Anything, mock.Anything).Return(nil)
	f.notifications.On("InsertOne", mock.Anything, mock.MatchedBy(func(n models.NotificationRow) bool {
		return n.Audience == models.AudienceAdmin && n.Type == services.NotifyReservationCreated
	})).Return(nil)
	f.publisher.On("Publish", mock.Anything).Return()

	r, err := f.svc.Reservations.Create(context.Background(), customer, bookingInput())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, r.Status)
	assert.Equal(t, float64(1600), r.TotalPrice)
	assert.Equal(t, "U1", r.UserID)
	assert.Equal(t, "una@example.com", row.CustomerEmail)
	assert.Equal(t, "pending", row.Status)
	f.mailer.AssertNumberOfCalls(t, "Send", 1)
}

func TestCreateReservation_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(in *models.ReservationInput)
		available string
		overlaps  int64
		wantErr   error
		wantValid bool
	}{
		{name: "end before start", mutate: func(in *models.ReservationInput) { in.EndDate = "2026-03-02" }, wantErr: services.ErrInvalidDates},
		{name: "start in the past", mutate: func(in *models.ReservationInput) { in.StartDate = "2026-02-27" }, wantValid: true},
		{name: "bad phone", mutate: func(in *models.ReservationInput) { in.CustomerPhone = "12" }, wantValid: true},
		{name: "bad date format", mutate: func(in *models.ReservationInput) { in.StartDate = "03/04/2026" }, wantValid: true},
		{name: "overlapping booking", available: "Available", overlaps: 1, wantErr: services.ErrMotorcycleUnavailable},
		{name: "in maintenance", available: "In Maintenance", wantErr: services.ErrMotorcycleUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.available != "" {
				f.motorcycles.On("FindOne", mock.Anything, bson.M{"_id": "M1"}).
					Return(&models.MotorcycleRow{ID: "M1", PricePerDay: 800, Availability: tt.available}, nil)
				f.reservations.On("CountDocuments", mock.Anything, mock.Anything).Return(tt.overlaps, nil)
			}
			in := bookingInput()
			if tt.mutate != nil {
				tt.mutate(&in)
			}

			_, err := f.svc.Reservations.Create(context.Background(), customer, in)
			if tt.wantValid {
				var verr *services.ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			f.reservations.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateReservation_UnknownMotorcycle(t *testing.T) {
	f := newFixture(t)
	f.motorcycles.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	_, err := f.svc.Reservations.Create(context.Background(), customer, bookingInput())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCheckAvailability_OverlapWindow(t *testing.T) {
	f := newFixture(t)
	f.motorcycles.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.MotorcycleRow{ID: "M1", Availability: "Reserved"}, nil)
	var captured bson.M
	f.reservations.On("CountDocuments", mock.Anything, mock.MatchedBy(func(filter bson.M) bool {
		captured = filter
		return true
	})).Return(int64(0), nil)

	ok, err := f.svc.Motorcycles.CheckAvailability(context.Background(), "M1", day("2026-03-10"), day("2026-03-12"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, bson.M{"$lte": day("2026-03-12")}, captured["start_date"])
	assert.Equal(t, bson.M{"$gte": day("2026-03-10")}, captured["end_date"])

	_, err = f.svc.Motorcycles.CheckAvailability(context.Background(), "M1", day("2026-03-12"), day("2026-03-10"))
	assert.ErrorIs(t, err, services.ErrInvalidDates)
}

func TestGetReservation_HidesOtherCustomers(t *testing.T) {
	f := newFixture(t)
	f.reservations.On("FindOne", mock.Anything, bson.M{"_id": "R1"}).Return(&models.ReservationRow{ID: "R1", UserID: "U2", Status: "pending"}, nil)

	_, err := f.svc.Reservations.Get(context.Background(), "R1", customer)
	assert.ErrorIs(t, err, services.ErrNotFound)

	r, err := f.svc.Reservations.Get(context.Background(), "R1", models.Identity{ID: "A1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "R1", r.ID)
}

func TestUpdateStatus_RequiresAdmin(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Reservations.UpdateStatus(context.Background(), "R1", models.StatusConfirmed, customer, "")
	assert.ErrorIs(t, err, services.ErrForbidden)

	var verr *services.ValidationError
	_, err = f.svc.Reservations.UpdateStatus(context.Background(), "R1", "teleported", models.Identity{ID: "A1", Role: models.RoleAdmin}, "")
	assert.ErrorAs(t, err, &verr)
}

func TestListAll_RejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Reservations.ListAll(context.Background(), models.ReservationFilter{Status: "lost"}, 10, 1)
	var verr *services.ValidationError
	assert.ErrorAs(t, err, &verr)

	f.reservations.On("Find", mock.Anything, bson.M{"status": "pending", "motorcycle_id": "M1"}, mock.Anything).
		Return([]models.ReservationRow{{ID: "R1", Status: "pending"}}, nil)
	list, err := f.svc.Reservations.ListAll(context.Background(), models.ReservationFilter{Status: models.StatusPending, MotorcycleID: "M1"}, 10, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSendPaymentReminders(t *testing.T) {
	f := newFixture(t)
	f.reservations.On("Find", mock.Anything, mock.MatchedBy(func(filter bson.M) bool {
		return filter["status"] == "confirmed"
	}), mock.Anything).Return([]models.ReservationRow{
		{ID: "paid", MotorcycleID: "M1", CustomerEmail: "a@example.com", Status: "confirmed"},
		{ID: "unpaid", MotorcycleID: "M1", CustomerEmail: "b@example.com", Status: "confirmed"},
		{ID: "bounce", MotorcycleID: "M1", CustomerEmail: "c@example.com", Status: "confirmed"},
	}, nil)
	f.transactions.On("CountDocuments", mock.Anything, bson.M{"reservation_id": "paid", "status": "succeeded"}).Return(int64(1), nil)
	f.transactions.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	f.motorcycles.On("FindOne", mock.Anything, mock.Anything).Return(&models.MotorcycleRow{ID: "M1", Name: "Click 125"}, nil)
	f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m services.Message) bool { return m.ToEmail == "c@example.com" })).
		Return(errors.New("mailbox full"))
	f.mailer.On("Send", mock.Anything, mock.Anything).Return(nil)

	sent, err := f.svc.Reservations.SendPaymentReminders(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	f.mailer.AssertCalled(t, "Send", mock.Anything, mock.MatchedBy(func(m services.Message) bool { return m.ToEmail == "b@example.com" }))
	assert.Equal(t, 1, f.logs.FilterMessage("failed to send payment reminder").Len())
}
