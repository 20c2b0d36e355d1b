package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/motorent-api/databases"
	"github.com/linesmerrill/motorent-api/mapper"
	"github.com/linesmerrill/motorent-api/models"
)

const dateLayout = "2006-01-02"

// ReservationService handles bookings
type ReservationService struct {
	reservations  databases.ReservationDatabase
	transactions  databases.TransactionDatabase
	motorcycles   *MotorcycleService
	coordinator   *Coordinator
	email         *EmailService
	notifications *NotificationService
	log           *zap.SugaredLogger
	now           func() time.Time
}

// NewReservationService creates a ReservationService
func NewReservationService(reservations databases.ReservationDatabase, transactions databases.TransactionDatabase,
	motorcycles *MotorcycleService, coordinator *Coordinator, email *EmailService, notifications *NotificationService,
	log *zap.SugaredLogger) *ReservationService {
	return &ReservationService{
		reservations:  reservations,
		transactions:  transactions,
		motorcycles:   motorcycles,
		coordinator:   coordinator,
		email:         email,
		notifications: notifications,
		log:           log,
		now:           time.Now,
	}
}

// RentalDays counts billable days between two calendar dates, at least one
func RentalDays(start, end time.Time) int64 {
	days := int64(end.Sub(start).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// TotalPrice is pricePerDay times the billable days, rounded to cents
func TotalPrice(pricePerDay float64, start, end time.Time) float64 {
	return decimal.NewFromFloat(pricePerDay).
		Mul(decimal.NewFromInt(RentalDays(start, end))).
		Round(2).
		InexactFloat64()
}

// Create books a motorcycle for the caller. The reservation starts pending.
func (s *ReservationService) Create(ctx context.Context, caller models.Identity, in models.ReservationInput) (models.Reservation, error) {
	in.CustomerEmail = mapper.NormalizeEmail(in.CustomerEmail)
	in.CustomerPhone = mapper.NormalizePhone(in.CustomerPhone)
	if err := validateStruct(in); err != nil {
		return models.Reservation{}, err
	}
	if !mapper.ValidatePhone(in.CustomerPhone) {
		return models.Reservation{}, &ValidationError{Err: errors.New("phone number is not valid")}
	}
	start, err := time.Parse(dateLayout, in.StartDate)
	if err != nil {
		return models.Reservation{}, &ValidationError{Err: err}
	}
	end, err := time.Parse(dateLayout, in.EndDate)
	if err != nil {
		return models.Reservation{}, &ValidationError{Err: err}
	}
	if end.Before(start) {
		return models.Reservation{}, ErrInvalidDates
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	if start.Before(today) {
		return models.Reservation{}, &ValidationError{Err: errors.New("start date is in the past")}
	}

	moto, err := s.motorcycles.Get(ctx, in.MotorcycleID)
	if err != nil {
		return models.Reservation{}, err
	}
	available, err := s.motorcycles.CheckAvailability(ctx, moto.ID, start, end)
	if err != nil {
		return models.Reservation{}, err
	}
	if !available {
		return models.Reservation{}, ErrMotorcycleUnavailable
	}

	now := s.now().UTC()
	r := models.Reservation{
		ID:            primitive.NewObjectID().Hex(),
		UserID:        caller.ID,
		MotorcycleID:  moto.ID,
		StartDate:     start,
		EndDate:       end,
		PickupTime:    in.PickupTime,
		ReturnTime:    in.ReturnTime,
		TotalPrice:    TotalPrice(moto.PricePerDay, start, end),
		Status:        models.StatusPending,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.reservations.InsertOne(ctx, mapper.ReservationToRow(r)); err != nil {
		return models.Reservation{}, err
	}

	if err := s.email.SendBookingConfirmation(ctx, r, moto.Name); err != nil {
		s.log.Errorw("failed to send booking confirmation", "reservationID", r.ID, "error", err)
	}
	_, err = s.notifications.Create(ctx, models.Notification{
		Audience:      models.AudienceAdmin,
		Type:          NotifyReservationCreated,
		Title:         "New reservation",
		Message:       fmt.Sprintf("%s booked %s from %s to %s.", r.CustomerName, moto.Name, mapper.FormatDate(start), mapper.FormatDate(end)),
		ReservationID: r.ID,
	})
	if err != nil {
		s.log.Errorw("failed to notify admins of new reservation", "reservationID", r.ID, "error", err)
	}
	return r, nil
}

// Get returns a reservation visible to requester
func (s *ReservationService) Get(ctx context.Context, id string, requester models.Identity) (models.Reservation, error) {
	row, err := s.reservations.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Reservation{}, ErrNotFound
	}
	if err != nil {
		return models.Reservation{}, err
	}
	if row.UserID != requester.ID && !requester.IsAdmin() {
		return models.Reservation{}, ErrNotFound
	}
	return mapper.ReservationFromRow(*row), nil
}

// ListByUser returns a user's reservations, newest first
func (s *ReservationService) ListByUser(ctx context.Context, userID string, limit, page int) ([]models.Reservation, error) {
	rows, err := s.reservations.Find(ctx, bson.M{"user_id": userID}, databases.NewestFirst(limit, page))
	if err != nil {
		return nil, err
	}
	return mapper.ReservationsFromRows(rows), nil
}

// ListAll returns reservations matching f, newest first
func (s *ReservationService) ListAll(ctx context.Context, f models.ReservationFilter, limit, page int) ([]models.Reservation, error) {
	filter := bson.M{}
	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, &ValidationError{Err: fmt.Errorf("unknown status %q", f.Status)}
		}
		filter["status"] = string(f.Status)
	}
	if f.MotorcycleID != "" {
		filter["motorcycle_id"] = f.MotorcycleID
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	rows, err := s.reservations.Find(ctx, filter, databases.NewestFirst(limit, page))
	if err != nil {
		return nil, err
	}
	return mapper.ReservationsFromRows(rows), nil
}

// UpdateStatus applies an admin status change
func (s *ReservationService) UpdateStatus(ctx context.Context, id string, to models.ReservationStatus, admin models.Identity, note string) (models.Reservation, error) {
	if !admin.IsAdmin() {
		return models.Reservation{}, ErrForbidden
	}
	if !to.Valid() {
		return models.Reservation{}, &ValidationError{Err: fmt.Errorf("unknown status %q", to)}
	}
	return s.coordinator.Transition(ctx, id, to, TransitionOptions{Actor: ActorAdmin, ActorID: admin.ID, Note: note})
}

// Cancel lets the owner cancel a pending or confirmed reservation
func (s *ReservationService) Cancel(ctx context.Context, id string, caller models.Identity) (models.Reservation, error) {
	return s.coordinator.Transition(ctx, id, models.StatusCancelled, TransitionOptions{Actor: ActorCustomer, ActorID: caller.ID})
}

// SendPaymentReminders emails customers whose confirmed rental starts within
// window and has no successful payment. It returns how many were sent.
func (s *ReservationService) SendPaymentReminders(ctx context.Context, window time.Duration) (int, error) {
	now := s.now().UTC()
	rows, err := s.reservations.Find(ctx, bson.M{
		"status":     string(models.StatusConfirmed),
		"start_date": bson.M{"$gte": now.Truncate(24 * time.Hour), "$lte": now.Add(window)},
	}, options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}}))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, row := range rows {
		paid, err := s.transactions.CountDocuments(ctx, bson.M{"reservation_id": row.ID, "status": models.TransactionSucceeded})
		if err != nil {
			s.log.Errorw("failed to check payments", "reservationID", row.ID, "error", err)
			continue
		}
		if paid > 0 {
			continue
		}
		motorcycleName := ""
		if moto, err := s.motorcycles.Get(ctx, row.MotorcycleID); err == nil {
			motorcycleName = moto.Name
		}
		if err := s.email.SendPaymentReminder(ctx, mapper.ReservationFromRow(row), motorcycleName); err != nil {
			s.log.Errorw("failed to send payment reminder", "reservationID", row.ID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}
