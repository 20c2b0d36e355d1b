package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/linesmerrill/motorent-api/databases"
	"github.com/linesmerrill/motorent-api/mapper"
	"github.com/linesmerrill/motorent-api/models"
)

// DefaultRejectionReason is used when an admin declines a booking without a note
const DefaultRejectionReason = "Your documents could not be verified. Please upload clear copies and book again."

// Actor is who requested a transition
type Actor string

// Transition actors
const (
	ActorAdmin    Actor = "admin"
	ActorCustomer Actor = "customer"
)

// TransitionOptions describe who is changing a reservation and why
type TransitionOptions struct {
	Actor   Actor
	ActorID string
	Note    string
}

var allowedTransitions = map[models.ReservationStatus][]models.ReservationStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCompleted, models.StatusCancelled},
}

// CanTransition reports whether from -> to is an edge of the reservation lifecycle
func CanTransition(from, to models.ReservationStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Coordinator applies reservation status changes together with their side effects
// on motorcycles, documents, email and notifications
type Coordinator struct {
	reservations  databases.ReservationDatabase
	motorcycles   *MotorcycleService
	documents     *DocumentService
	email         *EmailService
	notifications *NotificationService
	log           *zap.SugaredLogger
	now           func() time.Time
}

// NewCoordinator creates a Coordinator
func NewCoordinator(reservations databases.ReservationDatabase, motorcycles *MotorcycleService, documents *DocumentService,
	email *EmailService, notifications *NotificationService, log *zap.SugaredLogger) *Coordinator {
	return &Coordinator{
		reservations:  reservations,
		motorcycles:   motorcycles,
		documents:     documents,
		email:         email,
		notifications: notifications,
		log:           log,
		now:           time.Now,
	}
}

type sagaStep struct {
	name string
	do   func(ctx context.Context) error
	undo func(ctx context.Context) error
}

// runSaga runs steps in order. When one fails the completed steps are undone in
// reverse order and the failing step's error is returned.
func (c *Coordinator) runSaga(ctx context.Context, reservationID string, steps []sagaStep) error {
	for i, step := range steps {
		if err := step.do(ctx); err != nil {
			c.compensate(ctx, reservationID, steps[:i])
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return nil
}

func (c *Coordinator) compensate(ctx context.Context, reservationID string, done []sagaStep) {
	// compensation must finish even if the request that started it is gone
	ctx = context.WithoutCancel(ctx)
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.undo == nil {
			continue
		}
		if err := step.undo(ctx); err != nil {
			sagaCompensations.WithLabelValues(step.name, "failed").Inc()
			c.log.Errorw("compensation failed, reservation needs manual repair",
				"reservationID", reservationID, "step", step.name, "error", err)
			continue
		}
		sagaCompensations.WithLabelValues(step.name, "ok").Inc()
	}
}

// Transition moves reservation id to status to. Moving to the current status is a
// no-op. Required steps (status, availability, documents) succeed together or are
// undone; emails and notifications are best-effort.
func (c *Coordinator) Transition(ctx context.Context, id string, to models.ReservationStatus, opts TransitionOptions) (models.Reservation, error) {
	row, err := c.reservations.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Reservation{}, ErrNotFound
	}
	if err != nil {
		return models.Reservation{}, err
	}
	if opts.Actor == ActorCustomer {
		if row.UserID != opts.ActorID {
			return models.Reservation{}, ErrForbidden
		}
		if to != models.StatusCancelled {
			return models.Reservation{}, ErrForbidden
		}
	}

	from := models.ReservationStatus(row.Status)
	if from == to {
		reservationTransitions.WithLabelValues(string(to), "noop").Inc()
		return mapper.ReservationFromRow(*row), nil
	}
	if !CanTransition(from, to) {
		reservationTransitions.WithLabelValues(string(to), "invalid").Inc()
		return models.Reservation{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}

	reason := ""
	reviewDocuments := opts.Actor == ActorAdmin && from == models.StatusPending
	if reviewDocuments && to == models.StatusCancelled {
		reason = opts.Note
		if reason == "" {
			reason = DefaultRejectionReason
		}
	}

	now := c.now().UTC()
	previousNotes := row.AdminNotes
	steps := []sagaStep{{
		name: "reservation_status",
		do: func(ctx context.Context) error {
			set := bson.M{"status": string(to), "updated_at": now}
			if opts.Actor == ActorAdmin && opts.Note != "" {
				set["admin_notes"] = opts.Note
			}
			res, err := c.reservations.UpdateOne(ctx, bson.M{"_id": id, "status": string(from)}, bson.M{"$set": set})
			if err != nil {
				return err
			}
			if res.MatchedCount == 0 {
				return ErrConcurrentUpdate
			}
			return nil
		},
		undo: func(ctx context.Context) error {
			_, err := c.reservations.UpdateOne(ctx, bson.M{"_id": id, "status": string(to)},
				bson.M{"$set": bson.M{"status": string(from), "admin_notes": previousNotes, "updated_at": c.now().UTC()}})
			return err
		},
	}}

	target := models.AvailabilityAvailable
	if to == models.StatusConfirmed {
		target = models.AvailabilityReserved
	}
	var previousAvailability models.Availability
	steps = append(steps, sagaStep{
		name: "motorcycle_availability",
		do: func(ctx context.Context) error {
			prev, err := c.motorcycles.SetAvailability(ctx, row.MotorcycleID, target)
			previousAvailability = prev
			return err
		},
		undo: func(ctx context.Context) error {
			if previousAvailability == "" || previousAvailability == target {
				return nil
			}
			_, err := c.motorcycles.SetAvailability(ctx, row.MotorcycleID, previousAvailability)
			return err
		},
	})

	if reviewDocuments {
		var review BulkReview
		steps = append(steps, sagaStep{
			name: "documents",
			do: func(ctx context.Context) error {
				status, why := models.DocumentApproved, ""
				if to != models.StatusConfirmed {
					status, why = models.DocumentRejected, reason
				}
				var err error
				review, err = c.documents.ReviewPending(ctx, row.UserID, status, why)
				return err
			},
			undo: func(ctx context.Context) error {
				return c.documents.RevertBulkReview(ctx, review)
			},
		})
	}

	if err := c.runSaga(ctx, id, steps); err != nil {
		reservationTransitions.WithLabelValues(string(to), "failed").Inc()
		if errors.Is(err, ErrConcurrentUpdate) {
			return models.Reservation{}, ErrConcurrentUpdate
		}
		return models.Reservation{}, fmt.Errorf("failed to move reservation %s to %s: %w", id, to, err)
	}
	reservationTransitions.WithLabelValues(string(to), "ok").Inc()

	row.Status = string(to)
	row.UpdatedAt = now
	if opts.Actor == ActorAdmin && opts.Note != "" {
		row.AdminNotes = opts.Note
	}
	updated := mapper.ReservationFromRow(*row)
	c.afterTransition(ctx, updated, from, opts.Actor, reason)
	return updated, nil
}

// afterTransition sends the email and notifications for a committed transition.
// Nothing here can undo the transition.
func (c *Coordinator) afterTransition(ctx context.Context, r models.Reservation, from models.ReservationStatus, actor Actor, reason string) {
	motorcycleName := ""
	if moto, err := c.motorcycles.Get(ctx, r.MotorcycleID); err == nil {
		motorcycleName = moto.Name
	}
	period := fmt.Sprintf("%s to %s", mapper.FormatDate(r.StartDate), mapper.FormatDate(r.EndDate))

	var emailErr error
	var notice models.Notification
	switch {
	case r.Status == models.StatusConfirmed:
		emailErr = c.email.SendBookingApproved(ctx, r, motorcycleName)
		notice = models.Notification{
			Type:    NotifyReservationApproved,
			Title:   "Reservation approved",
			Message: fmt.Sprintf("Your reservation for %s (%s) is confirmed and your documents have been verified.", motorcycleName, period),
		}
	case r.Status == models.StatusCancelled && actor == ActorAdmin && from == models.StatusPending:
		emailErr = c.email.SendBookingRejected(ctx, r, motorcycleName, reason)
		notice = models.Notification{
			Type:    NotifyReservationRejected,
			Title:   "Reservation not approved",
			Message: fmt.Sprintf("Your reservation for %s (%s) was not approved and your pending documents were rejected: %s", motorcycleName, period, reason),
		}
	case r.Status == models.StatusCompleted:
		notice = models.Notification{
			Type:    NotifyReservationCompleted,
			Title:   "Rental completed",
			Message: fmt.Sprintf("Thanks for riding with us! Your rental of %s (%s) is complete.", motorcycleName, period),
		}
	default:
		notice = models.Notification{
			Type:    NotifyReservationCancelled,
			Title:   "Reservation cancelled",
			Message: fmt.Sprintf("Your reservation for %s (%s) has been cancelled.", motorcycleName, period),
		}
	}
	if emailErr != nil {
		c.log.Errorw("failed to send reservation email", "reservationID", r.ID, "status", r.Status, "error", emailErr)
	}

	notice.UserID = r.UserID
	notice.Audience = models.AudienceUser
	notice.ReservationID = r.ID
	if _, err := c.notifications.Create(ctx, notice); err != nil {
		c.log.Errorw("failed to create reservation notification", "reservationID", r.ID, "status", r.Status, "error", err)
	}

	if actor == ActorCustomer {
		_, err := c.notifications.Create(ctx, models.Notification{
			Audience:      models.AudienceAdmin,
			Type:          NotifyCustomerCancelled,
			Title:         "Customer cancelled a reservation",
			Message:       fmt.Sprintf("%s cancelled their reservation for %s (%s).", r.CustomerName, motorcycleName, period),
			ReservationID: r.ID,
		})
		if err != nil {
			c.log.Errorw("failed to create admin cancellation notification", "reservationID", r.ID, "error", err)
		}
	}
}
