package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/motorent-api/databases"
	"github.com/linesmerrill/motorent-api/mapper"
	"github.com/linesmerrill/motorent-api/models"
)

// Notification types
const (
	NotifyReservationCreated   = "reservation_created"
	NotifyReservationApproved  = "reservation_approved"
	NotifyReservationRejected  = "reservation_rejected"
	NotifyReservationCompleted = "reservation_completed"
	NotifyReservationCancelled = "reservation_cancelled"
	NotifyCustomerCancelled    = "customer_cancelled"
	NotifyDocumentReviewed     = "document_reviewed"
)

// Publisher pushes a notification to connected clients
type Publisher interface {
	Publish(n models.Notification)
}

// NotificationService stores in-app notifications and pushes them live
type NotificationService struct {
	notifications databases.NotificationDatabase
	publisher     Publisher
	log           *zap.SugaredLogger
	now           func() time.Time
}

// NewNotificationService creates a NotificationService. publisher may be nil.
func NewNotificationService(notifications databases.NotificationDatabase, publisher Publisher, log *zap.SugaredLogger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		publisher:     publisher,
		log:           log,
		now:           time.Now,
	}
}

// Create persists a notification and publishes it
func (n *NotificationService) Create(ctx context.Context, in models.Notification) (models.Notification, error) {
	row := models.NotificationRow{
		ID:            primitive.NewObjectID().Hex(),
		UserID:        in.UserID,
		Audience:      in.Audience,
		Type:          in.Type,
		Title:         in.Title,
		Message:       in.Message,
		ReservationID: in.ReservationID,
		CreatedAt:     n.now().UTC(),
	}
	if row.Audience == "" {
		row.Audience = models.AudienceUser
	}
	if err := n.notifications.InsertOne(ctx, row); err != nil {
		return models.Notification{}, err
	}
	created := mapper.NotificationFromRow(row)
	if n.publisher != nil {
		n.publisher.Publish(created)
	}
	return created, nil
}

// ListByUser returns the newest notifications addressed to userID
func (n *NotificationService) ListByUser(ctx context.Context, userID string, limit, page int) ([]models.Notification, error) {
	rows, err := n.notifications.Find(ctx, bson.M{"user_id": userID, "audience": models.AudienceUser}, databases.NewestFirst(limit, page))
	if err != nil {
		return nil, err
	}
	return mapper.NotificationsFromRows(rows), nil
}

// ListForAdmins returns the admin-facing feed
func (n *NotificationService) ListForAdmins(ctx context.Context, limit, page int) ([]models.Notification, error) {
	rows, err := n.notifications.Find(ctx, bson.M{"audience": models.AudienceAdmin}, databases.NewestFirst(limit, page))
	if err != nil {
		return nil, err
	}
	return mapper.NotificationsFromRows(rows), nil
}

// MarkRead marks one of the caller's notifications read
func (n *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	res, err := n.notifications.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAdminRead marks an admin-audience notification read
func (n *NotificationService) MarkAdminRead(ctx context.Context, id string) error {
	res, err := n.notifications.UpdateOne(ctx, bson.M{"_id": id, "audience": models.AudienceAdmin}, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
