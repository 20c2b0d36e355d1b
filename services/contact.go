package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/linesmerrill/motorent-api/databases"
	"github.com/linesmerrill/motorent-api/mapper"
	"github.com/linesmerrill/motorent-api/models"
)

// ContactService handles the public contact form
type ContactService struct {
	messages databases.ContactDatabase
	email    *EmailService
	log      *zap.SugaredLogger
	now      func() time.Time
}

// NewContactService creates a ContactService
func NewContactService(messages databases.ContactDatabase, email *EmailService, log *zap.SugaredLogger) *ContactService {
	return &ContactService{messages: messages, email: email, log: log, now: time.Now}
}

// Submit stores a message, acknowledges it to the sender and forwards it to the admin inbox.
// Email failures are logged; the message is kept either way.
func (c *ContactService) Submit(ctx context.Context, in models.ContactInput) (string, error) {
	in.Email = mapper.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return "", err
	}
	row := models.ContactMessageRow{
		ID:        primitive.NewObjectID().Hex(),
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		Status:    models.ContactNew,
		CreatedAt: c.now().UTC(),
	}
	if err := c.messages.InsertOne(ctx, row); err != nil {
		return "", err
	}
	if err := c.email.SendContactAcknowledgment(ctx, in); err != nil {
		c.log.Errorw("failed to acknowledge contact message", "messageID", row.ID, "error", err)
	}
	if err := c.email.SendContactForward(ctx, in); err != nil {
		c.log.Errorw("failed to forward contact message", "messageID", row.ID, "error", err)
	}
	return row.ID, nil
}

// Reply emails an admin's answer and marks the message replied. A failed send
// leaves the message unreplied.
func (c *ContactService) Reply(ctx context.Context, id, reply string) error {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return &ValidationError{Err: errors.New("reply must not be empty")}
	}
	row, err := c.messages.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := c.email.SendAdminReply(ctx, row.Email, row.Name, row.Subject, reply); err != nil {
		return err
	}
	now := c.now().UTC()
	_, err = c.messages.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     models.ContactReplied,
		"reply":      reply,
		"replied_at": now,
	}})
	return err
}
