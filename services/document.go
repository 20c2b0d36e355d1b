package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/motorent-api/databases"
	"github.com/linesmerrill/motorent-api/mapper"
	"github.com/linesmerrill/motorent-api/models"
)

// DocumentService handles identity document uploads and review
type DocumentService struct {
	documents     databases.DocumentDatabase
	users         databases.UserDatabase
	storage       *StorageService
	email         *EmailService
	notifications *NotificationService
	log           *zap.SugaredLogger
	now           func() time.Time
}

// NewDocumentService creates a DocumentService
func NewDocumentService(documents databases.DocumentDatabase, users databases.UserDatabase, storage *StorageService,
	email *EmailService, notifications *NotificationService, log *zap.SugaredLogger) *DocumentService {
	return &DocumentService{
		documents:     documents,
		users:         users,
		storage:       storage,
		email:         email,
		notifications: notifications,
		log:           log,
		now:           time.Now,
	}
}

// Upload stores a document in the private bucket and records it as pending review
func (d *DocumentService) Upload(ctx context.Context, userID, documentType string, f Upload) (models.Document, error) {
	if documentType != models.DocumentDriversLicense && documentType != models.DocumentValidID {
		return models.Document{}, &ValidationError{Err: fmt.Errorf("unknown document type %q", documentType)}
	}
	obj, err := d.storage.UploadDocument(ctx, userID, f)
	if err != nil {
		return models.Document{}, err
	}
	now := d.now().UTC()
	row := models.DocumentRow{
		ID:           primitive.NewObjectID().Hex(),
		UserID:       userID,
		DocumentType: documentType,
		DocumentURL:  obj.URL,
		StoragePath:  obj.Path,
		Status:       string(models.DocumentPending),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := d.documents.InsertOne(ctx, row); err != nil {
		return models.Document{}, err
	}
	return mapper.DocumentFromRow(row), nil
}

// ListByUser returns a user's documents, newest first
func (d *DocumentService) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	rows, err := d.documents.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return mapper.DocumentsFromRows(rows), nil
}

// ListByStatus returns documents awaiting or past review, oldest first
func (d *DocumentService) ListByStatus(ctx context.Context, status models.DocumentStatus) ([]models.Document, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = string(status)
	}
	rows, err := d.documents.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return mapper.DocumentsFromRows(rows), nil
}

// SignedURL returns a viewing link for the owner or an admin
func (d *DocumentService) SignedURL(ctx context.Context, id string, requester models.Identity) (string, error) {
	row, err := d.documents.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if row.UserID != requester.ID && !requester.IsAdmin() {
		return "", ErrForbidden
	}
	return d.storage.SignedURL(row.StoragePath)
}

// Approve marks one document approved and tells its owner
func (d *DocumentService) Approve(ctx context.Context, id string) (models.Document, error) {
	return d.review(ctx, id, models.DocumentApproved, "")
}

// Reject marks one document rejected with a reason and tells its owner
func (d *DocumentService) Reject(ctx context.Context, id, reason string) (models.Document, error) {
	if reason == "" {
		return models.Document{}, &ValidationError{Err: errors.New("a rejection reason is required")}
	}
	return d.review(ctx, id, models.DocumentRejected, reason)
}

func (d *DocumentService) review(ctx context.Context, id string, status models.DocumentStatus, reason string) (models.Document, error) {
	row, err := d.documents.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Document{}, ErrNotFound
	}
	if err != nil {
		return models.Document{}, err
	}

	now := d.now().UTC()
	set := bson.M{"status": string(status), "reviewed_at": now, "updated_at": now}
	unset := bson.M{"review_batch": ""}
	if status == models.DocumentRejected {
		set["rejection_reason"] = reason
	} else {
		unset["rejection_reason"] = ""
	}
	update := bson.M{"$set": set, "$unset": unset}
	if _, err := d.documents.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return models.Document{}, err
	}
	row.Status = string(status)
	row.RejectionReason = reason
	row.ReviewBatch = ""
	row.ReviewedAt = &now
	row.UpdatedAt = now

	d.notifyReview(ctx, row)
	return mapper.DocumentFromRow(*row), nil
}

// notifyReview emails and notifies the owner. Failures are logged only.
func (d *DocumentService) notifyReview(ctx context.Context, row *models.DocumentRow) {
	owner, err := d.users.FindOne(ctx, bson.M{"_id": row.UserID})
	if err != nil {
		d.log.Errorw("failed to load document owner", "documentID", row.ID, "error", err)
		return
	}
	title := "Document approved"
	message := "Your document has been verified."
	if row.Status == string(models.DocumentRejected) {
		err = d.email.SendDocumentRejected(ctx, owner.Email, owner.FullName, row.DocumentType, row.RejectionReason)
		title = "Document rejected"
		message = "Your document was rejected: " + row.RejectionReason
	} else {
		err = d.email.SendDocumentApproved(ctx, owner.Email, owner.FullName, row.DocumentType)
	}
	if err != nil {
		d.log.Errorw("failed to send document review email", "documentID", row.ID, "error", err)
	}
	if _, err := d.notifications.Create(ctx, models.Notification{
		UserID:  row.UserID,
		Type:    NotifyDocumentReviewed,
		Title:   title,
		Message: message,
	}); err != nil {
		d.log.Errorw("failed to create document review notification", "documentID", row.ID, "error", err)
	}
}

// BulkReview records one bulk decision so it can be undone without touching later reviews
type BulkReview struct {
	UserID string
	Batch  string
	Status models.DocumentStatus
	IDs    []string
}

// BulkApprovePending approves every pending document of userID and returns the ids it changed
func (d *DocumentService) BulkApprovePending(ctx context.Context, userID string) ([]string, error) {
	b, err := d.ReviewPending(ctx, userID, models.DocumentApproved, "")
	return b.IDs, err
}

// BulkRejectPending rejects every pending document of userID with reason and returns the ids it changed
func (d *DocumentService) BulkRejectPending(ctx context.Context, userID, reason string) ([]string, error) {
	b, err := d.ReviewPending(ctx, userID, models.DocumentRejected, reason)
	return b.IDs, err
}

// ReviewPending moves every pending document of userID to status. The write is
// tagged with a batch id and only the documents this call changed are returned.
func (d *DocumentService) ReviewPending(ctx context.Context, userID string, status models.DocumentStatus, reason string) (BulkReview, error) {
	b := BulkReview{UserID: userID, Status: status}
	rows, err := d.documents.Find(ctx, bson.M{"user_id": userID, "status": string(models.DocumentPending)}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return b, err
	}
	if len(rows) == 0 {
		return b, nil
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	batch := primitive.NewObjectID().Hex()
	now := d.now().UTC()
	set := bson.M{"status": string(status), "review_batch": batch, "reviewed_at": now, "updated_at": now}
	if status == models.DocumentRejected {
		set["rejection_reason"] = reason
	}
	res, err := d.documents.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "status": string(models.DocumentPending)},
		bson.M{"$set": set})
	if err != nil {
		return b, err
	}
	if res.ModifiedCount == 0 {
		return b, nil
	}
	b.Batch = batch
	if res.ModifiedCount == int64(len(ids)) {
		b.IDs = ids
		return b, nil
	}

	// part of the set was reviewed in between, report only what this batch wrote
	rows, err = d.documents.Find(ctx, bson.M{"user_id": userID, "review_batch": batch}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		if rerr := d.RevertBulkReview(ctx, b); rerr != nil {
			d.log.Errorw("failed to revert bulk document review", "userID", userID, "batch", batch, "error", rerr)
		}
		return BulkReview{UserID: userID, Status: status}, err
	}
	for _, r := range rows {
		b.IDs = append(b.IDs, r.ID)
	}
	return b, nil
}

// RevertBulkReview puts the documents of a bulk review back to pending. Documents
// reviewed again since then no longer carry the batch and are left alone.
func (d *DocumentService) RevertBulkReview(ctx context.Context, b BulkReview) error {
	if b.Batch == "" {
		return nil
	}
	_, err := d.documents.UpdateMany(ctx,
		bson.M{"user_id": b.UserID, "review_batch": b.Batch, "status": string(b.Status)},
		bson.M{
			"$set":   bson.M{"status": string(models.DocumentPending), "updated_at": d.now().UTC()},
			"$unset": bson.M{"rejection_reason": "", "reviewed_at": "", "review_batch": ""},
		})
	return err
}
