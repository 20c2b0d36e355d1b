package services_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/motorent-api/models"
	"github.com/linesmerrill/motorent-api/services"
)

func TestDocumentUpload(t *testing.T) {
	f := newFixture(t)
	f.store.On("Put", mock.Anything, mock.Anything).Return(services.StoredObject{Path: "driver-documents/U1/a", URL: "https://cdn.test/a"}, nil)
	f.documents.On("InsertOne", mock.Anything, mock.MatchedBy(func(d models.DocumentRow) bool {
		return d.UserID == "U1" && d.Status == "pending" && d.StoragePath == "driver-documents/U1/a"
	})).Return(nil)

	doc, err := f.svc.Documents.Upload(context.Background(), "U1", models.DocumentDriversLicense, services.Upload{
		Filename: "l.png", ContentType: "image/png", Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentPending, doc.Status)

	var verr *services.ValidationError
	_, err = f.svc.Documents.Upload(context.Background(), "U1", "passport_selfie", services.Upload{})
	assert.ErrorAs(t, err, &verr)
}

func TestDocumentSignedURL_OwnerOrAdmin(t *testing.T) {
	f := newFixture(t)
	f.documents.On("FindOne", mock.Anything, bson.M{"_id": "D1"}).Return(&models.DocumentRow{ID: "D1", UserID: "U1", StoragePath: "driver-documents/U1/a"}, nil)
	f.store.On("URL", "driver-documents/U1/a", true).Return("https://cdn.test/signed", nil)

	url, err := f.svc.Documents.SignedURL(context.Background(), "D1", customer)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/signed", url)

	_, err = f.svc.Documents.SignedURL(context.Background(), "D1", models.Identity{ID: "U2", Role: models.RoleCustomer})
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = f.svc.Documents.SignedURL(context.Background(), "D1", models.Identity{ID: "A1", Role: models.RoleAdmin})
	assert.NoError(t, err)
}

func TestDocumentReject_NotifiesOwner(t *testing.T) {
	f := newFixture(t)
	f.documents.On("FindOne", mock.Anything, bson.M{"_id": "D1"}).
		Return(&models.DocumentRow{ID: "D1", UserID: "U1", DocumentType: models.DocumentValidID, Status: "pending"}, nil)
	f.documents.On("UpdateOne", mock.Anything, bson.M{"_id": "D1"}, mock.MatchedBy(func(u bson.M) bool {
		set := u["$set"].(bson.M)
		return set["status"] == "rejected" && set["rejection_reason"] == "expired ID"
	})).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)
	f.users.On("FindOne", mock.Anything, bson.M{"_id": "U1"}).Return(&models.UserRow{ID: "U1", Email: "una@example.com", FullName: "Una"}, nil)
	f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m services.Message) bool {
		return m.ToEmail == "una@example.com"
	})).Return(nil)
	f.notifications.On("InsertOne", mock.Anything, mock.MatchedBy(func(n models.NotificationRow) bool {
		return n.Type == services.NotifyDocumentReviewed && n.UserID == "U1"
	})).Return(nil)
	f.publisher.On("Publish", mock.Anything).Return()

	doc, err := f.svc.Documents.Reject(context.Background(), "D1", "expired ID")
	require.NoError(t, err)
	assert.Equal(t, models.DocumentRejected, doc.Status)
	assert.Equal(t, "expired ID", doc.RejectionReason)
	f.mailer.AssertNumberOfCalls(t, "Send", 1)

	var verr *services.ValidationError
	_, err = f.svc.Documents.Reject(context.Background(), "D1", "")
	assert.ErrorAs(t, err, &verr)
}

func TestDocumentApprove_Missing(t *testing.T) {
	f := newFixture(t)
	f.documents.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	_, err := f.svc.Documents.Approve(context.Background(), "nope")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestBulkApprovePending_NothingPending(t *testing.T) {
	f := newFixture(t)
	f.documents.On("Find", mock.Anything, mock.Anything, mock.Anything).Return([]models.DocumentRow{}, nil)

	ids, err := f.svc.Documents.BulkApprovePending(context.Background(), "U1")
	require.NoError(t, err)
	assert.Empty(t, ids)
	f.documents.AssertNotCalled(t, "UpdateMany", mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, f.svc.Documents.RevertBulkReview(context.Background(), services.BulkReview{UserID: "U1"}))
	f.documents.AssertNotCalled(t, "UpdateMany", mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewPending_ReportsOnlyItsOwnWrites(t *testing.T) {
	f := newFixture(t)
	pending := bson.M{"user_id": "U1", "status": "pending"}
	f.documents.On("Find", mock.Anything, pending, mock.Anything).Return([]models.DocumentRow{{ID: "D1"}, {ID: "D2"}}, nil)
	var batch string
	f.documents.On("UpdateMany", mock.Anything, mock.Anything, mock.MatchedBy(func(u bson.M) bool {
		batch, _ = u["$set"].(bson.M)["review_batch"].(string)
		return batch != ""
	})).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	f.documents.On("Find", mock.Anything, mock.MatchedBy(func(filter bson.M) bool {
		return filter["review_batch"] != nil && filter["review_batch"] == batch
	}), mock.Anything).Return([]models.DocumentRow{{ID: "D1"}}, nil)

	b, err := f.svc.Documents.ReviewPending(context.Background(), "U1", models.DocumentApproved, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"D1"}, b.IDs)
	assert.Equal(t, batch, b.Batch)
	assert.Equal(t, models.DocumentApproved, b.Status)
}

func TestRevertBulkReview_KeepsLaterDecisions(t *testing.T) {
	f := newFixture(t)
	w := newRentalWorld(t, f)
	ctx := context.Background()

	b, err := f.svc.Documents.ReviewPending(ctx, "U1", models.DocumentApproved, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"D1", "D2"}, b.IDs)
	assert.Equal(t, "approved", w.docStatus("D2"))

	// a second admin rejects D2 on its own before the bulk approval is undone
	w.mu.Lock()
	w.documents["D2"].Status = "rejected"
	w.documents["D2"].ReviewBatch = ""
	w.mu.Unlock()

	require.NoError(t, f.svc.Documents.RevertBulkReview(ctx, b))
	assert.Equal(t, "pending", w.docStatus("D1"))
	assert.Empty(t, w.documents["D1"].ReviewBatch)
	assert.Equal(t, "rejected", w.docStatus("D2"))
	assert.Equal(t, "approved", w.docStatus("D3"))
	assert.Equal(t, "pending", w.docStatus("D9"))
}

func TestDocumentReview_ClearsBatch(t *testing.T) {
	f := newFixture(t)
	f.documents.On("FindOne", mock.Anything, bson.M{"_id": "D1"}).
		Return(&models.DocumentRow{ID: "D1", UserID: "U1", Status: "approved", ReviewBatch: "b1"}, nil)
	f.documents.On("UpdateOne", mock.Anything, bson.M{"_id": "D1"}, mock.MatchedBy(func(u bson.M) bool {
		unset, ok := u["$unset"].(bson.M)
		_, cleared := unset["review_batch"]
		return ok && cleared
	})).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)
	f.users.On("FindOne", mock.Anything, mock.Anything).Return(&models.UserRow{ID: "U1", Email: "una@example.com"}, nil)
	f.mailer.On("Send", mock.Anything, mock.Anything).Return(nil)
	f.notifications.On("InsertOne", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything).Return()

	_, err := f.svc.Documents.Reject(context.Background(), "D1", "glare on photo")
	require.NoError(t, err)
	f.documents.AssertNumberOfCalls(t, "UpdateOne", 1)
}
