package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/motorent-api/api"
	"github.com/linesmerrill/motorent-api/models"
	"github.com/linesmerrill/motorent-api/services"
)

// DocumentService is the part of services.DocumentService the handlers use
type DocumentService interface {
	Upload(ctx context.Context, userID, documentType string, f services.Upload) (models.Document, error)
	ListByUser(ctx context.Context, userID string) ([]models.Document, error)
	ListByStatus(ctx context.Context, status models.DocumentStatus) ([]models.Document, error)
	SignedURL(ctx context.Context, id string, requester models.Identity) (string, error)
	Approve(ctx context.Context, id string) (models.Document, error)
	Reject(ctx context.Context, id, reason string) (models.Document, error)
	BulkApprovePending(ctx context.Context, userID string) ([]string, error)
	BulkRejectPending(ctx context.Context, userID, reason string) ([]string, error)
}

// Document holds the verification document handlers
type Document struct {
	Service DocumentService
}

type reviewRequest struct {
	Reason string `json:"reason"`
}

type signedURLResponse struct {
	URL string `json:"url"`
}

type bulkReviewResponse struct {
	UserID      string   `json:"userId"`
	DocumentIDs []string `json:"documentIds"`
}

// UploadDocumentHandler stores a driver's license or valid id for review.
// The multipart form carries a "file" and a "documentType" field.
func (d Document) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	upload, cleanup, ok := readUpload(w, r, "file")
	if !ok {
		return
	}
	defer cleanup()

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doc, err := d.Service.Upload(ctx, caller.ID, r.FormValue("documentType"), upload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// MyDocumentsHandler lists the caller's uploads
func (d Document) MyDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	docs, err := d.Service.ListByUser(ctx, caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilDocuments(docs))
}

// DocumentURLHandler returns a short-lived link to a private document
func (d Document) DocumentURLHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	url, err := d.Service.SignedURL(ctx, mux.Vars(r)["document_id"], caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, signedURLResponse{URL: url})
}

// DocumentsByStatusHandler lists documents for review, pending by default
func (d Document) DocumentsByStatusHandler(w http.ResponseWriter, r *http.Request) {
	status := models.DocumentStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.DocumentPending
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	docs, err := d.Service.ListByStatus(ctx, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilDocuments(docs))
}

// UserDocumentsHandler lists one user's documents for admins
func (d Document) UserDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	docs, err := d.Service.ListByUser(ctx, mux.Vars(r)["user_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilDocuments(docs))
}

// ApproveDocumentHandler approves one document and emails its owner
func (d Document) ApproveDocumentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doc, err := d.Service.Approve(ctx, mux.Vars(r)["document_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// RejectDocumentHandler rejects one document with a reason and emails its owner
func (d Document) RejectDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var in reviewRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doc, err := d.Service.Reject(ctx, mux.Vars(r)["document_id"], in.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// BulkApproveHandler approves every pending document of a user
func (d Document) BulkApproveHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ids, err := d.Service.BulkApprovePending(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bulkReviewResponse{UserID: userID, DocumentIDs: nonNilStrings(ids)})
}

// BulkRejectHandler rejects every pending document of a user
func (d Document) BulkRejectHandler(w http.ResponseWriter, r *http.Request) {
	var in reviewRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	userID := mux.Vars(r)["user_id"]
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ids, err := d.Service.BulkRejectPending(ctx, userID, in.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bulkReviewResponse{UserID: userID, DocumentIDs: nonNilStrings(ids)})
}

func nonNilDocuments(docs []models.Document) []models.Document {
	if docs == nil {
		return []models.Document{}
	}
	return docs
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
