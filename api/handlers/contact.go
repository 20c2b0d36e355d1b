package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/motorent-api/api"
	"github.com/linesmerrill/motorent-api/models"
)

// ContactService is the part of services.ContactService the handlers use
type ContactService interface {
	Submit(ctx context.Context, in models.ContactInput) (string, error)
	Reply(ctx context.Context, id, reply string) error
}

// Contact holds the contact form handlers
type Contact struct {
	Service ContactService
}

type contactResponse struct {
	ID string `json:"id"`
}

type replyRequest struct {
	Reply string `json:"reply"`
}

// SubmitContactHandler stores a public contact message
func (c Contact) SubmitContactHandler(w http.ResponseWriter, r *http.Request) {
	var in models.ContactInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	id, err := c.Service.Submit(ctx, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, contactResponse{ID: id})
}

// ReplyContactHandler emails an admin answer to a contact message
func (c Contact) ReplyContactHandler(w http.ResponseWriter, r *http.Request) {
	var in replyRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := c.Service.Reply(ctx, mux.Vars(r)["message_id"], in.Reply); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "reply sent"})
}
