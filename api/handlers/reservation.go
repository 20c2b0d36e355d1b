package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/motorent-api/api"
	"github.com/linesmerrill/motorent-api/models"
)

// ReservationService is the part of services.ReservationService the handlers use
type ReservationService interface {
	Create(ctx context.Context, caller models.Identity, in models.ReservationInput) (models.Reservation, error)
	Get(ctx context.Context, id string, requester models.Identity) (models.Reservation, error)
	ListByUser(ctx context.Context, userID string, limit, page int) ([]models.Reservation, error)
	ListAll(ctx context.Context, f models.ReservationFilter, limit, page int) ([]models.Reservation, error)
	UpdateStatus(ctx context.Context, id string, to models.ReservationStatus, admin models.Identity, note string) (models.Reservation, error)
	Cancel(ctx context.Context, id string, caller models.Identity) (models.Reservation, error)
}

// Reservation holds the booking handlers
type Reservation struct {
	Service ReservationService
}

type statusRequest struct {
	Status models.ReservationStatus `json:"status"`
	Note   string                   `json:"note"`
}

// CreateReservationHandler books a motorcycle for the caller
func (re Reservation) CreateReservationHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	var in models.ReservationInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := re.Service.Create(ctx, caller, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// MyReservationsHandler lists the caller's bookings
func (re Reservation) MyReservationsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	limit, page, err := pagination(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := re.Service.ListByUser(ctx, caller.ID, limit, page)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []models.Reservation{}
	}
	writeJSON(w, http.StatusOK, list)
}

// ReservationByIDHandler returns a booking owned by the caller, or any booking for admins
func (re Reservation) ReservationByIDHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := re.Service.Get(ctx, mux.Vars(r)["reservation_id"], caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CancelReservationHandler lets a customer cancel their own pending or confirmed booking
func (re Reservation) CancelReservationHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := re.Service.Cancel(ctx, mux.Vars(r)["reservation_id"], caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// AllReservationsHandler lists every booking for admins, filterable by status, motorcycle and user
func (re Reservation) AllReservationsHandler(w http.ResponseWriter, r *http.Request) {
	limit, page, err := pagination(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	f := models.ReservationFilter{
		Status:       models.ReservationStatus(q.Get("status")),
		MotorcycleID: q.Get("motorcycleId"),
		UserID:       q.Get("userId"),
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := re.Service.ListAll(ctx, f, limit, page)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []models.Reservation{}
	}
	writeJSON(w, http.StatusOK, list)
}

// UpdateStatusHandler runs an admin status transition through the coordinator
func (re Reservation) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	var in statusRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := re.Service.UpdateStatus(ctx, mux.Vars(r)["reservation_id"], in.Status, caller, in.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
