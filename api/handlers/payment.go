package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"github.com/linesmerrill/motorent-api/api"
	"github.com/linesmerrill/motorent-api/config"
	"github.com/linesmerrill/motorent-api/models"
	"github.com/linesmerrill/motorent-api/services"
)

const maxWebhookBody = 64 << 10

// TransactionService is the part of services.TransactionService the handlers use
type TransactionService interface {
	CreatePayment(ctx context.Context, reservationID string, caller models.Identity) (models.PaymentIntent, error)
	RecordOutcome(ctx context.Context, reference string, succeeded bool) error
	ListByUser(ctx context.Context, userID string, limit, page int) ([]models.Transaction, error)
	ListByReservation(ctx context.Context, reservationID string) ([]models.Transaction, error)
}

// Payment holds the payment handlers
type Payment struct {
	Service       TransactionService
	Reservations  ReservationService
	WebhookSecret string
}

// CreatePaymentHandler opens a card payment for one of the caller's reservations
func (p Payment) CreatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	intent, err := p.Service.CreatePayment(ctx, mux.Vars(r)["reservation_id"], caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, intent)
}

// MyTransactionsHandler lists the caller's payments
func (p Payment) MyTransactionsHandler(w http.ResponseWriter, r *http.Request) {
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

	list, err := p.Service.ListByUser(ctx, caller.ID, limit, page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilTransactions(list))
}

// ReservationTransactionsHandler lists payments against a reservation the caller may see
func (p Payment) ReservationTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	id := mux.Vars(r)["reservation_id"]
	// ownership check
	if _, err := p.Reservations.Get(ctx, id, caller); err != nil {
		writeError(w, err)
		return
	}
	list, err := p.Service.ListByReservation(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilTransactions(list))
}

// StripeWebhookHandler records PaymentIntent outcomes sent by Stripe
func (p Payment) StripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if p.WebhookSecret == "" {
		writeError(w, services.ErrPaymentsDisabled)
		return
	}
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		config.ErrorStatus("failed to read webhook body", http.StatusBadRequest, w, err)
		return
	}
	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), p.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		config.ErrorStatus("invalid webhook signature", http.StatusBadRequest, w, err)
		return
	}

	var succeeded bool
	switch event.Type {
	case "payment_intent.succeeded":
		succeeded = true
	case "payment_intent.payment_failed":
		succeeded = false
	default:
		w.WriteHeader(http.StatusOK)
		return
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		config.ErrorStatus("failed to decode payment intent", http.StatusBadRequest, w, err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := p.Service.RecordOutcome(ctx, intent.ID, succeeded); err != nil {
		// unknown intents are acknowledged so Stripe stops retrying
		if errors.Is(err, services.ErrNotFound) {
			w.WriteHeader(http.StatusOK)
			return
		}
		writeError(w, err)
		return
	}
	zap.S().Infow("payment outcome recorded", "reference", intent.ID, "succeeded", succeeded, "eventId", event.ID)
	w.WriteHeader(http.StatusOK)
}

func nonNilTransactions(list []models.Transaction) []models.Transaction {
	if list == nil {
		return []models.Transaction{}
	}
	return list
}
