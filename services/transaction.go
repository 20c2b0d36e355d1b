package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/motorent-api/databases"
	"github.com/linesmerrill/motorent-api/mapper"
	"github.com/linesmerrill/motorent-api/models"
)

// PaymentGateway creates card payment intents with a payment provider
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (reference, clientSecret string, err error)
}

// StripeGateway creates Stripe PaymentIntents
type StripeGateway struct{}

// NewStripeGateway sets the Stripe key and returns a gateway
func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

// CreateIntent creates a PaymentIntent with automatic payment methods
func (g *StripeGateway) CreateIntent(_ context.Context, amountMinor int64, currency string, metadata map[string]string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", err
	}
	return pi.ID, pi.ClientSecret, nil
}

// TransactionService records payments against reservations
type TransactionService struct {
	transactions databases.TransactionDatabase
	reservations databases.ReservationDatabase
	gateway      PaymentGateway
	currency     string
	log          *zap.SugaredLogger
	now          func() time.Time
}

// NewTransactionService creates a TransactionService. A nil gateway disables payments.
func NewTransactionService(transactions databases.TransactionDatabase, reservations databases.ReservationDatabase,
	gateway PaymentGateway, currency string, log *zap.SugaredLogger) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		reservations: reservations,
		gateway:      gateway,
		currency:     currency,
		log:          log,
		now:          time.Now,
	}
}

// CreatePayment opens a card payment for the caller's reservation
func (t *TransactionService) CreatePayment(ctx context.Context, reservationID string, caller models.Identity) (models.PaymentIntent, error) {
	if t.gateway == nil {
		return models.PaymentIntent{}, ErrPaymentsDisabled
	}
	row, err := t.reservations.FindOne(ctx, bson.M{"_id": reservationID})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.PaymentIntent{}, ErrNotFound
	}
	if err != nil {
		return models.PaymentIntent{}, err
	}
	if row.UserID != caller.ID {
		return models.PaymentIntent{}, ErrNotFound
	}
	status := models.ReservationStatus(row.Status)
	if status != models.StatusPending && status != models.StatusConfirmed {
		return models.PaymentIntent{}, fmt.Errorf("%w: reservation is %s", ErrInvalidTransition, status)
	}
	paid, err := t.transactions.CountDocuments(ctx, bson.M{"reservation_id": row.ID, "status": models.TransactionSucceeded})
	if err != nil {
		return models.PaymentIntent{}, err
	}
	if paid > 0 {
		return models.PaymentIntent{}, ErrAlreadyPaid
	}

	amountMinor := decimal.NewFromFloat(row.TotalPrice).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	ref, secret, err := t.gateway.CreateIntent(ctx, amountMinor, t.currency, map[string]string{
		"reservation_id": row.ID,
		"user_id":        row.UserID,
	})
	if err != nil {
		return models.PaymentIntent{}, fmt.Errorf("failed to create payment intent: %w", err)
	}

	tx := models.TransactionRow{
		ID:                primitive.NewObjectID().Hex(),
		UserID:            row.UserID,
		ReservationID:     row.ID,
		Amount:            row.TotalPrice,
		Currency:          strings.ToUpper(t.currency),
		Status:            models.TransactionPending,
		PaymentMethod:     "card",
		ProviderReference: ref,
		CreatedAt:         t.now().UTC(),
	}
	if err := t.transactions.InsertOne(ctx, tx); err != nil {
		return models.PaymentIntent{}, err
	}
	return models.PaymentIntent{Transaction: mapper.TransactionFromRow(tx), ClientSecret: secret}, nil
}

// RecordOutcome stores the provider's final verdict on a payment
func (t *TransactionService) RecordOutcome(ctx context.Context, reference string, succeeded bool) error {
	status := models.TransactionFailed
	if succeeded {
		status = models.TransactionSucceeded
	}
	// a succeeded payment is final, events may arrive out of order
	filter := bson.M{"provider_reference": reference, "status": bson.M{"$ne": models.TransactionSucceeded}}
	res, err := t.transactions.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	settled, err := t.transactions.CountDocuments(ctx, bson.M{"provider_reference": reference})
	if err != nil {
		return err
	}
	if settled > 0 {
		t.log.Infow("ignoring payment event for settled transaction", "reference", reference, "succeeded", succeeded)
		return nil
	}
	t.log.Warnw("payment event for unknown transaction", "reference", reference)
	return ErrNotFound
}

// ListByUser returns a user's transactions, newest first
func (t *TransactionService) ListByUser(ctx context.Context, userID string, limit, page int) ([]models.Transaction, error) {
	rows, err := t.transactions.Find(ctx, bson.M{"user_id": userID}, databases.NewestFirst(limit, page))
	if err != nil {
		return nil, err
	}
	return mapper.TransactionsFromRows(rows), nil
}

// ListByReservation returns the payments made against a reservation
func (t *TransactionService) ListByReservation(ctx context.Context, reservationID string) ([]models.Transaction, error) {
	rows, err := t.transactions.Find(ctx, bson.M{"reservation_id": reservationID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return mapper.TransactionsFromRows(rows), nil
}
