package models

import "time"

// Transaction status values
const (
	TransactionPending   = "pending"
	TransactionSucceeded = "succeeded"
	TransactionFailed    = "failed"
)

// TransactionRow holds the structure for the transactions collection in mongo
type TransactionRow struct {
	ID                string    `bson:"_id"`
	UserID            string    `bson:"user_id"`
	ReservationID     string    `bson:"reservation_id"`
	Amount            float64   `bson:"amount"`
	Currency          string    `bson:"currency"`
	Status            string    `bson:"status"`
	PaymentMethod     string    `bson:"payment_method"`
	ProviderReference string    `bson:"provider_reference"`
	CreatedAt         time.Time `bson:"created_at"`
}

// Transaction is the application shape of a payment record
type Transaction struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	ReservationID     string    `json:"reservationId"`
	Amount            float64   `json:"amount"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	PaymentMethod     string    `json:"paymentMethod"`
	ProviderReference string    `json:"providerReference"`
	CreatedAt         time.Time `json:"createdAt"`
}

// PaymentIntent is returned to the client to complete a card payment
type PaymentIntent struct {
	Transaction  Transaction `json:"transaction"`
	ClientSecret string      `json:"clientSecret"`
}
