package models

import "time"

// ReservationStatus is the lifecycle state of a reservation
type ReservationStatus string

// Reservation status values
const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
)

// Valid reports whether s is one of the known reservation statuses
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// ReservationRow holds the structure for the reservations collection in mongo
type ReservationRow struct {
	ID            string    `bson:"_id"`
	UserID        string    `bson:"user_id"`
	MotorcycleID  string    `bson:"motorcycle_id"`
	StartDate     time.Time `bson:"start_date"`
	EndDate       time.Time `bson:"end_date"`
	PickupTime    string    `bson:"pickup_time,omitempty"`
	ReturnTime    string    `bson:"return_time,omitempty"`
	TotalPrice    float64   `bson:"total_price"`
	Status        string    `bson:"status"`
	CustomerName  string    `bson:"customer_name"`
	CustomerEmail string    `bson:"customer_email"`
	CustomerPhone string    `bson:"customer_phone"`
	AdminNotes    string    `bson:"admin_notes,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

// Reservation is the application shape of a booking
type Reservation struct {
	ID            string            `json:"id"`
	UserID        string            `json:"userId"`
	MotorcycleID  string            `json:"motorcycleId"`
	StartDate     time.Time         `json:"startDate"`
	EndDate       time.Time         `json:"endDate"`
	PickupTime    string            `json:"pickupTime,omitempty"`
	ReturnTime    string            `json:"returnTime,omitempty"`
	TotalPrice    float64           `json:"totalPrice"`
	Status        ReservationStatus `json:"status"`
	CustomerName  string            `json:"customerName"`
	CustomerEmail string            `json:"customerEmail"`
	CustomerPhone string            `json:"customerPhone"`
	AdminNotes    string            `json:"adminNotes,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// ReservationInput is the booking form submitted by a customer
type ReservationInput struct {
	MotorcycleID  string `json:"motorcycleId" validate:"required"`
	StartDate     string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate       string `json:"endDate" validate:"required,datetime=2006-01-02"`
	PickupTime    string `json:"pickupTime" validate:"omitempty,datetime=15:04"`
	ReturnTime    string `json:"returnTime" validate:"omitempty,datetime=15:04"`
	CustomerName  string `json:"customerName" validate:"required,max=120"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
	CustomerPhone string `json:"customerPhone" validate:"required"`
}

// ReservationFilter narrows the admin reservation listing
type ReservationFilter struct {
	Status       ReservationStatus `json:"status,omitempty"`
	MotorcycleID string            `json:"motorcycleId,omitempty"`
	UserID       string            `json:"userId,omitempty"`
}
