package models

import "time"

// Notification audiences
const (
	AudienceUser  = "user"
	AudienceAdmin = "admin"
)

// NotificationRow holds the structure for the notifications collection in mongo
type NotificationRow struct {
	ID            string    `bson:"_id"`
	UserID        string    `bson:"user_id,omitempty"`
	Audience      string    `bson:"audience"`
	Type          string    `bson:"type"`
	Title         string    `bson:"title"`
	Message       string    `bson:"message"`
	ReservationID string    `bson:"reservation_id,omitempty"`
	IsRead        bool      `bson:"is_read"`
	CreatedAt     time.Time `bson:"created_at"`
}

// Notification is the application shape of an in-app notice
type Notification struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId,omitempty"`
	Audience      string    `json:"audience"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	ReservationID string    `json:"reservationId,omitempty"`
	IsRead        bool      `json:"isRead"`
	CreatedAt     time.Time `json:"createdAt"`
}
