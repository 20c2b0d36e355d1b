package models

import "time"

// Contact message status values
const (
	ContactNew     = "new"
	ContactReplied = "replied"
)

// ContactMessageRow holds the structure for the contact_messages collection in mongo
type ContactMessageRow struct {
	ID        string     `bson:"_id"`
	Name      string     `bson:"name"`
	Email     string     `bson:"email"`
	Subject   string     `bson:"subject"`
	Message   string     `bson:"message"`
	Status    string     `bson:"status"`
	Reply     string     `bson:"reply,omitempty"`
	RepliedAt *time.Time `bson:"replied_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at"`
}

// ContactInput is the public contact form
type ContactInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}
