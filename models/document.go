package models

import "time"

// DocumentStatus is the verification state of an uploaded document
type DocumentStatus string

// Document status values
const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

// Document types accepted for verification
const (
	DocumentDriversLicense = "drivers_license"
	DocumentValidID        = "valid_id"
)

// DocumentRow holds the structure for the document_verifications collection in mongo
type DocumentRow struct {
	ID              string     `bson:"_id"`
	UserID          string     `bson:"user_id"`
	DocumentType    string     `bson:"document_type"`
	DocumentURL     string     `bson:"document_url"`
	StoragePath     string     `bson:"storage_path"`
	Status          string     `bson:"status"`
	RejectionReason string     `bson:"rejection_reason,omitempty"`
	ReviewedAt      *time.Time `bson:"reviewed_at,omitempty"`
	ReviewBatch     string     `bson:"review_batch,omitempty"`
	CreatedAt       time.Time  `bson:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at"`
}

// Document is the application shape of a verification document
type Document struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	DocumentType    string         `json:"documentType"`
	DocumentURL     string         `json:"documentUrl"`
	Status          DocumentStatus `json:"status"`
	RejectionReason string         `json:"rejectionReason,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewedAt,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}
