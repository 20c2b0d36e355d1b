package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the service layer. Handlers map them to HTTP statuses.
var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrEmailAlreadyRegistered = errors.New("email is already registered")
	ErrEmailNotVerified       = errors.New("email not verified")
	ErrMobileOnlyAccount      = errors.New("this account was created on the mobile app and has no password; sign in there or reset your password")
	ErrInvalidCode            = errors.New("invalid or expired verification code")
	ErrInvalidResetToken      = errors.New("invalid or expired password reset token")
	ErrInvalidTransition      = errors.New("invalid reservation status transition")
	ErrConcurrentUpdate       = errors.New("reservation was modified by someone else, reload and try again")
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
	ErrInUse                  = errors.New("record is still referenced by reservations")
	ErrMotorcycleUnavailable  = errors.New("motorcycle is not available for the selected dates")
	ErrInvalidDates           = errors.New("end date must not be before start date")
	ErrFileTooLarge           = errors.New("file is too large, the maximum size is 5 MB")
	ErrUnsupportedFileType    = errors.New("unsupported file type, use JPEG, PNG, WEBP or GIF")
	ErrPaymentsDisabled       = errors.New("payments are not configured")
	ErrStorageDisabled        = errors.New("file storage is not configured")
	ErrAlreadyPaid            = errors.New("reservation is already paid")
	ErrMailerNotConfigured    = errors.New("email provider is not configured")
)

// EmailDeliveryError reports that a message could not be handed to the email transport
type EmailDeliveryError struct {
	Template string
	Err      error
}

func (e *EmailDeliveryError) Error() string {
	return fmt.Sprintf("failed to send %s email: %v", e.Template, e.Err)
}

func (e *EmailDeliveryError) Unwrap() error {
	return e.Err
}

// ValidationError wraps a payload that failed field validation
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
