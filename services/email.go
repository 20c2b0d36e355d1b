package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/motorent-api/config"
	"github.com/linesmerrill/motorent-api/mapper"
	"github.com/linesmerrill/motorent-api/models"
	templates "github.com/linesmerrill/motorent-api/templates/html"
)

// Message is one outbound email, already rendered
type Message struct {
	ToEmail string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Mailer hands a rendered message to an email transport
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer picks the transport named by EMAIL_PROVIDER. The console mailer logs
// message bodies and is refused in production.
func NewMailer(conf *config.Config, log *zap.SugaredLogger) (Mailer, error) {
	from := sender{email: conf.EmailFrom, name: conf.EmailFromName}
	provider := strings.ToLower(conf.EmailProvider)
	switch provider {
	case "sendgrid":
		if conf.SendgridAPIKey == "" {
			return nil, fmt.Errorf("%w: sendgrid needs SENDGRID_API_KEY", ErrMailerNotConfigured)
		}
		return newSendgridMailer(conf.SendgridAPIKey, from), nil
	case "resend":
		if conf.ResendAPIKey == "" {
			return nil, fmt.Errorf("%w: resend needs RESEND_API_KEY", ErrMailerNotConfigured)
		}
		return newResendMailer(conf.ResendAPIKey, from), nil
	case "smtp":
		if conf.SMTPHost == "" {
			return nil, fmt.Errorf("%w: smtp needs SMTP_HOST", ErrMailerNotConfigured)
		}
		return newSMTPMailer(conf.SMTPHost, conf.SMTPPort, conf.SMTPUsername, conf.SMTPPassword, from), nil
	case "function":
		if conf.EmailFunctionURL == "" {
			return nil, fmt.Errorf("%w: function needs EMAIL_FUNCTION_URL", ErrMailerNotConfigured)
		}
		return NewFunctionMailer(conf.EmailFunctionURL, conf.EmailFunctionKey, nil), nil
	case "console", "":
		if conf.Environment == "production" {
			return nil, fmt.Errorf("%w: the console mailer is not allowed in production", ErrMailerNotConfigured)
		}
		return NewConsoleMailer(log), nil
	}
	return nil, fmt.Errorf("%w: unknown provider %q", ErrMailerNotConfigured, conf.EmailProvider)
}

type sender struct {
	email string
	name  string
}

// EmailService renders templates and sends them through the configured Mailer
type EmailService struct {
	mailer         Mailer
	log            *zap.SugaredLogger
	adminEmail     string
	baseURL        string
	currencySymbol string
}

// NewEmailService creates an EmailService
func NewEmailService(mailer Mailer, conf *config.Config, log *zap.SugaredLogger) *EmailService {
	return &EmailService{
		mailer:         mailer,
		log:            log,
		adminEmail:     conf.AdminEmail,
		baseURL:        strings.TrimRight(conf.BaseURL, "/"),
		currencySymbol: conf.CurrencySymbol,
	}
}

func (e *EmailService) send(ctx context.Context, template, toEmail, toName string, rendered templates.Email) error {
	err := e.mailer.Send(ctx, Message{
		ToEmail: toEmail,
		ToName:  toName,
		Subject: rendered.Subject,
		HTML:    rendered.HTML,
		Text:    rendered.Text,
	})
	if err != nil {
		emailsSent.WithLabelValues(template, "error").Inc()
		return &EmailDeliveryError{Template: template, Err: err}
	}
	emailsSent.WithLabelValues(template, "sent").Inc()
	return nil
}

func (e *EmailService) booking(r models.Reservation, motorcycleName string) templates.Booking {
	return templates.Booking{
		ReservationID:  r.ID,
		CustomerName:   r.CustomerName,
		MotorcycleName: motorcycleName,
		StartDate:      mapper.FormatDate(r.StartDate),
		EndDate:        mapper.FormatDate(r.EndDate),
		PickupTime:     r.PickupTime,
		ReturnTime:     r.ReturnTime,
		TotalPrice:     mapper.FormatCurrency(r.TotalPrice, e.currencySymbol),
		AdminNotes:     r.AdminNotes,
	}
}

// SendVerificationCode emails a sign-up OTP
func (e *EmailService) SendVerificationCode(ctx context.Context, email, name, code string, ttl time.Duration) error {
	return e.send(ctx, "verification_code", email, name, templates.VerificationCode(name, code, ttl))
}

// SendBookingConfirmation tells the customer their reservation was received
func (e *EmailService) SendBookingConfirmation(ctx context.Context, r models.Reservation, motorcycleName string) error {
	return e.send(ctx, "booking_confirmation", r.CustomerEmail, r.CustomerName, templates.BookingConfirmation(e.booking(r, motorcycleName)))
}

// SendBookingApproved tells the customer their reservation was confirmed
func (e *EmailService) SendBookingApproved(ctx context.Context, r models.Reservation, motorcycleName string) error {
	return e.send(ctx, "booking_approved", r.CustomerEmail, r.CustomerName, templates.BookingApproved(e.booking(r, motorcycleName)))
}

// SendBookingRejected tells the customer their reservation was declined
func (e *EmailService) SendBookingRejected(ctx context.Context, r models.Reservation, motorcycleName, reason string) error {
	return e.send(ctx, "booking_rejected", r.CustomerEmail, r.CustomerName, templates.BookingRejected(e.booking(r, motorcycleName), reason))
}

// SendDocumentApproved reports an individual document approval
func (e *EmailService) SendDocumentApproved(ctx context.Context, email, name, documentType string) error {
	return e.send(ctx, "document_approved", email, name, templates.DocumentApproved(name, documentType))
}

// SendDocumentRejected reports an individual document rejection
func (e *EmailService) SendDocumentRejected(ctx context.Context, email, name, documentType, reason string) error {
	return e.send(ctx, "document_rejected", email, name, templates.DocumentRejected(name, documentType, reason))
}

// SendPasswordReset emails a reset link built from BASE_URL
func (e *EmailService) SendPasswordReset(ctx context.Context, email, name, token string, ttl time.Duration) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", e.baseURL, token)
	return e.send(ctx, "password_reset", email, name, templates.PasswordReset(name, link, ttl))
}

// SendPaymentReminder nudges a customer with an unpaid upcoming rental
func (e *EmailService) SendPaymentReminder(ctx context.Context, r models.Reservation, motorcycleName string) error {
	return e.send(ctx, "payment_reminder", r.CustomerEmail, r.CustomerName, templates.PaymentReminder(e.booking(r, motorcycleName)))
}

// SendContactAcknowledgment confirms a contact form submission to its sender
func (e *EmailService) SendContactAcknowledgment(ctx context.Context, in models.ContactInput) error {
	return e.send(ctx, "contact_ack", in.Email, in.Name, templates.ContactAcknowledgment(in.Name, in.Subject))
}

// SendContactForward forwards a contact form submission to ADMIN_EMAIL
func (e *EmailService) SendContactForward(ctx context.Context, in models.ContactInput) error {
	if e.adminEmail == "" {
		e.log.Warnw("ADMIN_EMAIL not set, contact message not forwarded", "from", in.Email)
		return nil
	}
	return e.send(ctx, "contact_forward", e.adminEmail, "", templates.ContactForward(in.Name, in.Email, in.Subject, in.Message))
}

// SendAdminReply sends an admin's answer to a contact message
func (e *EmailService) SendAdminReply(ctx context.Context, email, name, topic, reply string) error {
	return e.send(ctx, "admin_reply", email, name, templates.AdminReply(name, topic, reply))
}
