package templates

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// Booking holds the reservation fields shown in booking emails. Money and
// dates arrive preformatted.
type Booking struct {
	ReservationID  string
	CustomerName   string
	MotorcycleName string
	StartDate      string
	EndDate        string
	PickupTime     string
	ReturnTime     string
	TotalPrice     string
	AdminNotes     string
}

func (b Booking) details() []detail {
	return []detail{
		{"Reservation", b.ReservationID},
		{"Motorcycle", b.MotorcycleName},
		{"Pick-up", strings.TrimSpace(b.StartDate + " " + b.PickupTime)},
		{"Return", strings.TrimSpace(b.EndDate + " " + b.ReturnTime)},
		{"Total", b.TotalPrice},
	}
}

// VerificationCode renders the sign-up OTP email
func VerificationCode(name, code string, ttl time.Duration) Email {
	minutes := int(ttl.Minutes())
	subject := "Your MotoRent verification code"
	body := paragraph(greeting(name)) +
		paragraph("Use the code below to verify your email address.") +
		`<div class="code">` + html.EscapeString(code) + `</div>` +
		paragraph(fmt.Sprintf("The code expires in %d minutes. If you did not create an account you can ignore this email.", minutes))
	text := fmt.Sprintf("%s\n\nYour verification code is %s\n\nThe code expires in %d minutes. If you did not create an account you can ignore this email.\n",
		greeting(name), code, minutes)
	return Email{Subject: subject, HTML: renderLayout(subject, accentBrand, body), Text: text}
}

// BookingConfirmation is sent when a customer submits a reservation
func BookingConfirmation(b Booking) Email {
	subject := "We received your reservation"
	body := paragraph(greeting(b.CustomerName)) +
		paragraph("Thanks for booking with MotoRent. Your reservation is pending review and we will email you once it is approved.") +
		detailsTable(b.details())
	text := greeting(b.CustomerName) + "\n\nThanks for booking with MotoRent. Your reservation is pending review and we will email you once it is approved.\n\n" +
		detailsText(b.details())
	return Email{Subject: subject, HTML: renderLayout(subject, accentBrand, body), Text: text}
}

// BookingApproved is sent when an admin confirms a reservation
func BookingApproved(b Booking) Email {
	subject := "Your reservation is confirmed"
	body := paragraph(greeting(b.CustomerName)) +
		paragraph("Good news! Your reservation has been approved and your documents have been verified.") +
		detailsTable(b.details())
	text := greeting(b.CustomerName) + "\n\nGood news! Your reservation has been approved and your documents have been verified.\n\n" +
		detailsText(b.details())
	if b.AdminNotes != "" {
		body += note(b.AdminNotes)
		text += "\nNote from our team: " + b.AdminNotes + "\n"
	}
	return Email{Subject: subject, HTML: renderLayout(subject, accentSuccess, body), Text: text}
}

// BookingRejected is sent when an admin declines a pending reservation
func BookingRejected(b Booking, reason string) Email {
	subject := "Your reservation was not approved"
	body := paragraph(greeting(b.CustomerName)) +
		paragraph("Unfortunately we could not approve your reservation.") +
		detailsTable(b.details()) +
		note("Reason: "+reason) +
		paragraph("You can upload new documents and book again at any time.")
	text := greeting(b.CustomerName) + "\n\nUnfortunately we could not approve your reservation.\n\n" +
		detailsText(b.details()) + "\nReason: " + reason + "\n\nYou can upload new documents and book again at any time.\n"
	return Email{Subject: subject, HTML: renderLayout(subject, accentDanger, body), Text: text}
}

// DocumentApproved is sent after an individual document review
func DocumentApproved(name, documentType string) Email {
	subject := "Your document has been verified"
	line := fmt.Sprintf("Your %s has been reviewed and approved.", documentLabel(documentType))
	body := paragraph(greeting(name)) + paragraph(line)
	text := greeting(name) + "\n\n" + line + "\n"
	return Email{Subject: subject, HTML: renderLayout(subject, accentSuccess, body), Text: text}
}

// DocumentRejected is sent after an individual document review
func DocumentRejected(name, documentType, reason string) Email {
	subject := "Your document needs attention"
	line := fmt.Sprintf("We could not verify your %s.", documentLabel(documentType))
	body := paragraph(greeting(name)) + paragraph(line) + note("Reason: "+reason) +
		paragraph("Please upload a new copy from your profile page.")
	text := greeting(name) + "\n\n" + line + "\nReason: " + reason + "\n\nPlease upload a new copy from your profile page.\n"
	return Email{Subject: subject, HTML: renderLayout(subject, accentDanger, body), Text: text}
}

// PasswordReset carries the reset link
func PasswordReset(name, link string, ttl time.Duration) Email {
	subject := "Reset your MotoRent password"
	expiry := fmt.Sprintf("This link expires in %d minutes. If you did not ask for a reset you can ignore this email.", int(ttl.Minutes()))
	body := paragraph(greeting(name)) +
		paragraph("We received a request to reset your password.") +
		button("Reset password", link) +
		paragraph(expiry)
	text := greeting(name) + "\n\nWe received a request to reset your password. Open the link below to choose a new one:\n\n" +
		link + "\n\n" + expiry + "\n"
	return Email{Subject: subject, HTML: renderLayout(subject, accentBrand, body), Text: text}
}

// PaymentReminder nudges a customer with an upcoming unpaid rental
func PaymentReminder(b Booking) Email {
	subject := "Payment reminder for your upcoming rental"
	body := paragraph(greeting(b.CustomerName)) +
		paragraph("Your rental starts soon and we have not received payment yet.") +
		detailsTable(b.details())
	text := greeting(b.CustomerName) + "\n\nYour rental starts soon and we have not received payment yet.\n\n" + detailsText(b.details())
	return Email{Subject: subject, HTML: renderLayout(subject, accentBrand, body), Text: text}
}

// ContactAcknowledgment confirms receipt of a contact form message
func ContactAcknowledgment(name, topic string) Email {
	subject := "We got your message"
	line := fmt.Sprintf("Thanks for reaching out about %q. Our team usually replies within one business day.", topic)
	body := paragraph(greeting(name)) + paragraph(line)
	text := greeting(name) + "\n\n" + line + "\n"
	return Email{Subject: subject, HTML: renderLayout(subject, accentBrand, body), Text: text}
}

// ContactForward delivers a contact form message to the admin inbox
func ContactForward(name, email, topic, message string) Email {
	subject := "New contact message: " + topic
	rows := []detail{{"From", name}, {"Email", email}, {"Subject", topic}}
	body := detailsTable(rows) + paragraph(message)
	text := detailsText(rows) + "\n" + message + "\n"
	return Email{Subject: subject, HTML: renderLayout(subject, accentBrand, body), Text: text}
}

// AdminReply sends an admin's answer to a contact message
func AdminReply(name, topic, reply string) Email {
	subject := "Re: " + topic
	body := paragraph(greeting(name)) + paragraph(reply)
	text := greeting(name) + "\n\n" + reply + "\n"
	return Email{Subject: subject, HTML: renderLayout(subject, accentBrand, body), Text: text}
}

func documentLabel(documentType string) string {
	switch documentType {
	case "drivers_license":
		return "driver's license"
	case "valid_id":
		return "valid ID"
	}
	return strings.ReplaceAll(documentType, "_", " ")
}
