package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type sendgridMailer struct {
	client *sendgrid.Client
	from   sender
}

func newSendgridMailer(apiKey string, from sender) *sendgridMailer {
	return &sendgridMailer{client: sendgrid.NewSendClient(apiKey), from: from}
}

func (s *sendgridMailer) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(s.from.name, s.from.email)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

type resendMailer struct {
	client *resend.Client
	from   sender
}

func newResendMailer(apiKey string, from sender) *resendMailer {
	return &resendMailer{client: resend.NewClient(apiKey), from: from}
}

func (r *resendMailer) Send(_ context.Context, msg Message) error {
	from := r.from.email
	if r.from.name != "" {
		from = fmt.Sprintf("%s <%s>", r.from.name, r.from.email)
	}
	_, err := r.client.Emails.Send(&resend.SendEmailRequest{
		From:    from,
		To:      []string{msg.ToEmail},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	return err
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   sender
}

func newSMTPMailer(host string, port int, username, password string, from sender) *smtpMailer {
	return &smtpMailer{dialer: gomail.NewDialer(host, port, username, password), from: from}
}

func (s *smtpMailer) Send(_ context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from.email, s.from.name)
	m.SetAddressHeader("To", msg.ToEmail, msg.ToName)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)

	return s.dialer.DialAndSend(m)
}

// FunctionMailer posts messages to a hosted email function over HTTP
type FunctionMailer struct {
	url    string
	key    string
	client *http.Client
}

// NewFunctionMailer creates a FunctionMailer. A nil client gets a 10s timeout default.
func NewFunctionMailer(url, key string, client *http.Client) *FunctionMailer {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &FunctionMailer{url: url, key: key, client: client}
}

type functionPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Send posts the message and treats any non-2xx status as a failure
func (f *FunctionMailer) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(functionPayload{To: msg.ToEmail, Subject: msg.Subject, HTML: msg.HTML, Text: msg.Text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if f.key != "" {
		req.Header.Set("Authorization", "Bearer "+f.key)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("email function returned status %d", resp.StatusCode)
	}
	return nil
}

// ConsoleMailer logs messages instead of sending them
type ConsoleMailer struct {
	log *zap.SugaredLogger
}

// NewConsoleMailer creates a ConsoleMailer
func NewConsoleMailer(log *zap.SugaredLogger) *ConsoleMailer {
	return &ConsoleMailer{log: log}
}

// Send logs the plaintext body
func (c *ConsoleMailer) Send(_ context.Context, msg Message) error {
	c.log.Infow("email (console)", "to", msg.ToEmail, "subject", msg.Subject, "text", msg.Text)
	return nil
}
