package notification

import (
	"context"
	"fmt"
	"time"

	"genzhealth/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

type SendgridMailer struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
	location  *time.Location
	logger    *zap.Logger
}

// NewSendgridMailer formats appointment times in loc, the clinic's zone.
func NewSendgridMailer(apiKey, fromName, fromEmail string, loc *time.Location, logger *zap.Logger) *SendgridMailer {
	return &SendgridMailer{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
		location:  loc,
		logger:    logger,
	}
}

func (m *SendgridMailer) SendBookingConfirmation(ctx context.Context, booking models.BookingRecord) error {
	subject, text, html := confirmationContent(booking, m.location)
	return m.send(ctx, booking.Name, booking.Email, subject, text, html)
}

func (m *SendgridMailer) SendReminder(ctx context.Context, reminder models.ReminderPayload) error {
	subject, text, html := reminderContent(reminder, m.location)
	return m.send(ctx, reminder.Name, reminder.Email, subject, text, html)
}

func (m *SendgridMailer) send(ctx context.Context, name, address, subject, text, html string) error {
	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(m.fromName, m.fromEmail))
	message.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(name, address))
	message.AddPersonalizations(p)
	message.AddContent(mail.NewContent("text/plain", text))
	message.AddContent(mail.NewContent("text/html", html))

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected message: status %d: %s", response.StatusCode, response.Body)
	}
	m.logger.Info("Email sent",
		zap.String("subject", subject),
		zap.Int("status", response.StatusCode))
	return nil
}

// LogMailer is used when no SendGrid key is configured.
type LogMailer struct {
	location *time.Location
	logger   *zap.Logger
}

func NewLogMailer(loc *time.Location, logger *zap.Logger) *LogMailer {
	return &LogMailer{location: loc, logger: logger}
}

func (m *LogMailer) SendBookingConfirmation(ctx context.Context, booking models.BookingRecord) error {
	subject, _, _ := confirmationContent(booking, m.location)
	m.logger.Info("Email delivery disabled, skipping confirmation",
		zap.String("booking_id", booking.ID),
		zap.String("subject", subject))
	return nil
}

func (m *LogMailer) SendReminder(ctx context.Context, reminder models.ReminderPayload) error {
	subject, _, _ := reminderContent(reminder, m.location)
	m.logger.Info("Email delivery disabled, skipping reminder",
		zap.String("booking_id", reminder.BookingID),
		zap.String("subject", subject))
	return nil
}
