package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"stagepass/internal/shared/config"
	"stagepass/pkg/logger"

	"github.com/wneessen/go-mail"
)

// EmailService delivers booking receipts.
type EmailService interface {
	SendBookingReceipt(ctx context.Context, email *BookingEmail) error
}

const receiptTemplateHTML = `
<h2>Booking Confirmed</h2>
<p>Hi {{.RecipientName}},</p>
<p>Your booking for <strong>{{.EventTitle}}</strong> is confirmed.</p>
<p>Booking Reference: <strong>{{.BookingRef}}</strong></p>
<table border="0" cellpadding="4">
  <tr><th align="left">Section</th><th align="left">Seat</th><th align="right">Price</th></tr>
  {{range .Seats}}
  <tr><td>{{.Section}}</td><td>{{.SeatID}}</td><td align="right">{{printf "%.2f" .Price}}</td></tr>
  {{end}}
</table>
<p>Total: <strong>{{printf "%.2f" .TotalAmount}}</strong></p>
{{if .TicketCode}}<p><img src="{{.TicketCode}}" alt="Ticket QR code" width="200" height="200"/></p>{{end}}
<p>Show the QR code at the entrance.</p>
`

type mailService struct {
	client    *mail.Client
	fromEmail string
	fromName  string
	tmpl      *template.Template
	log       *logger.Logger
}

// NewMailService builds an SMTP-backed email service from the application
// config.
func NewMailService(cfg *config.EmailConfig) (EmailService, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("smtp host is required")
	}

	client, err := mail.NewClient(cfg.SMTPHost,
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTPUsername),
		mail.WithPassword(cfg.SMTPPassword),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	tmpl, err := template.New("receipt").Parse(receiptTemplateHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse receipt template: %w", err)
	}

	return &mailService{
		client:    client,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		tmpl:      tmpl,
		log:       logger.GetDefault(),
	}, nil
}

func (s *mailService) SendBookingReceipt(ctx context.Context, email *BookingEmail) error {
	var body bytes.Buffer
	if err := s.tmpl.Execute(&body, email); err != nil {
		return fmt.Errorf("failed to render receipt: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(email.RecipientEmail); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(fmt.Sprintf("Booking Confirmed: %s (%s)", email.EventTitle, email.BookingRef))
	msg.SetBodyString(mail.TypeTextHTML, body.String())

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send receipt: %w", err)
	}
	return nil
}

// logEmailService stands in when SMTP is not configured. Receipts are logged
// instead of delivered so the rest of the pipeline stays exercised.
type logEmailService struct {
	log *logger.Logger
}

func NewLogEmailService() EmailService {
	return &logEmailService{log: logger.GetDefault()}
}

func (s *logEmailService) SendBookingReceipt(ctx context.Context, email *BookingEmail) error {
	s.log.Info("email delivery disabled, receipt logged",
		"booking_id", email.BookingID.String(),
		"recipient", email.RecipientEmail,
		"booking_ref", email.BookingRef,
	)
	return nil
}
