package email

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/dental-api/internal/model"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender delivers a single plain text message
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg Config) *SMTPSender {
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// AppointmentNotifier mails the clinic inbox about appointment outbox events.
// It plugs into the outbox processor as an event handler.
type AppointmentNotifier struct {
	sender Sender
	to     string
	loc    *time.Location
}

func NewAppointmentNotifier(sender Sender, to string) *AppointmentNotifier {
	return &AppointmentNotifier{sender: sender, to: to, loc: time.Local}
}

func (n *AppointmentNotifier) HandleEvent(ctx context.Context, event *model.OutboxEvent) error {
	var subject string
	switch event.EventType {
	case model.EventAppointmentCreated:
		subject = "New appointment"
	case model.EventAppointmentUpdated:
		subject = "Appointment updated"
	default:
		return nil
	}

	var detail model.AppointmentDetail
	if err := json.Unmarshal(event.Payload, &detail); err != nil {
		return fmt.Errorf("failed to decode appointment payload: %w", err)
	}

	return n.sender.Send(ctx, n.to, fmt.Sprintf("%s #%d", subject, detail.ID), n.body(&detail))
}

func (n *AppointmentNotifier) body(a *model.AppointmentDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Appointment #%d\n", a.ID)
	fmt.Fprintf(&b, "Time: %s\n", a.AppointmentDatetime.In(n.loc).Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Status: %s\n", a.Status)
	fmt.Fprintf(&b, "Patient: %s\n", deref(a.PatientName, fmt.Sprintf("#%d", a.PatientID)))
	if a.PatientPhone != nil {
		fmt.Fprintf(&b, "Phone: %s\n", *a.PatientPhone)
	}
	fmt.Fprintf(&b, "Doctor: %s\n", deref(a.DoctorName, "not assigned"))
	if a.ServiceType != nil {
		fmt.Fprintf(&b, "Service: %s\n", *a.ServiceType)
	}
	if a.Notes != nil && *a.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", *a.Notes)
	}
	return b.String()
}

func deref(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
