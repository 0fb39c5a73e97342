package email

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/model"
)

type sentMail struct {
	to, subject, body string
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (s *fakeSender) Send(_ context.Context, to, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func appointmentEvent(t *testing.T, eventType string, detail model.AppointmentDetail) *model.OutboxEvent {
	t.Helper()
	e, err := model.NewOutboxEvent(eventType, detail)
	require.NoError(t, err)
	return e
}

func TestAppointmentNotifier(t *testing.T) {
	sender := &fakeSender{}
	n := NewAppointmentNotifier(sender, "clinic@example.com")
	n.loc = time.UTC

	name, phone, service := "Aigul Nurlanova", "+77771234580", "Consultation"
	detail := model.AppointmentDetail{
		Appointment: model.Appointment{
			Base:                model.Base{ID: 12},
			PatientID:           3,
			AppointmentDatetime: time.Date(2024, time.March, 4, 10, 30, 0, 0, time.UTC),
			Status:              model.AppointmentStatusScheduled,
			ServiceType:         &service,
		},
		PatientName:  &name,
		PatientPhone: &phone,
	}

	require.NoError(t, n.HandleEvent(context.Background(), appointmentEvent(t, model.EventAppointmentCreated, detail)))
	require.Len(t, sender.sent, 1)
	mail := sender.sent[0]
	assert.Equal(t, "clinic@example.com", mail.to)
	assert.Equal(t, "New appointment #12", mail.subject)
	assert.Contains(t, mail.body, "Time: 2024-03-04 10:30")
	assert.Contains(t, mail.body, "Patient: Aigul Nurlanova")
	assert.Contains(t, mail.body, "Phone: +77771234580")
	assert.Contains(t, mail.body, "Doctor: not assigned")
	assert.Contains(t, mail.body, "Service: Consultation")
	assert.NotContains(t, mail.body, "Notes:")

	require.NoError(t, n.HandleEvent(context.Background(), appointmentEvent(t, model.EventAppointmentUpdated, detail)))
	assert.Equal(t, "Appointment updated #12", sender.sent[1].subject)
}

func TestAppointmentNotifier_IgnoresOtherEvents(t *testing.T) {
	sender := &fakeSender{}
	n := NewAppointmentNotifier(sender, "clinic@example.com")

	e, err := model.NewOutboxEvent(model.EventTreatmentOrderCreated, map[string]int{"id": 1})
	require.NoError(t, err)
	require.NoError(t, n.HandleEvent(context.Background(), e))
	assert.Empty(t, sender.sent)
}

func TestAppointmentNotifier_Errors(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	n := NewAppointmentNotifier(sender, "clinic@example.com")

	bad := &model.OutboxEvent{EventType: model.EventAppointmentCreated, Payload: json.RawMessage(`[`)}
	assert.Error(t, n.HandleEvent(context.Background(), bad))

	err := n.HandleEvent(context.Background(), appointmentEvent(t, model.EventAppointmentCreated, model.AppointmentDetail{}))
	assert.EqualError(t, err, "smtp down")
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	s := NewSMTPSender(Config{Host: "localhost", From: "noreply@example.com"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, "a@example.com", "s", "b"), context.Canceled)
}
