// Package notification fans appointment changes out to WebSocket clients and
// records durable outbox events for the worker.
package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/realtime"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type Service struct {
	publisher realtime.Publisher
	outbox    repository.OutboxRepository
}

// NewService accepts a nil publisher, in which case only outbox events are written
func NewService(publisher realtime.Publisher, outbox repository.OutboxRepository) *Service {
	return &Service{
		publisher: publisher,
		outbox:    outbox,
	}
}

// Enqueue writes an outbox event. Call it with a transaction context so the
// event commits together with the change it describes.
func (s *Service) Enqueue(ctx context.Context, eventType string, payload interface{}) error {
	event, err := model.NewOutboxEvent(eventType, payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to store %s event: %w", eventType, err)
	}
	return nil
}

// AppointmentCreated notifies the doctor's appointment feed and personal feed
func (s *Service) AppointmentCreated(ctx context.Context, appt *model.AppointmentDetail) {
	s.notifyDoctor(ctx, model.NotificationAppointmentCreated, appt)
}

func (s *Service) AppointmentUpdated(ctx context.Context, appt *model.AppointmentDetail) {
	s.notifyDoctor(ctx, model.NotificationAppointmentUpdate, appt)
}

// notifyDoctor never fails the caller. The change is already committed and
// the outbox carries it for the worker.
func (s *Service) notifyDoctor(ctx context.Context, kind string, appt *model.AppointmentDetail) {
	if s.publisher == nil || appt == nil || appt.DoctorID == nil {
		return
	}
	n := model.Notification{Type: kind, Data: appt}
	doctorID := *appt.DoctorID

	for _, topic := range []string{realtime.AppointmentsTopic(doctorID), realtime.UserTopic(doctorID)} {
		if err := s.publisher.Publish(ctx, topic, n); err != nil {
			log.Warn().Err(err).
				Str("topic", topic).
				Int64("appointment_id", appt.ID).
				Msg("failed to publish notification")
		}
	}
}
