package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/pkg/messaging"
)

// envelope is what travels over the broker between API instances
type envelope struct {
	Topic        string             `json:"topic"`
	Notification model.Notification `json:"notification"`
}

// BrokerPublisher sends notifications through the broker so every API
// instance can deliver them to its own clients.
type BrokerPublisher struct {
	broker  messaging.Broker
	channel string
	// fallback is used when the broker publish fails
	fallback Publisher
}

func NewBrokerPublisher(broker messaging.Broker, fallback Publisher) *BrokerPublisher {
	return &BrokerPublisher{
		broker:   broker,
		channel:  messaging.ChannelRealtime,
		fallback: fallback,
	}
}

func (p *BrokerPublisher) Publish(ctx context.Context, topic string, n model.Notification) error {
	err := p.broker.Publish(ctx, p.channel, envelope{Topic: topic, Notification: n})
	if err == nil {
		return nil
	}
	log.Warn().Err(err).Str("topic", topic).Msg("broker publish failed, delivering locally")
	if p.fallback != nil {
		return p.fallback.Publish(ctx, topic, n)
	}
	return err
}

// Relay subscribes to the realtime channel and broadcasts every received
// notification on the local hub until ctx is done.
func Relay(ctx context.Context, broker messaging.Broker, hub *Hub) error {
	return messaging.Listen(ctx, broker, messaging.ChannelRealtime, func(msg []byte) error {
		var env envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			return fmt.Errorf("failed to decode realtime message: %w", err)
		}
		if env.Topic == "" {
			return fmt.Errorf("realtime message without topic")
		}
		hub.Broadcast(env.Topic, env.Notification)
		return nil
	}, func(err error) {
		log.Warn().Err(err).Msg("realtime relay")
	})
}
