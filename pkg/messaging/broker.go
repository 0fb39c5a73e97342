package messaging

import (
	"context"
)

// Redis channels shared by the API and the worker
const (
	ChannelRealtime = "dental:ws"
	ChannelEvents   = "dental:events"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Ping(ctx context.Context) error
	Close() error
}

// Listen subscribes to channel and calls handler for every message until ctx
// is done. Handler errors are passed to onError and do not stop the loop.
func Listen(ctx context.Context, broker Broker, channel string, handler func([]byte) error, onError func(error)) error {
	msgChan, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgChan {
			if err := handler(msg); err != nil && onError != nil {
				onError(err)
			}
		}
	}()

	return nil
}
