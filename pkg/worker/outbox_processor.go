package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/messaging"
	"github.com/jwalitptl/dental-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	// MaxRetries is how many polling rounds an event may be retried before it is marked failed
	MaxRetries int
	Channel    string
}

// EventHandler runs after an event was published. Errors are logged only.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *model.OutboxEvent) error
}

type OutboxProcessor struct {
	repo     repository.OutboxRepository
	tx       repository.Transactor
	broker   messaging.Broker
	handlers []EventHandler
	config   OutboxProcessorConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
	sleep    func(time.Duration)
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	tx repository.Transactor,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
	handlers ...EventHandler,
) (*OutboxProcessor, error) {
	if config.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be greater than 0")
	}
	if config.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		return nil, fmt.Errorf("retry attempts must be greater than 0")
	}
	if config.RetryDelay <= 0 {
		return nil, fmt.Errorf("retry delay must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 5
	}
	if config.Channel == "" {
		config.Channel = messaging.ChannelEvents
	}

	return &OutboxProcessor{
		repo:     repo,
		tx:       tx,
		broker:   broker,
		handlers: handlers,
		config:   config,
		logger:   logger,
		metrics:  metrics,
		sleep:    time.Sleep,
	}, nil
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting outbox processor", "channel", p.config.Channel)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down outbox processor")
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error(err, "Failed to process events")
			}
		}
	}
}

// ProcessBatch locks up to BatchSize due events and publishes them in one transaction.
// Handlers run once the transaction has committed. It returns the number of
// events published.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	var done []*model.OutboxEvent
	err := p.tx.WithinTx(ctx, func(ctx context.Context) error {
		events, err := p.repo.GetPendingEventsWithLock(ctx, p.config.BatchSize)
		if err != nil {
			p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
			return fmt.Errorf("failed to get pending events: %w", err)
		}
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()

		for _, event := range events {
			if err := p.processEvent(ctx, event); err != nil {
				p.logger.Error(err, "Failed to process event",
					"event_id", event.ID.String(),
					"event_type", event.EventType)
				continue
			}
			done = append(done, event)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	p.runHandlers(ctx, done)
	return len(done), nil
}

func (p *OutboxProcessor) runHandlers(ctx context.Context, events []*model.OutboxEvent) {
	for _, event := range events {
		for _, h := range p.handlers {
			if err := h.HandleEvent(ctx, event); err != nil {
				p.logger.Error(err, "Event handler failed",
					"event_id", event.ID.String(),
					"event_type", event.EventType)
			}
		}
	}
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	err := p.retry(func() error {
		return p.broker.Publish(ctx, p.config.Channel, event)
	})

	if err != nil {
		p.metrics.RedisOperations.WithLabelValues("publish", "error").Inc()
		errStr := err.Error()
		status, retryAt := p.nextAttempt(event)
		if status == model.OutboxStatusFailed {
			p.metrics.OutboxEventsFailed.Inc()
		} else {
			p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
		}
		if updateErr := p.repo.UpdateStatus(ctx, event.ID, status, &errStr, retryAt); updateErr != nil {
			p.logger.Error(updateErr, "Failed to update event status", "event_id", event.ID.String())
		}
		return err
	}
	p.metrics.RedisOperations.WithLabelValues("publish", "success").Inc()

	if err := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil, nil); err != nil {
		return err
	}
	p.metrics.OutboxEventsProcessed.Inc()
	return nil
}

// nextAttempt backs off exponentially from RetryDelay until MaxRetries is reached.
func (p *OutboxProcessor) nextAttempt(event *model.OutboxEvent) (model.OutboxStatus, *time.Time) {
	if event.RetryCount+1 >= p.config.MaxRetries {
		return model.OutboxStatusFailed, nil
	}
	at := time.Now().Add(p.config.RetryDelay * time.Duration(1<<uint(event.RetryCount+1)))
	return model.OutboxStatusRetry, &at
}

func (p *OutboxProcessor) retry(fn func() error) error {
	var err error
	for i := 0; i < p.config.RetryAttempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < p.config.RetryAttempts-1 {
			p.sleep(p.config.RetryDelay)
		}
	}
	return err
}
