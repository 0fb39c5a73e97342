package worker

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository/memory"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/messaging"
	"github.com/jwalitptl/dental-api/pkg/metrics"
)

type fakeBroker struct {
	mu        sync.Mutex
	fail      bool
	published []string
	attempts  int
}

func (b *fakeBroker) Publish(_ context.Context, channel string, _ interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts++
	if b.fail {
		return errors.New("redis down")
	}
	b.published = append(b.published, channel)
	return nil
}

func (b *fakeBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return make(chan []byte), nil
}

func (b *fakeBroker) Ping(context.Context) error { return nil }
func (b *fakeBroker) Close() error              { return nil }

type recordingHandler struct {
	events []string
}

func (h *recordingHandler) HandleEvent(_ context.Context, e *model.OutboxEvent) error {
	h.events = append(h.events, e.EventType)
	return nil
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: &bytes.Buffer{}})
}

func newProcessor(t *testing.T, store *memory.Store, broker messaging.Broker, handlers ...EventHandler) *OutboxProcessor {
	t.Helper()
	repos := store.Repositories()
	p, err := NewOutboxProcessor(repos.Outbox, repos.Tx, broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Minute,
		MaxRetries:    2,
	}, testLogger(), metrics.NewMetrics(prometheus.NewRegistry(), "test", "worker"), handlers...)
	require.NoError(t, err)
	p.sleep = func(time.Duration) {}
	return p
}

func enqueue(t *testing.T, store *memory.Store, eventType string) {
	t.Helper()
	e, err := model.NewOutboxEvent(eventType, map[string]int{"id": 1})
	require.NoError(t, err)
	require.NoError(t, store.Repositories().Outbox.Create(context.Background(), e))
}

func TestNewOutboxProcessor_Validation(t *testing.T) {
	repos := memory.NewStore().Repositories()
	m := metrics.NewMetrics(prometheus.NewRegistry(), "test", "worker")

	_, err := NewOutboxProcessor(repos.Outbox, repos.Tx, &fakeBroker{}, OutboxProcessorConfig{}, testLogger(), m)
	assert.Error(t, err)

	p, err := NewOutboxProcessor(repos.Outbox, repos.Tx, &fakeBroker{}, OutboxProcessorConfig{
		BatchSize: 1, PollInterval: time.Second, RetryAttempts: 1, RetryDelay: time.Second,
	}, testLogger(), m)
	require.NoError(t, err)
	assert.Equal(t, messaging.ChannelEvents, p.config.Channel)
	assert.Equal(t, 5, p.config.MaxRetries)
}

func TestProcessBatch_PublishesAndMarksProcessed(t *testing.T) {
	store := memory.NewStore()
	broker := &fakeBroker{}
	handler := &recordingHandler{}
	p := newProcessor(t, store, broker, handler)

	enqueue(t, store, model.EventAppointmentCreated)
	enqueue(t, store, model.EventTreatmentOrderCreated)

	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{messaging.ChannelEvents, messaging.ChannelEvents}, broker.published)
	assert.ElementsMatch(t, []string{model.EventAppointmentCreated, model.EventTreatmentOrderCreated}, handler.events)

	for _, e := range store.OutboxEvents() {
		assert.Equal(t, model.OutboxStatusProcessed, e.Status)
		assert.NotNil(t, e.ProcessedAt)
	}

	n, err = p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProcessBatch_RetriesThenFails(t *testing.T) {
	store := memory.NewStore()
	broker := &fakeBroker{fail: true}
	handler := &recordingHandler{}
	p := newProcessor(t, store, broker, handler)

	enqueue(t, store, model.EventAppointmentUpdated)

	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 2, broker.attempts)

	events := store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, model.OutboxStatusRetry, events[0].Status)
	assert.Equal(t, 1, events[0].RetryCount)
	require.NotNil(t, events[0].RetryAt)
	require.NotNil(t, events[0].ErrorMessage)
	assert.Contains(t, *events[0].ErrorMessage, "redis down")

	// not due yet
	n, err = p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 2, broker.attempts)

	store.SetClock(func() time.Time { return time.Now().Add(time.Hour) })
	_, err = p.ProcessBatch(context.Background())
	require.NoError(t, err)

	events = store.OutboxEvents()
	assert.Equal(t, model.OutboxStatusFailed, events[0].Status)
	assert.Empty(t, handler.events)
}

func TestOutboxCleanupWorker(t *testing.T) {
	store := memory.NewStore()
	p := newProcessor(t, store, &fakeBroker{})
	enqueue(t, store, model.EventAppointmentCreated)
	enqueue(t, store, model.EventAppointmentCreated)
	_, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	enqueue(t, store, model.EventAppointmentCreated)

	w := NewOutboxCleanupWorker(store.Repositories().Outbox, time.Hour, time.Minute, testLogger(),
		metrics.NewMetrics(prometheus.NewRegistry(), "test", "cleanup"))

	assert.Zero(t, w.Cleanup(context.Background(), time.Now()))
	assert.Equal(t, int64(2), w.Cleanup(context.Background(), time.Now().Add(2*time.Hour)))
	assert.Len(t, store.OutboxEvents(), 1)
}

// trackingTx reports whether a transaction is open and can fail the commit
type trackingTx struct {
	open       bool
	commitFail bool
}

func (tx *trackingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.open = true
	defer func() { tx.open = false }()
	if err := fn(ctx); err != nil {
		return err
	}
	if tx.commitFail {
		return errors.New("commit failed")
	}
	return nil
}

type txAwareHandler struct {
	tx       *trackingTx
	calls    int
	duringTx int
}

func (h *txAwareHandler) HandleEvent(context.Context, *model.OutboxEvent) error {
	h.calls++
	if h.tx.open {
		h.duringTx++
	}
	return nil
}

func TestProcessBatch_HandlersRunAfterCommit(t *testing.T) {
	store := memory.NewStore()
	tx := &trackingTx{}
	handler := &txAwareHandler{tx: tx}
	p := newProcessor(t, store, &fakeBroker{}, handler)
	p.tx = tx

	enqueue(t, store, model.EventAppointmentCreated)
	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, handler.calls)
	assert.Zero(t, handler.duringTx)

	tx.commitFail = true
	enqueue(t, store, model.EventAppointmentUpdated)
	n, err = p.ProcessBatch(context.Background())
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, handler.calls)
}
