// Package realtime pushes appointment notifications to WebSocket clients.
// Clients connect to a single topic, either a doctor's appointment feed or a
// user's personal feed, and receive every notification published to it.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/pkg/metrics"
)

const (
	ChannelAppointments = "appointments"
	ChannelUser         = "user"

	sendBufferSize = 256
)

// AppointmentsTopic is the feed of a doctor's appointments
func AppointmentsTopic(doctorID int64) string {
	return fmt.Sprintf("%s/%d", ChannelAppointments, doctorID)
}

// UserTopic is the personal feed of a user
func UserTopic(userID int64) string {
	return fmt.Sprintf("%s/%d", ChannelUser, userID)
}

func channelOf(topic string) string {
	if i := strings.IndexByte(topic, '/'); i > 0 {
		return topic[:i]
	}
	return topic
}

// Publisher delivers a notification to every client of a topic
type Publisher interface {
	Publish(ctx context.Context, topic string, n model.Notification) error
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is a single WebSocket connection subscribed to one topic.
type Client struct {
	ID    string
	Topic string
	Send  chan []byte
	conn  Conn
}

func NewClient(id, topic string, conn Conn) *Client {
	return &Client{
		ID:    id,
		Topic: topic,
		Send:  make(chan []byte, sendBufferSize),
		conn:  conn,
	}
}

// Hub tracks connected clients by topic.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	metrics *metrics.Metrics
}

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		metrics: m,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.Topic] == nil {
		h.clients[client.Topic] = make(map[*Client]struct{})
	}
	h.clients[client.Topic][client] = struct{}{}
	if h.metrics != nil {
		h.metrics.WSClients.WithLabelValues(channelOf(client.Topic)).Inc()
	}
}

// Unregister removes the client and closes its Send channel. It is safe to
// call more than once.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(client)
}

func (h *Hub) unregisterLocked(client *Client) bool {
	subscribers, ok := h.clients[client.Topic]
	if !ok {
		return false
	}
	if _, ok := subscribers[client]; !ok {
		return false
	}
	delete(subscribers, client)
	if len(subscribers) == 0 {
		delete(h.clients, client.Topic)
	}
	close(client.Send)
	if h.metrics != nil {
		h.metrics.WSClients.WithLabelValues(channelOf(client.Topic)).Dec()
	}
	return true
}

// Broadcast queues n for every client of topic. Clients whose buffer is
// full are disconnected.
func (h *Hub) Broadcast(topic string, n model.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("failed to marshal notification")
		return
	}
	h.broadcastRaw(topic, data)
}

func (h *Hub) broadcastRaw(topic string, data []byte) {
	var stale []*Client

	h.mu.RLock()
	for client := range h.clients[topic] {
		select {
		case client.Send <- data:
			if h.metrics != nil {
				h.metrics.WSMessagesSent.WithLabelValues(channelOf(topic)).Inc()
			}
		default:
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	if len(stale) == 0 {
		return
	}

	h.mu.Lock()
	for _, client := range stale {
		if h.unregisterLocked(client) {
			log.Warn().Str("client_id", client.ID).Str("topic", topic).Msg("dropping slow websocket client")
			if h.metrics != nil {
				h.metrics.WSMessagesDrops.WithLabelValues(channelOf(topic)).Inc()
			}
			if client.conn != nil {
				client.conn.Close()
			}
		}
	}
	h.mu.Unlock()
}

// Publish implements Publisher for single-instance delivery
func (h *Hub) Publish(_ context.Context, topic string, n model.Notification) error {
	h.Broadcast(topic, n)
	return nil
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, subscribers := range h.clients {
		total += len(subscribers)
	}
	return total
}

func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

// Reply queues a direct message for one client. It reports false when the
// client buffer is full or the client is gone.
func (h *Hub) Reply(client *Client, n model.Notification) bool {
	data, err := json.Marshal(n)
	if err != nil {
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[client.Topic][client]; !ok {
		return false
	}
	select {
	case client.Send <- data:
		return true
	default:
		return false
	}
}
