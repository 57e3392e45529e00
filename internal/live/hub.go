package live

import (
	"log/slog"
	"sync"

	"confide/internal/platform/metrics"
)

// Message is one event on one topic. Data is marshalled as-is.
type Message struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
	Data  any    `json:"data"`
}

// Hub tracks connected clients and their topic memberships, and fans each
// published message out to the topic's subscribers. Delivery is at-most-once:
// a client whose send buffer is full loses the message rather than stalling
// the publisher.
type Hub struct {
	mu      sync.RWMutex
	topics  map[string]map[*Client]struct{}
	clients map[*Client]map[string]struct{}
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHub(logger *slog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		topics:  make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]map[string]struct{}),
		logger:  logger,
		metrics: m,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = make(map[string]struct{})
	total := len(h.clients)
	h.mu.Unlock()

	h.metrics.LiveClients.Inc()
	h.logger.Info("live client connected", "total_clients", total)
}

// Unregister drops the client and all its topic memberships. Safe to call
// more than once; only the first call closes the send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	subscribed, ok := h.clients[c]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for topic := range subscribed {
		h.dropMembership(c, topic)
	}
	total := len(h.clients)
	h.mu.Unlock()

	close(c.send)
	h.metrics.LiveClients.Dec()
	h.logger.Info("live client disconnected", "total_clients", total)
}

func (h *Hub) Join(c *Client, topic string) {
	if topic == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	subscribed, ok := h.clients[c]
	if !ok {
		return
	}
	subscribed[topic] = struct{}{}
	members, ok := h.topics[topic]
	if !ok {
		members = make(map[*Client]struct{})
		h.topics[topic] = members
	}
	members[c] = struct{}{}
}

func (h *Hub) Leave(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subscribed, ok := h.clients[c]; ok {
		delete(subscribed, topic)
	}
	h.dropMembership(c, topic)
}

// dropMembership removes one (client, topic) edge. Caller holds the lock.
func (h *Hub) dropMembership(c *Client, topic string) {
	members, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.topics, topic)
	}
}

// Publish fans msg out to the topic's current subscribers. A topic nobody
// joined is a no-op.
func (h *Hub) Publish(topic string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.topics[topic] {
		select {
		case c.send <- msg:
		default:
			h.metrics.EventsDropped.Inc()
			h.logger.Warn("live event dropped, client buffer full", "topic", topic)
		}
	}
}

// Subscribers reports how many clients a topic currently has.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Close disconnects every client. Used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.Unregister(c)
	}
}
