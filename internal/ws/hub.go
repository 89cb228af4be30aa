package ws

import (
	"strconv"
	"strings"
	"sync"
)

// Hub routes published payloads to every channel subscribed to a topic.
// Topics are named post/{postId}/likes and post/{postId}/comments. Delivery
// is at-most-once: a subscriber whose channel is full misses the message.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[chan []byte]struct{}
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[chan []byte]struct{})}
}

// Subscribe attaches ch to a topic. The same channel may be attached to
// several topics; messages from all of them are interleaved on it.
func (h *Hub) Subscribe(topic string, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[chan []byte]struct{})
		h.topics[topic] = subs
	}
	subs[ch] = struct{}{}
}

// Unsubscribe detaches ch from a topic
func (h *Hub) Unsubscribe(topic string, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(subs, ch)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}

// Publish fans payload out to the topic's subscribers without blocking.
// Subscribers that cannot keep up drop the message.
func (h *Hub) Publish(topic string, payload []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.topics[topic] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

// SubscriberCount returns the number of channels attached to a topic
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// ValidTopic reports whether a client-supplied topic names a post channel
func ValidTopic(topic string) bool {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "post" {
		return false
	}
	if _, err := strconv.ParseUint(parts[1], 10, 32); err != nil {
		return false
	}
	return parts[2] == "likes" || parts[2] == "comments"
}
