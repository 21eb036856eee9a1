// file: internal/realtime/events.go
// version: 2.0.0
// guid: 9e8d7f6a-5c4b-3a21-0f9e-8d7c6b5a4392

package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/voicematch/internal/metrics"
	ulid "github.com/oklog/ulid/v2"
)

// EventType defines the type of real-time event
type EventType string

const (
	EventMatchDecided   EventType = "match.decided"
	EventMatchConfirmed EventType = "match.confirmed"
	EventBankReloaded   EventType = "bank.reloaded"
	EventConnection     EventType = "connection.established"
	EventShutdown       EventType = "system.shutdown"
)

// Event represents a real-time event to send to clients. ID is the capture
// session the event belongs to; empty means every client receives it.
type Event struct {
	Type      EventType      `json:"type"`
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// Client represents a connected SSE client
type Client struct {
	ID       string
	Channel  chan *Event
	Sessions map[string]bool // capture sessions this client follows
	mu       sync.RWMutex
}

// NewClient creates a new SSE client
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Channel:  make(chan *Event, 100),
		Sessions: make(map[string]bool),
	}
}

// Subscribe makes the client follow a capture session.
func (c *Client) Subscribe(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sessions[sessionID] = true
}

// Unsubscribe stops following a capture session.
func (c *Client) Unsubscribe(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Sessions, sessionID)
}

// IsSubscribed checks if client follows a session.
func (c *Client) IsSubscribed(sessionID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Sessions[sessionID]
}

func (c *Client) wantsAll() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Sessions) == 0
}

// EventHub manages SSE connections and event distribution
type EventHub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewEventHub creates a new event hub
func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[string]*Client),
	}
}

// RegisterClient registers a new client
func (h *EventHub) RegisterClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	n := len(h.clients)
	h.mu.Unlock()
	metrics.SetEventClients(n)
	log.Printf("[DEBUG] event client %s registered, total clients: %d", client.ID, n)
}

// UnregisterClient removes a client
func (h *EventHub) UnregisterClient(clientID string) {
	h.mu.Lock()
	client, exists := h.clients[clientID]
	if exists {
		close(client.Channel)
		delete(h.clients, clientID)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if exists {
		metrics.SetEventClients(n)
		log.Printf("[DEBUG] event client %s unregistered, remaining clients: %d", clientID, n)
	}
}

// Broadcast sends an event to all interested clients and returns how many
// received it. Clients whose buffer is full miss the event.
func (h *EventHub) Broadcast(event *Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, client := range h.clients {
		if event.ID == "" || client.wantsAll() || client.IsSubscribed(event.ID) {
			select {
			case client.Channel <- event:
				count++
			default:
				log.Printf("[WARN] event client %s channel full, dropping %s", client.ID, event.Type)
			}
		}
	}
	return count
}

// SendMatchDecision publishes the outcome of one match attempt.
func (h *EventHub) SendMatchDecision(sessionID string, data map[string]any) int {
	return h.Broadcast(&Event{
		Type:      EventMatchDecided,
		ID:        sessionID,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// SendMatchConfirmed publishes a confirmed suggestion.
func (h *EventHub) SendMatchConfirmed(sessionID string, data map[string]any) int {
	return h.Broadcast(&Event{
		Type:      EventMatchConfirmed,
		ID:        sessionID,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// SendBankReloaded tells every client the question bank changed.
func (h *EventHub) SendBankReloaded(revision uint64, questions int) int {
	return h.Broadcast(&Event{
		Type:      EventBankReloaded,
		Timestamp: time.Now(),
		Data: map[string]any{
			"revision":  revision,
			"questions": questions,
		},
	})
}

// GetClientCount returns the number of connected clients
func (h *EventHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleSSE handles Server-Sent Events connection
func (h *EventHub) HandleSSE(c *gin.Context) {
	// The server's WriteTimeout would otherwise end the stream.
	rc := http.NewResponseController(c.Writer)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Printf("[WARN] clearing write deadline for event stream: %v", err)
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache, no-transform")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	clientID := "client-" + ulid.Make().String()
	client := NewClient(clientID)
	if sessionID := c.Query("session"); sessionID != "" {
		client.Subscribe(sessionID)
	}

	h.RegisterClient(client)
	defer h.UnregisterClient(clientID)

	writeEvent(c, &Event{
		Type:      EventConnection,
		Timestamp: time.Now(),
		Data:      map[string]any{"client_id": clientID},
	})

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event, ok := <-client.Channel:
			if !ok {
				return
			}
			if err := writeEvent(c, event); err != nil {
				log.Printf("[WARN] writing to event client %s: %v", clientID, err)
				return
			}
		case <-ticker.C:
			heartbeat := map[string]any{
				"type":      "heartbeat",
				"timestamp": time.Now(),
			}
			if data, err := json.Marshal(heartbeat); err == nil {
				_, _ = fmt.Fprintf(c.Writer, "data: %s\n\n", data)
				c.Writer.Flush()
			}
		}
	}
}

// writeEvent writes one event in SSE framing: data: {json}\n\n
func writeEvent(c *gin.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}
