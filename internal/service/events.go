package service

import (
	"encoding/json"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	// Session events
	EventSignedIn  EventType = "session.signed_in"
	EventRefreshed EventType = "session.refreshed"
	EventSignedOut EventType = "session.signed_out"

	// Planning events
	EventTaskOverdue     EventType = "timeline.task_overdue"
	EventImagesGenerated EventType = "moodboard.images_generated"

	// System events
	EventHeartbeat EventType = "heartbeat"
)

// HeartbeatInterval is how often open streams receive a heartbeat
const HeartbeatInterval = 30 * time.Second

// Event represents a server-sent event
type Event struct {
	Type   EventType   `json:"type"`
	Data   interface{} `json:"data"`
	UserID string      `json:"-"` // Used for routing, not sent to client
}

// Format returns the SSE formatted string
func (e *Event) Format() string {
	data, _ := json.Marshal(e.Data)
	return "event: " + string(e.Type) + "\ndata: " + string(data) + "\n\n"
}

// Subscriber represents a connected SSE client
type Subscriber struct {
	ID     string
	UserID string
	Events chan *Event
	Done   chan struct{}
}

// EventHub fans events out to each user's open streams
type EventHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]*Subscriber // userID -> subscriberID -> subscriber
	heartbeat   *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once
}

// NewEventHub creates a hub that sends heartbeats every HeartbeatInterval
func NewEventHub() *EventHub {
	return NewEventHubWithHeartbeat(HeartbeatInterval)
}

// NewEventHubWithHeartbeat creates a hub with a custom heartbeat interval
func NewEventHubWithHeartbeat(interval time.Duration) *EventHub {
	hub := &EventHub{
		subscribers: make(map[string]map[string]*Subscriber),
		heartbeat:   time.NewTicker(interval),
		done:        make(chan struct{}),
	}
	go hub.sendHeartbeats()
	return hub
}

// Subscribe opens a stream for a user
func (h *EventHub) Subscribe(userID, subscriberID string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{
		ID:     subscriberID,
		UserID: userID,
		Events: make(chan *Event, 100), // Buffer to prevent blocking
		Done:   make(chan struct{}),
	}

	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[string]*Subscriber)
	}
	h.subscribers[userID][subscriberID] = sub

	return sub
}

// Unsubscribe closes a stream
func (h *EventHub) Unsubscribe(userID, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userSubs, ok := h.subscribers[userID]; ok {
		if sub, ok := userSubs[subscriberID]; ok {
			close(sub.Done)
			close(sub.Events)
			delete(userSubs, subscriberID)
		}
		if len(userSubs) == 0 {
			delete(h.subscribers, userID)
		}
	}
}

// Publish sends an event to every stream of event.UserID. Streams whose
// buffer is full miss the event.
func (h *EventHub) Publish(event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers[event.UserID] {
		select {
		case sub.Events <- event:
		default:
		}
	}
}

// SendToUser builds and publishes an event for one user
func (h *EventHub) SendToUser(userID string, eventType EventType, data interface{}) {
	h.Publish(&Event{Type: eventType, UserID: userID, Data: data})
}

// sendHeartbeats sends periodic heartbeats to all subscribers
func (h *EventHub) sendHeartbeats() {
	for {
		select {
		case <-h.heartbeat.C:
			h.mu.RLock()
			data := map[string]string{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}
			for userID, userSubs := range h.subscribers {
				event := &Event{Type: EventHeartbeat, UserID: userID, Data: data}
				for _, sub := range userSubs {
					select {
					case sub.Events <- event:
					default:
					}
				}
			}
			h.mu.RUnlock()
		case <-h.done:
			return
		}
	}
}

// Close stops the hub and closes every stream
func (h *EventHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.heartbeat.Stop()

		h.mu.Lock()
		defer h.mu.Unlock()

		for userID, userSubs := range h.subscribers {
			for _, sub := range userSubs {
				close(sub.Done)
				close(sub.Events)
			}
			delete(h.subscribers, userID)
		}
	})
}

// SubscriberCount returns the number of open streams for a user
func (h *EventHub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[userID])
}
