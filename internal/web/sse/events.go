// Package sse fans inventory change events out to browser listeners over
// Server-Sent Events. The WebSocket handler subscribes to the same hub.
package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType names an event. Inventory change kinds pass through unchanged.
type EventType string

const (
	EventConnected EventType = "connected"
	EventHeartbeat EventType = "heartbeat"
)

const clientBuffer = 32

// Event is the JSON envelope delivered to listeners
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
	Time int64     `json:"time"`
}

// Message is an encoded event. Seq increases by one per published event.
type Message struct {
	Seq  uint64
	Type EventType
	Data []byte
}

// Client is one listener. Messages is closed when the client is removed.
type Client struct {
	ID       string
	Messages chan Message
}

// Broker is the event hub
type Broker struct {
	mu      sync.Mutex
	clients map[string]*Client
	closed  bool
	seq     atomic.Uint64

	quit     chan struct{}
	stopOnce sync.Once
}

// NewBroker returns a hub that sends a heartbeat every 30 seconds
func NewBroker() *Broker {
	return newBroker(30 * time.Second)
}

func newBroker(heartbeat time.Duration) *Broker {
	b := &Broker{
		clients: make(map[string]*Client),
		quit:    make(chan struct{}),
	}
	go b.beat(heartbeat)
	return b
}

func (b *Broker) beat(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-b.quit:
			return
		case <-t.C:
			b.Broadcast(Event{Type: EventHeartbeat})
		}
	}
}

// Broadcast encodes ev once and offers it to every client. A client whose
// buffer is full misses the event.
func (b *Broker) Broadcast(ev Event) {
	if ev.Time == 0 {
		ev.Time = time.Now().Unix()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event", string(ev.Type)).Msg("Failed to encode event")
		return
	}
	msg := Message{Seq: b.seq.Add(1), Type: ev.Type, Data: payload}

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, c := range b.clients {
		select {
		case c.Messages <- msg:
		default:
			log.Warn().Str("client_id", id).Str("event", string(ev.Type)).Msg("Listener too slow, event dropped")
		}
	}
}

// Publish broadcasts an inventory change
func (b *Broker) Publish(kind string, data any) {
	b.Broadcast(Event{Type: EventType(kind), Data: data})
}

// Subscribe adds a listener. It returns nil after Stop.
func (b *Broker) Subscribe(id string) *Client {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	c := &Client{ID: id, Messages: make(chan Message, clientBuffer)}
	b.clients[id] = c
	log.Debug().Str("client_id", id).Int("listeners", len(b.clients)).Msg("Listener joined")
	return c
}

// Unsubscribe removes c and closes its channel. Unknown clients are ignored.
func (b *Broker) Unsubscribe(c *Client) {
	if c == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if cur, ok := b.clients[c.ID]; ok && cur == c {
		delete(b.clients, c.ID)
		close(c.Messages)
		log.Debug().Str("client_id", c.ID).Int("listeners", len(b.clients)).Msg("Listener left")
	}
}

// Stop closes every listener and the heartbeat. Safe to call twice.
func (b *Broker) Stop() {
	b.stopOnce.Do(func() {
		close(b.quit)
		b.mu.Lock()
		b.closed = true
		for id, c := range b.clients {
			close(c.Messages)
			delete(b.clients, id)
		}
		b.mu.Unlock()
	})
}

// ClientCount returns the number of listeners
func (b *Broker) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// ServeHTTP streams events to one SSE listener until it disconnects
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	c := b.Subscribe(fmt.Sprintf("sse-%s-%d", r.RemoteAddr, time.Now().UnixNano()))
	if c == nil {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer b.Unsubscribe(c)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	hello, _ := json.Marshal(Event{
		Type: EventConnected,
		Data: map[string]string{"client_id": c.ID},
		Time: time.Now().Unix(),
	})
	writeFrame(w, Message{Type: EventConnected, Data: hello})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-c.Messages:
			if !ok {
				return
			}
			if err := writeFrame(w, msg); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeFrame writes one SSE frame. The id line is omitted for Seq 0.
func writeFrame(w io.Writer, msg Message) error {
	var err error
	if msg.Seq > 0 {
		_, err = fmt.Fprintf(w, "id: %d\n", msg.Seq)
	}
	if err == nil {
		_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, msg.Data)
	}
	return err
}
