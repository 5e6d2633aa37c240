// Package ws streams simulation events to browser observers over websockets.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"townsim/internal/app/ports"
)

const (
	clientBuffer = 64
	writeTimeout = 5 * time.Second
)

type eventFrame struct {
	Kind       string         `json:"kind"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

type client struct {
	id  string
	out chan []byte
}

// Hub fans simulation events out to connected observers. Slow clients are
// dropped rather than allowed to stall the publishing path.
type Hub struct {
	log      *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
	closed  bool
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		clients: map[string]*client{},
	}
}

// Publish encodes the events and queues them for every connected client.
func (h *Hub) Publish(events []ports.EventRecord) {
	if len(events) == 0 {
		return
	}
	frames := make([][]byte, 0, len(events))
	for _, ev := range events {
		b, err := json.Marshal(eventFrame{
			Kind:       ev.Kind,
			OccurredAt: ev.OccurredAt,
			Payload:    ev.Payload,
		})
		if err != nil {
			h.log.Printf("ws: drop unencodable event %s: %v", ev.Kind, err)
			continue
		}
		frames = append(frames, b)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		for _, b := range frames {
			select {
			case c.out <- b:
				continue
			default:
			}
			// Once dropped, the channel is closed; stop sending the rest of
			// the batch to this client.
			h.log.Printf("ws: dropping slow client %s", id)
			delete(h.clients, id)
			close(c.out)
			break
		}
	}
}

// Handler upgrades the request and streams events until the client hangs up.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		c := &client{id: uuid.NewString(), out: make(chan []byte, clientBuffer)}
		if !h.register(c) {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(time.Second))
			return
		}
		defer h.unregister(c.id)

		done := make(chan struct{})
		go func() {
			defer close(done)
			// Drain reads so ping/pong and close frames are processed.
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case b, ok := <-c.out:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}
	}
}

// Close disconnects all clients and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.out)
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	return true
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.out)
	}
}
