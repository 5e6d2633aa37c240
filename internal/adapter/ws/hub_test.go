package ws

import (
	"encoding/json"
	"log"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"townsim/internal/app/ports"
)

func newTestHub() *Hub {
	return NewHub(log.New(os.Stderr, "ws-test ", log.LstdFlags))
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestHubDeliversPublishedEvents(t *testing.T) {
	h := newTestHub()
	defer h.Close()
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	// Give the handler goroutine a moment to register the client.
	deadline := time.Now().Add(2 * time.Second)
	for {
		h.mu.Lock()
		n := len(h.clients)
		h.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	h.Publish([]ports.EventRecord{{
		Kind:       "npc_moved",
		OccurredAt: time.Unix(1000, 0).UTC(),
		Payload:    map[string]any{"npc": "mara", "to": "market"},
	}})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var frame eventFrame
	if err := json.Unmarshal(msg, &frame); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if frame.Kind != "npc_moved" || frame.Payload["to"] != "market" {
		t.Fatalf("unexpected frame: %+v", frame)
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	h := newTestHub()
	defer h.Close()

	// Register a client directly with a full buffer; no reader drains it.
	c := &client{id: "slow", out: make(chan []byte, 1)}
	c.out <- []byte("stale")
	if !h.register(c) {
		t.Fatal("register failed")
	}

	h.Publish([]ports.EventRecord{{Kind: "tick", OccurredAt: time.Now()}})

	h.mu.Lock()
	_, stillThere := h.clients["slow"]
	h.mu.Unlock()
	if stillThere {
		t.Fatal("expected slow client to be dropped")
	}
}

func TestHubDropsSlowClientMidBatch(t *testing.T) {
	h := newTestHub()
	defer h.Close()

	// One free slot, three frames in one batch: the drop happens on the
	// second frame and the rest of the batch must not touch the closed channel.
	c := &client{id: "slow", out: make(chan []byte, 1)}
	if !h.register(c) {
		t.Fatal("register failed")
	}

	h.Publish([]ports.EventRecord{
		{Kind: "npc_moved", OccurredAt: time.Now()},
		{Kind: "npc_moved", OccurredAt: time.Now()},
		{Kind: "scene_resolved", OccurredAt: time.Now()},
	})

	h.mu.Lock()
	_, stillThere := h.clients["slow"]
	h.mu.Unlock()
	if stillThere {
		t.Fatal("expected slow client to be dropped")
	}
	// The first frame was queued; after it the channel must be closed.
	<-c.out
	if _, ok := <-c.out; ok {
		t.Fatal("expected closed channel after drop")
	}
}

func TestHubCloseRejectsNewClients(t *testing.T) {
	h := newTestHub()
	h.Close()
	if h.register(&client{id: "late", out: make(chan []byte, 1)}) {
		t.Fatal("expected register to fail after close")
	}
	// Publish after close must not panic.
	h.Publish([]ports.EventRecord{{Kind: "tick", OccurredAt: time.Now()}})
}
