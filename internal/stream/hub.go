package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"

	"github.com/terminal-bench/gridfeed/pkg/messaging"
)

// Update is one published record as seen on the broker, rebroadcast to
// dashboard clients.
type Update struct {
	Topic    string          `json:"topic"`
	Data     json.RawMessage `json:"data"`
	Received time.Time       `json:"received"`
}

// Subscriber is one connected dashboard client.
type Subscriber struct {
	ID      uuid.UUID
	Topics  map[string]struct{} // empty means all topics
	Updates chan Update
	Done    chan struct{}
}

func (s *Subscriber) wants(topic string) bool {
	if len(s.Topics) == 0 {
		return true
	}
	_, ok := s.Topics[topic]
	return ok
}

// Hub fans records published to the dataset topics out to websocket
// clients. It subscribes on the broker rather than tapping the
// producer directly, so it sees exactly what downstream consumers see.
type Hub struct {
	subscribers map[uuid.UUID]*Subscriber
	mu          sync.RWMutex

	updates  chan Update
	shutdown chan struct{}
	wg       sync.WaitGroup

	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewHub creates a hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		subscribers: make(map[uuid.UUID]*Subscriber),
		updates:     make(chan Update, 1024),
		shutdown:    make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// Attach subscribes the hub to the given broker subjects.
func (h *Hub) Attach(client *messaging.Client, subjects []string) error {
	for _, subject := range subjects {
		err := client.Subscribe(subject, func(msg *nats.Msg) {
			update := Update{
				Topic:    msg.Subject,
				Data:     json.RawMessage(msg.Data),
				Received: time.Now(),
			}
			select {
			case h.updates <- update:
			default:
				// A full buffer drops the update; live clients only
				// ever need the freshest data.
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Start runs the broadcast loop.
func (h *Hub) Start(ctx context.Context) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			select {
			case update := <-h.updates:
				h.broadcast(update)
			case <-h.shutdown:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the broadcast loop and disconnects every client.
func (h *Hub) Stop() {
	close(h.shutdown)
	h.wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subscribers {
		close(sub.Done)
		delete(h.subscribers, id)
	}
}

// Subscribe registers a client interested in the given topics (none
// means all).
func (h *Hub) Subscribe(topics []string) *Subscriber {
	sub := &Subscriber{
		ID:      uuid.New(),
		Topics:  make(map[string]struct{}, len(topics)),
		Updates: make(chan Update, 64),
		Done:    make(chan struct{}),
	}
	for _, topic := range topics {
		sub.Topics[topic] = struct{}{}
	}

	h.mu.Lock()
	h.subscribers[sub.ID] = sub
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes a client.
func (h *Hub) Unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subscribers[id]; ok {
		close(sub.Done)
		delete(h.subscribers, id)
	}
}

// SubscriberCount returns the number of connected clients.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) broadcast(update Update) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers {
		if !sub.wants(update.Topic) {
			continue
		}
		select {
		case sub.Updates <- update:
		default:
			// Slow client; skip rather than stall the loop.
		}
	}
}

// HandleWebSocket upgrades the request and streams updates for the
// requested topics until the client goes away.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request, topics []string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	sub := h.Subscribe(topics)
	defer func() {
		h.Unsubscribe(sub.ID)
		conn.Close()
	}()

	// Reader goroutine: detect client close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.Unsubscribe(sub.ID)
				return
			}
		}
	}()

	for {
		select {
		case update := <-sub.Updates:
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		case <-sub.Done:
			return
		}
	}
}
