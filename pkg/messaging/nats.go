package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Client wraps the NATS JetStream connection the producer publishes
// through and the stream fan-out subscribes on.
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	log  *slog.Logger

	flushTimeout time.Duration

	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// Config holds broker connection configuration.
type Config struct {
	URL            string
	Name           string
	ReconnectWait  time.Duration
	MaxReconnects  int
	ConnectTimeout time.Duration
	FlushTimeout   time.Duration
	Logger         *slog.Logger
}

// NewClient connects to the broker.
func NewClient(cfg Config) (*Client, error) {
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	log := cfg.Logger

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.Timeout(cfg.ConnectTimeout),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("reconnected to broker", "url", nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("broker connection lost", "error", err)
			}
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &Client{
		conn:         conn,
		js:           js,
		log:          log,
		flushTimeout: cfg.FlushTimeout,
		subs:         make(map[string]*nats.Subscription),
	}, nil
}

// EnsureStream creates the stream holding the dataset topics if it
// does not exist yet.
func (c *Client) EnsureStream(name string, subjects []string) error {
	_, err := c.js.StreamInfo(name)
	if err == nil {
		return nil
	}
	_, err = c.js.AddStream(&nats.StreamConfig{
		Name:      name,
		Subjects:  subjects,
		Retention: nats.LimitsPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", name, err)
	}
	return nil
}

// PublishBatch publishes every record to topic and flushes
// synchronously before returning. Delivery is at-least-once: calling
// it again with overlapping records is safe because the downstream
// sink upserts by timestamp plus dimension key; no deduplication
// happens here.
func (c *Client) PublishBatch(ctx context.Context, topic string, records []any) error {
	if len(records) == 0 {
		return nil
	}

	futures := make([]nats.PubAckFuture, 0, len(records))
	for _, record := range records {
		payload, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal record for %s: %w", topic, err)
		}
		fut, err := c.js.PublishAsync(topic, payload)
		if err != nil {
			return fmt.Errorf("failed to publish to %s: %w", topic, err)
		}
		futures = append(futures, fut)
	}

	select {
	case <-c.js.PublishAsyncComplete():
	case <-time.After(c.flushTimeout):
		return fmt.Errorf("flush of %d records to %s timed out after %s", len(records), topic, c.flushTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	for _, fut := range futures {
		select {
		case err := <-fut.Err():
			return fmt.Errorf("broker rejected record on %s: %w", topic, err)
		default:
		}
	}

	c.log.Debug("flushed batch", "topic", topic, "records", len(records))
	return nil
}

// Subscribe subscribes to a subject.
func (c *Client) Subscribe(subject string, handler func(msg *nats.Msg)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.subs[subject]; exists {
		return fmt.Errorf("already subscribed to %s", subject)
	}

	sub, err := c.conn.Subscribe(subject, handler)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	c.subs[subject] = sub
	return nil
}

// IsConnected returns connection status.
func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// Close unsubscribes everything and closes the connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, sub := range c.subs {
		sub.Unsubscribe()
		delete(c.subs, subject)
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
