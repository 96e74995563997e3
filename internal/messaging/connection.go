package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"pizzapap/internal/config"
	"pizzapap/internal/logger"
)

// Exchange and queue names shared by the storefront and the subscriber
const (
	ExchangeOrders     = "orders_topic"
	QueueNotifications = "notifications_queue"
	OrderEventsPattern = "order.*"
)

const (
	connectAttempts   = 5
	dialTimeout       = 5 * time.Second
	heartbeat         = 10 * time.Second
	reconnectInterval = 2 * time.Second
)

// ErrReconnectBackoff is returned by Channel while a failed reconnect is too
// recent to try again
var ErrReconnectBackoff = errors.New("rabbitmq reconnect backing off")

// Binding routes messages from an exchange to a queue
type Binding struct {
	Queue      string
	RoutingKey string
	Exchange   string
}

// Topology lists what the connection declares on every (re)connect
type Topology struct {
	Exchanges []string
	Queues    []string
	Bindings  []Binding
}

// DefaultTopology is the order event fan-in used by the storefront
var DefaultTopology = Topology{
	Exchanges: []string{ExchangeOrders},
	Queues:    []string{QueueNotifications},
	Bindings: []Binding{
		{Queue: QueueNotifications, RoutingKey: OrderEventsPattern, Exchange: ExchangeOrders},
	},
}

// Connection wraps a RabbitMQ connection and channel with reconnection.
// It is safe for concurrent use.
type Connection struct {
	mu          sync.Mutex
	conn        *amqp091.Connection
	channel     *amqp091.Channel
	topology    Topology
	logger      *logger.Logger
	url         string
	lastAttempt time.Time
}

// Connect dials RabbitMQ and declares DefaultTopology
func Connect(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Connection, error) {
	c := &Connection{
		topology: DefaultTopology,
		logger:   log,
		url:      cfg.RabbitMQURL(),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	log.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host":     cfg.RabbitMQ.Host,
		"exchange": ExchangeOrders,
	})

	return c, nil
}

// connect must be called with mu held or before the connection is shared
func (c *Connection) connect(ctx context.Context) error {
	var err error

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = c.dial(); err == nil {
			return nil
		}

		if attempt == connectAttempts {
			break
		}

		wait := time.Duration(attempt) * 2 * time.Second
		c.logger.Error("rabbitmq_connection_failed",
			fmt.Sprintf("Failed to connect to RabbitMQ, retrying in %v", wait),
			"startup", err, map[string]interface{}{"attempt": attempt})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("connect to RabbitMQ after %d attempts: %w", connectAttempts, err)
}

func (c *Connection) dial() error {
	conn, err := amqp091.DialConfig(c.url, amqp091.Config{
		Heartbeat: heartbeat,
		Locale:    "en_US",
		Dial:      amqp091.DefaultDial(dialTimeout),
	})
	if err != nil {
		return err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	if err := declare(channel, c.topology); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("declare topology: %w", err)
	}

	c.conn = conn
	c.channel = channel
	return nil
}

func declare(ch *amqp091.Channel, t Topology) error {
	for _, name := range t.Exchanges {
		if err := ch.ExchangeDeclare(name, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("exchange %s: %w", name, err)
		}
	}

	for _, name := range t.Queues {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue %s: %w", name, err)
		}
	}

	for _, b := range t.Bindings {
		if err := ch.QueueBind(b.Queue, b.RoutingKey, b.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s to %s with %s: %w", b.Queue, b.Exchange, b.RoutingKey, err)
		}
	}

	return nil
}

// Channel returns a live channel, reconnecting first if needed. A reconnect
// is a single dial bounded by dialTimeout. After a failure, callers get
// ErrReconnectBackoff until reconnectInterval has passed.
func (c *Connection) Channel(ctx context.Context) (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}

	if since := time.Since(c.lastAttempt); since < reconnectInterval {
		return nil, fmt.Errorf("%w: retry in %v", ErrReconnectBackoff, reconnectInterval-since)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.closeLocked()
	c.lastAttempt = time.Now()
	if err := c.dial(); err != nil {
		c.logger.Error("rabbitmq_reconnect_failed", "Failed to reconnect to RabbitMQ", "", err, nil)
		return nil, fmt.Errorf("reconnect: %w", err)
	}

	c.lastAttempt = time.Time{}
	c.logger.Info("rabbitmq_reconnected", "Reconnected to RabbitMQ", "", nil)
	return c.channel, nil
}

// Close closes the channel and the connection
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Connection) closeLocked() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		if err != nil && err != amqp091.ErrClosed {
			return err
		}
	}
	return nil
}
