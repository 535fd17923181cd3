// Package rabbit provides the RabbitMQ transport for audit publication.
// Audit entries leave the request path through a durable queue so that a slow
// or unavailable audit store never delays a kitchen transition.
package rabbit

import (
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// AuditExchange receives every audit entry.
	AuditExchange = "kds.audit"

	// AuditQueue is the durable queue the audit worker consumes from.
	AuditQueue = "kds.audit.queue"

	// AuditRoutingKey routes entries from the exchange to the queue.
	AuditRoutingKey = "audit.entry"

	// AuditDLXExchange receives entries the worker gave up on.
	AuditDLXExchange = "kds.audit.dlx"

	// AuditDLQ parks poisoned entries for manual inspection.
	AuditDLQ = "kds.audit.dlq"
)

// Connection wraps an AMQP connection and guards it against use after Close.
type Connection struct {
	conn   *amqp.Connection
	mu     sync.RWMutex
	closed bool
}

// Connect dials the broker at the given AMQP URL.
func Connect(url string) (*Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	return &Connection{conn: conn}, nil
}

// Channel opens a fresh channel on the connection.
func (c *Connection) Channel() (*amqp.Channel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("connection is closed")
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return ch, nil
}

// Close shuts the connection down permanently.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}

// DeclareAuditTopology declares the durable audit exchange, queue, and the
// dead-letter pair. Declarations are idempotent; both the publisher and the
// worker call this so whichever side starts first creates the topology.
func DeclareAuditTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(AuditExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare audit exchange: %w", err)
	}

	if err := ch.ExchangeDeclare(AuditDLXExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare audit DLX: %w", err)
	}

	if _, err := ch.QueueDeclare(AuditDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare audit DLQ: %w", err)
	}

	// dead-lettered messages keep their original routing key
	if err := ch.QueueBind(AuditDLQ, AuditRoutingKey, AuditDLXExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind audit DLQ: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange": AuditDLXExchange,
	}
	if _, err := ch.QueueDeclare(AuditQueue, true, false, false, false, args); err != nil {
		return fmt.Errorf("failed to declare audit queue: %w", err)
	}

	if err := ch.QueueBind(AuditQueue, AuditRoutingKey, AuditExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind audit queue: %w", err)
	}

	return nil
}
