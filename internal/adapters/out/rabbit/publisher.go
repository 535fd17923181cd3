package rabbit

import (
	"context"
	"encoding/json"
	"fmt"

	"kds/internal/core/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AuditQueuePublisher implements AuditPublisher over a durable RabbitMQ queue.
// Messages are published persistent so an accepted entry survives a broker
// restart; delivery to the audit store is at-least-once.
type AuditQueuePublisher struct {
	conn *Connection
}

// NewAuditQueuePublisher creates a publisher on an established connection.
func NewAuditQueuePublisher(conn *Connection) *AuditQueuePublisher {
	return &AuditQueuePublisher{conn: conn}
}

// Publish hands an audit entry to the broker. A channel is opened per publish;
// channels are cheap and this keeps the publisher safe for concurrent use.
func (p *AuditQueuePublisher) Publish(ctx context.Context, entry ports.AuditEntry) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := DeclareAuditTopology(ch); err != nil {
		return err
	}

	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	err = ch.PublishWithContext(ctx, AuditExchange, AuditRoutingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish audit entry: %w", err)
	}

	return nil
}
