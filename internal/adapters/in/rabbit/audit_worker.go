// Package rabbit contains the inbound side of the audit pipeline: a worker
// that drains the durable audit queue into the audit store.
package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	outrabbit "kds/internal/adapters/out/rabbit"
	"kds/internal/core/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectDelay = 5 * time.Second

// AuditSink persists a delivered audit entry.
type AuditSink interface {
	Add(ctx context.Context, entry ports.AuditEntry) error
}

// AuditWorker consumes audit entries from the durable queue and writes them to
// the sink. Deliveries are acknowledged only after a successful write, giving
// at-least-once semantics; the sink must tolerate replays.
//
// Entries that cannot be decoded or stored are logged with their full payload
// and rejected without requeue, which parks them on the dead-letter queue
// instead of poisoning the consumer.
type AuditWorker struct {
	conn        *outrabbit.Connection
	sink        AuditSink
	logger      *slog.Logger
	concurrency int
	jobTimeout  time.Duration
}

// NewAuditWorker creates a worker with a bounded number of in-flight jobs.
// jobTimeout caps how long a single write to the sink may take.
func NewAuditWorker(
	conn *outrabbit.Connection,
	sink AuditSink,
	logger *slog.Logger,
	concurrency int,
	jobTimeout time.Duration,
) *AuditWorker {
	if concurrency < 1 {
		concurrency = 1
	}

	return &AuditWorker{
		conn:        conn,
		sink:        sink,
		logger:      logger.With("component", "audit_worker"),
		concurrency: concurrency,
		jobTimeout:  jobTimeout,
	}
}

// Run consumes until the context is cancelled, reconnecting with a fixed delay
// when the channel drops. Blocks; callers run it in a goroutine.
func (w *AuditWorker) Run(ctx context.Context) error {
	for {
		err := w.consume(ctx)

		if ctx.Err() != nil {
			return ctx.Err()
		}

		w.logger.Error("audit consumer disconnected, reconnecting",
			"error", err,
			"delay", reconnectDelay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (w *AuditWorker) consume(ctx context.Context) error {
	ch, err := w.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	closeChan := ch.NotifyClose(make(chan *amqp.Error, 1))

	// prefetch matches the pool size so the broker never hands us more than
	// we can process concurrently
	if err := ch.Qos(w.concurrency, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := outrabbit.DeclareAuditTopology(ch); err != nil {
		return err
	}

	msgs, err := ch.Consume(outrabbit.AuditQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	return w.runPool(ctx, ch, msgs, closeChan)
}

// runPool fans deliveries out to the handler pool and blocks until the
// context is cancelled or the channel drops. Cancellation must close the
// channel before joining the pool: the workers only stop once msgs is
// closed, and msgs only closes with the channel. Unacked deliveries are
// requeued by the broker, not dead-lettered.
func (w *AuditWorker) runPool(
	ctx context.Context, ch io.Closer, msgs <-chan amqp.Delivery, closeChan <-chan *amqp.Error,
) error {
	var wg sync.WaitGroup
	for range w.concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range msgs {
				w.handle(ctx, msg)
			}
		}()
	}

	select {
	case <-ctx.Done():
		_ = ch.Close()
		wg.Wait()
		return ctx.Err()
	case amqpErr := <-closeChan:
		wg.Wait()
		if amqpErr != nil {
			return fmt.Errorf("channel closed: %w", amqpErr)
		}
		return fmt.Errorf("channel closed gracefully")
	}
}

func (w *AuditWorker) handle(ctx context.Context, msg amqp.Delivery) {
	var entry ports.AuditEntry
	if err := json.Unmarshal(msg.Body, &entry); err != nil {
		w.logger.Error("failed to decode audit entry, sending to DLQ",
			"error", err,
			"payload", string(msg.Body))
		_ = msg.Nack(false, false)
		return
	}

	// the entry is already off the queue; a shutdown in progress must not
	// turn it into a dead letter, so the write runs on its own deadline
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.jobTimeout)
	defer cancel()

	if err := w.sink.Add(jobCtx, entry); err != nil {
		w.logger.Error("failed to store audit entry, sending to DLQ",
			"error", err,
			"action", entry.Action,
			"resourceId", entry.ResourceID,
			"payload", string(msg.Body))
		_ = msg.Nack(false, false)
		return
	}

	_ = msg.Ack(false)
}
