package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"kds/internal/core/domain/model/kernel"
	"kds/internal/core/domain/model/kitchen"
	"kds/internal/core/ports"
)

// RecordTransitionCommandHandler executes the append path of the kitchen
// timeline: validate the requested transition against the order's latest
// event, append the new event with its elapsed preparation time, refresh the
// order's cached status, and hand an audit entry to the durable queue.
//
// Concurrency: the whole read-validate-append sequence runs inside one
// transaction with the order row locked (GetForUpdate). Two racing transitions
// on the same order serialize on that lock; the loser re-reads the winner's
// event and gets an invalid-transition error instead of silently appending a
// sibling. Transitions on distinct orders never contend.
//
// Audit publication happens after commit, outside the transaction. A publish
// failure is logged with the full entry for forensic replay and never rolls
// back or fails the transition.
type RecordTransitionCommandHandler struct {
	uowFactory UoWFactory
	audit      ports.AuditPublisher
	logger     *slog.Logger
}

// NewRecordTransitionCommandHandler creates a handler for recording kitchen
// status transitions.
func NewRecordTransitionCommandHandler(
	uowFactory UoWFactory,
	audit ports.AuditPublisher,
	logger *slog.Logger,
) RecordTransitionCommandHandler {
	return RecordTransitionCommandHandler{
		uowFactory: uowFactory,
		audit:      audit,
		logger:     logger.With("component", "record_transition_handler"),
	}
}

// Handle processes the transition command and returns the created event.
//
// Error taxonomy, preserved for the HTTP layer:
//   - invalid transition or missing actor: errs.ErrValueIsInvalid / ErrValueIsRequired
//   - unknown order: errs.ErrObjectNotFound
//   - anything else: storage failure, opaque to the caller
func (h *RecordTransitionCommandHandler) Handle(
	ctx context.Context,
	cmd RecordTransitionCommand,
) (*kitchen.Event, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	order, err := uow.OrderRepository().GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	eventRepo := uow.EventRepository()
	prev, err := eventRepo.GetLatest(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	actorID := cmd.ActorID()
	event, err := kitchen.NewEvent(
		kernel.NewUUID(),
		cmd.OrderID(),
		cmd.Status(),
		time.Now().UTC(),
		prev,
		&actorID,
		cmd.Notes(),
	)
	if err != nil {
		return nil, err
	}

	if err = eventRepo.Add(ctx, event); err != nil {
		return nil, err
	}

	if err = order.ChangeStatus(cmd.Status()); err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Update(ctx, order); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publishAudit(ctx, cmd, event)

	return event, nil
}

// auditEventPayload is the event snapshot embedded in the audit entry.
type auditEventPayload struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	ElapsedMinutes *int      `json:"elapsedMinutes"`
	ActorID        *string   `json:"actorId"`
	Notes          *string   `json:"notes"`
}

// publishAudit hands the committed transition to the audit queue. Best effort:
// failures are logged with the full entry and swallowed.
func (h *RecordTransitionCommandHandler) publishAudit(
	ctx context.Context,
	cmd RecordTransitionCommand,
	event *kitchen.Event,
) {
	payload, err := json.Marshal(auditEventPayload{
		ID:             event.ID().String(),
		OrderID:        event.OrderID().String(),
		Status:         event.Status().String(),
		Timestamp:      event.Timestamp(),
		ElapsedMinutes: event.ElapsedMinutes(),
		ActorID:        event.ActorID(),
		Notes:          event.Notes(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to marshal audit payload",
			"error", err, "event_id", event.ID().String())
		return
	}

	entry := ports.AuditEntry{
		UserID:       cmd.ActorID(),
		Action:       fmt.Sprintf("kds.status.%s", event.Status()),
		ResourceType: "order",
		ResourceID:   event.OrderID().String(),
		Payload:      payload,
		IP:           cmd.Meta().IP,
		UserAgent:    cmd.Meta().UserAgent,
	}

	if err := h.audit.Publish(ctx, entry); err != nil {
		h.logger.ErrorContext(ctx, "Audit publication failed; transition is already committed",
			"error", err,
			"user_id", entry.UserID,
			"action", entry.Action,
			"resource_type", entry.ResourceType,
			"resource_id", entry.ResourceID,
			"payload", string(entry.Payload),
			"ip", entry.IP,
			"user_agent", entry.UserAgent,
		)
	}
}
