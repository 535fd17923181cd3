package queries

import (
	"context"
	"database/sql"
	"time"

	"kds/internal/core/domain/model/kernel"
	"kds/internal/core/domain/model/kitchen"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetTimelineQueryHandler reads an order's event history straight from the
// event log table.
type GetTimelineQueryHandler struct {
	db *gorm.DB
}

// NewGetTimelineQueryHandler creates a handler for timeline queries.
// Requires a GORM database connection for query execution.
func NewGetTimelineQueryHandler(db *gorm.DB) GetTimelineQueryHandler {
	return GetTimelineQueryHandler{db: db}
}

// Handle returns every event of the order, oldest first. An order with no
// events yields an empty timeline, not an error.
func (h GetTimelineQueryHandler) Handle(
	ctx context.Context,
	query GetTimelineQuery,
) (GetTimelineQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetTimelineQueryResponse{}, err
	}

	events := make([]TimelineEvent, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT id, order_id, status, timestamp, elapsed_minutes, actor_id, notes, created_at
		FROM kitchen_events
		WHERE order_id = ? AND deleted_at IS NULL
		ORDER BY timestamp ASC, created_at ASC
	`, query.OrderID().Bytes()).Rows()
	if err != nil {
		return GetTimelineQueryResponse{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id        uuid.UUID
			orderID   uuid.UUID
			status    int
			timestamp time.Time
			elapsed   sql.NullInt64
			actor     sql.NullString
			notes     sql.NullString
			createdAt time.Time
		)

		if err = rows.Scan(&id, &orderID, &status, &timestamp, &elapsed, &actor, &notes, &createdAt); err != nil {
			return GetTimelineQueryResponse{}, err
		}

		eventID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return GetTimelineQueryResponse{}, idErr
		}
		eventOrderID, idErr := kernel.UUIDFromBytes(orderID[:])
		if idErr != nil {
			return GetTimelineQueryResponse{}, idErr
		}

		event := TimelineEvent{
			ID:        eventID,
			OrderID:   eventOrderID,
			Status:    kitchen.Status(status),
			Timestamp: timestamp,
			CreatedAt: createdAt,
		}
		if elapsed.Valid {
			minutes := int(elapsed.Int64)
			event.ElapsedMinutes = &minutes
		}
		if actor.Valid {
			actorID := actor.String
			event.ActorID = &actorID
		}
		if notes.Valid {
			note := notes.String
			event.Notes = &note
		}

		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return GetTimelineQueryResponse{}, err
	}

	return GetTimelineQueryResponse{Events: events}, nil
}
