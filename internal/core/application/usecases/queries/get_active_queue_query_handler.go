package queries

import (
	"context"
	"database/sql"

	"kds/internal/core/domain/model/kernel"
	"kds/internal/core/domain/model/kitchen"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveQueueQueryHandler builds the active-queue projection from the
// orders table joined with each order's single most recent event and its
// items.
type GetActiveQueueQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveQueueQueryHandler creates a handler for active-queue queries.
// Requires a GORM database connection for query execution.
func NewGetActiveQueueQueryHandler(db *gorm.DB) GetActiveQueueQueryHandler {
	return GetActiveQueueQueryHandler{db: db}
}

// Handle executes the projection. Orders are returned oldest first; orders in
// terminal states or soft-deleted are excluded by the cached status filter.
func (h GetActiveQueueQueryHandler) Handle(
	ctx context.Context,
	query GetActiveQueueQuery,
) ([]GetActiveQueueQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	active := make([]int, 0, len(kitchen.ActiveStatuses()))
	for _, status := range kitchen.ActiveStatuses() {
		active = append(active, int(status))
	}

	results := make([]GetActiveQueueQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.status,
			o.created_at,
			e.id,
			e.status,
			e.timestamp,
			e.elapsed_minutes,
			e.actor_id
		FROM orders o
		LEFT JOIN kitchen_events e ON e.id = (
			SELECT e2.id
			FROM kitchen_events e2
			WHERE e2.order_id = o.id AND e2.deleted_at IS NULL
			ORDER BY e2.timestamp DESC, e2.created_at DESC
			LIMIT 1
		)
		WHERE o.deleted_at IS NULL AND o.status IN ?
		ORDER BY o.created_at ASC
	`, active).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID     uuid.UUID
			orderStatus int
			createdAt   sql.NullTime
			eventID     uuid.NullUUID
			eventStatus sql.NullInt64
			eventTime   sql.NullTime
			elapsed     sql.NullInt64
			eventActor  sql.NullString
		)

		if err = rows.Scan(
			&orderID,
			&orderStatus,
			&createdAt,
			&eventID,
			&eventStatus,
			&eventTime,
			&elapsed,
			&eventActor,
		); err != nil {
			return nil, err
		}

		id, idErr := kernel.UUIDFromBytes(orderID[:])
		if idErr != nil {
			return nil, idErr
		}

		resp := GetActiveQueueQueryResponse{
			OrderID:   id,
			Status:    kitchen.Status(orderStatus),
			CreatedAt: createdAt.Time,
			Items:     make([]QueueItem, 0),
		}

		if eventID.Valid {
			evID, evErr := kernel.UUIDFromBytes(eventID.UUID[:])
			if evErr != nil {
				return nil, evErr
			}

			event := QueueEvent{
				ID:        evID,
				Status:    kitchen.Status(eventStatus.Int64),
				Timestamp: eventTime.Time,
			}
			if elapsed.Valid {
				minutes := int(elapsed.Int64)
				event.ElapsedMinutes = &minutes
			}
			if eventActor.Valid {
				actor := eventActor.String
				event.ActorID = &actor
			}
			resp.LatestEvent = &event
		}

		results = append(results, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if err = h.attachItems(ctx, results); err != nil {
		return nil, err
	}

	return results, nil
}

// attachItems loads the order items for every queued order in one query and
// distributes them onto the responses.
func (h GetActiveQueueQueryHandler) attachItems(ctx context.Context, queue []GetActiveQueueQueryResponse) error {
	if len(queue) == 0 {
		return nil
	}

	index := make(map[uuid.UUID]int, len(queue))
	ids := make([]uuid.UUID, 0, len(queue))
	for i, resp := range queue {
		raw := resp.OrderID.Bytes()
		index[raw] = i
		ids = append(ids, raw)
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT order_id, name, quantity
		FROM order_items
		WHERE deleted_at IS NULL AND order_id IN ?
		ORDER BY id ASC
	`, ids).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID  uuid.UUID
			name     string
			quantity int
		)

		if err = rows.Scan(&orderID, &name, &quantity); err != nil {
			return err
		}

		if i, ok := index[orderID]; ok {
			queue[i].Items = append(queue[i].Items, QueueItem{Name: name, Quantity: quantity})
		}
	}

	return rows.Err()
}
