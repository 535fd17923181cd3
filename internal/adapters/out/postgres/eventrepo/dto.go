// Package eventrepo provides data transfer objects and mapping functions for the
// kitchen timeline. Events are append-only: the repository exposes no update, and
// removal is a soft delete reserved for corrections.
package eventrepo

import (
	"time"

	"kds/internal/core/domain/model/kernel"
	"kds/internal/core/domain/model/kitchen"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventDTO represents the database structure for persisting timeline events.
// Timestamp (when the transition occurred, possibly backdated) and CreatedAt
// (when the row was written) are stored separately; reads order by both so
// same-timestamp events keep their insertion order.
type EventDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;index"`
	Status         int
	Timestamp      time.Time `gorm:"index"`
	ElapsedMinutes *int
	ActorID        *string
	Notes          *string
	CreatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the database table name for timeline events.
func (EventDTO) TableName() string {
	return "kitchen_events"
}

// fromDomain converts an event entity to its database representation.
func fromDomain(event *kitchen.Event) EventDTO {
	return EventDTO{
		ID:             event.ID().Bytes(),
		OrderID:        event.OrderID().Bytes(),
		Status:         int(event.Status()),
		Timestamp:      event.Timestamp(),
		ElapsedMinutes: event.ElapsedMinutes(),
		ActorID:        event.ActorID(),
		Notes:          event.Notes(),
		CreatedAt:      event.CreatedAt(),
	}
}

// toDomain converts a database DTO to an event entity using RestoreEvent.
func toDomain(dto EventDTO) (*kitchen.Event, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	return kitchen.RestoreEvent(
		id,
		orderID,
		kitchen.Status(dto.Status),
		dto.Timestamp,
		dto.ElapsedMinutes,
		dto.ActorID,
		dto.Notes,
		dto.CreatedAt,
	)
}
