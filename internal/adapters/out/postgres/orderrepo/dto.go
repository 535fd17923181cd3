// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order aggregate as the kitchen
// engine sees it, handling the conversion between domain entities and database rows.
package orderrepo

import (
	"time"

	"kds/internal/core/domain/model/kernel"
	"kds/internal/core/domain/model/kitchen"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderDTO represents the database structure for persisting orders.
// The status column is the denormalized cache of the latest event's status,
// indexed because the active-queue projection filters on it.
type OrderDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Status    int       `gorm:"index"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO represents one line of an order. Items are written by the
// order-taking subsystem; the kitchen engine only reads them for the queue
// projection, but the schema is declared here so migrations stay in one place.
type OrderItemDTO struct {
	ID        uint      `gorm:"primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;index"`
	Name      string
	Quantity  int
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the database table name for order items.
func (OrderItemDTO) TableName() string {
	return "order_items"
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(order *kitchen.Order) OrderDTO {
	return OrderDTO{
		ID:        order.ID().Bytes(),
		Status:    int(order.Status()),
		CreatedAt: order.CreatedAt(),
	}
}

// toDomain converts a database DTO to an order aggregate using RestoreOrder.
func toDomain(dto OrderDTO) (*kitchen.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return kitchen.RestoreOrder(id, kitchen.Status(dto.Status), dto.CreatedAt)
}
