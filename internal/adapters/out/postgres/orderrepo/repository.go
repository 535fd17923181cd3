package orderrepo

import (
	"context"
	"errors"

	"kds/internal/core/domain/model/kernel"
	"kds/internal/core/domain/model/kitchen"
	"kds/internal/core/ports"
	"kds/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*kitchen.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetForUpdate retrieves an order by ID with a SELECT ... FOR UPDATE row lock.
// Must be called inside a transaction; the lock holds until commit or rollback,
// which serializes concurrent transitions on the same order.
func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*kitchen.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Update saves the order's cached status to the database.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *kitchen.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", dto.ID).Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// FindDrifted returns every order whose cached status disagrees with its most
// recent non-deleted event. Orders without any events cannot drift and are
// excluded by the join.
func (r *GormOrderRepository) FindDrifted(ctx context.Context) ([]ports.Drift, error) {
	drifts := make([]ports.Drift, 0)

	rows, err := r.db.WithContext(ctx).Raw(`
		SELECT o.id, o.status, e.status
		FROM orders o
		JOIN kitchen_events e ON e.id = (
			SELECT e2.id
			FROM kitchen_events e2
			WHERE e2.order_id = o.id AND e2.deleted_at IS NULL
			ORDER BY e2.timestamp DESC, e2.created_at DESC
			LIMIT 1
		)
		WHERE o.deleted_at IS NULL AND o.status <> e.status
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID uuid.UUID
			cached  int
			actual  int
		)

		if err = rows.Scan(&orderID, &cached, &actual); err != nil {
			return nil, err
		}

		id, idErr := kernel.UUIDFromBytes(orderID[:])
		if idErr != nil {
			return nil, idErr
		}

		drifts = append(drifts, ports.Drift{
			OrderID: id,
			Cached:  kitchen.Status(cached),
			Actual:  kitchen.Status(actual),
		})
	}

	return drifts, rows.Err()
}
