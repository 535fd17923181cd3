package eventrepo

import (
	"context"
	"errors"

	"kds/internal/core/domain/model/kernel"
	"kds/internal/core/domain/model/kitchen"

	"gorm.io/gorm"
)

// GormEventRepository implements EventRepository using GORM.
type GormEventRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormEventRepository creates a new GORM event repository.
func NewGormEventRepository(db *gorm.DB, tracker aggregateTracker) *GormEventRepository {
	return &GormEventRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add appends a new timeline entry. Rows are never updated afterwards.
func (r *GormEventRepository) Add(ctx context.Context, event *kitchen.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	dto := fromDomain(event)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(event.ID(), event)
	return nil
}

// GetLatest retrieves the most recent non-deleted event of an order.
// Returns (nil, nil) when the order has no events yet.
func (r *GormEventRepository) GetLatest(ctx context.Context, orderID kernel.UUID) (*kitchen.Event, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto EventDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("timestamp DESC, created_at DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetTimeline returns all non-deleted events of an order, oldest first.
func (r *GormEventRepository) GetTimeline(ctx context.Context, orderID kernel.UUID) ([]*kitchen.Event, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []EventDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("timestamp ASC, created_at ASC").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	events := make([]*kitchen.Event, 0, len(dtos))
	for _, dto := range dtos {
		event, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, nil
}
