package auditrepo

import (
	"context"

	"kds/internal/core/ports"

	"gorm.io/gorm"
)

// GormAuditRepository implements the audit sink using GORM.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GORM audit repository.
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Add appends an audit record. Records are never updated or deleted.
func (r *GormAuditRepository) Add(ctx context.Context, entry ports.AuditEntry) error {
	dto := fromEntry(entry)
	return r.db.WithContext(ctx).Create(&dto).Error
}
