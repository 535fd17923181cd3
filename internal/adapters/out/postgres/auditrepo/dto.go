// Package auditrepo persists audit entries delivered from the durable queue.
// The table is append-only and is never read by the engine itself; it exists
// for compliance consumers.
package auditrepo

import (
	"time"

	"kds/internal/core/ports"

	"gorm.io/datatypes"
)

// AuditLogDTO represents the database structure for the audit trail.
type AuditLogDTO struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       string `gorm:"index"`
	Action       string `gorm:"index"`
	ResourceType string
	ResourceID   string `gorm:"index"`
	Payload      datatypes.JSON
	IP           string
	UserAgent    string
	CreatedAt    time.Time
}

// TableName specifies the database table name for audit records.
func (AuditLogDTO) TableName() string {
	return "audit_log"
}

// fromEntry converts a queued audit entry to its database representation.
func fromEntry(entry ports.AuditEntry) AuditLogDTO {
	return AuditLogDTO{
		UserID:       entry.UserID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Payload:      datatypes.JSON(entry.Payload),
		IP:           entry.IP,
		UserAgent:    entry.UserAgent,
	}
}
