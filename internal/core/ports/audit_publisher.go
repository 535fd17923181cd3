package ports

import (
	"context"
	"encoding/json"
)

// AuditEntry is the payload recorded for every transition, preserved for
// downstream compliance consumers. Field names are part of the audit contract.
type AuditEntry struct {
	UserID       string          `json:"userId"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resourceType"`
	ResourceID   string          `json:"resourceId"`
	Payload      json.RawMessage `json:"payload"`
	IP           string          `json:"ip"`
	UserAgent    string          `json:"userAgent"`
}

// AuditPublisher hands an audit entry to a durable queue with at-least-once
// delivery. Publication is fire-and-forget from the caller's point of view:
// it runs after the transition has committed, a failure is logged but never
// surfaced, and nothing is rolled back. In the pathological case of a crash
// between commit and publish the entry is lost; that trade-off is accepted in
// exchange for keeping auditing off the request path.
type AuditPublisher interface {
	Publish(ctx context.Context, entry AuditEntry) error
}
