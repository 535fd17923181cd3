// Package kitchen provides the domain model for the kitchen order lifecycle.
//
// The package includes:
//   - Status: a state machine over kitchen statuses, expressed as a plain
//     adjacency table from each status to its legal successors
//   - Event: an immutable timeline entry recording a single status transition,
//     including the elapsed preparation time since the previous entry
//   - Order: the order aggregate carrying the cached (denormalized) status
//
// Key business rules:
//   - The first event of any order must be the pending status
//   - No-op transitions (requested == current) are rejected, not silently accepted
//   - Served and cancelled are terminal; no transition leaves them
//   - Events are never mutated once created; corrections append new events
//   - The event log is the source of truth; Order.status is a cache that may
//     drift and is corrected out-of-band by the reconciliation job
package kitchen
