package queries

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// GetPerformanceQueryHandler aggregates preparation times per actor from the
// event log. Grouping happens in SQL; the count-weighted kitchen-wide average
// is folded in Go by CombinePerformance.
type GetPerformanceQueryHandler struct {
	db *gorm.DB
}

// NewGetPerformanceQueryHandler creates a handler for performance queries.
// Requires a GORM database connection for query execution.
func NewGetPerformanceQueryHandler(db *gorm.DB) GetPerformanceQueryHandler {
	return GetPerformanceQueryHandler{db: db}
}

// Handle executes the aggregation over the query's trailing window.
// An empty window yields a zero-valued report, never an error.
func (h GetPerformanceQueryHandler) Handle(
	ctx context.Context,
	query GetPerformanceQuery,
) (GetPerformanceQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetPerformanceQueryResponse{}, err
	}

	since := time.Now().UTC().AddDate(0, 0, -query.WindowDays())

	perActor := make([]ActorPerformance, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(e.actor_id, 'system') AS actor,
			AVG(e.elapsed_minutes) AS avg_minutes,
			MAX(e.elapsed_minutes) AS max_minutes,
			COUNT(*) AS event_count
		FROM kitchen_events e
		WHERE e.deleted_at IS NULL
			AND e.elapsed_minutes IS NOT NULL
			AND e.timestamp >= ?
		GROUP BY COALESCE(e.actor_id, 'system')
		ORDER BY actor ASC
	`, since).Rows()
	if err != nil {
		return GetPerformanceQueryResponse{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var actor ActorPerformance

		if err = rows.Scan(&actor.ActorID, &actor.AvgMinutes, &actor.MaxMinutes, &actor.Count); err != nil {
			return GetPerformanceQueryResponse{}, err
		}

		perActor = append(perActor, actor)
	}

	if err = rows.Err(); err != nil {
		return GetPerformanceQueryResponse{}, err
	}

	return CombinePerformance(perActor), nil
}
