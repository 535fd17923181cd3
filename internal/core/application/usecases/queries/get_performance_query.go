package queries

import (
	"errors"

	"kds/internal/pkg/errs"
	"kds/internal/pkg/guard"
)

var (
	ErrGetPerformanceQueryIsNotConstructed = errors.New(
		"GetPerformanceQuery must be created via NewGetPerformanceQuery constructor",
	)
)

// The window is capped at a year; a larger value is treated as a caller
// mistake rather than a report over the full history.
const (
	minWindowDays = 1
	maxWindowDays = 365
)

// GetPerformanceQuery computes kitchen performance figures over a trailing
// window: average and longest preparation time plus per-actor efficiency.
//
// Only events carrying an elapsedMinutes value qualify, i.e. every event
// except the first of each timeline. Events recorded without an actor are
// attributed to "system".
type GetPerformanceQuery struct {
	windowDays int

	guard guard.ConstructorGuard
}

// NewGetPerformanceQuery creates a performance query over the last windowDays days.
func NewGetPerformanceQuery(windowDays int) (GetPerformanceQuery, error) {
	if windowDays < minWindowDays || windowDays > maxWindowDays {
		return GetPerformanceQuery{}, errs.NewValueIsOutOfRangeError(
			"days", windowDays, minWindowDays, maxWindowDays)
	}

	return GetPerformanceQuery{
		windowDays: windowDays,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetPerformanceQuery) Validate() error {
	return q.guard.Validate(ErrGetPerformanceQueryIsNotConstructed)
}

// WindowDays returns the trailing window size in days.
func (q GetPerformanceQuery) WindowDays() int {
	return q.windowDays
}

// ActorPerformance holds the aggregates of one staff identity within the window.
type ActorPerformance struct {
	ActorID    string
	AvgMinutes float64
	MaxMinutes int
	Count      int
}

// GetPerformanceQueryResponse is the aggregate performance report.
//
// AveragePrepMinutes is the count-weighted mean across actors, not the naive
// average of per-actor averages: Σ(avg_i × count_i) / Σ(count_i). The naive
// version would let a low-volume actor skew the kitchen-wide figure.
type GetPerformanceQueryResponse struct {
	AveragePrepMinutes float64
	TotalCompleted     int
	LongestPrepMinutes int
	PerActor           []ActorPerformance
}

// CombinePerformance folds per-actor aggregates into the kitchen-wide report.
// Pure function; returns a zero-valued report (with an empty PerActor slice)
// when no qualifying events exist.
func CombinePerformance(perActor []ActorPerformance) GetPerformanceQueryResponse {
	resp := GetPerformanceQueryResponse{
		PerActor: perActor,
	}
	if resp.PerActor == nil {
		resp.PerActor = make([]ActorPerformance, 0)
	}

	var weightedSum float64
	for _, actor := range perActor {
		weightedSum += actor.AvgMinutes * float64(actor.Count)
		resp.TotalCompleted += actor.Count
		if actor.MaxMinutes > resp.LongestPrepMinutes {
			resp.LongestPrepMinutes = actor.MaxMinutes
		}
	}

	if resp.TotalCompleted > 0 {
		resp.AveragePrepMinutes = weightedSum / float64(resp.TotalCompleted)
	}

	return resp
}
