package queries_test

import (
	"testing"

	"kds/internal/core/application/usecases/queries"
	"kds/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetPerformanceQuery(t *testing.T) {
	t.Run("should create a query for a valid window", func(t *testing.T) {
		query, err := queries.NewGetPerformanceQuery(7)

		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.Equal(t, 7, query.WindowDays())
	})

	t.Run("should reject out-of-range windows", func(t *testing.T) {
		for _, days := range []int{0, -1, 366, 10000} {
			_, err := queries.NewGetPerformanceQuery(days)
			require.Error(t, err, "expected error for %d days", days)
			require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		}
	})

	t.Run("zero value query fails validation", func(t *testing.T) {
		query := queries.GetPerformanceQuery{}
		require.Error(t, query.Validate())
	})
}

func TestCombinePerformance(t *testing.T) {
	t.Run("should weight the overall average by event count", func(t *testing.T) {
		// actor A: 2 events averaging 10 minutes, actor B: 8 events averaging 20.
		// weighted: (2*10 + 8*20) / 10 = 18, not the naive (10+20)/2 = 15
		result := queries.CombinePerformance([]queries.ActorPerformance{
			{ActorID: "chef-a", AvgMinutes: 10, MaxMinutes: 14, Count: 2},
			{ActorID: "chef-b", AvgMinutes: 20, MaxMinutes: 35, Count: 8},
		})

		assert.InDelta(t, 18.0, result.AveragePrepMinutes, 1e-9)
		assert.NotEqual(t, 15.0, result.AveragePrepMinutes)
		assert.Equal(t, 10, result.TotalCompleted)
		assert.Equal(t, 35, result.LongestPrepMinutes)
	})

	t.Run("should match the independently computed weighted mean", func(t *testing.T) {
		groups := []queries.ActorPerformance{
			{ActorID: "chef-a", AvgMinutes: 3.5, MaxMinutes: 9, Count: 4},
			{ActorID: "chef-b", AvgMinutes: 12.25, MaxMinutes: 40, Count: 16},
			{ActorID: "system", AvgMinutes: 1, MaxMinutes: 1, Count: 3},
		}

		var weightedSum float64
		var total int
		longest := 0
		for _, g := range groups {
			weightedSum += g.AvgMinutes * float64(g.Count)
			total += g.Count
			if g.MaxMinutes > longest {
				longest = g.MaxMinutes
			}
		}

		result := queries.CombinePerformance(groups)

		assert.InDelta(t, weightedSum/float64(total), result.AveragePrepMinutes, 1e-9)
		assert.Equal(t, total, result.TotalCompleted)
		assert.Equal(t, longest, result.LongestPrepMinutes)
		assert.Equal(t, groups, result.PerActor)
	})

	t.Run("should return zeros on empty input", func(t *testing.T) {
		for _, input := range [][]queries.ActorPerformance{nil, {}} {
			result := queries.CombinePerformance(input)

			assert.Zero(t, result.AveragePrepMinutes)
			assert.Zero(t, result.TotalCompleted)
			assert.Zero(t, result.LongestPrepMinutes)
			assert.NotNil(t, result.PerActor)
			assert.Empty(t, result.PerActor)
		}
	})

	t.Run("single actor average equals its own average", func(t *testing.T) {
		result := queries.CombinePerformance([]queries.ActorPerformance{
			{ActorID: "chef-a", AvgMinutes: 6.5, MaxMinutes: 12, Count: 4},
		})

		assert.InDelta(t, 6.5, result.AveragePrepMinutes, 1e-9)
	})
}
