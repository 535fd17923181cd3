package kitchen_test

import (
	"fmt"
	"testing"

	"kds/internal/core/domain/model/kitchen"
	"kds/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Constants(t *testing.T) {
	t.Run("should have correct enum values", func(t *testing.T) {
		assert.Equal(t, 0, int(kitchen.Unknown))
		assert.Equal(t, 1, int(kitchen.Pending))
		assert.Equal(t, 2, int(kitchen.InProgress))
		assert.Equal(t, 3, int(kitchen.Ready))
		assert.Equal(t, 4, int(kitchen.Served))
		assert.Equal(t, 5, int(kitchen.Cancelled))
	})
}

func TestStatus_String(t *testing.T) {
	cases := map[kitchen.Status]string{
		kitchen.Unknown:    "unknown",
		kitchen.Pending:    "pending",
		kitchen.InProgress: "in_progress",
		kitchen.Ready:      "ready",
		kitchen.Served:     "served",
		kitchen.Cancelled:  "cancelled",
	}

	for status, expected := range cases {
		assert.Equal(t, expected, status.String())
	}

	t.Run("should render out-of-range values as unknown", func(t *testing.T) {
		assert.Equal(t, "unknown", kitchen.Status(42).String())
	})
}

func TestStatusFromString(t *testing.T) {
	t.Run("should parse all wire representations", func(t *testing.T) {
		cases := map[string]kitchen.Status{
			"pending":     kitchen.Pending,
			"in_progress": kitchen.InProgress,
			"ready":       kitchen.Ready,
			"served":      kitchen.Served,
			"cancelled":   kitchen.Cancelled,
		}

		for input, expected := range cases {
			status, err := kitchen.StatusFromString(input)
			require.NoError(t, err)
			assert.Equal(t, expected, status)
		}
	})

	t.Run("should reject unrecognized input", func(t *testing.T) {
		for _, input := range []string{"", "unknown", "PENDING", "done", "in progress"} {
			_, err := kitchen.StatusFromString(input)
			require.Error(t, err, "expected error for %q", input)
			assert.IsType(t, &errs.ValueIsInvalidError{}, err)
		}
	})
}

func TestStatus_Validate(t *testing.T) {
	t.Run("should validate valid statuses", func(t *testing.T) {
		validStatuses := []kitchen.Status{
			kitchen.Pending,
			kitchen.InProgress,
			kitchen.Ready,
			kitchen.Served,
			kitchen.Cancelled,
		}

		for _, status := range validStatuses {
			t.Run(fmt.Sprintf("should validate %s status", status.String()), func(t *testing.T) {
				require.NoError(t, status.Validate())
			})
		}
	})

	t.Run("should reject invalid status values", func(t *testing.T) {
		invalidStatuses := []kitchen.Status{
			kitchen.Unknown,
			kitchen.Status(-1),
			kitchen.Status(6),
			kitchen.Status(100),
		}

		for _, status := range invalidStatuses {
			t.Run(fmt.Sprintf("should reject status value %d", int(status)), func(t *testing.T) {
				err := status.Validate()

				require.Error(t, err)
				assert.IsType(t, &errs.ValueIsInvalidError{}, err)
				assert.Contains(t, err.Error(), "is not a valid status")
			})
		}
	})
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, kitchen.Pending.IsTerminal())
	assert.False(t, kitchen.InProgress.IsTerminal())
	assert.False(t, kitchen.Ready.IsTerminal())
	assert.True(t, kitchen.Served.IsTerminal())
	assert.True(t, kitchen.Cancelled.IsTerminal())

	t.Run("invalid statuses are not terminal", func(t *testing.T) {
		assert.False(t, kitchen.Unknown.IsTerminal())
		assert.False(t, kitchen.Status(42).IsTerminal())
	})
}

func TestActiveStatuses(t *testing.T) {
	active := kitchen.ActiveStatuses()

	assert.Len(t, active, 3)
	for _, status := range active {
		assert.False(t, status.IsTerminal(), "%s must not be terminal", status)
		require.NoError(t, status.Validate())
	}
}

func TestValidateTransition(t *testing.T) {
	ptr := func(s kitchen.Status) *kitchen.Status { return &s }

	t.Run("should allow every legal transition", func(t *testing.T) {
		legal := []struct {
			from kitchen.Status
			to   kitchen.Status
		}{
			{kitchen.Pending, kitchen.InProgress},
			{kitchen.Pending, kitchen.Cancelled},
			{kitchen.InProgress, kitchen.Ready},
			{kitchen.InProgress, kitchen.Pending},
			{kitchen.Ready, kitchen.Served},
			{kitchen.Ready, kitchen.InProgress},
		}

		for _, tc := range legal {
			t.Run(fmt.Sprintf("%s to %s", tc.from, tc.to), func(t *testing.T) {
				require.NoError(t, kitchen.ValidateTransition(ptr(tc.from), tc.to))
			})
		}
	})

	t.Run("should reject every pair not in the adjacency table", func(t *testing.T) {
		legal := map[kitchen.Status][]kitchen.Status{
			kitchen.Pending:    {kitchen.InProgress, kitchen.Cancelled},
			kitchen.InProgress: {kitchen.Ready, kitchen.Pending},
			kitchen.Ready:      {kitchen.Served, kitchen.InProgress},
			kitchen.Served:     {},
			kitchen.Cancelled:  {},
		}

		all := []kitchen.Status{
			kitchen.Pending, kitchen.InProgress, kitchen.Ready, kitchen.Served, kitchen.Cancelled,
		}

		for _, from := range all {
			for _, to := range all {
				allowed := false
				for _, successor := range legal[from] {
					if successor == to {
						allowed = true
					}
				}
				if allowed {
					continue
				}

				t.Run(fmt.Sprintf("%s to %s", from, to), func(t *testing.T) {
					err := kitchen.ValidateTransition(ptr(from), to)
					require.Error(t, err)
					assert.IsType(t, &errs.ValueIsInvalidError{}, err)
				})
			}
		}
	})

	t.Run("should reject no-op transitions with a dedicated reason", func(t *testing.T) {
		err := kitchen.ValidateTransition(ptr(kitchen.Ready), kitchen.Ready)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "already in the ready status")
	})

	t.Run("should name both states for illegal transitions", func(t *testing.T) {
		err := kitchen.ValidateTransition(ptr(kitchen.Pending), kitchen.Served)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot transition from pending directly to served")
	})

	t.Run("should require pending as the first status", func(t *testing.T) {
		require.NoError(t, kitchen.ValidateTransition(nil, kitchen.Pending))

		for _, requested := range []kitchen.Status{
			kitchen.InProgress, kitchen.Ready, kitchen.Served, kitchen.Cancelled,
		} {
			err := kitchen.ValidateTransition(nil, requested)
			require.Error(t, err, "expected error for first status %s", requested)
			assert.Contains(t, err.Error(), "new orders must start in the pending status")
		}
	})

	t.Run("should reject terminal states as a source", func(t *testing.T) {
		require.Error(t, kitchen.ValidateTransition(ptr(kitchen.Served), kitchen.Pending))
		require.Error(t, kitchen.ValidateTransition(ptr(kitchen.Cancelled), kitchen.InProgress))
	})

	t.Run("should reject invalid requested status", func(t *testing.T) {
		require.Error(t, kitchen.ValidateTransition(ptr(kitchen.Pending), kitchen.Unknown))
		require.Error(t, kitchen.ValidateTransition(nil, kitchen.Status(42)))
	})
}
