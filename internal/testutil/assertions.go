package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/planflow/internal/instruction"
)

// RequireTimed checks that every move under c carries a state waypoint and
// that times never decrease, starting at zero. It returns the states in
// program order.
func RequireTimed(t *testing.T, c *instruction.Composite) []*instruction.StateWaypoint {
	t.Helper()

	moves := instruction.FlattenMoves(c)
	require.NotEmpty(t, moves, "program %q has no moves", c.Description)
	states := make([]*instruction.StateWaypoint, 0, len(moves))
	for i, m := range moves {
		st, err := instruction.AsState(m.Waypoint())
		require.NoError(t, err, "move %d", i)
		if i == 0 {
			require.Zero(t, st.Time, "first state must start at zero")
		} else {
			require.GreaterOrEqual(t, st.Time, states[i-1].Time, "time decreases at move %d", i)
		}
		states = append(states, st)
	}
	return states
}

// RequireAfter checks that the run recorded as later started after the run
// recorded as earlier finished.
func RequireAfter(t *testing.T, records map[string]ExecutionRecord, earlier, later string) {
	t.Helper()

	e, ok := records[earlier]
	require.True(t, ok, "%q never ran", earlier)
	l, ok := records[later]
	require.True(t, ok, "%q never ran", later)
	require.False(t, l.Start.Before(e.End), "%q started before %q finished", later, earlier)
}
