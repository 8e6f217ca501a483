package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Agent(t *testing.T) {
	t.Parallel()

	r := execute(t, "", "run", "--mode", "agent", "--tick-interval", "1ms", walkerScenario)
	require.NoError(t, r.err, r.stderr)
	assert.Contains(t, r.stdout, "in agent mode")
	assert.Contains(t, r.stdout, "  1. walk\n  2. want to fly\n  3. fly close\n  4. fly close\n")
	assert.Contains(t, r.stdout, "(1 replans)")
	assert.Contains(t, r.stdout, "  IsNearby: 5 (true)\n")
	assert.Contains(t, r.stdout, "  CanFly: can fly (true)\n")
}

func TestRun_Reactive(t *testing.T) {
	t.Parallel()

	r := execute(t, "", "run", "--mode", "reactive", "--tick-interval", "1ms", walkerScenario)
	require.NoError(t, r.err, r.stderr)
	assert.Contains(t, r.stdout, "in reactive mode")
	assert.Contains(t, r.stdout, "✓ Goal reached after")
	assert.NotContains(t, r.stdout, "replans")
	assert.Contains(t, r.stdout, "  IsNearby: 5 (true)\n")
}

func TestRun_TickLimit(t *testing.T) {
	t.Parallel()

	r := execute(t, "", "run", "--tick-interval", "1ms", "--max-ticks", "2", walkerScenario)
	require.EqualError(t, r.err, "Goal not reached")
	assert.Contains(t, r.stderr, "Stopped after 2 ticks.")
	assert.Contains(t, r.stderr, "ticks: 2")
}

func TestRun_AgentGivesUpOnUnreachableGoal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stuck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
keys: [A, B]
facts: {A: true}
goal: {B: true}
actions:
  - name: noop
    pre: {B: true}
    effects: [{key: A, set: true}]
`), 0644))

	// the agent keeps replanning toward an unreachable goal
	r := execute(t, "", "run", "--tick-interval", "1ms", "--max-ticks", "5", path)
	require.EqualError(t, r.err, "Goal not reached")
}

func TestRun_InvalidSettings(t *testing.T) {
	t.Parallel()

	r := execute(t, "", "run", "--mode", "hybrid", walkerScenario)
	require.EqualError(t, r.err, "Invalid run settings")

	r = execute(t, "", "run", "--max-ticks", "-1", walkerScenario)
	require.EqualError(t, r.err, "Invalid run settings")
}
