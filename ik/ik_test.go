package ik

import (
	"strings"
	"testing"
	"time"

	"github.com/gekko3d/armviz/kinematics"
	"github.com/gekko3d/armviz/urdf"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planarArm = `<robot name="planar">
  <link name="base"/>
  <link name="l1"/>
  <link name="l2"/>
  <link name="tool_dummy"/>
  <joint name="shoulder" type="revolute">
    <parent link="base"/><child link="l1"/>
    <axis xyz="0 1 0"/>
    <limit lower="-3" upper="3"/>
  </joint>
  <joint name="elbow" type="revolute">
    <origin xyz="0 0 1"/>
    <parent link="l1"/><child link="l2"/>
    <axis xyz="0 1 0"/>
    <limit lower="-3" upper="3"/>
  </joint>
  <joint name="tool" type="fixed">
    <origin xyz="0 0 1"/>
    <parent link="l2"/><child link="tool_dummy"/>
  </joint>
</robot>`

func buildRobot(t *testing.T) *kinematics.Robot {
	t.Helper()
	desc, err := urdf.Parse(strings.NewReader(planarArm))
	require.NoError(t, err)
	r, err := kinematics.Build(desc)
	require.NoError(t, err)
	return r
}

func TestChain_FromRobot(t *testing.T) {
	r := buildRobot(t)
	shoulder, _ := r.Joint("shoulder")
	shoulder.SetValue(0.4)
	r.UpdateMatrixWorld()

	c, err := FromRobot(r, "tool_dummy")
	require.NoError(t, err)
	assert.Equal(t, 2, c.DoF())
	assert.Equal(t, []string{"shoulder", "elbow"}, c.Names())
	assert.Equal(t, []float64{0.4, 0}, c.Values())

	tool, _ := r.Link("tool_dummy")
	got := c.Forward(nil)
	assert.InDeltaSlice(t, tool.World[:], got[:], 1e-9)

	_, err = FromRobot(r, "nope")
	assert.Error(t, err)
}

func TestChain_ApplyToRobot(t *testing.T) {
	r := buildRobot(t)
	c, err := FromRobot(r, "tool_dummy")
	require.NoError(t, err)

	c.ApplyToRobot(r, []float64{0.1, 5})
	elbow, _ := r.Joint("elbow")
	assert.Equal(t, 3.0, elbow.Value(), "limits are honoured")
	assert.Equal(t, []float64{0.1, 3}, c.Values())

	clone := c.Clone()
	clone.SetValues([]float64{0, 0})
	assert.Equal(t, []float64{0.1, 3}, c.Values(), "clones do not share segments")
}

func solveUntilDone(t *testing.T, s Solver, start []float64, goal Goal) Result {
	t.Helper()
	values := start
	var res Result
	for i := 0; i < 400; i++ {
		res = s.Solve(values, goal)
		if !res.Done {
			continue
		}
		values = res.Values
		if res.Status != Timeout {
			return res
		}
	}
	return res
}

func TestDLSSolver_ReachesGoal(t *testing.T) {
	for _, useSVD := range []bool{true, false} {
		r := buildRobot(t)
		c, err := FromRobot(r, "tool_dummy")
		require.NoError(t, err)

		target := []float64{0.8, -0.6}
		goal := GoalFromMatrix(c.Forward(target))

		opts := DefaultOptions()
		opts.UseSVD = useSVD
		s := NewDLSSolver(opts)
		s.UpdateStructure(c)

		res := solveUntilDone(t, s, []float64{0.3, 0.5}, goal)
		require.True(t, res.Done)
		assert.NotEqual(t, Diverged, res.Status)

		p := GoalFromMatrix(c.Forward(res.Values)).Position
		assert.InDelta(t, 0, p.Sub(goal.Position).Len(), 1e-2, "svd=%v", useSVD)
		assert.Positive(t, res.Elapsed)
	}
}

func TestDLSSolver_ConvergedImmediately(t *testing.T) {
	r := buildRobot(t)
	c, err := FromRobot(r, "tool_dummy")
	require.NoError(t, err)

	s := NewDLSSolver(DefaultOptions())
	s.UpdateStructure(c)
	res := s.Solve([]float64{0, 0}, GoalFromMatrix(c.Forward([]float64{0, 0})))
	assert.Equal(t, Converged, res.Status)
	assert.Equal(t, []float64{0, 0}, res.Values)
}

func TestDLSSolver_NoStructure(t *testing.T) {
	s := NewDLSSolver(DefaultOptions())
	res := s.Solve(nil, Goal{Rotation: mgl64.QuatIdent()})
	assert.True(t, res.Done)
	assert.Equal(t, Stalled, res.Status)
}

func TestOptions_Merge(t *testing.T) {
	opts, err := DefaultOptions().Merge(map[string]any{
		"maxIterations": "10",
		"useSVD":        false,
		"dampingFactor": 0.05,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, opts.MaxIterations)
	assert.False(t, opts.UseSVD)
	assert.Equal(t, 0.05, opts.DampingFactor)
	assert.Equal(t, 1e-4, opts.StallThreshold, "unspecified keys keep their value")

	_, err = DefaultOptions().Merge(map[string]any{"bogus": 1})
	assert.Error(t, err)

	m, err := DefaultOptions().ToMap()
	require.NoError(t, err)
	assert.Equal(t, 5, m["maxIterations"])
}

func waitResult(t *testing.T, w *WorkerSolver, goal Goal) Result {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		res := w.Solve(nil, goal)
		if res.Done && res.Status != Timeout {
			return res
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("worker did not finish")
	return Result{}
}

func TestWorkerSolver_Solve(t *testing.T) {
	r := buildRobot(t)
	c, err := FromRobot(r, "tool_dummy")
	require.NoError(t, err)

	c.SetValues([]float64{0.2, 0.2})

	w := NewWorkerSolver(DefaultOptions())
	defer w.Close()

	w.UpdateStructure(c)
	goal := GoalFromMatrix(c.Forward([]float64{0.5, 0.4}))
	res := waitResult(t, w, goal)

	got := GoalFromMatrix(c.Forward(res.Values)).Position
	assert.InDelta(t, 0, got.Sub(goal.Position).Len(), 1e-2)
	assert.False(t, w.Running())
	assert.NotZero(t, w.Rounds())
	assert.Positive(t, res.Elapsed)
}

func TestWorkerSolver_DropsStaleStructure(t *testing.T) {
	r := buildRobot(t)
	c, err := FromRobot(r, "tool_dummy")
	require.NoError(t, err)

	w := NewWorkerSolver(DefaultOptions())
	defer w.Close()

	w.UpdateStructure(c)
	stale := w.structureID
	w.UpdateStructure(c)

	offer(w.responses, Response{StructureID: stale, Status: Converged, Values: []float64{1, 1}})
	res := w.Poll()
	assert.False(t, res.Done, "responses for an old structure are ignored")

	offer(w.responses, Response{StructureID: w.structureID, Status: Timeout, Values: []float64{1, 1}, Elapsed: 3 * time.Millisecond})
	res = w.Poll()
	assert.True(t, res.Done)
	assert.Equal(t, Timeout, res.Status)
	assert.Equal(t, 3*time.Millisecond, res.Elapsed, "the round time comes from the worker, not the poll")
}

func TestWorkerSolver_NonBlocking(t *testing.T) {
	w := NewWorkerSolver(DefaultOptions())
	defer w.Close()

	res := w.Poll()
	assert.False(t, res.Done)

	// no structure: goals are accepted and never block
	for i := 0; i < 100; i++ {
		w.Solve(nil, Goal{Rotation: mgl64.QuatIdent()})
	}
	w.Stop()
	assert.False(t, w.Running())
}

func TestOffer_ReplacesUnread(t *testing.T) {
	ch := make(chan int, 1)
	offer(ch, 1)
	offer(ch, 2)
	assert.Equal(t, 2, <-ch)
}
