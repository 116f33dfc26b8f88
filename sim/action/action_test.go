package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/simerr"
	"github.com/resvsim/schedule-sim/sim/summary"
	"github.com/resvsim/schedule-sim/sim/units"
)

const day = 86400.0

func newSchedule(t *testing.T, steps int, wells ...string) *schedule.Schedule {
	t.Helper()
	lengths := make([]float64, steps)
	for i := range lengths {
		lengths[i] = day
	}
	s, err := schedule.NewSchedule(lengths, units.NewMetric())
	require.NoError(t, err)
	for _, n := range wells {
		require.NoError(t, s.AddWell(1, &schedule.Well{
			Name: n, Type: schedule.Producer, Status: schedule.StatusOpen, Control: schedule.ControlORAT,
		}))
	}
	return s
}

func evaluate(t *testing.T, s *schedule.Schedule, st *summary.State, a *schedule.ActionX) Result {
	t.Helper()
	ctx, err := NewContext(s, 1, st, nil)
	require.NoError(t, err)
	res, err := Evaluate(ctx, a)
	require.NoError(t, err)
	return res
}

func TestEvaluate_WellConditionSelectsMatchingWells(t *testing.T) {
	// GIVEN three wells with different water cuts
	s := newSchedule(t, 3, "P1", "P2", "P3")
	st := summary.NewState()
	st.UpdateWellVar("P1", "WWCT", 0.9)
	st.UpdateWellVar("P2", "WWCT", 0.2)
	st.UpdateWellVar("P3", "WWCT", 0.85)

	// WHEN the action tests WWCT > 0.8
	a := &schedule.ActionX{Name: "WET", MaxRuns: 1, Conditions: []schedule.Condition{
		{Left: "WWCT", Comparator: ">", Right: "0.8"},
	}}
	res := evaluate(t, s, st, a)

	// THEN it triggers for the wet wells only
	assert.True(t, res.Triggered)
	assert.Equal(t, []string{"P1", "P3"}, res.Wells)
}

func TestEvaluate_LogicCombinesLeftToRight(t *testing.T) {
	s := newSchedule(t, 2, "P1", "P2")
	st := summary.NewState()
	st.Update("FOPR", 100)
	st.UpdateWellVar("P1", "WWCT", 0.9)
	st.UpdateWellVar("P2", "WWCT", 0.1)

	and := &schedule.ActionX{Name: "AND", MaxRuns: 1, Conditions: []schedule.Condition{
		{Left: "FOPR", Comparator: ">", Right: "500", Logic: "AND"},
		{Left: "WWCT", Comparator: ">", Right: "0.5"},
	}}
	assert.False(t, evaluate(t, s, st, and).Triggered)

	or := &schedule.ActionX{Name: "OR", MaxRuns: 1, Conditions: []schedule.Condition{
		{Left: "FOPR", Comparator: ">", Right: "500", Logic: "OR"},
		{Left: "WWCT", Comparator: ">", Right: "0.5"},
	}}
	res := evaluate(t, s, st, or)
	assert.True(t, res.Triggered)
	assert.Equal(t, []string{"P1"}, res.Wells)
}

func TestEvaluate_UndefinedNeverTriggers(t *testing.T) {
	s := newSchedule(t, 2, "P1")
	a := &schedule.ActionX{Name: "X", MaxRuns: 1, Conditions: []schedule.Condition{
		{Left: "FWCT", Comparator: "<", Right: "1"},
	}}
	assert.False(t, evaluate(t, s, summary.NewState(), a).Triggered)
}

func TestEvaluate_UnknownComparator(t *testing.T) {
	s := newSchedule(t, 2)
	ctx, err := NewContext(s, 1, summary.NewState(), nil)
	require.NoError(t, err)
	_, err = Evaluate(ctx, &schedule.ActionX{Name: "X", Conditions: []schedule.Condition{
		{Left: "1", Comparator: "~", Right: "1"},
	}})
	assert.True(t, errors.Is(err, simerr.ErrInvalidArgument))
}

func TestState_Eligibility(t *testing.T) {
	// GIVEN an action allowed twice with a one-day wait
	a := &schedule.ActionX{Name: "A", MaxRuns: 2, MinWait: day}
	st := NewState()
	assert.True(t, st.Eligible(a, 0))

	// WHEN it fires at t=1 day
	st.AddRun(a, day, Result{Triggered: true, Wells: []string{"P1"}})

	// THEN it waits a day before the second run
	assert.False(t, st.Eligible(a, 1.5*day))
	assert.True(t, st.Eligible(a, 2*day))
	assert.Equal(t, []string{"P1"}, st.LastWells("A"))

	// AND is exhausted after it
	st.AddRun(a, 2*day, Result{Triggered: true})
	assert.Equal(t, 2, st.RunCount("A"))
	assert.False(t, st.Eligible(a, 10*day))
	last, ok := st.LastRun("A")
	assert.True(t, ok)
	assert.Equal(t, 2*day, last)
}

func TestApply_WellOpenOnMatchedWellsFromNextStep(t *testing.T) {
	// GIVEN two open wells over four steps
	s := newSchedule(t, 4, "P1", "P2")

	// WHEN an action fired at step 2 shuts the matched well
	a := &schedule.ActionX{Name: "SHUT", MaxRuns: 1, Effects: []schedule.Effect{
		{Kind: schedule.EffectWellOpen, Wells: []string{schedule.MatchedWells}, Status: schedule.StatusShut},
	}}
	out, err := Apply(s, 2, a, Result{Triggered: true, Wells: []string{"P2"}}, summary.NewState(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"P2"}, out.Wells)
	assert.False(t, out.Exit)

	// THEN P2 is shut from step 3 on and step 2 is untouched
	for step, want := range map[int]schedule.WellStatus{2: schedule.StatusOpen, 3: schedule.StatusShut, 4: schedule.StatusShut} {
		w, err := s.GetWell("P2", step)
		require.NoError(t, err)
		assert.Equal(t, want, w.Status, "step %d", step)
	}
	p1, _ := s.GetWell("P1", 4)
	assert.Equal(t, schedule.StatusOpen, p1.Status)
}

func TestApply_WellTarget(t *testing.T) {
	s := newSchedule(t, 3, "P1")
	a := &schedule.ActionX{Name: "CUT", MaxRuns: 1, Effects: []schedule.Effect{
		{Kind: schedule.EffectWellTarget, Wells: []string{"P*"}, Control: schedule.ControlORAT, Value: 50},
	}}
	_, err := Apply(s, 1, a, Result{Triggered: true}, summary.NewState(), nil)
	require.NoError(t, err)

	w, _ := s.GetWell("P1", 2)
	v, ok := w.Target(schedule.ControlORAT)
	require.True(t, ok)
	raw, _ := v.Raw()
	assert.Equal(t, 50.0, raw)
	assert.Equal(t, units.LiquidSurfaceRate, v.Measure().Dim)
}

func TestApply_ExitAndLastStep(t *testing.T) {
	s := newSchedule(t, 2, "P1")
	a := &schedule.ActionX{Name: "STOP", MaxRuns: 1, Effects: []schedule.Effect{
		{Kind: schedule.EffectWellOpen, Wells: []string{"P1"}, Status: schedule.StatusShut},
		{Kind: schedule.EffectExit, ExitCode: 3},
	}}
	out, err := Apply(s, 2, a, Result{Triggered: true}, summary.NewState(), nil)
	require.NoError(t, err)
	assert.True(t, out.Exit)
	assert.Equal(t, 3, out.ExitCode)
	assert.Empty(t, out.Wells)
}

func TestApply_FailingEffectLeavesScheduleUntouched(t *testing.T) {
	s := newSchedule(t, 3, "P1")
	shut := schedule.Effect{Kind: schedule.EffectWellOpen, Wells: []string{"P1"}, Status: schedule.StatusShut}
	tests := []struct {
		name  string
		after schedule.Effect
		want  error
	}{
		{"script without engine", schedule.Effect{Kind: schedule.EffectScript, Script: "x = 1"}, simerr.ErrUnsupported},
		{"malformed well pattern", schedule.Effect{Kind: schedule.EffectWellTarget, Wells: []string{"P["},
			Control: schedule.ControlORAT, Value: 10}, simerr.ErrInvalidArgument},
		{"unknown effect", schedule.Effect{Kind: "WECON"}, simerr.ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN a shut effect followed by one that cannot be carried out
			a := &schedule.ActionX{Name: "BAD", MaxRuns: 1, Effects: []schedule.Effect{shut, tt.after}}

			// WHEN the action is applied
			out, err := Apply(s, 1, a, Result{Triggered: true}, summary.NewState(), nil)

			// THEN it fails and the earlier shut was never written
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, out.Wells)
			w, err := s.GetWell("P1", 2)
			require.NoError(t, err)
			assert.Equal(t, schedule.StatusOpen, w.Status)
		})
	}
}

type recordingRunner struct {
	scripts []string
	steps   []int
}

func (r *recordingRunner) RunScript(script string, _ *schedule.Schedule, step int, st *summary.State) error {
	r.scripts = append(r.scripts, script)
	r.steps = append(r.steps, step)
	st.Update("FUSCRIPT", 1)
	return nil
}

func TestApply_Script(t *testing.T) {
	s := newSchedule(t, 2)
	a := &schedule.ActionX{Name: "PY", MaxRuns: 1, Effects: []schedule.Effect{
		{Kind: schedule.EffectScript, Script: "print('hi')"},
	}}

	// WHEN no engine is configured the effect fails loudly
	_, err := Apply(s, 1, a, Result{Triggered: true}, summary.NewState(), nil)
	assert.True(t, errors.Is(err, simerr.ErrUnsupported))

	// AND with an engine it receives the script, step and state
	runner := &recordingRunner{}
	st := summary.NewState()
	_, err = Apply(s, 1, a, Result{Triggered: true}, st, runner)
	require.NoError(t, err)
	assert.Equal(t, []string{"print('hi')"}, runner.scripts)
	assert.Equal(t, []int{1}, runner.steps)
	assert.True(t, st.Has("FUSCRIPT"))
}
