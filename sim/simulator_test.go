package sim

import (
	"container/heap"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resvsim/schedule-sim/sim/data"
	"github.com/resvsim/schedule-sim/sim/deck"
	"github.com/resvsim/schedule-sim/sim/restart"
	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/simerr"
	"github.com/resvsim/schedule-sim/sim/summary"
	"github.com/resvsim/schedule-sim/sim/trace"
)

const day = 86400.0

// openCloseDeck has one producer defined at step 1 and shut at step 3.
const openCloseDeck = `
units: METRIC
steps: [10, 10, 10]
wells:
  - name: P1
    step: 1
    head_i: 1
    head_j: 1
    type: PRODUCER
    control: ORAT
    targets: {ORAT: "100", BHP: "50"}
    connections:
      - {i: 1, j: 1, k: 1}
      - {i: 1, j: 1, k: 2}
events:
  - step: 3
    well_status: [{well: P1, status: SHUT}]
`

func buildSchedule(t *testing.T, src string) *schedule.Schedule {
	t.Helper()
	d, err := deck.Parse(strings.NewReader(src))
	require.NoError(t, err)
	sched, err := d.Build()
	require.NoError(t, err)
	return sched
}

// recordingRates wraps the default producer rate function and records the
// report steps it was called for.
type recordingRates struct {
	steps []int
}

func (r *recordingRates) rates(wc WellContext) (data.Well, error) {
	r.steps = append(r.steps, wc.Step)
	return TargetProducerRates(wc)
}

func TestRun_ClosedWellHasZeroRates(t *testing.T) {
	// GIVEN a well opened at step 1 and shut at step 3
	sched := buildSchedule(t, openCloseDeck)
	rec := &recordingRates{}
	out := restart.NewMemoryWriter()
	s, err := NewSimulator(sched, Options{ProducerRates: rec.rates, Output: out})
	require.NoError(t, err)

	// WHEN the run completes
	require.NoError(t, s.Run())

	// THEN the rate function ran for steps 1 and 2 only
	assert.Equal(t, []int{1, 2}, rec.steps)
	assert.Equal(t, []int{1, 2, 3}, out.Steps)

	// AND step 2 carries the target rate while step 3 is forced to zero
	assert.InDelta(t, 100.0, out.Summaries[2]["WOPR:P1"], 1e-9)
	assert.InDelta(t, 0.0, out.Summaries[3]["WOPR:P1"], 1e-12)
	assert.True(t, s.Wells["P1"].Rates.IsZero())
	assert.Empty(t, s.Wells["P1"].Connections)

	// AND totals stop growing once the well is shut
	assert.InDelta(t, 1000.0, out.Summaries[1]["WOPT:P1"], 1e-6)
	assert.InDelta(t, 2000.0, out.Summaries[2]["WOPT:P1"], 1e-6)
	assert.InDelta(t, 2000.0, out.Summaries[3]["WOPT:P1"], 1e-6)
	assert.InDelta(t, 2000.0, out.Summaries[3]["FOPT"], 1e-6)
	assert.InDelta(t, 30.0, out.Summaries[3]["TIME"], 1e-9)

	_, stopped := s.Exit()
	assert.False(t, stopped)
	assert.Equal(t, 3, s.Metrics.ReportSteps)
	assert.Equal(t, 0, s.Metrics.OpenWells)
}

func TestRun_RatesSpreadOverOpenConnections(t *testing.T) {
	sched := buildSchedule(t, openCloseDeck)
	s, err := NewSimulator(sched, Options{})
	require.NoError(t, err)

	// WHEN only the first step's events run
	require.NoError(t, s.scheduleStep(1))
	for len(s.EventQueue) > 0 {
		ev := heap.Pop(&s.EventQueue).(Event)
		if _, ok := ev.(*ReportEvent); ok {
			break
		}
		require.NoError(t, ev.Execute(s))
	}

	// THEN the oil rate is shared by both connections at the BHP target
	sol := s.Wells["P1"]
	require.Len(t, sol.Connections, 2)
	assert.InDelta(t, 50/day, sol.Connections[0].Rates.Oil, 1e-12)
	assert.Equal(t, 1, sol.Connections[1].Index)
	assert.InDelta(t, 50e5, sol.BHP, 1e-6)
	assert.InDelta(t, 50.0, s.Summary.GetOr(summary.ConnKey("COPR", "P1", 2), -1), 1e-9)
}

func TestRun_SubStepsBoundedByMaxSubStep(t *testing.T) {
	// GIVEN 10-day steps limited to 3-day sub-steps
	src := strings.Replace(openCloseDeck, "steps: [10, 10, 10]", "steps: [10, 10, 10]\nmax_sub_step: 3", 1)
	sched := buildSchedule(t, src)
	s, err := NewSimulator(sched, Options{Trace: trace.TraceConfig{Level: trace.TraceLevelSteps}})
	require.NoError(t, err)

	require.NoError(t, s.Run())

	// THEN every step takes four sub-steps of 2.5 days
	assert.Equal(t, 12, s.Metrics.SubSteps)
	require.Len(t, s.Trace.SubSteps, 12)
	for _, r := range s.Trace.SubSteps {
		assert.InDelta(t, 2.5*day, r.Length, 1e-6)
	}
	assert.InDelta(t, 30*day, s.Trace.SubSteps[11].Elapsed, 1e-6)
	// AND totals do not depend on the sub-step count
	assert.InDelta(t, 2000.0, s.Summary.GetOr("FOPT", 0), 1e-6)
}

const exitDeck = `
units: METRIC
steps: [10, 10, 10, 10]
wells:
  - name: P1
    head_i: 1
    head_j: 1
    type: PRODUCER
    control: ORAT
    targets: {ORAT: "100"}
actions:
  - name: STOP
    step: 2
    conditions:
      - {left: FOPR, op: ">", right: "50"}
    effects:
      - {kind: EXIT, exit_code: 7}
`

func TestRun_ExitActionStopsAfterItsStep(t *testing.T) {
	// GIVEN an EXIT action that becomes active at step 2 of 4
	sched := buildSchedule(t, exitDeck)
	out := restart.NewMemoryWriter()
	s, err := NewSimulator(sched, Options{Output: out})
	require.NoError(t, err)

	// WHEN the run completes
	require.NoError(t, s.Run())

	// THEN step 2 is written and step 3 never runs
	assert.Equal(t, []int{1, 2}, out.Steps)
	status, stopped := s.Exit()
	require.True(t, stopped)
	assert.Equal(t, ExitStatus{Code: 7, Step: 2}, status)
	assert.Equal(t, 2, s.Metrics.ReportSteps)
	assert.Equal(t, 1, s.Metrics.ActionsTriggered)
	assert.InDelta(t, 20.0, s.Summary.GetOr("TIME", 0), 1e-9)
}

func TestRequestExit_FirstRequestWins(t *testing.T) {
	sched := buildSchedule(t, exitDeck)
	s, err := NewSimulator(sched, Options{})
	require.NoError(t, err)

	// GIVEN an external exit request before the run
	s.RequestExit(1)
	s.RequestExit(2)

	require.NoError(t, s.Run())

	// THEN the loop stops after the first report step with the first code
	status, stopped := s.Exit()
	require.True(t, stopped)
	assert.Equal(t, 1, status.Code)
	assert.Equal(t, 1, s.Metrics.ReportSteps)
}

func TestRun_OnlyOnce(t *testing.T) {
	s, err := NewSimulator(buildSchedule(t, openCloseDeck), Options{})
	require.NoError(t, err)
	require.NoError(t, s.Run())
	assert.ErrorIs(t, s.Run(), simerr.ErrInvalidArgument)
}

func TestNewSimulator_NilSchedule(t *testing.T) {
	_, err := NewSimulator(nil, Options{})
	assert.ErrorIs(t, err, simerr.ErrInvalidArgument)
}

const scriptDeck = `
units: METRIC
steps: [5, 5]
wells:
  - name: P1
    head_i: 1
    head_j: 1
    type: PRODUCER
    control: ORAT
    targets: {ORAT: "10"}
actions:
  - name: HOOK
    conditions:
      - {left: WOPR, op: ">", right: "1"}
    effects:
      - {kind: SCRIPT, script: on_high_rate}
`

type fakeScripts struct {
	calls []string
}

func (f *fakeScripts) RunScript(script string, sched *schedule.Schedule, step int, st *summary.State) error {
	f.calls = append(f.calls, script)
	st.Update("FUHOOK", float64(step))
	return nil
}

func TestRun_ScriptEffects(t *testing.T) {
	t.Run("engine receives the script", func(t *testing.T) {
		scripts := &fakeScripts{}
		s, err := NewSimulator(buildSchedule(t, scriptDeck), Options{Scripts: scripts})
		require.NoError(t, err)
		require.NoError(t, s.Run())
		assert.Equal(t, []string{"on_high_rate"}, scripts.calls)
		assert.Equal(t, 1.0, s.Summary.GetOr("FUHOOK", 0))
	})
	t.Run("no engine is unsupported", func(t *testing.T) {
		s, err := NewSimulator(buildSchedule(t, scriptDeck), Options{})
		require.NoError(t, err)
		err = s.Run()
		require.Error(t, err)
		assert.True(t, errors.Is(err, simerr.ErrUnsupported))
		assert.Equal(t, 0, s.Metrics.ReportSteps)
	})
}

func TestRun_ActionShutsWellFromNextStep(t *testing.T) {
	// GIVEN an action that shuts high-rate producers
	src := strings.Replace(scriptDeck, "{kind: SCRIPT, script: on_high_rate}", `{kind: WELOPEN, wells: ["?"], status: SHUT}`, 1)
	out := restart.NewMemoryWriter()
	s, err := NewSimulator(buildSchedule(t, src), Options{
		Output: out,
		Trace:  trace.TraceConfig{Level: trace.TraceLevelDecisions},
	})
	require.NoError(t, err)

	require.NoError(t, s.Run())

	// THEN the well flowed at step 1 and was shut at step 2
	assert.InDelta(t, 10.0, out.Summaries[1]["WOPR:P1"], 1e-9)
	assert.InDelta(t, 0.0, out.Summaries[2]["WOPR:P1"], 1e-12)
	require.Len(t, s.Trace.Actions, 2)
	assert.True(t, s.Trace.Actions[0].Triggered)
	assert.Equal(t, []string{"P1"}, s.Trace.Actions[0].Wells)
	assert.False(t, s.Trace.Actions[1].Eligible)
}

const groupDeck = `
units: METRIC
steps: [1, 1]
groups:
  - name: PLAT
    prod_control: ORAT
    prod_targets: {ORAT: "300"}
    guide_phase: OIL
wells:
  - name: P1
    group: PLAT
    head_i: 1
    head_j: 1
    type: PRODUCER
    control: GRUP
    guide_rate: {value: 2, phase: OIL}
  - name: P2
    group: PLAT
    head_i: 2
    head_j: 1
    type: PRODUCER
    control: GRUP
    guide_rate: {value: 1, phase: OIL}
  - name: P3
    group: PLAT
    head_i: 3
    head_j: 1
    type: PRODUCER
    control: ORAT
    targets: {ORAT: "40"}
`

func TestDistributeGroupTargets_ByGuideRate(t *testing.T) {
	sched := buildSchedule(t, groupDeck)

	allocs, err := DistributeGroupTargets(sched, 1, summary.NewState())
	require.NoError(t, err)

	// THEN only GRUP wells share the target, two to one
	require.Len(t, allocs, 2)
	assert.InDelta(t, 200/day, allocs["P1"].Rate, 1e-12)
	assert.InDelta(t, 100/day, allocs["P2"].Rate, 1e-12)
	assert.Equal(t, schedule.PhaseOil, allocs["P1"].Phase)
	assert.True(t, allocs["P3"].IsZero())
}

func TestDistributeGroupTargets_Errors(t *testing.T) {
	tests := []struct {
		name string
		edit func(src string) string
		want error
	}{
		{
			name: "zero guide rate sum",
			edit: func(src string) string {
				src = strings.Replace(src, "{value: 2, phase: OIL}", "{value: 0, phase: OIL}", 1)
				return strings.Replace(src, "{value: 1, phase: OIL}", "{value: 0, phase: OIL}", 1)
			},
			want: simerr.ErrNumerical,
		},
		{
			name: "well guide phase differs from control",
			edit: func(src string) string {
				return strings.Replace(src, "{value: 1, phase: OIL}", "{value: 1, phase: GAS}", 1)
			},
			want: simerr.ErrUnsupported,
		},
		{
			name: "group guide phase differs from control",
			edit: func(src string) string {
				return strings.Replace(src, "guide_phase: OIL", "guide_phase: WATER", 1)
			},
			want: simerr.ErrUnsupported,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sched := buildSchedule(t, tc.edit(groupDeck))
			_, err := DistributeGroupTargets(sched, 1, summary.NewState())
			assert.ErrorIs(t, err, tc.want)

			// AND the run aborts with the same error
			s, err := NewSimulator(sched, Options{})
			require.NoError(t, err)
			assert.ErrorIs(t, s.Run(), tc.want)
		})
	}
}

func TestRun_GroupVectorsSumWells(t *testing.T) {
	s, err := NewSimulator(buildSchedule(t, groupDeck), Options{})
	require.NoError(t, err)
	require.NoError(t, s.Run())

	assert.InDelta(t, 340.0, s.Summary.GetOr(summary.GroupKey("GOPR", "PLAT"), 0), 1e-9)
	assert.InDelta(t, 340.0, s.Summary.GetOr("FOPR", 0), 1e-9)
	assert.InDelta(t, 680.0, s.Summary.GetOr("FOPT", 0), 1e-6)
	assert.InDelta(t, 2.0/3.0, s.Summary.GetOr(summary.WellKey("WOPR", "P1"), 0)/300, 1e-9)
}

const injectorDeck = `
units: METRIC
steps: [1, 1]
wells:
  - name: P1
    head_i: 1
    head_j: 1
    type: PRODUCER
    control: ORAT
    targets: {ORAT: "100"}
  - name: I1
    head_i: 5
    head_j: 5
    type: INJECTOR
    injector_phase: WATER
    control: RATE
    targets: {RATE: FUINJ}
udq:
  defines:
    - {keyword: FUINJ, expression: "FOPR * 1.5", unit: SM3/DAY}
`

func TestRun_InjectorFollowsUDQ(t *testing.T) {
	// GIVEN an injector whose rate is a field UDQ of the oil rate
	s, err := NewSimulator(buildSchedule(t, injectorDeck), Options{})
	require.NoError(t, err)

	require.NoError(t, s.Run())

	// THEN the UDQ is not defined for the first step's rates and the second
	// step injects 1.5 times the first step's oil rate
	assert.InDelta(t, -150/day, s.Wells["I1"].Rates.Water, 1e-12)
	assert.InDelta(t, 150.0, s.Summary.GetOr(summary.WellKey("WWIR", "I1"), 0), 1e-9)
	assert.InDelta(t, 150.0, s.Summary.GetOr("FWIT", 0), 1e-6)
}

// initialAssignDeck assigns UDQ constants without a step, so they are entered
// with the initial state.
const initialAssignDeck = `
units: METRIC
steps: [10, 10]
wells:
  - name: P1
    head_i: 1
    head_j: 1
    type: PRODUCER
    control: ORAT
    targets: {ORAT: "100", BHP: "50"}
    connections:
      - {i: 1, j: 1, k: 1}
  - name: P2
    head_i: 2
    head_j: 2
    type: PRODUCER
    control: ORAT
    targets: {ORAT: "50", BHP: "50"}
    connections:
      - {i: 2, j: 2, k: 1}
udq:
  assigns:
    - {keyword: FUX, value: 7}
    - {keyword: WUX, selector: [P1], value: 3}
`

func TestRun_InitialAssignsReachFirstStep(t *testing.T) {
	// GIVEN UDQ assigns entered before the first report step
	out := restart.NewMemoryWriter()
	s, err := NewSimulator(buildSchedule(t, initialAssignDeck), Options{Output: out})
	require.NoError(t, err)

	// WHEN the run completes
	require.NoError(t, s.Run())

	// THEN the constants are in the summary from report step 1 on
	require.Equal(t, []int{1, 2}, out.Steps)
	assert.Equal(t, 7.0, out.Summaries[1]["FUX"])
	assert.Equal(t, 3.0, out.Summaries[1][summary.WellKey("WUX", "P1")])
	assert.NotContains(t, out.Summaries[1], summary.WellKey("WUX", "P2"))
	assert.Equal(t, 7.0, out.Summaries[2]["FUX"])

	// AND the field UDQ array carries the value instead of the undefined marker
	agg := out.Aggregates[1]
	require.NotNil(t, agg.UDQ)
	assert.Equal(t, []float64{7}, agg.UDQ.DUDF)
}

func TestRun_PrometheusInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewSimulator(buildSchedule(t, exitDeck), Options{Registerer: reg})
	require.NoError(t, err)
	require.NoError(t, s.Run())

	assert.Equal(t, 2.0, testutil.ToFloat64(s.prom.ReportSteps))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.prom.SubSteps))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.prom.ActionsTriggered.WithLabelValues("STOP")))
	assert.InDelta(t, 100.0, testutil.ToFloat64(s.prom.FieldRate.WithLabelValues("FOPR")), 1e-9)

	count, err := testutil.GatherAndCount(reg, "schedule_sim_report_step_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
