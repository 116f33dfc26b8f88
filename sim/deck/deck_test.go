package deck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/units"
)

const sampleDeck = `
version: "1"
units: METRIC
steps: [30, 30, 30]
grid: {nx: 10, ny: 10, nz: 3}
phases: [OIL, WATER, GAS]
max_sub_step: 10
groups:
  - name: PLAT
    prod_control: ORAT
    prod_targets: {ORAT: "800"}
    guide_phase: OIL
wells:
  - name: P1
    group: PLAT
    head_i: 2
    head_j: 3
    ref_depth: 2000
    type: PRODUCER
    control: ORAT
    targets: {ORAT: 500, BHP: "100"}
    guide_rate: {value: 2, phase: OIL}
    connections:
      - {i: 2, j: 3, k: 1, cf: 10, depth: 2010}
      - {i: 2, j: 3, k: 2, state: SHUT, dir: X, cf: 20, depth: 2020}
  - name: I1
    head_i: 9
    head_j: 9
    type: INJECTOR
    injector_phase: WATER
    control: RATE
    targets: {RATE: WUINJ}
    connections:
      - {i: 9, j: 9, k: 3}
wlists:
  - {name: "*PRODS", wells: [P1]}
udq:
  defines:
    - {keyword: WUINJ, expression: "WOPR 'P1' * 1.2", unit: SM3/DAY}
    - {keyword: FUWCT, expression: "FWPR / (FOPR + FWPR)", step: 2}
  assigns:
    - {keyword: WUFLAG, selector: [P1], value: 1, step: 1}
actions:
  - name: HIGHWCT
    max_runs: 2
    min_wait: 15
    conditions:
      - {left: WWCT, op: ">", right: "0.8"}
    effects:
      - {kind: WELOPEN, wells: ["?"], status: SHUT}
  - name: STOPRUN
    step: 1
    conditions:
      - {left: FOPR, op: "<", right: "1", logic: OR}
      - {left: FWCT, op: ">", right: "0.99"}
    effects:
      - {kind: EXIT, exit_code: 3}
events:
  - step: 2
    well_status: [{well: P*, status: SHUT}]
    max_sub_step: 5
  - step: 3
    well_targets: [{well: "*PRODS", control: BHP, value: "80"}]
`

func parseSample(t *testing.T) *Deck {
	t.Helper()
	d, err := Parse(strings.NewReader(sampleDeck))
	require.NoError(t, err)
	return d
}

func TestParse_StrictFields(t *testing.T) {
	// GIVEN a deck with a misspelled key
	_, err := Parse(strings.NewReader("units: METRIC\nstep: [1]\n"))

	// THEN parsing fails instead of silently ignoring it
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step")
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDeck), 0o600))
	d, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, d.Wells, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_Sample(t *testing.T) {
	assert.NoError(t, parseSample(t).Validate())
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Deck)
		want   string
	}{
		{"no steps", func(d *Deck) { d.Steps = nil }, "at least one report step"},
		{"negative step", func(d *Deck) { d.Steps[1] = -1 }, "steps[1]"},
		{"unit system", func(d *Deck) { d.Units = "LAB" }, "unknown unit system"},
		{"well type", func(d *Deck) { d.Wells[0].Type = "OBSERVER" }, "unknown well type"},
		{"injector phase", func(d *Deck) { d.Wells[1].InjectorPhase = "" }, "injector_phase"},
		{"long name", func(d *Deck) { d.Wells[0].Name = "PRODUCER1" }, "longer than 8"},
		{"unknown group", func(d *Deck) { d.Wells[0].Group = "NOPE" }, "unknown group"},
		{"zero-based head", func(d *Deck) { d.Wells[0].HeadI = 0 }, "1-based"},
		{"connection dir", func(d *Deck) { d.Wells[0].Connections[0].Dir = "W" }, "direction"},
		{"target control", func(d *Deck) { d.Wells[0].Targets["XRAT"] = "1" }, "unknown target control"},
		{"wlist name", func(d *Deck) { d.WLists[0].Name = "PRODS" }, "must start with '*'"},
		{"region udq", func(d *Deck) { d.UDQ.Defines[0].Keyword = "RUX" }, "cannot be evaluated"},
		{"udq syntax", func(d *Deck) { d.UDQ.Defines[0].Expression = "WOPR +" }, "udq.defines[0]"},
		{"comparator", func(d *Deck) { d.Actions[0].Conditions[0].Op = "=>" }, "unknown comparator"},
		{"logic", func(d *Deck) { d.Actions[1].Conditions[0].Logic = "XOR" }, "unknown logic"},
		{"effect", func(d *Deck) { d.Actions[0].Effects[0].Kind = "WCONPROD" }, "unknown action effect"},
		{"event step", func(d *Deck) { d.Events[0].Step = 0 }, "outside [1, 3]"},
		{"entity step", func(d *Deck) { d.Wells[0].Step = 4 }, "outside [0, 3]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := parseSample(t)
			tc.mutate(d)
			err := d.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestBuild_Entities(t *testing.T) {
	// GIVEN the sample deck
	sched, err := parseSample(t).Build()
	require.NoError(t, err)

	// THEN steps are converted to seconds and the run has 3 report steps
	assert.Equal(t, 3, sched.NumReportSteps())
	end, err := sched.EndTime(3)
	require.NoError(t, err)
	assert.Equal(t, 90*86400.0, end)

	// AND wells carry 0-based cells and SI values
	us := units.NewMetric()
	p1, err := sched.GetWell("P1", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, p1.HeadI)
	assert.Equal(t, 2, p1.HeadJ)
	assert.Equal(t, "PLAT", p1.Group)
	assert.Equal(t, schedule.StatusOpen, p1.Status)
	require.Len(t, p1.Connections, 2)
	assert.Equal(t, 0, p1.Connections[0].K)
	assert.Equal(t, schedule.DirZ, p1.Connections[0].Dir)
	assert.Equal(t, schedule.ConnShut, p1.Connections[1].State)
	assert.Equal(t, schedule.DirX, p1.Connections[1].Dir)
	assert.InEpsilon(t, us.ToSI(units.Transmissibility, 20), p1.Connections[1].CF, 1e-12)

	orat, ok := p1.Target(schedule.ControlORAT)
	require.True(t, ok)
	si, err := orat.Get()
	require.NoError(t, err)
	assert.InEpsilon(t, 500/86400.0, si, 1e-12)
	assert.True(t, p1.GuideRate.Available)
	assert.Equal(t, 1.0, p1.GuideRate.Scaling)

	// AND a symbolic target stays symbolic
	i1, err := sched.GetWell("I1", 0)
	require.NoError(t, err)
	rate, _ := i1.Target(schedule.ControlRATE)
	assert.False(t, rate.IsNumeric())
	assert.Equal(t, "WUINJ", rate.Symbol())
	assert.Equal(t, schedule.FieldGroup, i1.Group)

	// AND the group tree is linked
	plat, err := sched.GetGroup("PLAT", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, plat.Wells)
	field, err := sched.GetGroup(schedule.FieldGroup, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"PLAT"}, field.Groups)
	assert.Equal(t, []string{"I1"}, field.Wells)
}

func TestBuild_StepIndexedConfiguration(t *testing.T) {
	sched, err := parseSample(t).Build()
	require.NoError(t, err)

	// UDQs accumulate over steps
	cfg0, _ := sched.UDQConfig(0)
	assert.Len(t, cfg0.Inputs(), 1)
	cfg1, _ := sched.UDQConfig(1)
	assert.Len(t, cfg1.Inputs(), 2)
	cfg2, _ := sched.UDQConfig(2)
	assert.True(t, cfg2.Has("FUWCT"))
	in, ok := cfg2.Input("WUFLAG")
	require.True(t, ok)
	assert.Equal(t, 1, in.Assign.Step)

	// actions accumulate and carry defaults
	a0, _ := sched.Actions(0)
	require.Equal(t, 1, a0.Len())
	assert.Equal(t, 2, a0.All()[0].MaxRuns)
	assert.Equal(t, 15*86400.0, a0.All()[0].MinWait)
	a1, _ := sched.Actions(1)
	require.Equal(t, 2, a1.Len())
	assert.Equal(t, 1, a1.All()[1].MaxRuns)
	assert.Equal(t, "OR", a1.All()[1].Conditions[0].Logic)
	assert.Equal(t, 3, a1.All()[1].Effects[0].ExitCode)

	// events change the plan from their step onwards
	p1, _ := sched.GetWell("P1", 1)
	assert.Equal(t, schedule.StatusOpen, p1.Status)
	p1, _ = sched.GetWell("P1", 2)
	assert.Equal(t, schedule.StatusShut, p1.Status)
	p1, _ = sched.GetWell("P1", 3)
	bhp, ok := p1.Target(schedule.ControlBHP)
	require.True(t, ok)
	v, _ := bhp.Raw()
	assert.Equal(t, 80.0, v)

	sub, _ := sched.MaxSubStep(1)
	assert.Equal(t, 10*86400.0, sub)
	sub, _ = sched.MaxSubStep(2)
	assert.Equal(t, 5*86400.0, sub)

	wl, _ := sched.WellLists(0)
	members, ok := wl.Get("*PRODS")
	require.True(t, ok)
	assert.Equal(t, []string{"P1"}, members)
}

func TestBuild_ChildBeforeParentFails(t *testing.T) {
	// GIVEN a group whose parent is declared after it at the same step
	d := parseSample(t)
	d.Groups = append([]GroupSpec{{Name: "SUB", Parent: "LATE"}}, d.Groups...)
	d.Groups = append(d.Groups, GroupSpec{Name: "LATE"})

	// THEN the builder reports the missing parent
	_, err := d.Build()
	assert.Error(t, err)
}

func TestRestartDims(t *testing.T) {
	d := parseSample(t)
	d.Dims.MaxWells = 5
	dims := d.RestartDims()
	assert.Equal(t, 10, dims.NX)
	assert.Equal(t, 3, dims.NZ)
	assert.Equal(t, 5, dims.MaxWells)
	assert.Equal(t, []schedule.Phase{schedule.PhaseOil, schedule.PhaseWater, schedule.PhaseGas}, dims.Phases)
}
