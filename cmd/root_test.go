package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resvsim/schedule-sim/sim/restart"
)

const testDeck = `
units: METRIC
steps: [30, 30, 30]
grid: {nx: 5, ny: 5, nz: 2}
phases: [OIL, WATER]
wells:
  - name: P1
    head_i: 1
    head_j: 1
    type: PRODUCER
    control: ORAT
    targets: {ORAT: "200", BHP: "120"}
    connections:
      - {i: 1, j: 1, k: 1}
  - name: I1
    head_i: 5
    head_j: 5
    type: INJECTOR
    injector_phase: WATER
    control: RATE
    targets: {RATE: "250"}
    connections:
      - {i: 5, j: 5, k: 2}
actions:
  - name: LATE
    step: 2
    conditions:
      - {left: FOPT, op: ">", right: "1"}
    effects:
      - {kind: EXIT, exit_code: 4}
`

func writeDeck(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestRunDeck_ArchivesStepsAndWritesMetrics(t *testing.T) {
	// GIVEN a deck that exits after step 2 and an archive path
	dir := t.TempDir()
	cfg := runConfig{
		DeckPath:    writeDeck(t, testDeck),
		ArchivePath: filepath.Join(dir, "out", "run.db"),
		MetricsFile: filepath.Join(dir, "metrics.prom"),
		TraceLevel:  "decisions",
	}

	// WHEN the deck runs
	s, err := runDeck(cfg)
	require.NoError(t, err)

	// THEN the run stopped with the action's exit code
	status, stopped := s.Exit()
	require.True(t, stopped)
	assert.Equal(t, 4, status.Code)
	require.NotNil(t, s.Trace)
	assert.Len(t, s.Trace.Actions, 1)

	// AND the archive holds steps 1 and 2 of one run
	ar, err := restart.OpenArchive(cfg.ArchivePath)
	require.NoError(t, err)
	defer func() { _ = ar.Close() }()
	runs, err := ar.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "METRIC", runs[0].UnitSystem)
	assert.Equal(t, 3, runs[0].Steps)
	steps, err := ar.Steps(runs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, steps)

	// AND the restart data reads back
	arrays, vec, err := ar.Load(runs[0].ID, 2)
	require.NoError(t, err)
	_, err = restart.Find(arrays, "IWEL")
	assert.NoError(t, err)
	assert.InDelta(t, 12000.0, vec["FOPT"], 1e-6)
	assert.InDelta(t, 15000.0, vec["FWIT"], 1e-6)

	// AND the metrics file carries the step counter
	text, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(text), "schedule_sim_report_steps_total 2")
	assert.Contains(t, string(text), `schedule_sim_actions_triggered_total{action="LATE"} 1`)
}

func TestRunDeck_Errors(t *testing.T) {
	_, err := runDeck(runConfig{DeckPath: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorContains(t, err, "reading deck")

	_, err = runDeck(runConfig{DeckPath: writeDeck(t, "units: LAB\nsteps: [1]\n")})
	assert.ErrorContains(t, err, "building schedule")
}

func TestValidateDeck(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, validateDeck(&buf, writeDeck(t, testDeck)))
	assert.Equal(t, "deck OK: METRIC units, 3 report steps, 2 wells, 1 groups\n", buf.String())

	err := validateDeck(&buf, writeDeck(t, "units: METRIC\nsteps: []\n"))
	assert.ErrorContains(t, err, "at least one report step")
}

func TestInspectArchive(t *testing.T) {
	// GIVEN an archive with one completed run
	dir := t.TempDir()
	path := filepath.Join(dir, "run.db")
	_, err := runDeck(runConfig{DeckPath: writeDeck(t, testDeck), ArchivePath: path})
	require.NoError(t, err)

	ar, err := restart.OpenArchive(path)
	require.NoError(t, err)
	defer func() { _ = ar.Close() }()

	// WHEN step 1 of the latest run is inspected
	var buf bytes.Buffer
	require.NoError(t, inspectArchive(&buf, ar, "", 1))

	// THEN runs, steps, arrays and summary values are listed
	out := buf.String()
	assert.Contains(t, out, "archived steps [1 2]")
	assert.Contains(t, out, "INTEHEAD")
	assert.Contains(t, out, "ZWEL")
	assert.Contains(t, out, "WOPR:P1")

	// AND a missing step is reported
	assert.Error(t, inspectArchive(&buf, ar, "", 9))
}

func TestInspectArchive_Empty(t *testing.T) {
	ar, err := restart.OpenArchive(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer func() { _ = ar.Close() }()

	var buf bytes.Buffer
	require.NoError(t, inspectArchive(&buf, ar, "", 0))
	assert.Equal(t, "archive holds no runs\n", buf.String())
}
