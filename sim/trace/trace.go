package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every action evaluation.
	TraceLevelDecisions TraceLevel = "decisions"
	// TraceLevelSteps additionally captures every sub-step.
	TraceLevelSteps TraceLevel = "steps"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	TraceLevelSteps:     true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether any records are collected.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelDecisions || c.Level == TraceLevelSteps
}

// SimulationTrace collects decision records during a schedule run.
type SimulationTrace struct {
	Config   TraceConfig
	Actions  []ActionRecord
	SubSteps []SubStepRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:   config,
		Actions:  make([]ActionRecord, 0),
		SubSteps: make([]SubStepRecord, 0),
	}
}

// RecordAction appends an action evaluation record.
func (st *SimulationTrace) RecordAction(record ActionRecord) {
	st.Actions = append(st.Actions, record)
}

// RecordSubStep appends a sub-step record. Dropped below TraceLevelSteps.
func (st *SimulationTrace) RecordSubStep(record SubStepRecord) {
	if st.Config.Level != TraceLevelSteps {
		return
	}
	st.SubSteps = append(st.SubSteps, record)
}
