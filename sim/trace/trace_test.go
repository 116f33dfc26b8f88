package trace

import (
	"testing"
)

func TestSimulationTrace_RecordAction_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN an action record is recorded
	st.RecordAction(ActionRecord{
		Step:      2,
		Elapsed:   86400,
		Action:    "SHUT_WET",
		Eligible:  true,
		Triggered: true,
		Wells:     []string{"P1"},
	})

	// THEN the trace contains one action record with correct data
	if len(st.Actions) != 1 {
		t.Fatalf("expected 1 action record, got %d", len(st.Actions))
	}
	if st.Actions[0].Action != "SHUT_WET" {
		t.Errorf("expected action SHUT_WET, got %s", st.Actions[0].Action)
	}
	if !st.Actions[0].Triggered {
		t.Error("expected triggered=true")
	}
}

func TestSimulationTrace_RecordSubStep_OnlyAtStepsLevel(t *testing.T) {
	// GIVEN traces at decisions and steps level
	decisions := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})
	steps := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps})

	// WHEN a sub-step is recorded on both
	rec := SubStepRecord{Step: 1, Index: 0, Length: 3600, Elapsed: 3600}
	decisions.RecordSubStep(rec)
	steps.RecordSubStep(rec)

	// THEN only the steps-level trace keeps it
	if len(decisions.SubSteps) != 0 {
		t.Errorf("expected no sub-steps at decisions level, got %d", len(decisions.SubSteps))
	}
	if len(steps.SubSteps) != 1 {
		t.Fatalf("expected 1 sub-step, got %d", len(steps.SubSteps))
	}
}

func TestSimulationTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	// GIVEN a trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN multiple records are added
	st.RecordAction(ActionRecord{Step: 1, Action: "A"})
	st.RecordAction(ActionRecord{Step: 2, Action: "B"})
	st.RecordAction(ActionRecord{Step: 3, Action: "A"})

	// THEN order is preserved
	if st.Actions[0].Step != 1 || st.Actions[1].Step != 2 || st.Actions[2].Step != 3 {
		t.Errorf("records out of order: %+v", st.Actions)
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	for _, level := range []string{"", "none", "decisions", "steps"} {
		if !IsValidTraceLevel(level) {
			t.Errorf("expected %q to be valid", level)
		}
	}
	if IsValidTraceLevel("verbose") {
		t.Error("expected verbose to be invalid")
	}
}

func TestTraceConfig_Enabled(t *testing.T) {
	if (TraceConfig{}).Enabled() {
		t.Error("empty level should be disabled")
	}
	if !(TraceConfig{Level: TraceLevelSteps}).Enabled() {
		t.Error("steps level should be enabled")
	}
}
