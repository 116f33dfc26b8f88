package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEvaluations int
	TriggeredCount   int
	SkippedCount     int // evaluations of ineligible actions
	UniqueActions    int
	FireDistribution map[string]int // action name → times triggered
	SubStepCount     int
	MeanSubStep      float64 // seconds
	MaxSubStep       float64
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		FireDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	seen := make(map[string]bool)
	summary.TotalEvaluations = len(st.Actions)
	for _, a := range st.Actions {
		seen[a.Action] = true
		switch {
		case !a.Eligible:
			summary.SkippedCount++
		case a.Triggered:
			summary.TriggeredCount++
			summary.FireDistribution[a.Action]++
		}
	}
	summary.UniqueActions = len(seen)

	if len(st.SubSteps) > 0 {
		total := 0.0
		for _, s := range st.SubSteps {
			total += s.Length
			if s.Length > summary.MaxSubStep {
				summary.MaxSubStep = s.Length
			}
		}
		summary.SubStepCount = len(st.SubSteps)
		summary.MeanSubStep = total / float64(len(st.SubSteps))
	}

	return summary
}
