// Package trace records the decisions a schedule run makes: action
// evaluations and the sub-steps taken inside each report step.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// ActionRecord captures one evaluation of an action at the end of a report step.
type ActionRecord struct {
	Step      int
	Elapsed   float64 // seconds since schedule start
	Action    string
	Eligible  bool
	Triggered bool
	Wells     []string // wells matching the condition (may be nil)
	Reason    string
}

// SubStepRecord captures one time sub-step of a report step.
type SubStepRecord struct {
	Step    int
	Index   int
	Length  float64 // seconds
	Elapsed float64 // seconds since schedule start, at the end of the sub-step
}
