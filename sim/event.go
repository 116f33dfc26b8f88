package sim

import "github.com/sirupsen/logrus"

// Event defines the interface for all simulation events.
// Each event has a Timestamp (seconds since schedule start) and an Execute
// method that advances simulation state when invoked.
type Event interface {
	Timestamp() float64
	Execute(*Simulator) error
	// rank orders events sharing a timestamp: sub-steps before the report.
	rank() int
}

// SubStepEvent ends one time sub-step of a report step.
type SubStepEvent struct {
	time   float64 // end of the sub-step
	Step   int
	Index  int
	Length float64 // seconds
}

// Timestamp returns the end time of the sub-step.
func (e *SubStepEvent) Timestamp() float64 {
	return e.time
}

func (e *SubStepEvent) rank() int { return 0 }

// Execute computes well rates over the sub-step, updates the summary state and
// evaluates the UDQs of the step, in that order.
func (e *SubStepEvent) Execute(sim *Simulator) error {
	logrus.Debugf("<< SubStep %d.%d: %.0fs ending at %.0fs", e.Step, e.Index, e.Length, e.time)
	return sim.advance(e.Step, e.Index, e.Length)
}

// ReportEvent closes a report step once its last sub-step has run.
type ReportEvent struct {
	time float64
	Step int
}

// Timestamp returns the end time of the report step.
func (e *ReportEvent) Timestamp() float64 {
	return e.time
}

func (e *ReportEvent) rank() int { return 1 }

// Execute runs the actions of the step, writes its output and, unless an exit
// was requested or the schedule is exhausted, schedules the next step.
func (e *ReportEvent) Execute(sim *Simulator) error {
	logrus.Infof("<< Report step %d at %.2f days", e.Step, e.time/86400.0)
	if err := sim.report(e.Step); err != nil {
		return err
	}
	if sim.exit != nil {
		sim.exit.Step = e.Step
		logrus.Infof("exit requested at step %d with code %d", sim.exit.Step, sim.exit.Code)
		return nil
	}
	if e.Step < sim.sched.NumReportSteps() {
		return sim.scheduleStep(e.Step + 1)
	}
	return nil
}
