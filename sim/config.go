package sim

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/resvsim/schedule-sim/sim/data"
	"github.com/resvsim/schedule-sim/sim/restart"
	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/summary"
	"github.com/resvsim/schedule-sim/sim/trace"
	"github.com/resvsim/schedule-sim/sim/units"
)

// WellContext is what a rate function sees for one open well.
type WellContext struct {
	Well    *schedule.Well
	Step    int
	Length  float64 // sub-step length, seconds
	Summary *summary.State
	Units   units.UnitSystem
	// Group is the share of a group target assigned to a well under group
	// control. Zero for wells on their own targets.
	Group Allocation
}

// RateFunc computes the solution of one open well over a sub-step. Rates are
// SI, production positive and injection negative.
type RateFunc func(wc WellContext) (data.Well, error)

// ScriptEngine runs the script of a SCRIPT action effect with write access to
// the schedule and the summary state.
type ScriptEngine interface {
	RunScript(script string, sched *schedule.Schedule, step int, st *summary.State) error
}

// OutputWriter receives the restart aggregate and summary state at the end of
// every report step. Implemented by restart.Archive and restart.MemoryWriter.
type OutputWriter interface {
	WriteStep(step int, agg *restart.Aggregate, st *summary.State) error
}

// Options groups the collaborators of a Simulator. Every field is optional.
type Options struct {
	ProducerRates RateFunc              // default TargetProducerRates
	InjectorRates RateFunc              // default TargetInjectorRates
	Scripts       ScriptEngine          // nil disables SCRIPT effects
	Output        OutputWriter          // nil keeps restart data in memory only
	Dims          restart.Dims          // grid size and declared restart capacities
	Trace         trace.TraceConfig     // decision tracing; zero value disables it
	Registerer    prometheus.Registerer // nil uses a private registry
}

func (o Options) withDefaults() Options {
	if o.ProducerRates == nil {
		o.ProducerRates = TargetProducerRates
	}
	if o.InjectorRates == nil {
		o.InjectorRates = TargetInjectorRates
	}
	if o.Registerer == nil {
		o.Registerer = prometheus.NewRegistry()
	}
	return o
}
