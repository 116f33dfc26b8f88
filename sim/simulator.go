package sim

import (
	"container/heap"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/resvsim/schedule-sim/sim/action"
	"github.com/resvsim/schedule-sim/sim/data"
	"github.com/resvsim/schedule-sim/sim/restart"
	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/simerr"
	"github.com/resvsim/schedule-sim/sim/summary"
	"github.com/resvsim/schedule-sim/sim/trace"
	"github.com/resvsim/schedule-sim/sim/udq"
	"github.com/resvsim/schedule-sim/sim/units"
)

// EventQueue implements heap.Interface and orders events by timestamp.
// Events at the same time run sub-steps first, then the report.
type EventQueue []Event

func (eq EventQueue) Len() int { return len(eq) }
func (eq EventQueue) Less(i, j int) bool {
	if eq[i].Timestamp() != eq[j].Timestamp() {
		return eq[i].Timestamp() < eq[j].Timestamp()
	}
	return eq[i].rank() < eq[j].rank()
}
func (eq EventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(Event))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}

// ExitStatus records an early stop of the run.
type ExitStatus struct {
	Code int
	Step int // report step after which the run stopped
}

// Simulator advances a schedule through its report steps. It owns the summary
// state and the action state for the whole run. Not safe for concurrent use.
type Simulator struct {
	Clock float64 // seconds since schedule start
	// EventQueue holds the pending sub-step and report events
	EventQueue EventQueue
	Step       int // report step being processed
	Summary    *summary.State
	Wells      data.Wells         // solution of the last sub-step
	Restart    *restart.Aggregate // aggregate of the last completed report step
	Trace      *trace.SimulationTrace
	Metrics    *Metrics

	sched       *schedule.Schedule
	opts        Options
	udq         *udq.Engine
	actions     *action.State
	prom        *promMetrics
	exit        *ExitStatus
	ran         bool
	stepStarted time.Time
}

// NewSimulator prepares a run of sched. Unset options take their defaults.
func NewSimulator(sched *schedule.Schedule, opts Options) (*Simulator, error) {
	if sched == nil {
		return nil, fmt.Errorf("nil schedule: %w", simerr.ErrInvalidArgument)
	}
	opts = opts.withDefaults()
	s := &Simulator{
		EventQueue: make(EventQueue, 0),
		Summary:    summary.NewState(),
		Wells:      make(data.Wells),
		Metrics:    NewMetrics(),
		sched:      sched,
		opts:       opts,
		udq:        udq.NewEngine(),
		actions:    action.NewState(),
		prom:       newPromMetrics(opts.Registerer),
	}
	if opts.Trace.Enabled() {
		s.Trace = trace.NewSimulationTrace(opts.Trace)
	}
	return s, nil
}

// Schedule pushes an event into the simulator's EventQueue.
func (sim *Simulator) Schedule(ev Event) {
	heap.Push(&sim.EventQueue, ev)
}

// RequestExit stops the run after the report step being processed. The first
// request's code wins.
func (sim *Simulator) RequestExit(code int) {
	if sim.exit != nil {
		return
	}
	sim.exit = &ExitStatus{Code: code}
}

// Exit returns the exit status and whether the run stopped early.
func (sim *Simulator) Exit() (ExitStatus, bool) {
	if sim.exit == nil {
		return ExitStatus{}, false
	}
	return *sim.exit, true
}

// Run processes report steps 1..N, stopping early after a step at which an
// exit was requested. The first error aborts the run; effects of completed
// steps are kept.
func (sim *Simulator) Run() error {
	if sim.ran {
		return fmt.Errorf("simulator already ran; create a new one per run: %w", simerr.ErrInvalidArgument)
	}
	sim.ran = true
	if sim.sched.NumReportSteps() == 0 {
		return nil
	}
	if err := sim.scheduleStep(1); err != nil {
		return err
	}
	for len(sim.EventQueue) > 0 {
		ev := heap.Pop(&sim.EventQueue).(Event)
		sim.Clock = ev.Timestamp()
		logrus.Debugf("[t %.0fs] Executing %T", sim.Clock, ev)
		if err := ev.Execute(sim); err != nil {
			return err
		}
	}
	logrus.Infof("run finished after %d report steps, %.2f days", sim.Metrics.ReportSteps, sim.Metrics.ElapsedDays)
	return nil
}

// scheduleStep queues the sub-steps of report step and the report event
// closing it. Sub-steps split the step evenly so none exceeds the step's
// maximum sub-step length.
func (sim *Simulator) scheduleStep(step int) error {
	start, err := sim.sched.StartTime(step)
	if err != nil {
		return err
	}
	end, err := sim.sched.EndTime(step)
	if err != nil {
		return err
	}
	limit, err := sim.sched.MaxSubStep(step)
	if err != nil {
		return err
	}
	length := end - start
	n := 1
	if limit > 0 {
		n = int(math.Ceil(length / limit))
	}
	dt := length / float64(n)
	for i := 0; i < n; i++ {
		t := start + float64(i+1)*dt
		if i == n-1 {
			t = end
		}
		sim.Schedule(&SubStepEvent{time: t, Step: step, Index: i, Length: dt})
	}
	sim.Schedule(&ReportEvent{time: end, Step: step})
	sim.Step = step
	sim.stepStarted = time.Now()
	logrus.Infof("report step %d/%d: %d sub-steps of %.2f days",
		step, sim.sched.NumReportSteps(), n, sim.sched.UnitSystem().FromSI(units.Time, dt))
	return nil
}

// advance runs one sub-step: rates, then the summary update, then the UDQs.
func (sim *Simulator) advance(step, index int, dt float64) error {
	allocs, err := DistributeGroupTargets(sim.sched, step, sim.Summary)
	if err != nil {
		return fmt.Errorf("report step %d: %w", step, err)
	}
	wells := make(data.Wells)
	for _, w := range sim.sched.Wells(step) {
		if !w.IsOpen() {
			wells[w.Name] = data.Well{}
			continue
		}
		rates := sim.opts.ProducerRates
		if w.IsInjector() {
			rates = sim.opts.InjectorRates
		}
		sol, err := rates(WellContext{
			Well:    w,
			Step:    step,
			Length:  dt,
			Summary: sim.Summary,
			Units:   sim.sched.UnitSystem(),
			Group:   allocs[w.Name],
		})
		if err != nil {
			return fmt.Errorf("report step %d: well %s: %w", step, w.Name, err)
		}
		wells[w.Name] = sol
	}
	sim.Wells = wells

	if err := sim.updateSummary(step, dt); err != nil {
		return fmt.Errorf("report step %d: %w", step, err)
	}
	if err := sim.udq.Evaluate(sim.sched, step, sim.Summary); err != nil {
		return fmt.Errorf("report step %d: %w", step, err)
	}

	sim.Metrics.SubSteps++
	sim.prom.SubSteps.Inc()
	for kw, v := range fieldVectors(sim.Summary) {
		sim.prom.FieldRate.WithLabelValues(kw).Set(v)
	}
	if sim.Trace != nil {
		sim.Trace.RecordSubStep(trace.SubStepRecord{
			Step: step, Index: index, Length: dt, Elapsed: sim.Summary.Elapsed(),
		})
	}
	return nil
}

// report closes report step: actions, then restart aggregation and output.
func (sim *Simulator) report(step int) error {
	if err := sim.runActions(step); err != nil {
		return fmt.Errorf("report step %d: %w", step, err)
	}
	agg, err := restart.Build(sim.sched, step, sim.opts.Dims, sim.Wells, sim.Summary)
	if err != nil {
		return fmt.Errorf("report step %d: %w", step, err)
	}
	sim.Restart = agg
	if sim.opts.Output != nil {
		if err := sim.opts.Output.WriteStep(step, agg, sim.Summary); err != nil {
			return fmt.Errorf("report step %d: writing output: %w", step, err)
		}
	}

	m := sim.Metrics
	m.ReportSteps++
	m.ElapsedDays = sim.Summary.Elapsed() / 86400.0
	m.OpenWells = 0
	for _, w := range sim.sched.Wells(step) {
		if w.IsOpen() {
			m.OpenWells++
		}
	}
	for _, kw := range fieldTotalKeywords {
		m.FieldTotals[kw] = sim.Summary.GetOr(kw, 0)
	}
	sim.prom.ReportSteps.Inc()
	sim.prom.StepSeconds.Observe(time.Since(sim.stepStarted).Seconds())
	return nil
}

// runActions evaluates the actions configured at step in definition order and
// applies those that trigger. Edits take effect from the next report step.
func (sim *Simulator) runActions(step int) error {
	acts, err := sim.sched.Actions(step)
	if err != nil {
		return err
	}
	if acts.Len() == 0 {
		return nil
	}
	ctx, err := action.NewContext(sim.sched, step, sim.Summary, sim.udq)
	if err != nil {
		return err
	}
	elapsed := sim.Summary.Elapsed()
	for _, a := range acts.All() {
		rec := trace.ActionRecord{Step: step, Elapsed: elapsed, Action: a.Name}
		if !sim.actions.Eligible(a, elapsed) {
			rec.Reason = "no runs left or waiting"
			sim.recordAction(rec)
			continue
		}
		rec.Eligible = true
		sim.Metrics.ActionsEvaluated++
		res, err := action.Evaluate(ctx, a)
		if err != nil {
			return err
		}
		rec.Triggered = res.Triggered
		rec.Wells = res.Wells
		if !res.Triggered {
			rec.Reason = "conditions not met"
			sim.recordAction(rec)
			continue
		}
		out, err := action.Apply(sim.sched, step, a, res, sim.Summary, sim.opts.Scripts)
		if err != nil {
			return err
		}
		sim.actions.AddRun(a, elapsed, res)
		sim.recordAction(rec)
		sim.Metrics.ActionsTriggered++
		sim.prom.ActionsTriggered.WithLabelValues(a.Name).Inc()
		logrus.Infof("action %s triggered at step %d (run %d of %d)",
			a.Name, step, sim.actions.RunCount(a.Name), a.MaxRuns)
		if out.Exit {
			sim.RequestExit(out.ExitCode)
		}
	}
	return nil
}

func (sim *Simulator) recordAction(rec trace.ActionRecord) {
	if sim.Trace != nil {
		sim.Trace.RecordAction(rec)
	}
}
