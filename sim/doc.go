// Package sim is the schedule-driven orchestrator: it advances a reservoir
// schedule report step by report step and produces the summary state and
// restart data of every step.
//
// # Reading Guide
//
// Start with these files to understand the run loop:
//   - event.go: the sub-step and report-step events that drive the loop
//   - simulator.go: the event queue, the per-step pipeline and the exit check
//   - rates.go: the default target-driven well rate functions
//   - group.go: distribution of group targets to wells by guide rate
//
// # Architecture
//
// The step-indexed model and its evaluators live in sub-packages:
//   - sim/timeline/: forward-filled per-step containers
//   - sim/schedule/: wells, groups, UDQ and action configuration per step
//   - sim/summary/: the run-wide summary and UDQ value store
//   - sim/udq/: UDQ expressions and UDA resolution
//   - sim/action/: condition evaluation and schedule mutation
//   - sim/restart/: restart arrays, the binary record codec and the archive
//   - sim/deck/: YAML deck loading and schedule construction
//   - sim/trace/: decision trace recording
//
// # Key Interfaces
//
// The extension points are small:
//   - RateFunc: the solution of one open well over a sub-step
//   - ScriptEngine: runs SCRIPT action effects; optional
//   - OutputWriter: receives each report step's restart aggregate and summary
//
// Within a sub-step, rates are computed before the summary is updated and the
// summary before UDQs are evaluated. Actions and output follow the last
// sub-step of a report step. The loop stops after the step at which an exit
// was requested.
package sim
