package action

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/simerr"
	"github.com/resvsim/schedule-sim/sim/summary"
)

// ScriptRunner executes the script of a SCRIPT effect with write access to the
// schedule and the summary state.
type ScriptRunner interface {
	RunScript(script string, sched *schedule.Schedule, step int, st *summary.State) error
}

// Outcome reports what applying an action did.
type Outcome struct {
	Exit     bool
	ExitCode int
	Wells    []string // wells whose configuration changed
}

// Apply carries out the effects of a triggered action fired at the end of
// report step step. Schedule edits take effect from step+1 and only rewrite
// the run of steps equal to the current plan, so later planned changes survive.
// Every effect is checked before the first edit: an unknown effect kind, a
// SCRIPT effect with a nil runner or an unresolvable well leaves the schedule
// untouched. Errors raised by a running script are the runner's to undo.
func Apply(sched *schedule.Schedule, step int, a *schedule.ActionX, res Result, st *summary.State,
	scripts ScriptRunner) (Outcome, error) {
	var out Outcome
	next := step + 1
	targets, err := plan(sched, step, a, res, scripts)
	if err != nil {
		return out, err
	}
	for i, eff := range a.Effects {
		switch eff.Kind {
		case schedule.EffectExit:
			out.Exit = true
			out.ExitCode = eff.ExitCode
		case schedule.EffectScript:
			if err := scripts.RunScript(eff.Script, sched, step, st); err != nil {
				return out, fmt.Errorf("action %s script: %w", a.Name, err)
			}
		case schedule.EffectWellOpen, schedule.EffectWellTarget:
			if next >= sched.Size() {
				logrus.Warnf("action %s fired at the last report step; %s has no step to apply to", a.Name, eff.Kind)
				continue
			}
			for _, w := range targets[i] {
				changed, err := applyToWell(sched, step, next, w, eff)
				if err != nil {
					return out, fmt.Errorf("action %s effect %d: %w", a.Name, i+1, err)
				}
				if changed && !slices.Contains(out.Wells, w) {
					out.Wells = append(out.Wells, w)
				}
			}
		}
	}
	return out, nil
}

// plan validates every effect of a and resolves the wells each well effect
// touches, indexed like a.Effects.
func plan(sched *schedule.Schedule, step int, a *schedule.ActionX, res Result, scripts ScriptRunner) ([][]string, error) {
	targets := make([][]string, len(a.Effects))
	for i, eff := range a.Effects {
		switch eff.Kind {
		case schedule.EffectExit:
		case schedule.EffectScript:
			if scripts == nil {
				return nil, fmt.Errorf("action %s effect %d: no script engine: %w", a.Name, i+1, simerr.ErrUnsupported)
			}
		case schedule.EffectWellOpen, schedule.EffectWellTarget:
			wells, err := resolveWells(sched, step, eff.Wells, res)
			if err != nil {
				return nil, fmt.Errorf("action %s effect %d: %w", a.Name, i+1, err)
			}
			for _, w := range wells {
				if _, err := sched.GetWell(w, step); err != nil {
					return nil, fmt.Errorf("action %s effect %d: %w", a.Name, i+1, err)
				}
			}
			targets[i] = wells
		default:
			return nil, fmt.Errorf("action %s: effect %q: %w", a.Name, eff.Kind, simerr.ErrUnsupported)
		}
	}
	return targets, nil
}

func resolveWells(sched *schedule.Schedule, step int, patterns []string, res Result) ([]string, error) {
	var out []string
	add := func(names []string) {
		for _, n := range names {
			if !slices.Contains(out, n) {
				out = append(out, n)
			}
		}
	}
	for _, p := range patterns {
		if p == schedule.MatchedWells {
			add(res.Wells)
			continue
		}
		names, err := sched.MatchWells(p, step)
		if err != nil {
			return nil, err
		}
		add(names)
	}
	return out, nil
}

func applyToWell(sched *schedule.Schedule, step, next int, name string, eff schedule.Effect) (bool, error) {
	if eff.Kind == schedule.EffectWellOpen {
		logrus.Infof("action sets well %s %s from step %d", name, eff.Status, next)
		return sched.UpdateWellStatusEqual(name, next, eff.Status)
	}
	w, err := sched.GetWell(name, step)
	if err != nil {
		return false, err
	}
	m := sched.UnitSystem().Measure(eff.Control.Dimension(w.InjectorPhase))
	logrus.Infof("action sets well %s %s target %g from step %d", name, eff.Control, eff.Value, next)
	return sched.UpdateWellTarget(name, next, eff.Control, schedule.NumericUDA(eff.Value, m))
}
