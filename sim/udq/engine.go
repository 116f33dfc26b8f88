// Package udq evaluates user-defined quantities against the summary state and
// resolves user-defined arguments (UDAs) on well and group targets.
package udq

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/simerr"
	"github.com/resvsim/schedule-sim/sim/summary"
)

// Engine evaluates the UDQ configuration of a step. It caches parsed
// expressions and remembers which assignments have already been written.
type Engine struct {
	parsed  map[string]Expr
	applied map[assignKey]bool
}

type assignKey struct {
	keyword string
	step    int
}

// NewEngine returns an engine with empty caches.
func NewEngine() *Engine {
	return &Engine{
		parsed:  make(map[string]Expr),
		applied: make(map[assignKey]bool),
	}
}

// Compile parses expr, reusing an earlier parse of the same text.
func (e *Engine) Compile(expr string) (Expr, error) {
	if x, ok := e.parsed[expr]; ok {
		return x, nil
	}
	x, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	e.parsed[expr] = x
	return x, nil
}

// NewContext builds the evaluation context for report step step.
func NewContext(sched *schedule.Schedule, step int, st *summary.State) *Context {
	return &Context{
		State:  st,
		Wells:  sched.WellNames(step),
		Groups: sched.GroupNames(step),
		MatchWells: func(pattern string) ([]string, error) {
			return sched.MatchWells(pattern, step)
		},
	}
}

// Evaluate writes every UDQ configured at step into st, in definition order,
// so later definitions may read earlier ones.
func (e *Engine) Evaluate(sched *schedule.Schedule, step int, st *summary.State) error {
	cfg, err := sched.UDQConfig(step)
	if err != nil {
		return err
	}
	ctx := NewContext(sched, step, st)
	for _, in := range cfg.Inputs() {
		switch in.VarType {
		case schedule.UDQField, schedule.UDQWell, schedule.UDQGroup:
		default:
			return fmt.Errorf("udq %s: %s quantities: %w", in.Keyword, in.VarType, simerr.ErrUnsupported)
		}
		if in.IsDefine() {
			if err := e.define(ctx, cfg, in); err != nil {
				return fmt.Errorf("udq %s: %w", in.Keyword, err)
			}
			continue
		}
		if err := e.assign(ctx, step, in); err != nil {
			return fmt.Errorf("udq %s: %w", in.Keyword, err)
		}
	}
	return nil
}

func (e *Engine) define(ctx *Context, cfg *schedule.UDQConfig, in schedule.UDQInput) error {
	x, err := e.Compile(in.Define.Expression)
	if err != nil {
		return err
	}
	res, err := x.Eval(ctx)
	if err != nil {
		return err
	}
	value := func(v Value) float64 {
		if v.Defined {
			return v.V
		}
		return cfg.UndefinedValue
	}
	switch in.VarType {
	case schedule.UDQField:
		if res.Kind != ScalarSet {
			return fmt.Errorf("field quantity from a %s set; aggregate it with SUM/AVEA/MAX/MIN: %w",
				res.Kind, simerr.ErrInvalidArgument)
		}
		ctx.State.Update(in.Keyword, value(res.Scalar))
	case schedule.UDQWell:
		if res.Kind == GroupSet {
			return fmt.Errorf("well quantity from a group set: %w", simerr.ErrInvalidArgument)
		}
		for _, w := range ctx.Wells {
			ctx.State.UpdateWellVar(w, in.Keyword, value(res.At(w)))
		}
	case schedule.UDQGroup:
		if res.Kind == WellSet {
			return fmt.Errorf("group quantity from a well set: %w", simerr.ErrInvalidArgument)
		}
		for _, g := range ctx.Groups {
			ctx.State.UpdateGroupVar(g, in.Keyword, value(res.At(g)))
		}
	}
	return nil
}

// assign writes an assignment once, on the first evaluated step at or after
// the step it was entered. Step 0 assigns land on report step 1.
func (e *Engine) assign(ctx *Context, step int, in schedule.UDQInput) error {
	a := in.Assign
	if a.Step > step {
		return nil
	}
	key := assignKey{in.Keyword, a.Step}
	if e.applied[key] {
		return nil
	}
	e.applied[key] = true
	logrus.Debugf("udq assign %s = %g at step %d (entered at %d)", in.Keyword, a.Value, step, a.Step)

	switch in.VarType {
	case schedule.UDQField:
		ctx.State.Update(in.Keyword, a.Value)
	case schedule.UDQWell:
		names := ctx.Wells
		if len(a.Selector) > 0 {
			names = nil
			for _, sel := range a.Selector {
				m, err := ctx.matchWells(sel)
				if err != nil {
					return err
				}
				names = append(names, m...)
			}
		}
		for _, w := range names {
			ctx.State.UpdateWellVar(w, in.Keyword, a.Value)
		}
	case schedule.UDQGroup:
		names := ctx.Groups
		if len(a.Selector) > 0 {
			names = nil
			for _, sel := range a.Selector {
				names = append(names, filterNames(ctx.Groups, sel)...)
			}
		}
		for _, g := range names {
			ctx.State.UpdateGroupVar(g, in.Keyword, a.Value)
		}
	}
	return nil
}
