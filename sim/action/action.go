// Package action evaluates ACTIONX-style conditional blocks against the
// summary state and applies their effects to the schedule.
package action

import (
	"fmt"
	"slices"
	"strings"

	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/simerr"
	"github.com/resvsim/schedule-sim/sim/summary"
	"github.com/resvsim/schedule-sim/sim/udq"
)

// Context is what conditions are evaluated against: the summary state and the
// well lists in force at the step.
type Context struct {
	Summary *summary.State
	WLists  *schedule.WListManager
	eval    *udq.Context
	engine  *udq.Engine
}

// NewContext builds the evaluation context for report step step.
func NewContext(sched *schedule.Schedule, step int, st *summary.State, engine *udq.Engine) (*Context, error) {
	wl, err := sched.WellLists(step)
	if err != nil {
		return nil, err
	}
	if engine == nil {
		engine = udq.NewEngine()
	}
	return &Context{
		Summary: st,
		WLists:  wl,
		eval:    udq.NewContext(sched, step, st),
		engine:  engine,
	}, nil
}

// Result is the outcome of evaluating one action's conditions.
type Result struct {
	Triggered bool
	Wells     []string // wells for which a well-level condition held
}

type comparator func(a, b float64) bool

var comparators = map[string]comparator{
	">":  func(a, b float64) bool { return a > b },
	"<":  func(a, b float64) bool { return a < b },
	">=": func(a, b float64) bool { return a >= b },
	"<=": func(a, b float64) bool { return a <= b },
	"=":  func(a, b float64) bool { return a == b },
	"!=": func(a, b float64) bool { return a != b },
}

// ValidComparator reports whether op is a known comparison operator.
func ValidComparator(op string) bool {
	_, ok := comparators[op]
	return ok
}

// Evaluate evaluates the conditions of a left to right. Each condition's Logic
// joins it to the next one. Undefined operands never satisfy a comparison.
func Evaluate(ctx *Context, a *schedule.ActionX) (Result, error) {
	if len(a.Conditions) == 0 {
		return Result{}, nil
	}
	var acc Result
	logic := ""
	for i, c := range a.Conditions {
		r, err := ctx.condition(c)
		if err != nil {
			return Result{}, fmt.Errorf("action %s condition %d: %w", a.Name, i+1, err)
		}
		if i == 0 {
			acc = r
		} else {
			acc = join(acc, r, logic)
		}
		logic = strings.ToUpper(c.Logic)
	}
	if !acc.Triggered {
		acc.Wells = nil
	}
	return acc, nil
}

func join(a, b Result, logic string) Result {
	if logic == "OR" {
		out := Result{Triggered: a.Triggered || b.Triggered, Wells: slices.Clone(a.Wells)}
		for _, w := range b.Wells {
			if !slices.Contains(out.Wells, w) {
				out.Wells = append(out.Wells, w)
			}
		}
		return out
	}
	out := Result{Triggered: a.Triggered && b.Triggered}
	switch {
	case a.Wells != nil && b.Wells != nil:
		for _, w := range a.Wells {
			if slices.Contains(b.Wells, w) {
				out.Wells = append(out.Wells, w)
			}
		}
	case a.Wells != nil:
		out.Wells = a.Wells
	default:
		out.Wells = b.Wells
	}
	return out
}

func (ctx *Context) condition(c schedule.Condition) (Result, error) {
	cmp, ok := comparators[c.Comparator]
	if !ok {
		return Result{}, fmt.Errorf("unknown comparator %q: %w", c.Comparator, simerr.ErrInvalidArgument)
	}
	left, err := ctx.operand(c.Left)
	if err != nil {
		return Result{}, err
	}
	right, err := ctx.operand(c.Right)
	if err != nil {
		return Result{}, err
	}
	holds := func(l, r udq.Value) bool { return l.Defined && r.Defined && cmp(l.V, r.V) }

	if left.Kind == udq.ScalarSet && right.Kind == udq.ScalarSet {
		return Result{Triggered: holds(left.Scalar, right.Scalar)}, nil
	}
	if left.Kind == udq.GroupSet || right.Kind == udq.GroupSet {
		// group conditions trigger without selecting wells
		names := left.Names
		if left.Kind == udq.ScalarSet {
			names = right.Names
		}
		for _, g := range names {
			if holds(left.At(g), right.At(g)) {
				return Result{Triggered: true}, nil
			}
		}
		return Result{}, nil
	}
	names := left.Names
	if left.Kind == udq.ScalarSet {
		names = right.Names
	}
	r := Result{Wells: []string{}}
	for _, w := range names {
		if holds(left.At(w), right.At(w)) {
			r.Wells = append(r.Wells, w)
		}
	}
	r.Triggered = len(r.Wells) > 0
	return r, nil
}

func (ctx *Context) operand(expr string) (udq.Set, error) {
	x, err := ctx.engine.Compile(expr)
	if err != nil {
		return udq.Set{}, err
	}
	return x.Eval(ctx.eval)
}
