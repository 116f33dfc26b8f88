package udq

import (
	"fmt"
	"math"

	"github.com/resvsim/schedule-sim/sim/simerr"
)

// SetKind says whether a Set holds one value or one value per entity.
type SetKind int

const (
	ScalarSet SetKind = iota
	WellSet
	GroupSet
)

func (k SetKind) String() string {
	switch k {
	case WellSet:
		return "well"
	case GroupSet:
		return "group"
	default:
		return "scalar"
	}
}

// Value is one UDQ result; undefined values propagate through arithmetic.
type Value struct {
	V       float64
	Defined bool
}

func defined(v float64) Value { return Value{V: v, Defined: true} }

// Set is the result of evaluating an expression: a scalar or a per-entity vector.
type Set struct {
	Kind   SetKind
	Scalar Value
	Names  []string
	Values map[string]Value
}

func scalar(v Value) Set { return Set{Kind: ScalarSet, Scalar: v} }

func newEntitySet(kind SetKind, names []string) Set {
	return Set{Kind: kind, Names: names, Values: make(map[string]Value, len(names))}
}

// At returns the value for an entity, broadcasting scalars.
func (s Set) At(name string) Value {
	if s.Kind == ScalarSet {
		return s.Scalar
	}
	return s.Values[name]
}

// mapValues applies f to every defined element.
func (s Set) mapValues(f func(float64) (float64, error)) (Set, error) {
	apply := func(v Value) (Value, error) {
		if !v.Defined {
			return v, nil
		}
		r, err := f(v.V)
		if err != nil {
			return Value{}, err
		}
		return defined(r), nil
	}
	if s.Kind == ScalarSet {
		v, err := apply(s.Scalar)
		return scalar(v), err
	}
	out := newEntitySet(s.Kind, s.Names)
	for _, n := range s.Names {
		v, err := apply(s.Values[n])
		if err != nil {
			return Set{}, fmt.Errorf("%s %s: %w", s.Kind, n, err)
		}
		out.Values[n] = v
	}
	return out, nil
}

func combine(l, r Set, op func(a, b float64) (float64, error)) (Set, error) {
	apply := func(a, b Value) (Value, error) {
		if !a.Defined || !b.Defined {
			return Value{}, nil
		}
		v, err := op(a.V, b.V)
		if err != nil {
			return Value{}, err
		}
		return defined(v), nil
	}
	switch {
	case l.Kind == ScalarSet && r.Kind == ScalarSet:
		v, err := apply(l.Scalar, r.Scalar)
		return scalar(v), err
	case l.Kind != ScalarSet && r.Kind != ScalarSet && l.Kind != r.Kind:
		return Set{}, fmt.Errorf("cannot combine %s and %s sets: %w", l.Kind, r.Kind, simerr.ErrInvalidArgument)
	}
	base := l
	if l.Kind == ScalarSet {
		base = r
	}
	out := newEntitySet(base.Kind, base.Names)
	for _, n := range base.Names {
		v, err := apply(l.At(n), r.At(n))
		if err != nil {
			return Set{}, fmt.Errorf("%s %s: %w", base.Kind, n, err)
		}
		out.Values[n] = v
	}
	return out, nil
}

func arith(op byte) func(a, b float64) (float64, error) {
	switch op {
	case '+':
		return func(a, b float64) (float64, error) { return a + b, nil }
	case '-':
		return func(a, b float64) (float64, error) { return a - b, nil }
	case '*':
		return func(a, b float64) (float64, error) { return a * b, nil }
	case '/':
		return func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, fmt.Errorf("division by zero: %w", simerr.ErrNumerical)
			}
			return a / b, nil
		}
	case '^':
		return func(a, b float64) (float64, error) {
			v := math.Pow(a, b)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("%g ^ %g out of range: %w", a, b, simerr.ErrNumerical)
			}
			return v, nil
		}
	}
	return nil
}

// aggregate reduces a set to a scalar over its defined elements.
func aggregate(fn string, s Set) Set {
	if s.Kind == ScalarSet {
		return s
	}
	var vals []float64
	for _, n := range s.Names {
		if v := s.Values[n]; v.Defined {
			vals = append(vals, v.V)
		}
	}
	switch fn {
	case "SUM":
		total := 0.0
		for _, v := range vals {
			total += v
		}
		return scalar(defined(total))
	}
	if len(vals) == 0 {
		return scalar(Value{})
	}
	switch fn {
	case "AVEA":
		total := 0.0
		for _, v := range vals {
			total += v
		}
		return scalar(defined(total / float64(len(vals))))
	case "MAX":
		m := vals[0]
		for _, v := range vals[1:] {
			m = math.Max(m, v)
		}
		return scalar(defined(m))
	default: // MIN
		m := vals[0]
		for _, v := range vals[1:] {
			m = math.Min(m, v)
		}
		return scalar(defined(m))
	}
}

var elementwise = map[string]func(float64) (float64, error){
	"ABS": func(x float64) (float64, error) { return math.Abs(x), nil },
	"SQRT": func(x float64) (float64, error) {
		if x < 0 {
			return 0, fmt.Errorf("SQRT of %g: %w", x, simerr.ErrNumerical)
		}
		return math.Sqrt(x), nil
	},
	"EXP": func(x float64) (float64, error) {
		v := math.Exp(x)
		if math.IsInf(v, 0) {
			return 0, fmt.Errorf("EXP of %g overflows: %w", x, simerr.ErrNumerical)
		}
		return v, nil
	},
	"LN": func(x float64) (float64, error) {
		if x <= 0 {
			return 0, fmt.Errorf("LN of %g: %w", x, simerr.ErrNumerical)
		}
		return math.Log(x), nil
	},
	"LOG": func(x float64) (float64, error) {
		if x <= 0 {
			return 0, fmt.Errorf("LOG of %g: %w", x, simerr.ErrNumerical)
		}
		return math.Log10(x), nil
	},
	"NINT": func(x float64) (float64, error) { return math.Round(x), nil },
}

var aggregates = map[string]bool{"SUM": true, "AVEA": true, "MAX": true, "MIN": true}
