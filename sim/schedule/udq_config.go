package schedule

import (
	"slices"
	"strings"
)

// UDQVarType is the entity class a UDQ is defined over, taken from the first
// letter of its keyword.
type UDQVarType int

const (
	UDQNone UDQVarType = iota
	UDQField
	UDQWell
	UDQGroup
	UDQConnection
	UDQRegion
	UDQSegment
	UDQAquifer
	UDQBlock
)

// VarTypeOf classifies a keyword: FU* is a field UDQ, WU* a well UDQ and so on.
func VarTypeOf(keyword string) UDQVarType {
	if keyword == "" {
		return UDQNone
	}
	switch strings.ToUpper(keyword)[0] {
	case 'F':
		return UDQField
	case 'W':
		return UDQWell
	case 'G':
		return UDQGroup
	case 'C':
		return UDQConnection
	case 'R':
		return UDQRegion
	case 'S':
		return UDQSegment
	case 'A':
		return UDQAquifer
	case 'B':
		return UDQBlock
	default:
		return UDQNone
	}
}

func (v UDQVarType) String() string {
	return [...]string{"NONE", "FIELD", "WELL", "GROUP", "CONNECTION", "REGION", "SEGMENT", "AQUIFER", "BLOCK"}[v]
}

// UDQDefine is a quantity recomputed from an expression every step.
type UDQDefine struct {
	Keyword    string
	Expression string
}

// UDQAssign is a constant written once, at the step it is entered.
type UDQAssign struct {
	Keyword  string
	Selector []string // empty selects every entity
	Value    float64
	Step     int
}

// UDQInput wraps either a define or an assign. Keyword and VarType are cached
// from whichever variant is present.
type UDQInput struct {
	Keyword string
	VarType UDQVarType
	Unit    string
	Define  *UDQDefine
	Assign  *UDQAssign
}

// IsDefine reports whether the input is an expression.
func (in UDQInput) IsDefine() bool { return in.Define != nil }

func newDefineInput(d UDQDefine, unit string) UDQInput {
	return UDQInput{Keyword: d.Keyword, VarType: VarTypeOf(d.Keyword), Unit: unit, Define: &d}
}

func newAssignInput(a UDQAssign, unit string) UDQInput {
	return UDQInput{Keyword: a.Keyword, VarType: VarTypeOf(a.Keyword), Unit: unit, Assign: &a}
}

func (in UDQInput) equal(o UDQInput) bool {
	if in.Keyword != o.Keyword || in.VarType != o.VarType || in.Unit != o.Unit {
		return false
	}
	switch {
	case in.Define != nil && o.Define != nil:
		return *in.Define == *o.Define
	case in.Assign != nil && o.Assign != nil:
		return in.Assign.Keyword == o.Assign.Keyword &&
			slices.Equal(in.Assign.Selector, o.Assign.Selector) &&
			in.Assign.Value == o.Assign.Value &&
			in.Assign.Step == o.Assign.Step
	default:
		return false
	}
}

// UDQConfig is the set of UDQs active at a report step, in definition order.
type UDQConfig struct {
	inputs         []UDQInput
	UndefinedValue float64
}

// NewUDQConfig returns an empty configuration.
func NewUDQConfig() *UDQConfig {
	return &UDQConfig{}
}

// AddDefine registers or replaces the expression for keyword.
func (c *UDQConfig) AddDefine(keyword, expr, unit string) {
	c.put(newDefineInput(UDQDefine{Keyword: keyword, Expression: expr}, unit))
}

// AddAssign registers or replaces a constant assignment for keyword.
func (c *UDQConfig) AddAssign(keyword string, selector []string, value float64, step int) {
	c.put(newAssignInput(UDQAssign{Keyword: keyword, Selector: slices.Clone(selector), Value: value, Step: step}, c.unitOf(keyword)))
}

func (c *UDQConfig) unitOf(keyword string) string {
	if in, ok := c.Input(keyword); ok {
		return in.Unit
	}
	return ""
}

func (c *UDQConfig) put(in UDQInput) {
	for i := range c.inputs {
		if c.inputs[i].Keyword == in.Keyword {
			c.inputs[i] = in
			return
		}
	}
	c.inputs = append(c.inputs, in)
}

// Inputs returns every UDQ in definition order.
func (c *UDQConfig) Inputs() []UDQInput {
	if c == nil {
		return nil
	}
	return c.inputs
}

// Input looks up one UDQ by keyword.
func (c *UDQConfig) Input(keyword string) (UDQInput, bool) {
	if c == nil {
		return UDQInput{}, false
	}
	for _, in := range c.inputs {
		if in.Keyword == keyword {
			return in, true
		}
	}
	return UDQInput{}, false
}

// Has reports whether keyword is a configured UDQ.
func (c *UDQConfig) Has(keyword string) bool {
	_, ok := c.Input(keyword)
	return ok
}

// Clone returns a deep copy.
func (c *UDQConfig) Clone() *UDQConfig {
	if c == nil {
		return NewUDQConfig()
	}
	out := &UDQConfig{UndefinedValue: c.UndefinedValue, inputs: make([]UDQInput, len(c.inputs))}
	for i, in := range c.inputs {
		cp := in
		if in.Define != nil {
			d := *in.Define
			cp.Define = &d
		}
		if in.Assign != nil {
			a := *in.Assign
			a.Selector = slices.Clone(in.Assign.Selector)
			cp.Assign = &a
		}
		out.inputs[i] = cp
	}
	return out
}

// Equal compares two configurations.
func (c *UDQConfig) Equal(o *UDQConfig) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.UndefinedValue == o.UndefinedValue && slices.EqualFunc(c.inputs, o.inputs, UDQInput.equal)
}
