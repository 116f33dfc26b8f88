package schedule

import (
	"fmt"
	"strconv"

	"github.com/resvsim/schedule-sim/sim/simerr"
	"github.com/resvsim/schedule-sim/sim/units"
)

// UDAValue is a control argument that is either a literal number (in deck units)
// or the name of a quantity resolved against the summary state at evaluation time.
type UDAValue struct {
	numeric bool
	value   float64
	symbol  string
	measure units.Measure
}

// NumericUDA returns a numeric UDA holding a raw deck value.
func NumericUDA(v float64, m units.Measure) UDAValue {
	return UDAValue{numeric: true, value: v, measure: m}
}

// SymbolicUDA returns a UDA referring to a UDQ or summary keyword.
func SymbolicUDA(name string, m units.Measure) UDAValue {
	return UDAValue{symbol: name, measure: m}
}

// ParseUDA interprets s as a number when possible and as a symbol otherwise.
func ParseUDA(s string, m units.Measure) UDAValue {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return NumericUDA(v, m)
	}
	return SymbolicUDA(s, m)
}

// IsNumeric reports whether the value is a literal number.
func (u UDAValue) IsNumeric() bool { return u.numeric }

// Symbol returns the referenced quantity name; empty for numeric values.
func (u UDAValue) Symbol() string { return u.symbol }

// Measure returns the physical dimension binding of the value.
func (u UDAValue) Measure() units.Measure { return u.measure }

// Get returns the SI value. Symbolic values cannot be resolved here.
func (u UDAValue) Get() (float64, error) {
	raw, err := u.Raw()
	if err != nil {
		return 0, err
	}
	return u.measure.ToSI(raw), nil
}

// Raw returns the numeric value in deck units.
func (u UDAValue) Raw() (float64, error) {
	if !u.numeric {
		return 0, fmt.Errorf("UDA %q is symbolic: %w", u.symbol, simerr.ErrInvalidArgument)
	}
	return u.value, nil
}

// Equal requires tag, dimension and payload to match.
func (u UDAValue) Equal(o UDAValue) bool {
	if u.numeric != o.numeric || u.measure != o.measure {
		return false
	}
	if u.numeric {
		return u.value == o.value
	}
	return u.symbol == o.symbol
}

func (u UDAValue) String() string {
	if u.numeric {
		return strconv.FormatFloat(u.value, 'g', -1, 64)
	}
	return u.symbol
}
