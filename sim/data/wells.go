// Package data holds the live solution values of a report step: per-well
// surface rates, pressures and connection rates, all in SI units.
package data

import (
	"maps"
	"slices"
)

// Rates holds surface volume rates (m3/s) and the reservoir voidage rate.
// Production is positive, injection negative.
type Rates struct {
	Oil   float64
	Water float64
	Gas   float64
	ResV  float64
}

// Add returns the component-wise sum.
func (r Rates) Add(o Rates) Rates {
	return Rates{Oil: r.Oil + o.Oil, Water: r.Water + o.Water, Gas: r.Gas + o.Gas, ResV: r.ResV + o.ResV}
}

// Scale returns r multiplied by f.
func (r Rates) Scale(f float64) Rates {
	return Rates{Oil: r.Oil * f, Water: r.Water * f, Gas: r.Gas * f, ResV: r.ResV * f}
}

// Liquid returns oil plus water.
func (r Rates) Liquid() float64 { return r.Oil + r.Water }

// IsZero reports whether every component is zero.
func (r Rates) IsZero() bool { return r == Rates{} }

// Connection is the solution for one well connection, keyed by cell index.
type Connection struct {
	Index    int // position in the well's connection list
	Rates    Rates
	Pressure float64 // Pa
}

// Well is the solution for one well.
type Well struct {
	Rates       Rates
	BHP         float64 // Pa
	THP         float64
	Connections []Connection
}

// Wells maps well names to their solution.
type Wells map[string]Well

// Names returns the well names, sorted.
func (w Wells) Names() []string {
	return slices.Sorted(maps.Keys(w))
}

// Get returns the solution for name and whether it exists.
func (w Wells) Get(name string) (Well, bool) {
	v, ok := w[name]
	return v, ok
}

// Clone returns a deep copy.
func (w Wells) Clone() Wells {
	out := make(Wells, len(w))
	for k, v := range w {
		v.Connections = slices.Clone(v.Connections)
		out[k] = v
	}
	return out
}
