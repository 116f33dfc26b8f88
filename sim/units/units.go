// Package units converts between deck units and SI for the physical quantities
// the schedule and restart layers handle.
package units

import (
	"fmt"
	"strings"
)

// Dimension tags a physical quantity.
type Dimension int

const (
	Identity Dimension = iota
	Length
	Time
	Pressure
	LiquidSurfaceRate
	GasSurfaceRate
	ReservoirRate
	LiquidSurfaceVolume
	GasSurfaceVolume
	Transmissibility
	GasOilRatio
	EffectiveKH
)

var dimensionNames = map[Dimension]string{
	Identity:            "identity",
	Length:              "length",
	Time:                "time",
	Pressure:            "pressure",
	LiquidSurfaceRate:   "liquid_surface_rate",
	GasSurfaceRate:      "gas_surface_rate",
	ReservoirRate:       "reservoir_rate",
	LiquidSurfaceVolume: "liquid_surface_volume",
	GasSurfaceVolume:    "gas_surface_volume",
	Transmissibility:    "transmissibility",
	GasOilRatio:         "gas_oil_ratio",
	EffectiveKH:         "effective_kh",
}

func (d Dimension) String() string {
	if s, ok := dimensionNames[d]; ok {
		return s
	}
	return fmt.Sprintf("dimension(%d)", int(d))
}

// Kind identifies a deck unit system.
type Kind int

const (
	Metric Kind = iota + 1
	Field
)

// Restart INTEHEAD unit codes.
func (k Kind) RestartCode() int32 {
	switch k {
	case Field:
		return 2
	default:
		return 1
	}
}

const (
	day          = 86400.0
	bar          = 1.0e5
	psia         = 6894.757293168361
	feet         = 0.3048
	stb          = 0.158987294928
	mscf         = 28.316846592
	centiPoise   = 1.0e-3
	milliDarcy   = 9.869233e-16
	cubicMeter   = 1.0
	rsMetric     = 1.0
	rsField      = mscf / stb
	transMetric  = centiPoise * cubicMeter / (day * bar)
	transField   = centiPoise * stb / (day * psia)
	khMetric     = milliDarcy * 1.0
	khField      = milliDarcy * feet
	liqRateField = stb / day
	gasRateField = mscf / day
	volRate      = cubicMeter / day
)

// UnitSystem maps deck values to SI and back. Values are immutable.
type UnitSystem struct {
	kind    Kind
	factors map[Dimension]float64
}

// NewMetric returns the METRIC unit system (bar, sm3/day, m, day).
func NewMetric() UnitSystem {
	return UnitSystem{kind: Metric, factors: map[Dimension]float64{
		Identity:            1,
		Length:              1,
		Time:                day,
		Pressure:            bar,
		LiquidSurfaceRate:   volRate,
		GasSurfaceRate:      volRate,
		ReservoirRate:       volRate,
		LiquidSurfaceVolume: cubicMeter,
		GasSurfaceVolume:    cubicMeter,
		Transmissibility:    transMetric,
		GasOilRatio:         rsMetric,
		EffectiveKH:         khMetric,
	}}
}

// NewField returns the FIELD unit system (psia, stb/day, Mscf/day, ft, day).
func NewField() UnitSystem {
	return UnitSystem{kind: Field, factors: map[Dimension]float64{
		Identity:            1,
		Length:              feet,
		Time:                day,
		Pressure:            psia,
		LiquidSurfaceRate:   liqRateField,
		GasSurfaceRate:      gasRateField,
		ReservoirRate:       liqRateField,
		LiquidSurfaceVolume: stb,
		GasSurfaceVolume:    mscf,
		Transmissibility:    transField,
		GasOilRatio:         rsField,
		EffectiveKH:         khField,
	}}
}

// Parse returns the unit system with the given deck name (METRIC or FIELD).
func Parse(name string) (UnitSystem, error) {
	switch strings.ToUpper(name) {
	case "", "METRIC":
		return NewMetric(), nil
	case "FIELD":
		return NewField(), nil
	default:
		return UnitSystem{}, fmt.Errorf("unknown unit system %q; valid: METRIC, FIELD", name)
	}
}

// Kind returns the deck unit system identifier.
func (u UnitSystem) Kind() Kind {
	return u.kind
}

func (u UnitSystem) String() string {
	if u.kind == Field {
		return "FIELD"
	}
	return "METRIC"
}

// Factor returns the multiplier taking a deck value of dimension d to SI.
func (u UnitSystem) Factor(d Dimension) float64 {
	if f, ok := u.factors[d]; ok {
		return f
	}
	return 1
}

// ToSI converts a deck value to SI.
func (u UnitSystem) ToSI(d Dimension, v float64) float64 {
	return v * u.Factor(d)
}

// FromSI converts an SI value to deck units.
func (u UnitSystem) FromSI(d Dimension, v float64) float64 {
	return v / u.Factor(d)
}

// Measure binds a dimension to the SI factor of a particular unit system, so a
// value can be converted without carrying the unit system around.
type Measure struct {
	Dim      Dimension
	SIFactor float64
}

// Measure returns the conversion binding for dimension d.
func (u UnitSystem) Measure(d Dimension) Measure {
	return Measure{Dim: d, SIFactor: u.Factor(d)}
}

// ToSI converts a raw value measured in m to SI.
func (m Measure) ToSI(v float64) float64 {
	if m.SIFactor == 0 {
		return v
	}
	return v * m.SIFactor
}

// FromSI converts an SI value back to the raw unit of m.
func (m Measure) FromSI(v float64) float64 {
	if m.SIFactor == 0 {
		return v
	}
	return v / m.SIFactor
}
