package udq

import (
	"fmt"
	"math"

	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/simerr"
	"github.com/resvsim/schedule-sim/sim/summary"
	"github.com/resvsim/schedule-sim/sim/units"
)

// lookup resolves a symbolic UDA in deck units: entity-qualified key, then the
// bare keyword, then def. Negative values are clamped to zero.
func lookup(symbol, entityKey string, st *summary.State, def float64) float64 {
	v := def
	if st.Has(entityKey) {
		v = st.GetOr(entityKey, def)
	} else if st.Has(symbol) {
		v = st.GetOr(symbol, def)
	}
	return math.Max(v, 0)
}

func rawWellUDA(v schedule.UDAValue, well string, st *summary.State, def float64) float64 {
	if raw, err := v.Raw(); err == nil {
		return raw
	}
	return lookup(v.Symbol(), summary.WellKey(v.Symbol(), well), st, def)
}

// EvalWellUDA returns the SI value of a well control argument.
func EvalWellUDA(v schedule.UDAValue, well string, st *summary.State, def float64) float64 {
	if si, err := v.Get(); err == nil {
		return si
	}
	return v.Measure().ToSI(rawWellUDA(v, well, st, def))
}

// EvalWellUDARate resolves a rate target of an injector and converts it by the
// injected phase. Multi-phase injection has no single rate dimension.
func EvalWellUDARate(v schedule.UDAValue, well string, st *summary.State, def float64,
	phase schedule.Phase, us units.UnitSystem) (float64, error) {
	raw := rawWellUDA(v, well, st, def)
	switch phase {
	case schedule.PhaseOil, schedule.PhaseWater:
		return us.ToSI(units.LiquidSurfaceRate, raw), nil
	case schedule.PhaseGas:
		return us.ToSI(units.GasSurfaceRate, raw), nil
	default:
		return 0, fmt.Errorf("well %s: rate UDA for %s injector: %w", well, phase, simerr.ErrUnsupported)
	}
}

// EvalGroupUDA returns the SI value of a group control argument.
func EvalGroupUDA(v schedule.UDAValue, group string, st *summary.State, def float64) float64 {
	if si, err := v.Get(); err == nil {
		return si
	}
	return v.Measure().ToSI(lookup(v.Symbol(), summary.GroupKey(v.Symbol(), group), st, def))
}
