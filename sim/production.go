package sim

import (
	"math"

	"github.com/resvsim/schedule-sim/sim/data"
	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/summary"
	"github.com/resvsim/schedule-sim/sim/units"
)

// updateSummary writes the well solutions of a sub-step of length dt into the
// summary store. Values are in deck units; totals grow by rate times dt. Group
// vectors sum the wells below the group, FIELD is written as F vectors.
func (sim *Simulator) updateSummary(step int, dt float64) error {
	us := sim.sched.UnitSystem()
	days := us.FromSI(units.Time, dt)
	st := sim.Summary

	groupRates := make(map[string]data.Rates)
	for _, w := range sim.sched.Wells(step) {
		sol := sim.Wells[w.Name]
		writeVectors(func(kw string, v float64) { st.UpdateWellVar(w.Name, "W"+kw, v) }, sol.Rates, days, us)
		st.UpdateWellVar(w.Name, "WBHP", us.FromSI(units.Pressure, sol.BHP))
		st.UpdateWellVar(w.Name, "WTHP", us.FromSI(units.Pressure, sol.THP))
		for _, c := range sol.Connections {
			st.UpdateConnVar(w.Name, "COPR", c.Index+1, us.FromSI(units.LiquidSurfaceRate, math.Max(c.Rates.Oil, 0)))
			st.UpdateConnVar(w.Name, "CWIR", c.Index+1, us.FromSI(units.LiquidSurfaceRate, math.Max(-c.Rates.Water, 0)))
		}
		for name := w.Group; name != ""; {
			groupRates[name] = groupRates[name].Add(sol.Rates)
			g, err := sim.sched.GetGroup(name, step)
			if err != nil {
				return err
			}
			name = g.Parent
			if name == "" && g.Name != schedule.FieldGroup {
				name = schedule.FieldGroup
			}
		}
	}
	for _, name := range sim.sched.GroupNames(step) {
		r := groupRates[name]
		if name == schedule.FieldGroup {
			writeVectors(func(kw string, v float64) { st.Update("F"+kw, v) }, r, days, us)
			continue
		}
		writeVectors(func(kw string, v float64) { st.UpdateGroupVar(name, "G"+kw, v) }, r, days, us)
	}
	st.UpdateElapsed(dt)
	return nil
}

// writeVectors emits the rate, ratio and total vectors of r. The set callback
// prefixes the keyword with the entity letter.
func writeVectors(set func(kw string, v float64), r data.Rates, days float64, us units.UnitSystem) {
	opr := us.FromSI(units.LiquidSurfaceRate, math.Max(r.Oil, 0))
	wpr := us.FromSI(units.LiquidSurfaceRate, math.Max(r.Water, 0))
	gpr := us.FromSI(units.GasSurfaceRate, math.Max(r.Gas, 0))
	vpr := us.FromSI(units.ReservoirRate, math.Max(r.ResV, 0))
	wir := us.FromSI(units.LiquidSurfaceRate, math.Max(-r.Water, 0))
	gir := us.FromSI(units.GasSurfaceRate, math.Max(-r.Gas, 0))
	vir := us.FromSI(units.ReservoirRate, math.Max(-r.ResV, 0))

	set("OPR", opr)
	set("WPR", wpr)
	set("GPR", gpr)
	set("LPR", opr+wpr)
	set("VPR", vpr)
	set("WIR", wir)
	set("GIR", gir)
	set("VIR", vir)
	wct, gor := 0.0, 0.0
	if opr+wpr > 0 {
		wct = wpr / (opr + wpr)
	}
	if r.Oil > 0 {
		gor = us.FromSI(units.GasOilRatio, math.Max(r.Gas, 0)/r.Oil)
	}
	set("WCT", wct)
	set("GOR", gor)

	set("OPT", opr*days)
	set("WPT", wpr*days)
	set("GPT", gpr*days)
	set("LPT", (opr+wpr)*days)
	set("VPT", vpr*days)
	set("WIT", wir*days)
	set("GIT", gir*days)
	set("VIT", vir*days)
}

// fieldVectors reads the field rates the run exposes as gauges.
func fieldVectors(st *summary.State) map[string]float64 {
	out := make(map[string]float64)
	for _, kw := range []string{"FOPR", "FWPR", "FGPR", "FWIR", "FGIR"} {
		out[kw] = st.GetOr(kw, 0)
	}
	return out
}
