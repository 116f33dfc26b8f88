package restart

import (
	"fmt"

	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/simerr"
	"github.com/resvsim/schedule-sim/sim/summary"
	"github.com/resvsim/schedule-sim/sim/udq"
	"github.com/resvsim/schedule-sim/sim/units"
)

// GroupData holds the IGRP/SGRP/XGRP/ZGRP arrays. FIELD takes the last window.
type GroupData struct {
	IGrp *WindowedArray[int32]
	SGrp *WindowedArray[float32]
	XGrp *WindowedArray[float64]
	ZGrp *WindowedArray[string]
}

// groupSlots maps group names to their 1-based IGRP index.
func groupSlots(sched *schedule.Schedule, step int, h Header) map[string]int32 {
	slots := map[string]int32{schedule.FieldGroup: int32(h.NGMaxZ)}
	n := int32(0)
	for _, name := range sched.GroupNames(step) {
		if name == schedule.FieldGroup {
			continue
		}
		n++
		slots[name] = n
	}
	return slots
}

// wellSlots maps well names to their 1-based IWEL index.
func wellSlots(sched *schedule.Schedule, step int) map[string]int32 {
	slots := make(map[string]int32)
	for i, name := range sched.WellNames(step) {
		slots[name] = int32(i + 1)
	}
	return slots
}

// AggregateGroupData fills the group arrays for step.
func AggregateGroupData(h Header, sched *schedule.Schedule, step int, st *summary.State) (*GroupData, error) {
	names := sched.GroupNames(step)
	if len(names) > h.NGMaxZ {
		return nil, fmt.Errorf("%d groups at step %d, capacity %d: %w", len(names), step, h.NGMaxZ, simerr.ErrInvalidArgument)
	}
	gd := &GroupData{}
	var err error
	if gd.IGrp, err = NewWindowedArray[int32](h.NGMaxZ, h.NIGRPZ(), 0); err != nil {
		return nil, err
	}
	if gd.SGrp, err = NewWindowedArray[float32](h.NGMaxZ, NSGRPZ, 0); err != nil {
		return nil, err
	}
	if gd.XGrp, err = NewWindowedArray[float64](h.NGMaxZ, NXGRPZ, 0); err != nil {
		return nil, err
	}
	if gd.ZGrp, err = NewWindowedArray[string](h.NGMaxZ, NZGRPZ, blank); err != nil {
		return nil, err
	}

	gslots := groupSlots(sched, step, h)
	wslots := wellSlots(sched, step)
	us := sched.UnitSystem()
	for _, name := range names {
		g, err := sched.GetGroup(name, step)
		if err != nil {
			return nil, err
		}
		children := len(g.Wells) + len(g.Groups)
		if children > h.NWGMax {
			return nil, fmt.Errorf("group %s has %d children, capacity %d: %w", name, children, h.NWGMax, simerr.ErrInvalidArgument)
		}
		win := int(gslots[name]) - 1
		ig, _ := gd.IGrp.Window(win)
		staticIGrp(ig, h, g, gslots, wslots, groupLevel(sched, step, g))
		sg, _ := gd.SGrp.Window(win)
		staticSGrp(sg, g, us, st)
		xg, _ := gd.XGrp.Window(win)
		dynamicXGrp(xg, g, st)
		zg, _ := gd.ZGrp.Window(win)
		zg[0] = pad8(name)
	}
	return gd, nil
}

func groupLevel(sched *schedule.Schedule, step int, g *schedule.Group) int32 {
	level := int32(0)
	for cur := g; cur.Name != schedule.FieldGroup; level++ {
		parent, err := sched.GetGroup(cur.Parent, step)
		if err != nil {
			break
		}
		cur = parent
	}
	return level
}

func staticIGrp(ig []int32, h Header, g *schedule.Group, gslots, wslots map[string]int32, level int32) {
	base := h.NWGMax
	// well children first, then subgroups
	n := 0
	for _, w := range g.Wells {
		ig[n] = wslots[w]
		n++
	}
	for _, c := range g.Groups {
		ig[n] = gslots[c]
		n++
	}
	ig[base+IGNoOfChildren] = int32(n)
	if len(g.Groups) > 0 {
		ig[base+IGGroupType] = 1
	}
	ig[base+IGProdCtrl] = controlCode(g.ProdControl, schedule.PhaseNone)
	ig[base+IGGroupLevel] = level
	if g.Name != schedule.FieldGroup {
		ig[base+IGParentGroup] = gslots[g.Parent]
	}
}

func staticSGrp(sg []float32, g *schedule.Group, us units.UnitSystem, st *summary.State) {
	slots := map[schedule.Control]int{
		schedule.ControlORAT: SGOilRateLimit,
		schedule.ControlWRAT: SGWatRateLimit,
		schedule.ControlGRAT: SGGasRateLimit,
		schedule.ControlLRAT: SGLiqRateLimit,
		schedule.ControlRESV: SGResVLimit,
	}
	for _, i := range slots {
		sg[i] = UnsetLimit
	}
	sg[SGWatInjLimit] = UnsetLimit
	sg[SGGasInjLimit] = UnsetLimit
	for c, slot := range slots {
		if v, ok := g.ProdTargets[c]; ok {
			sg[slot] = float32(us.FromSI(c.Dimension(schedule.PhaseNone), udq.EvalGroupUDA(v, g.Name, st, 0)))
		}
	}
	if v, ok := g.InjTargets[schedule.ControlRATE]; ok {
		si := udq.EvalGroupUDA(v, g.Name, st, 0)
		switch g.InjPhase {
		case schedule.PhaseWater:
			sg[SGWatInjLimit] = float32(us.FromSI(units.LiquidSurfaceRate, si))
		case schedule.PhaseGas:
			sg[SGGasInjLimit] = float32(us.FromSI(units.GasSurfaceRate, si))
		}
	}
}

func dynamicXGrp(xg []float64, g *schedule.Group, st *summary.State) {
	get := func(kw string) float64 {
		if g.Name == schedule.FieldGroup {
			return st.GetOr("F"+kw, 0)
		}
		return st.GetOr(summary.GroupKey("G"+kw, g.Name), 0)
	}
	for kw, slot := range map[string]int{
		"OPR": XGOilPrRate, "WPR": XGWatPrRate, "GPR": XGGasPrRate, "LPR": XGLiqPrRate, "VPR": XGVoidPrRate,
		"WIR": XGWatInjRate, "GIR": XGGasInjRate,
		"OPT": XGOilPrTotal, "WPT": XGWatPrTotal, "GPT": XGGasPrTotal, "VPT": XGVoidPrTotal,
		"WIT": XGWatInjTotal, "GIT": XGGasInjTotal,
	} {
		xg[slot] = get(kw)
	}
}
