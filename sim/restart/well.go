package restart

import (
	"fmt"
	"slices"

	"github.com/resvsim/schedule-sim/sim/data"
	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/simerr"
	"github.com/resvsim/schedule-sim/sim/summary"
	"github.com/resvsim/schedule-sim/sim/udq"
	"github.com/resvsim/schedule-sim/sim/units"
)

// WellData holds the IWEL/SWEL/XWEL/ZWEL arrays, one window per well slot.
type WellData struct {
	IWel *WindowedArray[int32]
	SWel *WindowedArray[float32]
	XWel *WindowedArray[float64]
	ZWel *WindowedArray[string]
}

// AggregateWellData fills the well arrays for step. Wells take the slots in
// insertion order; unused slots keep their sentinels.
func AggregateWellData(h Header, sched *schedule.Schedule, step int, wells data.Wells, st *summary.State) (*WellData, error) {
	active := sched.Wells(step)
	if len(active) > h.NWells {
		return nil, fmt.Errorf("%d wells at step %d, capacity %d: %w", len(active), step, h.NWells, simerr.ErrInvalidArgument)
	}
	wd := &WellData{}
	var err error
	if wd.IWel, err = NewWindowedArray[int32](h.NWells, NIWELZ, 0); err != nil {
		return nil, err
	}
	if wd.SWel, err = NewWindowedArray[float32](h.NWells, NSWELZ, 0); err != nil {
		return nil, err
	}
	if wd.XWel, err = NewWindowedArray[float64](h.NWells, NXWELZ, 0); err != nil {
		return nil, err
	}
	if wd.ZWel, err = NewWindowedArray[string](h.NWells, NZWELZ, blank); err != nil {
		return nil, err
	}

	groupIndex := groupSlots(sched, step, h)
	us := sched.UnitSystem()
	msIndex := 0
	for slot, w := range active {
		iw, _ := wd.IWel.Window(slot)
		if segmented(w) {
			msIndex++
			iw[IWMsWID] = int32(msIndex)
		}
		staticIWel(iw, w, groupIndex[w.Group])
		sw, _ := wd.SWel.Window(slot)
		staticSWel(sw, w, us, st)
		zw, _ := wd.ZWel.Window(slot)
		zw[0] = pad8(w.Name)

		xw, _ := wd.XWel.Window(slot)
		dynamicXWel(xw, w, wells, st, us)
	}
	return wd, nil
}

func segmented(w *schedule.Well) bool {
	return slices.ContainsFunc(w.Connections, func(c schedule.Connection) bool { return c.Segment > 0 })
}

func staticIWel(iw []int32, w *schedule.Well, group int32) {
	iw[IWHeadI] = int32(w.HeadI + 1)
	iw[IWHeadJ] = int32(w.HeadJ + 1)
	if n := len(w.Connections); n > 0 {
		first, last := w.Connections[0].K, w.Connections[0].K
		nseg := 0
		for _, c := range w.Connections {
			first = min(first, c.K)
			last = max(last, c.K)
			nseg = max(nseg, c.Segment)
		}
		iw[IWFirstK] = int32(first + 1)
		iw[IWLastK] = int32(last + 1)
		iw[IWNConn] = int32(n)
		if iw[IWMsWID] > 0 {
			iw[IWNWseg] = int32(nseg)
		}
	}
	iw[IWGroup] = group
	iw[IWType] = wellTypeCode(w)
	iw[IWActCtrl] = controlCode(w.Control, w.InjectorPhase)
	iw[IWStatus] = statusCode(w.Status)
	iw[IWVFPTab] = int32(w.VFPTable)
	if w.AllowCrossFlow {
		iw[IWXFlow] = 1
	}
	iw[IWCompOrd] = compOrdTrk
}

func wellTypeCode(w *schedule.Well) int32 {
	if w.IsProducer() {
		return WTypeProducer
	}
	switch w.InjectorPhase {
	case schedule.PhaseWater:
		return WTypeWaterInjector
	case schedule.PhaseGas:
		return WTypeGasInjector
	default:
		return WTypeOilInjector
	}
}

func statusCode(s schedule.WellStatus) int32 {
	switch s {
	case schedule.StatusOpen, schedule.StatusAuto:
		return StatusOpenCode
	case schedule.StatusStop:
		return StatusStopCode
	default:
		return StatusShutCode
	}
}

func controlCode(c schedule.Control, injPhase schedule.Phase) int32 {
	switch c {
	case schedule.ControlORAT:
		return ctrlORAT
	case schedule.ControlWRAT:
		return ctrlWRAT
	case schedule.ControlGRAT:
		return ctrlGRAT
	case schedule.ControlLRAT:
		return ctrlLRAT
	case schedule.ControlRESV:
		return ctrlRESV
	case schedule.ControlTHP:
		return ctrlTHP
	case schedule.ControlBHP:
		return ctrlBHP
	case schedule.ControlGRUP:
		return ctrlGRUP
	case schedule.ControlRATE:
		switch injPhase {
		case schedule.PhaseWater:
			return ctrlWRAT
		case schedule.PhaseGas:
			return ctrlGRAT
		default:
			return ctrlORAT
		}
	}
	return ctrlNone
}

var rateTargetSlots = map[schedule.Control]int{
	schedule.ControlORAT: SWOilRateTarget,
	schedule.ControlWRAT: SWWatRateTarget,
	schedule.ControlGRAT: SWGasRateTarget,
	schedule.ControlLRAT: SWLiqRateTarget,
	schedule.ControlRESV: SWResVRateTarget,
}

func staticSWel(sw []float32, w *schedule.Well, us units.UnitSystem, st *summary.State) {
	for _, i := range []int{SWOilRateTarget, SWWatRateTarget, SWGasRateTarget, SWLiqRateTarget, SWResVRateTarget} {
		sw[i] = UnsetLimit
	}
	target := func(c schedule.Control) (float32, bool) {
		v, ok := w.Target(c)
		if !ok {
			return 0, false
		}
		d := c.Dimension(w.InjectorPhase)
		return float32(us.FromSI(d, udq.EvalWellUDA(v, w.Name, st, 0))), true
	}
	for c, slot := range rateTargetSlots {
		if v, ok := target(c); ok {
			sw[slot] = v
		}
	}
	if v, ok := target(schedule.ControlRATE); ok {
		switch w.InjectorPhase {
		case schedule.PhaseWater:
			sw[SWWatRateTarget] = v
		case schedule.PhaseGas:
			sw[SWGasRateTarget] = v
		default:
			sw[SWOilRateTarget] = v
		}
	}
	if v, ok := target(schedule.ControlBHP); ok {
		sw[SWBHPTarget] = v
	}
	if v, ok := target(schedule.ControlTHP); ok {
		sw[SWTHPTarget] = v
	}
	sw[SWDatumDepth] = float32(us.FromSI(units.Length, w.RefDepth))
	if w.GuideRate.Available {
		sw[SWGuideRate] = float32(w.GuideRate.Value)
	}
}

func dynamicXWel(xw []float64, w *schedule.Well, wells data.Wells, st *summary.State, us units.UnitSystem) {
	if sol, ok := wells.Get(w.Name); ok && w.IsOpen() {
		r := sol.Rates
		xw[XWOilPrRate] = us.FromSI(units.LiquidSurfaceRate, r.Oil)
		xw[XWWatPrRate] = us.FromSI(units.LiquidSurfaceRate, r.Water)
		xw[XWGasPrRate] = us.FromSI(units.GasSurfaceRate, r.Gas)
		xw[XWLiqPrRate] = us.FromSI(units.LiquidSurfaceRate, r.Liquid())
		xw[XWVoidPrRate] = us.FromSI(units.ReservoirRate, r.ResV)
		xw[XWFlowBHP] = us.FromSI(units.Pressure, sol.BHP)
		if liq := r.Liquid(); liq != 0 {
			xw[XWWatCut] = r.Water / liq
		}
		if r.Oil != 0 {
			xw[XWGORatio] = us.FromSI(units.GasOilRatio, r.Gas/r.Oil)
		}
	}
	for kw, slot := range map[string]int{
		"WOPT": XWOilPrTotal, "WWPT": XWWatPrTotal, "WGPT": XWGasPrTotal, "WVPT": XWVoidPrTotal,
		"WWIT": XWWatInjTotal, "WGIT": XWGasInjTotal,
	} {
		xw[slot] = st.GetOr(summary.WellKey(kw, w.Name), 0)
	}
}

// pad8 left-justifies s in an 8-character field, truncating longer names.
func pad8(s string) string {
	if len(s) >= 8 {
		return s[:8]
	}
	return s + blank[len(s):]
}
