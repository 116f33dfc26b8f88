package sim

import (
	"fmt"

	"github.com/resvsim/schedule-sim/sim/data"
	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/simerr"
	"github.com/resvsim/schedule-sim/sim/udq"
)

// TargetProducerRates is the default producer rate function. The well flows
// at the target of its active control; wells on pressure control report the
// pressure target and no rate.
func TargetProducerRates(wc WellContext) (data.Well, error) {
	w := wc.Well
	sol := data.Well{BHP: pressureTarget(wc, schedule.ControlBHP), THP: pressureTarget(wc, schedule.ControlTHP)}
	switch w.Control {
	case schedule.ControlGRUP:
		sol.Rates = phaseRates(wc.Group.Phase, wc.Group.Rate)
	case schedule.ControlRESV:
		v, err := rateTarget(wc)
		if err != nil {
			return data.Well{}, err
		}
		sol.Rates.ResV = v
	case schedule.ControlORAT, schedule.ControlWRAT, schedule.ControlGRAT, schedule.ControlLRAT:
		v, err := rateTarget(wc)
		if err != nil {
			return data.Well{}, err
		}
		sol.Rates = phaseRates(controlPhase[w.Control], v)
	}
	sol.Connections = spread(w, sol)
	return sol, nil
}

// TargetInjectorRates is the default injector rate function. RATE targets are
// resolved through the UDA chain and converted by the injected phase.
func TargetInjectorRates(wc WellContext) (data.Well, error) {
	w := wc.Well
	sol := data.Well{BHP: pressureTarget(wc, schedule.ControlBHP), THP: pressureTarget(wc, schedule.ControlTHP)}
	switch w.Control {
	case schedule.ControlGRUP:
		sol.Rates = phaseRates(wc.Group.Phase, -wc.Group.Rate)
	case schedule.ControlRESV:
		v, err := rateTarget(wc)
		if err != nil {
			return data.Well{}, err
		}
		sol.Rates.ResV = -v
	case schedule.ControlRATE:
		uda, ok := w.Target(schedule.ControlRATE)
		if !ok {
			return data.Well{}, fmt.Errorf("well %s: no RATE target: %w", w.Name, simerr.ErrNotFound)
		}
		v, err := udq.EvalWellUDARate(uda, w.Name, wc.Summary, 0, w.InjectorPhase, wc.Units)
		if err != nil {
			return data.Well{}, err
		}
		sol.Rates = phaseRates(w.InjectorPhase, -v)
	}
	sol.Connections = spread(w, sol)
	return sol, nil
}

func rateTarget(wc WellContext) (float64, error) {
	uda, ok := wc.Well.Target(wc.Well.Control)
	if !ok {
		return 0, fmt.Errorf("well %s: no %s target: %w", wc.Well.Name, wc.Well.Control, simerr.ErrNotFound)
	}
	return udq.EvalWellUDA(uda, wc.Well.Name, wc.Summary, 0), nil
}

func pressureTarget(wc WellContext, c schedule.Control) float64 {
	uda, ok := wc.Well.Target(c)
	if !ok {
		return 0
	}
	return udq.EvalWellUDA(uda, wc.Well.Name, wc.Summary, 0)
}

// phaseRates puts rate on the surface phase p; liquid counts as oil.
func phaseRates(p schedule.Phase, rate float64) data.Rates {
	switch p {
	case schedule.PhaseOil, schedule.PhaseLiquid:
		return data.Rates{Oil: rate}
	case schedule.PhaseWater:
		return data.Rates{Water: rate}
	case schedule.PhaseGas:
		return data.Rates{Gas: rate}
	default:
		return data.Rates{}
	}
}

// spread shares the well rates equally among its open connections.
func spread(w *schedule.Well, sol data.Well) []data.Connection {
	var open []int
	for i, c := range w.Connections {
		if c.IsOpen() {
			open = append(open, i)
		}
	}
	if len(open) == 0 {
		return nil
	}
	share := sol.Rates.Scale(1 / float64(len(open)))
	out := make([]data.Connection, 0, len(open))
	for _, i := range open {
		out = append(out, data.Connection{Index: i, Rates: share, Pressure: sol.BHP})
	}
	return out
}
