package sim

import (
	"fmt"

	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/simerr"
	"github.com/resvsim/schedule-sim/sim/summary"
	"github.com/resvsim/schedule-sim/sim/udq"
)

// Allocation is the part of a group rate target assigned to one well.
type Allocation struct {
	Rate  float64 // SI surface rate, positive
	Phase schedule.Phase
}

// IsZero reports whether no rate was allocated.
func (a Allocation) IsZero() bool { return a == Allocation{} }

// controlPhase maps a surface rate control to the phase it limits.
var controlPhase = map[schedule.Control]schedule.Phase{
	schedule.ControlORAT: schedule.PhaseOil,
	schedule.ControlWRAT: schedule.PhaseWater,
	schedule.ControlGRAT: schedule.PhaseGas,
	schedule.ControlLRAT: schedule.PhaseLiquid,
}

// DistributeGroupTargets splits the rate target of every group under surface
// rate control among the group's open wells on GRUP control, in proportion to
// their guide rates. Only wells attached directly to the group take part.
//
// A guide rate defined for another phase than the one the group controls is
// unsupported; guide rates summing to zero are a numerical error.
func DistributeGroupTargets(sched *schedule.Schedule, step int, st *summary.State) (map[string]Allocation, error) {
	out := make(map[string]Allocation)
	for _, name := range sched.GroupNames(step) {
		g, err := sched.GetGroup(name, step)
		if err != nil {
			return nil, err
		}
		if phase, ok := controlPhase[g.ProdControl]; ok {
			if target, ok := g.ProdTargets[g.ProdControl]; ok {
				rate := udq.EvalGroupUDA(target, g.Name, st, 0)
				if err := distribute(sched, step, g, rate, phase, (*schedule.Well).IsProducer, out); err != nil {
					return nil, err
				}
			}
		}
		if g.InjControl == schedule.ControlRATE {
			if target, ok := g.InjTargets[g.InjControl]; ok {
				rate := udq.EvalGroupUDA(target, g.Name, st, 0)
				injects := func(w *schedule.Well) bool {
					return w.IsInjector() && w.InjectorPhase == g.InjPhase
				}
				if err := distribute(sched, step, g, rate, g.InjPhase, injects, out); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

func distribute(sched *schedule.Schedule, step int, g *schedule.Group, rate float64, phase schedule.Phase,
	pick func(*schedule.Well) bool, out map[string]Allocation) error {
	var members []*schedule.Well
	for _, name := range g.Wells {
		w, err := sched.GetWell(name, step)
		if err != nil {
			return err
		}
		if w.Control == schedule.ControlGRUP && w.IsOpen() && pick(w) {
			members = append(members, w)
		}
	}
	if len(members) == 0 {
		return nil
	}
	if g.GuideRatePhase != schedule.PhaseNone && g.GuideRatePhase != phase {
		return fmt.Errorf("group %s: %s guide rates under %s control: %w",
			g.Name, g.GuideRatePhase, phase, simerr.ErrUnsupported)
	}
	sum := 0.0
	for _, w := range members {
		gr := w.GuideRate
		if !gr.Available {
			continue
		}
		if gr.Phase != schedule.PhaseNone && gr.Phase != phase {
			return fmt.Errorf("well %s: %s guide rate in group %s under %s control: %w",
				w.Name, gr.Phase, g.Name, phase, simerr.ErrUnsupported)
		}
		sum += gr.Value * gr.Scaling
	}
	if sum <= 0 {
		return fmt.Errorf("group %s: guide rates of %d wells sum to %g: %w",
			g.Name, len(members), sum, simerr.ErrNumerical)
	}
	for _, w := range members {
		share := 0.0
		if w.GuideRate.Available {
			share = w.GuideRate.Value * w.GuideRate.Scaling / sum
		}
		out[w.Name] = Allocation{Rate: rate * share, Phase: phase}
	}
	return nil
}
