package deck

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/resvsim/schedule-sim/sim/restart"
	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/units"
)

// Build validates the deck and assembles the schedule. Entries are applied
// step by step; within a step groups come first, then wells, well lists, UDQs,
// actions and events, each in deck order.
func (d *Deck) Build() (*schedule.Schedule, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	us, _ := units.Parse(d.Units)
	lengths := make([]float64, len(d.Steps))
	for i, l := range d.Steps {
		lengths[i] = us.ToSI(units.Time, l)
	}
	sched, err := schedule.NewSchedule(lengths, us)
	if err != nil {
		return nil, err
	}
	if d.MaxSubStep > 0 {
		if err := sched.UpdateMaxSubStep(0, us.ToSI(units.Time, d.MaxSubStep)); err != nil {
			return nil, err
		}
	}
	if d.UDQ.UndefinedValue != 0 {
		cfg := schedule.NewUDQConfig()
		cfg.UndefinedValue = d.UDQ.UndefinedValue
		if err := sched.UpdateUDQConfig(0, cfg); err != nil {
			return nil, err
		}
	}
	for step := 0; step < sched.Size(); step++ {
		for _, build := range []func(*schedule.Schedule, int) error{
			d.buildGroups, d.buildWells, d.buildWLists, d.buildUDQ, d.buildActions, d.buildEvents,
		} {
			if err := build(sched, step); err != nil {
				return nil, err
			}
		}
	}
	logrus.Debugf("deck: %d report steps, %d wells, %d groups",
		sched.NumReportSteps(), len(sched.AllWellNames()), len(sched.AllGroupNames()))
	return sched, nil
}

// RestartDims returns the grid size and declared capacities for the restart
// header.
func (d *Deck) RestartDims() restart.Dims {
	dims := restart.Dims{
		NX:             d.Grid.NX,
		NY:             d.Grid.NY,
		NZ:             d.Grid.NZ,
		NActive:        d.Grid.NActive,
		MaxWells:       d.Dims.MaxWells,
		MaxConnections: d.Dims.MaxConnections,
		MaxGroups:      d.Dims.MaxGroups,
		MaxGroupSize:   d.Dims.MaxGroupSize,
	}
	for _, p := range d.Phases {
		if ph, err := schedule.ParsePhase(p); err == nil {
			dims.Phases = append(dims.Phases, ph)
		}
	}
	return dims
}

func parseTargets(targets map[string]string, us units.UnitSystem, injPhase schedule.Phase) map[schedule.Control]schedule.UDAValue {
	out := make(map[schedule.Control]schedule.UDAValue, len(targets))
	for k, v := range targets {
		c, _ := schedule.ParseControl(k)
		out[c] = schedule.ParseUDA(strings.TrimSpace(v), us.Measure(c.Dimension(injPhase)))
	}
	return out
}

func (d *Deck) buildGroups(sched *schedule.Schedule, step int) error {
	us := sched.UnitSystem()
	for _, gs := range d.Groups {
		if gs.Step != step {
			continue
		}
		prod, _ := schedule.ParseControl(gs.ProdControl)
		inj, _ := schedule.ParseControl(gs.InjControl)
		guide, _ := schedule.ParsePhase(gs.GuidePhase)
		injPhase, _ := schedule.ParsePhase(gs.InjPhase)
		g := &schedule.Group{
			Name:           gs.Name,
			Parent:         gs.Parent,
			ProdControl:    prod,
			ProdTargets:    parseTargets(gs.ProdTargets, us, schedule.PhaseNone),
			GuideRatePhase: guide,
			InjPhase:       injPhase,
			InjControl:     inj,
			InjTargets:     parseTargets(gs.InjTargets, us, injPhase),
		}
		if sched.HasGroup(gs.Name, gs.Step) {
			if _, err := sched.UpdateGroup(gs.Step, g); err != nil {
				return fmt.Errorf("group %s: %w", gs.Name, err)
			}
			continue
		}
		if err := sched.AddGroup(gs.Step, g); err != nil {
			return fmt.Errorf("group %s: %w", gs.Name, err)
		}
	}
	return nil
}

func (d *Deck) buildWells(sched *schedule.Schedule, step int) error {
	us := sched.UnitSystem()
	for _, ws := range d.Wells {
		if ws.Step != step {
			continue
		}
		injPhase, _ := schedule.ParsePhase(ws.InjectorPhase)
		preferred, _ := schedule.ParsePhase(ws.PreferredPhase)
		ctrl, _ := schedule.ParseControl(ws.Control)
		status := schedule.StatusOpen
		if ws.Status != "" {
			status, _ = schedule.ParseWellStatus(ws.Status)
		}
		w := &schedule.Well{
			Name:           ws.Name,
			Group:          ws.Group,
			HeadI:          ws.HeadI - 1,
			HeadJ:          ws.HeadJ - 1,
			RefDepth:       us.ToSI(units.Length, ws.RefDepth),
			Type:           validWellTypes[strings.ToUpper(ws.Type)],
			InjectorPhase:  injPhase,
			PreferredPhase: preferred,
			Status:         status,
			Control:        ctrl,
			Targets:        parseTargets(ws.Targets, us, injPhase),
			VFPTable:       ws.VFPTable,
			AllowCrossFlow: ws.AllowCrossFlow,
		}
		if gr := ws.GuideRate; gr != nil {
			phase, _ := schedule.ParsePhase(gr.Phase)
			scaling := gr.Scaling
			if scaling == 0 {
				scaling = 1
			}
			w.GuideRate = schedule.GuideRate{Value: gr.Value, Phase: phase, Scaling: scaling, Available: true}
		}
		for _, cs := range ws.Connections {
			state, _ := schedule.ParseConnState(cs.State)
			dir, _ := schedule.ParseDirection(cs.Dir)
			w.Connections = append(w.Connections, schedule.Connection{
				I:            cs.I - 1,
				J:            cs.J - 1,
				K:            cs.K - 1,
				State:        state,
				Dir:          dir,
				CF:           us.ToSI(units.Transmissibility, cs.CF),
				Kh:           us.ToSI(units.EffectiveKH, cs.Kh),
				Diameter:     us.ToSI(units.Length, cs.Diameter),
				Depth:        us.ToSI(units.Length, cs.Depth),
				SkinFactor:   cs.Skin,
				ComplNum:     cs.ComplNum,
				Segment:      cs.Segment,
				SegDistStart: us.ToSI(units.Length, cs.SegDistStart),
				SegDistEnd:   us.ToSI(units.Length, cs.SegDistEnd),
			})
		}
		if w.Control == schedule.ControlGRUP && !w.GuideRate.Available {
			logrus.Warnf("well %s is under group control without a guide rate", w.Name)
		}
		if err := sched.AddWell(ws.Step, w); err != nil {
			return fmt.Errorf("well %s: %w", ws.Name, err)
		}
	}
	return nil
}

func (d *Deck) buildWLists(sched *schedule.Schedule, step int) error {
	for _, wl := range d.WLists {
		if wl.Step != step {
			continue
		}
		cur, err := sched.WellLists(wl.Step)
		if err != nil {
			return err
		}
		next := cur.Clone()
		next.Set(wl.Name, wl.Wells)
		if err := sched.UpdateWellLists(wl.Step, next); err != nil {
			return err
		}
	}
	return nil
}

func (d *Deck) buildUDQ(sched *schedule.Schedule, step int) error {
	cur, err := sched.UDQConfig(step)
	if err != nil {
		return err
	}
	next := cur.Clone()
	for _, def := range d.UDQ.Defines {
		if def.Step == step {
			next.AddDefine(def.Keyword, def.Expression, def.Unit)
		}
	}
	for _, a := range d.UDQ.Assigns {
		if a.Step == step {
			next.AddAssign(a.Keyword, a.Selector, a.Value, step)
		}
	}
	return sched.UpdateUDQConfig(step, next)
}

func (d *Deck) buildActions(sched *schedule.Schedule, step int) error {
	us := sched.UnitSystem()
	for _, as := range d.Actions {
		if as.Step != step {
			continue
		}
		x := &schedule.ActionX{
			Name:    as.Name,
			MaxRuns: 1,
			MinWait: us.ToSI(units.Time, as.MinWait),
			Step:    as.Step,
		}
		if as.MaxRuns != nil {
			x.MaxRuns = *as.MaxRuns
		}
		for _, c := range as.Conditions {
			x.Conditions = append(x.Conditions, schedule.Condition{
				Left: c.Left, Comparator: c.Op, Right: c.Right, Logic: strings.ToUpper(c.Logic),
			})
		}
		for _, e := range as.Effects {
			kind, _ := schedule.ParseEffectKind(e.Kind)
			eff := schedule.Effect{Kind: kind, Wells: e.Wells, Value: e.Value, ExitCode: e.ExitCode, Script: e.Script}
			if kind == schedule.EffectWellOpen {
				eff.Status, _ = schedule.ParseWellStatus(e.Status)
			}
			if kind == schedule.EffectWellTarget {
				eff.Control, _ = schedule.ParseControl(e.Control)
			}
			x.Effects = append(x.Effects, eff)
		}
		cur, err := sched.Actions(as.Step)
		if err != nil {
			return err
		}
		next := cur.Clone()
		next.Add(x)
		if err := sched.UpdateActions(as.Step, next); err != nil {
			return err
		}
	}
	return nil
}

func (d *Deck) buildEvents(sched *schedule.Schedule, step int) error {
	us := sched.UnitSystem()
	for _, ev := range d.Events {
		if ev.Step != step {
			continue
		}
		for _, ws := range ev.WellStatus {
			status, _ := schedule.ParseWellStatus(ws.Status)
			names, err := matchWells(sched, ws.Well, ev.Step)
			if err != nil {
				return fmt.Errorf("event at step %d: %w", ev.Step, err)
			}
			for _, n := range names {
				if _, err := sched.UpdateWellStatus(n, ev.Step, status); err != nil {
					return err
				}
			}
		}
		for _, wt := range ev.WellTargets {
			c, _ := schedule.ParseControl(wt.Control)
			names, err := matchWells(sched, wt.Well, ev.Step)
			if err != nil {
				return fmt.Errorf("event at step %d: %w", ev.Step, err)
			}
			for _, n := range names {
				w, err := sched.GetWell(n, ev.Step)
				if err != nil {
					return err
				}
				next := w.Clone()
				next.Targets[c] = schedule.ParseUDA(strings.TrimSpace(wt.Value), us.Measure(c.Dimension(w.InjectorPhase)))
				if _, err := sched.UpdateWell(ev.Step, next); err != nil {
					return err
				}
			}
		}
		if ev.MaxSubStep != nil {
			if err := sched.UpdateMaxSubStep(ev.Step, us.ToSI(units.Time, *ev.MaxSubStep)); err != nil {
				return err
			}
		}
	}
	return nil
}

func matchWells(sched *schedule.Schedule, pattern string, step int) ([]string, error) {
	names, err := sched.MatchWells(pattern, step)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no well matches %q at step %d", pattern, step)
	}
	return names, nil
}
