package deck

import (
	"fmt"
	"math"
	"strings"

	"github.com/resvsim/schedule-sim/sim/action"
	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/udq"
	"github.com/resvsim/schedule-sim/sim/units"
)

var (
	validWellTypes = map[string]schedule.WellType{
		"PRODUCER": schedule.Producer, "PROD": schedule.Producer,
		"INJECTOR": schedule.Injector, "INJ": schedule.Injector,
	}
	validPhases = map[string]bool{"OIL": true, "WATER": true, "WAT": true, "GAS": true}
	validLogic  = map[string]bool{"": true, "AND": true, "OR": true}
	// UDQs over other entity classes parse but cannot be evaluated.
	evaluableUDQs = map[schedule.UDQVarType]bool{
		schedule.UDQField: true, schedule.UDQWell: true, schedule.UDQGroup: true,
	}
)

// maxNameLength is the width of restart name fields.
const maxNameLength = 8

// Validate checks names, codes and step indices of the deck. It does not
// build the schedule; entity references across steps are checked by Build.
func (d *Deck) Validate() error {
	if _, err := units.Parse(d.Units); err != nil {
		return err
	}
	if len(d.Steps) == 0 {
		return fmt.Errorf("steps: at least one report step required")
	}
	for i, l := range d.Steps {
		if err := validateFinitePositive(fmt.Sprintf("steps[%d]", i), l); err != nil {
			return err
		}
	}
	n := len(d.Steps)
	for _, p := range d.Phases {
		if !validPhases[strings.ToUpper(p)] {
			return fmt.Errorf("phases: unknown phase %q; valid: OIL, WATER, GAS", p)
		}
	}
	if d.Grid.NX < 0 || d.Grid.NY < 0 || d.Grid.NZ < 0 || d.Grid.NActive < 0 {
		return fmt.Errorf("grid: dimensions must be non-negative")
	}
	if d.Dims.MaxWells < 0 || d.Dims.MaxConnections < 0 || d.Dims.MaxGroups < 0 || d.Dims.MaxGroupSize < 0 {
		return fmt.Errorf("dims: capacities must be non-negative")
	}
	if d.MaxSubStep < 0 || math.IsNaN(d.MaxSubStep) {
		return fmt.Errorf("max_sub_step must be non-negative, got %f", d.MaxSubStep)
	}

	groups := map[string]bool{schedule.FieldGroup: true}
	for i, g := range d.Groups {
		if err := validateGroup(&g, i, n); err != nil {
			return err
		}
		groups[g.Name] = true
	}
	wells := make(map[string]bool)
	for i, w := range d.Wells {
		if err := validateWell(&w, i, n); err != nil {
			return err
		}
		if w.Group != "" && !groups[w.Group] {
			return fmt.Errorf("wells[%d]: unknown group %q", i, w.Group)
		}
		wells[w.Name] = true
	}
	for i, wl := range d.WLists {
		if !strings.HasPrefix(wl.Name, "*") || len(wl.Name) < 2 {
			return fmt.Errorf("wlists[%d]: list name %q must start with '*'", i, wl.Name)
		}
		if err := validateStep(fmt.Sprintf("wlists[%d]", i), wl.Step, n); err != nil {
			return err
		}
		for _, w := range wl.Wells {
			if !wells[w] {
				return fmt.Errorf("wlists[%d]: unknown well %q", i, w)
			}
		}
	}
	if err := d.validateUDQ(n); err != nil {
		return err
	}
	for i, a := range d.Actions {
		if err := validateAction(&a, i, n); err != nil {
			return err
		}
	}
	for i, e := range d.Events {
		if err := validateEvent(&e, i, n); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(prefix string, step, n int) error {
	if step < 0 || step > n {
		return fmt.Errorf("%s: step %d outside [0, %d]", prefix, step, n)
	}
	return nil
}

func validateName(prefix, name string) error {
	if name == "" {
		return fmt.Errorf("%s: name required", prefix)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%s: name %q longer than %d characters", prefix, name, maxNameLength)
	}
	return nil
}

func validateTargets(prefix string, targets map[string]string) error {
	for c, v := range targets {
		ctrl, err := schedule.ParseControl(c)
		if err != nil || ctrl == schedule.ControlNone || ctrl == schedule.ControlGRUP {
			return fmt.Errorf("%s: unknown target control %q", prefix, c)
		}
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s: empty value for target %s", prefix, c)
		}
	}
	return nil
}

func validateGroup(g *GroupSpec, idx, n int) error {
	prefix := fmt.Sprintf("groups[%d]", idx)
	if err := validateName(prefix, g.Name); err != nil {
		return err
	}
	if err := validateStep(prefix, g.Step, n); err != nil {
		return err
	}
	if g.Name == schedule.FieldGroup && g.Parent != "" {
		return fmt.Errorf("%s: FIELD cannot have a parent", prefix)
	}
	for _, c := range []string{g.ProdControl, g.InjControl} {
		if _, err := schedule.ParseControl(c); err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
	}
	for _, p := range []string{g.GuidePhase, g.InjPhase} {
		if _, err := schedule.ParsePhase(p); err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
	}
	if err := validateTargets(prefix+".prod_targets", g.ProdTargets); err != nil {
		return err
	}
	return validateTargets(prefix+".inj_targets", g.InjTargets)
}

func validateWell(w *WellSpec, idx, n int) error {
	prefix := fmt.Sprintf("wells[%d]", idx)
	if err := validateName(prefix, w.Name); err != nil {
		return err
	}
	if err := validateStep(prefix, w.Step, n); err != nil {
		return err
	}
	typ, ok := validWellTypes[strings.ToUpper(w.Type)]
	if !ok {
		return fmt.Errorf("%s: unknown well type %q; valid: PRODUCER, INJECTOR", prefix, w.Type)
	}
	phase, err := schedule.ParsePhase(w.InjectorPhase)
	if err != nil {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	if typ == schedule.Injector && phase == schedule.PhaseNone {
		return fmt.Errorf("%s: injector requires injector_phase", prefix)
	}
	if _, err := schedule.ParsePhase(w.PreferredPhase); err != nil {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	if w.Status != "" {
		if _, err := schedule.ParseWellStatus(w.Status); err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
	}
	if _, err := schedule.ParseControl(w.Control); err != nil {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	if w.HeadI < 1 || w.HeadJ < 1 {
		return fmt.Errorf("%s: head_i and head_j are 1-based, got (%d, %d)", prefix, w.HeadI, w.HeadJ)
	}
	if err := validateTargets(prefix+".targets", w.Targets); err != nil {
		return err
	}
	if w.GuideRate != nil {
		if _, err := schedule.ParsePhase(w.GuideRate.Phase); err != nil {
			return fmt.Errorf("%s.guide_rate: %w", prefix, err)
		}
		if w.GuideRate.Value < 0 {
			return fmt.Errorf("%s.guide_rate: value must be non-negative, got %f", prefix, w.GuideRate.Value)
		}
	}
	for ci, c := range w.Connections {
		cp := fmt.Sprintf("%s.connections[%d]", prefix, ci)
		if c.I < 1 || c.J < 1 || c.K < 1 {
			return fmt.Errorf("%s: cell indices are 1-based, got (%d, %d, %d)", cp, c.I, c.J, c.K)
		}
		if _, err := schedule.ParseConnState(c.State); err != nil {
			return fmt.Errorf("%s: %w", cp, err)
		}
		if _, err := schedule.ParseDirection(c.Dir); err != nil {
			return fmt.Errorf("%s: %w", cp, err)
		}
		if c.CF < 0 || c.Kh < 0 || c.Diameter < 0 {
			return fmt.Errorf("%s: cf, kh and diameter must be non-negative", cp)
		}
	}
	return nil
}

func (d *Deck) validateUDQ(n int) error {
	for i, def := range d.UDQ.Defines {
		prefix := fmt.Sprintf("udq.defines[%d]", i)
		if err := validateName(prefix, def.Keyword); err != nil {
			return err
		}
		if !evaluableUDQs[schedule.VarTypeOf(def.Keyword)] {
			return fmt.Errorf("%s: %s UDQ %q cannot be evaluated; use a F, W or G prefix",
				prefix, schedule.VarTypeOf(def.Keyword), def.Keyword)
		}
		if err := validateStep(prefix, def.Step, n); err != nil {
			return err
		}
		if _, err := udq.Parse(def.Expression); err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
	}
	for i, a := range d.UDQ.Assigns {
		prefix := fmt.Sprintf("udq.assigns[%d]", i)
		if err := validateName(prefix, a.Keyword); err != nil {
			return err
		}
		if !evaluableUDQs[schedule.VarTypeOf(a.Keyword)] {
			return fmt.Errorf("%s: %s UDQ %q cannot be assigned", prefix, schedule.VarTypeOf(a.Keyword), a.Keyword)
		}
		if err := validateStep(prefix, a.Step, n); err != nil {
			return err
		}
	}
	return nil
}

func validateAction(a *ActionSpec, idx, n int) error {
	prefix := fmt.Sprintf("actions[%d]", idx)
	if a.Name == "" {
		return fmt.Errorf("%s: name required", prefix)
	}
	if err := validateStep(prefix, a.Step, n); err != nil {
		return err
	}
	if a.MaxRuns != nil && *a.MaxRuns < 0 {
		return fmt.Errorf("%s: max_runs must be non-negative, got %d", prefix, *a.MaxRuns)
	}
	if a.MinWait < 0 {
		return fmt.Errorf("%s: min_wait must be non-negative, got %f", prefix, a.MinWait)
	}
	if len(a.Conditions) == 0 {
		return fmt.Errorf("%s: at least one condition required", prefix)
	}
	for ci, c := range a.Conditions {
		cp := fmt.Sprintf("%s.conditions[%d]", prefix, ci)
		if !action.ValidComparator(c.Op) {
			return fmt.Errorf("%s: unknown comparator %q; valid: >, <, >=, <=, =, !=", cp, c.Op)
		}
		if !validLogic[strings.ToUpper(c.Logic)] {
			return fmt.Errorf("%s: unknown logic %q; valid: AND, OR", cp, c.Logic)
		}
		for _, side := range []string{c.Left, c.Right} {
			if _, err := udq.Parse(side); err != nil {
				return fmt.Errorf("%s: %w", cp, err)
			}
		}
	}
	for ei, e := range a.Effects {
		ep := fmt.Sprintf("%s.effects[%d]", prefix, ei)
		kind, err := schedule.ParseEffectKind(e.Kind)
		if err != nil {
			return fmt.Errorf("%s: %w", ep, err)
		}
		switch kind {
		case schedule.EffectWellOpen:
			if _, err := schedule.ParseWellStatus(e.Status); err != nil {
				return fmt.Errorf("%s: %w", ep, err)
			}
		case schedule.EffectWellTarget:
			c, err := schedule.ParseControl(e.Control)
			if err != nil || c == schedule.ControlNone {
				return fmt.Errorf("%s: WELTARG needs a control, got %q", ep, e.Control)
			}
		case schedule.EffectScript:
			if e.Script == "" {
				return fmt.Errorf("%s: SCRIPT needs a script", ep)
			}
		}
	}
	return nil
}

func validateEvent(e *EventSpec, idx, n int) error {
	prefix := fmt.Sprintf("events[%d]", idx)
	if e.Step < 1 || e.Step > n {
		return fmt.Errorf("%s: step %d outside [1, %d]", prefix, e.Step, n)
	}
	for _, ws := range e.WellStatus {
		if _, err := schedule.ParseWellStatus(ws.Status); err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
	}
	for _, wt := range e.WellTargets {
		c, err := schedule.ParseControl(wt.Control)
		if err != nil || c == schedule.ControlNone || c == schedule.ControlGRUP {
			return fmt.Errorf("%s: unknown target control %q", prefix, wt.Control)
		}
	}
	if e.MaxSubStep != nil && *e.MaxSubStep < 0 {
		return fmt.Errorf("%s: max_sub_step must be non-negative, got %f", prefix, *e.MaxSubStep)
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}
