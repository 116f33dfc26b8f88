// Package schedule holds the step-indexed model of wells, groups, UDQs and
// actions. Each entity owns a timeline of immutable snapshots; a change at a
// step stores a new snapshot and leaves earlier steps untouched.
//
// A schedule with N report steps owns timelines of N+1 slots. Slot 0 is the
// state before the first report step; report steps are numbered 1..N.
package schedule

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/resvsim/schedule-sim/sim/simerr"
	"github.com/resvsim/schedule-sim/sim/timeline"
	"github.com/resvsim/schedule-sim/sim/units"
)

// Schedule is the entity registry. Not safe for concurrent use.
type Schedule struct {
	us          units.UnitSystem
	stepLengths []float64 // seconds; stepLengths[0] is always 0
	startTimes  []float64

	wells      map[string]*timeline.Timeline[*Well]
	wellOrder  []string
	groups     map[string]*timeline.Timeline[*Group]
	groupOrder []string

	udq        *timeline.Timeline[*UDQConfig]
	actions    *timeline.Timeline[*Actions]
	wlists     *timeline.Timeline[*WListManager]
	maxSubStep *timeline.Timeline[float64]
}

// NewSchedule creates a schedule with one report step per entry of stepLengths
// (seconds). The FIELD group exists from slot 0.
func NewSchedule(stepLengths []float64, us units.UnitSystem) (*Schedule, error) {
	for i, l := range stepLengths {
		if l <= 0 {
			return nil, fmt.Errorf("report step %d has non-positive length %g: %w", i+1, l, simerr.ErrInvalidArgument)
		}
	}
	size := len(stepLengths) + 1
	s := &Schedule{
		us:          us,
		stepLengths: append([]float64{0}, stepLengths...),
		wells:       make(map[string]*timeline.Timeline[*Well]),
		groups:      make(map[string]*timeline.Timeline[*Group]),
		udq:         timeline.NewFunc(size, NewUDQConfig(), (*UDQConfig).Equal),
		actions:     timeline.NewFunc(size, NewActions(), (*Actions).Equal),
		wlists:      timeline.NewFunc(size, NewWListManager(), (*WListManager).Equal),
		maxSubStep:  timeline.New(size, 0.0),
	}
	s.startTimes = make([]float64, size)
	for i := 1; i < size; i++ {
		s.startTimes[i] = s.startTimes[i-1] + s.stepLengths[i]
	}
	if err := s.AddGroup(0, &Group{Name: FieldGroup}); err != nil {
		return nil, err
	}
	return s, nil
}

// Size returns the number of timeline slots (report steps + 1).
func (s *Schedule) Size() int { return len(s.stepLengths) }

// NumReportSteps returns N, the index of the last report step.
func (s *Schedule) NumReportSteps() int { return len(s.stepLengths) - 1 }

// UnitSystem returns the deck unit system.
func (s *Schedule) UnitSystem() units.UnitSystem { return s.us }

// StepLength returns the length of report step i in seconds.
func (s *Schedule) StepLength(i int) (float64, error) {
	if err := s.checkStep(i); err != nil {
		return 0, err
	}
	return s.stepLengths[i], nil
}

// StartTime returns the elapsed seconds at the beginning of report step i,
// which is also the end of step i-1. StartTime(Size()) is not defined; use EndTime.
func (s *Schedule) StartTime(i int) (float64, error) {
	if err := s.checkStep(i); err != nil {
		return 0, err
	}
	if i == 0 {
		return 0, nil
	}
	return s.startTimes[i-1], nil
}

// EndTime returns the elapsed seconds at the end of report step i.
func (s *Schedule) EndTime(i int) (float64, error) {
	if err := s.checkStep(i); err != nil {
		return 0, err
	}
	return s.startTimes[i], nil
}

func (s *Schedule) checkStep(i int) error {
	if i < 0 || i >= s.Size() {
		return fmt.Errorf("report step %d outside [0, %d]: %w", i, s.Size()-1, simerr.ErrNotFound)
	}
	return nil
}

// ---- wells ----

// AddWell stores a copy of w from step onwards, creating the well timeline on
// first use, and attaches the well to its group. The caller keeps w.
func (s *Schedule) AddWell(step int, w *Well) error {
	if err := s.checkStep(step); err != nil {
		return err
	}
	w = w.Clone()
	if w.Group == "" {
		w.Group = FieldGroup
	}
	tl, ok := s.wells[w.Name]
	prevGroup := ""
	if !ok {
		tl = timeline.NewFunc[*Well](s.Size(), nil, wellEqual)
		s.wells[w.Name] = tl
		w.InsertIndex = len(s.wellOrder)
		s.wellOrder = append(s.wellOrder, w.Name)
	} else {
		prev, _ := tl.At(step)
		if prev != nil {
			prevGroup = prev.Group
			w.InsertIndex = prev.InsertIndex
		} else if first := tl.FindIf(func(x *Well) bool { return x != nil }); first != timeline.NotFound {
			x, _ := tl.At(first)
			w.InsertIndex = x.InsertIndex
		}
	}
	if _, err := tl.Update(step, w); err != nil {
		return err
	}
	if prevGroup != w.Group {
		if prevGroup != "" {
			if err := s.detachWell(step, prevGroup, w.Name); err != nil {
				return err
			}
		}
		return s.attachWell(step, w.Group, w.Name)
	}
	return nil
}

// UpdateWell replaces the snapshot of an existing well from step onwards.
func (s *Schedule) UpdateWell(step int, w *Well) (bool, error) {
	if _, err := s.GetWell(w.Name, step); err != nil {
		return false, err
	}
	if err := s.AddWell(step, w); err != nil {
		return false, err
	}
	return true, nil
}

// HasWell reports whether name is defined at step.
func (s *Schedule) HasWell(name string, step int) bool {
	_, err := s.GetWell(name, step)
	return err == nil
}

// GetWell returns the snapshot of well name at step.
func (s *Schedule) GetWell(name string, step int) (*Well, error) {
	tl, ok := s.wells[name]
	if !ok {
		return nil, fmt.Errorf("well %q: %w", name, simerr.ErrNotFound)
	}
	w, err := tl.At(step)
	if err != nil {
		return nil, fmt.Errorf("well %q: %w", name, err)
	}
	if w == nil {
		return nil, fmt.Errorf("well %q not defined at step %d: %w", name, step, simerr.ErrNotFound)
	}
	return w, nil
}

// WellNames returns the wells defined at step, in insertion order.
func (s *Schedule) WellNames(step int) []string {
	var names []string
	for _, n := range s.wellOrder {
		if s.HasWell(n, step) {
			names = append(names, n)
		}
	}
	return names
}

// Wells returns the well snapshots defined at step, in insertion order.
func (s *Schedule) Wells(step int) []*Well {
	var out []*Well
	for _, n := range s.wellOrder {
		if w, err := s.GetWell(n, step); err == nil {
			out = append(out, w)
		}
	}
	return out
}

// AllWellNames returns every well ever defined, in insertion order.
func (s *Schedule) AllWellNames() []string { return slices.Clone(s.wellOrder) }

// WellTimeline exposes the snapshot history of a well.
func (s *Schedule) WellTimeline(name string) (*timeline.Timeline[*Well], error) {
	tl, ok := s.wells[name]
	if !ok {
		return nil, fmt.Errorf("well %q: %w", name, simerr.ErrNotFound)
	}
	return tl, nil
}

// UpdateWellStatus sets the status from step to the end of the schedule.
func (s *Schedule) UpdateWellStatus(name string, step int, status WellStatus) (bool, error) {
	w, err := s.GetWell(name, step)
	if err != nil {
		return false, err
	}
	if w.Status == status {
		return false, nil
	}
	next := w.Clone()
	next.Status = status
	return s.wells[name].Update(step, next)
}

// UpdateWellStatusEqual sets the status from step until the next already
// planned change of the well, which is preserved.
func (s *Schedule) UpdateWellStatusEqual(name string, step int, status WellStatus) (bool, error) {
	w, err := s.GetWell(name, step)
	if err != nil {
		return false, err
	}
	if w.Status == status {
		return false, nil
	}
	next := w.Clone()
	next.Status = status
	return true, s.wells[name].UpdateEqual(step, next)
}

// SetWellStatusRange sets the status on exactly the steps [from, to), keeping
// every other field of each step's own snapshot.
func (s *Schedule) SetWellStatusRange(name string, from, to int, status WellStatus) error {
	if from >= to || from < 0 || to > s.Size() {
		return fmt.Errorf("status range [%d, %d) for well %q: %w", from, to, name, simerr.ErrInvalidArgument)
	}
	for i := from; i < to; i++ {
		w, err := s.GetWell(name, i)
		if err != nil {
			return err
		}
		if w.Status == status {
			continue
		}
		next := w.Clone()
		next.Status = status
		if err := s.wells[name].UpdateElm(i, next); err != nil {
			return err
		}
	}
	return nil
}

// UpdateWellTarget changes one control target from step until the next planned
// change. The active control mode is left as is.
func (s *Schedule) UpdateWellTarget(name string, step int, c Control, v UDAValue) (bool, error) {
	w, err := s.GetWell(name, step)
	if err != nil {
		return false, err
	}
	if cur, ok := w.Targets[c]; ok && cur.Equal(v) {
		return false, nil
	}
	next := w.Clone()
	next.Targets[c] = v
	return true, s.wells[name].UpdateEqual(step, next)
}

// MatchWells resolves a well selector at step: an exact name, a glob pattern
// (P*), or a well list (*LIST). Results follow insertion order.
func (s *Schedule) MatchWells(pattern string, step int) ([]string, error) {
	if strings.HasPrefix(pattern, "*") && len(pattern) > 1 {
		wl, err := s.WellLists(step)
		if err != nil {
			return nil, err
		}
		if members, ok := wl.Get(pattern); ok {
			return slices.Clone(members), nil
		}
	}
	var out []string
	for _, n := range s.WellNames(step) {
		ok, err := path.Match(pattern, n)
		if err != nil {
			return nil, fmt.Errorf("well pattern %q: %w", pattern, simerr.ErrInvalidArgument)
		}
		if ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// ---- groups ----

// AddGroup stores a copy of g from step onwards and links it under its parent.
func (s *Schedule) AddGroup(step int, g *Group) error {
	if err := s.checkStep(step); err != nil {
		return err
	}
	g = g.Clone()
	if g.Name != FieldGroup && g.Parent == "" {
		g.Parent = FieldGroup
	}
	tl, ok := s.groups[g.Name]
	prevParent := ""
	if !ok {
		tl = timeline.NewFunc[*Group](s.Size(), nil, groupEqual)
		s.groups[g.Name] = tl
		g.InsertIndex = len(s.groupOrder)
		s.groupOrder = append(s.groupOrder, g.Name)
	} else if prev, _ := tl.At(step); prev != nil {
		prevParent = prev.Parent
		g.InsertIndex = prev.InsertIndex
		// children are owned by the registry, not the caller
		g.Wells = prev.Wells
		g.Groups = prev.Groups
	}
	if _, err := tl.Update(step, g); err != nil {
		return err
	}
	if g.Parent != "" && g.Parent != prevParent {
		if prevParent != "" {
			if err := s.editGroupChildren(step, prevParent, func(c *Group) { c.Groups = remove(c.Groups, g.Name) }); err != nil {
				return err
			}
		}
		return s.editGroupChildren(step, g.Parent, func(c *Group) {
			if !slices.Contains(c.Groups, g.Name) {
				c.Groups = append(c.Groups, g.Name)
			}
		})
	}
	return nil
}

// UpdateGroup replaces the configuration of an existing group from step
// onwards. The child lists are kept.
func (s *Schedule) UpdateGroup(step int, g *Group) (bool, error) {
	if _, err := s.GetGroup(g.Name, step); err != nil {
		return false, err
	}
	if err := s.AddGroup(step, g); err != nil {
		return false, err
	}
	return true, nil
}

// GetGroup returns the snapshot of group name at step.
func (s *Schedule) GetGroup(name string, step int) (*Group, error) {
	tl, ok := s.groups[name]
	if !ok {
		return nil, fmt.Errorf("group %q: %w", name, simerr.ErrNotFound)
	}
	g, err := tl.At(step)
	if err != nil {
		return nil, fmt.Errorf("group %q: %w", name, err)
	}
	if g == nil {
		return nil, fmt.Errorf("group %q not defined at step %d: %w", name, step, simerr.ErrNotFound)
	}
	return g, nil
}

// HasGroup reports whether name is defined at step.
func (s *Schedule) HasGroup(name string, step int) bool {
	_, err := s.GetGroup(name, step)
	return err == nil
}

// GroupNames returns the groups defined at step, FIELD first.
func (s *Schedule) GroupNames(step int) []string {
	var names []string
	for _, n := range s.groupOrder {
		if s.HasGroup(n, step) {
			names = append(names, n)
		}
	}
	return names
}

// AllGroupNames returns every group ever defined, in insertion order.
func (s *Schedule) AllGroupNames() []string { return slices.Clone(s.groupOrder) }

// GroupWells returns every well below group at step, depth first.
func (s *Schedule) GroupWells(name string, step int) ([]string, error) {
	g, err := s.GetGroup(name, step)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(g.Wells)
	for _, child := range g.Groups {
		w, err := s.GroupWells(child, step)
		if err != nil {
			return nil, err
		}
		out = append(out, w...)
	}
	return out, nil
}

func (s *Schedule) attachWell(step int, group, well string) error {
	return s.editGroupChildren(step, group, func(g *Group) {
		if !slices.Contains(g.Wells, well) {
			g.Wells = append(g.Wells, well)
		}
	})
}

func (s *Schedule) detachWell(step int, group, well string) error {
	return s.editGroupChildren(step, group, func(g *Group) { g.Wells = remove(g.Wells, well) })
}

func (s *Schedule) editGroupChildren(step int, name string, edit func(*Group)) error {
	g, err := s.GetGroup(name, step)
	if err != nil {
		return err
	}
	next := g.Clone()
	edit(next)
	_, err = s.groups[name].Update(step, next)
	return err
}

func remove(list []string, name string) []string {
	return slices.DeleteFunc(slices.Clone(list), func(x string) bool { return x == name })
}

// ---- per-step configuration ----

// UDQConfig returns the UDQ configuration at step.
func (s *Schedule) UDQConfig(step int) (*UDQConfig, error) { return s.udq.At(step) }

// UpdateUDQConfig stores cfg from step onwards.
func (s *Schedule) UpdateUDQConfig(step int, cfg *UDQConfig) error {
	_, err := s.udq.Update(step, cfg)
	return err
}

// Actions returns the actions known at step.
func (s *Schedule) Actions(step int) (*Actions, error) { return s.actions.At(step) }

// UpdateActions stores the action set from step onwards.
func (s *Schedule) UpdateActions(step int, a *Actions) error {
	_, err := s.actions.Update(step, a)
	return err
}

// WellLists returns the well list manager at step.
func (s *Schedule) WellLists(step int) (*WListManager, error) { return s.wlists.At(step) }

// UpdateWellLists stores the well lists from step onwards.
func (s *Schedule) UpdateWellLists(step int, m *WListManager) error {
	_, err := s.wlists.Update(step, m)
	return err
}

// MaxSubStep returns the maximum sub-step length (seconds) at step; 0 means no limit.
func (s *Schedule) MaxSubStep(step int) (float64, error) { return s.maxSubStep.At(step) }

// UpdateMaxSubStep stores the sub-step length limit from step onwards.
func (s *Schedule) UpdateMaxSubStep(step int, seconds float64) error {
	if seconds < 0 {
		return fmt.Errorf("negative sub-step limit %g: %w", seconds, simerr.ErrInvalidArgument)
	}
	_, err := s.maxSubStep.Update(step, seconds)
	return err
}
