package schedule

import (
	"fmt"
	"slices"
	"strings"
)

// EffectKind is a schedule mutation an action can trigger.
type EffectKind string

const (
	EffectWellOpen   EffectKind = "WELOPEN"
	EffectWellTarget EffectKind = "WELTARG"
	EffectExit       EffectKind = "EXIT"
	EffectScript     EffectKind = "SCRIPT"
)

var validEffects = map[EffectKind]bool{
	EffectWellOpen: true, EffectWellTarget: true, EffectExit: true, EffectScript: true,
}

// ParseEffectKind validates an effect keyword.
func ParseEffectKind(s string) (EffectKind, error) {
	k := EffectKind(strings.ToUpper(s))
	if !validEffects[k] {
		return "", fmt.Errorf("unknown action effect %q; valid: WELOPEN, WELTARG, EXIT, SCRIPT", s)
	}
	return k, nil
}

// MatchedWells is the well selector standing for the wells that satisfied the condition.
const MatchedWells = "?"

// Condition is one comparison of an action. Left and Right are UDQ expressions;
// Logic joins it to the next condition ("AND", "OR" or empty for the last one).
type Condition struct {
	Left       string
	Comparator string
	Right      string
	Logic      string
}

// Effect is one schedule mutation applied when an action fires.
type Effect struct {
	Kind     EffectKind
	Wells    []string
	Status   WellStatus
	Control  Control
	Value    float64
	ExitCode int
	Script   string
}

func (e Effect) equal(o Effect) bool {
	return e.Kind == o.Kind && slices.Equal(e.Wells, o.Wells) && e.Status == o.Status &&
		e.Control == o.Control && e.Value == o.Value && e.ExitCode == o.ExitCode && e.Script == o.Script
}

// ActionX is a conditional block of schedule mutations.
type ActionX struct {
	Name       string
	MaxRuns    int
	MinWait    float64 // seconds between runs
	Conditions []Condition
	Effects    []Effect
	Step       int // report step the action was entered at
}

func (a *ActionX) equal(o *ActionX) bool {
	return a.Name == o.Name && a.MaxRuns == o.MaxRuns && a.MinWait == o.MinWait &&
		slices.Equal(a.Conditions, o.Conditions) &&
		slices.EqualFunc(a.Effects, o.Effects, Effect.equal) &&
		a.Step == o.Step
}

// Actions is the set of actions known at a report step.
type Actions struct {
	list []*ActionX
}

// NewActions returns an empty set.
func NewActions() *Actions { return &Actions{} }

// Add registers an action, replacing one with the same name.
func (a *Actions) Add(x *ActionX) {
	for i, cur := range a.list {
		if cur.Name == x.Name {
			a.list[i] = x
			return
		}
	}
	a.list = append(a.list, x)
}

// All returns the actions in definition order.
func (a *Actions) All() []*ActionX {
	if a == nil {
		return nil
	}
	return a.list
}

// Len returns the number of actions.
func (a *Actions) Len() int { return len(a.All()) }

// Clone returns a shallow copy of the set; ActionX values are immutable once added.
func (a *Actions) Clone() *Actions {
	if a == nil {
		return NewActions()
	}
	return &Actions{list: slices.Clone(a.list)}
}

// Equal compares two action sets.
func (a *Actions) Equal(o *Actions) bool {
	if a == nil || o == nil {
		return a == o
	}
	return slices.EqualFunc(a.list, o.list, (*ActionX).equal)
}
