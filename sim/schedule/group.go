package schedule

import (
	"maps"
	"slices"
	"strings"
)

// FieldGroup is the root of every group tree.
const FieldGroup = "FIELD"

// GroupType is a set of flags describing whether a group is under production
// control, injection control, both or neither.
type GroupType uint8

const (
	GroupProduction GroupType = 1 << iota
	GroupInjection
)

// GroupNone and GroupMixed name the empty and full sets.
const (
	GroupNone  GroupType = 0
	GroupMixed           = GroupProduction | GroupInjection
)

// Union returns the set of flags in either g or o.
func (g GroupType) Union(o GroupType) GroupType { return g | o }

// Intersect returns the set of flags in both g and o.
func (g GroupType) Intersect(o GroupType) GroupType { return g & o }

// Has reports whether every flag of o is present in g.
func (g GroupType) Has(o GroupType) bool { return g&o == o }

// IsEmpty reports whether no flag is set.
func (g GroupType) IsEmpty() bool { return g == GroupNone }

func (g GroupType) String() string {
	var parts []string
	if g.Has(GroupProduction) {
		parts = append(parts, "PRODUCTION")
	}
	if g.Has(GroupInjection) {
		parts = append(parts, "INJECTION")
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}

// Group is an immutable snapshot of a group's configuration at one report step.
type Group struct {
	Name           string
	Parent         string
	ProdControl    Control
	ProdTargets    map[Control]UDAValue
	GuideRatePhase Phase
	InjPhase       Phase
	InjControl     Control
	InjTargets     map[Control]UDAValue
	Wells          []string
	Groups         []string
	InsertIndex    int
}

// Type derives the control flags from the configured controls.
func (g *Group) Type() GroupType {
	t := GroupNone
	if g.ProdControl != ControlNone {
		t = t.Union(GroupProduction)
	}
	if g.InjControl != ControlNone {
		t = t.Union(GroupInjection)
	}
	return t
}

// Clone returns a deep copy.
func (g *Group) Clone() *Group {
	c := *g
	c.ProdTargets = maps.Clone(g.ProdTargets)
	if c.ProdTargets == nil {
		c.ProdTargets = make(map[Control]UDAValue)
	}
	c.InjTargets = maps.Clone(g.InjTargets)
	if c.InjTargets == nil {
		c.InjTargets = make(map[Control]UDAValue)
	}
	c.Wells = slices.Clone(g.Wells)
	c.Groups = slices.Clone(g.Groups)
	return &c
}

// Equal compares two snapshots; nil equals only nil.
func (g *Group) Equal(o *Group) bool {
	if g == nil || o == nil {
		return g == o
	}
	return g.Name == o.Name &&
		g.Parent == o.Parent &&
		g.ProdControl == o.ProdControl &&
		maps.EqualFunc(g.ProdTargets, o.ProdTargets, UDAValue.Equal) &&
		g.GuideRatePhase == o.GuideRatePhase &&
		g.InjPhase == o.InjPhase &&
		g.InjControl == o.InjControl &&
		maps.EqualFunc(g.InjTargets, o.InjTargets, UDAValue.Equal) &&
		slices.Equal(g.Wells, o.Wells) &&
		slices.Equal(g.Groups, o.Groups) &&
		g.InsertIndex == o.InsertIndex
}

func groupEqual(a, b *Group) bool { return a.Equal(b) }
