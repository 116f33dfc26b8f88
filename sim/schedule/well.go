package schedule

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/resvsim/schedule-sim/sim/units"
)

// WellType distinguishes producers from injectors.
type WellType int

const (
	Producer WellType = iota + 1
	Injector
)

// Phase is the injected phase of an injector or the phase a guide rate refers to.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseOil
	PhaseWater
	PhaseGas
	PhaseLiquid
	PhaseMulti
)

var phaseNames = map[string]Phase{
	"": PhaseNone, "OIL": PhaseOil, "WATER": PhaseWater, "WAT": PhaseWater,
	"GAS": PhaseGas, "LIQ": PhaseLiquid, "LIQUID": PhaseLiquid, "MULTI": PhaseMulti,
}

// ParsePhase maps a deck phase name to a Phase.
func ParsePhase(s string) (Phase, error) {
	if p, ok := phaseNames[strings.ToUpper(s)]; ok {
		return p, nil
	}
	return PhaseNone, fmt.Errorf("unknown phase %q; valid: OIL, WATER, GAS, LIQ, MULTI", s)
}

func (p Phase) String() string {
	switch p {
	case PhaseOil:
		return "OIL"
	case PhaseWater:
		return "WATER"
	case PhaseGas:
		return "GAS"
	case PhaseLiquid:
		return "LIQ"
	case PhaseMulti:
		return "MULTI"
	default:
		return "NONE"
	}
}

// WellStatus is the operating status of a well.
type WellStatus int

const (
	StatusOpen WellStatus = iota + 1
	StatusStop
	StatusShut
	StatusAuto
)

var statusNames = map[string]WellStatus{
	"OPEN": StatusOpen, "STOP": StatusStop, "SHUT": StatusShut, "AUTO": StatusAuto,
}

// ParseWellStatus maps a deck status keyword to a WellStatus.
func ParseWellStatus(s string) (WellStatus, error) {
	if st, ok := statusNames[strings.ToUpper(s)]; ok {
		return st, nil
	}
	return 0, fmt.Errorf("unknown well status %q; valid: OPEN, STOP, SHUT, AUTO", s)
}

func (s WellStatus) String() string {
	switch s {
	case StatusOpen:
		return "OPEN"
	case StatusStop:
		return "STOP"
	case StatusShut:
		return "SHUT"
	case StatusAuto:
		return "AUTO"
	default:
		return "UNKNOWN"
	}
}

// Control is a production or injection control mode.
type Control string

const (
	ControlNone Control = ""
	ControlORAT Control = "ORAT"
	ControlWRAT Control = "WRAT"
	ControlGRAT Control = "GRAT"
	ControlLRAT Control = "LRAT"
	ControlRESV Control = "RESV"
	ControlBHP  Control = "BHP"
	ControlTHP  Control = "THP"
	ControlRATE Control = "RATE"
	ControlGRUP Control = "GRUP"
)

var validControls = map[Control]bool{
	ControlORAT: true, ControlWRAT: true, ControlGRAT: true, ControlLRAT: true,
	ControlRESV: true, ControlBHP: true, ControlTHP: true, ControlRATE: true, ControlGRUP: true,
}

// ParseControl maps a deck control keyword to a Control.
func ParseControl(s string) (Control, error) {
	c := Control(strings.ToUpper(s))
	if c == ControlNone || validControls[c] {
		return c, nil
	}
	return ControlNone, fmt.Errorf("unknown control mode %q", s)
}

// Dimension returns the physical quantity a target of control c is measured
// in. RATE depends on the injected phase.
func (c Control) Dimension(injPhase Phase) units.Dimension {
	switch c {
	case ControlORAT, ControlWRAT, ControlLRAT:
		return units.LiquidSurfaceRate
	case ControlGRAT:
		return units.GasSurfaceRate
	case ControlRESV:
		return units.ReservoirRate
	case ControlBHP, ControlTHP:
		return units.Pressure
	case ControlRATE:
		if injPhase == PhaseGas {
			return units.GasSurfaceRate
		}
		return units.LiquidSurfaceRate
	default:
		return units.Identity
	}
}

// GuideRate holds the well guide-rate definition (WGRUPCON).
type GuideRate struct {
	Value     float64
	Phase     Phase
	Scaling   float64
	Available bool
}

// Well is an immutable snapshot of a well's configuration at one report step.
// Mutate through Clone.
type Well struct {
	Name           string
	Group          string
	HeadI, HeadJ   int
	RefDepth       float64 // SI
	Type           WellType
	InjectorPhase  Phase
	PreferredPhase Phase
	Status         WellStatus
	Control        Control
	Targets        map[Control]UDAValue
	GuideRate      GuideRate
	VFPTable       int
	AllowCrossFlow bool
	Connections    []Connection
	InsertIndex    int
}

// IsProducer reports whether the well produces.
func (w *Well) IsProducer() bool { return w.Type == Producer }

// IsInjector reports whether the well injects.
func (w *Well) IsInjector() bool { return w.Type == Injector }

// IsOpen reports whether the well is flowing.
func (w *Well) IsOpen() bool { return w.Status == StatusOpen || w.Status == StatusAuto }

// Target returns the control target for c and whether it is set.
func (w *Well) Target(c Control) (UDAValue, bool) {
	v, ok := w.Targets[c]
	return v, ok
}

// Clone returns a deep copy that may be modified and stored as a new snapshot.
func (w *Well) Clone() *Well {
	c := *w
	c.Targets = maps.Clone(w.Targets)
	if c.Targets == nil {
		c.Targets = make(map[Control]UDAValue)
	}
	c.Connections = slices.Clone(w.Connections)
	return &c
}

// Equal compares two snapshots field by field; nil equals only nil.
func (w *Well) Equal(o *Well) bool {
	if w == nil || o == nil {
		return w == o
	}
	return w.Name == o.Name &&
		w.Group == o.Group &&
		w.HeadI == o.HeadI && w.HeadJ == o.HeadJ &&
		w.RefDepth == o.RefDepth &&
		w.Type == o.Type &&
		w.InjectorPhase == o.InjectorPhase &&
		w.PreferredPhase == o.PreferredPhase &&
		w.Status == o.Status &&
		w.Control == o.Control &&
		maps.EqualFunc(w.Targets, o.Targets, UDAValue.Equal) &&
		w.GuideRate == o.GuideRate &&
		w.VFPTable == o.VFPTable &&
		w.AllowCrossFlow == o.AllowCrossFlow &&
		slices.Equal(w.Connections, o.Connections) &&
		w.InsertIndex == o.InsertIndex
}

func wellEqual(a, b *Well) bool { return a.Equal(b) }
