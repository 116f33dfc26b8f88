package restart

import (
	"fmt"

	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/simerr"
	"github.com/resvsim/schedule-sim/sim/units"
)

// Dims are the declared capacities and grid size. Zero capacities are derived
// from the schedule.
type Dims struct {
	NX, NY, NZ int
	NActive    int
	// MaxWells bounds NWELLS, MaxConnections NCWMAX, MaxGroups NGMAXZ (FIELD
	// included) and MaxGroupSize NWGMAX.
	MaxWells       int
	MaxConnections int
	MaxGroups      int
	MaxGroupSize   int
	Phases         []schedule.Phase
}

// Header holds the capacities and strides of one restart step.
type Header struct {
	Step       int
	Units      units.Kind
	NX, NY, NZ int
	NActive    int
	PhaseMask  int32

	NWells int // NWELLS
	NCWMax int // NCWMAX, true max connections per well over the run
	NWGMax int // NWGMAX
	NGMaxZ int // NGMAXZ, FIELD included

	NWellUDQs, NGroupUDQs, NFieldUDQs int

	Elapsed    float64 // seconds
	StepLength float64
	MaxSubStep float64
}

// NIGRPZ is the IGRP stride.
func (h Header) NIGRPZ() int { return nigrpzBase + h.NWGMax }

// FieldWindow returns the IGRP/SGRP/XGRP/ZGRP window of FIELD (the last one).
func (h Header) FieldWindow() int { return h.NGMaxZ - 1 }

// NewHeader derives capacities for report step step. Declared capacities
// smaller than what the schedule needs at step are an error.
func NewHeader(sched *schedule.Schedule, step int, dims Dims) (Header, error) {
	elapsed, err := sched.EndTime(step)
	if err != nil {
		return Header{}, err
	}
	length, err := sched.StepLength(step)
	if err != nil {
		return Header{}, err
	}
	maxSub, err := sched.MaxSubStep(step)
	if err != nil {
		return Header{}, err
	}
	h := Header{
		Step:       step,
		Units:      sched.UnitSystem().Kind(),
		NX:         dims.NX,
		NY:         dims.NY,
		NZ:         dims.NZ,
		NActive:    dims.NActive,
		PhaseMask:  phaseMask(dims.Phases),
		Elapsed:    elapsed,
		StepLength: length,
		MaxSubStep: maxSub,
	}
	if h.NActive == 0 {
		h.NActive = h.NX * h.NY * h.NZ
	}

	need := requiredCapacity(sched)
	h.NWells, err = capacity("wells", dims.MaxWells, need.wells, len(sched.WellNames(step)))
	if err != nil {
		return Header{}, err
	}
	h.NCWMax, err = capacity("connections per well", dims.MaxConnections, need.conns, stepMaxConns(sched, step))
	if err != nil {
		return Header{}, err
	}
	h.NGMaxZ, err = capacity("groups", dims.MaxGroups, need.groups, len(sched.GroupNames(step)))
	if err != nil {
		return Header{}, err
	}
	h.NWGMax, err = capacity("group children", dims.MaxGroupSize, need.children, stepMaxChildren(sched, step))
	if err != nil {
		return Header{}, err
	}

	cfg, err := sched.UDQConfig(step)
	if err != nil {
		return Header{}, err
	}
	for _, in := range cfg.Inputs() {
		switch in.VarType {
		case schedule.UDQWell:
			h.NWellUDQs++
		case schedule.UDQGroup:
			h.NGroupUDQs++
		case schedule.UDQField:
			h.NFieldUDQs++
		}
	}
	return h, nil
}

func capacity(what string, declared, derived, used int) (int, error) {
	if declared == 0 {
		return max(derived, used, 1), nil
	}
	if used > declared {
		return 0, fmt.Errorf("%d %s at this step exceed the declared capacity %d: %w",
			used, what, declared, simerr.ErrInvalidArgument)
	}
	return declared, nil
}

type runCapacity struct {
	wells, conns, groups, children int
}

// requiredCapacity scans the whole run so every step shares one layout.
func requiredCapacity(sched *schedule.Schedule) runCapacity {
	var c runCapacity
	c.wells = len(sched.AllWellNames())
	c.groups = len(sched.AllGroupNames())
	for step := 0; step < sched.Size(); step++ {
		c.conns = max(c.conns, stepMaxConns(sched, step))
		c.children = max(c.children, stepMaxChildren(sched, step))
	}
	return c
}

func stepMaxConns(sched *schedule.Schedule, step int) int {
	n := 0
	for _, w := range sched.Wells(step) {
		n = max(n, len(w.Connections))
	}
	return n
}

func stepMaxChildren(sched *schedule.Schedule, step int) int {
	n := 0
	for _, name := range sched.GroupNames(step) {
		if g, err := sched.GetGroup(name, step); err == nil {
			n = max(n, len(g.Wells)+len(g.Groups))
		}
	}
	return n
}

func phaseMask(phases []schedule.Phase) int32 {
	if len(phases) == 0 {
		return 7
	}
	var m int32
	for _, p := range phases {
		switch p {
		case schedule.PhaseOil:
			m |= 1
		case schedule.PhaseWater:
			m |= 2
		case schedule.PhaseGas:
			m |= 4
		}
	}
	return m
}

// IntHead renders INTEHEAD.
func (h Header) IntHead() []int32 {
	ih := make([]int32, IntHeadSize)
	ih[IHUnit] = h.Units.RestartCode()
	ih[IHNX] = int32(h.NX)
	ih[IHNY] = int32(h.NY)
	ih[IHNZ] = int32(h.NZ)
	ih[IHNActive] = int32(h.NActive)
	ih[IHPhase] = h.PhaseMask
	ih[IHNWells] = int32(h.NWells)
	ih[IHNCWMax] = int32(h.NCWMax)
	ih[IHNWGMax] = int32(h.NWGMax)
	ih[IHNGMaxZ] = int32(h.NGMaxZ)
	ih[IHNIWelZ] = NIWELZ
	ih[IHNSWelZ] = NSWELZ
	ih[IHNXWelZ] = NXWELZ
	ih[IHNZWelZ] = NZWELZ
	ih[IHNIConZ] = NICONZ
	ih[IHNSConZ] = NSCONZ
	ih[IHNXConZ] = NXCONZ
	ih[IHNIGrpZ] = int32(h.NIGRPZ())
	ih[IHNSGrpZ] = NSGRPZ
	ih[IHNXGrpZ] = NXGRPZ
	ih[IHNZGrpZ] = NZGRPZ
	ih[IHReportStep] = int32(h.Step)
	ih[IHProgram] = programCode
	ih[IHNWellUDQs] = int32(h.NWellUDQs)
	ih[IHNGroupUDQs] = int32(h.NGroupUDQs)
	ih[IHNFieldUDQs] = int32(h.NFieldUDQs)
	ih[IHNUDQs] = int32(h.NWellUDQs + h.NGroupUDQs + h.NFieldUDQs)
	return ih
}

// DoubHead renders DOUBHEAD.
func (h Header) DoubHead() []float64 {
	dh := make([]float64, DoubHeadSize)
	dh[DHTime] = h.Elapsed / day
	dh[DHStepLength] = h.StepLength / day
	dh[DHMaxSubStep] = h.MaxSubStep / day
	return dh
}

// HeaderFromIntHead recovers capacities from a stored INTEHEAD.
func HeaderFromIntHead(ih []int32) (Header, error) {
	if len(ih) != IntHeadSize {
		return Header{}, fmt.Errorf("INTEHEAD has %d items, want %d: %w", len(ih), IntHeadSize, simerr.ErrInvalidArgument)
	}
	kind := units.Metric
	if ih[IHUnit] == units.Field.RestartCode() {
		kind = units.Field
	}
	return Header{
		Step:       int(ih[IHReportStep]),
		Units:      kind,
		NX:         int(ih[IHNX]),
		NY:         int(ih[IHNY]),
		NZ:         int(ih[IHNZ]),
		NActive:    int(ih[IHNActive]),
		PhaseMask:  ih[IHPhase],
		NWells:     int(ih[IHNWells]),
		NCWMax:     int(ih[IHNCWMax]),
		NWGMax:     int(ih[IHNWGMax]),
		NGMaxZ:     int(ih[IHNGMaxZ]),
		NWellUDQs:  int(ih[IHNWellUDQs]),
		NGroupUDQs: int(ih[IHNGroupUDQs]),
		NFieldUDQs: int(ih[IHNFieldUDQs]),
	}, nil
}

const day = 86400.0
