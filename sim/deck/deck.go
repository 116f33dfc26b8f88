// Package deck loads a YAML schedule deck and builds the step-indexed
// schedule from it.
//
// Quantities in a deck are in the deck's unit system. Time values (step
// lengths, sub-step limits, action waits) are in days. Grid indices are
// 1-based, as in the restart arrays.
package deck

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Deck is the top-level deck file.
type Deck struct {
	Version    string       `yaml:"version"`
	Units      string       `yaml:"units"`
	Steps      []float64    `yaml:"steps"` // report step lengths, days
	Grid       GridSpec     `yaml:"grid"`
	Dims       DimsSpec     `yaml:"dims"`
	Phases     []string     `yaml:"phases,omitempty"`
	MaxSubStep float64      `yaml:"max_sub_step,omitempty"` // days, 0 = unlimited
	Groups     []GroupSpec  `yaml:"groups,omitempty"`
	Wells      []WellSpec   `yaml:"wells"`
	WLists     []WListSpec  `yaml:"wlists,omitempty"`
	UDQ        UDQSpec      `yaml:"udq,omitempty"`
	Actions    []ActionSpec `yaml:"actions,omitempty"`
	Events     []EventSpec  `yaml:"events,omitempty"`
}

// GridSpec is the grid size written to INTEHEAD.
type GridSpec struct {
	NX      int `yaml:"nx"`
	NY      int `yaml:"ny"`
	NZ      int `yaml:"nz"`
	NActive int `yaml:"nactive,omitempty"`
}

// DimsSpec declares restart capacities. Zero values are derived from the run.
type DimsSpec struct {
	MaxWells       int `yaml:"max_wells,omitempty"`
	MaxConnections int `yaml:"max_connections,omitempty"`
	MaxGroups      int `yaml:"max_groups,omitempty"`
	MaxGroupSize   int `yaml:"max_group_size,omitempty"`
}

// GroupSpec defines a group from Step onwards.
type GroupSpec struct {
	Name        string            `yaml:"name"`
	Parent      string            `yaml:"parent,omitempty"`
	Step        int               `yaml:"step,omitempty"`
	ProdControl string            `yaml:"prod_control,omitempty"`
	ProdTargets map[string]string `yaml:"prod_targets,omitempty"`
	GuidePhase  string            `yaml:"guide_phase,omitempty"`
	InjPhase    string            `yaml:"inj_phase,omitempty"`
	InjControl  string            `yaml:"inj_control,omitempty"`
	InjTargets  map[string]string `yaml:"inj_targets,omitempty"`
}

// WellSpec defines a well from Step onwards. Target values are numbers or
// UDQ/summary keywords.
type WellSpec struct {
	Name           string            `yaml:"name"`
	Group          string            `yaml:"group,omitempty"`
	Step           int               `yaml:"step,omitempty"`
	HeadI          int               `yaml:"head_i"`
	HeadJ          int               `yaml:"head_j"`
	RefDepth       float64           `yaml:"ref_depth,omitempty"`
	Type           string            `yaml:"type"`
	InjectorPhase  string            `yaml:"injector_phase,omitempty"`
	PreferredPhase string            `yaml:"preferred_phase,omitempty"`
	Status         string            `yaml:"status,omitempty"`
	Control        string            `yaml:"control,omitempty"`
	Targets        map[string]string `yaml:"targets,omitempty"`
	GuideRate      *GuideRateSpec    `yaml:"guide_rate,omitempty"`
	VFPTable       int               `yaml:"vfp_table,omitempty"`
	AllowCrossFlow bool              `yaml:"allow_cross_flow,omitempty"`
	Connections    []ConnectionSpec  `yaml:"connections,omitempty"`
}

// GuideRateSpec is the well guide rate.
type GuideRateSpec struct {
	Value   float64 `yaml:"value"`
	Phase   string  `yaml:"phase"`
	Scaling float64 `yaml:"scaling,omitempty"`
}

// ConnectionSpec is one completed cell.
type ConnectionSpec struct {
	I            int     `yaml:"i"`
	J            int     `yaml:"j"`
	K            int     `yaml:"k"`
	State        string  `yaml:"state,omitempty"`
	Dir          string  `yaml:"dir,omitempty"`
	CF           float64 `yaml:"cf,omitempty"`
	Kh           float64 `yaml:"kh,omitempty"`
	Diameter     float64 `yaml:"diameter,omitempty"`
	Depth        float64 `yaml:"depth,omitempty"`
	Skin         float64 `yaml:"skin,omitempty"`
	ComplNum     int     `yaml:"compl_num,omitempty"`
	Segment      int     `yaml:"segment,omitempty"`
	SegDistStart float64 `yaml:"seg_dist_start,omitempty"`
	SegDistEnd   float64 `yaml:"seg_dist_end,omitempty"`
}

// WListSpec sets a well list from Step onwards. Names start with '*'.
type WListSpec struct {
	Name  string   `yaml:"name"`
	Step  int      `yaml:"step,omitempty"`
	Wells []string `yaml:"wells"`
}

// UDQSpec holds the user defined quantities.
type UDQSpec struct {
	UndefinedValue float64      `yaml:"undefined_value,omitempty"`
	Defines        []DefineSpec `yaml:"defines,omitempty"`
	Assigns        []AssignSpec `yaml:"assigns,omitempty"`
}

// DefineSpec is an expression evaluated from Step onwards.
type DefineSpec struct {
	Keyword    string `yaml:"keyword"`
	Expression string `yaml:"expression"`
	Unit       string `yaml:"unit,omitempty"`
	Step       int    `yaml:"step,omitempty"`
}

// AssignSpec is a constant written once, on the first report step at or after Step.
type AssignSpec struct {
	Keyword  string   `yaml:"keyword"`
	Selector []string `yaml:"selector,omitempty"`
	Value    float64  `yaml:"value"`
	Step     int      `yaml:"step,omitempty"`
}

// ActionSpec is a conditional block entered at Step.
type ActionSpec struct {
	Name       string          `yaml:"name"`
	Step       int             `yaml:"step,omitempty"`
	MaxRuns    *int            `yaml:"max_runs,omitempty"` // default 1
	MinWait    float64         `yaml:"min_wait,omitempty"` // days
	Conditions []ConditionSpec `yaml:"conditions"`
	Effects    []EffectSpec    `yaml:"effects"`
}

// ConditionSpec compares two UDQ expressions.
type ConditionSpec struct {
	Left  string `yaml:"left"`
	Op    string `yaml:"op"`
	Right string `yaml:"right"`
	Logic string `yaml:"logic,omitempty"`
}

// EffectSpec is one mutation of an action.
type EffectSpec struct {
	Kind     string   `yaml:"kind"`
	Wells    []string `yaml:"wells,omitempty"`
	Status   string   `yaml:"status,omitempty"`
	Control  string   `yaml:"control,omitempty"`
	Value    float64  `yaml:"value,omitempty"`
	ExitCode int      `yaml:"exit_code,omitempty"`
	Script   string   `yaml:"script,omitempty"`
}

// EventSpec lists planned changes at one report step.
type EventSpec struct {
	Step        int              `yaml:"step"`
	WellStatus  []WellStatusSpec `yaml:"well_status,omitempty"`
	WellTargets []WellTargetSpec `yaml:"well_targets,omitempty"`
	MaxSubStep  *float64         `yaml:"max_sub_step,omitempty"` // days
}

// WellStatusSpec opens or shuts the wells matching Well.
type WellStatusSpec struct {
	Well   string `yaml:"well"`
	Status string `yaml:"status"`
}

// WellTargetSpec changes one control target of the wells matching Well.
type WellTargetSpec struct {
	Well    string `yaml:"well"`
	Control string `yaml:"control"`
	Value   string `yaml:"value"`
}

// Load reads and parses a deck file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func Load(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading deck: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a deck from r with strict field checking.
func Parse(r io.Reader) (*Deck, error) {
	var d Deck
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&d); err != nil {
		return nil, fmt.Errorf("parsing deck: %w", err)
	}
	return &d, nil
}
