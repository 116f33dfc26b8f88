// Package summary holds the run-wide store of scalar summary and UDQ values,
// keyed by keyword plus optional entity name and region/connection number.
package summary

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/resvsim/schedule-sim/sim/simerr"
)

// Keyword composition helpers. A key is KW, KW:NAME, KW:NUM or KW:NAME:NUM.

// WellKey returns the key of keyword kw for well.
func WellKey(kw, well string) string { return kw + ":" + well }

// GroupKey returns the key of keyword kw for group.
func GroupKey(kw, group string) string { return kw + ":" + group }

// RegionKey returns the key of keyword kw for region num.
func RegionKey(kw string, num int) string { return kw + ":" + strconv.Itoa(num) }

// ConnKey returns the key of keyword kw for connection (or segment) num of well.
func ConnKey(kw, well string, num int) string { return kw + ":" + well + ":" + strconv.Itoa(num) }

// totalKeywords are cumulative vectors: updates add to the stored value.
var totalKeywords = map[string]bool{
	"OPT": true, "WPT": true, "GPT": true, "LPT": true, "VPT": true,
	"OIT": true, "WIT": true, "GIT": true, "VIT": true,
}

// IsTotal reports whether kw is a cumulative keyword (WOPT, GWIT, FGPT...).
// UDQ keywords are never cumulative.
func IsTotal(kw string) bool {
	if len(kw) < 4 || kw[1] == 'U' {
		return false
	}
	switch kw[0] {
	case 'W', 'G', 'F', 'C':
		return totalKeywords[kw[1:4]] && len(kw) == 4
	default:
		return false
	}
}

// State maps composite keys to values. It is owned by one writer per step and
// never rolled back.
type State struct {
	values  map[string]float64
	wells   map[string]map[string]bool // kw -> wells with a value
	groups  map[string]map[string]bool // kw -> groups with a value
	elapsed float64
}

// NewState returns an empty store.
func NewState() *State {
	return &State{
		values: make(map[string]float64),
		wells:  make(map[string]map[string]bool),
		groups: make(map[string]map[string]bool),
	}
}

func (s *State) store(kw, key string, v float64) {
	if IsTotal(kw) {
		s.values[key] += v
		return
	}
	s.values[key] = v
}

// Update sets a field-level keyword, accumulating for cumulative keywords.
func (s *State) Update(kw string, v float64) {
	s.store(kw, kw, v)
}

// UpdateWellVar sets kw for well.
func (s *State) UpdateWellVar(well, kw string, v float64) {
	s.store(kw, WellKey(kw, well), v)
	if s.wells[kw] == nil {
		s.wells[kw] = make(map[string]bool)
	}
	s.wells[kw][well] = true
}

// UpdateGroupVar sets kw for group.
func (s *State) UpdateGroupVar(group, kw string, v float64) {
	s.store(kw, GroupKey(kw, group), v)
	if s.groups[kw] == nil {
		s.groups[kw] = make(map[string]bool)
	}
	s.groups[kw][group] = true
}

// UpdateRegionVar sets kw for region num.
func (s *State) UpdateRegionVar(kw string, num int, v float64) {
	s.store(kw, RegionKey(kw, num), v)
}

// UpdateConnVar sets kw for connection num of well.
func (s *State) UpdateConnVar(well, kw string, num int, v float64) {
	s.store(kw, ConnKey(kw, well, num), v)
}

// Has reports whether a field-level keyword (or any raw key) is set.
func (s *State) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// HasWellVar reports whether kw is set for well.
func (s *State) HasWellVar(well, kw string) bool { return s.Has(WellKey(kw, well)) }

// HasGroupVar reports whether kw is set for group.
func (s *State) HasGroupVar(group, kw string) bool { return s.Has(GroupKey(kw, group)) }

// HasRegionVar reports whether kw is set for region num.
func (s *State) HasRegionVar(kw string, num int) bool { return s.Has(RegionKey(kw, num)) }

// HasConnVar reports whether kw is set for connection num of well.
func (s *State) HasConnVar(well, kw string, num int) bool { return s.Has(ConnKey(kw, well, num)) }

// Get returns the value of a raw key or field-level keyword.
func (s *State) Get(key string) (float64, error) {
	v, ok := s.values[key]
	if !ok {
		return 0, fmt.Errorf("summary key %q: %w", key, simerr.ErrNotFound)
	}
	return v, nil
}

// GetOr returns the value of key, or def when absent.
func (s *State) GetOr(key string, def float64) float64 {
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// GetWellVar returns kw for well.
func (s *State) GetWellVar(well, kw string) (float64, error) { return s.Get(WellKey(kw, well)) }

// GetGroupVar returns kw for group.
func (s *State) GetGroupVar(group, kw string) (float64, error) { return s.Get(GroupKey(kw, group)) }

// GetRegionVar returns kw for region num.
func (s *State) GetRegionVar(kw string, num int) (float64, error) { return s.Get(RegionKey(kw, num)) }

// GetConnVar returns kw for connection num of well.
func (s *State) GetConnVar(well, kw string, num int) (float64, error) {
	return s.Get(ConnKey(kw, well, num))
}

// Wells returns the wells holding a value for kw, sorted.
func (s *State) Wells(kw string) []string {
	return slices.Sorted(maps.Keys(s.wells[kw]))
}

// Groups returns the groups holding a value for kw, sorted.
func (s *State) Groups(kw string) []string {
	return slices.Sorted(maps.Keys(s.groups[kw]))
}

// IsWellKeyword reports whether kw has ever been set for some well.
func (s *State) IsWellKeyword(kw string) bool { return len(s.wells[kw]) > 0 }

// IsGroupKeyword reports whether kw has ever been set for some group.
func (s *State) IsGroupKeyword(kw string) bool { return len(s.groups[kw]) > 0 }

// UpdateElapsed advances the simulated time by dt seconds.
func (s *State) UpdateElapsed(dt float64) {
	s.elapsed += dt
	s.values["TIME"] = s.elapsed / 86400.0
}

// Elapsed returns the simulated time in seconds.
func (s *State) Elapsed() float64 { return s.elapsed }

// Keys returns every stored key, sorted.
func (s *State) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Len returns the number of stored keys.
func (s *State) Len() int { return len(s.values) }

// SplitKey breaks a composite key into keyword, entity name and number.
// Missing parts are empty / zero.
func SplitKey(key string) (kw, name string, num int) {
	parts := strings.Split(key, ":")
	kw = parts[0]
	switch len(parts) {
	case 2:
		if n, err := strconv.Atoi(parts[1]); err == nil {
			return kw, "", n
		}
		return kw, parts[1], 0
	case 3:
		n, _ := strconv.Atoi(parts[2])
		return kw, parts[1], n
	}
	return kw, "", 0
}
