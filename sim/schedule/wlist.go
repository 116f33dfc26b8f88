package schedule

import (
	"maps"
	"slices"
	"strings"
)

// WListManager holds named well lists (names start with '*').
type WListManager struct {
	lists map[string][]string
}

// NewWListManager returns an empty manager.
func NewWListManager() *WListManager {
	return &WListManager{lists: make(map[string][]string)}
}

// Set replaces the members of list name.
func (m *WListManager) Set(name string, wells []string) {
	m.lists[strings.ToUpper(name)] = slices.Clone(wells)
}

// Get returns the members of list name.
func (m *WListManager) Get(name string) ([]string, bool) {
	if m == nil {
		return nil, false
	}
	w, ok := m.lists[strings.ToUpper(name)]
	return w, ok
}

// Names returns the list names in sorted order.
func (m *WListManager) Names() []string {
	if m == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(m.lists))
}

// Clone returns a deep copy.
func (m *WListManager) Clone() *WListManager {
	out := NewWListManager()
	if m == nil {
		return out
	}
	for k, v := range m.lists {
		out.lists[k] = slices.Clone(v)
	}
	return out
}

// Equal compares two managers.
func (m *WListManager) Equal(o *WListManager) bool {
	if m == nil || o == nil {
		return m == o
	}
	return maps.EqualFunc(m.lists, o.lists, slices.Equal[[]string])
}
