package action

import "github.com/resvsim/schedule-sim/sim/schedule"

type runInfo struct {
	count int
	last  float64
	wells []string
}

// State records how often and when each action has fired. It lives for the
// whole run and is owned by the orchestrator.
type State struct {
	runs map[string]*runInfo
}

// NewState returns a state with no recorded runs.
func NewState() *State {
	return &State{runs: make(map[string]*runInfo)}
}

// RunCount returns the number of times name has fired.
func (s *State) RunCount(name string) int {
	if r, ok := s.runs[name]; ok {
		return r.count
	}
	return 0
}

// LastRun returns the elapsed time (seconds) of the last firing of name.
func (s *State) LastRun(name string) (float64, bool) {
	r, ok := s.runs[name]
	if !ok {
		return 0, false
	}
	return r.last, true
}

// LastWells returns the wells matched when name last fired.
func (s *State) LastWells(name string) []string {
	if r, ok := s.runs[name]; ok {
		return r.wells
	}
	return nil
}

// Eligible reports whether a may fire at elapsed: it has runs left and at least
// MinWait seconds have passed since its last run.
func (s *State) Eligible(a *schedule.ActionX, elapsed float64) bool {
	r, ok := s.runs[a.Name]
	if !ok {
		return a.MaxRuns > 0
	}
	return r.count < a.MaxRuns && elapsed-r.last >= a.MinWait
}

// AddRun records a firing of a.
func (s *State) AddRun(a *schedule.ActionX, elapsed float64, res Result) {
	r, ok := s.runs[a.Name]
	if !ok {
		r = &runInfo{}
		s.runs[a.Name] = r
	}
	r.count++
	r.last = elapsed
	r.wells = res.Wells
}
