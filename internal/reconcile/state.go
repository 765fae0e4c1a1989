package reconcile

import "sync"

// State is the shim's process-lifetime memory of which providers it most
// recently pointed at the gateway. The registry does not expose who routed a
// provider, so the shim must remember its own prior effect to undo it. It is
// an explicit value (not a package global) so tests construct it fresh and
// the daemon seeds it from persisted config at startup.
type State struct {
	mu          sync.Mutex
	lastApplied []string
}

func NewState() *State {
	return &State{}
}

// Seed initializes the last-applied set, typically from the persisted
// configuration at process start.
func (s *State) Seed(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastApplied = append([]string(nil), names...)
}

// LastApplied returns a copy of the current last-applied set.
func (s *State) LastApplied() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lastApplied...)
}

// removals returns lastApplied minus desired: providers previously routed
// that are no longer selected.
func (s *State) removals(desired []string) []string {
	keep := make(map[string]struct{}, len(desired))
	for _, n := range desired {
		keep[n] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, n := range s.lastApplied {
		if _, ok := keep[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}

// replace snapshots the desired set as the new last-applied set wholesale.
func (s *State) replace(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastApplied = append([]string(nil), names...)
}
