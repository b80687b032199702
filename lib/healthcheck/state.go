package healthcheck

import (
	"sync"

	"github.com/MichaleAnderson/beldex-storage-server/utils/stringset"
)

// state tracks the reachability of a set of node addresses. In particular,
// it tracks consecutive passes or fails which cause nodes to transition
// between reachable and unreachable.
//
// state is thread-safe.
type state struct {
	sync.Mutex
	config FilterConfig
	all    stringset.Set
	up     stringset.Set
	trend  map[string]int
}

func newState(config FilterConfig) *state {
	return &state{
		config: config,
		all:    stringset.New(),
		up:     stringset.New(),
		trend:  make(map[string]int),
	}
}

// sync sets the current state to addrs. New entries are initialized as
// reachable, while existing entries not found in addrs are removed.
func (s *state) sync(addrs stringset.Set) {
	s.Lock()
	defer s.Unlock()

	for addr := range addrs {
		if !s.all.Has(addr) {
			s.all.Add(addr)
			s.up.Add(addr)
		}
	}

	for addr := range s.all {
		if !addrs.Has(addr) {
			s.all.Remove(addr)
			s.up.Remove(addr)
			delete(s.trend, addr)
		}
	}
}

// failed marks addr as having failed a check.
func (s *state) failed(addr string) {
	s.Lock()
	defer s.Unlock()

	s.trend[addr] = max(min(s.trend[addr]-1, -1), -s.config.Fails)
	if s.trend[addr] == -s.config.Fails {
		s.up.Remove(addr)
	}
}

// passed marks addr as having passed a check.
func (s *state) passed(addr string) {
	s.Lock()
	defer s.Unlock()

	s.trend[addr] = min(max(s.trend[addr]+1, 1), s.config.Passes)
	if s.trend[addr] == s.config.Passes {
		s.up.Add(addr)
	}
}

// reachable returns the currently reachable addresses.
func (s *state) reachable() stringset.Set {
	s.Lock()
	defer s.Unlock()

	return s.up.Copy()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
