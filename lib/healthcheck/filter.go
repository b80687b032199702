package healthcheck

import (
	"context"
	"sync"

	"github.com/MichaleAnderson/beldex-storage-server/utils/stringset"
)

// Filter filters unreachable nodes from an address set.
type Filter interface {
	Run(addrs stringset.Set) stringset.Set
}

type filter struct {
	config  FilterConfig
	checker Checker
	state   *state
}

// NewFilter creates a new Filter. Filter is stateful -- consecutive runs are
// required to detect reachable / unreachable nodes.
func NewFilter(config FilterConfig, checker Checker) Filter {
	config.applyDefaults()
	return &filter{
		config:  config,
		checker: checker,
		state:   newState(config),
	}
}

// Run probes addrs against the current filter state and returns the reachable
// entries. New entries in addrs not found in the current state are assumed
// reachable until checks prove otherwise. If addrs contains a single entry,
// it is always considered reachable; a node talking only to itself has
// nothing to filter.
func (f *filter) Run(addrs stringset.Set) stringset.Set {
	if len(addrs) == 1 {
		return addrs.Copy()
	}

	f.state.sync(addrs)

	ctx, cancel := context.WithTimeout(context.Background(), f.config.Timeout)
	defer cancel()

	var wg sync.WaitGroup
	for addr := range addrs {
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			if err := f.check(ctx, addr); err != nil {
				f.state.failed(addr)
			} else {
				f.state.passed(addr)
			}
		}(addr)
	}
	wg.Wait()

	return f.state.reachable()
}

func (f *filter) check(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() { errc <- f.checker.Check(ctx, addr) }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errc:
		return err
	}
}
