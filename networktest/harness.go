// Package networktest provides the fixture scaffolding integration tests use
// to talk to a live master node network: a shared directory client, random
// node selection, signing key generation and per-run test exclusion.
package networktest

import (
	"context"
	"flag"
	"fmt"
	"io"
	"testing"

	"github.com/MichaleAnderson/beldex-storage-server/core"
	"github.com/MichaleAnderson/beldex-storage-server/lib/mnodes"
	"github.com/MichaleAnderson/beldex-storage-server/metrics"
	"github.com/MichaleAnderson/beldex-storage-server/utils/log"
	"github.com/MichaleAnderson/beldex-storage-server/utils/stringset"

	"github.com/uber-go/tally"
)

// _exclude mirrors the test runner option of the same name: a single test
// name skipped for the current run.
var _exclude = flag.String("exclude", "", "name of a test excluded from this run")

// Excluded returns the set of test names excluded via the -exclude flag. The
// set is empty or has a single element.
func Excluded() stringset.Set {
	s := make(stringset.Set)
	if *_exclude != "" {
		s.Add(*_exclude)
	}
	return s
}

// SkipIfExcluded skips t if its name was excluded via the -exclude flag.
func SkipIfExcluded(t *testing.T) {
	if Excluded().Has(t.Name()) {
		t.Skipf("%s excluded from this run", t.Name())
	}
}

// Harness bundles the clients integration tests use to talk to the network.
// Create one per test binary and share it across tests; the node list is
// cached for the life of the harness.
type Harness struct {
	directory *mnodes.Directory
	stats     tally.Scope
	closer    io.Closer
}

// New creates a started Harness from config.
func New(config Config) (*Harness, error) {
	if config.ZapLogging.Encoding != "" {
		log.ConfigureLogger(config.ZapLogging)
	}
	stats, closer, err := metrics.New(config.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics: %s", err)
	}
	return &Harness{
		directory: mnodes.Default(config.MNodes, stats),
		stats:     stats,
		closer:    closer,
	}, nil
}

// Close releases harness resources.
func (h *Harness) Close() error {
	if h.closer != nil {
		return h.closer.Close()
	}
	return nil
}

// Nodes returns the master node list, fetched once from a seed endpoint and
// cached.
func (h *Harness) Nodes(ctx context.Context) ([]core.MasterNodeState, error) {
	return h.directory.List(ctx)
}

// RandomNode picks a uniformly random master node from the cached list.
func (h *Harness) RandomNode(ctx context.Context) (core.MasterNodeState, error) {
	return h.directory.Random(ctx, nil)
}

// RandomNodeAddr picks a random master node and returns its curve endpoint
// address.
func (h *Harness) RandomNodeAddr(ctx context.Context) (core.CurveAddr, error) {
	s, err := h.RandomNode(ctx)
	if err != nil {
		return core.CurveAddr{}, err
	}
	return s.LMQAddress(), nil
}
