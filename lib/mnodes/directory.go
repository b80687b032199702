package mnodes

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/MichaleAnderson/beldex-storage-server/core"
	"github.com/MichaleAnderson/beldex-storage-server/lib/healthcheck"
	"github.com/MichaleAnderson/beldex-storage-server/utils/log"
	"github.com/MichaleAnderson/beldex-storage-server/utils/stringset"

	"github.com/andres-erbsen/clock"
	"github.com/uber-go/tally"
)

// ErrNoNodes is returned when node selection has no nodes left to pick from.
var ErrNoNodes = errors.New("no master nodes available")

// Directory caches the master node list and hands out nodes for requests.
//
// Directory is thread-safe.
type Directory struct {
	config Config
	stats  tally.Scope
	clk    clock.Clock
	client Client
	filter healthcheck.Filter

	mu        sync.Mutex
	snapshot  []core.MasterNodeState
	byPubKey  map[core.LegacyPubKey]core.MasterNodeState
	expiresAt time.Time
}

// New creates a new Directory. filter may be nil, in which case fetched
// nodes are not reachability-filtered.
func New(
	config Config,
	stats tally.Scope,
	clk clock.Clock,
	client Client,
	filter healthcheck.Filter) *Directory {

	config.applyDefaults()
	stats = stats.Tagged(map[string]string{
		"module": "mnodes",
	})
	if config.DisableHealthcheck {
		filter = nil
	}
	return &Directory{
		config: config,
		stats:  stats,
		clk:    clk,
		client: client,
		filter: filter,
	}
}

// Default creates a Directory with the default rpc client and health
// checker.
func Default(config Config, stats tally.Scope) *Directory {
	var filter healthcheck.Filter
	if !config.DisableHealthcheck {
		filter = healthcheck.NewFilter(config.Healthcheck, healthcheck.Default())
	}
	return New(config, stats, clock.New(), NewClient(config), filter)
}

// List returns the cached master node list, refreshing it from a seed if the
// cache has expired. If a refresh fails and a previous snapshot exists, the
// stale snapshot is returned.
func (d *Directory) List(ctx context.Context) ([]core.MasterNodeState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.snapshot != nil && d.clk.Now().Before(d.expiresAt) {
		return d.snapshot, nil
	}
	if err := d.refresh(ctx); err != nil {
		if d.snapshot != nil {
			log.Errorf("Error refreshing master node list, using stale snapshot: %s", err)
			return d.snapshot, nil
		}
		return nil, err
	}
	return d.snapshot, nil
}

func (d *Directory) refresh(ctx context.Context) error {
	timer := d.stats.Timer("refresh").Start()
	states, err := d.client.GetMasterNodes(ctx, &GetMasterNodesRequest{
		Fields:     StandardFields(),
		ActiveOnly: true,
	})
	timer.Stop()
	if err != nil {
		d.stats.Counter("refresh_errors").Inc(1)
		return err
	}
	if d.filter != nil {
		states = d.filterReachable(states)
	}
	byPubKey := make(map[core.LegacyPubKey]core.MasterNodeState, len(states))
	for _, s := range states {
		byPubKey[s.PubKey] = s
	}
	d.snapshot = states
	d.byPubKey = byPubKey
	d.expiresAt = d.clk.Now().Add(d.config.TTL)
	d.stats.Gauge("nodes").Update(float64(len(states)))
	return nil
}

func (d *Directory) filterReachable(
	states []core.MasterNodeState) []core.MasterNodeState {

	addrs := make(stringset.Set, len(states))
	for _, s := range states {
		addrs.Add(s.Addr())
	}
	up := d.filter.Run(addrs)
	var reachable []core.MasterNodeState
	for _, s := range states {
		if up.Has(s.Addr()) {
			reachable = append(reachable, s)
		}
	}
	return reachable
}

// Random returns a uniformly random master node whose legacy pubkey is not
// in exclude. exclude may be nil.
func (d *Directory) Random(
	ctx context.Context, exclude stringset.Set) (core.MasterNodeState, error) {

	states, err := d.List(ctx)
	if err != nil {
		return core.MasterNodeState{}, err
	}
	var candidates []core.MasterNodeState
	for _, s := range states {
		if exclude.Has(s.PubKey.String()) {
			continue
		}
		candidates = append(candidates, s)
	}
	if len(candidates) == 0 {
		return core.MasterNodeState{}, ErrNoNodes
	}
	return candidates[rand.Intn(len(candidates))], nil
}

// Lookup returns the node with the given legacy pubkey.
func (d *Directory) Lookup(
	ctx context.Context, pk core.LegacyPubKey) (core.MasterNodeState, error) {

	if _, err := d.List(ctx); err != nil {
		return core.MasterNodeState{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.byPubKey[pk]
	if !ok {
		return core.MasterNodeState{}, fmt.Errorf("%s is not an active master node", pk)
	}
	return s, nil
}
