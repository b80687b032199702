package mnodes

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/MichaleAnderson/beldex-storage-server/lib/healthcheck"
	"github.com/MichaleAnderson/beldex-storage-server/utils/stringset"
)

// Config defines master node directory configuration.
type Config struct {
	Seeds SeedsConfig `yaml:"seeds"`

	// TTL defines how long a fetched node list is cached for.
	TTL time.Duration `yaml:"ttl"`

	// Timeout of a single get_master_nodes request.
	Timeout time.Duration `yaml:"timeout"`

	Healthcheck healthcheck.FilterConfig `yaml:"healthcheck"`

	// DisableHealthcheck skips reachability filtering of fetched nodes.
	DisableHealthcheck bool `yaml:"disable_healthcheck"`
}

func (c *Config) applyDefaults() {
	if c.TTL == 0 {
		c.TTL = 10 * time.Minute
	}
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
}

// SeedsConfig defines the beldexd rpc endpoints the node list is fetched
// from, using either a DNS record or a static list of addresses. If present,
// a DNS record always takes precedence over a static list.
type SeedsConfig struct {
	// DNS record from which to resolve seed names.
	DNS string `yaml:"dns"`

	// Statically configured seed addresses.
	Static []string `yaml:"static"`

	// Port attached to resolved names missing a port suffix.
	Port int `yaml:"port"`
}

// resolve returns either the static list of seeds or the contents of the dns
// record, as a set of 'host:port' addresses. If both or neither are
// supplied, returns an error.
func (c *SeedsConfig) resolve() (stringset.Set, error) {
	if c.DNS == "" && len(c.Static) == 0 {
		return nil, errors.New("no dns record or static list supplied")
	}
	if c.DNS != "" && len(c.Static) > 0 {
		return nil, errors.New("both dns record and static list supplied")
	}
	var names stringset.Set
	if len(c.Static) > 0 {
		names = stringset.FromSlice(c.Static)
	} else {
		var r net.Resolver
		resolved, err := r.LookupHost(context.Background(), c.DNS)
		if err != nil {
			return nil, fmt.Errorf("resolve dns: %s", err)
		}
		if len(resolved) == 0 {
			return nil, errors.New("dns record empty")
		}
		names = stringset.FromSlice(resolved)
	}
	return attachPortIfMissing(names, c.Port)
}

func attachPortIfMissing(names stringset.Set, port int) (stringset.Set, error) {
	result := make(stringset.Set)
	for name := range names {
		parts := strings.Split(name, ":")
		switch len(parts) {
		case 1:
			if port == 0 {
				return nil, fmt.Errorf("seed %s has no port and no default port configured", name)
			}
			name = fmt.Sprintf("%s:%d", parts[0], port)
		case 2:
			// No-op, name is already in "host:port" format.
		default:
			return nil, fmt.Errorf("invalid seed format: %s, expected 'host' or 'host:port'", name)
		}
		result.Add(name)
	}
	return result, nil
}
