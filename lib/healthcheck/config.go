package healthcheck

import "time"

// FilterConfig defines configuration for Filter.
type FilterConfig struct {
	// Fails is the number of consecutive failed health checks for a node to
	// be considered unreachable.
	Fails int `yaml:"fails"`

	// Passes is the number of consecutive passed health checks for a node to
	// be considered reachable.
	Passes int `yaml:"passes"`

	// Timeout of each individual health check.
	Timeout time.Duration `yaml:"timeout"`
}

func (c *FilterConfig) applyDefaults() {
	if c.Fails == 0 {
		c.Fails = 3
	}
	if c.Passes == 0 {
		c.Passes = 2
	}
	if c.Timeout == 0 {
		c.Timeout = 3 * time.Second
	}
}
