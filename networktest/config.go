package networktest

import (
	"github.com/MichaleAnderson/beldex-storage-server/lib/mnodes"
	"github.com/MichaleAnderson/beldex-storage-server/metrics"
	"github.com/MichaleAnderson/beldex-storage-server/utils/configutil"

	"go.uber.org/zap"
)

// Config defines networktest harness configuration.
type Config struct {
	ZapLogging zap.Config     `yaml:"zap"`
	Metrics    metrics.Config `yaml:"metrics"`
	MNodes     mnodes.Config  `yaml:"mnodes"`
}

// DefaultConfig returns a Config pointed at the mainnet seed endpoint.
func DefaultConfig() Config {
	return Config{
		MNodes: mnodes.Config{
			Seeds: mnodes.SeedsConfig{
				Static: []string{"public.beldex.io:29095"},
			},
			DisableHealthcheck: true,
		},
	}
}

// LoadConfig loads a Config from a yaml file.
func LoadConfig(filename string) (Config, error) {
	var config Config
	if err := configutil.Load(filename, &config); err != nil {
		return Config{}, err
	}
	return config, nil
}
