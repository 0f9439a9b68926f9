package pedal

import (
	"flag"
	"os"

	"github.com/robotalks/fxboard/pkg/l1"
	env "github.com/robotalks/fxboard/pkg/l1/env/controller"
)

// Config defines the configurations for the controller.
type Config struct {
	DeviceIndex int
	Verbose     bool
	// MappingFile is a TOML Mapping, empty for DefaultMapping.
	MappingFile string
	// Connect is the TYPE/ID of the board controller to drive.
	Connect string
	// Registry locates Connect, defaults to the registry of the pedal.
	Registry string
}

var defaultConfig = Config{
	DeviceIndex: -1,
}

func init() {
	if val := os.Getenv("FXBOARD_PEDAL_MAPPING"); val != "" {
		defaultConfig.MappingFile = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.DeviceIndex, "device", defaultConfig.DeviceIndex, "Device index, -1 for auto detection.")
	flag.BoolVar(&defaultConfig.Verbose, "verbose", defaultConfig.Verbose, "Log pedal events.")
	flag.StringVar(&defaultConfig.MappingFile, "mapping", defaultConfig.MappingFile, "Pedal mapping file (TOML).")
	flag.StringVar(&defaultConfig.Connect, "connect", defaultConfig.Connect, "Board controller TYPE/ID to connect at start.")
	flag.StringVar(&defaultConfig.Registry, "board-registry", defaultConfig.Registry, "Registry URL of the board controller.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewController creates a controller using the config.
func (c *Config) NewController(e *env.Env) (*Controller, error) {
	ctl := NewController(e)
	ctl.DeviceIndex = c.DeviceIndex
	ctl.Verbose = c.Verbose
	if c.MappingFile != "" {
		m, err := LoadMapping(c.MappingFile)
		if err != nil {
			return nil, err
		}
		ctl.Mapping = m
	}
	if c.Connect != "" {
		ref, err := l1.ParseControllerRef(c.Connect)
		if err != nil {
			return nil, err
		}
		ctl.AutoConnect, ctl.RegistryURL = ref, c.Registry
	}
	return ctl, nil
}
