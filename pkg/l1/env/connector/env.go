// Package connector sets up clients connecting to L1 controllers.
package connector

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/robotalks/fxboard/pkg/l1"
	"github.com/robotalks/fxboard/pkg/l1/comm/mqtt"
	"github.com/robotalks/fxboard/pkg/l1/comm/stream"
	"github.com/robotalks/fxboard/pkg/l1/comm/websocket"
)

// Config selects the controller and its registry.
type Config struct {
	Ref l1.ControllerRef

	// RegistryURL is mqtt://host:port/topic-prefix, ws://host:port
	// or stream://host:port.
	RegistryURL string
}

var defaultConfig = Config{
	Ref:         l1.ControllerRef{Type: "fxboard"},
	RegistryURL: "mqtt://localhost:1883/fxboard/",
}

func init() {
	if val := os.Getenv("FXBOARD_TYPE"); val != "" {
		defaultConfig.Ref.Type = val
	}
	if val := os.Getenv("FXBOARD_ID"); val != "" {
		defaultConfig.Ref.ID = val
	}
	if val := os.Getenv("FXBOARD_REGISTRY_URL"); val != "" {
		defaultConfig.RegistryURL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "ctl-type", defaultConfig.Ref.Type, "Controller type to connect.")
	flag.StringVar(&defaultConfig.Ref.ID, "ctl-id", defaultConfig.Ref.ID, "Controller ID to connect.")
	flag.StringVar(&defaultConfig.RegistryURL, "registry", defaultConfig.RegistryURL, "Registry URL, mqtt://, ws:// or stream://.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates the Connector for the registry URL scheme.
func (c *Config) NewConnector() (l1.Connector, error) {
	u, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %w", err)
	}
	switch u.Scheme {
	case "mqtt", "tcp", "ssl":
		return mqtt.NewConnector(c.RegistryURL)
	case "ws":
		return websocket.NewConnector(c.RegistryURL)
	case "stream":
		return stream.NewConnector(c.RegistryURL)
	default:
		return nil, fmt.Errorf("unknown registry URL scheme %q", u.Scheme)
	}
}

// MustNewConnector creates the Connector or exits.
func (c *Config) MustNewConnector() l1.Connector {
	conn, err := c.NewConnector()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

// Connect connects the configured controller.
func (c *Config) Connect(ctx context.Context) (l1.ControllerConn, error) {
	if !c.Ref.IsValid() {
		return nil, fmt.Errorf("controller type and id must be specified")
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Connect(ctx, c.Ref)
}
