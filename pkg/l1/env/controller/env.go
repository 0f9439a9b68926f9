// Package controller sets up the env of an L1 controller: its
// identity and the registrars publishing it.
package controller

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	fx "github.com/robotalks/fxboard/pkg/framework"
	"github.com/robotalks/fxboard/pkg/l1"
	"github.com/robotalks/fxboard/pkg/l1/comm"
	"github.com/robotalks/fxboard/pkg/l1/comm/mqtt"
	"github.com/robotalks/fxboard/pkg/l1/comm/stream"
	"github.com/robotalks/fxboard/pkg/l1/comm/websocket"
	"github.com/robotalks/fxboard/pkg/l1/env"
)

// Config is the controller identity and where to publish it.
type Config struct {
	Info l1.ControllerInfo

	// MQTTBrokerURL is mqtt://host:port/topic-prefix, empty disables MQTT.
	MQTTBrokerURL string
	// WebsocketAddr is the listen address, empty disables websocket.
	WebsocketAddr string
	// StreamAddr is the TCP listen address of the stream registrar.
	StreamAddr string
}

var defaultConfig = Config{
	MQTTBrokerURL: "mqtt://localhost:1883/fxboard/",
}

func init() {
	if val := os.Getenv("FXBOARD_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("FXBOARD_WS_ADDR"); val != "" {
		defaultConfig.WebsocketAddr = val
	}
	if val := os.Getenv("FXBOARD_STREAM_ADDR"); val != "" {
		defaultConfig.StreamAddr = val
	}
	defaultConfig.Info.Ref.ID = env.MachineID()
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.Type, "type", defaultConfig.Info.Ref.Type, "Controller type.")
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Controller ID.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable.")
	flag.StringVar(&defaultConfig.WebsocketAddr, "ws", defaultConfig.WebsocketAddr, "Websocket listen address, e.g. :8080.")
	flag.StringVar(&defaultConfig.StreamAddr, "stream", defaultConfig.StreamAddr, "TCP listen address of packet stream, e.g. :7070.")
}

// SetControllerType is called from init of main with the controller type.
func SetControllerType(typ string, meta l1.ControllerMeta) {
	defaultConfig.Info.Ref.Type = typ
	defaultConfig.Info.Meta = meta
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

// ErrNoRegistrar is returned when no registrar is configured.
var ErrNoRegistrar = errors.New("at least one of MQTT broker, websocket or stream address is required")

// Env is what an L1 controller needs to talk to its clients.
type Env struct {
	Config       *Config
	RegistryURLs []string
	Registrar    *comm.RegistrarMux
}

// NewEnv creates the Env.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("controller type and id must be specified")
	}
	e := &Env{Config: c, Registrar: &comm.RegistrarMux{}}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar: %w", err)
		}
		e.Registrar.Add(reg)
		e.RegistryURLs = append(e.RegistryURLs, c.MQTTBrokerURL)
	}
	if c.WebsocketAddr != "" {
		reg := websocket.NewRegistrar(c.WebsocketAddr, c.Info)
		addr, err := reg.Listen()
		if err != nil {
			return nil, fmt.Errorf("websocket listen: %w", err)
		}
		e.Registrar.Add(reg)
		e.RegistryURLs = append(e.RegistryURLs, "ws://"+addr.String())
	}
	if c.StreamAddr != "" {
		reg := stream.NewRegistrar(c.StreamAddr, c.Info)
		addr, err := reg.Listen()
		if err != nil {
			return nil, fmt.Errorf("stream listen: %w", err)
		}
		e.Registrar.Add(reg)
		e.RegistryURLs = append(e.RegistryURLs, "stream://"+addr.String())
	}
	if len(e.Registrar.Registrars) == 0 {
		return nil, ErrNoRegistrar
	}
	return e, nil
}

// MustNewEnv creates the Env or exits.
func (c *Config) MustNewEnv() *Env {
	e, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

// AddToLoop implements LoopAdder.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar, &comm.UnsupportedCommands{})
}
