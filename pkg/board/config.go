package board

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"time"

	fx "github.com/robotalks/fxboard/pkg/framework"
	"github.com/robotalks/fxboard/pkg/l0/comm"
	"github.com/robotalks/fxboard/pkg/l0/device"
	"github.com/robotalks/fxboard/pkg/l0/serial"
	env "github.com/robotalks/fxboard/pkg/l1/env/controller"
)

// Config defines the board controller options.
type Config struct {
	// MapFile is a TOML register map, empty for DefaultMap.
	MapFile string
	// Emulate uses an in-process emulator instead of the serial port.
	Emulate      bool
	Verify       bool
	Retries      int
	Timeout      time.Duration
	PollInterval time.Duration
}

var defaultConfig = Config{
	Retries:      comm.DefaultRetries,
	Timeout:      comm.DefaultReplyTimeout,
	PollInterval: DefaultPollInterval,
}

func init() {
	if val := os.Getenv("FXBOARD_MAP"); val != "" {
		defaultConfig.MapFile = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.MapFile, "map", defaultConfig.MapFile, "Register map file (TOML).")
	flag.BoolVar(&defaultConfig.Emulate, "emulate", defaultConfig.Emulate, "Use the board emulator instead of the serial port.")
	flag.BoolVar(&defaultConfig.Verify, "verify", defaultConfig.Verify, "Read back every parameter write.")
	flag.IntVar(&defaultConfig.Retries, "retries", defaultConfig.Retries, "Retries of a failed register access.")
	flag.DurationVar(&defaultConfig.Timeout, "timeout", defaultConfig.Timeout, "Timeout of a reply frame.")
	flag.DurationVar(&defaultConfig.PollInterval, "poll", defaultConfig.PollInterval, "Interval polling signal meters, 0 disables.")
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

// NewMap loads the configured register map.
func (c *Config) NewMap() (*Map, error) {
	if c.MapFile == "" {
		return DefaultMap(), nil
	}
	return LoadMap(c.MapFile)
}

// NewController creates the controller on the serial port from
// serial.Default(), or on an emulator.
func (c *Config) NewController(e *env.Env) (*Controller, error) {
	m, err := c.NewMap()
	if err != nil {
		return nil, err
	}
	var link *comm.Link
	var closer io.Closer
	var runnables []fx.Runnable
	if c.Emulate {
		emu := device.NewEmulator()
		link, closer = comm.NewLink(emu), emu
		runnables = append(runnables, fx.RunFunc(func(ctx context.Context) error {
			return SimulateMeters(ctx, emu, m, c.PollInterval)
		}))
	} else {
		port, err := serial.Default().Open()
		if err != nil {
			return nil, err
		}
		link, closer = port.NewLink(), port
	}
	link.Timeout = c.Timeout
	client := comm.NewClient(link)
	client.Retries = c.Retries
	b := New(m, client)
	b.Verify = c.Verify

	ctl := NewController(b, e.Registrar)
	ctl.Closer = closer
	ctl.PollInterval = c.PollInterval
	ctl.Transport = client
	if len(runnables) > 0 {
		ctl.Transport = fx.RunFunc(func(ctx context.Context) error {
			return fx.NewRunnerWith(ctx).Go(append(runnables, client)...).Wait()
		})
	}
	return ctl, nil
}

// MustNewController creates the controller or exits.
func (c *Config) MustNewController(e *env.Env) *Controller {
	ctl, err := c.NewController(e)
	if err != nil {
		log.Fatalln(err)
	}
	return ctl
}

// SimulateMeters moves the read-only registers of the emulator like
// a signal envelope, stepping every interval.
func SimulateMeters(ctx context.Context, emu *device.Emulator, m *Map, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for step := uint32(0); ; step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		level := step % 64
		if level >= 32 {
			level = 63 - level
		}
		for n, p := range m.params {
			if p.ReadOnly {
				emu.SetRegister(p.Address, level*uint32(n+1)%256)
			}
		}
	}
}
