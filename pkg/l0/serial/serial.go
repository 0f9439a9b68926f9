// Package serial opens the serial port connected to the board.
package serial

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tarm "github.com/tarm/serial"

	"github.com/robotalks/fxboard/pkg/l0/comm"
)

// Config defines the serial port settings.
type Config struct {
	Name        string
	Baud        int
	Parity      string
	ReadTimeout time.Duration
}

// Defaults of the board's UART.
const (
	DefaultBaud        = 19200
	DefaultParity      = "odd"
	DefaultReadTimeout = 100 * time.Millisecond
)

var defaultConfig = Config{
	Name:        "/dev/ttyUSB0",
	Baud:        DefaultBaud,
	Parity:      DefaultParity,
	ReadTimeout: DefaultReadTimeout,
}

func init() {
	if val := os.Getenv("FXBOARD_PORT"); val != "" {
		defaultConfig.Name = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Name, "port", defaultConfig.Name, "Serial port of the board.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Baud rate.")
	flag.StringVar(&defaultConfig.Parity, "parity", defaultConfig.Parity, "Parity: none, odd, even.")
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

// ParseParity converts a parity name.
func ParseParity(name string) (tarm.Parity, error) {
	switch strings.ToLower(name) {
	case "", "none", "n":
		return tarm.ParityNone, nil
	case "odd", "o":
		return tarm.ParityOdd, nil
	case "even", "e":
		return tarm.ParityEven, nil
	default:
		return tarm.ParityNone, fmt.Errorf("unknown parity %q", name)
	}
}

// Port is an opened serial port.
type Port struct {
	*tarm.Port
	Name string
}

// Open opens the serial port.
func (c *Config) Open() (*Port, error) {
	parity, err := ParseParity(c.Parity)
	if err != nil {
		return nil, err
	}
	readTimeout := c.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	p, err := tarm.OpenPort(&tarm.Config{
		Name:        c.Name,
		Baud:        c.Baud,
		Size:        8,
		Parity:      parity,
		StopBits:    tarm.Stop1,
		ReadTimeout: readTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Name, err)
	}
	return &Port{Port: p, Name: c.Name}, nil
}

// NewLink creates a comm.Link on the port. Reads return on idle.
func (p *Port) NewLink() *comm.Link {
	link := comm.NewLink(p)
	link.ReadTimeout = true
	return link
}
