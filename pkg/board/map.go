// Package board maps the effect parameters of the audio-effects
// board onto its registers and exposes them as an L1 controller.
package board

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Param is a named effect parameter stored in one register.
type Param struct {
	Name    string `toml:"name"`
	Address uint16 `toml:"address"`
	// Max is the largest accepted value. Zero with no Values accepts
	// any 32-bit value.
	Max uint32 `toml:"max"`
	// Values, if set, lists all accepted values.
	Values      []uint32 `toml:"values"`
	ReadOnly    bool     `toml:"read_only"`
	Description string   `toml:"description"`
}

// ValueError is returned when a value is not accepted by a Param.
type ValueError struct {
	Param string
	Value uint32
	Max   uint32
	Set   []uint32
}

// Error implements error.
func (e *ValueError) Error() string {
	if len(e.Set) > 0 {
		return fmt.Sprintf("%s: value %d not in %v", e.Param, e.Value, e.Set)
	}
	return fmt.Sprintf("%s: value %d out of range 0-%d", e.Param, e.Value, e.Max)
}

// UnknownParamError is returned for names not in the Map.
type UnknownParamError struct {
	Name string
}

// Error implements error.
func (e *UnknownParamError) Error() string {
	return fmt.Sprintf("unknown parameter %q", e.Name)
}

// Check validates a value for the parameter.
func (p *Param) Check(value uint32) error {
	if len(p.Values) > 0 {
		for _, v := range p.Values {
			if v == value {
				return nil
			}
		}
		return &ValueError{Param: p.Name, Value: value, Set: p.Values}
	}
	if p.Max != 0 && value > p.Max {
		return &ValueError{Param: p.Name, Value: value, Max: p.Max}
	}
	return nil
}

// Range describes the accepted values for display.
func (p *Param) Range() string {
	switch {
	case len(p.Values) > 0:
		vals := make([]string, len(p.Values))
		for i, v := range p.Values {
			vals[i] = fmt.Sprint(v)
		}
		return "{" + strings.Join(vals, ",") + "}"
	case p.Max == 1:
		return "on/off"
	case p.Max != 0:
		return fmt.Sprintf("0-%d", p.Max)
	}
	return "any"
}

// Map is the register map of the board.
type Map struct {
	params []Param
	byName map[string]int
}

// NewMap validates the parameters and creates a Map. Names and
// addresses must be unique.
func NewMap(params []Param) (*Map, error) {
	m := &Map{byName: make(map[string]int, len(params))}
	addrs := make(map[uint16]string, len(params))
	for i, p := range params {
		if p.Name == "" {
			return nil, fmt.Errorf("parameter #%d: missing name", i)
		}
		if _, exists := m.byName[p.Name]; exists {
			return nil, fmt.Errorf("parameter %q: duplicated", p.Name)
		}
		if other, exists := addrs[p.Address]; exists {
			return nil, fmt.Errorf("parameter %q: address 0x%04x used by %q", p.Name, p.Address, other)
		}
		m.byName[p.Name] = i
		addrs[p.Address] = p.Name
	}
	m.params = append(m.params, params...)
	return m, nil
}

// Lookup finds a parameter by name.
func (m *Map) Lookup(name string) (*Param, error) {
	i, ok := m.byName[name]
	if !ok {
		return nil, &UnknownParamError{Name: name}
	}
	return &m.params[i], nil
}

// ByAddress finds the parameter stored in the register.
func (m *Map) ByAddress(address uint16) (*Param, bool) {
	for i := range m.params {
		if m.params[i].Address == address {
			return &m.params[i], true
		}
	}
	return nil, false
}

// Params returns all parameters in map order.
func (m *Map) Params() []Param {
	return append([]Param(nil), m.params...)
}

// Names returns sorted parameter names.
func (m *Map) Names() []string {
	names := make([]string, 0, len(m.params))
	for _, p := range m.params {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// mapFile is the TOML layout of a register map file:
//
//	[[param]]
//	name = "chorus.level"
//	address = 0x0101
//	max = 15
type mapFile struct {
	Params []Param `toml:"param"`
}

// DecodeMap reads a register map in TOML.
func DecodeMap(r io.Reader) (*Map, error) {
	var f mapFile
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, err
	}
	return newMapFromFile(&f, md)
}

// LoadMap loads a register map file in TOML.
func LoadMap(path string) (*Map, error) {
	var f mapFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, err
	}
	m, err := newMapFromFile(&f, md)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func newMapFromFile(f *mapFile, md toml.MetaData) (*Map, error) {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return NewMap(f.Params)
}

// Register blocks of the effects.
const (
	ChorusBase     uint16 = 0x0100
	DistortionBase uint16 = 0x0200
	CompressorBase uint16 = 0x0300
	MeterBase      uint16 = 0x0400
)

var defaultParams = []Param{
	{Name: "chorus.enable", Address: ChorusBase + 0, Max: 1, Description: "Chorus on/off"},
	{Name: "chorus.level", Address: ChorusBase + 1, Max: 15, Description: "Chorus wet level"},
	{Name: "chorus.width", Address: ChorusBase + 2, Max: 255, Description: "Modulation width"},
	{Name: "chorus.rate", Address: ChorusBase + 3, Max: 3, Description: "Modulation rate"},
	{Name: "chorus.delay", Address: ChorusBase + 4, Max: 2047, Description: "Base delay in samples"},
	{Name: "chorus.voices", Address: ChorusBase + 5, Values: []uint32{1, 2, 4}, Description: "Number of voices"},
	{Name: "distortion.enable", Address: DistortionBase + 0, Max: 1, Description: "Distortion on/off"},
	{Name: "compressor.enable", Address: CompressorBase + 0, Max: 1, Description: "Compressor on/off"},
	{Name: "compressor.attack", Address: CompressorBase + 1, Max: 7, Description: "Attack time"},
	{Name: "compressor.release", Address: CompressorBase + 2, Max: 7, Description: "Release time"},
	{Name: "compressor.threshold", Address: CompressorBase + 3, Max: 31, Description: "Threshold"},
	{Name: "compressor.ratio", Address: CompressorBase + 4, Max: 63, Description: "Compression ratio"},
	{Name: "compressor.makeup_gain", Address: CompressorBase + 5, Max: 15, Description: "Makeup gain"},
	{Name: "meter.input", Address: MeterBase + 0, ReadOnly: true, Description: "Input signal amplitude"},
	{Name: "meter.output", Address: MeterBase + 1, ReadOnly: true, Description: "Output signal amplitude"},
}

// DefaultMap is the register map of the stock firmware.
func DefaultMap() *Map {
	m, err := NewMap(defaultParams)
	if err != nil {
		panic(err)
	}
	return m
}
