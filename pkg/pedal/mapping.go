// Package pedal is an L2 controller turning a foot controller into
// parameter changes of an effects board.
package pedal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/robotalks/fxboard/pkg/board"
	boardmsgs "github.com/robotalks/fxboard/pkg/board/msgs"
	"github.com/robotalks/fxboard/pkg/pedal/device"
)

// AxisBinding sweeps a parameter over its range with an axis.
type AxisBinding struct {
	Axis   uint8  `toml:"axis"`
	Param  string `toml:"param"`
	Invert bool   `toml:"invert"`
}

// Button modes
const (
	ModeToggle    = "toggle"
	ModeMomentary = "momentary"
)

// ButtonBinding switches an on/off parameter with a button.
type ButtonBinding struct {
	Button uint8  `toml:"button"`
	Param  string `toml:"param"`
	// Mode is ModeToggle (default) or ModeMomentary.
	Mode string `toml:"mode"`
}

// Mapping binds axes and buttons to parameters. In TOML:
//
//	[[axis]]
//	axis = 0
//	param = "chorus.level"
//
//	[[button]]
//	button = 0
//	param = "chorus.enable"
type Mapping struct {
	Axes    []AxisBinding   `toml:"axis"`
	Buttons []ButtonBinding `toml:"button"`
}

// DefaultMapping is an expression pedal on the chorus level and three
// footswitches on the effects.
func DefaultMapping() *Mapping {
	return &Mapping{
		Axes: []AxisBinding{{Axis: 0, Param: "chorus.level"}},
		Buttons: []ButtonBinding{
			{Button: 0, Param: "chorus.enable"},
			{Button: 1, Param: "distortion.enable"},
			{Button: 2, Param: "compressor.enable"},
		},
	}
}

// LoadMapping loads a Mapping file.
func LoadMapping(path string) (*Mapping, error) {
	var m Mapping
	md, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return &m, nil
}

// Translator converts device events into ParamSet commands using the
// parameter ranges reported by the board.
type Translator struct {
	axes    map[uint8]axisTarget
	buttons map[uint8]buttonTarget
	values  map[string]uint32
}

type axisTarget struct {
	param  board.Param
	invert bool
}

type buttonTarget struct {
	param     string
	momentary bool
}

// NewTranslator validates the Mapping against the parameters.
func NewTranslator(m *Mapping, list *boardmsgs.ParamList) (*Translator, error) {
	params := make(map[string]board.Param, len(list.Params))
	for _, info := range list.Params {
		params[info.Name] = board.Param{
			Name:     info.Name,
			Address:  uint16(info.Address),
			Max:      info.Max,
			Values:   info.Values,
			ReadOnly: info.ReadOnly,
		}
	}
	writable := func(name string) (board.Param, error) {
		p, ok := params[name]
		if !ok {
			return p, &board.UnknownParamError{Name: name}
		}
		if p.ReadOnly {
			return p, fmt.Errorf("%s: %w", name, board.ErrReadOnly)
		}
		return p, nil
	}

	t := &Translator{
		axes:    make(map[uint8]axisTarget),
		buttons: make(map[uint8]buttonTarget),
		values:  make(map[string]uint32),
	}
	for _, b := range m.Axes {
		p, err := writable(b.Param)
		if err != nil {
			return nil, fmt.Errorf("axis %d: %w", b.Axis, err)
		}
		if p.Max == 0 && len(p.Values) == 0 {
			return nil, fmt.Errorf("axis %d: %s has no range", b.Axis, p.Name)
		}
		t.axes[b.Axis] = axisTarget{param: p, invert: b.Invert}
	}
	for _, b := range m.Buttons {
		p, err := writable(b.Param)
		if err != nil {
			return nil, fmt.Errorf("button %d: %w", b.Button, err)
		}
		if p.Max != 1 {
			return nil, fmt.Errorf("button %d: %s is not on/off", b.Button, p.Name)
		}
		switch b.Mode {
		case "", ModeToggle:
			t.buttons[b.Button] = buttonTarget{param: p.Name}
		case ModeMomentary:
			t.buttons[b.Button] = buttonTarget{param: p.Name, momentary: true}
		default:
			return nil, fmt.Errorf("button %d: unknown mode %q", b.Button, b.Mode)
		}
	}
	return t, nil
}

// Bound returns the sorted names of bound parameters.
func (t *Translator) Bound() []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, a := range t.axes {
		add(a.param.Name)
	}
	for _, b := range t.buttons {
		add(b.param)
	}
	sort.Strings(names)
	return names
}

// Observe records the current value of a parameter, e.g. from a
// ParamChanged event, so toggles flip from the real state.
func (t *Translator) Observe(name string, value uint32) {
	t.values[name] = value
}

// Translate returns the command for the event, or nil when the event
// isn't bound or doesn't change the parameter.
func (t *Translator) Translate(ev device.Event) *boardmsgs.ParamSet {
	var name string
	var value uint32
	switch ev.Kind {
	case device.KindAxis:
		target, ok := t.axes[ev.Index]
		if !ok {
			return nil
		}
		name, value = target.param.Name, axisValue(target.param, ev.Value, target.invert)
	case device.KindButton:
		target, ok := t.buttons[ev.Index]
		if !ok {
			return nil
		}
		name = target.param
		switch {
		case target.momentary:
			if ev.Pressed() {
				value = 1
			}
		case ev.Init || !ev.Pressed():
			return nil
		default:
			value = 1 - t.values[name]&1
		}
	default:
		return nil
	}
	if last, ok := t.values[name]; ok && last == value {
		return nil
	}
	t.values[name] = value
	return &boardmsgs.ParamSet{Name: name, Value: value}
}

// axisValue maps -AxisMax..AxisMax onto the parameter range.
func axisValue(p board.Param, raw int16, invert bool) uint32 {
	pos := int64(raw) + device.AxisMax
	const span = 2 * device.AxisMax
	if pos < 0 {
		pos = 0
	}
	if invert {
		pos = span - pos
	}
	if n := int64(len(p.Values)); n > 0 {
		i := pos * n / (span + 1)
		return p.Values[i]
	}
	return uint32((pos*int64(p.Max) + span/2) / span)
}
