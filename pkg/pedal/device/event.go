// Package device reads foot controllers through the Linux joystick
// interface, which USB expression pedals and footswitches use.
package device

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// EventSize is the size of an event record read from the device.
const EventSize = 8

// Kind of an Event.
type Kind uint8

// Kinds
const (
	KindButton Kind = 0x01
	KindAxis   Kind = 0x02
)

const kindInit uint8 = 0x80

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindButton:
		return "button"
	case KindAxis:
		return "axis"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// AxisMax is the magnitude of the axis value at either end.
const AxisMax = 32767

// Event is a change of an axis or a button.
type Event struct {
	// Time is the timestamp in milliseconds.
	Time uint32
	// Value is the axis position, or 1/0 for a pressed/released button.
	Value int16
	Kind  Kind
	Index uint8
	// Init marks the synthetic events reporting the initial state.
	Init bool
}

// Pressed tells whether a button event is a press.
func (e Event) Pressed() bool {
	return e.Kind == KindButton && e.Value != 0
}

// String implements fmt.Stringer.
func (e Event) String() string {
	prefix := ""
	if e.Init {
		prefix = "[INIT] "
	}
	return fmt.Sprintf("%s%s %d: %d", prefix, e.Kind, e.Index, e.Value)
}

// ErrUnknownEvent is returned for records which are neither axis nor button.
var ErrUnknownEvent = errors.New("unknown event")

// DecodeEvent decodes a little-endian event record.
func DecodeEvent(b []byte) (Event, error) {
	if len(b) < EventSize {
		return Event{}, io.ErrUnexpectedEOF
	}
	typ := b[6]
	ev := Event{
		Time:  binary.LittleEndian.Uint32(b[0:]),
		Value: int16(binary.LittleEndian.Uint16(b[4:])),
		Kind:  Kind(typ &^ kindInit),
		Index: b[7],
		Init:  typ&kindInit != 0,
	}
	if ev.Kind != KindButton && ev.Kind != KindAxis {
		return ev, ErrUnknownEvent
	}
	return ev, nil
}

// Device is an opened foot controller.
type Device interface {
	io.Closer
	// Index is the device number on the system.
	Index() int
	Name() string
	Axes() int
	Buttons() int
	// ReadEvent blocks for the next event.
	ReadEvent() (Event, error)
}

// ErrNotFound is returned by DetectAndOpen if no device is present.
var ErrNotFound = errors.New("no device found")
