package comm

import "fmt"

// Operation selects command semantics.
type Operation byte

// Operations
const (
	OpRead Operation = iota
	OpWrite
)

// String implements fmt.Stringer.
func (op Operation) String() string {
	switch op {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	default:
		return fmt.Sprintf("op(%d)", byte(op))
	}
}

// Field widths in bits.
const (
	AddressBits uint = 16
	ValueBits   uint = 32
)

// Command is a register access request.
type Command struct {
	Address uint16
	Op      Operation
	Value   uint32
}

// NewCommand creates a Command from untyped numbers, rejecting
// address and value which don't fit in their fields instead of
// truncating them.
func NewCommand(address uint64, op Operation, value uint64) (Command, error) {
	if address>>AddressBits != 0 {
		return Command{}, &RangeError{Field: "address", Value: address, Bits: AddressBits}
	}
	if value>>ValueBits != 0 {
		return Command{}, &RangeError{Field: "value", Value: value, Bits: ValueBits}
	}
	return Command{Address: uint16(address), Op: op, Value: uint32(value)}, nil
}

// ReadCommand creates a read Command. The value field is zero.
func ReadCommand(address uint16) Command {
	return Command{Address: address, Op: OpRead}
}

// WriteCommand creates a write Command.
func WriteCommand(address uint16, value uint32) Command {
	return Command{Address: address, Op: OpWrite, Value: value}
}

// Frame encodes the command. The value is encoded for reads too,
// the board ignores it.
func (c Command) Frame() (f Frame) {
	if c.Op == OpWrite {
		f[0] = writeFlag
	}
	addressLayout.put(&f, uint64(c.Address))
	valueLayout.put(&f, uint64(c.Value))
	f.setMarkers(CommandMarkers)
	return
}

// String implements fmt.Stringer.
func (c Command) String() string {
	if c.Op == OpRead {
		return fmt.Sprintf("read 0x%04x", c.Address)
	}
	return fmt.Sprintf("%s 0x%04x=0x%08x", c.Op, c.Address, c.Value)
}

// EncodeCommand encodes a command frame. It is total over all
// addresses and values.
func EncodeCommand(address uint16, op Operation, value uint32) Frame {
	return Command{Address: address, Op: op, Value: value}.Frame()
}

// ParseCommand decodes a command frame as the board does. The marker
// sequence must be exactly CommandMarkers.
func ParseCommand(b []byte) (Command, error) {
	if len(b) != FrameSize {
		return Command{}, &FramingError{Length: len(b), Index: -1}
	}
	if m := MarkersOf(b); m != CommandMarkers {
		return Command{}, &FramingError{
			Length:   len(b),
			Index:    firstMismatch(m, CommandMarkers),
			Markers:  m,
			Expected: CommandMarkers,
		}
	}
	cmd := Command{
		Address: uint16(addressLayout.get(b)),
		Value:   uint32(valueLayout.get(b)),
	}
	if b[0]&writeFlag != 0 {
		cmd.Op = OpWrite
	}
	return cmd, nil
}

func firstMismatch(m, expected byte) int {
	for i := 0; i < FrameSize; i++ {
		bit := byte(1) << uint(FrameSize-1-i)
		if m&bit != expected&bit {
			return i
		}
	}
	return -1
}
