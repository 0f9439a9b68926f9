package comm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// sampleValues covers boundaries, every single bit and a spread of
// values across the 32-bit range.
func sampleValues() []uint32 {
	values := []uint32{0, 1, 0x7f, 0x80, 0x0fffffff, 0x10000000, 0x7fffffff, 0x80000000, 0xffffffff}
	for bit := uint(0); bit < 32; bit++ {
		values = append(values, 1<<bit, ^uint32(1<<bit))
	}
	for v := uint64(3); v <= 0xffffffff; v += 65521 * 257 {
		values = append(values, uint32(v))
	}
	return values
}

func TestEncodeCommand(t *testing.T) {
	testCases := []struct {
		name    string
		address uint16
		op      Operation
		value   uint32
		expect  Frame
	}{
		{"write low address", 0x0004, OpWrite, 0x0000000f, Frame{0x40, 0x80, 0xc0, 0x00, 0x80, 0x00, 0x8f}},
		{"write aligned address", 0x0008, OpWrite, 0x0000000f, Frame{0x40, 0x81, 0x80, 0x00, 0x80, 0x00, 0x8f}},
		{"read zero", 0x0000, OpRead, 0, Frame{0x00, 0x80, 0x80, 0x00, 0x80, 0x00, 0x80}},
		{"read all ones", 0xffff, OpRead, 0xffffffff, Frame{0x3f, 0xff, 0xff, 0x7f, 0xff, 0x7f, 0xff}},
		{"write mixed", 0xabcd, OpWrite, 0x12345678, Frame{0x6a, 0xf9, 0xd1, 0x11, 0xd1, 0x2c, 0xf8}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := EncodeCommand(tc.address, tc.op, tc.value)
			require.Equal(t, tc.expect, f)
			require.Equal(t, CommandMarkers, f.Markers())
			var buf bytes.Buffer
			n, err := f.WriteTo(&buf)
			require.NoError(t, err)
			require.Equal(t, int64(FrameSize), n)
			require.Equal(t, tc.expect[:], buf.Bytes())
		})
	}
}

func TestCommandMarkersAllAddresses(t *testing.T) {
	values := []uint32{0, 0x55555555, 0xaaaaaaaa, 0xffffffff}
	for address := 0; address <= 0xffff; address++ {
		for _, value := range values {
			for _, op := range []Operation{OpRead, OpWrite} {
				f := EncodeCommand(uint16(address), op, value)
				if f.Markers() != CommandMarkers {
					t.Fatalf("address 0x%04x value 0x%08x: markers %07b", address, value, f.Markers())
				}
				cmd, err := ParseCommand(f[:])
				if err != nil || cmd != (Command{Address: uint16(address), Op: op, Value: value}) {
					t.Fatalf("address 0x%04x value 0x%08x: parsed %v, %v", address, value, cmd, err)
				}
			}
		}
	}
}

func TestCommandValueRoundTrip(t *testing.T) {
	for _, v := range sampleValues() {
		f := WriteCommand(0x1234, v).Frame()
		require.Equal(t, CommandMarkers, f.Markers())
		require.Equalf(t, uint64(v), valueLayout.get(f[:]), "value 0x%08x", v)
	}
}

func TestReadCommandCarriesValueField(t *testing.T) {
	f := EncodeCommand(0x0010, OpRead, 0xdeadbeef)
	cmd, err := ParseCommand(f.Bytes())
	require.NoError(t, err)
	require.Equal(t, OpRead, cmd.Op)
	require.Equal(t, uint32(0xdeadbeef), cmd.Value)
	require.Equal(t, byte(0), f[0]&writeFlag)
	require.Equal(t, ReadCommand(0x0010), Command{Address: 0x0010})
}

func TestNewCommand(t *testing.T) {
	cmd, err := NewCommand(0xffff, OpWrite, 0xffffffff)
	require.NoError(t, err)
	require.Equal(t, WriteCommand(0xffff, 0xffffffff), cmd)

	_, err = NewCommand(0x10000, OpWrite, 0)
	require.Equal(t, &RangeError{Field: "address", Value: 0x10000, Bits: 16}, err)

	_, err = NewCommand(0, OpWrite, 0x100000000)
	require.Equal(t, &RangeError{Field: "value", Value: 0x100000000, Bits: 32}, err)
}

func TestCommandTruncation(t *testing.T) {
	wide := uint32(0x1abcd)
	require.Equal(t, EncodeCommand(0xabcd, OpWrite, 1), EncodeCommand(uint16(wide), OpWrite, 1))
}

func TestParseCommandRejects(t *testing.T) {
	_, err := ParseCommand([]byte{0x40, 0x80})
	require.True(t, errors.Is(err, ErrFraming))
	require.Equal(t, -1, err.(*FramingError).Index)

	reply := EncodeReply(5)
	_, err = ParseCommand(reply[:])
	require.True(t, errors.Is(err, ErrFraming))
	require.Equal(t, 2, err.(*FramingError).Index)
	require.Equal(t, ReplyMarkers, err.(*FramingError).Markers)
}

func TestOperationString(t *testing.T) {
	require.Equal(t, "read", OpRead.String())
	require.Equal(t, "write", OpWrite.String())
	require.Equal(t, "op(7)", Operation(7).String())
	require.Equal(t, "write 0x0004=0x0000000f", WriteCommand(4, 15).String())
	require.Equal(t, "read 0x0004", ReadCommand(4).String())
}
