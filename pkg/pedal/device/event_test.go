package device

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	testCases := []struct {
		raw []byte
		ev  Event
		err error
	}{
		{
			raw: []byte{0x10, 0x27, 0, 0, 0xff, 0x7f, 0x02, 1},
			ev:  Event{Time: 10000, Value: AxisMax, Kind: KindAxis, Index: 1},
		},
		{
			raw: []byte{0, 0, 0, 0, 0x01, 0x80, 0x02, 0},
			ev:  Event{Value: -32767, Kind: KindAxis},
		},
		{
			raw: []byte{1, 0, 0, 0, 1, 0, 0x81, 3},
			ev:  Event{Time: 1, Value: 1, Kind: KindButton, Index: 3, Init: true},
		},
		{
			raw: []byte{0, 0, 0, 0, 0, 0, 0x04, 0},
			ev:  Event{Kind: Kind(4)},
			err: ErrUnknownEvent,
		},
		{
			raw: []byte{0, 0, 0},
			err: io.ErrUnexpectedEOF,
		},
	}
	for _, tc := range testCases {
		ev, err := DecodeEvent(tc.raw)
		require.Equal(t, tc.err, err, "%v", tc.raw)
		require.Equal(t, tc.ev, ev, "%v", tc.raw)
	}
}

func TestEventString(t *testing.T) {
	require.Equal(t, "axis 0: -5", Event{Kind: KindAxis, Value: -5}.String())
	require.Equal(t, "[INIT] button 2: 1", Event{Kind: KindButton, Index: 2, Value: 1, Init: true}.String())
	require.True(t, Event{Kind: KindButton, Value: 1}.Pressed())
	require.False(t, Event{Kind: KindAxis, Value: 1}.Pressed())
}
