package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/fxboard/pkg/l1/msgs"
)

func TestParamListOverTyped(t *testing.T) {
	list := &ParamList{Params: []*ParamInfo{
		{Name: "chorus.voices", Address: 0x0105, Values: []uint32{1, 2, 4}},
		{Name: "meter.input", Address: 0x0400, ReadOnly: true},
	}}
	typed, err := msgs.TypedFrom(list)
	require.NoError(t, err)
	require.True(t, typed.IsReply())
	pkt, err := typed.Encode()
	require.NoError(t, err)

	decoded, err := msgs.DecodeTyped(pkt)
	require.NoError(t, err)
	msg, err := decoded.Decode()
	require.NoError(t, err)
	require.Equal(t, list, msg)
}

func TestTypeIDKinds(t *testing.T) {
	for _, id := range []uint32{RegisterReadTypeID, RegisterWriteTypeID, ParamGetTypeID, ParamSetTypeID, ParamListQueryTypeID} {
		typed := &msgs.Typed{TypeId: id}
		require.True(t, typed.IsCommand(), "0x%08x", id)
		require.False(t, typed.IsReply(), "0x%08x", id)
		_, ok := msgs.MessageTypes[id]
		require.True(t, ok)
	}
	for _, id := range []uint32{RegisterValueTypeID, ParamValueTypeID, ParamListTypeID} {
		require.True(t, (&msgs.Typed{TypeId: id}).IsReply(), "0x%08x", id)
	}
	require.True(t, (&msgs.Typed{TypeId: ParamChangedEventTypeID}).IsEvent())
}
