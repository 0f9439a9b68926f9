package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypedCommandErr(t *testing.T) {
	typed, err := TypedFrom(NewCommandErrFromMsg("no reply"))
	require.NoError(t, err)
	typed.Sequence = 9
	require.True(t, typed.IsCommand())
	require.True(t, typed.IsReply())
	require.False(t, typed.IsEvent())

	pkt, err := typed.Encode()
	require.NoError(t, err)
	decoded, err := DecodeTyped(pkt)
	require.NoError(t, err)
	require.Equal(t, CommandErrTypeID, decoded.TypeId)
	require.Equal(t, uint32(9), decoded.Sequence)

	msg, err := decoded.Decode()
	require.NoError(t, err)
	require.Equal(t, "no reply", msg.(*CommandErr).Error())
}

func TestTypedUnknownType(t *testing.T) {
	typed := &Typed{TypeId: GroupCustom | 0x7ffe}
	_, err := typed.Decode()
	require.Equal(t, &UnknownTypeError{TypeID: GroupCustom | 0x7ffe}, err)
	require.Equal(t, "unknown type: 0x7f007ffe", err.Error())
}

func TestTypedNotSerializable(t *testing.T) {
	_, err := TypedFrom(nil)
	require.Equal(t, ErrNotSerializable, err)
}

func TestTypedKind(t *testing.T) {
	event := &Typed{TypeId: TypeIDKindEvent | GroupCustom | 1}
	require.True(t, event.IsEvent())
	require.False(t, event.IsCommand())
	require.False(t, event.IsReply())
	cmd := &Typed{TypeId: GroupCustom | 1}
	require.True(t, cmd.IsCommand())
	require.False(t, cmd.IsReply())
}
