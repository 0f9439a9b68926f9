package board

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/fxboard/pkg/board/msgs"
	"github.com/robotalks/fxboard/pkg/l0/comm"
)

func TestParseRegisterCommand(t *testing.T) {
	testCases := []struct {
		op   comm.Operation
		args []string
		cmd  comm.Command
		err  string
	}{
		{comm.OpRead, []string{"0x0104"}, comm.ReadCommand(0x0104), ""},
		{comm.OpRead, []string{"260"}, comm.ReadCommand(260), ""},
		{comm.OpWrite, []string{"0x0004", "0xF"}, comm.WriteCommand(4, 15), ""},
		{comm.OpWrite, []string{"1", "0b101", "verify"}, comm.WriteCommand(1, 5), ""},
		{comm.OpRead, nil, comm.Command{}, "expect 1 arguments"},
		{comm.OpWrite, []string{"1"}, comm.Command{}, "expect 2 arguments"},
		{comm.OpRead, []string{"abc"}, comm.Command{}, `invalid address "abc"`},
		{comm.OpWrite, []string{"1", "-1"}, comm.Command{}, `invalid value "-1"`},
		{comm.OpRead, []string{"0x10000"}, comm.Command{}, "address 0x10000 exceeds 16 bits"},
		{comm.OpWrite, []string{"1", "0x100000000"}, comm.Command{}, "value 0x100000000 exceeds 32 bits"},
	}
	for _, tc := range testCases {
		cmd, err := ParseRegisterCommand(tc.op, tc.args)
		if tc.err != "" {
			require.EqualError(t, err, tc.err, "%v", tc.args)
			continue
		}
		require.NoError(t, err, "%v", tc.args)
		require.Equal(t, tc.cmd, cmd)
	}
}

func TestParseParamValue(t *testing.T) {
	for s, expected := range map[string]uint32{"on": 1, "off": 0, "12": 12, "0x7ff": 2047} {
		val, err := ParseParamValue(s)
		require.NoError(t, err, s)
		require.Equal(t, expected, val, s)
	}
	_, err := ParseParamValue("0x100000000")
	require.Error(t, err)
	_, err = ParseParamValue("loud")
	require.Error(t, err)
}

func TestParamOf(t *testing.T) {
	p := ParamOf(&msgs.ParamInfo{Name: "chorus.voices", Address: 0x0105, Values: []uint32{1, 2, 4}})
	require.Equal(t, uint16(0x0105), p.Address)
	require.Equal(t, "{1,2,4}", p.Range())
	onOff := ParamOf(&msgs.ParamInfo{Max: 1})
	require.Equal(t, "on/off", onOff.Range())
}
