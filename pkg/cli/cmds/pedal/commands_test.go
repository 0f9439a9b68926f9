package pedal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/fxboard/pkg/pedal/msgs"
)

func TestParseConnectArgs(t *testing.T) {
	testCases := []struct {
		args    []string
		msg     *msgs.PedalConnect
		ctlType string
	}{
		{nil, nil, BoardType},
		{[]string{"fxboard2"}, nil, "fxboard2"},
		{[]string{"fxboard", "stage"}, &msgs.PedalConnect{Type: "fxboard", ID: "stage"}, ""},
		{
			[]string{"fxboard", "stage", "stream://10.0.0.2:7070"},
			&msgs.PedalConnect{Type: "fxboard", ID: "stage", RegistryURL: "stream://10.0.0.2:7070"},
			"",
		},
	}
	for _, tc := range testCases {
		msg, ctlType := ParseConnectArgs(tc.args)
		require.Equal(t, tc.msg, msg, "%v", tc.args)
		require.Equal(t, tc.ctlType, ctlType, "%v", tc.args)
	}
}
