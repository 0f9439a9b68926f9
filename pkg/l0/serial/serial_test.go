package serial

import (
	"testing"

	"github.com/stretchr/testify/require"
	tarm "github.com/tarm/serial"
)

func TestParseParity(t *testing.T) {
	testCases := []struct {
		name   string
		expect tarm.Parity
	}{
		{"", tarm.ParityNone},
		{"none", tarm.ParityNone},
		{"ODD", tarm.ParityOdd},
		{"o", tarm.ParityOdd},
		{"even", tarm.ParityEven},
	}
	for _, tc := range testCases {
		p, err := ParseParity(tc.name)
		require.NoError(t, err)
		require.Equal(t, tc.expect, p)
	}
	_, err := ParseParity("mark")
	require.Error(t, err)
}

func TestOpenInvalidParity(t *testing.T) {
	conf := NewConfig()
	conf.Parity = "bogus"
	_, err := conf.Open()
	require.Error(t, err)
}

func TestDefaults(t *testing.T) {
	conf := NewConfig()
	require.Equal(t, DefaultBaud, conf.Baud)
	require.Equal(t, DefaultParity, conf.Parity)
	conf.Baud = 9600
	require.Equal(t, DefaultBaud, Default().Baud)
}
