package device

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/fxboard/pkg/l0/comm"
)

func readReply(t *testing.T, e *Emulator) []byte {
	t.Helper()
	b := make([]byte, comm.FrameSize)
	_, err := io.ReadFull(e, b)
	require.NoError(t, err)
	return b
}

func TestEmulatorReadWrite(t *testing.T) {
	e := NewEmulator()
	defer e.Close()

	_, err := comm.WriteCommand(0x0101, 12).Frame().WriteTo(e)
	require.NoError(t, err)
	v, err := comm.DecodeReply(readReply(t, e))
	require.NoError(t, err)
	require.Equal(t, uint32(12), v)
	require.Equal(t, uint32(12), e.Register(0x0101))

	_, err = comm.ReadCommand(0x0101).Frame().WriteTo(e)
	require.NoError(t, err)
	v, err = comm.DecodeReply(readReply(t, e))
	require.NoError(t, err)
	require.Equal(t, uint32(12), v)
	require.Equal(t, 2, e.Commands())
}

func TestEmulatorResync(t *testing.T) {
	e := NewEmulator()
	defer e.Close()
	e.SetRegister(7, 99)

	f := comm.ReadCommand(7).Frame()
	// a truncated frame followed by a complete one.
	stream := append(append([]byte{}, f[3:]...), f[:]...)
	_, err := e.Write(stream[:2])
	require.NoError(t, err)
	_, err = e.Write(stream[2:])
	require.NoError(t, err)
	v, err := comm.DecodeReply(readReply(t, e))
	require.NoError(t, err)
	require.Equal(t, uint32(99), v)
	require.Equal(t, 1, e.Commands())
}

func TestEmulatorRejectsReplyFrames(t *testing.T) {
	e := NewEmulator()
	defer e.Close()
	reply := comm.EncodeReply(1)
	_, err := e.Write(reply[:])
	require.NoError(t, err)
	require.Zero(t, e.Commands())
}

func TestEmulatorClose(t *testing.T) {
	e := NewEmulator()
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	_, err := e.Read(make([]byte, 1))
	require.Equal(t, io.EOF, err)
	_, err = e.Write([]byte{0})
	require.Equal(t, io.ErrClosedPipe, err)
}

func newClient(t *testing.T, e *Emulator) (*comm.Client, func()) {
	link := comm.NewLink(e)
	link.Timeout = 50 * time.Millisecond
	client := comm.NewClient(link)
	ctx, cancel := context.WithCancel(context.Background())
	go client.Run(ctx)
	for i := 0; !link.Ready(); i++ {
		require.True(t, i < 100, "link not ready")
		time.Sleep(time.Millisecond)
	}
	return client, cancel
}

func TestClientWithEmulator(t *testing.T) {
	e := NewEmulator()
	defer e.Close()
	client, cancel := newClient(t, e)
	defer cancel()

	ctx := context.Background()
	require.NoError(t, client.WriteVerify(ctx, 0x0304, 0xcafebabe))
	v, err := client.ReadRegister(ctx, 0x0304)
	require.NoError(t, err)
	require.Equal(t, uint32(0xcafebabe), v)
}

func TestClientWithFaultyEmulator(t *testing.T) {
	e := NewEmulator()
	defer e.Close()
	var replies int
	e.Faults = func(reply comm.Frame) []byte {
		replies++
		switch replies {
		case 1:
			// flip the marker of byte 2: reply looks like a command.
			reply[2] |= 0x80
		case 2:
			return nil
		}
		return reply[:]
	}
	client, cancel := newClient(t, e)
	defer cancel()

	v, err := client.Do(context.Background(), comm.ReadCommand(1))
	require.True(t, errors.Is(err, comm.ErrFraming))
	require.Zero(t, v)
	_, err = client.Do(context.Background(), comm.ReadCommand(1))
	require.Equal(t, comm.ErrNoReply, err)

	e.SetRegister(1, 3)
	v, err = client.ReadRegister(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, uint32(3), v)
}
