package board

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/fxboard/pkg/l0/comm"
	"github.com/robotalks/fxboard/pkg/l0/device"
)

type emulatedBoard struct {
	*Board
	emu    *device.Emulator
	client *comm.Client
	cancel func()
	done   chan error
}

func newEmulatedBoard(t *testing.T) *emulatedBoard {
	eb := &emulatedBoard{emu: device.NewEmulator(), done: make(chan error, 1)}
	link := comm.NewLink(eb.emu)
	link.Timeout = 100 * time.Millisecond
	eb.client = comm.NewClient(link)
	eb.Board = New(DefaultMap(), eb.client)
	var ctx context.Context
	ctx, eb.cancel = context.WithCancel(context.Background())
	go func() { eb.done <- eb.client.Run(ctx) }()
	for i := 0; !link.Ready(); i++ {
		require.True(t, i < 100, "link not ready")
		time.Sleep(time.Millisecond)
	}
	t.Cleanup(eb.stop)
	return eb
}

func (eb *emulatedBoard) stop() {
	eb.cancel()
	eb.emu.Close()
	<-eb.done
}

func TestBoardSetGet(t *testing.T) {
	eb := newEmulatedBoard(t)
	ctx := context.Background()

	require.NoError(t, eb.Set(ctx, "chorus.delay", 1500))
	require.Equal(t, uint32(1500), eb.emu.Register(ChorusBase+4))
	val, err := eb.Get(ctx, "chorus.delay")
	require.NoError(t, err)
	require.Equal(t, uint32(1500), val)

	eb.Verify = true
	require.NoError(t, eb.Set(ctx, "compressor.ratio", 63))
	require.Equal(t, uint32(63), eb.emu.Register(CompressorBase+4))
}

func TestBoardSetRejects(t *testing.T) {
	eb := newEmulatedBoard(t)
	ctx := context.Background()

	err := eb.Set(ctx, "chorus.level", 16)
	require.IsType(t, &ValueError{}, err)
	err = eb.Set(ctx, "meter.input", 1)
	require.True(t, errors.Is(err, ErrReadOnly))
	err = eb.Set(ctx, "reverb.level", 1)
	require.IsType(t, &UnknownParamError{}, err)
	_, err = eb.Get(ctx, "reverb.level")
	require.IsType(t, &UnknownParamError{}, err)
	require.Zero(t, eb.emu.Commands())
}

func TestBoardSnapshot(t *testing.T) {
	eb := newEmulatedBoard(t)
	eb.emu.SetRegister(MeterBase, 42)
	eb.emu.SetRegister(ChorusBase+5, 4)
	vals, err := eb.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, vals, 15)
	require.Equal(t, uint32(42), vals["meter.input"])
	require.Equal(t, uint32(4), vals["chorus.voices"])
}

type failingRegs struct {
	err error
}

func (r *failingRegs) ReadRegister(context.Context, uint16) (uint32, error) { return 0, r.err }
func (r *failingRegs) WriteRegister(context.Context, uint16, uint32) error  { return r.err }
func (r *failingRegs) WriteVerify(context.Context, uint16, uint32) error    { return r.err }

func TestBoardWrapsErrors(t *testing.T) {
	b := New(DefaultMap(), &failingRegs{err: comm.ErrNoReply})
	ctx := context.Background()

	_, err := b.Get(ctx, "chorus.rate")
	require.True(t, errors.Is(err, comm.ErrNoReply))
	require.Equal(t, "read chorus.rate: "+comm.ErrNoReply.Error(), err.Error())

	err = b.Set(ctx, "chorus.rate", 2)
	require.True(t, errors.Is(err, comm.ErrNoReply))

	vals, err := b.Snapshot(ctx)
	require.Error(t, err)
	require.Empty(t, vals)
}
