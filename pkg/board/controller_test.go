package board

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/fxboard/pkg/board/msgs"
	fx "github.com/robotalks/fxboard/pkg/framework"
	"github.com/robotalks/fxboard/pkg/l1"
	l1msgs "github.com/robotalks/fxboard/pkg/l1/msgs"
)

type recordingRegistrar struct {
	lock   sync.Mutex
	events []fx.Message
}

func (r *recordingRegistrar) SendEvent(ctx context.Context, msg fx.Message) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, msg)
	return nil
}

func (r *recordingRegistrar) take() []fx.Message {
	r.lock.Lock()
	defer r.lock.Unlock()
	events := r.events
	r.events = nil
	return events
}

type replyCommand struct {
	msg     fx.Message
	replyCh chan fx.Message
}

func newReplyCommand(msg fx.Message) *replyCommand {
	return &replyCommand{msg: msg, replyCh: make(chan fx.Message, 1)}
}

func (c *replyCommand) Msg() fx.Message { return c.msg }

func (c *replyCommand) Done(reply fx.Message) error {
	c.replyCh <- reply
	return nil
}

func newTestController(t *testing.T) (*Controller, *emulatedBoard, *recordingRegistrar) {
	eb := newEmulatedBoard(t)
	reg := &recordingRegistrar{}
	return NewController(eb.Board, reg), eb, reg
}

func TestControllerExecute(t *testing.T) {
	ctl, eb, reg := newTestController(t)
	ctx := context.Background()
	eb.emu.SetRegister(0x7777, 0xdeadbeef)

	testCases := []struct {
		cmd    fx.Message
		reply  fx.Message
		events []fx.Message
	}{
		{
			cmd:   &msgs.RegisterRead{Address: 0x7777},
			reply: &msgs.RegisterValue{Address: 0x7777, Value: 0xdeadbeef},
		},
		{
			cmd:    &msgs.RegisterWrite{Address: uint32(ChorusBase + 1), Value: 9},
			reply:  &msgs.RegisterValue{Address: uint32(ChorusBase + 1), Value: 9},
			events: []fx.Message{&msgs.ParamChanged{Name: "chorus.level", Value: 9}},
		},
		{
			cmd:   &msgs.RegisterWrite{Address: 0x7000, Value: 5, Verify: true},
			reply: &msgs.RegisterValue{Address: 0x7000, Value: 5},
		},
		{
			cmd:   &msgs.ParamGet{Name: "chorus.level"},
			reply: &msgs.ParamValue{Name: "chorus.level", Value: 9},
		},
		{
			cmd:    &msgs.ParamSet{Name: "chorus.voices", Value: 2},
			reply:  &msgs.ParamValue{Name: "chorus.voices", Value: 2},
			events: []fx.Message{&msgs.ParamChanged{Name: "chorus.voices", Value: 2}},
		},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.reply, ctl.Execute(ctx, tc.cmd), "%T", tc.cmd)
		require.Equal(t, tc.events, reg.take(), "%T", tc.cmd)
	}
	require.Equal(t, uint32(5), eb.emu.Register(0x7000))
}

func TestControllerExecuteErrors(t *testing.T) {
	ctl, eb, reg := newTestController(t)
	ctx := context.Background()

	testCases := []struct {
		cmd fx.Message
		msg string
	}{
		{&msgs.RegisterRead{Address: 0x10000}, ""},
		{&msgs.ParamSet{Name: "chorus.voices", Value: 3}, "chorus.voices: value 3 not in [1 2 4]"},
		{&msgs.ParamSet{Name: "meter.input", Value: 3}, "meter.input: parameter is read-only"},
		{&msgs.ParamGet{Name: "reverb"}, `unknown parameter "reverb"`},
		{&l1msgs.CommandOK{}, l1msgs.ErrUnsupportedCommand.Error()},
	}
	for _, tc := range testCases {
		reply := ctl.Execute(ctx, tc.cmd)
		cmdErr, ok := reply.(*l1msgs.CommandErr)
		require.True(t, ok, "%T: %v", tc.cmd, reply)
		if tc.msg != "" {
			require.Equal(t, tc.msg, cmdErr.Message)
		}
	}
	require.Empty(t, reg.take())
	require.Zero(t, eb.emu.Commands())
}

func TestControllerParamList(t *testing.T) {
	ctl, _, _ := newTestController(t)
	reply := ctl.Execute(context.Background(), &msgs.ParamListQuery{})
	list, ok := reply.(*msgs.ParamList)
	require.True(t, ok)
	require.Len(t, list.Params, 15)
	require.Equal(t, &msgs.ParamInfo{
		Name:        "chorus.voices",
		Address:     uint32(ChorusBase + 5),
		Values:      []uint32{1, 2, 4},
		Description: "Number of voices",
	}, list.Params[5])
	require.True(t, list.Params[14].ReadOnly)
}

func TestControllerPollMeters(t *testing.T) {
	ctl, eb, reg := newTestController(t)
	ctx := context.Background()

	ctl.PollMeters(ctx)
	require.Equal(t, []fx.Message{
		&msgs.ParamChanged{Name: "meter.input", Value: 0},
		&msgs.ParamChanged{Name: "meter.output", Value: 0},
	}, reg.take())

	ctl.PollMeters(ctx)
	require.Empty(t, reg.take())

	eb.emu.SetRegister(MeterBase+1, 17)
	ctl.PollMeters(ctx)
	require.Equal(t, []fx.Message{&msgs.ParamChanged{Name: "meter.output", Value: 17}}, reg.take())
}

func TestControllerInLoop(t *testing.T) {
	ctl, eb, _ := newTestController(t)
	ctl.PollInterval = 0
	eb.emu.SetRegister(ChorusBase+3, 2)

	loop := fx.NewLoop()
	loop.Interval = 5 * time.Millisecond
	loop.Add(ctl)
	get := newReplyCommand(&msgs.ParamGet{Name: "chorus.rate"})
	other := newReplyCommand(&l1msgs.CommandOK{})
	loop.PostMessage(&l1.CommandMsg{Command: get}, &l1.CommandMsg{Command: other})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	select {
	case reply := <-get.replyCh:
		require.Equal(t, &msgs.ParamValue{Name: "chorus.rate", Value: 2}, reply)
	case <-time.After(time.Second):
		t.Fatal("no reply")
	}
	cancel()
	require.Equal(t, context.Canceled, <-done)
	require.Empty(t, other.replyCh, "non-board commands are left for other controllers")
}

func TestControllerBusy(t *testing.T) {
	ctl := NewController(New(DefaultMap(), &failingRegs{}), nil)
	for i := 0; i < commandQueueSize; i++ {
		ctl.cmdCh <- newReplyCommand(&msgs.ParamListQuery{})
	}
	loop := fx.NewLoop()
	loop.AddController(fx.PrLvControl, ctl)
	busy := newReplyCommand(&msgs.ParamListQuery{})
	loop.PostMessage(&l1.CommandMsg{Command: busy})
	loop.TriggerNext()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)
	select {
	case reply := <-busy.replyCh:
		require.Equal(t, &l1msgs.CommandErr{Message: "board busy"}, reply)
	case <-time.After(time.Second):
		t.Fatal("no reply")
	}
}

func TestControllerStopRejectsQueued(t *testing.T) {
	ctl := NewController(New(DefaultMap(), &failingRegs{}), nil)
	ctl.PollInterval = 0
	var queued []*replyCommand
	for i := 0; i < 3; i++ {
		cmd := newReplyCommand(&msgs.ParamGet{Name: "chorus.level"})
		ctl.cmdCh <- cmd
		queued = append(queued, cmd)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, ctl.work(ctx))
	for _, cmd := range queued {
		select {
		case reply := <-cmd.replyCh:
			require.Equal(t, &l1msgs.CommandErr{Message: "board stopped: context canceled"}, reply)
		default:
			t.Fatal("queued command not answered")
		}
	}
	require.Empty(t, ctl.cmdCh)
}
