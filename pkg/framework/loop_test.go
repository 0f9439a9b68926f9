package framework

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testMsg struct {
	val int
}

func (m *testMsg) NewMessage() Message { return &testMsg{} }

func TestLoopDispatchesMessages(t *testing.T) {
	loop := NewLoop()
	loop.Interval = time.Hour
	received := make(chan int, 4)
	var order []string

	loop.AddController(PrLvPostProc, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mc MessageProcessingContext) {
			order = append(order, "post")
			received <- mc.CurrentMessage().(*testMsg).val
		}))
		return nil
	}))
	loop.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mc MessageProcessingContext) {
			order = append(order, "control")
			if msg := mc.CurrentMessage().(*testMsg); msg.val == 1 {
				mc.MessageTaken()
				received <- msg.val
			}
		}))
		return nil
	}))
	loop.AddRunnable(RunFunc(func(ctx context.Context) error {
		ctl := LoopCtlFrom(ctx)
		require.NotNil(t, ctl)
		ctl.PostMessage(&testMsg{val: 1}, &testMsg{val: 2})
		ctl.TriggerNext()
		<-ctx.Done()
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	var vals []int
	for len(vals) < 2 {
		select {
		case v := <-received:
			vals = append(vals, v)
		case <-time.After(time.Second):
			t.Fatal("messages not dispatched")
		}
	}
	cancel()
	require.Equal(t, context.Canceled, <-done)
	require.Equal(t, []int{1, 2}, vals)
	require.Equal(t, []string{"control", "control", "post"}, order)
}

func TestLoopCtlFromOutsideLoop(t *testing.T) {
	require.Nil(t, LoopCtlFrom(context.Background()))
}

func TestLoopRunnableError(t *testing.T) {
	failure := errors.New("failure")
	loop := NewLoop().AddRunnable(RunFunc(func(context.Context) error {
		return failure
	}))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := loop.Run(ctx)
	require.True(t, errors.Is(err, failure))
}

func TestRunnerAggregatesErrors(t *testing.T) {
	e1, e2 := errors.New("e1"), errors.New("e2")
	err := NewRunner().Go(
		RunFunc(func(context.Context) error { return e1 }),
		NamedRun("canceled", RunFunc(func(context.Context) error { return context.Canceled })),
		RunFunc(func(context.Context) error { return nil }),
		RunFunc(func(context.Context) error { return e2 }),
	).Wait()
	var agg *AggregatedError
	require.True(t, errors.As(err, &agg))
	require.ElementsMatch(t, []error{e1, e2}, agg.Errors)
	require.True(t, errors.Is(err, e2))
	require.NoError(t, NewRunner().Wait())
}

func TestAggregatedErrorMessage(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	errs.Add(errors.New("a"))
	require.Equal(t, "a", errs.Error())
	errs.Add(errors.New("b"))
	require.Equal(t, "multiple errors: a; b", errs.Error())
}

type closeRecorder struct {
	closed chan struct{}
}

func (c *closeRecorder) Close() error {
	close(c.closed)
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	c := &closeRecorder{closed: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunWithContextCloser(ctx, c, func() error {
		<-c.closed
		return io.EOF
	})
	require.Equal(t, context.Canceled, err)

	c = &closeRecorder{closed: make(chan struct{})}
	err = RunWithContextCloser(context.Background(), c, func() error { return io.EOF })
	require.Equal(t, io.EOF, err)
	<-c.closed
}
