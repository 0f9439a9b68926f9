package comm

import (
	"context"
	"sync"
	"time"

	fx "github.com/robotalks/fxboard/pkg/framework"
	"github.com/robotalks/fxboard/pkg/l1"
	"github.com/robotalks/fxboard/pkg/l1/msgs"
)

// DefaultCommandExpiration is how long a command waits for its reply.
const DefaultCommandExpiration = 2 * time.Second

// ControllerConn is the l1.ControllerConn over a Pipe. Replies are
// matched to commands by sequence, events are posted to the loop.
// Commands expire when the loop runs the purge controller.
type ControllerConn struct {
	Expiration time.Duration

	pipe    Pipe
	lock    sync.Mutex
	seq     uint32
	pending map[uint32]*commandFuture
}

// Init initializes a ControllerConn embedded by value.
func (c *ControllerConn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe.ReadWriter = rw
	c.pipe.Handler = msgs.HandleTypedMsgFunc(c.handleTypedMsg)
	c.pending = make(map[uint32]*commandFuture)
}

// DoCommand implements l1.ControllerConn.
func (c *ControllerConn) DoCommand(msg fx.Message) l1.CommandFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.seq++; c.seq == 0 {
		c.seq++
	}
	f := &commandFuture{
		seq:      c.seq,
		expireAt: time.Now().Add(c.Expiration),
		result:   make(chan l1.Result, 1),
	}
	if err := c.pipe.SendCommandMsg(msg, f.seq); err != nil {
		f.resolve(l1.Result{Err: err})
		return f
	}
	c.pending[f.seq] = f
	return f
}

// Pending is the number of commands waiting for replies.
func (c *ControllerConn) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.pending)
}

// AddToLoop implements LoopAdder.
func (c *ControllerConn) AddToLoop(loop *fx.Loop) {
	loop.Add(&c.pipe)
	loop.AddController(fx.PrLvIdle, fx.ControlFunc(c.purgeExpired))
}

func (c *ControllerConn) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsEvent() {
		if loopCtl := fx.LoopCtlFrom(ctx); loopCtl != nil {
			loopCtl.PostMessage(msg)
			loopCtl.TriggerNext()
		}
		return nil
	}
	c.lock.Lock()
	f := c.pending[typed.Sequence]
	delete(c.pending, typed.Sequence)
	c.lock.Unlock()
	if f == nil {
		return nil
	}
	result := l1.Result{Msg: msg}
	if cmdErr, ok := msg.(*msgs.CommandErr); ok {
		result.Err = cmdErr
	}
	f.resolve(result)
	return nil
}

func (c *ControllerConn) purgeExpired(cc fx.ControlContext) error {
	now := cc.Time()
	var expired []*commandFuture
	c.lock.Lock()
	for seq, f := range c.pending {
		if !f.expireAt.After(now) {
			delete(c.pending, seq)
			expired = append(expired, f)
		}
	}
	c.lock.Unlock()
	for _, f := range expired {
		f.resolve(l1.Result{Err: context.DeadlineExceeded})
	}
	return nil
}

type commandFuture struct {
	seq      uint32
	expireAt time.Time
	result   chan l1.Result
}

func (f *commandFuture) resolve(res l1.Result) {
	f.result <- res
	close(f.result)
}

func (f *commandFuture) ResultChan() <-chan l1.Result {
	return f.result
}
