package comm

import (
	"context"
	"sync"

	fx "github.com/robotalks/fxboard/pkg/framework"
	"github.com/robotalks/fxboard/pkg/l1"
	"github.com/robotalks/fxboard/pkg/l1/msgs"
)

// Registrar is the controller side of a Pipe. Received commands are
// posted to the loop as l1.CommandMsg, events as themselves.
type Registrar struct {
	pipe Pipe
}

// NewRegistrar creates a Registrar on the transport.
func NewRegistrar(rw PacketReadWriter) *Registrar {
	r := &Registrar{}
	r.Init(rw)
	return r
}

// Init initializes a Registrar embedded by value.
func (r *Registrar) Init(rw PacketReadWriter) {
	r.pipe.ReadWriter = rw
	r.pipe.Handler = msgs.HandleTypedMsgFunc(r.handleTypedMsg)
}

func (r *Registrar) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	loopCtl := fx.LoopCtlFrom(ctx)
	if loopCtl == nil {
		return nil
	}
	if typed.IsEvent() {
		loopCtl.PostMessage(msg)
	} else if !typed.IsReply() {
		loopCtl.PostMessage(&l1.CommandMsg{Command: &command{seq: typed.Sequence, msg: msg, pipe: &r.pipe}})
	} else {
		return nil
	}
	loopCtl.TriggerNext()
	return nil
}

// SendEvent implements l1.Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.pipe.SendEventMsg(msg)
}

// Run receives commands until ctx is canceled. ctx must come
// from a Loop.
func (r *Registrar) Run(ctx context.Context) error {
	return r.pipe.Run(ctx)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.pipe)
}

type command struct {
	seq  uint32
	msg  fx.Message
	pipe *Pipe
}

func (c *command) Msg() fx.Message { return c.msg }

func (c *command) Done(reply fx.Message) error {
	return c.pipe.SendCommandMsg(reply, c.seq)
}

// RegistrarMux fans events out to multiple Registrars.
type RegistrarMux struct {
	Registrars []l1.Registrar
}

// Add adds Registrars.
func (r *RegistrarMux) Add(regs ...l1.Registrar) {
	r.Registrars = append(r.Registrars, regs...)
}

// SendEvent implements l1.Registrar.
func (r *RegistrarMux) SendEvent(ctx context.Context, msg fx.Message) error {
	var errs fx.AggregatedError
	for _, reg := range r.Registrars {
		errs.Add(reg.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// AddToLoop implements LoopAdder.
func (r *RegistrarMux) AddToLoop(loop *fx.Loop) {
	for _, reg := range r.Registrars {
		if adder, ok := reg.(fx.LoopAdder); ok {
			loop.Add(adder)
		}
	}
}

// RegistrarSet is a dynamic set of Registrars, e.g. one per accepted
// connection. Events go to all current members.
type RegistrarSet struct {
	lock    sync.RWMutex
	members map[l1.Registrar]struct{}
}

// Join adds a member and returns the func removing it.
func (s *RegistrarSet) Join(reg l1.Registrar) (leave func()) {
	s.lock.Lock()
	if s.members == nil {
		s.members = make(map[l1.Registrar]struct{})
	}
	s.members[reg] = struct{}{}
	s.lock.Unlock()
	return func() {
		s.lock.Lock()
		delete(s.members, reg)
		s.lock.Unlock()
	}
}

// Len is the number of members.
func (s *RegistrarSet) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.members)
}

// SendEvent implements l1.Registrar.
func (s *RegistrarSet) SendEvent(ctx context.Context, msg fx.Message) error {
	s.lock.RLock()
	regs := make([]l1.Registrar, 0, len(s.members))
	for reg := range s.members {
		regs = append(regs, reg)
	}
	s.lock.RUnlock()
	var errs fx.AggregatedError
	for _, reg := range regs {
		errs.Add(reg.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// UnsupportedCommands replies CommandErr to commands no controller took.
type UnsupportedCommands struct {
}

// Control implements Controller.
func (c *UnsupportedCommands) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
		if cmdMsg, ok := mc.CurrentMessage().(*l1.CommandMsg); ok {
			mc.MessageTaken()
			cmdMsg.Command.Done(msgs.NewCommandErr(msgs.ErrUnsupportedCommand))
		}
	}))
	return nil
}

// AddToLoop implements LoopAdder.
func (c *UnsupportedCommands) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvIdle, c)
}
