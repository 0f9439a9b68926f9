package board

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/fxboard/pkg/board/msgs"
	fx "github.com/robotalks/fxboard/pkg/framework"
	"github.com/robotalks/fxboard/pkg/l0/comm"
	"github.com/robotalks/fxboard/pkg/l1"
	l1msgs "github.com/robotalks/fxboard/pkg/l1/msgs"
)

// DefaultPollInterval is the default interval reading read-only
// parameters.
const DefaultPollInterval = 200 * time.Millisecond

// Controller is the L1 controller of the board. Board access is
// serialized in a worker, the loop only dispatches commands to it.
type Controller struct {
	Board     *Board
	Registrar l1.Registrar
	// Transport runs the link to the board, e.g. *comm.Client.
	Transport fx.Runnable
	// Closer is closed when the controller stops.
	Closer       io.Closer
	PollInterval time.Duration

	cmdCh  chan l1.Command
	meters map[string]uint32
}

const commandQueueSize = 16

// NewController creates a Controller.
func NewController(b *Board, reg l1.Registrar) *Controller {
	return &Controller{
		Board:        b,
		Registrar:    reg,
		PollInterval: DefaultPollInterval,
		cmdCh:        make(chan l1.Command, commandQueueSize),
		meters:       make(map[string]uint32),
	}
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	if c.Transport != nil {
		loop.AddRunnable(fx.NamedRun("board-link", c.Transport))
	}
	loop.AddRunnable(fx.NamedRun("board-worker", fx.RunFunc(c.work)))
	loop.AddController(fx.PrLvControl, c)
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
		cmdMsg, ok := mc.CurrentMessage().(*l1.CommandMsg)
		if !ok || !isBoardCommand(cmdMsg.Command.Msg()) {
			return
		}
		mc.MessageTaken()
		select {
		case c.cmdCh <- cmdMsg.Command:
		default:
			cmdMsg.Command.Done(l1msgs.NewCommandErrFromMsg("board busy"))
		}
	}))
	return nil
}

func isBoardCommand(msg fx.Message) bool {
	switch msg.(type) {
	case *msgs.RegisterRead, *msgs.RegisterWrite, *msgs.ParamGet, *msgs.ParamSet, *msgs.ParamListQuery:
		return true
	}
	return false
}

func (c *Controller) work(ctx context.Context) error {
	if c.Closer != nil {
		defer c.Closer.Close()
	}
	var tick <-chan time.Time
	if c.PollInterval > 0 {
		ticker := time.NewTicker(c.PollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			c.rejectQueued(ctx.Err())
			return ctx.Err()
		case cmd := <-c.cmdCh:
			var reply fx.Message
			if err := ctx.Err(); err != nil {
				reply = stoppedErr(err)
			} else {
				reply = c.Execute(ctx, cmd.Msg())
			}
			if err := cmd.Done(reply); err != nil {
				glog.Warningf("reply %s: %v", cmd.Msg(), err)
			}
		case <-tick:
			c.PollMeters(ctx)
		}
	}
}

// rejectQueued fails the commands left in the queue.
func (c *Controller) rejectQueued(err error) {
	for {
		select {
		case cmd := <-c.cmdCh:
			cmd.Done(stoppedErr(err))
		default:
			return
		}
	}
}

func stoppedErr(err error) *l1msgs.CommandErr {
	return l1msgs.NewCommandErrFromMsg("board stopped: " + err.Error())
}

// Execute runs a board command and returns the reply.
func (c *Controller) Execute(ctx context.Context, msg fx.Message) fx.Message {
	reply, err := c.execute(ctx, msg)
	if err != nil {
		glog.V(1).Infof("%s: %v", msg, err)
		return l1msgs.NewCommandErr(err)
	}
	return reply
}

func (c *Controller) execute(ctx context.Context, msg fx.Message) (fx.Message, error) {
	switch m := msg.(type) {
	case *msgs.RegisterRead:
		cmd, err := comm.NewCommand(uint64(m.Address), comm.OpRead, 0)
		if err != nil {
			return nil, err
		}
		val, err := c.Board.Regs.ReadRegister(ctx, cmd.Address)
		if err != nil {
			return nil, err
		}
		return &msgs.RegisterValue{Address: m.Address, Value: val}, nil
	case *msgs.RegisterWrite:
		cmd, err := comm.NewCommand(uint64(m.Address), comm.OpWrite, uint64(m.Value))
		if err != nil {
			return nil, err
		}
		if m.Verify {
			err = c.Board.Regs.WriteVerify(ctx, cmd.Address, cmd.Value)
		} else {
			err = c.Board.Regs.WriteRegister(ctx, cmd.Address, cmd.Value)
		}
		if err != nil {
			return nil, err
		}
		if p, ok := c.Board.Map.ByAddress(cmd.Address); ok {
			c.notify(ctx, p.Name, cmd.Value)
		}
		return &msgs.RegisterValue{Address: m.Address, Value: m.Value}, nil
	case *msgs.ParamGet:
		val, err := c.Board.Get(ctx, m.Name)
		if err != nil {
			return nil, err
		}
		return &msgs.ParamValue{Name: m.Name, Value: val}, nil
	case *msgs.ParamSet:
		if err := c.Board.Set(ctx, m.Name, m.Value); err != nil {
			return nil, err
		}
		c.notify(ctx, m.Name, m.Value)
		return &msgs.ParamValue{Name: m.Name, Value: m.Value}, nil
	case *msgs.ParamListQuery:
		return c.paramList(), nil
	}
	return nil, l1msgs.ErrUnsupportedCommand
}

func (c *Controller) paramList() *msgs.ParamList {
	params := c.Board.Map.Params()
	list := &msgs.ParamList{Params: make([]*msgs.ParamInfo, 0, len(params))}
	for _, p := range params {
		list.Params = append(list.Params, &msgs.ParamInfo{
			Name:        p.Name,
			Address:     uint32(p.Address),
			Max:         p.Max,
			Values:      p.Values,
			ReadOnly:    p.ReadOnly,
			Description: p.Description,
		})
	}
	return list
}

// PollMeters reads all read-only parameters and notifies changes.
func (c *Controller) PollMeters(ctx context.Context) {
	for _, p := range c.Board.Map.params {
		if !p.ReadOnly {
			continue
		}
		val, err := c.Board.Regs.ReadRegister(ctx, p.Address)
		if err != nil {
			glog.V(1).Infof("poll %s: %v", p.Name, err)
			continue
		}
		if last, ok := c.meters[p.Name]; ok && last == val {
			continue
		}
		c.meters[p.Name] = val
		c.notify(ctx, p.Name, val)
	}
}

func (c *Controller) notify(ctx context.Context, name string, value uint32) {
	if c.Registrar == nil {
		return
	}
	if err := c.Registrar.SendEvent(ctx, &msgs.ParamChanged{Name: name, Value: value}); err != nil {
		glog.Warningf("send ParamChanged %s: %v", name, err)
	}
}
