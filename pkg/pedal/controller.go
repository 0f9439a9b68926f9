package pedal

import (
	"context"
	"time"

	"github.com/golang/glog"

	boardmsgs "github.com/robotalks/fxboard/pkg/board/msgs"
	fx "github.com/robotalks/fxboard/pkg/framework"
	"github.com/robotalks/fxboard/pkg/l1"
	connenv "github.com/robotalks/fxboard/pkg/l1/env/connector"
	env "github.com/robotalks/fxboard/pkg/l1/env/controller"
	l1msgs "github.com/robotalks/fxboard/pkg/l1/msgs"
	"github.com/robotalks/fxboard/pkg/pedal/device"
	"github.com/robotalks/fxboard/pkg/pedal/msgs"
)

const (
	detectInterval = time.Second
	noDevice       = 0xffffffff
)

// Controller is an L2 controller. It is an L1 controller itself for
// status and connect commands, and sends ParamSet commands to the
// connected board controller.
type Controller struct {
	Env         *env.Env
	DeviceIndex int
	Verbose     bool
	Mapping     *Mapping
	// AutoConnect is connected when the loop starts if valid.
	AutoConnect l1.ControllerRef
	// RegistryURL locates AutoConnect, the first URL of Env if empty.
	RegistryURL string
	// Open opens the device, device.Open and device.DetectAndOpen
	// are used if nil.
	Open func(index int) (device.Device, error)

	conn          *connection
	autoConnected bool
	eventCh       chan device.Event
	device        device.Device
	deviceTimer   <-chan time.Time

	status        msgs.PedalStatus
	statusChanged bool
}

// NewController creates a Controller.
func NewController(e *env.Env) *Controller {
	return &Controller{
		Env:           e,
		DeviceIndex:   defaultConfig.DeviceIndex,
		Verbose:       defaultConfig.Verbose,
		Mapping:       DefaultMapping(),
		statusChanged: true,
	}
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(fx.NamedRun("pedal-device", c))
	loop.AddController(fx.PrLvControl, c)
	loop.AddController(fx.PrLvPostProc, fx.ControlFunc(c.notifyStatusChange))
}

func (c *Controller) openDevice() (device.Device, error) {
	if c.Open != nil {
		return c.Open(c.DeviceIndex)
	}
	if c.DeviceIndex >= 0 {
		return device.Open(c.DeviceIndex)
	}
	return device.DetectAndOpen(0)
}

// Run implements Runnable. It keeps a device open and posts its events.
func (c *Controller) Run(ctx context.Context) error {
	defer func() {
		if c.device != nil {
			c.device.Close()
		}
	}()
	loopCtl := fx.LoopCtlFrom(ctx)
	c.deviceTimer = time.After(0)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.deviceTimer:
			c.deviceTimer = nil
			dev, err := c.openDevice()
			if err != nil {
				glog.V(1).Infof("open pedal: %v", err)
				c.deviceTimer = time.After(detectInterval)
				continue
			}
			glog.Infof("pedal %d %q opened, %d axes, %d buttons", dev.Index(), dev.Name(), dev.Axes(), dev.Buttons())
			c.device, c.eventCh = dev, make(chan device.Event, 1)
			go c.pollDevice(ctx, dev, c.eventCh)
			loopCtl.PostMessage(&statusMsg{device: &msgs.PedalDevice{
				Index:   uint32(dev.Index()),
				Name:    dev.Name(),
				Axes:    uint32(dev.Axes()),
				Buttons: uint32(dev.Buttons()),
			}})
		case ev, ok := <-c.eventCh:
			if ok {
				loopCtl.PostMessage(&eventMsg{event: ev})
			} else {
				c.device.Close()
				c.device, c.eventCh = nil, nil
				c.deviceTimer = time.After(detectInterval)
				loopCtl.PostMessage(&statusMsg{device: &msgs.PedalDevice{Index: noDevice}})
			}
		}
		loopCtl.TriggerNext()
	}
}

func (c *Controller) pollDevice(ctx context.Context, dev device.Device, ch chan<- device.Event) {
	defer close(ch)
	for {
		ev, err := dev.ReadEvent()
		if err != nil {
			glog.Warningf("pedal read: %v", err)
			return
		}
		if c.Verbose {
			glog.Info(ev)
		}
		select {
		case ch <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	if !c.autoConnected {
		c.autoConnected = true
		if c.AutoConnect.IsValid() {
			if reply := c.connect(cc, &msgs.PedalConnect{
				RegistryURL: c.RegistryURL,
				Type:        c.AutoConnect.Type,
				ID:          c.AutoConnect.ID,
			}); reply != nil {
				if errMsg, ok := reply.(*l1msgs.CommandErr); ok {
					glog.Errorf("connect %s: %s", c.AutoConnect.Name(), errMsg.Message)
				}
			}
		}
	}
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		switch msg := mctx.CurrentMessage().(type) {
		case *l1.CommandMsg:
			switch m := msg.Command.Msg().(type) {
			case *msgs.PedalStatusQuery:
				mctx.MessageTaken()
				msg.Command.Done(&msgs.PedalStatusReply{Status: &c.status})
			case *msgs.PedalConnect:
				mctx.MessageTaken()
				msg.Command.Done(c.connect(cc, m))
			}
		case *eventMsg:
			mctx.MessageTaken()
			if conn := c.conn; conn != nil {
				conn.loop.PostMessage(msg)
				conn.loop.TriggerNext()
			} else {
				glog.V(1).Infof("not connected, drop %s", msg.event)
			}
		case *statusMsg:
			mctx.MessageTaken()
			c.updateStatus(msg)
		}
	}))
	return nil
}

func (c *Controller) updateStatus(msg *statusMsg) {
	if msg.device != nil {
		if msg.device.Index == noDevice {
			c.status.Device = nil
		} else {
			c.status.Device = msg.device
		}
		c.statusChanged = true
	}
	if msg.conn != nil {
		if msg.conn.Type == "" {
			c.status.Connection, c.status.Bound = nil, nil
		} else {
			c.status.Connection = msg.conn
		}
		c.statusChanged = true
	}
	if msg.bound != nil && c.conn != nil && msg.from == c.conn {
		c.status.Bound = msg.bound
		c.statusChanged = true
	}
}

func (c *Controller) notifyStatusChange(cc fx.ControlContext) error {
	changed := c.statusChanged
	c.statusChanged = false
	if changed && c.Env != nil {
		return c.Env.Registrar.SendEvent(cc.Context(), &c.status)
	}
	return nil
}

func (c *Controller) connect(cc fx.ControlContext, msg *msgs.PedalConnect) fx.Message {
	if c.conn != nil {
		c.conn.close()
		c.conn = nil
		c.updateStatus(&statusMsg{conn: &msgs.PedalConnect{}})
	}
	if msg.Type == "" && msg.ID == "" {
		return l1msgs.NewCommandOK()
	}
	conf := connenv.NewConfig()
	if conf.RegistryURL = msg.RegistryURL; conf.RegistryURL == "" && c.Env != nil && len(c.Env.RegistryURLs) > 0 {
		conf.RegistryURL = c.Env.RegistryURLs[0]
	}
	if conf.Ref.Type, conf.Ref.ID = msg.Type, msg.ID; !conf.Ref.IsValid() {
		return l1msgs.NewCommandErrFromMsg("controller ref invalid")
	}
	connector, err := conf.NewConnector()
	if err != nil {
		return l1msgs.NewCommandErr(err)
	}
	if c.conn, err = newConnection(cc, connector, conf.Ref, c.Mapping); err != nil {
		return l1msgs.NewCommandErr(err)
	}
	go c.conn.run()
	c.updateStatus(&statusMsg{conn: &msgs.PedalConnect{
		RegistryURL: conf.RegistryURL,
		Type:        conf.Ref.Type,
		ID:          conf.Ref.ID,
	}})
	return l1msgs.NewCommandOK()
}

type statusMsg struct {
	device *msgs.PedalDevice
	conn   *msgs.PedalConnect
	bound  []string
	from   *connection
}

func (m *statusMsg) NewMessage() fx.Message { return &statusMsg{} }

type eventMsg struct {
	event device.Event
}

func (m *eventMsg) NewMessage() fx.Message { return &eventMsg{} }

type paramsMsg struct {
	list *boardmsgs.ParamList
}

func (m *paramsMsg) NewMessage() fx.Message { return &paramsMsg{} }

// connection runs its own loop with the connection to the board.
type connection struct {
	ctx     context.Context
	cancel  func()
	parent  fx.LoopControl
	conn    l1.ControllerConn
	loop    *fx.Loop
	mapping *Mapping
	trans   *Translator
}

func newConnection(cc fx.ControlContext, connector l1.Connector, ref l1.ControllerRef, mapping *Mapping) (c *connection, err error) {
	c = &connection{parent: fx.LoopCtlFrom(cc.Context()), mapping: mapping}
	c.ctx, c.cancel = context.WithCancel(cc.Context())
	dialCtx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()
	if c.conn, err = connector.Connect(dialCtx, ref); err != nil {
		c.cancel()
		return nil, err
	}
	c.loop = fx.NewLoop()
	if adder, ok := c.conn.(fx.LoopAdder); ok {
		c.loop.Add(adder)
	}
	c.loop.AddRunnable(fx.NamedRun("pedal-params", fx.RunFunc(c.queryParams)))
	c.loop.AddController(fx.PrLvControl, c)
	return c, nil
}

func (c *connection) run() {
	c.loop.Run(c.ctx)
	if closer, ok := c.conn.(interface{ Close() error }); ok {
		closer.Close()
	}
}

func (c *connection) close() {
	c.cancel()
}

// queryParams fetches the parameter ranges until it succeeds.
func (c *connection) queryParams(ctx context.Context) error {
	for {
		reply, err := l1.Await(ctx, c.conn.DoCommand(&boardmsgs.ParamListQuery{}))
		if list, ok := reply.(*boardmsgs.ParamList); ok && err == nil {
			loopCtl := fx.LoopCtlFrom(ctx)
			loopCtl.PostMessage(&paramsMsg{list: list})
			loopCtl.TriggerNext()
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		glog.Warningf("ParamListQuery: %v", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(detectInterval):
		}
	}
}

// Control implements Controller.
func (c *connection) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		switch msg := mctx.CurrentMessage().(type) {
		case *eventMsg:
			mctx.MessageTaken()
			c.handleEvent(msg.event)
		case *paramsMsg:
			mctx.MessageTaken()
			trans, err := NewTranslator(c.mapping, msg.list)
			if err != nil {
				glog.Errorf("pedal mapping: %v", err)
				return
			}
			c.trans = trans
			c.parent.PostMessage(&statusMsg{bound: trans.Bound(), from: c})
			c.parent.TriggerNext()
		case *boardmsgs.ParamChanged:
			mctx.MessageTaken()
			if c.trans != nil {
				c.trans.Observe(msg.Name, msg.Value)
			}
		}
	}))
	return nil
}

func (c *connection) handleEvent(ev device.Event) {
	if c.trans == nil {
		glog.V(1).Info("parameter list not available")
		return
	}
	if cmd := c.trans.Translate(ev); cmd != nil {
		f := c.conn.DoCommand(cmd)
		go func() {
			if _, err := l1.Await(c.ctx, f); err != nil && c.ctx.Err() == nil {
				glog.Warningf("%s: %v", cmd, err)
			}
		}()
	}
}
