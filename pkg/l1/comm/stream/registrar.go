package stream

import (
	"context"
	"encoding/json"
	"net"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/fxboard/pkg/framework"
	"github.com/robotalks/fxboard/pkg/l1"
	"github.com/robotalks/fxboard/pkg/l1/comm"
)

// Registrar serves an L1 controller on a TCP listener.
type Registrar struct {
	Addr string
	Info l1.ControllerInfo

	conns    comm.RegistrarSet
	lock     sync.Mutex
	listener net.Listener
}

// NewRegistrar creates a Registrar listening on addr.
func NewRegistrar(addr string, info l1.ControllerInfo) *Registrar {
	return &Registrar{Addr: addr, Info: info}
}

// Listen starts listening if not yet and returns the bound address.
func (r *Registrar) Listen() (net.Addr, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.listener == nil {
		ln, err := net.Listen("tcp", r.Addr)
		if err != nil {
			return nil, err
		}
		r.listener = ln
	}
	return r.listener.Addr(), nil
}

// Clients is the number of connected clients.
func (r *Registrar) Clients() int {
	return r.conns.Len()
}

// SendEvent implements l1.Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.conns.SendEvent(ctx, msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(fx.NamedRun("stream-registrar", r))
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	addr, err := r.Listen()
	if err != nil {
		return err
	}
	hello, err := json.Marshal(r.Info)
	if err != nil {
		return err
	}
	glog.Infof("stream registrar listening on %s", addr)
	return fx.RunWithContextCloser(ctx, r.listener, func() error {
		for {
			conn, err := r.listener.Accept()
			if err != nil {
				return err
			}
			go r.serveConn(ctx, conn, hello)
		}
	})
}

func (r *Registrar) serveConn(ctx context.Context, conn net.Conn, hello []byte) {
	remote := conn.RemoteAddr()
	rw := New(conn)
	if err := rw.WritePacket(hello); err != nil {
		glog.Warningf("stream client %s: %v", remote, err)
		conn.Close()
		return
	}
	reg := comm.NewRegistrar(rw)
	leave := r.conns.Join(reg)
	defer leave()
	glog.Infof("stream client %s connected", remote)
	err := reg.Run(ctx)
	glog.Infof("stream client %s disconnected: %v", remote, err)
}
