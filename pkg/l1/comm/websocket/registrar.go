package websocket

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/fxboard/pkg/framework"
	"github.com/robotalks/fxboard/pkg/l1"
	"github.com/robotalks/fxboard/pkg/l1/comm"
)

// Registrar serves an L1 controller to websocket clients. Events
// are sent to all connected clients.
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
	loop.AddRunnable(fx.NamedRun("ws-registrar", r))
}

// Run implements Runnable. ctx must come from a Loop so commands
// from clients reach the controllers.
func (r *Registrar) Run(ctx context.Context) error {
	addr, err := r.Listen()
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/meta", r.serveMeta)
	mux.Handle("/"+r.Info.Ref.Name(), websocket.Server{
		Handler: func(conn *websocket.Conn) { r.serveConn(ctx, conn) },
	})
	srv := &http.Server{Handler: mux}
	glog.Infof("websocket registrar listening on %s", addr)
	err = fx.RunWithContextCloser(ctx, srv, func() error {
		return srv.Serve(r.listener)
	})
	if err == http.ErrServerClosed {
		err = ctx.Err()
	}
	return err
}

func (r *Registrar) serveMeta(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode([]l1.ControllerInfo{r.Info})
}

func (r *Registrar) serveConn(ctx context.Context, conn *websocket.Conn) {
	remote := conn.Request().RemoteAddr
	reg := comm.NewRegistrar(New(conn))
	leave := r.conns.Join(reg)
	defer leave()
	glog.Infof("websocket client %s connected", remote)
	err := reg.Run(ctx)
	glog.Infof("websocket client %s disconnected: %v", remote, err)
}
