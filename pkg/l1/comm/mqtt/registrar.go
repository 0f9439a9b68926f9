package mqtt

import (
	"context"
	"encoding/json"

	"github.com/golang/glog"

	fx "github.com/robotalks/fxboard/pkg/framework"
	"github.com/robotalks/fxboard/pkg/l1"
	"github.com/robotalks/fxboard/pkg/l1/comm"
)

// Registrar publishes an L1 controller on an MQTT broker. The meta
// topic is retained while connected and cleared by the will.
type Registrar struct {
	Queue *Queue
	Info  l1.ControllerInfo

	meta      []byte
	registrar comm.Registrar
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, info l1.ControllerInfo) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(prefix+MetaTopic(info.Ref), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("fxboard:" + info.Ref.Name())
	}
	r := &Registrar{
		Queue: NewQueue(opts, prefix),
		Info:  info,
		meta:  meta,
	}
	r.Queue.OnConnect = r.publishMeta
	r.registrar.Init(NewPacketReadWriter(r.Queue).ForController(info.Ref))
	return r, nil
}

// SendEvent implements l1.Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.registrar.SendEvent(ctx, msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.registrar)
	loop.AddRunnable(fx.NamedRun("mqtt-registrar", r))
}

// Run implements Runnable. The client reconnects automatically,
// only the first connection error is reported.
func (r *Registrar) Run(ctx context.Context) error {
	if token := r.Queue.Connect(); token.Wait() && token.Error() != nil {
		glog.Errorf("MQTT connect: %v", token.Error())
	}
	<-ctx.Done()
	r.Queue.PubWith(MetaTopic(r.Info.Ref), nil, 1, true).Wait()
	r.Queue.Close()
	return ctx.Err()
}

func (r *Registrar) publishMeta(q *Queue) {
	q.PubWith(MetaTopic(r.Info.Ref), r.meta, 1, true)
}
