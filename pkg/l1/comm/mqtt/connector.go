package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/fxboard/pkg/l1"
	"github.com/robotalks/fxboard/pkg/l1/comm"
)

// DefaultDiscoverTimeout is how long Discover collects retained metas.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Connector implements l1.Connector on an MQTT broker.
type Connector struct {
	DiscoverTimeout time.Duration

	brokerURL string
}

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	if _, _, err := ClientOptionsFromURL(brokerURL); err != nil {
		return nil, err
	}
	return &Connector{DiscoverTimeout: DefaultDiscoverTimeout, brokerURL: brokerURL}, nil
}

func (c *Connector) newQueue() *Queue {
	q, _ := NewQueueFromURL(c.brokerURL)
	return q
}

// ParseMeta parses a retained meta message. ok is false if the topic
// is not a meta topic or the controller went offline.
func ParseMeta(topic string, payload []byte) (info l1.ControllerInfo, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[2] != "meta" || len(payload) == 0 {
		return
	}
	info.Ref = l1.ControllerRef{Type: parts[0], ID: parts[1]}
	if err := json.Unmarshal(payload, &info.Meta); err != nil {
		glog.Warningf("%s: bad meta: %v", topic, err)
	}
	return info, info.Ref.IsValid()
}

// Discover implements l1.Connector by collecting retained metas.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	q := c.newQueue()
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	defer q.Close()

	var lock sync.Mutex
	found := make(map[string]l1.ControllerInfo)
	var order []string
	q.Sub("+/+/meta", func(topic string, payload []byte) {
		info, ok := ParseMeta(topic, payload)
		if !ok {
			return
		}
		lock.Lock()
		defer lock.Unlock()
		name := info.Ref.Name()
		if _, exists := found[name]; !exists {
			order = append(order, name)
		}
		found[name] = info
	})

	timeout := c.DiscoverTimeout
	if timeout <= 0 {
		timeout = DefaultDiscoverTimeout
	}
	select {
	case <-time.After(timeout):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	lock.Lock()
	defer lock.Unlock()
	res := make([]l1.ControllerInfo, 0, len(order))
	for _, name := range order {
		res = append(res, found[name])
	}
	return res, nil
}

// Connect implements l1.Connector.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	conn := &ControllerConn{Queue: c.newQueue()}
	conn.Init(NewPacketReadWriter(conn.Queue).ForConnector(ref))
	token := conn.Queue.Connect()
	connected := make(chan struct{})
	go func() {
		token.Wait()
		close(connected)
	}()
	select {
	case <-connected:
	case <-ctx.Done():
		conn.Queue.Close()
		return nil, ctx.Err()
	}
	if err := token.Error(); err != nil {
		return nil, err
	}
	return conn, nil
}

// ControllerConn is the l1.ControllerConn on MQTT.
type ControllerConn struct {
	comm.ControllerConn
	Queue *Queue
}

// Close disconnects from the broker.
func (c *ControllerConn) Close() error {
	return c.Queue.Close()
}
