package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/robotalks/fxboard/pkg/l1"
	"github.com/robotalks/fxboard/pkg/l1/comm"
)

// Connector connects the controller served by a stream Registrar.
type Connector struct {
	host string
}

// NewConnector creates a Connector from stream://host:port.
func NewConnector(registryURL string) (*Connector, error) {
	u, err := url.Parse(registryURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "stream" || u.Host == "" {
		return nil, fmt.Errorf("invalid stream registry URL %q", registryURL)
	}
	return &Connector{host: u.Host}, nil
}

// dial connects and reads the greeting.
func (c *Connector) dial(ctx context.Context) (net.Conn, *ReadWriter, l1.ControllerInfo, error) {
	var info l1.ControllerInfo
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.host)
	if err != nil {
		return nil, nil, info, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	}
	rw := New(conn)
	hello, err := rw.ReadPacket()
	if err == nil {
		err = json.Unmarshal(hello, &info)
	}
	if err != nil {
		conn.Close()
		return nil, nil, info, fmt.Errorf("greeting from %s: %w", c.host, err)
	}
	conn.SetReadDeadline(time.Time{})
	return conn, rw, info, nil
}

// Discover implements l1.Connector.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	conn, _, info, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	conn.Close()
	return []l1.ControllerInfo{info}, nil
}

// Connect implements l1.Connector. The controller behind the address
// must be ref.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	conn, rw, info, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	if info.Ref != ref {
		conn.Close()
		return nil, fmt.Errorf("%s serves %s, not %s", c.host, info.Ref.Name(), ref.Name())
	}
	cc := &ControllerConn{Conn: conn}
	cc.Init(rw)
	return cc, nil
}

// ControllerConn is the l1.ControllerConn on a stream.
type ControllerConn struct {
	comm.ControllerConn
	Conn net.Conn
}

// Close closes the connection.
func (c *ControllerConn) Close() error {
	return c.Conn.Close()
}
