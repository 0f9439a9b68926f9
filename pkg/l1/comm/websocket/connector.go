package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/net/websocket"

	"github.com/robotalks/fxboard/pkg/l1"
	"github.com/robotalks/fxboard/pkg/l1/comm"
)

// Connector connects controllers served by a websocket Registrar.
type Connector struct {
	host string
}

// NewConnector creates a Connector from ws://host:port.
func NewConnector(registryURL string) (*Connector, error) {
	u, err := url.Parse(registryURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "ws" || u.Host == "" {
		return nil, fmt.Errorf("invalid websocket registry URL %q", registryURL)
	}
	return &Connector{host: u.Host}, nil
}

// Discover implements l1.Connector.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	req, err := http.NewRequest(http.MethodGet, "http://"+c.host+"/meta", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discover %s: %s", c.host, resp.Status)
	}
	var infos []l1.ControllerInfo
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// Connect implements l1.Connector. The deadline of ctx bounds dialing.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	config, err := websocket.NewConfig("ws://"+c.host+"/"+ref.Name(), "http://"+c.host+"/")
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		config.Dialer = &net.Dialer{Deadline: deadline}
	}
	conn, err := websocket.DialConfig(config)
	if err != nil {
		return nil, err
	}
	cc := &ControllerConn{Conn: conn}
	cc.Init(New(conn))
	return cc, nil
}

// ControllerConn is the l1.ControllerConn on a websocket.
type ControllerConn struct {
	comm.ControllerConn
	Conn *websocket.Conn
}

// Close closes the connection.
func (c *ControllerConn) Close() error {
	return c.Conn.Close()
}
