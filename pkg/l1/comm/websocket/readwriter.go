// Package websocket carries L1 messages over websocket connections,
// one binary frame per packet.
//
// A controller serves
//
//	GET /meta       JSON list of ControllerInfo
//	GET /TYPE/ID    websocket endpoint of the controller
package websocket

import "golang.org/x/net/websocket"

// ReadWriter is a PacketReadWriter on a websocket connection.
type ReadWriter websocket.Conn

// New wraps a websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &pkt)
	return
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}
