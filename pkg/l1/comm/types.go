// Package comm carries L1 messages over any packet transport.
package comm

// PacketReader reads one packet at a time.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes one packet at a time.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter is a packet transport, e.g. an MQTT topic pair
// or a websocket connection.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}
