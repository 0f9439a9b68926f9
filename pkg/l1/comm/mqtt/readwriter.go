package mqtt

import (
	"context"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/fxboard/pkg/l1"
)

// ReadWriter is a PacketReadWriter receiving from SubTopic and
// publishing to PubTopic. Packets are received only while Run is
// active.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh chan []byte
	done     chan struct{}
}

// NewPacketReadWriter creates a ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 16),
		done:     make(chan struct{}),
	}
}

// WithTopics sets the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForConnector receives TYPE/ID/msg and publishes TYPE/ID/cmd.
func (p *ReadWriter) ForConnector(ref l1.ControllerRef) *ReadWriter {
	return p.WithTopics(MsgTopic(ref), CmdTopic(ref))
}

// ForController receives TYPE/ID/cmd and publishes TYPE/ID/msg.
func (p *ReadWriter) ForController(ref l1.ControllerRef) *ReadWriter {
	return p.WithTopics(CmdTopic(ref), MsgTopic(ref))
}

// MetaTopic is the topic of the retained ControllerMeta.
func MetaTopic(ref l1.ControllerRef) string { return ref.Name() + "/meta" }

// CmdTopic is the topic of commands.
func CmdTopic(ref l1.ControllerRef) string { return ref.Name() + "/cmd" }

// MsgTopic is the topic of replies and events.
func MsgTopic(ref l1.ControllerRef) string { return ref.Name() + "/msg" }

// ReadPacket implements PacketReader. It returns io.EOF after Run stops.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.done:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, p.handleMsg)
	defer sub.Close()
	defer close(p.done)
	<-ctx.Done()
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(topic string, payload []byte) {
	select {
	case p.packetCh <- payload:
	case <-p.done:
	default:
		glog.Warningf("%s: packet dropped, receiver busy", topic)
	}
}
