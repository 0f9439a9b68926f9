package msgs

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/fxboard/pkg/framework"
)

// TypeID masks
const (
	TypeIDMaskKind  uint32 = 0x80000000
	TypeIDMaskGroup uint32 = 0x7fff0000
	TypeIDMaskReply uint32 = 0x00008000
	TypeIDMaskID    uint32 = 0x00007fff
)

// Message kinds
const (
	TypeIDKindCommand uint32 = 0x00000000
	TypeIDKindEvent   uint32 = 0x80000000
)

// Typed is the envelope of all messages on the wire.
type Typed struct {
	TypeId   uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Message  []byte `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
	Sequence uint32 `protobuf:"varint,3,opt,name=sequence,proto3" json:"sequence,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Typed) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Typed) Reset() { *m = Typed{} }

// String implements proto.Message.
func (m *Typed) String() string { return proto.CompactTextString(m) }

// TypedMsgHandler handles a decoded message with its envelope.
type TypedMsgHandler interface {
	HandleTypedMsg(context.Context, fx.Message, *Typed) error
}

// HandleTypedMsgFunc is the func form of TypedMsgHandler.
type HandleTypedMsgFunc func(context.Context, fx.Message, *Typed) error

// HandleTypedMsg implements TypedMsgHandler.
func (f HandleTypedMsgFunc) HandleTypedMsg(ctx context.Context, msg fx.Message, typed *Typed) error {
	return f(ctx, msg, typed)
}

// UnknownTypeError is returned when decoding an unregistered type ID.
type UnknownTypeError struct {
	TypeID uint32
}

// Error implements error.
func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type: 0x%08x", e.TypeID)
}

var (
	// ErrNotSerializable indicates the message can't go on the wire.
	ErrNotSerializable = errors.New("not serializable message")
	// ErrUnsupportedCommand is replied to commands nobody handles.
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// SerializableMessage is a message with a registered type ID.
type SerializableMessage interface {
	fx.Message
	TypeID() uint32
	Serializable() proto.Message
}

// MessageTypes maps type IDs to message prototypes. Packages
// defining messages register them in init.
var MessageTypes = map[uint32]SerializableMessage{
	CommandOKTypeID:  (*CommandOK)(nil),
	CommandErrTypeID: (*CommandErr)(nil),
}

// TypedFrom encodes a message into an envelope.
func TypedFrom(msg fx.Message) (*Typed, error) {
	s, ok := msg.(SerializableMessage)
	if !ok {
		return nil, ErrNotSerializable
	}
	data, err := proto.Marshal(s.Serializable())
	if err != nil {
		return nil, err
	}
	return &Typed{TypeId: s.TypeID(), Message: data}, nil
}

// DecodeTyped decodes an envelope from a packet.
func DecodeTyped(data []byte) (*Typed, error) {
	var typed Typed
	if err := proto.Unmarshal(data, &typed); err != nil {
		return nil, err
	}
	return &typed, nil
}

// Decode decodes the enclosed message.
func (m *Typed) Decode() (fx.Message, error) {
	prototype, ok := MessageTypes[m.TypeId]
	if !ok {
		return nil, &UnknownTypeError{TypeID: m.TypeId}
	}
	msg := prototype.NewMessage()
	if err := proto.Unmarshal(m.Message, msg.(SerializableMessage).Serializable()); err != nil {
		return nil, err
	}
	return msg, nil
}

// Encode encodes the envelope into a packet.
func (m *Typed) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// Kind is either TypeIDKindCommand or TypeIDKindEvent.
func (m *Typed) Kind() uint32 {
	return m.TypeId & TypeIDMaskKind
}

// IsCommand tells whether the message is a command or a reply.
func (m *Typed) IsCommand() bool {
	return m.Kind() == TypeIDKindCommand
}

// IsEvent tells whether the message is an event.
func (m *Typed) IsEvent() bool {
	return m.Kind() == TypeIDKindEvent
}

// IsReply tells whether the message is a reply to a command.
func (m *Typed) IsReply() bool {
	return m.IsCommand() && m.TypeId&TypeIDMaskReply != 0
}
