// Package msgs defines the L1 messages of the pedal controller.
package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/fxboard/pkg/framework"
	"github.com/robotalks/fxboard/pkg/l1/msgs"
)

// PedalStatusQuery queries the status.
type PedalStatusQuery struct {
}

// NewMessage implements Message.
func (m *PedalStatusQuery) NewMessage() fx.Message { return &PedalStatusQuery{} }

// TypeID implements SerializableMessage.
func (m *PedalStatusQuery) TypeID() uint32 { return PedalStatusQueryTypeID }

// Serializable implements SerializableMessage.
func (m *PedalStatusQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *PedalStatusQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *PedalStatusQuery) Reset() { *m = PedalStatusQuery{} }

// String implements proto.Message.
func (m *PedalStatusQuery) String() string { return proto.CompactTextString(m) }

// PedalStatusReply is the response for PedalStatusQuery.
type PedalStatusReply struct {
	Status *PedalStatus `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

// NewMessage implements Message.
func (m *PedalStatusReply) NewMessage() fx.Message { return &PedalStatusReply{} }

// TypeID implements SerializableMessage.
func (m *PedalStatusReply) TypeID() uint32 { return PedalStatusReplyTypeID }

// Serializable implements SerializableMessage.
func (m *PedalStatusReply) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *PedalStatusReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *PedalStatusReply) Reset() { *m = PedalStatusReply{} }

// String implements proto.Message.
func (m *PedalStatusReply) String() string { return proto.CompactTextString(m) }

// PedalConnect connects the pedal to a board controller. Empty Type and ID disconnect.
type PedalConnect struct {
	RegistryURL string `protobuf:"bytes,1,opt,name=registry_url,proto3" json:"registry_url,omitempty"`
	Type        string `protobuf:"bytes,2,opt,name=type,proto3" json:"type,omitempty"`
	ID          string `protobuf:"bytes,3,opt,name=id,proto3" json:"id,omitempty"`
}

// NewMessage implements Message.
func (m *PedalConnect) NewMessage() fx.Message { return &PedalConnect{} }

// TypeID implements SerializableMessage.
func (m *PedalConnect) TypeID() uint32 { return PedalConnectTypeID }

// Serializable implements SerializableMessage.
func (m *PedalConnect) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *PedalConnect) ProtoMessage() {}

// Reset implements proto.Message.
func (m *PedalConnect) Reset() { *m = PedalConnect{} }

// String implements proto.Message.
func (m *PedalConnect) String() string { return proto.CompactTextString(m) }

// PedalStatus is the event reporting device and connection changes.
type PedalStatus struct {
	Device     *PedalDevice  `protobuf:"bytes,1,opt,name=device,proto3" json:"device,omitempty"`
	Connection *PedalConnect `protobuf:"bytes,2,opt,name=connection,proto3" json:"connection,omitempty"`
	// Bound lists the parameters the pedal drives.
	Bound []string `protobuf:"bytes,3,rep,name=bound,proto3" json:"bound,omitempty"`
}

// NewMessage implements Message.
func (m *PedalStatus) NewMessage() fx.Message { return &PedalStatus{} }

// TypeID implements SerializableMessage.
func (m *PedalStatus) TypeID() uint32 { return PedalStatusEventTypeID }

// Serializable implements SerializableMessage.
func (m *PedalStatus) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *PedalStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *PedalStatus) Reset() { *m = PedalStatus{} }

// String implements proto.Message.
func (m *PedalStatus) String() string { return proto.CompactTextString(m) }

// PedalDevice describes the opened device.
type PedalDevice struct {
	Index   uint32 `protobuf:"varint,1,opt,name=index,proto3" json:"index,omitempty"`
	Name    string `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Axes    uint32 `protobuf:"varint,3,opt,name=axes,proto3" json:"axes,omitempty"`
	Buttons uint32 `protobuf:"varint,4,opt,name=buttons,proto3" json:"buttons,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *PedalDevice) ProtoMessage() {}

// Reset implements proto.Message.
func (m *PedalDevice) Reset() { *m = PedalDevice{} }

// String implements proto.Message.
func (m *PedalDevice) String() string { return proto.CompactTextString(m) }

// GroupPedal is the type ID group of the pedal controller.
const GroupPedal = msgs.GroupCustom | 0x00020000

// TypeIDs
const (
	PedalStatusEventTypeID uint32 = msgs.TypeIDKindEvent | GroupPedal | 0x0000
	PedalStatusQueryTypeID uint32 = GroupPedal | 0x0000
	PedalStatusReplyTypeID uint32 = GroupPedal | msgs.TypeIDMaskReply | 0x0000
	PedalConnectTypeID     uint32 = GroupPedal | 0x0001
)

func init() {
	msgs.MessageTypes[PedalStatusEventTypeID] = (*PedalStatus)(nil)
	msgs.MessageTypes[PedalStatusQueryTypeID] = (*PedalStatusQuery)(nil)
	msgs.MessageTypes[PedalStatusReplyTypeID] = (*PedalStatusReply)(nil)
	msgs.MessageTypes[PedalConnectTypeID] = (*PedalConnect)(nil)
}
