// Package msgs defines the L1 messages of the effects board controller.
package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/fxboard/pkg/framework"
	"github.com/robotalks/fxboard/pkg/l1/msgs"
)

// RegisterRead reads a raw register.
type RegisterRead struct {
	Address uint32 `protobuf:"varint,1,opt,name=address,proto3" json:"address,omitempty"`
}

// NewMessage implements Message.
func (m *RegisterRead) NewMessage() fx.Message { return &RegisterRead{} }

// TypeID implements SerializableMessage.
func (m *RegisterRead) TypeID() uint32 { return RegisterReadTypeID }

// Serializable implements SerializableMessage.
func (m *RegisterRead) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *RegisterRead) ProtoMessage() {}

// Reset implements proto.Message.
func (m *RegisterRead) Reset() { *m = RegisterRead{} }

// String implements proto.Message.
func (m *RegisterRead) String() string { return proto.CompactTextString(m) }

// RegisterWrite writes a raw register, optionally reading it back.
type RegisterWrite struct {
	Address uint32 `protobuf:"varint,1,opt,name=address,proto3" json:"address,omitempty"`
	Value   uint32 `protobuf:"varint,2,opt,name=value,proto3" json:"value,omitempty"`
	Verify  bool   `protobuf:"varint,3,opt,name=verify,proto3" json:"verify,omitempty"`
}

// NewMessage implements Message.
func (m *RegisterWrite) NewMessage() fx.Message { return &RegisterWrite{} }

// TypeID implements SerializableMessage.
func (m *RegisterWrite) TypeID() uint32 { return RegisterWriteTypeID }

// Serializable implements SerializableMessage.
func (m *RegisterWrite) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *RegisterWrite) ProtoMessage() {}

// Reset implements proto.Message.
func (m *RegisterWrite) Reset() { *m = RegisterWrite{} }

// String implements proto.Message.
func (m *RegisterWrite) String() string { return proto.CompactTextString(m) }

// RegisterValue replies RegisterRead and RegisterWrite with the
// value in the board's reply frame.
type RegisterValue struct {
	Address uint32 `protobuf:"varint,1,opt,name=address,proto3" json:"address,omitempty"`
	Value   uint32 `protobuf:"varint,2,opt,name=value,proto3" json:"value,omitempty"`
}

// NewMessage implements Message.
func (m *RegisterValue) NewMessage() fx.Message { return &RegisterValue{} }

// TypeID implements SerializableMessage.
func (m *RegisterValue) TypeID() uint32 { return RegisterValueTypeID }

// Serializable implements SerializableMessage.
func (m *RegisterValue) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *RegisterValue) ProtoMessage() {}

// Reset implements proto.Message.
func (m *RegisterValue) Reset() { *m = RegisterValue{} }

// String implements proto.Message.
func (m *RegisterValue) String() string { return proto.CompactTextString(m) }

// ParamGet reads a parameter.
type ParamGet struct {
	Name string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
}

// NewMessage implements Message.
func (m *ParamGet) NewMessage() fx.Message { return &ParamGet{} }

// TypeID implements SerializableMessage.
func (m *ParamGet) TypeID() uint32 { return ParamGetTypeID }

// Serializable implements SerializableMessage.
func (m *ParamGet) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *ParamGet) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ParamGet) Reset() { *m = ParamGet{} }

// String implements proto.Message.
func (m *ParamGet) String() string { return proto.CompactTextString(m) }

// ParamSet writes a parameter.
type ParamSet struct {
	Name  string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Value uint32 `protobuf:"varint,2,opt,name=value,proto3" json:"value,omitempty"`
}

// NewMessage implements Message.
func (m *ParamSet) NewMessage() fx.Message { return &ParamSet{} }

// TypeID implements SerializableMessage.
func (m *ParamSet) TypeID() uint32 { return ParamSetTypeID }

// Serializable implements SerializableMessage.
func (m *ParamSet) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *ParamSet) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ParamSet) Reset() { *m = ParamSet{} }

// String implements proto.Message.
func (m *ParamSet) String() string { return proto.CompactTextString(m) }

// ParamValue replies ParamGet and ParamSet.
type ParamValue struct {
	Name  string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Value uint32 `protobuf:"varint,2,opt,name=value,proto3" json:"value,omitempty"`
}

// NewMessage implements Message.
func (m *ParamValue) NewMessage() fx.Message { return &ParamValue{} }

// TypeID implements SerializableMessage.
func (m *ParamValue) TypeID() uint32 { return ParamValueTypeID }

// Serializable implements SerializableMessage.
func (m *ParamValue) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *ParamValue) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ParamValue) Reset() { *m = ParamValue{} }

// String implements proto.Message.
func (m *ParamValue) String() string { return proto.CompactTextString(m) }

// ParamListQuery asks for the register map.
type ParamListQuery struct {
}

// NewMessage implements Message.
func (m *ParamListQuery) NewMessage() fx.Message { return &ParamListQuery{} }

// TypeID implements SerializableMessage.
func (m *ParamListQuery) TypeID() uint32 { return ParamListQueryTypeID }

// Serializable implements SerializableMessage.
func (m *ParamListQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *ParamListQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ParamListQuery) Reset() { *m = ParamListQuery{} }

// String implements proto.Message.
func (m *ParamListQuery) String() string { return proto.CompactTextString(m) }

// ParamList replies ParamListQuery.
type ParamList struct {
	Params []*ParamInfo `protobuf:"bytes,1,rep,name=params,proto3" json:"params,omitempty"`
}

// NewMessage implements Message.
func (m *ParamList) NewMessage() fx.Message { return &ParamList{} }

// TypeID implements SerializableMessage.
func (m *ParamList) TypeID() uint32 { return ParamListTypeID }

// Serializable implements SerializableMessage.
func (m *ParamList) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *ParamList) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ParamList) Reset() { *m = ParamList{} }

// String implements proto.Message.
func (m *ParamList) String() string { return proto.CompactTextString(m) }

// ParamInfo describes a parameter in the register map.
type ParamInfo struct {
	Name        string   `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Address     uint32   `protobuf:"varint,2,opt,name=address,proto3" json:"address,omitempty"`
	Max         uint32   `protobuf:"varint,3,opt,name=max,proto3" json:"max,omitempty"`
	Values      []uint32 `protobuf:"varint,4,rep,packed,name=values,proto3" json:"values,omitempty"`
	ReadOnly    bool     `protobuf:"varint,5,opt,name=read_only,json=readOnly,proto3" json:"read_only,omitempty"`
	Description string   `protobuf:"bytes,6,opt,name=description,proto3" json:"description,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *ParamInfo) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ParamInfo) Reset() { *m = ParamInfo{} }

// String implements proto.Message.
func (m *ParamInfo) String() string { return proto.CompactTextString(m) }

// ParamChanged is the event of a parameter set by a command, or a
// read-only parameter changing on the board.
type ParamChanged struct {
	Name  string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Value uint32 `protobuf:"varint,2,opt,name=value,proto3" json:"value,omitempty"`
}

// NewMessage implements Message.
func (m *ParamChanged) NewMessage() fx.Message { return &ParamChanged{} }

// TypeID implements SerializableMessage.
func (m *ParamChanged) TypeID() uint32 { return ParamChangedEventTypeID }

// Serializable implements SerializableMessage.
func (m *ParamChanged) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *ParamChanged) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ParamChanged) Reset() { *m = ParamChanged{} }

// String implements proto.Message.
func (m *ParamChanged) String() string { return proto.CompactTextString(m) }

// GroupBoard is the message group of the board controller.
const GroupBoard = msgs.GroupCustom | 0x00010000

// TypeIDs
const (
	RegisterReadTypeID   uint32 = GroupBoard | 0x0000
	RegisterWriteTypeID  uint32 = GroupBoard | 0x0001
	RegisterValueTypeID  uint32 = GroupBoard | msgs.TypeIDMaskReply | 0x0000
	ParamGetTypeID       uint32 = GroupBoard | 0x0002
	ParamSetTypeID       uint32 = GroupBoard | 0x0003
	ParamValueTypeID     uint32 = GroupBoard | msgs.TypeIDMaskReply | 0x0002
	ParamListQueryTypeID uint32 = GroupBoard | 0x0004
	ParamListTypeID      uint32 = ParamListQueryTypeID | msgs.TypeIDMaskReply

	ParamChangedEventTypeID uint32 = msgs.TypeIDKindEvent | GroupBoard | 0x0000
)

func init() {
	msgs.MessageTypes[RegisterReadTypeID] = (*RegisterRead)(nil)
	msgs.MessageTypes[RegisterWriteTypeID] = (*RegisterWrite)(nil)
	msgs.MessageTypes[RegisterValueTypeID] = (*RegisterValue)(nil)
	msgs.MessageTypes[ParamGetTypeID] = (*ParamGet)(nil)
	msgs.MessageTypes[ParamSetTypeID] = (*ParamSet)(nil)
	msgs.MessageTypes[ParamValueTypeID] = (*ParamValue)(nil)
	msgs.MessageTypes[ParamListQueryTypeID] = (*ParamListQuery)(nil)
	msgs.MessageTypes[ParamListTypeID] = (*ParamList)(nil)
	msgs.MessageTypes[ParamChangedEventTypeID] = (*ParamChanged)(nil)
}
