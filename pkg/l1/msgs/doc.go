// Package msgs defines the L1 wire envelope and the generic replies.
//
// Every message on the wire is a Typed envelope: a 32-bit type ID,
// the protobuf encoded message and a sequence number correlating
// a command with its reply. The type ID is laid out as
//
//	bit 31     kind: 0 command (and replies), 1 event
//	bits 30-16 group
//	bit 15     reply
//	bits 14-0  id within the group
package msgs
