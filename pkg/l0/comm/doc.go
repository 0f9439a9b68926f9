// Package comm provides L0 register access protocol support.
package comm

// L0 protocol is communicated between the host controller and the
// audio-effects board firmware over a byte-oriented serial link.
// Every transfer is a fixed 7-byte frame: the host sends a command
// frame carrying a 16-bit register address, a read/write flag and a
// 32-bit value, and the board answers with a 7-byte reply frame
// carrying a 32-bit value.
//
// The most-significant bit of each frame byte is a marker bit used
// only for synchronization. Command frames carry the marker sequence
// 0,1,1,0,1,0,1 (bytes 1 and 2 both set, separating the address field
// from the value field). Reply frames must carry the strictly
// alternating sequence 0,1,0,1,0,1,0. The two conventions differ on
// purpose and a reply shaped like a command is rejected.
//
// Command layout (M = marker, W = write flag, A = address, V = value):
//
//	byte 0: 0 W A15 A14 A13 A12 A11 A10
//	byte 1: 1 A9  A8  A7  A6  A5  A4  A3
//	byte 2: 1 A2  A1  A0  V31 V30 V29 V28
//	byte 3: 0 V27 ... V21
//	byte 4: 1 V20 ... V14
//	byte 5: 0 V13 ... V7
//	byte 6: 1 V6  ... V0
//
// Replies use the same value placement in bytes 2-6. Bytes 0 and 1 of
// a reply carry no payload.
//
// There is no bit verification (CRC/checksum) beyond the marker check.
// If needed, parity can be enabled on the serial port.
//
// The codec (EncodeCommand, DecodeReply and friends) is stateless and
// safe for concurrent use. Link and Client compose a transport around
// it and allow exactly one outstanding command: replies carry no
// request identifier.
//
// Producer: host controller (commands), board firmware (replies)
// Consumer: board firmware (commands), host controller (replies)
