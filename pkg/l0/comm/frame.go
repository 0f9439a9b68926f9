package comm

import "io"

// FrameSize is the size of every command and reply frame.
const FrameSize = 7

// Marker patterns as returned by MarkersOf, byte 0 being the
// most-significant of the 7 bits.
const (
	CommandMarkers byte = 0x35 // 0,1,1,0,1,0,1
	ReplyMarkers   byte = 0x2a // 0,1,0,1,0,1,0
)

const (
	markerBit byte = 0x80
	writeFlag byte = 0x40
)

// Frame is an encoded 7-byte command or reply.
type Frame [FrameSize]byte

// Bytes returns a copy of the frame for sending.
func (f Frame) Bytes() []byte {
	b := make([]byte, FrameSize)
	copy(b, f[:])
	return b
}

// WriteTo writes the frame in a single Write.
func (f Frame) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f[:])
	return int64(n), err
}

// Markers returns the marker pattern of the frame.
func (f Frame) Markers() byte {
	return MarkersOf(f[:])
}

// MarkersOf packs the marker bits of up to 7 bytes, the marker of b[0]
// being bit 6 of the result.
func MarkersOf(b []byte) (m byte) {
	for i, v := range b {
		if i >= FrameSize {
			break
		}
		if v&markerBit != 0 {
			m |= 1 << uint(FrameSize-1-i)
		}
	}
	return
}

func (f *Frame) setMarkers(pattern byte) {
	for i := range f {
		if pattern&(1<<uint(FrameSize-1-i)) != 0 {
			f[i] |= markerBit
		}
	}
}

// fieldMap places bits src of a word into bits dst of frame byte index.
type fieldMap struct {
	index int
	dst   BitField
	src   BitField
}

func (m fieldMap) put(f *Frame, word uint64) {
	f[m.index] |= byte(m.dst.Insert(m.src.Extract(word)))
}

func (m fieldMap) get(b []byte) uint64 {
	return m.src.Insert(m.dst.Extract(uint64(b[m.index])))
}

type layout []fieldMap

func (l layout) put(f *Frame, word uint64) {
	for _, m := range l {
		m.put(f, word)
	}
}

func (l layout) get(b []byte) (word uint64) {
	for _, m := range l {
		word |= m.get(b)
	}
	return
}

var (
	addressLayout = layout{
		{index: 0, dst: BitField{5, 0}, src: BitField{15, 10}},
		{index: 1, dst: BitField{6, 0}, src: BitField{9, 3}},
		{index: 2, dst: BitField{6, 4}, src: BitField{2, 0}},
	}
	valueLayout = layout{
		{index: 2, dst: BitField{3, 0}, src: BitField{31, 28}},
		{index: 3, dst: BitField{6, 0}, src: BitField{27, 21}},
		{index: 4, dst: BitField{6, 0}, src: BitField{20, 14}},
		{index: 5, dst: BitField{6, 0}, src: BitField{13, 7}},
		{index: 6, dst: BitField{6, 0}, src: BitField{6, 0}},
	}
)
