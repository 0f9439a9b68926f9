package comm

// markerState is the state of reply marker validation.
type markerState int

const (
	expectMarkerClear markerState = iota // previous marker was set
	expectMarkerSet                      // previous marker was clear
)

// markerChecker validates strict marker alternation one byte at a time.
// The zero value behaves as if a marker-set byte preceded byte 0, so a
// valid reply starts with a clear marker.
type markerChecker struct {
	state markerState
}

// step consumes one byte and reports whether its marker is expected.
func (c *markerChecker) step(b byte) bool {
	set := b&markerBit != 0
	switch c.state {
	case expectMarkerClear:
		if set {
			return false
		}
		c.state = expectMarkerSet
	case expectMarkerSet:
		if !set {
			return false
		}
		c.state = expectMarkerClear
	}
	return true
}

// DecodeReply validates a reply frame and extracts its 32-bit value
// from bytes 2-6. Bytes 0 and 1 only take part in marker validation.
func DecodeReply(b []byte) (uint32, error) {
	if len(b) != FrameSize {
		return 0, &FramingError{Length: len(b), Index: -1}
	}
	var checker markerChecker
	for i, v := range b {
		if !checker.step(v) {
			return 0, &FramingError{
				Length:   len(b),
				Index:    i,
				Markers:  MarkersOf(b),
				Expected: ReplyMarkers,
			}
		}
	}
	return uint32(valueLayout.get(b)), nil
}

// EncodeReply encodes a reply frame as the board does.
func EncodeReply(value uint32) (f Frame) {
	valueLayout.put(&f, uint64(value))
	f.setMarkers(ReplyMarkers)
	return
}
