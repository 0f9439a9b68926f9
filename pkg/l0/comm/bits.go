package comm

// BitField is an inclusive bit range, zero-indexed from the
// least-significant bit.
type BitField struct {
	Upper uint
	Lower uint
}

// MaxBit is the highest bit index a BitField may address.
const MaxBit uint = 63

// Valid checks MaxBit >= Upper >= Lower.
func (f BitField) Valid() bool {
	return f.Upper >= f.Lower && f.Upper <= MaxBit
}

// Width returns the number of bits covered.
func (f BitField) Width() uint {
	return f.Upper - f.Lower + 1
}

// Mask returns the right-justified mask of the field.
func (f BitField) Mask() uint64 {
	if w := f.Width(); w < 64 {
		return 1<<w - 1
	}
	return ^uint64(0)
}

// Extract returns bits Upper..Lower of v right-justified.
// The field must be valid.
func (f BitField) Extract(v uint64) uint64 {
	return (v >> f.Lower) & f.Mask()
}

// Insert places the low Width bits of v at the field position.
// The field must be valid.
func (f BitField) Insert(v uint64) uint64 {
	return (v & f.Mask()) << f.Lower
}

// Slice extracts bits upper down to lower (inclusive) of value,
// right-justified.
func Slice(value uint64, upper, lower uint) (uint64, error) {
	f := BitField{Upper: upper, Lower: lower}
	if !f.Valid() {
		return 0, &BitRangeError{Upper: upper, Lower: lower}
	}
	return f.Extract(value), nil
}
