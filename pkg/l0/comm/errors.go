package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady indicates the Link is not running.
	ErrNotReady = errors.New("not ready")
	// ErrAlreadyRunning indicates Run is called on a running Link.
	ErrAlreadyRunning = errors.New("already running")
	// ErrNoReply indicates no complete reply frame arrived in time.
	ErrNoReply = errors.New("no reply")
	// ErrFraming matches every *FramingError with errors.Is.
	ErrFraming = errors.New("framing error")
)

// FramingError indicates a frame which must not be trusted, either
// because of its length or because of its marker bits.
type FramingError struct {
	// Length is the number of bytes received.
	Length int
	// Index is the first byte violating the marker sequence,
	// or -1 when the length is wrong.
	Index int
	// Markers and Expected are marker patterns as returned by MarkersOf.
	Markers  byte
	Expected byte
}

// Error implements error.
func (e *FramingError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("framing error: %d bytes, expect %d", e.Length, FrameSize)
	}
	return fmt.Sprintf("framing error: marker mismatch at byte %d (markers %07b, expect %07b)",
		e.Index, e.Markers, e.Expected)
}

// Is makes errors.Is(err, ErrFraming) true.
func (e *FramingError) Is(target error) bool {
	return target == ErrFraming
}

// RangeError indicates a number doesn't fit in its protocol field.
type RangeError struct {
	Field string
	Value uint64
	Bits  uint
}

// Error implements error.
func (e *RangeError) Error() string {
	return fmt.Sprintf("%s 0x%x exceeds %d bits", e.Field, e.Value, e.Bits)
}

// BitRangeError indicates an invalid bit range for Slice.
type BitRangeError struct {
	Upper uint
	Lower uint
}

// Error implements error.
func (e *BitRangeError) Error() string {
	return fmt.Sprintf("invalid bit range [%d:%d]", e.Upper, e.Lower)
}

// VerifyError indicates the value read back differs from the value written.
type VerifyError struct {
	Address  uint16
	Expected uint32
	Actual   uint32
}

// Error implements error.
func (e *VerifyError) Error() string {
	return fmt.Sprintf("verify register 0x%04x: wrote 0x%08x, read 0x%08x",
		e.Address, e.Expected, e.Actual)
}

// IsRetryable tells whether a command failing with err may succeed
// when sent again: framing errors, missing replies and verify mismatches.
func IsRetryable(err error) bool {
	var verifyErr *VerifyError
	return errors.Is(err, ErrFraming) ||
		errors.Is(err, ErrNoReply) ||
		errors.As(err, &verifyErr)
}
