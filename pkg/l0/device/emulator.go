// Package device emulates the register file of the audio-effects
// board on the L0 wire protocol.
package device

import (
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/fxboard/pkg/l0/comm"
)

// Emulator answers command frames written to it with reply frames
// read from it, like the board firmware does.
type Emulator struct {
	// Faults, if set, rewrites the bytes of each reply before sending.
	// Returning nil drops the reply.
	Faults func(reply comm.Frame) []byte

	lock     sync.Mutex
	regs     map[uint16]uint32
	pending  []byte
	commands int

	out       chan byte
	closed    chan struct{}
	closeOnce sync.Once
}

// NewEmulator creates an Emulator with all registers zero.
func NewEmulator() *Emulator {
	return &Emulator{
		regs:   make(map[uint16]uint32),
		out:    make(chan byte, 64*comm.FrameSize),
		closed: make(chan struct{}),
	}
}

// Register gets the current value of a register.
func (e *Emulator) Register(address uint16) uint32 {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.regs[address]
}

// SetRegister sets a register directly, e.g. to simulate a signal meter.
func (e *Emulator) SetRegister(address uint16, value uint32) {
	e.lock.Lock()
	e.regs[address] = value
	e.lock.Unlock()
}

// Commands returns the number of valid commands processed.
func (e *Emulator) Commands() int {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.commands
}

// Write implements io.Writer. Bytes which don't line up into a valid
// command frame are skipped one at a time until a frame parses.
func (e *Emulator) Write(p []byte) (int, error) {
	select {
	case <-e.closed:
		return 0, io.ErrClosedPipe
	default:
	}
	e.lock.Lock()
	e.pending = append(e.pending, p...)
	var replies []comm.Frame
	for len(e.pending) >= comm.FrameSize {
		cmd, err := comm.ParseCommand(e.pending[:comm.FrameSize])
		if err != nil {
			glog.V(2).Infof("emulator: skip byte 0x%02x: %v", e.pending[0], err)
			e.pending = e.pending[1:]
			continue
		}
		e.pending = e.pending[comm.FrameSize:]
		e.commands++
		if cmd.Op == comm.OpWrite {
			e.regs[cmd.Address] = cmd.Value
		}
		replies = append(replies, comm.EncodeReply(e.regs[cmd.Address]))
	}
	faults := e.Faults
	e.lock.Unlock()

	for _, reply := range replies {
		b := reply[:]
		if faults != nil {
			b = faults(reply)
		}
		for _, v := range b {
			select {
			case e.out <- v:
			default:
				glog.Warning("emulator: output overflow")
			}
		}
	}
	return len(p), nil
}

// Read implements io.Reader. It blocks until reply bytes are available
// or the Emulator is closed.
func (e *Emulator) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	select {
	case p[0] = <-e.out:
	case <-e.closed:
		return 0, io.EOF
	}
	n := 1
	for ; n < len(p); n++ {
		select {
		case p[n] = <-e.out:
		default:
			return n, nil
		}
	}
	return n, nil
}

// Close implements io.Closer.
func (e *Emulator) Close() error {
	e.closeOnce.Do(func() { close(e.closed) })
	return nil
}
