package comm

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// DefaultReplyTimeout is the default time allowed for a complete reply.
const DefaultReplyTimeout = 500 * time.Millisecond

// Link sends command frames and collects reply frames over a
// byte stream, one command at a time.
//
// A single reader goroutine serves the ReadWriter for the lifetime of
// the Link, so Run may be called again after it returns.
type Link struct {
	ReadWriter  io.ReadWriter
	Timeout     time.Duration
	ReadTimeout bool // set to true if ReadWriter returns on idle with a timeout error or io.EOF

	byteCh  chan byte
	running int32
	lock    sync.Mutex
	// stale is set when a transaction gave up waiting, its reply may
	// still be on the way.
	stale bool

	readerOnce sync.Once
	readerDone chan struct{}
	readerErr  error
}

// NewLink creates a Link.
func NewLink(rw io.ReadWriter) *Link {
	return &Link{
		ReadWriter: rw,
		Timeout:    DefaultReplyTimeout,
		byteCh:     make(chan byte, 4*FrameSize),
	}
}

// Ready tells whether Run is active.
func (l *Link) Ready() bool {
	return atomic.LoadInt32(&l.running) != 0
}

// Run enables transactions until ctx is done or reading fails.
func (l *Link) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&l.running, 0, 1) {
		return ErrAlreadyRunning
	}
	defer atomic.StoreInt32(&l.running, 0)

	l.readerOnce.Do(func() {
		l.readerDone = make(chan struct{})
		go l.readLoop()
	})
	select {
	case <-l.readerDone:
		return l.readerErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Link) readLoop() {
	defer close(l.readerDone)
	buf := make([]byte, FrameSize)
	for {
		n, err := l.ReadWriter.Read(buf)
		for _, b := range buf[:n] {
			l.byteCh <- b
		}
		if err != nil {
			if l.ReadTimeout && (err == io.EOF || os.IsTimeout(err)) {
				continue
			}
			l.readerErr = err
			return
		}
	}
}

// Transact sends a command frame and waits for exactly FrameSize
// reply bytes. Bytes received before the command is sent are
// discarded. After a transaction timed out or was canceled, the line
// must stay silent for Timeout before the next command is sent, so a
// late reply is never taken for the next one. The returned reply is
// not validated.
func (l *Link) Transact(ctx context.Context, cmd Frame) ([]byte, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if !l.Ready() {
		return nil, ErrNotReady
	}
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultReplyTimeout
	}
	if l.stale {
		n, err := l.settle(ctx, timeout)
		if n > 0 {
			glog.V(2).Infof("discarded %d late bytes", n)
		}
		if err != nil {
			return nil, err
		}
		l.stale = false
	} else if n := l.flush(); n > 0 {
		glog.V(2).Infof("discarded %d stale bytes", n)
	}
	if glog.V(3) {
		glog.Infof("TX % x", cmd[:])
	}
	if _, err := cmd.WriteTo(l.ReadWriter); err != nil {
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	reply := make([]byte, 0, FrameSize)
	for len(reply) < FrameSize {
		select {
		case b := <-l.byteCh:
			reply = append(reply, b)
		case <-timer.C:
			glog.V(2).Infof("reply timeout with %d bytes: % x", len(reply), reply)
			l.stale = true
			return reply, ErrNoReply
		case <-ctx.Done():
			l.stale = true
			return reply, ctx.Err()
		}
	}
	if glog.V(3) {
		glog.Infof("RX % x", reply)
	}
	return reply, nil
}

func (l *Link) flush() (n int) {
	for {
		select {
		case <-l.byteCh:
			n++
		default:
			return
		}
	}
}

// settle discards received bytes until none arrives for quiet.
func (l *Link) settle(ctx context.Context, quiet time.Duration) (n int, err error) {
	for {
		select {
		case <-l.byteCh:
			n++
		case <-time.After(quiet):
			return n, nil
		case <-ctx.Done():
			return n, ctx.Err()
		}
	}
}
