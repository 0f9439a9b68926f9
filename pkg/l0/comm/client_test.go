package comm

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// scriptedPort answers each written frame with the next scripted reply.
type scriptedPort struct {
	readCh  chan byte
	lock    sync.Mutex
	writes  [][]byte
	replies [][]byte
	// delays postpones the reply to the write of the same index.
	delays []time.Duration
}

func newScriptedPort(replies ...[]byte) *scriptedPort {
	return &scriptedPort{readCh: make(chan byte, 256), replies: replies}
}

func (p *scriptedPort) Read(b []byte) (int, error) {
	v, ok := <-p.readCh
	if !ok {
		return 0, io.EOF
	}
	b[0] = v
	return 1, nil
}

func (p *scriptedPort) Write(b []byte) (int, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.writes = append(p.writes, append([]byte(nil), b...))
	if len(p.replies) > 0 {
		reply := p.replies[0]
		p.replies = p.replies[1:]
		if i := len(p.writes) - 1; i < len(p.delays) && p.delays[i] > 0 {
			go func(d time.Duration) {
				time.Sleep(d)
				p.inject(reply...)
			}(p.delays[i])
		} else {
			p.inject(reply...)
		}
	}
	return len(b), nil
}

func (p *scriptedPort) inject(bs ...byte) {
	for _, v := range bs {
		p.readCh <- v
	}
}

func (p *scriptedPort) written() [][]byte {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.writes
}

func reply(v uint32) []byte {
	f := EncodeReply(v)
	return f[:]
}

type clientTestEnv struct {
	t      *testing.T
	port   *scriptedPort
	link   *Link
	client *Client
	cancel func()
	done   chan error
}

func newClientTestEnv(t *testing.T, replies ...[]byte) *clientTestEnv {
	env := &clientTestEnv{t: t, port: newScriptedPort(replies...), done: make(chan error, 1)}
	env.link = NewLink(env.port)
	env.link.Timeout = 50 * time.Millisecond
	env.client = NewClient(env.link)
	var ctx context.Context
	ctx, env.cancel = context.WithCancel(context.Background())
	go func() { env.done <- env.client.Run(ctx) }()
	for i := 0; !env.link.Ready(); i++ {
		require.True(t, i < 100, "link not ready")
		time.Sleep(time.Millisecond)
	}
	return env
}

func (e *clientTestEnv) stop() {
	e.cancel()
	select {
	case err := <-e.done:
		require.Equal(e.t, context.Canceled, err)
	case <-time.After(time.Second):
		e.t.Fatal("link not stopped")
	}
}

func TestLinkNotReady(t *testing.T) {
	link := NewLink(newScriptedPort())
	_, err := link.Transact(context.Background(), ReadCommand(1).Frame())
	require.Equal(t, ErrNotReady, err)
}

func TestLinkAlreadyRunning(t *testing.T) {
	env := newClientTestEnv(t)
	defer env.stop()
	require.Equal(t, ErrAlreadyRunning, env.link.Run(context.Background()))
}

func TestLinkReadError(t *testing.T) {
	port := newScriptedPort()
	close(port.readCh)
	link := NewLink(port)
	require.Equal(t, io.EOF, link.Run(context.Background()))
	require.False(t, link.Ready())
}

func TestLinkIdleEOF(t *testing.T) {
	port := &idlePort{}
	link := NewLink(port)
	link.ReadTimeout = true
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Equal(t, context.DeadlineExceeded, link.Run(ctx))
}

type idlePort struct{}

func (idlePort) Read(b []byte) (int, error) {
	time.Sleep(time.Millisecond)
	return 0, io.EOF
}

func (idlePort) Write(b []byte) (int, error) { return len(b), nil }

func TestClientReadRegister(t *testing.T) {
	env := newClientTestEnv(t, reply(0x12345678))
	defer env.stop()
	v, err := env.client.ReadRegister(context.Background(), 0x0104)
	require.NoError(t, err)
	require.Equal(t, uint32(0x12345678), v)
	cmd := ReadCommand(0x0104).Frame()
	require.Equal(t, [][]byte{cmd[:]}, env.port.written())
}

func TestClientRetryOnFramingError(t *testing.T) {
	bad := EncodeCommand(0, OpWrite, 7)
	env := newClientTestEnv(t, bad[:], reply(7))
	defer env.stop()
	v, err := env.client.ReadRegister(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, uint32(7), v)
	require.Len(t, env.port.written(), 2)
}

func TestClientRetriesExhausted(t *testing.T) {
	bad := []byte{0x80, 0, 0x80, 0, 0x80, 0, 0x80}
	env := newClientTestEnv(t, bad, bad, bad)
	defer env.stop()
	env.client.Retries = 2
	_, err := env.client.ReadRegister(context.Background(), 2)
	require.True(t, errors.Is(err, ErrFraming))
	require.Len(t, env.port.written(), 3)
}

func TestClientNoReply(t *testing.T) {
	env := newClientTestEnv(t)
	defer env.stop()
	env.client.Retries = 1
	err := env.client.WriteRegister(context.Background(), 2, 3)
	require.Equal(t, ErrNoReply, err)
	require.Len(t, env.port.written(), 2)
}

func TestClientPartialReplyTimeout(t *testing.T) {
	env := newClientTestEnv(t, reply(1)[:4])
	defer env.stop()
	env.client.Retries = 0
	_, err := env.client.ReadRegister(context.Background(), 2)
	require.Equal(t, ErrNoReply, err)
}

func TestClientDiscardsStaleBytes(t *testing.T) {
	env := newClientTestEnv(t, reply(42))
	defer env.stop()
	env.port.inject(0x00, 0x80, 0x00)
	time.Sleep(10 * time.Millisecond)
	v, err := env.client.Do(context.Background(), ReadCommand(9))
	require.NoError(t, err)
	require.Equal(t, uint32(42), v)
}

func TestClientLateReplyDiscarded(t *testing.T) {
	env := newClientTestEnv(t, reply(111), reply(222))
	defer env.stop()
	env.port.delays = []time.Duration{80 * time.Millisecond}
	env.client.Retries = 0
	ctx := context.Background()

	_, err := env.client.ReadRegister(ctx, 1)
	require.Equal(t, ErrNoReply, err)
	v, err := env.client.ReadRegister(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, uint32(222), v)
	require.Len(t, env.port.written(), 2)
}

// readerCountingPort records how many Reads run at the same time.
type readerCountingPort struct {
	*scriptedPort
	active, max int32
}

func (p *readerCountingPort) Read(b []byte) (int, error) {
	n := atomic.AddInt32(&p.active, 1)
	defer atomic.AddInt32(&p.active, -1)
	for {
		m := atomic.LoadInt32(&p.max)
		if n <= m || atomic.CompareAndSwapInt32(&p.max, m, n) {
			break
		}
	}
	return p.scriptedPort.Read(b)
}

func TestLinkRunAgain(t *testing.T) {
	port := &readerCountingPort{scriptedPort: newScriptedPort(reply(7))}
	link := NewLink(port)
	link.Timeout = 50 * time.Millisecond
	client := NewClient(link)

	run := func() (func(), chan error) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- client.Run(ctx) }()
		for i := 0; !link.Ready(); i++ {
			require.True(t, i < 100, "link not ready")
			time.Sleep(time.Millisecond)
		}
		return cancel, done
	}

	cancel, done := run()
	cancel()
	require.Equal(t, context.Canceled, <-done)
	require.False(t, link.Ready())

	cancel, done = run()
	defer func() {
		cancel()
		require.Equal(t, context.Canceled, <-done)
	}()
	v, err := client.ReadRegister(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, uint32(7), v)
	require.Equal(t, int32(1), atomic.LoadInt32(&port.max))
}

func TestClientWriteVerify(t *testing.T) {
	env := newClientTestEnv(t, reply(5), reply(5))
	defer env.stop()
	require.NoError(t, env.client.WriteVerify(context.Background(), 0x0200, 5))
	w, r := WriteCommand(0x0200, 5).Frame(), ReadCommand(0x0200).Frame()
	require.Equal(t, [][]byte{w[:], r[:]}, env.port.written())
}

func TestClientWriteVerifyMismatch(t *testing.T) {
	env := newClientTestEnv(t, reply(5), reply(4), reply(5), reply(4))
	defer env.stop()
	env.client.Retries = 1
	err := env.client.WriteVerify(context.Background(), 0x0200, 5)
	require.Equal(t, &VerifyError{Address: 0x0200, Expected: 5, Actual: 4}, err)
	require.True(t, IsRetryable(err))
	require.Len(t, env.port.written(), 4)
}

func TestClientWriteVerifyRecovers(t *testing.T) {
	env := newClientTestEnv(t, reply(5), reply(0), reply(5), reply(5))
	defer env.stop()
	require.NoError(t, env.client.WriteVerify(context.Background(), 0x0200, 5))
}

func TestClientContextCanceled(t *testing.T) {
	env := newClientTestEnv(t)
	defer env.stop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := env.client.ReadRegister(ctx, 1)
	require.Equal(t, context.Canceled, err)
	require.False(t, IsRetryable(err))
}
