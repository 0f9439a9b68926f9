package framework

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
)

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string { return r.name }

// NamedRun attaches a name to a Runnable.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{Runnable: runnable, name: name}
}

// ErrForcedExit is returned by Runner.Wait when stop is requested twice.
var ErrForcedExit = errors.New("forced exit")

// Runner starts Runnables in goroutines and collects their errors.
type Runner struct {
	Context context.Context

	started int
	errCh   chan error
	exitCh  chan struct{}
}

// NewRunner creates a Runner on a background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a Runner on the context.
func NewRunnerWith(ctx context.Context) *Runner {
	return &Runner{
		Context: ctx,
		errCh:   make(chan error),
		exitCh:  make(chan struct{}),
	}
}

// HandleSignals cancels the context on SIGINT or SIGTERM. A second
// signal makes Wait return ErrForcedExit immediately.
func (r *Runner) HandleSignals() *Runner {
	ctx, cancel := context.WithCancel(r.Context)
	r.Context = ctx
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		glog.Info("stop requested")
		cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(r.exitCh)
	}()
	return r
}

// Go starts Runnables on the Runner's context.
func (r *Runner) Go(runnables ...Runnable) *Runner {
	for _, runnable := range runnables {
		name := fmt.Sprintf("#%d", r.started)
		if named, ok := runnable.(Named); ok {
			name = named.Name()
		}
		r.started++
		go r.run(name, runnable)
	}
	return r
}

func (r *Runner) run(name string, runnable Runnable) {
	glog.V(4).Infof("runner %s started", name)
	err := runnable.Run(r.Context)
	if err != nil && err != context.Canceled {
		glog.Errorf("runner %s: %v", name, err)
	} else {
		glog.V(4).Infof("runner %s stopped", name)
	}
	select {
	case r.errCh <- err:
	case <-r.exitCh:
	}
}

// Wait waits for all started Runnables and aggregates the errors
// other than context.Canceled.
func (r *Runner) Wait() error {
	var errs AggregatedError
	for ; r.started > 0; r.started-- {
		select {
		case err := <-r.errCh:
			if err != context.Canceled {
				errs.Add(err)
			}
		case <-r.exitCh:
			return ErrForcedExit
		}
	}
	return errs.Aggregate()
}

// RunWithContextCloser runs fn which doesn't take a context and
// closes closer when ctx is canceled to unblock fn. closer is
// always closed before returning.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	errCh := make(chan error, 1)
	go func() { errCh <- fn() }()
	select {
	case err := <-errCh:
		closer.Close()
		return err
	case <-ctx.Done():
		closer.Close()
		<-errCh
		return ctx.Err()
	}
}
