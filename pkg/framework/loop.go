package framework

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultLoopInterval is the iteration interval when nothing triggers.
const DefaultLoopInterval = 100 * time.Millisecond

// Loop runs Controllers periodically, or when triggered, in
// priority order and feeds them with posted Messages.
type Loop struct {
	Interval time.Duration

	controllers [PriorityLevels][]Controller
	runnables   []Runnable

	lock     sync.Mutex
	pending  []Message
	wakeUpCh chan struct{}
}

// LoopAdder knows how to add itself to a Loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type loopCtxKey struct{}

// LoopCtlFrom gets the LoopControl from the context passed to
// Runnables started by the Loop. It returns nil outside a Loop.
func LoopCtlFrom(ctx context.Context) LoopControl {
	ctl, _ := ctx.Value(loopCtxKey{}).(LoopControl)
	return ctl
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{
		Interval: DefaultLoopInterval,
		wakeUpCh: make(chan struct{}, 1),
	}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController adds Controllers at the priority level. A Controller
// which is also a Runnable is started with the Loop.
func (l *Loop) AddController(level int, ctls ...Controller) *Loop {
	l.controllers[level] = append(l.controllers[level], ctls...)
	for _, ctl := range ctls {
		if r, ok := ctl.(Runnable); ok {
			l.runnables = append(l.runnables, r)
		}
	}
	return l
}

// AddRunnable adds Runnables started with the Loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runnables = append(l.runnables, runnables...)
	return l
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msgs ...Message) {
	l.lock.Lock()
	l.pending = append(l.pending, msgs...)
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// Run implements Runnable. It returns after all Runnables stopped.
func (l *Loop) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.WithValue(ctx, loopCtxKey{}, LoopControl(l)))
	runner := NewRunnerWith(runCtx).Go(l.runnables...)

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultLoopInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			cancel()
			if err := runner.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		case <-ticker.C:
		case <-l.wakeUpCh:
		}
		l.iterate(runCtx)
	}
}

// RunOrFail runs the Loop until SIGINT or SIGTERM, for use in main.
func (l *Loop) RunOrFail() {
	runner := NewRunner().HandleSignals()
	if err := runner.Go(l).Wait(); err != nil {
		log.Fatalln(err)
	}
}

func (l *Loop) iterate(ctx context.Context) {
	l.lock.Lock()
	iter := &iteration{Loop: l, ctx: ctx, time: time.Now(), messages: l.pending}
	l.pending = nil
	l.lock.Unlock()
	for level := range l.controllers {
		for _, ctl := range l.controllers[level] {
			if err := ctl.Control(iter); err != nil {
				glog.Errorf("controller error at level %d: %v", level, err)
			}
		}
	}
	if n := len(iter.messages); n > 0 {
		glog.V(4).Infof("%d messages not taken", n)
	}
}

type iteration struct {
	*Loop
	ctx      context.Context
	time     time.Time
	messages []Message
}

func (t *iteration) Context() context.Context { return t.ctx }
func (t *iteration) Time() time.Time          { return t.time }
func (t *iteration) Messages() MessageStore   { return t }

type messageContext struct {
	msg   Message
	taken bool
}

func (c *messageContext) CurrentMessage() Message { return c.msg }
func (c *messageContext) MessageTaken()           { c.taken = true }

// ProcessMessages implements MessageStore.
func (t *iteration) ProcessMessages(proc MessageProcessor) {
	remains := t.messages[:0]
	for _, msg := range t.messages {
		mc := &messageContext{msg: msg}
		proc.ProcessMessage(mc)
		if !mc.taken {
			remains = append(remains, msg)
		}
	}
	for i := len(remains); i < len(t.messages); i++ {
		t.messages[i] = nil
	}
	t.messages = remains
}
