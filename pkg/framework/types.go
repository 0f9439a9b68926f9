package framework

import (
	"context"
	"time"
)

// Named is implemented by things with a name, e.g. Runnables to
// be identified in logs.
type Named interface {
	Name() string
}

// Runnable runs in background until the context is canceled
// or it fails.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Message is anything posted to a Loop.
type Message interface {
	// NewMessage creates an empty message of the same type.
	NewMessage() Message
}

// Controller is invoked on every iteration of the Loop.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

// ControlContext is the state of the current iteration.
type ControlContext interface {
	// Context is canceled when the Loop stops.
	Context() context.Context
	// Time is when the iteration started.
	Time() time.Time
	// Messages are the messages posted before the iteration started.
	Messages() MessageStore

	LoopControl
}

// LoopControl is the access to the Loop from Runnables and Controllers.
type LoopControl interface {
	// PostMessage queues messages for the next iteration.
	PostMessage(msgs ...Message)
	// TriggerNext starts the next iteration without waiting for
	// the interval.
	TriggerNext()
}

// Priority levels. Controllers run in ascending level order.
const (
	PrLvSense int = iota
	PrLvControl
	PrLvPostProc
	PrLvIdle

	PriorityLevels
)

// MessageStore holds the messages of the current iteration.
type MessageStore interface {
	// ProcessMessages visits each remaining message once.
	ProcessMessages(MessageProcessor)
}

// MessageProcessor handles one message at a time.
type MessageProcessor interface {
	ProcessMessage(MessageProcessingContext)
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(MessageProcessingContext)

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(mc MessageProcessingContext) {
	f(mc)
}

// MessageProcessingContext is the message being processed.
type MessageProcessingContext interface {
	CurrentMessage() Message
	// MessageTaken removes the message so later controllers
	// won't see it.
	MessageTaken()
}
