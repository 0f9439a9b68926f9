// Package l1 defines how L1 controllers, which own hardware, talk
// to the components (shells, monitors, L2 logic) using them.
package l1

import (
	"context"
	"fmt"
	"strings"

	fx "github.com/robotalks/fxboard/pkg/framework"
)

// Registrar publishes an L1 controller and delivers its events.
// Commands received are posted to the loop as CommandMsg.
type Registrar interface {
	SendEvent(context.Context, fx.Message) error
}

// Command is a received command waiting for its reply.
type Command interface {
	Msg() fx.Message
	// Done sends the reply.
	Done(fx.Message) error
}

// CommandMsg carries a Command through the loop.
type CommandMsg struct {
	Command Command
}

// NewMessage implements Message.
func (m *CommandMsg) NewMessage() fx.Message { return &CommandMsg{} }

// ControllerRef identifies an L1 controller.
type ControllerRef struct {
	Type string
	ID   string
}

// ParseControllerRef parses "TYPE/ID".
func ParseControllerRef(s string) (ControllerRef, error) {
	var ref ControllerRef
	if parts := strings.SplitN(s, "/", 2); len(parts) == 2 {
		ref.Type, ref.ID = parts[0], parts[1]
	}
	if !ref.IsValid() {
		return ref, fmt.Errorf("invalid controller ref %q, expect TYPE/ID", s)
	}
	return ref, nil
}

// Name is "TYPE/ID".
func (r ControllerRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid tells whether both Type and ID are set.
func (r ControllerRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// ControllerMeta is published along with the ref.
type ControllerMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// ControllerInfo describes a registered controller.
type ControllerInfo struct {
	Ref  ControllerRef  `json:"ref"`
	Meta ControllerMeta `json:"meta"`
}

// Connector finds and connects L1 controllers.
type Connector interface {
	Discover(context.Context) ([]ControllerInfo, error)
	Connect(context.Context, ControllerRef) (ControllerConn, error)
}

// ControllerConn sends commands to a connected controller.
type ControllerConn interface {
	DoCommand(fx.Message) CommandFuture
}

// Result is the reply of a command.
type Result struct {
	Msg fx.Message
	Err error
}

// CommandFuture delivers exactly one Result.
type CommandFuture interface {
	ResultChan() <-chan Result
}

// Await waits for the result of the command.
func Await(ctx context.Context, f CommandFuture) (fx.Message, error) {
	select {
	case res := <-f.ResultChan():
		return res.Msg, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
