// Package pedal adds the shell commands of the pedal controller.
package pedal

import (
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/fxboard/pkg/cli/sh"
	"github.com/robotalks/fxboard/pkg/l1"
	"github.com/robotalks/fxboard/pkg/pedal/msgs"
)

// BoardType is the controller type pedal.connect discovers without arguments.
const BoardType = "fxboard"

// ParseConnectArgs parses TYPE ID [REGISTRY_URL]. It returns nil if
// the board must be discovered, and the type to discover with.
func ParseConnectArgs(args []string) (*msgs.PedalConnect, string) {
	switch len(args) {
	case 0:
		return nil, BoardType
	case 1:
		return nil, args[0]
	}
	msg := &msgs.PedalConnect{Type: args[0], ID: args[1]}
	if len(args) > 2 {
		msg.RegistryURL = args[2]
	}
	return msg, ""
}

var (
	// PedalStatusCmd exposes PedalStatusQuery command.
	PedalStatusCmd = ishell.Cmd{
		Name:    "pedal.status",
		Aliases: []string{"ps"},
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.PedalStatusQuery{})
		}),
	}

	// PedalConnectCmd exposes PedalConnect command.
	PedalConnectCmd = ishell.Cmd{
		Name:    "pedal.connect",
		Aliases: []string{"pc"},
		Help:    "[TYPE [ID [REGISTRY_URL]]]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			msg, ctlType := ParseConnectArgs(c.Args)
			if msg == nil {
				_, info, err := sh.ShellFrom(c).SelectController(func(info l1.ControllerInfo) bool {
					return info.Ref.Type == ctlType
				})
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(fmt.Errorf("no %s controller discovered", ctlType))
					return
				}
				msg = &msgs.PedalConnect{Type: info.Ref.Type, ID: info.Ref.ID}
			}
			sh.DoCommand(c, msg)
		}),
	}

	// PedalDisconnectCmd releases the board.
	PedalDisconnectCmd = ishell.Cmd{
		Name: "pedal.disconnect",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.PedalConnect{})
		}),
	}
)

func init() {
	sh.AddCmds(
		&PedalStatusCmd,
		&PedalConnectCmd,
		&PedalDisconnectCmd,
	)
}
