// Package board adds the shell commands of the effects board.
package board

import (
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/fxboard/pkg/board"
	"github.com/robotalks/fxboard/pkg/board/msgs"
	"github.com/robotalks/fxboard/pkg/cli/sh"
	"github.com/robotalks/fxboard/pkg/l0/comm"
)

// ParseRegisterCommand parses the arguments of reg.read and reg.write
// into a Command. Numbers accept 0x, 0o and 0b prefixes.
func ParseRegisterCommand(op comm.Operation, args []string) (comm.Command, error) {
	want := 1
	if op == comm.OpWrite {
		want = 2
	}
	if len(args) < want {
		return comm.Command{}, fmt.Errorf("expect %d arguments", want)
	}
	addr, err := strconv.ParseUint(args[0], 0, 64)
	if err != nil {
		return comm.Command{}, fmt.Errorf("invalid address %q", args[0])
	}
	var val uint64
	if op == comm.OpWrite {
		if val, err = strconv.ParseUint(args[1], 0, 64); err != nil {
			return comm.Command{}, fmt.Errorf("invalid value %q", args[1])
		}
	}
	return comm.NewCommand(addr, op, val)
}

// ParseParamValue parses the value of param.set.
func ParseParamValue(s string) (uint32, error) {
	switch s {
	case "on":
		return 1, nil
	case "off":
		return 0, nil
	}
	val, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return uint32(val), nil
}

// ParamOf converts ParamInfo to a board.Param.
func ParamOf(info *msgs.ParamInfo) board.Param {
	return board.Param{
		Name:        info.Name,
		Address:     uint16(info.Address),
		Max:         info.Max,
		Values:      info.Values,
		ReadOnly:    info.ReadOnly,
		Description: info.Description,
	}
}

func printParams(c *ishell.Context, list *msgs.ParamList) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tADDRESS\tRANGE\tACCESS\tDESCRIPTION")
	for _, info := range list.Params {
		p := ParamOf(info)
		access := "rw"
		if p.ReadOnly {
			access = "ro"
		}
		fmt.Fprintf(w, "%s\t0x%04x\t%s\t%s\t%s\n", p.Name, p.Address, p.Range(), access, p.Description)
	}
	w.Flush()
	c.Print(buf.String())
}

var (
	// RegReadCmd reads a register.
	RegReadCmd = ishell.Cmd{
		Name:    "reg.read",
		Aliases: []string{"rr"},
		Help:    "ADDRESS",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			cmd, err := ParseRegisterCommand(comm.OpRead, c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, &msgs.RegisterRead{Address: uint32(cmd.Address)})
		}),
	}

	// RegWriteCmd writes a register.
	RegWriteCmd = ishell.Cmd{
		Name:    "reg.write",
		Aliases: []string{"rw"},
		Help:    "ADDRESS VALUE [verify]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			cmd, err := ParseRegisterCommand(comm.OpWrite, c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			verify := len(c.Args) > 2 && c.Args[2] == "verify"
			sh.DoCommand(c, &msgs.RegisterWrite{Address: uint32(cmd.Address), Value: cmd.Value, Verify: verify})
		}),
	}

	// ParamGetCmd reads a parameter.
	ParamGetCmd = ishell.Cmd{
		Name:    "param.get",
		Aliases: []string{"get"},
		Help:    "NAME",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("expect parameter name"))
				return
			}
			sh.DoCommand(c, &msgs.ParamGet{Name: c.Args[0]})
		}),
	}

	// ParamSetCmd writes a parameter.
	ParamSetCmd = ishell.Cmd{
		Name:    "param.set",
		Aliases: []string{"set"},
		Help:    "NAME VALUE",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(fmt.Errorf("expect parameter name and value"))
				return
			}
			val, err := ParseParamValue(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, &msgs.ParamSet{Name: c.Args[0], Value: val})
		}),
	}

	// ParamsCmd lists the register map of the board.
	ParamsCmd = ishell.Cmd{
		Name:    "params",
		Aliases: []string{"p"},
		Help:    "list parameters",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			if s.OutputJSON {
				sh.DoCommand(c, &msgs.ParamListQuery{})
				return
			}
			reply, err := s.Do(&msgs.ParamListQuery{})
			if err != nil {
				c.Err(err)
				return
			}
			list, ok := reply.(*msgs.ParamList)
			if !ok {
				c.Err(fmt.Errorf("unexpected reply %T", reply))
				return
			}
			printParams(c, list)
		}),
	}
)

func init() {
	sh.AddCmds(
		&RegReadCmd,
		&RegWriteCmd,
		&ParamGetCmd,
		&ParamSetCmd,
		&ParamsCmd,
	)
}
