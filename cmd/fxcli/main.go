package main

import (
	"github.com/robotalks/fxboard/pkg/cli/sh"
	env "github.com/robotalks/fxboard/pkg/l1/env/connector"

	_ "github.com/robotalks/fxboard/pkg/cli/cmds/board"
	_ "github.com/robotalks/fxboard/pkg/cli/cmds/pedal"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
