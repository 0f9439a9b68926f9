package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/robotalks/fxboard/pkg/board"
	"github.com/robotalks/fxboard/pkg/framework"
	"github.com/robotalks/fxboard/pkg/l0/serial"
	"github.com/robotalks/fxboard/pkg/l1"
	env "github.com/robotalks/fxboard/pkg/l1/env/controller"
)

func init() {
	env.SetControllerType("fxboard", l1.ControllerMeta{Description: "Audio Effects Board"})
	env.SetupFlags()
	serial.SetupFlags()
	board.SetupFlags()
}

func main() {
	flag.Parse()

	env := env.NewConfig().MustNewEnv()
	ctl := board.NewConfig().MustNewController(env)
	framework.NewLoop().Add(env, ctl).RunOrFail()
}
