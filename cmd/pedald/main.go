package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/robotalks/fxboard/pkg/framework"
	"github.com/robotalks/fxboard/pkg/l1"
	env "github.com/robotalks/fxboard/pkg/l1/env/controller"
	"github.com/robotalks/fxboard/pkg/pedal"
)

func init() {
	env.SetControllerType("pedal", l1.ControllerMeta{Description: "Foot Controller"})
	env.SetupFlags()
	pedal.SetupFlags()
}

func main() {
	flag.Parse()

	env := env.NewConfig().MustNewEnv()
	ctl, err := pedal.NewConfig().NewController(env)
	if err != nil {
		log.Fatalln(err)
	}
	framework.NewLoop().Add(env, ctl).RunOrFail()
}
