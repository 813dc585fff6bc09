package main

import (
	"github.com/alecthomas/kong"

	"github.com/ssocks/ssgate/internal/cli"
)

var version = "dev" // has to be set by ldflags

func main() {
	cliStruct := &cli.CLI{}
	ctx := kong.Parse(cliStruct, kong.Vars{
		"version": version,
	})

	err := ctx.Run(cliStruct, version)
	ctx.FatalIfErrorf(err)
}
