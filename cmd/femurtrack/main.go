// Package main is the femurtrack command.
package main

import (
	"os"

	"github.com/kneelab/femurtrack/cli"
	"github.com/kneelab/femurtrack/logging"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		logging.Global().Error(err)
		os.Exit(1)
	}
}
