// Command schedulerctl is a local inspection and demo harness for the
// scheduler package, in the style of cmd/geth's one-shot utility commands:
// a urfave/cli/v2 app wired with per-subcommand flags, backed here by a
// single in-memory Scheduler instance rather than a running node (SPEC_FULL
// §1: this is a reference harness, not a production node integration).
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var app = &cli.App{
	Name:  "schedulerctl",
	Usage: "inspect and drive an in-memory dispatch scheduler",
	Commands: []*cli.Command{
		scheduleCommand,
		agendaCommand,
		advanceCommand,
		migrateCommand,
	},
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
