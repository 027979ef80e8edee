package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"mantlenetworkio/scheduler/scheduler"
)

// agendaCommand demonstrates the hole-filling invariant (spec §8 "Hole
// filling"): fill a block's agenda, cancel a prefix of it, then schedule
// fresh tasks and show the first-free-slot reuse.
var agendaCommand = &cli.Command{
	Name:  "agenda",
	Usage: "fill a block's agenda, cancel a prefix, and show slot reuse",
	Flags: []cli.Flag{
		&cli.Uint64Flag{Name: "block", Value: 4, Usage: "block to fill"},
		&cli.IntFlag{Name: "count", Value: 4, Usage: "tasks to schedule initially"},
		&cli.IntFlag{Name: "cancel-first", Value: 0, Usage: "how many of the initial tasks to cancel"},
		&cli.IntFlag{Name: "refill", Value: 0, Usage: "tasks to schedule after cancelling"},
		&cli.Uint64Flag{Name: "max-per-block", Usage: "override MaxPerBlock"},
		&cli.Uint64Flag{Name: "max-block-weight", Usage: "override MaxBlockWeight"},
		&cli.Uint64Flag{Name: "inline-max", Usage: "override InlineMax"},
		&cli.BoolFlag{Name: "root", Usage: "schedule under the root origin (default)"},
		&cli.StringFlag{Name: "signer", Usage: "schedule under a named signed origin"},
	},
	Action: runAgenda,
}

func runAgenda(c *cli.Context) error {
	sess := newSession(c)
	block := c.Uint64("block")
	origin := originFromFlags(c)

	addrs := make([]scheduler.TaskAddress, 0, c.Int("count"))
	for i := 0; i < c.Int("count"); i++ {
		addr, err := sess.Scheduler.Schedule(scheduler.At(block), nil, 10, 1, origin, []byte(fmt.Sprintf("initial-%d", i)))
		if err != nil {
			return err
		}
		addrs = append(addrs, addr)
	}

	for i := 0; i < c.Int("cancel-first") && i < len(addrs); i++ {
		if err := sess.Scheduler.Cancel(origin, addrs[i]); err != nil {
			return err
		}
	}

	for i := 0; i < c.Int("refill"); i++ {
		addr, err := sess.Scheduler.Schedule(scheduler.At(block), nil, 10, 1, origin, []byte(fmt.Sprintf("refill-%d", i)))
		if err != nil {
			return err
		}
		fmt.Printf("refill %d -> %s\n", i, addr)
	}
	return nil
}
