package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"mantlenetworkio/scheduler/collaborators"
	"mantlenetworkio/scheduler/scheduler"
)

var scheduleCommand = &cli.Command{
	Name:      "schedule",
	Usage:     "enroll one task and advance the scheduler far enough to dispatch it",
	ArgsUsage: "<payload>",
	Flags: []cli.Flag{
		&cli.Uint64Flag{Name: "at", Usage: "absolute target block"},
		&cli.Uint64Flag{Name: "after", Usage: "relative target block (mutually exclusive with --at)"},
		&cli.StringFlag{Name: "name", Usage: "enroll as a named task"},
		&cli.Uint64Flag{Name: "priority", Value: 10, Usage: "< 128 is a hard deadline, >= 128 is soft"},
		&cli.Uint64Flag{Name: "weight", Value: 1, Usage: "declared weight reserved at dispatch"},
		&cli.Uint64Flag{Name: "period-interval", Usage: "reinsert every N blocks"},
		&cli.Uint64Flag{Name: "period-count", Usage: "number of occurrences, including the first"},
		&cli.BoolFlag{Name: "root", Usage: "schedule under the root origin (default if --signer unset)"},
		&cli.StringFlag{Name: "signer", Usage: "schedule under a named signed origin"},
		&cli.Uint64Flag{Name: "max-per-block", Usage: "override MaxPerBlock"},
		&cli.Uint64Flag{Name: "max-block-weight", Usage: "override MaxBlockWeight"},
		&cli.Uint64Flag{Name: "inline-max", Usage: "override InlineMax"},
	},
	Action: runSchedule,
}

func runSchedule(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one payload argument")
	}
	payload := []byte(c.Args().Get(0))

	sess := newSession(c)
	origin := originFromFlags(c)

	var period *scheduler.Period
	if c.Uint64("period-interval") > 0 {
		period = &scheduler.Period{Interval: c.Uint64("period-interval"), RemainingCount: uint32(c.Uint64("period-count"))}
		if period.RemainingCount == 0 {
			period.RemainingCount = scheduler.Indefinite
		}
	}

	when := scheduler.At(c.Uint64("at"))
	if c.Uint64("after") > 0 {
		when = scheduler.After(c.Uint64("after"))
	}

	var (
		addr scheduler.TaskAddress
		err  error
	)
	if name := c.String("name"); name != "" {
		addr, err = sess.Scheduler.ScheduleNamed(nameFromFlag(name), when, period, uint8(c.Uint64("priority")), collaborators.Weight(c.Uint64("weight")), origin, payload)
	} else {
		addr, err = sess.Scheduler.Schedule(when, period, uint8(c.Uint64("priority")), collaborators.Weight(c.Uint64("weight")), origin, payload)
	}
	if err != nil {
		return err
	}
	fmt.Printf("scheduled at %s\n", addr)

	for b := scheduler.BlockHeight(0); b <= addr.Block; b++ {
		sess.Scheduler.OnInitialize(b)
	}
	return nil
}
