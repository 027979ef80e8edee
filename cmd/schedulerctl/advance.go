package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"mantlenetworkio/scheduler/collaborators"
	"mantlenetworkio/scheduler/scheduler"
)

// advanceCommand runs a small scripted scenario: zero or more --task specs
// of the form "block:priority:weight:payload", then sweeps on_initialize
// from block 0 up to --to, printing the dispatch trace as it goes. This is
// the multi-task counterpart of `schedule`, useful for reproducing spec §8
// scenarios like priority ordering or the soft-deadline bypass from the
// command line.
var advanceCommand = &cli.Command{
	Name:      "advance",
	Usage:     "schedule a batch of tasks and sweep on_initialize up to a target block",
	ArgsUsage: " ",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{Name: "task", Usage: "block:priority:weight:payload, repeatable"},
		&cli.Uint64Flag{Name: "to", Required: true, Usage: "final block to sweep to"},
		&cli.Uint64Flag{Name: "max-per-block", Usage: "override MaxPerBlock"},
		&cli.Uint64Flag{Name: "max-block-weight", Usage: "override MaxBlockWeight"},
		&cli.Uint64Flag{Name: "inline-max", Usage: "override InlineMax"},
		&cli.BoolFlag{Name: "root", Usage: "schedule under the root origin (default)"},
		&cli.StringFlag{Name: "signer", Usage: "schedule under a named signed origin"},
	},
	Action: runAdvance,
}

func runAdvance(c *cli.Context) error {
	sess := newSession(c)
	origin := originFromFlags(c)

	for _, spec := range c.StringSlice("task") {
		task, err := parseTaskSpec(spec)
		if err != nil {
			return fmt.Errorf("bad --task %q: %w", spec, err)
		}
		addr, err := sess.Scheduler.Schedule(scheduler.At(task.block), nil, task.priority, collaborators.Weight(task.weight), origin, task.payload)
		if err != nil {
			return fmt.Errorf("schedule %q: %w", spec, err)
		}
		fmt.Printf("scheduled %q at %s\n", string(task.payload), addr)
	}

	for b := scheduler.BlockHeight(0); b <= c.Uint64("to"); b++ {
		fmt.Printf("-- block %d --\n", b)
		sess.Scheduler.OnInitialize(b)
	}
	return nil
}

type taskSpec struct {
	block    uint64
	priority uint8
	weight   uint64
	payload  []byte
}

// parseTaskSpec parses "block:priority:weight:payload". payload may itself
// contain ':' since it is everything after the third separator.
func parseTaskSpec(s string) (taskSpec, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) != 4 {
		return taskSpec{}, fmt.Errorf("expected 4 colon-separated fields, got %d", len(parts))
	}
	block, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return taskSpec{}, fmt.Errorf("block: %w", err)
	}
	priority, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return taskSpec{}, fmt.Errorf("priority: %w", err)
	}
	weight, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return taskSpec{}, fmt.Errorf("weight: %w", err)
	}
	return taskSpec{block: block, priority: uint8(priority), weight: weight, payload: []byte(parts[3])}, nil
}
