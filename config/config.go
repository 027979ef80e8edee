// Package config holds the tunable parameters of the dispatch scheduler.
package config

import "fmt"

// HardDeadline is the priority threshold splitting hard and soft tasks.
// Priorities strictly below this value must dispatch on their target block;
// priorities at or above it may be deferred without ceremony.
const HardDeadline uint8 = 128

var DefaultConfig = SchedulerConfig{
	MaxPerBlock:    50,
	MaxBlockWeight: 2_000_000_000,
	InlineMax:      128,
}

// SchedulerConfig bundles the deterministic limits every node must agree on.
type SchedulerConfig struct {
	// MaxPerBlock is the maximum number of slots (occupied or empty) an
	// agenda may hold. Must be >= 4 for the hole-filling guarantees in §9.
	MaxPerBlock uint32
	// MaxBlockWeight is the per-block weight budget consumed by the service
	// loop. A task whose declared weight exceeds this is never dispatchable
	// and is reported PermanentlyOverweight instead.
	MaxBlockWeight uint64
	// InlineMax is the largest call payload stored inline rather than as a
	// content-addressed Lookup.
	InlineMax uint32
}

func (c *SchedulerConfig) String() string {
	return fmt.Sprintf("MaxPerBlock: %d, MaxBlockWeight: %d, InlineMax: %d", c.MaxPerBlock, c.MaxBlockWeight, c.InlineMax)
}

func (c *SchedulerConfig) Validate() error {
	if c.MaxPerBlock < 4 {
		return fmt.Errorf("MaxPerBlock must be >= 4, got %d", c.MaxPerBlock)
	}
	if c.MaxBlockWeight == 0 {
		return fmt.Errorf("MaxBlockWeight must be > 0")
	}
	return nil
}
