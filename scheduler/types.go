package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"mantlenetworkio/scheduler/collaborators"
	"mantlenetworkio/scheduler/config"
	"mantlenetworkio/scheduler/timelock"
)

// BlockHeight is the host-advanced monotonic clock the scheduler is indexed
// by. Time advances only when the host invokes OnInitialize (spec §1
// Non-goals: no wall-clock scheduling).
type BlockHeight = uint64

// SlotIndex is the position of a task within its block's agenda vector.
type SlotIndex = uint32

// TaskAddress identifies a task's slot. Stable while the task sits in an
// agenda; invalidated on cancel, on successful completion of a non-periodic
// task, and on reschedule (spec §3).
type TaskAddress struct {
	Block BlockHeight
	Index SlotIndex
}

func (a TaskAddress) String() string {
	return fmt.Sprintf("(%d,%d)", a.Block, a.Index)
}

// taskAddressJSON mirrors core/events.go's use of hexutil types on emitted
// event fields (NewPreconfTxEvent's hexutil.Uint64), so addresses logged or
// shipped over JSON-RPC render as the familiar "0x..." quantity rather than
// a bare decimal.
type taskAddressJSON struct {
	Block hexutil.Uint64 `json:"block"`
	Index hexutil.Uint64 `json:"index"`
}

func (a TaskAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(taskAddressJSON{Block: hexutil.Uint64(a.Block), Index: hexutil.Uint64(a.Index)})
}

func (a *TaskAddress) UnmarshalJSON(data []byte) error {
	var j taskAddressJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	a.Block = uint64(j.Block)
	a.Index = uint32(j.Index)
	return nil
}

// TaskName is an opaque 32-byte identifier, globally unique while the named
// task is live.
type TaskName = common.Hash

// HardDeadline re-exports the priority threshold so callers needn't import
// config directly just to classify a priority.
const HardDeadline = config.HardDeadline

// IsHard reports whether priority p must run on its target block.
func IsHard(p uint8) bool { return p < HardDeadline }

// Period describes periodic rescheduling: reinsert the task every Interval
// blocks, RemainingCount more times (including the current dispatch).
// RemainingCount == math.MaxUint32 means indefinite.
type Period struct {
	Interval       BlockHeight
	RemainingCount uint32
}

const Indefinite = ^uint32(0)

// PayloadKind distinguishes an inline call from a content-addressed one.
type PayloadKind uint8

const (
	PayloadInline PayloadKind = iota
	PayloadLookup
)

// Payload is the Bounded handle produced by binding a raw call (spec §4.1):
// either the bytes themselves (small enough to store inline) or a
// content-address Lookup into the external PayloadRegistry.
type Payload struct {
	Kind   PayloadKind
	Inline []byte
	Hash   common.Hash
	Len    uint32
}

func (p Payload) String() string {
	if p.Kind == PayloadInline {
		return fmt.Sprintf("Inline(%d bytes)", len(p.Inline))
	}
	return fmt.Sprintf("Lookup(%s, %d bytes)", p.Hash, p.Len)
}

// When is a resolved-or-resolvable dispatch time: either an absolute block
// (At) or a delta from the current block (After). After(d) resolves to
// current_block + d + 1 (spec §4.2).
type When struct {
	isAfter bool
	value   BlockHeight
}

func At(block BlockHeight) When       { return When{isAfter: false, value: block} }
func After(delta BlockHeight) When    { return When{isAfter: true, value: delta} }

func (w When) Resolve(now BlockHeight) BlockHeight {
	if w.isAfter {
		return now + w.value + 1
	}
	return w.value
}

// Task is one enrolled unit of work. Exactly one of Payload / Sealed is set
// (spec §3 invariant). Sealed tasks may not be named and may not be periodic.
type Task struct {
	Name   *TaskName
	Priority uint8
	// DeclaredWeight is the caller-declared compute/IO cost reserved
	// against the block weight budget at dispatch time (spec §4.3). It is
	// separate from the WeightInfo-derived fixed overheads, which the
	// service loop adds on top.
	DeclaredWeight collaborators.Weight
	Payload *Payload
	Sealed  *timelock.SealedPayload
	Period  *Period
	Origin  collaborators.Origin
}

func (t *Task) IsSealed() bool { return t.Sealed != nil }

func (t *Task) IsNamed() bool { return t.Name != nil }

func (t *Task) IsPeriodic() bool { return t.Period != nil }

// lenHint is the byte-length the weight function charges against, used for
// both inline and looked-up payloads (sealed tasks charge on ciphertext
// length).
func (t *Task) lenHint() uint32 {
	switch {
	case t.Sealed != nil:
		return uint32(len(t.Sealed.Ciphertext))
	case t.Payload != nil && t.Payload.Kind == PayloadInline:
		return uint32(len(t.Payload.Inline))
	case t.Payload != nil:
		return t.Payload.Len
	default:
		return 0
	}
}
