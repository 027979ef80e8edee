package scheduler

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"mantlenetworkio/scheduler/collaborators"
	"mantlenetworkio/scheduler/timelock"
)

// taskRLP is the wire shape of a Task, following go-ethereum's convention of
// a dedicated, pointer-free marshalling struct alongside the in-memory type
// (core/types.txdata / core/types/meta_transaction.go do the same for
// Transaction). Optional fields that would otherwise need nil pointers are
// flattened into a presence flag plus a zero value.
type taskRLP struct {
	HasName  bool
	Name     common.Hash
	Priority uint8
	Weight   uint64

	Sealed           bool
	PayloadKind      uint8
	PayloadInline    []byte
	PayloadHash      common.Hash
	PayloadLen       uint32
	SealedCiphertext []byte
	SealedNonce      []byte
	SealedCapsule    []byte

	HasPeriod       bool
	PeriodInterval  uint64
	PeriodRemaining uint32

	OriginRoot   bool
	OriginSigner string
}

// EncodeTask serializes a Task to its canonical RLP wire form, for export,
// migration tooling, or cross-process persistence backends (spec §3 logical
// layout; go-ethereum's rlp package is the teacher's canonical encoding,
// reused here rather than hand-rolling one, per SPEC_FULL §1).
func EncodeTask(t *Task) ([]byte, error) {
	w := taskRLP{
		Priority:     t.Priority,
		Weight:       uint64(t.DeclaredWeight),
		OriginRoot:   t.Origin.Root,
		OriginSigner: t.Origin.Signer,
	}
	if t.Name != nil {
		w.HasName = true
		w.Name = *t.Name
	}
	if t.Period != nil {
		w.HasPeriod = true
		w.PeriodInterval = t.Period.Interval
		w.PeriodRemaining = t.Period.RemainingCount
	}
	switch {
	case t.Sealed != nil:
		w.Sealed = true
		w.SealedCiphertext = t.Sealed.Ciphertext
		w.SealedNonce = t.Sealed.Nonce
		w.SealedCapsule = t.Sealed.Capsule
	case t.Payload != nil:
		w.PayloadKind = uint8(t.Payload.Kind)
		w.PayloadInline = t.Payload.Inline
		w.PayloadHash = t.Payload.Hash
		w.PayloadLen = t.Payload.Len
	default:
		return nil, fmt.Errorf("scheduler: task has neither payload nor sealed ciphertext")
	}
	return rlp.EncodeToBytes(&w)
}

// DecodeTask reverses EncodeTask.
func DecodeTask(data []byte) (*Task, error) {
	var w taskRLP
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return nil, fmt.Errorf("scheduler: decode task: %w", err)
	}
	task := &Task{
		Priority:       w.Priority,
		DeclaredWeight: collaborators.Weight(w.Weight),
		Origin:         collaborators.Origin{Root: w.OriginRoot, Signer: w.OriginSigner},
	}
	if w.HasName {
		name := w.Name
		task.Name = &name
	}
	if w.HasPeriod {
		task.Period = &Period{Interval: w.PeriodInterval, RemainingCount: w.PeriodRemaining}
	}
	if w.Sealed {
		task.Sealed = &timelock.SealedPayload{Ciphertext: w.SealedCiphertext, Nonce: w.SealedNonce, Capsule: w.SealedCapsule}
	} else {
		task.Payload = &Payload{Kind: PayloadKind(w.PayloadKind), Inline: w.PayloadInline, Hash: w.PayloadHash, Len: w.PayloadLen}
	}
	return task, nil
}
