// Package timelock provides the identity-based-encryption (IBE) sealed-task
// support described in spec §4.6: a task whose payload is only decryptable
// at (or after) its target block, so that the dispatched call is hidden from
// observers until its scheduled execution moment. The IBE primitives
// themselves are an external collaborator behind the Decryptor interface;
// this package defines the wire shape, the block->identity derivation, the
// Adapter the scheduler calls at dispatch time, and a non-IBE
// ReferenceDecryptor for tests.
package timelock

import (
	"fmt"
	"strconv"
)

// Bounds on a SealedPayload's components (spec §3).
const (
	MaxCiphertext = 512
	MaxNonce      = 96
	MaxCapsule    = 512
)

// SealedPayload is an IBE ciphertext plus its nonce and ephemeral-key capsule.
// Sealed tasks are one-shot: they may not be named and may not be periodic
// (spec §3).
type SealedPayload struct {
	Ciphertext []byte
	Nonce      []byte
	Capsule    []byte
}

func (s SealedPayload) Validate() error {
	if len(s.Ciphertext) > MaxCiphertext {
		return fmt.Errorf("timelock: ciphertext length %d exceeds %d", len(s.Ciphertext), MaxCiphertext)
	}
	if len(s.Nonce) > MaxNonce {
		return fmt.Errorf("timelock: nonce length %d exceeds %d", len(s.Nonce), MaxNonce)
	}
	if len(s.Capsule) > MaxCapsule {
		return fmt.Errorf("timelock: capsule length %d exceeds %d", len(s.Capsule), MaxCapsule)
	}
	return nil
}

// IdentityFor derives the well-known IBE identity string for a block height:
// the decimal ASCII representation of the height (spec §4.6). A sealed task
// scheduled for block b must have been encrypted client-side against this
// exact identity.
func IdentityFor(block uint64) []byte {
	return []byte(strconv.FormatUint(block, 10))
}
