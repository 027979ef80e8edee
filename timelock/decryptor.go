package timelock

import "errors"

// ErrWrongIdentity is returned when a ciphertext was encrypted against an
// identity other than the one supplied to Decrypt (spec §4.6, failure mode a).
var ErrWrongIdentity = errors.New("timelock: ciphertext encrypted to a different identity")

// Decryptor is the IBE primitive consumed abstractly by the scheduler (spec
// §1, §6). Given a ciphertext and the block-time identity material, it
// returns plaintext bytes or fails. The real IBE scheme (public params,
// master/derived keys) is out of scope here.
type Decryptor interface {
	SetParams(publicParams, masterPublic []byte)
	IdentityFor(block uint64) []byte
	Decrypt(sealed SealedPayload, identity []byte) ([]byte, error)
}

// Adapter wraps a concrete Decryptor and the dispatch-time resolution step
// described in spec §4.6: resolve the current block's identity, decrypt,
// and hand back plaintext or a typed failure. It deliberately knows nothing
// about scheduler.TaskAddress or agendas so it stays free of an import cycle
// with the scheduler package; the scheduler's dispatch bridge calls this with
// only the block height it already has in hand.
type Adapter struct {
	Decryptor Decryptor
}

func NewAdapter(d Decryptor) *Adapter {
	return &Adapter{Decryptor: d}
}

// Resolve decrypts sealed against block's identity and decodes nothing
// further -- decoding the plaintext into a runtime call is the dispatch
// bridge's job, not the timelock adapter's (spec §4.5 step 2 is separate
// from step 1).
func (a *Adapter) Resolve(sealed SealedPayload, block uint64) ([]byte, error) {
	id := a.Decryptor.IdentityFor(block)
	return a.Decryptor.Decrypt(sealed, id)
}
