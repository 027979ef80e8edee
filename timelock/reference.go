package timelock

import (
	"crypto/hmac"
	"crypto/sha256"
)

// ReferenceDecryptor is a deterministic stand-in for a real IBE scheme,
// suitable for tests and for embedding the scheduler where no production
// timelock network is wired in yet. It derives a keystream from the
// identity and the configured master secret and XORs it with the
// ciphertext; it is not cryptographically meaningful IBE, but it faithfully
// reproduces the two failure modes spec §4.6 describes: wrong identity and
// malformed plaintext.
type ReferenceDecryptor struct {
	masterSecret []byte
}

func NewReferenceDecryptor(masterSecret []byte) *ReferenceDecryptor {
	return &ReferenceDecryptor{masterSecret: masterSecret}
}

func (r *ReferenceDecryptor) SetParams(publicParams, masterPublic []byte) {
	r.masterSecret = masterPublic
}

func (r *ReferenceDecryptor) IdentityFor(block uint64) []byte {
	return IdentityFor(block)
}

// Encrypt is the client-side counterpart used by tests to construct a
// SealedPayload for a given target identity.
func (r *ReferenceDecryptor) Encrypt(plaintext, identity []byte) SealedPayload {
	stream := r.keystream(identity, len(plaintext))
	ct := make([]byte, len(plaintext))
	for i := range plaintext {
		ct[i] = plaintext[i] ^ stream[i]
	}
	return SealedPayload{
		Ciphertext: ct,
		Nonce:      identity,
		Capsule:    r.capsule(identity),
	}
}

func (r *ReferenceDecryptor) Decrypt(sealed SealedPayload, identity []byte) ([]byte, error) {
	expectedCapsule := r.capsule(identity)
	if !hmac.Equal(expectedCapsule, sealed.Capsule) {
		return nil, ErrWrongIdentity
	}
	stream := r.keystream(identity, len(sealed.Ciphertext))
	pt := make([]byte, len(sealed.Ciphertext))
	for i := range sealed.Ciphertext {
		pt[i] = sealed.Ciphertext[i] ^ stream[i]
	}
	return pt, nil
}

func (r *ReferenceDecryptor) capsule(identity []byte) []byte {
	mac := hmac.New(sha256.New, r.masterSecret)
	mac.Write(identity)
	return mac.Sum(nil)
}

func (r *ReferenceDecryptor) keystream(identity []byte, length int) []byte {
	out := make([]byte, 0, length)
	counter := byte(0)
	for len(out) < length {
		mac := hmac.New(sha256.New, r.masterSecret)
		mac.Write(identity)
		mac.Write([]byte{counter})
		out = append(out, mac.Sum(nil)...)
		counter++
	}
	return out[:length]
}
