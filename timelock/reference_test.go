package timelock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mantlenetworkio/scheduler/timelock"
)

func TestReferenceDecryptorHappyPath(t *testing.T) {
	d := timelock.NewReferenceDecryptor([]byte("master-secret"))
	identity := timelock.IdentityFor(4)

	sealed := d.Encrypt([]byte("log(42)"), identity)

	plaintext, err := d.Decrypt(sealed, identity)
	require.NoError(t, err)
	assert.Equal(t, []byte("log(42)"), plaintext)
}

func TestReferenceDecryptorWrongIdentity(t *testing.T) {
	d := timelock.NewReferenceDecryptor([]byte("master-secret"))

	sealed := d.Encrypt([]byte("log(42)"), timelock.IdentityFor(3))

	_, err := d.Decrypt(sealed, timelock.IdentityFor(4))
	assert.ErrorIs(t, err, timelock.ErrWrongIdentity)
}

func TestAdapterResolve(t *testing.T) {
	d := timelock.NewReferenceDecryptor([]byte("master-secret"))
	adapter := timelock.NewAdapter(d)

	sealed := d.Encrypt([]byte("hello"), timelock.IdentityFor(7))

	plaintext, err := adapter.Resolve(sealed, 7)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), plaintext)

	_, err = adapter.Resolve(sealed, 8)
	assert.ErrorIs(t, err, timelock.ErrWrongIdentity)
}

func TestSealedPayloadValidateBounds(t *testing.T) {
	over := timelock.SealedPayload{Ciphertext: make([]byte, timelock.MaxCiphertext+1)}
	assert.Error(t, over.Validate())

	ok := timelock.SealedPayload{Ciphertext: []byte("short")}
	assert.NoError(t, ok.Validate())
}
