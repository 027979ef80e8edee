package collaborators_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mantlenetworkio/scheduler/collaborators"
)

func TestMemRegistryRefcounting(t *testing.T) {
	r := collaborators.NewMemRegistry()

	hash, length := r.Store([]byte("hello world"))
	assert.Equal(t, uint32(11), length)
	assert.False(t, r.IsRequested(hash))

	r.Request(hash)
	r.Request(hash)
	assert.True(t, r.IsRequested(hash))

	r.Unrequest(hash)
	assert.True(t, r.IsRequested(hash), "still one outstanding request")

	r.Unrequest(hash)
	assert.False(t, r.IsRequested(hash))

	data, ok := r.Fetch(hash)
	require.True(t, ok)
	assert.Equal(t, []byte("hello world"), data)
}

func TestMemRegistryFetchMiss(t *testing.T) {
	r := collaborators.NewMemRegistry()
	_, ok := r.Fetch(common.Hash{})
	assert.False(t, ok)
}
