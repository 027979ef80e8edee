package collaborators_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mantlenetworkio/scheduler/collaborators"
)

func TestDefaultOriginCheck(t *testing.T) {
	check := collaborators.DefaultOriginCheck{}

	alice := collaborators.SignedOrigin("alice")
	bob := collaborators.SignedOrigin("bob")

	assert.NoError(t, check.Ensure(collaborators.RootOrigin(), alice), "root may act on anything")
	assert.NoError(t, check.Ensure(alice, alice), "exact match is allowed")
	assert.Error(t, check.Ensure(bob, alice), "mismatched signed origin is rejected")
	assert.Error(t, check.Ensure(alice, collaborators.RootOrigin()), "signed origin may not act on root-owned tasks")
}

func TestLinearWeightInfo(t *testing.T) {
	w := collaborators.DefaultWeightInfo

	assert.Equal(t, w.DispatchSigned, w.ExecuteDispatch(true))
	assert.Equal(t, w.DispatchRoot, w.ExecuteDispatch(false))

	plain := w.ServiceTask(10, false, false)
	named := w.ServiceTask(10, true, false)
	periodic := w.ServiceTask(10, false, true)
	assert.Greater(t, uint64(named), uint64(plain))
	assert.Greater(t, uint64(periodic), uint64(plain))
}
