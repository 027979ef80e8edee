// Package collaborators defines the abstract capabilities the scheduler
// consumes from its enclosing runtime: the origin/extrinsic model, the
// content-addressed payload store, the call dispatcher, and the weight
// functions. Concrete runtimes supply their own implementations; this
// package also ships minimal reference implementations of the origin check,
// the payload store and the weight functions, in the spirit of
// go-ethereum's reference backends. It ships no Dispatcher implementation.
package collaborators

import "fmt"

// Origin is an opaque token identifying who authorized a task: a signed
// account, or the privileged "root" origin. The enclosing runtime's real
// extrinsic/origin model is out of scope (spec §1); this is a minimal stand-in
// wide enough to express the invariants the scheduler must enforce.
type Origin struct {
	Root    bool
	Signer  string
}

func RootOrigin() Origin { return Origin{Root: true} }

func SignedOrigin(signer string) Origin { return Origin{Signer: signer} }

func (o Origin) String() string {
	if o.Root {
		return "root"
	}
	return fmt.Sprintf("signed(%s)", o.Signer)
}

func (o Origin) Equal(other Origin) bool {
	return o.Root == other.Root && o.Signer == other.Signer
}

// OriginCheck ensures a caller's origin is privileged enough to act on a
// stored origin. Root may act on anything; a signed origin may only act on
// tasks stored under that exact same origin.
type OriginCheck interface {
	Ensure(caller, stored Origin) error
}

// DefaultOriginCheck is the reference OriginCheck: root bypasses, otherwise
// an exact match is required.
type DefaultOriginCheck struct{}

func (DefaultOriginCheck) Ensure(caller, stored Origin) error {
	if caller.Root {
		return nil
	}
	if caller.Equal(stored) {
		return nil
	}
	return fmt.Errorf("origin %s may not act on task scheduled by %s", caller, stored)
}
