package collaborators

import "errors"

// Call is the decoded, runtime-specific unit of work the scheduler hands to
// the Dispatcher. Its shape is entirely owned by the enclosing runtime; the
// scheduler only ever moves opaque Call values between Decode and Dispatch.
type Call interface{}

// ErrDecode is returned by Dispatcher.Decode when bytes do not encode a
// valid Call. The scheduler reports this as CallUnavailable and retires the
// slot; unlike a Lookup fetch miss, it never postpones the task.
var ErrDecode = errors.New("collaborators: call does not decode")

// Dispatcher is the runtime-call decoder and dispatcher (spec §1, out of
// scope for this module; consumed abstractly here). It has no weight
// methods: the service loop takes its weights from WeightInfo and from each
// task's declared weight, never from the Dispatcher.
type Dispatcher interface {
	Decode(raw []byte) (Call, error)
	Dispatch(call Call, origin Origin) error
}

// A task's declared weight is fixed up front, independent of its payload's
// contents (the scheduler never executes a call merely to learn its cost).
// Tasks carry this value themselves in scheduler.Task.DeclaredWeight.
