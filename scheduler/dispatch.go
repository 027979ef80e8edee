package scheduler

import (
	"github.com/ethereum/go-ethereum/log"
)

// resolveTaskBytes implements dispatch bridge step 1 (spec §4.5): turn a
// task's Bounded payload, or its sealed ciphertext, into raw call bytes, or
// report that resolution failed.
func (s *Scheduler) resolveTaskBytes(block BlockHeight, task *Task) ([]byte, bool) {
	if task.Sealed != nil {
		if s.timelock == nil {
			log.Warn("scheduler: sealed task but no timelock adapter configured")
			return nil, false
		}
		plaintext, err := s.timelock.Resolve(*task.Sealed, block)
		if err != nil {
			log.Debug("scheduler: timelock decryption failed", "block", block, "err", err)
			return nil, false
		}
		return plaintext, true
	}
	return resolvePayload(s.registry, task.Payload)
}

// dispatchOutcome is whichever terminal state a dispatch attempt reached.
type dispatchOutcome int

const (
	outcomeDispatched dispatchOutcome = iota
	outcomeUnavailable
)

// executeDispatch runs the dispatch bridge (spec §4.5) for the task at
// (block, idx) and reports what happened; it does not mutate the agenda —
// the service loop decides retirement/postponement based on the outcome and
// the task's hard/soft, named/anonymous classification (spec §4.3, §4.4).
func (s *Scheduler) executeDispatch(block BlockHeight, addr TaskAddress, task *Task) dispatchOutcome {
	raw, ok := s.resolveTaskBytes(block, task)
	if !ok {
		metricsCallUnavailable()
		s.events.emitCallUnavailable(CallUnavailableEvent{Address: addr, Name: task.Name})
		return outcomeUnavailable
	}
	call, err := s.dispatcher.Decode(raw)
	if err != nil {
		log.Debug("scheduler: call failed to decode", "address", addr, "err", err)
		metricsCallUnavailable()
		s.events.emitCallUnavailable(CallUnavailableEvent{Address: addr, Name: task.Name})
		return outcomeUnavailable
	}
	dispatchErr := s.dispatcher.Dispatch(call, task.Origin)
	metricsDispatch(dispatchErr == nil)
	log.Debug("scheduler: dispatched", "address", addr, "err", dispatchErr)
	s.events.emitDispatched(DispatchedEvent{Address: addr, Name: task.Name, DispatchErr: dispatchErr})
	return outcomeDispatched
}
