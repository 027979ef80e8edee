package scheduler

import "github.com/ethereum/go-ethereum/event"

// ScheduledEvent is emitted when a task is successfully enrolled.
type ScheduledEvent struct {
	Address TaskAddress
	Name    *TaskName
}

// CanceledEvent is emitted when a task is successfully cancelled.
type CanceledEvent struct {
	Address TaskAddress
	Name    *TaskName
}

// DispatchedEvent is emitted once per attempted dispatch; DispatchErr is the
// inner call's outcome, which is opaque to the scheduler and reported purely
// for observability (spec §7).
type DispatchedEvent struct {
	Address     TaskAddress
	Name        *TaskName
	DispatchErr error
}

// CallUnavailableEvent is emitted when a task's payload could not be
// resolved, decrypted, or decoded at dispatch time (spec §4.5, §4.6).
type CallUnavailableEvent struct {
	Address TaskAddress
	Name    *TaskName
}

// PeriodicFailedEvent is emitted when a periodic task's next occurrence
// could not be reinserted because its target agenda was full (spec §4.3).
type PeriodicFailedEvent struct {
	Address TaskAddress
	Name    *TaskName
}

// PermanentlyOverweightEvent is emitted when a task's full cost (service
// task overhead plus dispatch overhead plus declared weight) exceeds the
// block weight budget left after the agenda's base charge; the slot is
// retained for explicit cancellation (spec §4.3).
type PermanentlyOverweightEvent struct {
	Address TaskAddress
	Name    *TaskName
}

// events bundles the scheduler's broadcast feeds, one per event kind, in
// the same style go-ethereum's core package uses separate event.Feed values
// per event type rather than one feed of interface{}.
type events struct {
	scope                 event.SubscriptionScope
	scheduledFeed         event.Feed
	canceledFeed          event.Feed
	dispatchedFeed        event.Feed
	callUnavailableFeed   event.Feed
	periodicFailedFeed    event.Feed
	overweightFeed        event.Feed
}

func (e *events) emitScheduled(ev ScheduledEvent)                   { e.scheduledFeed.Send(ev) }
func (e *events) emitCanceled(ev CanceledEvent)                     { e.canceledFeed.Send(ev) }
func (e *events) emitDispatched(ev DispatchedEvent)                 { e.dispatchedFeed.Send(ev) }
func (e *events) emitCallUnavailable(ev CallUnavailableEvent)       { e.callUnavailableFeed.Send(ev) }
func (e *events) emitPeriodicFailed(ev PeriodicFailedEvent)         { e.periodicFailedFeed.Send(ev) }
func (e *events) emitOverweight(ev PermanentlyOverweightEvent)      { e.overweightFeed.Send(ev) }

// SubscribeScheduled registers ch to receive ScheduledEvents until the
// returned Subscription is unsubscribed or the scheduler is closed.
func (s *Scheduler) SubscribeScheduled(ch chan<- ScheduledEvent) event.Subscription {
	return s.events.scope.Track(s.events.scheduledFeed.Subscribe(ch))
}

func (s *Scheduler) SubscribeCanceled(ch chan<- CanceledEvent) event.Subscription {
	return s.events.scope.Track(s.events.canceledFeed.Subscribe(ch))
}

func (s *Scheduler) SubscribeDispatched(ch chan<- DispatchedEvent) event.Subscription {
	return s.events.scope.Track(s.events.dispatchedFeed.Subscribe(ch))
}

func (s *Scheduler) SubscribeCallUnavailable(ch chan<- CallUnavailableEvent) event.Subscription {
	return s.events.scope.Track(s.events.callUnavailableFeed.Subscribe(ch))
}

func (s *Scheduler) SubscribePeriodicFailed(ch chan<- PeriodicFailedEvent) event.Subscription {
	return s.events.scope.Track(s.events.periodicFailedFeed.Subscribe(ch))
}

func (s *Scheduler) SubscribeOverweight(ch chan<- PermanentlyOverweightEvent) event.Subscription {
	return s.events.scope.Track(s.events.overweightFeed.Subscribe(ch))
}

// Close unsubscribes every feed subscription, as go-ethereum services do in
// their Stop methods via an event.SubscriptionScope.
func (s *Scheduler) Close() {
	s.events.scope.Close()
}
