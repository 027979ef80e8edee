package scheduler

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"mantlenetworkio/scheduler/collaborators"
	"mantlenetworkio/scheduler/timelock"
)

// Schedule enrolls an anonymous task (spec §4.2). origin is recorded as the
// task's owner for later cancel/reschedule authorization checks.
func (s *Scheduler) Schedule(when When, period *Period, priority uint8, declaredWeight collaborators.Weight, origin collaborators.Origin, callBytes []byte) (TaskAddress, error) {
	target, err := s.resolveFutureTarget(when)
	if err != nil {
		return TaskAddress{}, err
	}
	payload := bindPayload(s.registry, callBytes, s.cfg.InlineMax)
	task := &Task{
		Priority:       priority,
		DeclaredWeight: declaredWeight,
		Payload:        &payload,
		Period:         period,
		Origin:         origin,
	}
	return s.place(target, task)
}

// ScheduleAfter is a convenience wrapper over Schedule(After(delta), ...)
// (SPEC_FULL §3, schedule_after).
func (s *Scheduler) ScheduleAfter(delta BlockHeight, period *Period, priority uint8, declaredWeight collaborators.Weight, origin collaborators.Origin, callBytes []byte) (TaskAddress, error) {
	return s.Schedule(After(delta), period, priority, declaredWeight, origin, callBytes)
}

// ScheduleNamed enrolls a named task, additionally failing if name is
// already live (spec §4.2).
func (s *Scheduler) ScheduleNamed(name TaskName, when When, period *Period, priority uint8, declaredWeight collaborators.Weight, origin collaborators.Origin, callBytes []byte) (TaskAddress, error) {
	if _, exists := s.names.Get(name); exists {
		return TaskAddress{}, fmt.Errorf("%w: name %s already scheduled", ErrFailedToSchedule, name)
	}
	target, err := s.resolveFutureTarget(when)
	if err != nil {
		return TaskAddress{}, err
	}
	payload := bindPayload(s.registry, callBytes, s.cfg.InlineMax)
	nameCopy := name
	task := &Task{
		Name:           &nameCopy,
		Priority:       priority,
		DeclaredWeight: declaredWeight,
		Payload:        &payload,
		Period:         period,
		Origin:         origin,
	}
	addr, err := s.place(target, task)
	if err != nil {
		return TaskAddress{}, err
	}
	s.names.Set(name, addr)
	return addr, nil
}

// ScheduleNamedAfter is the named counterpart of ScheduleAfter.
func (s *Scheduler) ScheduleNamedAfter(name TaskName, delta BlockHeight, period *Period, priority uint8, declaredWeight collaborators.Weight, origin collaborators.Origin, callBytes []byte) (TaskAddress, error) {
	return s.ScheduleNamed(name, After(delta), period, priority, declaredWeight, origin, callBytes)
}

// ScheduleSealed enrolls a one-shot timelock-sealed task (spec §4.2). Sealed
// tasks may not be named and may not be periodic.
func (s *Scheduler) ScheduleSealed(when When, priority uint8, declaredWeight collaborators.Weight, origin collaborators.Origin, sealed timelock.SealedPayload) (TaskAddress, error) {
	if err := sealed.Validate(); err != nil {
		return TaskAddress{}, err
	}
	target, err := s.resolveFutureTarget(when)
	if err != nil {
		return TaskAddress{}, err
	}
	task := &Task{
		Priority:       priority,
		DeclaredWeight: declaredWeight,
		Sealed:         &sealed,
		Origin:         origin,
	}
	return s.place(target, task)
}

// resolveFutureTarget resolves when against the scheduler's current block
// and rejects non-future targets (spec §4.2).
func (s *Scheduler) resolveFutureTarget(when When) (BlockHeight, error) {
	target := when.Resolve(s.now)
	if target <= s.now {
		return 0, fmt.Errorf("%w: target %d, current %d", ErrTargetBlockInPast, target, s.now)
	}
	return target, nil
}

// place inserts task via insertIntoAgenda and emits Scheduled on success.
// On failure it releases the registry request taken when the payload was
// bound, so a rejected schedule leaves no outstanding request behind.
func (s *Scheduler) place(block BlockHeight, task *Task) (TaskAddress, error) {
	addr, err := s.insertIntoAgenda(block, task)
	if err != nil {
		dropPayload(s.registry, task.Payload)
		return TaskAddress{}, err
	}
	log.Debug("scheduler: task scheduled", "address", addr, "priority", task.Priority, "named", task.IsNamed(), "sealed", task.IsSealed())
	s.events.emitScheduled(ScheduledEvent{Address: addr, Name: task.Name})
	return addr, nil
}

// insertIntoAgenda inserts task into block's agenda at the first free slot
// (or appends), enforcing MaxPerBlock (spec §4.2 AgendaFull), without
// emitting an event. The service loop's periodic-reinsertion path uses this
// directly: reinserting a periodic occurrence is not a fresh user-facing
// Scheduled event.
func (s *Scheduler) insertIntoAgenda(block BlockHeight, task *Task) (TaskAddress, error) {
	slots := s.loadAgenda(block)
	idx := firstFreeSlot(slots)
	if idx == len(slots) {
		if uint32(len(slots)) >= s.cfg.MaxPerBlock {
			return TaskAddress{}, fmt.Errorf("%w: block %d has %d slots", ErrExhausted, block, len(slots))
		}
		slots = append(slots, task)
	} else {
		slots[idx] = task
	}
	s.agendas.Save(block, slots)
	return TaskAddress{Block: block, Index: SlotIndex(idx)}, nil
}

// Cancel removes the task at address, provided origin is authorized (spec
// §4.2).
func (s *Scheduler) Cancel(origin collaborators.Origin, address TaskAddress) error {
	slots := s.loadAgenda(address.Block)
	if int(address.Index) >= len(slots) || slots[address.Index] == nil {
		return ErrNotFound
	}
	task := slots[address.Index]
	if err := s.originCheck.Ensure(origin, task.Origin); err != nil {
		return fmt.Errorf("%w: %v", ErrBadOrigin, err)
	}
	s.retireSlot(address.Block, slots, int(address.Index), task)
	log.Debug("scheduler: task canceled", "address", address)
	s.events.emitCanceled(CanceledEvent{Address: address, Name: task.Name})
	return nil
}

// CancelNamed looks up name and cancels the task it addresses.
func (s *Scheduler) CancelNamed(origin collaborators.Origin, name TaskName) error {
	addr, ok := s.names.Get(name)
	if !ok {
		return ErrNotFound
	}
	return s.Cancel(origin, addr)
}

// retireSlot releases a task's payload hold, removes its name-index entry
// if any, and clears the slot (trimming/deleting the agenda as needed). It
// does not emit events; callers emit whichever event fits their caller
// (Canceled, Dispatched, CallUnavailable, ...).
func (s *Scheduler) retireSlot(block BlockHeight, slots []*Task, idx int, task *Task) {
	dropPayload(s.registry, task.Payload)
	if task.Name != nil {
		s.names.Delete(*task.Name)
	}
	slots[idx] = nil
	s.saveAgenda(block, slots)
}

// Reschedule moves the task at address to a new target block. It fails if
// the task is named (use RescheduleNamed), if the new target equals the
// current one, if the new target is in the past, or if the slot is empty
// (spec §4.2).
func (s *Scheduler) Reschedule(address TaskAddress, when When) (TaskAddress, error) {
	slots := s.loadAgenda(address.Block)
	if int(address.Index) >= len(slots) || slots[address.Index] == nil {
		return TaskAddress{}, ErrUnavailable
	}
	task := slots[address.Index]
	if task.Name != nil {
		return TaskAddress{}, ErrNamed
	}
	return s.moveTask(address, slots, task, when, nil)
}

// RescheduleNamed moves a named task to a new target block, updating the
// name index (spec §4.2).
func (s *Scheduler) RescheduleNamed(name TaskName, when When) (TaskAddress, error) {
	address, ok := s.names.Get(name)
	if !ok {
		return TaskAddress{}, ErrNotFound
	}
	slots := s.loadAgenda(address.Block)
	if int(address.Index) >= len(slots) || slots[address.Index] == nil {
		return TaskAddress{}, ErrUnavailable
	}
	task := slots[address.Index]
	return s.moveTask(address, slots, task, when, &name)
}

func (s *Scheduler) moveTask(oldAddr TaskAddress, oldSlots []*Task, task *Task, when When, name *TaskName) (TaskAddress, error) {
	target := when.Resolve(s.now)
	if target == oldAddr.Block {
		return TaskAddress{}, ErrRescheduleNoChange
	}
	if target <= s.now {
		return TaskAddress{}, fmt.Errorf("%w: target %d, current %d", ErrTargetBlockInPast, target, s.now)
	}
	newSlots := s.loadAgenda(target)
	idx := firstFreeSlot(newSlots)
	if idx == len(newSlots) && uint32(len(newSlots)) >= s.cfg.MaxPerBlock {
		return TaskAddress{}, fmt.Errorf("%w: block %d has %d slots", ErrExhausted, target, len(newSlots))
	}

	oldSlots[oldAddr.Index] = nil
	s.saveAgenda(oldAddr.Block, oldSlots)

	newSlots = s.loadAgenda(target)
	idx = firstFreeSlot(newSlots)
	if idx == len(newSlots) {
		newSlots = append(newSlots, task)
	} else {
		newSlots[idx] = task
	}
	s.agendas.Save(target, newSlots)

	newAddr := TaskAddress{Block: target, Index: SlotIndex(idx)}
	if name != nil {
		s.names.Set(*name, newAddr)
	}
	log.Debug("scheduler: task rescheduled", "from", oldAddr, "to", newAddr)
	return newAddr, nil
}

// NextDispatchTimeByAddress returns the block a task will next dispatch on.
func (s *Scheduler) NextDispatchTimeByAddress(address TaskAddress) (BlockHeight, error) {
	slots := s.loadAgenda(address.Block)
	if int(address.Index) >= len(slots) || slots[address.Index] == nil {
		return 0, ErrUnavailable
	}
	return address.Block, nil
}

// NextDispatchTimeByName is the named counterpart of
// NextDispatchTimeByAddress.
func (s *Scheduler) NextDispatchTimeByName(name TaskName) (BlockHeight, error) {
	addr, ok := s.names.Get(name)
	if !ok {
		return 0, ErrUnavailable
	}
	return s.NextDispatchTimeByAddress(addr)
}
