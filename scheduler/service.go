package scheduler

import (
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"mantlenetworkio/scheduler/collaborators"
)

// OnInitialize runs the per-block service loop (spec §4.3) and returns the
// total Weight consumed by the call: service_agendas_base(), charged exactly
// once regardless of how many blocks' agendas are swept, plus every swept
// block's service_agenda_base(len) and per-task service_task/
// execute_dispatch/declared-weight costs (spec §8 invariant 5; ground truth
// original_source/pallets/scheduler/src/tests.rs:687-691). It must be called
// exactly once per block, with strictly increasing now values; the
// scheduler tracks its own "current block" from the most recent call.
func (s *Scheduler) OnInitialize(now BlockHeight) collaborators.Weight {
	defer metricsServiceLoopCost(time.Now())

	cursor := now
	if h, ok := s.cursor.Get(); ok {
		cursor = h
	}
	s.cursor.Clear()

	totalUsed := s.weight.ServiceAgendasBase()

	var incompleteSince *BlockHeight
	for b := cursor; b <= now; b++ {
		totalUsed += s.serviceAgenda(b, &incompleteSince)
	}

	if incompleteSince != nil {
		s.cursor.Set(*incompleteSince)
	}
	s.now = now

	metricsWeightUsed(uint64(totalUsed))
	return totalUsed
}

// serviceAgenda drains agenda[b] subject to priority ordering and the block
// weight budget, mutating incompleteSince when a hard task must carry, and
// returns the Weight consumed servicing this one agenda (service_agenda_base
// plus every dispatched/reserved task's cost).
func (s *Scheduler) serviceAgenda(b BlockHeight, incompleteSince **BlockHeight) collaborators.Weight {
	slots := s.loadAgenda(b)
	if len(slots) == 0 {
		return 0
	}
	metricsAgendaDepth(len(slots))
	agendaBaseCost := s.weight.ServiceAgendaBase(uint32(len(slots)))

	order := dispatchOrder(slots)

	var usedTask collaborators.Weight
	budget := collaborators.Weight(s.cfg.MaxBlockWeight)
	// The agenda base is charged against this block's remaining weight
	// budget before any task is gated (spec §4.3 step 3: a single running
	// WeightMeter, not a separate allowance per concern).
	if agendaBaseCost >= budget {
		budget = 0
	} else {
		budget -= agendaBaseCost
	}

	for pos, idx := range order {
		task := slots[idx]
		addr := TaskAddress{Block: b, Index: SlotIndex(idx)}

		signed := !task.Origin.Root
		cost := s.weight.ServiceTask(task.lenHint(), task.IsNamed(), task.IsPeriodic()) + s.weight.ExecuteDispatch(signed) + task.DeclaredWeight

		// A task whose cost alone exceeds the block's budget left after the
		// agenda base charge can never be serviced in this agenda; flag it and
		// move on rather than ever attempting (and failing) a reservation
		// for it (spec §8 "Permanently overweight").
		if cost > budget {
			log.Warn("scheduler: task permanently overweight", "address", addr, "cost", cost)
			metricsOverweight()
			s.events.emitOverweight(PermanentlyOverweightEvent{Address: addr, Name: task.Name})
			continue
		}

		if usedTask+cost > budget {
			if IsHard(task.Priority) {
				log.Debug("scheduler: hard task carried, weight exhausted", "address", addr)
				if *incompleteSince == nil || b < **incompleteSince {
					h := b
					*incompleteSince = &h
				}
			} else {
				s.deferRemainingToNextBlock(b, slots, order[pos:])
			}
			break
		}
		usedTask += cost

		outcome := s.executeDispatch(b, addr, task)
		switch outcome {
		case outcomeDispatched:
			s.finishAfterDispatch(b, slots, idx, task, addr)
		case outcomeUnavailable:
			s.finishAfterUnavailable(b, slots, idx, task)
		}
	}

	return agendaBaseCost + usedTask
}

// dispatchOrder enumerates non-nil slots and stable-sorts by
// (priority asc, original_slot_index asc) (spec §4.3 step 2, §8 invariant 6).
func dispatchOrder(slots []*Task) []int {
	order := make([]int, 0, len(slots))
	for i, t := range slots {
		if t != nil {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return slots[order[i]].Priority < slots[order[j]].Priority
	})
	return order
}

// deferRemainingToNextBlock implements the soft-deadline defer path: the
// task whose reservation failed, and every task after it in dispatch order,
// roll forward to b+1 untouched rather than being carried via
// IncompleteSince (spec §4.3: "soft tasks are simply deferred to the next
// block"). A task that cannot fit into b+1 either is left exactly where it
// is; it will be reconsidered on whatever later sweep eventually reaches it.
func (s *Scheduler) deferRemainingToNextBlock(b BlockHeight, slots []*Task, remaining []int) {
	changed := false
	for _, idx := range remaining {
		task := slots[idx]
		newAddr, err := s.insertIntoAgenda(b+1, task)
		if err != nil {
			log.Warn("scheduler: could not defer soft task to next block, leaving in place", "block", b, "index", idx, "err", err)
			continue
		}
		if task.Name != nil {
			s.names.Set(*task.Name, newAddr)
		}
		slots[idx] = nil
		changed = true
	}
	if changed {
		s.saveAgenda(b, slots)
	}
}

// finishAfterDispatch clears the dispatched slot and, for periodic tasks,
// reinserts the next occurrence (spec §3 lifecycle table, §4.3 step 3).
func (s *Scheduler) finishAfterDispatch(b BlockHeight, slots []*Task, idx int, task *Task, addr TaskAddress) {
	dropPayload(s.registry, task.Payload)
	slots[idx] = nil
	s.saveAgenda(b, slots)

	if task.Period == nil {
		if task.Name != nil {
			s.names.Delete(*task.Name)
		}
		return
	}
	s.reinsertPeriodic(b, task, addr)
}

// reinsertPeriodic constructs a fresh task value for the next occurrence
// and schedules it, rather than mutating the dispatched task in place (spec
// §9: "construct a fresh task value... to keep address semantics clean").
func (s *Scheduler) reinsertPeriodic(b BlockHeight, task *Task, addr TaskAddress) {
	remaining := task.Period.RemainingCount
	if remaining != Indefinite {
		remaining--
	}
	if remaining == 0 {
		if task.Name != nil {
			s.names.Delete(*task.Name)
		}
		return
	}

	clone := &Task{
		Name:           task.Name,
		Priority:       task.Priority,
		DeclaredWeight: task.DeclaredWeight,
		Payload:        clonePayload(task.Payload),
		Period:         &Period{Interval: task.Period.Interval, RemainingCount: remaining},
		Origin:         task.Origin,
	}
	if clone.Payload != nil && clone.Payload.Kind == PayloadLookup {
		s.registry.Request(clone.Payload.Hash)
	}

	nextBlock := b + task.Period.Interval
	newAddr, err := s.insertIntoAgenda(nextBlock, clone)
	if err != nil {
		log.Debug("scheduler: periodic reinsertion failed, agenda full", "block", nextBlock)
		metricsPeriodicFailed()
		s.events.emitPeriodicFailed(PeriodicFailedEvent{Address: addr, Name: task.Name})
		if task.Name != nil {
			s.names.Delete(*task.Name)
		}
		return
	}
	if task.Name != nil {
		s.names.Set(*task.Name, newAddr)
	}
}

// finishAfterUnavailable implements spec §4.4's postponement rule: a named
// hard task whose Lookup payload could not be fetched stays in place with
// its name index entry removed; everything else (anonymous, soft, sealed,
// or decode-failure cases) retires normally.
func (s *Scheduler) finishAfterUnavailable(b BlockHeight, slots []*Task, idx int, task *Task) {
	isLookupMiss := task.Payload != nil && task.Payload.Kind == PayloadLookup
	if isLookupMiss {
		// A Lookup whose bytes resolve but fail to decode is not a miss.
		_, fetched := resolvePayload(s.registry, task.Payload)
		isLookupMiss = !fetched
	}
	if task.IsNamed() && IsHard(task.Priority) && isLookupMiss {
		s.names.Delete(*task.Name)
		log.Debug("scheduler: task postponed, payload unavailable", "block", b, "index", idx)
		return
	}
	s.retireSlot(b, slots, idx, task)
}

// clonePayload deep-copies a Payload for periodic reinsertion; nil for
// sealed tasks, which are never periodic (spec §3 invariant).
func clonePayload(p *Payload) *Payload {
	if p == nil {
		return nil
	}
	cpy := *p
	if p.Kind == PayloadInline {
		cpy.Inline = append([]byte(nil), p.Inline...)
	}
	return &cpy
}
