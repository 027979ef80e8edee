package scheduler

import "mantlenetworkio/scheduler/collaborators"

// BlockLister is an optional capability an AgendaStore may implement to
// enumerate every block height holding a non-empty agenda, so migration
// code does not need external knowledge of which heights to visit.
type BlockLister interface {
	Blocks() []BlockHeight
}

// MigrateOrigin replaces every stored task's origin via mapFn and writes
// the mutated agenda back in place, preserving agenda positions and
// dispatch ordering exactly (spec §6: "A legacy origin format may be
// migrated by a one-time transform migrate_origin::<Old>()"). decode
// recognizes whichever stored origins still carry the legacy encoding
// (Old); tasks whose origin has already been migrated, or was never in the
// legacy format, are left untouched. It returns the number of tasks
// migrated.
func MigrateOrigin[Old any](store BlockLister, agendas AgendaStore, decode func(collaborators.Origin) (Old, bool), mapFn func(Old) collaborators.Origin) int {
	migrated := 0
	for _, block := range store.Blocks() {
		slots, ok := agendas.Load(block)
		if !ok {
			continue
		}
		changed := false
		for _, task := range slots {
			if task == nil {
				continue
			}
			if old, matches := decode(task.Origin); matches {
				task.Origin = mapFn(old)
				changed = true
				migrated++
			}
		}
		if changed {
			agendas.Save(block, slots)
		}
	}
	return migrated
}
