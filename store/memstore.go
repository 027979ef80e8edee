// Package store provides a reference in-memory persistence layer for the
// scheduler, in the same spirit as the teacher's in-memory FIFOTxSet and
// TimedTxSet: mutex-guarded maps, swapped in directly where a production
// node would instead plug in a KV-backed implementation of the same
// interfaces (scheduler.AgendaStore, scheduler.NameStore, scheduler.CursorStore).
package store

import (
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"mantlenetworkio/scheduler/scheduler"
)

// MemAgendaStore implements scheduler.AgendaStore and scheduler.BlockLister
// over a plain map keyed by block height.
type MemAgendaStore struct {
	mu      sync.Mutex
	agendas map[scheduler.BlockHeight][]*scheduler.Task
}

func NewMemAgendaStore() *MemAgendaStore {
	return &MemAgendaStore{agendas: make(map[scheduler.BlockHeight][]*scheduler.Task)}
}

func (m *MemAgendaStore) Load(block scheduler.BlockHeight) ([]*scheduler.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slots, ok := m.agendas[block]
	if !ok {
		return nil, false
	}
	cpy := make([]*scheduler.Task, len(slots))
	copy(cpy, slots)
	return cpy, true
}

func (m *MemAgendaStore) Save(block scheduler.BlockHeight, slots []*scheduler.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cpy := make([]*scheduler.Task, len(slots))
	copy(cpy, slots)
	m.agendas[block] = cpy
}

func (m *MemAgendaStore) Delete(block scheduler.BlockHeight) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.agendas, block)
}

// Blocks returns every block height currently holding a persisted agenda,
// ascending, for scheduler.MigrateOrigin to walk.
func (m *MemAgendaStore) Blocks() []scheduler.BlockHeight {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]scheduler.BlockHeight, 0, len(m.agendas))
	for b := range m.agendas {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MemNameStore implements scheduler.NameStore over a plain map, kept in
// sync with a mapset.Set of live names. The set is redundant with the map's
// own keys; it exists so a caller checking name liveness in a hot path
// (e.g. a batch pre-validation pass over many candidate names before
// touching the map at all) can do so via Live() without taking the
// per-entry address out of the map, mirroring how the wider dependency
// tree reaches for golang-set for address/hash set bookkeeping rather than
// a bare map-as-set.
type MemNameStore struct {
	mu    sync.Mutex
	names map[scheduler.TaskName]scheduler.TaskAddress
	live  mapset.Set[scheduler.TaskName]
}

func NewMemNameStore() *MemNameStore {
	return &MemNameStore{
		names: make(map[scheduler.TaskName]scheduler.TaskAddress),
		live:  mapset.NewThreadUnsafeSet[scheduler.TaskName](),
	}
}

func (m *MemNameStore) Get(name scheduler.TaskName) (scheduler.TaskAddress, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	addr, ok := m.names[name]
	return addr, ok
}

func (m *MemNameStore) Set(name scheduler.TaskName, addr scheduler.TaskAddress) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[name] = addr
	m.live.Add(name)
}

func (m *MemNameStore) Delete(name scheduler.TaskName) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.names, name)
	m.live.Remove(name)
}

// Live reports whether name currently addresses a live task, without
// requiring the caller to unpack the TaskAddress from Get.
func (m *MemNameStore) Live(name scheduler.TaskName) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live.Contains(name)
}

// LiveNames returns a snapshot of every currently live name.
func (m *MemNameStore) LiveNames() []scheduler.TaskName {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live.ToSlice()
}

// MemCursorStore implements scheduler.CursorStore over a single optional
// value.
type MemCursorStore struct {
	mu       sync.Mutex
	value    scheduler.BlockHeight
	present  bool
}

func NewMemCursorStore() *MemCursorStore {
	return &MemCursorStore{}
}

func (m *MemCursorStore) Get() (scheduler.BlockHeight, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.present
}

func (m *MemCursorStore) Set(h scheduler.BlockHeight) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = h
	m.present = true
}

func (m *MemCursorStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.present = false
}
