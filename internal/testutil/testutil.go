// Package testutil collects the small fixtures every scheduler test needs:
// a goleak-checked harness, a recording dispatcher, and a fully wired in-memory
// Scheduler, in the same spirit as the teacher repo's miner/worker_test.go
// test backend helpers.
package testutil

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/goleak"

	"mantlenetworkio/scheduler/collaborators"
	"mantlenetworkio/scheduler/config"
	"mantlenetworkio/scheduler/scheduler"
	"mantlenetworkio/scheduler/store"
	"mantlenetworkio/scheduler/timelock"
)

// CheckLeaks verifies the test left no goroutines running, matching the
// scheduler's single-threaded, cooperative execution model (spec §5: no
// background goroutines, no timeouts).
func CheckLeaks(t *testing.T) {
	t.Helper()
	goleak.VerifyNone(t)
}

// RecordingDispatcher is a Dispatcher that decodes raw bytes as themselves
// (no real call encoding) and records every dispatched call in order, so
// tests can assert on what ran and in what order.
type RecordingDispatcher struct {
	Dispatched []DispatchedCall
	FailNext   map[string]error
}

type DispatchedCall struct {
	Raw    []byte
	Origin collaborators.Origin
}

func NewRecordingDispatcher() *RecordingDispatcher {
	return &RecordingDispatcher{}
}

func (d *RecordingDispatcher) Decode(raw []byte) (collaborators.Call, error) {
	if len(raw) == 0 {
		return nil, collaborators.ErrDecode
	}
	return raw, nil
}

func (d *RecordingDispatcher) Dispatch(call collaborators.Call, origin collaborators.Origin) error {
	raw, _ := call.([]byte)
	d.Dispatched = append(d.Dispatched, DispatchedCall{Raw: raw, Origin: origin})
	return nil
}

// NewScheduler wires a fresh in-memory Scheduler with the reference
// collaborators, ready for a test to drive via OnInitialize and the
// scheduling API.
func NewScheduler(cfg config.SchedulerConfig) (*scheduler.Scheduler, *RecordingDispatcher, *collaborators.MemRegistry) {
	return NewSchedulerWithWeight(cfg, collaborators.DefaultWeightInfo)
}

// NewSchedulerWithWeight is NewScheduler with a caller-supplied WeightInfo,
// for tests that need to reason about declared weight alone, free of the
// reference fixed overheads.
func NewSchedulerWithWeight(cfg config.SchedulerConfig, weight collaborators.WeightInfo) (*scheduler.Scheduler, *RecordingDispatcher, *collaborators.MemRegistry) {
	dispatcher := NewRecordingDispatcher()
	registry := collaborators.NewMemRegistry()
	decryptor := timelock.NewReferenceDecryptor([]byte("test-master-secret"))

	s := scheduler.New(scheduler.Config{
		Scheduler:   cfg,
		Agendas:     store.NewMemAgendaStore(),
		Names:       store.NewMemNameStore(),
		Cursor:      store.NewMemCursorStore(),
		Registry:    registry,
		OriginCheck: collaborators.DefaultOriginCheck{},
		Dispatcher:  dispatcher,
		Weight:      weight,
		Timelock:    timelock.NewAdapter(decryptor),
	})
	return s, dispatcher, registry
}

// ZeroWeightInfo charges nothing for the fixed overheads, isolating a
// task's DeclaredWeight as the only contributor to budget consumption.
type ZeroWeightInfo struct{}

func (ZeroWeightInfo) ServiceAgendasBase() collaborators.Weight                { return 0 }
func (ZeroWeightInfo) ServiceAgendaBase(uint32) collaborators.Weight          { return 0 }
func (ZeroWeightInfo) ServiceTask(uint32, bool, bool) collaborators.Weight    { return 0 }
func (ZeroWeightInfo) ExecuteDispatch(bool) collaborators.Weight              { return 0 }

// NameFromString hashes s into a TaskName, for readable test fixtures.
func NameFromString(s string) scheduler.TaskName {
	return common.BytesToHash([]byte(s))
}
