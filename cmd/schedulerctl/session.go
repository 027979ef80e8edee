package main

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"mantlenetworkio/scheduler/collaborators"
	"mantlenetworkio/scheduler/config"
	"mantlenetworkio/scheduler/scheduler"
	"mantlenetworkio/scheduler/store"
	"mantlenetworkio/scheduler/timelock"
)

// session bundles one ephemeral, in-memory Scheduler plus its reference
// collaborators, built fresh for a single CLI invocation. This mirrors how
// the teacher's cmd/geth one-shot commands (export_header.go) open a
// throwaway database handle for the duration of a single command rather
// than attaching to a long-running node.
type session struct {
	Scheduler  *scheduler.Scheduler
	Dispatcher *loggingDispatcher
	Registry   *collaborators.MemRegistry
	Decryptor  *timelock.ReferenceDecryptor
}

var masterSecret = []byte("schedulerctl-demo-secret")

func newSession(c *cli.Context) *session {
	cfg := config.DefaultConfig
	if v := c.Uint64("max-per-block"); v > 0 {
		cfg.MaxPerBlock = uint32(v)
	}
	if v := c.Uint64("max-block-weight"); v > 0 {
		cfg.MaxBlockWeight = v
	}
	if c.IsSet("inline-max") {
		cfg.InlineMax = uint32(c.Uint64("inline-max"))
	}

	dispatcher := newLoggingDispatcher()
	registry := collaborators.NewMemRegistry()
	decryptor := timelock.NewReferenceDecryptor(masterSecret)

	s := scheduler.New(scheduler.Config{
		Scheduler:   cfg,
		Agendas:     store.NewMemAgendaStore(),
		Names:       store.NewMemNameStore(),
		Cursor:      store.NewMemCursorStore(),
		Registry:    registry,
		OriginCheck: collaborators.DefaultOriginCheck{},
		Dispatcher:  dispatcher,
		Weight:      collaborators.DefaultWeightInfo,
		Timelock:    timelock.NewAdapter(decryptor),
	})
	return &session{Scheduler: s, Dispatcher: dispatcher, Registry: registry, Decryptor: decryptor}
}

// loggingDispatcher decodes raw bytes as themselves and prints every
// dispatched call to stdout, so a CLI run narrates exactly what the
// scheduler did.
type loggingDispatcher struct{}

func newLoggingDispatcher() *loggingDispatcher { return &loggingDispatcher{} }

func (d *loggingDispatcher) Decode(raw []byte) (collaborators.Call, error) {
	if len(raw) == 0 {
		return nil, collaborators.ErrDecode
	}
	return raw, nil
}

func (d *loggingDispatcher) Dispatch(call collaborators.Call, origin collaborators.Origin) error {
	raw, _ := call.([]byte)
	fmt.Printf("dispatched %q (origin=%s)\n", string(raw), origin)
	return nil
}

// originFromFlags resolves --root / --signer into a collaborators.Origin.
func originFromFlags(c *cli.Context) collaborators.Origin {
	if c.Bool("root") || c.String("signer") == "" {
		return collaborators.RootOrigin()
	}
	return collaborators.SignedOrigin(c.String("signer"))
}

// nameFromFlag turns a --name string into a TaskName by hashing it, unless
// it already looks like a 32-byte hex hash.
func nameFromFlag(raw string) scheduler.TaskName {
	if strings.HasPrefix(raw, "0x") && len(raw) == 2+2*common.HashLength {
		return common.HexToHash(raw)
	}
	return common.BytesToHash([]byte(raw))
}
