package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"mantlenetworkio/scheduler/collaborators"
	"mantlenetworkio/scheduler/scheduler"
	"mantlenetworkio/scheduler/store"
)

// legacySignerOrigin is the stand-in "old" origin format migrate_origin
// replaces: a bare account index rather than collaborators.Origin's
// signer string (SPEC_FULL §3, migrate_origin::<Old>()).
type legacySignerOrigin struct {
	AccountIndex uint64
}

// migrateCommand demonstrates a one-time migrate_origin::<Old>() pass over
// a small seeded agenda store: every task whose origin matches the legacy
// shape is remapped, agenda positions preserved exactly.
var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "demonstrate a one-time migrate_origin pass over seeded agendas",
	Flags: []cli.Flag{
		&cli.Uint64Flag{Name: "account-index", Value: 7, Usage: "legacy account index to migrate"},
	},
	Action: runMigrate,
}

func runMigrate(c *cli.Context) error {
	agendas := store.NewMemAgendaStore()

	idx := c.Uint64("account-index")
	legacy := collaborators.SignedOrigin(fmt.Sprintf("legacy:%d", idx))
	agendas.Save(4, []*scheduler.Task{
		{Priority: 10, Origin: legacy, Payload: &scheduler.Payload{Kind: scheduler.PayloadInline, Inline: []byte("a")}},
	})
	agendas.Save(9, []*scheduler.Task{
		{Priority: 20, Origin: collaborators.RootOrigin(), Payload: &scheduler.Payload{Kind: scheduler.PayloadInline, Inline: []byte("b")}},
	})

	decode := func(o collaborators.Origin) (legacySignerOrigin, bool) {
		if o.Root {
			return legacySignerOrigin{}, false
		}
		var parsed uint64
		if _, err := fmt.Sscanf(o.Signer, "legacy:%d", &parsed); err != nil {
			return legacySignerOrigin{}, false
		}
		return legacySignerOrigin{AccountIndex: parsed}, true
	}
	mapFn := func(old legacySignerOrigin) collaborators.Origin {
		return collaborators.SignedOrigin(fmt.Sprintf("migrated:%d", old.AccountIndex))
	}

	n := scheduler.MigrateOrigin(agendas, agendas, decode, mapFn)
	fmt.Printf("migrated %d task(s)\n", n)

	for _, b := range agendas.Blocks() {
		slots, _ := agendas.Load(b)
		for i, t := range slots {
			if t != nil {
				fmt.Printf("block %d slot %d: origin=%s\n", b, i, t.Origin)
			}
		}
	}
	return nil
}
