package scheduler

import (
	"mantlenetworkio/scheduler/collaborators"
	"mantlenetworkio/scheduler/config"
	"mantlenetworkio/scheduler/timelock"
)

// Scheduler is the per-chain dispatch scheduler described by spec §2: the
// agenda store, name index, and incomplete-since cursor, plus the
// collaborator bundle it needs to bind payloads, check origins, and
// dispatch calls. It owns no global mutable state; everything it touches is
// passed in at construction, in the spirit of spec §9's "explicit
// collaborator structs, not dynamic trait juggling".
type Scheduler struct {
	cfg config.SchedulerConfig

	agendas AgendaStore
	names   NameStore
	cursor  CursorStore

	registry    collaborators.PayloadRegistry
	originCheck collaborators.OriginCheck
	dispatcher  collaborators.Dispatcher
	weight      collaborators.WeightInfo
	timelock    *timelock.Adapter

	events events

	// now is the scheduler's notion of the current block: the height of
	// the most recent OnInitialize call. Scheduling operations measure
	// "target block in the past" against this value (spec §4.2).
	now BlockHeight
}

// Config bundles every collaborator and tunable the Scheduler needs. All
// fields are required except Timelock, which may be nil if the
// deployment never uses schedule_sealed.
type Config struct {
	Scheduler   config.SchedulerConfig
	Agendas     AgendaStore
	Names       NameStore
	Cursor      CursorStore
	Registry    collaborators.PayloadRegistry
	OriginCheck collaborators.OriginCheck
	Dispatcher  collaborators.Dispatcher
	Weight      collaborators.WeightInfo
	Timelock    *timelock.Adapter
}

func New(cfg Config) *Scheduler {
	return &Scheduler{
		cfg:         cfg.Scheduler,
		agendas:     cfg.Agendas,
		names:       cfg.Names,
		cursor:      cfg.Cursor,
		registry:    cfg.Registry,
		originCheck: cfg.OriginCheck,
		dispatcher:  cfg.Dispatcher,
		weight:      cfg.Weight,
		timelock:    cfg.Timelock,
	}
}

// Now returns the scheduler's current notion of the chain tip.
func (s *Scheduler) Now() BlockHeight { return s.now }
