package collaborators

// Weight is the compute/IO budget unit the service loop reserves against.
// It plays the same role uint256 gas plays for miner.Miner.commitTransactions
// in the teacher repo, but the scheduler's budget is a caller-declared
// constant, not metered by execution.
type Weight uint64

// WeightInfo is the deterministic weight function family named in spec §4.3.
// Every node must compute identical values for identical inputs so that
// weight consumption is reproducible across nodes (spec §5, determinism).
type WeightInfo interface {
	// ServiceAgendasBase is charged once per on_initialize call, regardless
	// of how many blocks' agendas are swept.
	ServiceAgendasBase() Weight
	// ServiceAgendaBase is charged once per agenda loaded, scaled by the
	// number of slots (occupied or empty) it holds.
	ServiceAgendaBase(length uint32) Weight
	// ServiceTask is the fixed overhead of considering one task slot,
	// varying by the payload's length hint and by whether the task is named
	// and periodic. Inline and looked-up payloads of the same length cost
	// the same.
	ServiceTask(lenHint uint32, named, periodic bool) Weight
	// ExecuteDispatch is the overhead of invoking Dispatcher.Dispatch,
	// varying by whether the stored origin is a signed account or root.
	ExecuteDispatch(signed bool) Weight
}

// LinearWeightInfo is a reference WeightInfo built from per-unit constants,
// in the same spirit as go-ethereum's params.TxGas-style fixed costs used by
// miner.Miner.commitTransactions.
type LinearWeightInfo struct {
	AgendasBase      Weight
	AgendaBasePerSlot Weight
	TaskBase         Weight
	TaskBasePerByte  Weight
	TaskNamedExtra   Weight
	TaskPeriodicExtra Weight
	DispatchSigned   Weight
	DispatchRoot     Weight
}

// DefaultWeightInfo mirrors typical relative costs: a fixed floor per
// component plus a small per-byte charge for resolving larger payloads.
var DefaultWeightInfo = LinearWeightInfo{
	AgendasBase:       1_000,
	AgendaBasePerSlot: 100,
	TaskBase:          2_000,
	TaskBasePerByte:   1,
	TaskNamedExtra:    200,
	TaskPeriodicExtra: 300,
	DispatchSigned:    5_000,
	DispatchRoot:      3_000,
}

func (w LinearWeightInfo) ServiceAgendasBase() Weight { return w.AgendasBase }

func (w LinearWeightInfo) ServiceAgendaBase(length uint32) Weight {
	return w.AgendaBasePerSlot * Weight(length)
}

func (w LinearWeightInfo) ServiceTask(lenHint uint32, named, periodic bool) Weight {
	cost := w.TaskBase + w.TaskBasePerByte*Weight(lenHint)
	if named {
		cost += w.TaskNamedExtra
	}
	if periodic {
		cost += w.TaskPeriodicExtra
	}
	return cost
}

func (w LinearWeightInfo) ExecuteDispatch(signed bool) Weight {
	if signed {
		return w.DispatchSigned
	}
	return w.DispatchRoot
}
