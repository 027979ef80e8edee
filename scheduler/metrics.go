package scheduler

import (
	"time"

	"github.com/ethereum/go-ethereum/metrics"
)

var (
	agendaDepthGauge    = metrics.NewRegisteredGauge("scheduler/agenda/depth", nil)
	weightUsedGauge     = metrics.NewRegisteredGauge("scheduler/weight/used", nil)
	dispatchSuccessMeter = metrics.NewRegisteredMeter("scheduler/dispatch/success", nil)
	dispatchFailureMeter = metrics.NewRegisteredMeter("scheduler/dispatch/failure", nil)
	callUnavailableMeter  = metrics.NewRegisteredMeter("scheduler/dispatch/unavailable", nil)
	overweightMeter       = metrics.NewRegisteredMeter("scheduler/dispatch/overweight", nil)
	periodicFailedMeter   = metrics.NewRegisteredMeter("scheduler/dispatch/periodic_failed", nil)
	serviceLoopTimer      = metrics.NewRegisteredTimer("scheduler/service/duration", nil)
)

func metricsServiceLoopCost(start time.Time) {
	serviceLoopTimer.Update(time.Since(start))
}

func metricsAgendaDepth(depth int) {
	agendaDepthGauge.Update(int64(depth))
}

func metricsWeightUsed(used uint64) {
	weightUsedGauge.Update(int64(used))
}

func metricsDispatch(ok bool) {
	if ok {
		dispatchSuccessMeter.Mark(1)
	} else {
		dispatchFailureMeter.Mark(1)
	}
}

func metricsCallUnavailable() { callUnavailableMeter.Mark(1) }

func metricsOverweight() { overweightMeter.Mark(1) }

func metricsPeriodicFailed() { periodicFailedMeter.Mark(1) }
