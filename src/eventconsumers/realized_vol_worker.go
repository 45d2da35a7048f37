package eventconsumers

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/delta-hedger/src/eventmodels"
)

// RealizedVolWorker samples every position's mark on a fixed cadence so the
// rolling realized volatility windows fill up.
type RealizedVolWorker struct {
	wg        *sync.WaitGroup
	positions *eventmodels.PositionsCollection
}

func (w *RealizedVolWorker) Start(ctx context.Context) {
	w.wg.Add(1)

	interval := eventmodels.RealizedVolPeriod / time.Duration(eventmodels.RealizedVolSamples)
	timer := time.NewTicker(interval)

	go func() {
		defer w.wg.Done()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("stopping RealizedVolWorker")
				return
			case <-timer.C:
				w.positions.SampleRealizedVol()
			}
		}
	}()
}

func NewRealizedVolWorker(wg *sync.WaitGroup, positions *eventmodels.PositionsCollection) *RealizedVolWorker {
	return &RealizedVolWorker{
		wg:        wg,
		positions: positions,
	}
}
