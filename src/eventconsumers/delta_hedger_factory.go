package eventconsumers

import (
	"fmt"
	"sync"

	"github.com/jiaming2012/delta-hedger/src/eventmodels"
)

// DeltaHedgerFactory builds one DeltaHedger per hedged underlying, sharing
// the account's broker, clock, calendars and completion dispatcher.
type DeltaHedgerFactory struct {
	wg             *sync.WaitGroup
	accountID      string
	positions      *eventmodels.PositionsCollection
	broker         eventmodels.IBroker
	clock          eventmodels.IClock
	marketCalendar eventmodels.MarketCalendar
	dispatcher     *CompletionDispatcher
}

func (f *DeltaHedgerFactory) CreateHedger(underlying *eventmodels.UnderlyingPosition, config *eventmodels.HedgeConfig) (*DeltaHedger, error) {
	hedger, err := NewDeltaHedger(f.wg, f.accountID, underlying, f.positions, config, f.broker, f.clock, f.marketCalendar, f.dispatcher)
	if err != nil {
		return nil, fmt.Errorf("DeltaHedgerFactory.CreateHedger: %w", err)
	}

	return hedger, nil
}

func NewDeltaHedgerFactory(wg *sync.WaitGroup, accountID string, positions *eventmodels.PositionsCollection, broker eventmodels.IBroker, clock eventmodels.IClock, marketCalendar eventmodels.MarketCalendar) *DeltaHedgerFactory {
	return &DeltaHedgerFactory{
		wg:             wg,
		accountID:      accountID,
		positions:      positions,
		broker:         broker,
		clock:          clock,
		marketCalendar: marketCalendar,
		dispatcher:     NewCompletionDispatcher(),
	}
}
