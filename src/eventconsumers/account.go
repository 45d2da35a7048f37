package eventconsumers

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/delta-hedger/src/eventmodels"
	"github.com/jiaming2012/delta-hedger/src/eventpubsub"
)

// Account ties the book to the hedgers: it pulls broker snapshots, reconciles
// them into the PositionsCollection, and turns the resulting diff into
// hedger lifecycle changes. Pure composition, no decision logic.
type Account struct {
	wg            *sync.WaitGroup
	accountID     string
	positions     *eventmodels.PositionsCollection
	broker        eventmodels.IBroker
	factory       *DeltaHedgerFactory
	configs       *eventmodels.HedgeConfigsYAML
	priceFeed     eventmodels.IPriceFeed
	hedgeInterval time.Duration

	mu      sync.Mutex
	hedgers map[int]*DeltaHedger
}

// Reconcile performs one snapshot pull and consumes the diff synchronously.
func (a *Account) Reconcile(ctx context.Context) error {
	snapshot, err := a.broker.FetchPositions(ctx)
	if err != nil {
		return fmt.Errorf("Account.Reconcile: failed to fetch positions: %w", err)
	}

	diff, err := a.positions.Reconcile(snapshot)
	if err != nil {
		return fmt.Errorf("Account.Reconcile: %w", err)
	}

	a.processDiff(ctx, diff)
	a.markSyntheticUnderlyings(ctx)

	return nil
}

func (a *Account) processDiff(ctx context.Context, diff *eventmodels.ReconcileDiff) {
	for _, pos := range diff.AddedPositions {
		eventpubsub.Publish(eventpubsub.PositionAddedEvent, pos)
	}

	for _, id := range diff.RemovedPositionIDs {
		eventpubsub.Publish(eventpubsub.PositionRemovedEvent, id)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, group := range diff.AddedUnderlyings {
		configYAML, err := a.configs.GetConfig(group.Symbol)
		if err != nil {
			log.Infof("Account.processDiff: %s: no hedge config, skipping", group.Symbol)
			continue
		}

		front := group.FrontContract()
		if front == nil {
			log.Warnf("Account.processDiff: %s: no front contract yet, skipping", group.Symbol)
			continue
		}

		if _, ok := a.hedgers[front.ID]; ok {
			log.Infof("Account.processDiff: %s: hedger already exists for contract %d, skipping", group.Symbol, front.ID)
			continue
		}

		config, err := configYAML.ToModel()
		if err != nil {
			log.Errorf("Account.processDiff: %s: invalid hedge config: %v", group.Symbol, err)
			continue
		}

		hedger, err := a.factory.CreateHedger(group, config)
		if err != nil {
			log.Errorf("Account.processDiff: %s: failed to create hedger: %v", group.Symbol, err)
			continue
		}

		a.hedgers[front.ID] = hedger
		hedger.Start(ctx, a.hedgeInterval)

		log.Infof("Account.processDiff: %s: created hedger on contract %d", group.Symbol, front.ID)
	}

	for _, symbol := range diff.RemovedUnderlyings {
		for id, hedger := range a.hedgers {
			if hedger.Symbol() == symbol {
				hedger.Dispose()
				delete(a.hedgers, id)
				log.Infof("Account.processDiff: %s: removed hedger for contract %d", symbol, id)
			}
		}
	}
}

// markSyntheticUnderlyings backfills marks for underlying placeholders that
// never appear in broker snapshots.
func (a *Account) markSyntheticUnderlyings(ctx context.Context) {
	if a.priceFeed == nil {
		return
	}

	for _, entry := range a.positions.Underlyings() {
		if entry.MarkPrice() > 0 {
			continue
		}

		spot, err := a.priceFeed.FetchSpot(ctx, entry.Contract.Symbol)
		if err != nil {
			log.Warnf("Account.markSyntheticUnderlyings: %s: %v", entry.Contract.Symbol, err)
			continue
		}

		if err := entry.SetMarkPrice(spot); err != nil {
			log.Warnf("Account.markSyntheticUnderlyings: %s: %v", entry.Contract.Symbol, err)
		}
	}
}

func (a *Account) Hedger(contractID int) (*DeltaHedger, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	h, ok := a.hedgers[contractID]

	return h, ok
}

func (a *Account) HedgerCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.hedgers)
}

// Start pulls a fresh snapshot on a fixed interval until the context is
// canceled, then disposes every hedger.
func (a *Account) Start(ctx context.Context, interval time.Duration) {
	a.wg.Add(1)

	timer := time.NewTicker(interval)

	go func() {
		defer a.wg.Done()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("stopping Account reconciliation worker")

				a.mu.Lock()
				for _, hedger := range a.hedgers {
					hedger.Dispose()
				}
				a.hedgers = make(map[int]*DeltaHedger)
				a.mu.Unlock()

				return
			case <-timer.C:
				if err := a.Reconcile(ctx); err != nil {
					log.Errorf("Account: reconcile failed: %v", err)
				}
			}
		}
	}()
}

func NewAccount(wg *sync.WaitGroup, accountID string, positions *eventmodels.PositionsCollection, broker eventmodels.IBroker, factory *DeltaHedgerFactory, configs *eventmodels.HedgeConfigsYAML, priceFeed eventmodels.IPriceFeed, hedgeInterval time.Duration) *Account {
	return &Account{
		wg:            wg,
		accountID:     accountID,
		positions:     positions,
		broker:        broker,
		factory:       factory,
		configs:       configs,
		priceFeed:     priceFeed,
		hedgeInterval: hedgeInterval,
		hedgers:       make(map[int]*DeltaHedger),
	}
}
