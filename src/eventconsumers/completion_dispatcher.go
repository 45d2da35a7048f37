package eventconsumers

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/delta-hedger/src/eventmodels"
	"github.com/jiaming2012/delta-hedger/src/eventpubsub"
)

// CompletionDispatcher is the single bus subscriber for order completion
// events. The bus identifies handlers by code pointer, so method values of
// different hedger instances would alias each other; hedgers register here
// instead and deregister on disposal.
type CompletionDispatcher struct {
	mu      sync.Mutex
	hedgers map[*DeltaHedger]struct{}
}

func (d *CompletionDispatcher) Register(h *DeltaHedger) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.hedgers[h] = struct{}{}
}

func (d *CompletionDispatcher) Deregister(h *DeltaHedger) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.hedgers, h)
}

// OnOrderCompletion fans the event out to every registered hedger; each
// hedger filters on its own account and correlation id.
func (d *CompletionDispatcher) OnOrderCompletion(event *eventmodels.OrderCompletionEvent) {
	d.mu.Lock()
	hedgers := make([]*DeltaHedger, 0, len(d.hedgers))
	for h := range d.hedgers {
		hedgers = append(hedgers, h)
	}
	d.mu.Unlock()

	for _, h := range hedgers {
		h.OnOrderCompletion(event)
	}
}

func NewCompletionDispatcher() *CompletionDispatcher {
	dispatcher := &CompletionDispatcher{
		hedgers: make(map[*DeltaHedger]struct{}),
	}

	if err := eventpubsub.Subscribe(eventpubsub.OrderCompletionEvent, dispatcher.OnOrderCompletion); err != nil {
		log.Panicf("NewCompletionDispatcher: failed to subscribe: %v", err)
	}

	return dispatcher
}
