package eventmodels

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultImpliedVol is the fallback volatility used for model values when a
// position's mark cannot be inverted and no realized estimate is available.
const DefaultImpliedVol = 0.30

// ReconcileDiff is the explicit result of one reconcile pass, consumed
// synchronously by the composition layer instead of collection-changed
// callbacks.
type ReconcileDiff struct {
	AddedPositions     []*Position
	RemovedPositionIDs []int
	AddedUnderlyings   []*UnderlyingPosition
	RemovedUnderlyings []StockSymbol
}

func (d *ReconcileDiff) IsEmpty() bool {
	return len(d.AddedPositions) == 0 && len(d.RemovedPositionIDs) == 0 &&
		len(d.AddedUnderlyings) == 0 && len(d.RemovedUnderlyings) == 0
}

// PositionsCollection is the thread-safe book of all positions keyed by
// contract id. Structural changes (reconcile, underlying-list rebuild) are
// serialized behind one mutex; per-position field updates are guarded by each
// position's own mutex.
type PositionsCollection struct {
	calendar IExpirationCalendar
	pricer   IOptionPricer
	clock    IClock

	mu             sync.RWMutex
	book           map[int]*Position
	underlyingList []*Position
	groups         map[StockSymbol]*UnderlyingPosition
	synthetics     map[StockSymbol]*Position
	selected       *Position

	lastGreeksMu sync.Mutex
	lastGreeks   *Greeks
}

func (pc *PositionsCollection) SelectedPosition() *Position {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	return pc.selected
}

func (pc *PositionsCollection) SetSelectedPosition(p *Position) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.selected = p
}

func (pc *PositionsCollection) GetPosition(contractID int) (*Position, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	p, ok := pc.book[contractID]

	return p, ok
}

// Positions returns every open position ordered by contract id.
func (pc *PositionsCollection) Positions() []*Position {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	ids := make([]int, 0, len(pc.book))
	for id := range pc.book {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]*Position, 0, len(ids))
	for _, id := range ids {
		out = append(out, pc.book[id])
	}

	return out
}

func (pc *PositionsCollection) Len() int {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	return len(pc.book)
}

// Underlyings returns the ordered underlying placeholder list: exactly one
// entry per symbol with open exposure.
func (pc *PositionsCollection) Underlyings() []*Position {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	out := make([]*Position, len(pc.underlyingList))
	copy(out, pc.underlyingList)

	return out
}

func (pc *PositionsCollection) UnderlyingGroup(symbol StockSymbol) (*UnderlyingPosition, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	g, ok := pc.groups[symbol]

	return g, ok
}

func (pc *PositionsCollection) LastGreeks() *Greeks {
	pc.lastGreeksMu.Lock()
	defer pc.lastGreeksMu.Unlock()

	return pc.lastGreeks
}

func (pc *PositionsCollection) setLastGreeks(g *Greeks) {
	pc.lastGreeksMu.Lock()
	defer pc.lastGreeksMu.Unlock()

	pc.lastGreeks = g
}

// Reconcile synchronizes the book against a full broker snapshot. The
// snapshot diff and the underlying-list rebuild run as one critical section
// so the book and the underlying list never disagree.
func (pc *PositionsCollection) Reconcile(snapshot map[int]ExternalPosition) (*ReconcileDiff, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	diff := &ReconcileDiff{}

	// contracts that vanished from the snapshot keep their positions until a
	// later snapshot shows size zero; only the selection anchor is dropped
	for id, pos := range pc.book {
		if _, ok := snapshot[id]; !ok {
			if pc.selected == pos {
				pc.selected = nil
			}
		}
	}

	for id, ext := range snapshot {
		if pos, ok := pc.book[id]; ok {
			if ext.Qty == 0 {
				if pc.selected == pos {
					pc.selected = nil
				}
				delete(pc.book, id)
				diff.RemovedPositionIDs = append(diff.RemovedPositionIDs, id)
				continue
			}

			if err := pos.UpdateFrom(ext); err != nil {
				return nil, fmt.Errorf("PositionsCollection.Reconcile: contract %d: %w", id, err)
			}
			continue
		}

		// do not instantiate flat positions
		if ext.Qty == 0 {
			continue
		}

		pos, err := newPositionFromExternal(ext)
		if err != nil {
			return nil, fmt.Errorf("PositionsCollection.Reconcile: contract %d: %w", id, err)
		}

		pc.book[id] = pos
		diff.AddedPositions = append(diff.AddedPositions, pos)
	}

	if err := pc.rebuildUnderlyings(diff); err != nil {
		return nil, fmt.Errorf("PositionsCollection.Reconcile: %w", err)
	}

	return diff, nil
}

func newPositionFromExternal(ext ExternalPosition) (*Position, error) {
	var contract *Contract
	var err error

	switch {
	case ext.AssetClass.IsDerivative():
		if ext.Expiration == nil {
			return nil, fmt.Errorf("newPositionFromExternal: %s: option without expiration", ext.Symbol)
		}
		contract, err = NewOptionContract(ext.ContractID, ext.Symbol, ext.AssetClass, ext.OptionType, ext.Strike, *ext.Expiration, ext.Multiplier, ext.UnderlyingID)
	case ext.AssetClass == AssetClassFuture:
		if ext.Expiration == nil {
			return nil, fmt.Errorf("newPositionFromExternal: %s: future without expiration", ext.Symbol)
		}
		contract, err = NewFutureContract(ext.ContractID, ext.Symbol, *ext.Expiration, ext.Multiplier)
	default:
		contract, err = NewContract(ext.ContractID, ext.Symbol, ext.AssetClass, ext.Multiplier)
	}

	if err != nil {
		return nil, err
	}

	return NewPosition(contract, ext)
}

// rebuildUnderlyings derives the underlying entry list from the current book:
// stocks are their own entry, futures prefer the nearest expiry, option-only
// symbols get a synthetic zero-size placeholder with a calendar-derived
// front-month expiry. Caller holds pc.mu.
func (pc *PositionsCollection) rebuildUnderlyings(diff *ReconcileDiff) error {
	now := pc.clock.Now()

	old := make(map[StockSymbol]*Position, len(pc.underlyingList))
	for _, entry := range pc.underlyingList {
		old[entry.Contract.Symbol] = entry
	}

	entries := make(map[StockSymbol]*Position)
	bySymbol := make(map[StockSymbol][]*Position)

	ids := make([]int, 0, len(pc.book))
	for id := range pc.book {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		pos := pc.book[id]
		sym := pos.Contract.Symbol
		bySymbol[sym] = append(bySymbol[sym], pos)

		group, ok := pc.groups[sym]
		if !ok {
			group = NewUnderlyingPosition(sym)
			pc.groups[sym] = group
		}

		switch pos.Contract.AssetClass {
		case AssetClassStock:
			entries[sym] = pos
			if err := group.AddContract(pos.Contract); err != nil {
				return err
			}

		case AssetClassFuture:
			if err := group.AddContract(pos.Contract); err != nil {
				return err
			}

			cur, ok := entries[sym]
			if !ok {
				entries[sym] = pos
				break
			}

			// front-month preference
			if cur.Contract.Expiration != nil && pos.Contract.Expiration != nil &&
				!pos.Contract.Expiration.After(*cur.Contract.Expiration) {
				entries[sym] = pos
			}

		case AssetClassOption, AssetClassFutureOption:
			if _, ok := entries[sym]; ok {
				break
			}

			synthetic, ok := pc.synthetics[sym]
			if !ok {
				expiration, err := pc.calendar.GetFrontMonthExpiration(sym, now)
				if err != nil {
					return fmt.Errorf("rebuildUnderlyings: %s: %w", sym, err)
				}

				synthetic, err = NewSyntheticUnderlying(sym, expiration, pos.Contract.Multiplier)
				if err != nil {
					return fmt.Errorf("rebuildUnderlyings: %s: %w", sym, err)
				}

				pc.synthetics[sym] = synthetic
				log.Debugf("rebuildUnderlyings: created synthetic underlying for %s, front month %s", sym, expiration.Format("2006-01-02"))
			}

			if err := group.AddContract(synthetic.Contract); err != nil {
				return err
			}

			entries[sym] = synthetic
		}
	}

	list := make([]*Position, 0, len(entries))
	for sym, entry := range entries {
		group := pc.groups[sym]
		group.SetPositions(bySymbol[sym])
		list = append(list, entry)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].Contract.Symbol < list[j].Contract.Symbol
	})

	pc.underlyingList = list

	for sym := range entries {
		if _, ok := old[sym]; !ok {
			diff.AddedUnderlyings = append(diff.AddedUnderlyings, pc.groups[sym])
		}
	}

	for sym := range old {
		if _, ok := entries[sym]; !ok {
			diff.RemovedUnderlyings = append(diff.RemovedUnderlyings, sym)
			delete(pc.groups, sym)
			delete(pc.synthetics, sym)
		}
	}

	return nil
}

// CalculateGreeks aggregates the book's sensitivities for the selected
// position's symbol. With no selection or an empty book it returns a
// zero-valued snapshot.
func (pc *PositionsCollection) CalculateGreeks() *Greeks {
	pc.mu.RLock()
	selected := pc.selected
	positions := make([]*Position, 0, len(pc.book))
	for _, pos := range pc.book {
		positions = append(positions, pos)
	}
	pc.mu.RUnlock()

	greeks := &Greeks{}

	if selected == nil {
		pc.setLastGreeks(greeks)
		return greeks
	}

	symbol := selected.Contract.Symbol
	spot := selected.MarkPrice()
	now := pc.clock.Now()

	greeks.Symbol = symbol

	for _, pos := range positions {
		if pos.Contract.Symbol != symbol {
			continue
		}

		qty := pos.Qty()

		if pos.Contract.AssetClass.IsUnderlying() {
			greeks.Delta += qty
			continue
		}

		g, ok := pos.Greeks()
		if !ok {
			log.Debugf("CalculateGreeks: %s strike %v: no observed greeks yet, skipping", symbol, pos.Contract.Strike)
			continue
		}

		greeks.Delta += g.Delta * qty
		greeks.Gamma += g.Gamma * qty
		greeks.Vega += g.Vega * qty
		greeks.Theta += g.Theta * qty * pos.Contract.Multiplier

		greeks.Charm += charmContribution(pos, g, spot, qty)

		if mp, ok := pc.mispricing(pos, spot, now); ok {
			greeks.Mispriced = append(greeks.Mispriced, mp)
		}
	}

	sort.Slice(greeks.Mispriced, func(i, j int) bool {
		return greeks.Mispriced[i].Deviation > greeks.Mispriced[j].Deviation
	})

	pc.setLastGreeks(greeks)

	return greeks
}

// charmContribution approximates delta decay from observed theta and delta.
// The conversion is unstable near zero extrinsic value, hence the two-regime
// split at |delta| = 0.5.
func charmContribution(pos *Position, g PositionGreeks, spot, qty float64) float64 {
	markPrice := pos.MarkPrice()
	absTheta := math.Min(math.Abs(g.Theta), math.Abs(markPrice))

	if g.Delta >= -0.5 && g.Delta <= 0.5 {
		if markPrice == 0 {
			return 0
		}
		return -g.Delta * (absTheta / markPrice) * qty
	}

	intrinsic := pos.Contract.IntrinsicValue(spot)
	extrinsic := math.Max(markPrice-intrinsic, 0)
	absTheta = math.Min(absTheta, extrinsic)

	if extrinsic <= 0 || absTheta <= 0 {
		return 0
	}

	direction := 1.0
	if !pos.Contract.OptionType.IsCall() {
		direction = -1.0
	}

	return (direction - g.Delta) * (absTheta / extrinsic) * qty
}

func (pc *PositionsCollection) mispricing(pos *Position, spot float64, now time.Time) (MispricedPosition, bool) {
	markPrice := pos.MarkPrice()
	if markPrice <= 0 || spot <= 0 {
		return MispricedPosition{}, false
	}

	vol := DefaultImpliedVol
	if group, ok := pc.UnderlyingGroup(pos.Contract.Symbol); ok {
		for _, underlying := range group.Positions() {
			if underlying.RealizedVol == nil {
				continue
			}
			if rv, ok := underlying.RealizedVol.Value(); ok && rv > 0 {
				vol = rv
				break
			}
		}
	}

	model := pc.pricer.Price(spot, pos.Contract.Strike, pos.Contract.DaysLeft(now), vol, pos.Contract.OptionType.IsCall())

	return MispricedPosition{
		Position:   pos,
		Symbol:     pos.Contract.Symbol,
		Strike:     pos.Contract.Strike,
		MarkPrice:  markPrice,
		ModelValue: model,
		Deviation:  math.Abs(markPrice - model),
	}, true
}

// CalculateRiskCurve projects P&L across a hypothetical price sweep at a
// fixed horizon. Positions that expire by the horizon fold into a static
// directional exposure; live options are repriced at their inverted implied
// volatility with time decayed by the lookahead.
func (pc *PositionsCollection) CalculateRiskCurve(symbol StockSymbol, lookahead time.Duration, minPrice, midPrice, maxPrice, priceIncrement float64) (*RiskCurve, error) {
	if priceIncrement <= 0 {
		return nil, fmt.Errorf("PositionsCollection.CalculateRiskCurve: priceIncrement must be positive, got %v", priceIncrement)
	}

	if maxPrice < minPrice {
		return nil, fmt.Errorf("PositionsCollection.CalculateRiskCurve: maxPrice %v < minPrice %v", maxPrice, minPrice)
	}

	now := pc.clock.Now()
	horizon := now.Add(lookahead)
	lookaheadDays := lookahead.Hours() / 24.0

	pc.mu.RLock()
	positions := make([]*Position, 0, len(pc.book))
	for _, pos := range pc.book {
		if pos.Contract.Symbol == symbol {
			positions = append(positions, pos)
		}
	}
	pc.mu.RUnlock()

	type repricer struct {
		pos       *Position
		qty       float64
		markPrice float64
		linear    bool
		constant  float64 // intrinsic at midPrice for expired-by-horizon options
		expired   bool
		iv        float64
		daysLeft  float64
	}

	staticDelta := 0.0
	repricers := make([]repricer, 0, len(positions))

	for _, pos := range positions {
		qty := pos.Qty()
		markPrice := pos.MarkPrice()

		if pos.Contract.IsOption() && pos.Contract.ExpiresBy(horizon) {
			// settled before the horizon: a fixed directional exposure
			if pos.Contract.IntrinsicValue(midPrice) > 0 {
				if pos.Contract.OptionType.IsCall() {
					staticDelta += qty * pos.Contract.Multiplier
				} else {
					staticDelta -= qty * pos.Contract.Multiplier
				}
			}

			repricers = append(repricers, repricer{
				pos:       pos,
				qty:       qty,
				markPrice: markPrice,
				expired:   true,
				constant:  pos.Contract.IntrinsicValue(midPrice),
			})
			continue
		}

		if !pos.Contract.IsOption() {
			repricers = append(repricers, repricer{
				pos:       pos,
				qty:       qty,
				markPrice: markPrice,
				linear:    true,
			})
			continue
		}

		daysLeft := pos.Contract.DaysLeft(now)

		iv, err := pc.pricer.ImpliedVolatility(midPrice, pos.Contract.Strike, daysLeft, markPrice, pos.Contract.OptionType.IsCall())
		if err != nil {
			log.Debugf("CalculateRiskCurve: %s strike %v: implied vol inversion failed (%v), falling back to %v", symbol, pos.Contract.Strike, err, DefaultImpliedVol)
			iv = DefaultImpliedVol
		}

		repricers = append(repricers, repricer{
			pos:       pos,
			qty:       qty,
			markPrice: markPrice,
			iv:        iv,
			daysLeft:  daysLeft,
		})
	}

	curve := NewRiskCurve()

	for price := minPrice; price < maxPrice; price += priceIncrement {
		pl := staticDelta * (price - midPrice)

		for _, r := range repricers {
			var repriced float64

			switch {
			case r.expired:
				repriced = r.constant
			case r.linear:
				repriced = price
			default:
				daysAtHorizon := r.daysLeft - lookaheadDays
				if daysAtHorizon < 0 {
					daysAtHorizon = 0
				}
				repriced = pc.pricer.Price(price, r.pos.Contract.Strike, daysAtHorizon, r.iv, r.pos.Contract.OptionType.IsCall())
			}

			pl += r.qty * (repriced - r.markPrice) * r.pos.Contract.Multiplier
		}

		curve.Append(price, pl)
	}

	return curve, nil
}

// SampleRealizedVol feeds current marks into every stock/future position's
// estimator. Driven by the sampling timer; the book's only self-driven
// background activity.
func (pc *PositionsCollection) SampleRealizedVol() {
	pc.mu.RLock()
	// real futures appear in both the book and the underlying list as the
	// same position; sampling them twice would inject zero log returns
	seen := make(map[*Position]struct{}, len(pc.book))
	positions := make([]*Position, 0, len(pc.book)+len(pc.underlyingList))
	for _, pos := range pc.book {
		seen[pos] = struct{}{}
		positions = append(positions, pos)
	}
	for _, pos := range pc.underlyingList {
		if _, ok := seen[pos]; ok {
			continue
		}
		positions = append(positions, pos)
	}
	pc.mu.RUnlock()

	for _, pos := range positions {
		pos.SampleRealizedVol()
	}
}

func NewPositionsCollection(calendar IExpirationCalendar, pricer IOptionPricer, clock IClock) *PositionsCollection {
	return &PositionsCollection{
		calendar:   calendar,
		pricer:     pricer,
		clock:      clock,
		book:       make(map[int]*Position),
		groups:     make(map[StockSymbol]*UnderlyingPosition),
		synthetics: make(map[StockSymbol]*Position),
	}
}
