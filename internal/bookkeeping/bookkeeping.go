// Package bookkeeping tracks available collateral and completed
// arbitrage pairs for the demo CLI, independent of the trading logic
// itself.
package bookkeeping

import (
	"sync"
	"time"

	"polyclob/internal/logging"
)

// Portfolio tracks available collateral against amounts reserved for
// in-flight orders and amounts already spent.
type Portfolio struct {
	mu        sync.RWMutex
	initial   float64
	available float64
	reserved  map[string]float64 // orderID -> amount
	spent     float64
}

// NewPortfolio starts a portfolio with starting collateral.
func NewPortfolio(starting float64) *Portfolio {
	return &Portfolio{
		initial:   starting,
		available: starting,
		reserved:  make(map[string]float64),
	}
}

// Reserve earmarks amount against orderID, removing it from available.
func (p *Portfolio) Reserve(orderID string, amount float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.available -= amount
	p.reserved[orderID] += amount
}

// Release returns orderID's reserved amount to available, for a
// cancelled or rejected order.
func (p *Portfolio) Release(orderID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	amt := p.reserved[orderID]
	if amt > 0 {
		p.available += amt
		delete(p.reserved, orderID)
	}
}

// Fill settles orderID's reservation against the amount actually spent,
// refunding the difference if cost came in under the reserved amount.
func (p *Portfolio) Fill(orderID string, cost float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	reservedAmt := p.reserved[orderID]
	if reservedAmt > 0 {
		if reservedAmt >= cost {
			delete(p.reserved, orderID)
			p.available += reservedAmt - cost
		} else {
			remainder := cost - reservedAmt
			delete(p.reserved, orderID)
			p.available -= remainder
		}
	} else {
		p.available -= cost
	}
	p.spent += cost
}

// HasAvailable reports whether at least amount of collateral is free.
func (p *Portfolio) HasAvailable(amount float64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.available >= amount
}

// Balances returns a snapshot of the portfolio's current state.
func (p *Portfolio) Balances() (available, reservedTotal, spent, initial float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, v := range p.reserved {
		reservedTotal += v
	}
	return p.available, reservedTotal, p.spent, p.initial
}

// CompletedArb is one fully filled YES+NO arbitrage pair.
type CompletedArb struct {
	Timestamp      time.Time
	ConditionID    string
	Quantity       float64
	TotalCost      float64
	ExpectedPayout float64
	Profit         float64
}

// ArbLedger records completed arbitrage pairs and running totals.
type ArbLedger struct {
	mu     sync.RWMutex
	logger logging.Logger

	completed []CompletedArb

	totalPairs   int
	totalQty     float64
	totalCost    float64
	totalProfit  float64
}

// NewArbLedger constructs an empty ledger.
func NewArbLedger(logger logging.Logger) *ArbLedger {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &ArbLedger{logger: logger}
}

// RecordCompleted appends a completed arbitrage pair and logs the new
// running total.
func (l *ArbLedger) RecordCompleted(conditionID string, quantity, totalCost, profit float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := CompletedArb{
		Timestamp:      time.Now(),
		ConditionID:    conditionID,
		Quantity:       quantity,
		TotalCost:      totalCost,
		ExpectedPayout: quantity * 1.0,
		Profit:         profit,
	}
	l.completed = append(l.completed, entry)
	l.totalPairs++
	l.totalQty += quantity
	l.totalCost += totalCost
	l.totalProfit += profit

	l.logger.Info("arb_pair_completed", "condition_id", conditionID, "profit", profit, "total_profit", l.totalProfit)
}

// Stats returns running totals across every completed pair.
func (l *ArbLedger) Stats() (pairsCompleted int, totalQty, totalCost, totalProfit, avgProfitPerPair float64) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pairsCompleted = l.totalPairs
	totalQty = l.totalQty
	totalCost = l.totalCost
	totalProfit = l.totalProfit
	if pairsCompleted > 0 {
		avgProfitPerPair = totalProfit / float64(pairsCompleted)
	}
	return
}

// Recent returns the n most recently completed pairs.
func (l *ArbLedger) Recent(n int) []CompletedArb {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n > len(l.completed) {
		n = len(l.completed)
	}
	if n == 0 {
		return []CompletedArb{}
	}
	start := len(l.completed) - n
	out := make([]CompletedArb, n)
	copy(out, l.completed[start:])
	return out
}
