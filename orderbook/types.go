// Package orderbook maintains per-token order-book state fed by a
// reconnecting websocket subscription and detects arbitrage opportunities
// across paired YES/NO markets.
package orderbook

import "time"

// PriceLevel is one price/size pair in an order book.
type PriceLevel struct {
	Price float64
	Size  float64
}

// Book is the order book for a single outcome token: bids sorted
// descending by price, asks sorted ascending by price.
type Book struct {
	AssetID         string
	Bids            []PriceLevel
	Asks            []PriceLevel
	ServerTimestamp uint64
	ReceivedAt      time.Time
}

// BestBid returns the highest bid price, or 0 if the book has no bids.
func (b Book) BestBid() float64 {
	if len(b.Bids) == 0 {
		return 0
	}
	return b.Bids[0].Price
}

// BestAsk returns the lowest ask price, or 1.0 if the book has no asks —
// matching the reference implementation's empty-book convention (an
// unpriced ask never looks like a free arbitrage).
func (b Book) BestAsk() float64 {
	if len(b.Asks) == 0 {
		return 1.0
	}
	return b.Asks[0].Price
}

// BestAskSize returns the size available at the best ask, or 0 if empty.
func (b Book) BestAskSize() float64 {
	if len(b.Asks) == 0 {
		return 0
	}
	return b.Asks[0].Size
}

// BestBidSize returns the size available at the best bid, or 0 if empty.
func (b Book) BestBidSize() float64 {
	if len(b.Bids) == 0 {
		return 0
	}
	return b.Bids[0].Size
}

// Market is a binary YES/NO condition tracked by the manager.
type Market struct {
	ConditionID string
	Slug        string
	Title       string
	TokenYes    string
	TokenNo     string
	NegRisk     bool
	Active      bool
	Closed      bool
}

// MarketState is a point-in-time snapshot of a tracked market's derived
// best-ask prices, safe to read without holding the manager's locks.
type MarketState struct {
	Market
	BestAskYes     float64
	BestAskNo      float64
	BestAskYesSize float64
	BestAskNoSize  float64
	LastUpdateAt   time.Time
	UpdateCount    uint64
}

// Combined is best_ask_YES + best_ask_NO: if under 1, buying equal shares
// of both outcomes locks in a profit.
func (s MarketState) Combined() float64 { return s.BestAskYes + s.BestAskNo }

// IsArbOpportunity reports whether Combined is strictly below threshold
// and both legs have a real (nonzero) ask.
func (s MarketState) IsArbOpportunity(threshold float64) bool {
	if s.BestAskYes <= 0 || s.BestAskNo <= 0 {
		return false
	}
	return s.Combined() < threshold
}
