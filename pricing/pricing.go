// Package pricing implements tick-size validation, decimal rounding, and
// market-price traversal for Polymarket's CLOB order books.
package pricing

import (
	"math"
	"strconv"
	"strings"

	"polyclob/errs"
)

// RoundConfig is the number of decimal places allowed for price, size, and
// amount at a given tick size.
type RoundConfig struct {
	Price  int
	Size   int
	Amount int
}

// roundingConfig mirrors the exchange's fixed tick-size table; tick sizes
// outside this set are rejected.
var roundingConfig = map[string]RoundConfig{
	"0.1":    {Price: 1, Size: 2, Amount: 3},
	"0.01":   {Price: 2, Size: 2, Amount: 4},
	"0.001":  {Price: 3, Size: 2, Amount: 5},
	"0.0001": {Price: 4, Size: 2, Amount: 6},
}

// normalizeTickSize renders a tick size the way its canonical key appears
// in roundingConfig, tolerating trailing zeros or alternate formatting.
func normalizeTickSize(tickSize string) string {
	v, err := strconv.ParseFloat(tickSize, 64)
	if err != nil {
		return tickSize
	}
	s := strconv.FormatFloat(v, 'f', 6, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

// GetRoundConfig looks up the rounding configuration for tickSize.
func GetRoundConfig(tickSize string) (RoundConfig, error) {
	cfg, ok := roundingConfig[normalizeTickSize(tickSize)]
	if !ok {
		return RoundConfig{}, &errs.InvalidTickSize{Tick: tickSize}
	}
	return cfg, nil
}

// IsTickSizeSmaller reports whether a is a finer (smaller) tick than b.
func IsTickSizeSmaller(a, b string) bool {
	av, _ := strconv.ParseFloat(a, 64)
	bv, _ := strconv.ParseFloat(b, 64)
	return av < bv
}

// PriceValid reports whether price falls within [tick, 1-tick].
func PriceValid(price float64, tickSize string) bool {
	tick, err := strconv.ParseFloat(tickSize, 64)
	if err != nil {
		return false
	}
	return price >= tick && price <= 1.0-tick
}

// decimalPlaces returns the number of significant fractional digits in
// value, using a fixed 12-digit rendering so binary float noise doesn't
// inflate the count.
func decimalPlaces(value float64) int {
	if math.Floor(value) == value {
		return 0
	}
	s := strconv.FormatFloat(value, 'f', 12, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0
	}
	end := len(s)
	for end > dot+1 && s[end-1] == '0' {
		end--
	}
	if end == dot+1 {
		return 0
	}
	return end - dot - 1
}

// RoundNormal rounds value to decimals places, half away from zero.
func RoundNormal(value float64, decimals int) float64 {
	if decimalPlaces(value) <= decimals {
		return value
	}
	scale := math.Pow(10, float64(decimals))
	return math.Round((value+math.Nextafter(0, 1))*scale) / scale
}

// RoundDown truncates value to decimals places toward zero.
func RoundDown(value float64, decimals int) float64 {
	if decimalPlaces(value) <= decimals {
		return value
	}
	scale := math.Pow(10, float64(decimals))
	return math.Floor(value*scale) / scale
}

// RoundUp rounds value to decimals places away from zero.
func RoundUp(value float64, decimals int) float64 {
	if decimalPlaces(value) <= decimals {
		return value
	}
	scale := math.Pow(10, float64(decimals))
	return math.Ceil(value*scale) / scale
}

// RoundAmount applies the two-stage amount rounding: round up to
// decimals+4 places first, and only round down to decimals places if that
// still leaves too many digits. This favors slightly overpaying on amount
// over truncating a valid quote to zero.
func RoundAmount(value float64, decimals int) float64 {
	if decimalPlaces(value) <= decimals {
		return value
	}
	v := RoundUp(value, decimals+4)
	if decimalPlaces(v) > decimals {
		v = RoundDown(v, decimals)
	}
	return v
}

// Level is one side of a resting order book, by price and available size.
type Level struct {
	Price float64
	Size  float64
}

// OrderType selects the matching behavior used when a market order can't
// fully traverse the book.
type OrderType int

const (
	OrderTypeGTC OrderType = iota
	OrderTypeGTD
	OrderTypeFOK
	OrderTypeFAK
)

// CalculateBuyMarketPrice walks asks from the back (worst price) toward
// the front (best price), accumulating notional (size*price), and returns
// the price at which amountToMatch of notional would be filled. FOK
// returns NoMatch if the book can't absorb the full amount; other order
// types settle for the best available price instead.
func CalculateBuyMarketPrice(asks []Level, amountToMatch float64, orderType OrderType) (float64, error) {
	if len(asks) == 0 {
		return 0, &errs.NoMatch{}
	}
	sum := 0.0
	for i := len(asks) - 1; i >= 0; i-- {
		sum += asks[i].Size * asks[i].Price
		if sum >= amountToMatch {
			return asks[i].Price, nil
		}
	}
	if orderType == OrderTypeFOK {
		return 0, &errs.NoMatch{}
	}
	return asks[0].Price, nil
}

// CalculateSellMarketPrice walks bids from the back (worst price) toward
// the front (best price), accumulating size only, and returns the price at
// which amountToMatch shares would be filled.
func CalculateSellMarketPrice(bids []Level, amountToMatch float64, orderType OrderType) (float64, error) {
	if len(bids) == 0 {
		return 0, &errs.NoMatch{}
	}
	sum := 0.0
	for i := len(bids) - 1; i >= 0; i-- {
		sum += bids[i].Size
		if sum >= amountToMatch {
			return bids[i].Price, nil
		}
	}
	if orderType == OrderTypeFOK {
		return 0, &errs.NoMatch{}
	}
	return bids[0].Price, nil
}

// Side selects which book (asks for BUY, bids for SELL) a market order
// walks.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

// CalculateMarketPrice dispatches to the buy or sell traversal depending
// on side.
func CalculateMarketPrice(side Side, asks, bids []Level, amountToMatch float64, orderType OrderType) (float64, error) {
	if side == SideBuy {
		return CalculateBuyMarketPrice(asks, amountToMatch, orderType)
	}
	return CalculateSellMarketPrice(bids, amountToMatch, orderType)
}

// ResolvedOrder holds the price/amount pair an order should be signed
// with, after tick-size-aware rounding.
type ResolvedOrder struct {
	Price      float64
	MakerSize  float64
	TakerSize  float64
}

// ResolveBuyAmounts rounds a BUY order's maker (USDC) amount down to the
// tick's size precision and derives the taker (token) amount, applying
// RoundAmount if simple division leaves too many decimal places.
func ResolveBuyAmounts(amount, price float64, cfg RoundConfig) ResolvedOrder {
	makerAmt := RoundDown(amount, cfg.Size)
	takerAmt := makerAmt / price
	takerAmt = RoundAmount(takerAmt, cfg.Amount)
	return ResolvedOrder{Price: price, MakerSize: makerAmt, TakerSize: takerAmt}
}

// ResolveSellAmounts rounds a SELL order's maker (token) amount down to
// the tick's size precision and derives the taker (USDC) amount.
func ResolveSellAmounts(amount, price float64, cfg RoundConfig) ResolvedOrder {
	makerAmt := RoundDown(amount, cfg.Size)
	takerAmt := makerAmt * price
	takerAmt = RoundAmount(takerAmt, cfg.Amount)
	return ResolvedOrder{Price: price, MakerSize: makerAmt, TakerSize: takerAmt}
}
