package clob

import (
	"encoding/json"
	"strconv"
	"strings"
)

// StringFloat64 unmarshals a JSON string or number into a float64 — the
// CLOB REST API is inconsistent about quoting numeric fields.
type StringFloat64 float64

func (sf *StringFloat64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*sf = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*sf = StringFloat64(f)
	return nil
}

// OrderSummary is one price level in a book response.
type OrderSummary struct {
	Price StringFloat64 `json:"price"`
	Size  StringFloat64 `json:"size"`
}

// BookResponse is the REST GET /book response.
type BookResponse struct {
	Market         string         `json:"market"`
	AssetID        string         `json:"asset_id"`
	Timestamp      string         `json:"timestamp"`
	Hash           string         `json:"hash"`
	Bids           []OrderSummary `json:"bids"`
	Asks           []OrderSummary `json:"asks"`
	MinOrderSize   string         `json:"min_order_size"`
	TickSize       StringFloat64  `json:"tick_size"`
	NegRisk        bool           `json:"neg_risk"`
	LastTradePrice string         `json:"last_trade_price"`
}

// PriceResponse is the REST GET /price response.
type PriceResponse struct {
	Price string `json:"price"`
}

// MidpointResponse is the REST GET /midpoint response.
type MidpointResponse struct {
	Mid string `json:"mid"`
}

// SpreadResponse is the REST GET /spread response.
type SpreadResponse struct {
	Spread string `json:"spread"`
}

// TickSizeResponse is the REST GET /tick-size response.
type TickSizeResponse struct {
	MinimumTickSize string `json:"minimum_tick_size"`
}

// NegRiskResponse is the REST GET /neg-risk response.
type NegRiskResponse struct {
	NegRisk bool `json:"neg_risk"`
}

// FeeRateResponse is the REST GET /fee-rate response.
type FeeRateResponse struct {
	FeeRateBps int `json:"base_fee"`
}

// PriceInfo is one token's price entry in a batched /prices or
// /last-trades-prices response.
type PriceInfo struct {
	TokenID string  `json:"token_id"`
	Price   float64 `json:"price"`
}

// MidpointInfo is one token's midpoint entry in a batched /midpoints
// response.
type MidpointInfo struct {
	TokenID string  `json:"token_id"`
	Mid     float64 `json:"mid"`
}

// SpreadInfo is one token's spread entry in a batched /spreads response.
type SpreadInfo struct {
	TokenID string  `json:"token_id"`
	Spread  float64 `json:"spread"`
}

// FeeRateInfo is the authenticated wallet's maker/taker fee rate pair, as
// returned by GET /fee-rate when called with L2 auth and no token_id
// (distinct from the per-token FeeRateResponse used by order pricing).
type FeeRateInfo struct {
	Maker string `json:"maker"`
	Taker string `json:"taker"`
}

// ServerTimeResponse is the REST GET /time response.
type ServerTimeResponse struct {
	Timestamp int64 `json:"-"`
}

func (s *ServerTimeResponse) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(string(data), `"`)
	v, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return err
	}
	s.Timestamp = v
	return nil
}

// ApiKeyResponse is returned by both create and derive API key endpoints.
type ApiKeyResponse struct {
	ApiKey     string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// ApiKeysResponse lists every API key associated with a wallet.
type ApiKeysResponse struct {
	ApiKeys []string `json:"apiKeys"`
}

// OrderResponse is returned after posting a signed order.
type OrderResponse struct {
	Success     bool   `json:"success"`
	ErrorMsg    string `json:"errorMsg"`
	OrderID     string `json:"orderID"`
	OrderHashes []string `json:"orderHashes"`
}

// OpenOrder describes a resting order returned by GET /data/orders.
type OpenOrder struct {
	ID            string        `json:"id"`
	Status        string        `json:"status"`
	Market        string        `json:"market"`
	AssetID       string        `json:"asset_id"`
	Side          string        `json:"side"`
	OriginalSize  StringFloat64 `json:"original_size"`
	SizeMatched   StringFloat64 `json:"size_matched"`
	Price         StringFloat64 `json:"price"`
	CreatedAt     int64         `json:"created_at"`
}

// Trade describes an executed fill returned by GET /data/trades.
type Trade struct {
	ID        string        `json:"id"`
	Market    string        `json:"market"`
	AssetID   string        `json:"asset_id"`
	Side      string        `json:"side"`
	Size      StringFloat64 `json:"size"`
	Price     StringFloat64 `json:"price"`
	Status    string        `json:"status"`
	MatchTime int64         `json:"match_time"`
}

// BalanceAllowanceResponse is the REST GET /balance-allowance response.
type BalanceAllowanceResponse struct {
	Balance   string `json:"balance"`
	Allowance string `json:"allowance"`
}

// OrderScoringResponse reports whether a resting order counts toward
// maker rewards.
type OrderScoringResponse struct {
	Scoring bool `json:"scoring"`
}

// Notification is a single user notification.
type Notification struct {
	ID        string `json:"id"`
	Type      int    `json:"type"`
	Payload   string `json:"payload"`
	CreatedAt int64  `json:"created_at"`
}

// RewardsMarket describes a market's current maker-reward parameters.
type RewardsMarket struct {
	ConditionID  string  `json:"condition_id"`
	RewardsDaily float64 `json:"rewards_daily_rate"`
	MinSize      float64 `json:"min_size"`
	MaxSpread    float64 `json:"max_spread"`
}

// Earnings is a single day's maker-reward earnings for a user.
type Earnings struct {
	Date     string  `json:"date"`
	Earnings float64 `json:"earnings"`
}

// Position is a single outcome-token holding, from the Data API.
type Position struct {
	ConditionID     string  `json:"conditionId"`
	Asset           string  `json:"asset"`
	Size            float64 `json:"size"`
	AvgPrice        float64 `json:"avgPrice"`
	CurPrice        float64 `json:"curPrice"`
	Redeemable      bool    `json:"redeemable"`
	Mergeable       bool    `json:"mergeable"`
	NegRisk         bool    `json:"negRisk"`
}

// rawOrderBody is the exact JSON shape the CLOB API expects for a signed
// order POST, mirroring the reference implementation's wire order. Field
// order is preserved top-to-bottom since some servers are order-sensitive;
// salt is emitted as an integer, never a string.
type rawOrderBody struct {
	DeferExec bool `json:"deferExec"`
	Order     struct {
		Salt          int64  `json:"salt"`
		Maker         string `json:"maker"`
		Signer        string `json:"signer"`
		Taker         string `json:"taker"`
		TokenID       string `json:"tokenId"`
		MakerAmount   string `json:"makerAmount"`
		TakerAmount   string `json:"takerAmount"`
		Expiration    string `json:"expiration"`
		Nonce         string `json:"nonce"`
		FeeRateBps    string `json:"feeRateBps"`
		Side          string `json:"side"`
		SignatureType int    `json:"signatureType"`
		Signature     string `json:"signature"`
	} `json:"order"`
	Owner     string `json:"owner"`
	OrderType string `json:"orderType"`
	PostOnly  bool   `json:"postOnly,omitempty"`
}

func marshalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}
