// Package clob is the CLOB client facade: public market data, authenticated
// order lifecycle, API-key provisioning, and Data API position reads, all
// wired through internal/transport, internal/signer, and pricing.
package clob

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"polyclob/errs"
	"polyclob/internal/logging"
	"polyclob/internal/primitives"
	"polyclob/internal/signer"
	"polyclob/internal/transport"
	"polyclob/pricing"
)

// baseUnitDecimals is the number of decimals Polymarket's collateral and
// outcome tokens share on-chain (USDC-style 6 decimals).
const baseUnitDecimals = 6

const (
	ExchangeAddress        = "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E"
	NegRiskExchangeAddress = "0xC5d563A36AE78145C45a50134d48A1215220f80a"
	DataAPIURL             = "https://data-api.polymarket.com"
	DefaultBaseURL         = "https://clob.polymarket.com"
	ChainIDPolygon   int64 = 137

	defaultMinTickSize = "0.01"
)

// Client is a CLOB client. Constructed without credentials it serves only
// public reads; Authenticate upgrades it to issue signed orders and call
// authenticated endpoints.
type Client struct {
	http    *transport.Client
	dataAPI *transport.Client
	logger  logging.Logger
	chainID int64

	signer  *signer.Signer
	creds   signer.ApiCredentials
	funder  string
	sigType signer.SignatureType
	authed  bool
}

// New constructs an unauthenticated, public-read-only client.
func New(baseURL string, chainID int64, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNoop()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    transport.New(baseURL, logger),
		dataAPI: transport.New(DataAPIURL, logger),
		logger:  logger,
		chainID: chainID,
	}
}

// Authenticate attaches a private key, L2 credentials, signature type, and
// optional proxy/funder wallet, upgrading the client to sign and post
// orders.
func (c *Client) Authenticate(privateKeyHex string, creds signer.ApiCredentials, sigType signer.SignatureType, funderAddress string) error {
	s, err := signer.New(privateKeyHex, c.chainID)
	if err != nil {
		return err
	}
	c.signer = s
	c.creds = creds
	c.sigType = sigType
	c.funder = funderAddress
	c.authed = true
	return nil
}

// IsAuthenticated reports whether the client can sign orders and call
// authenticated endpoints.
func (c *Client) IsAuthenticated() bool { return c.authed }

func (c *Client) requireAuth() error {
	if !c.authed {
		return &errs.NotAuthenticated{}
	}
	return nil
}

// GetExchangeAddress returns the address orders are signed against for
// non-neg-risk markets.
func (c *Client) GetExchangeAddress() string { return ExchangeAddress }

// GetNegRiskExchangeAddress returns the address orders are signed against
// for neg-risk markets.
func (c *Client) GetNegRiskExchangeAddress() string { return NegRiskExchangeAddress }

func decodeJSON(resp transport.Response, v any) error {
	if !resp.OK() {
		return &errs.HttpError{Status: resp.Status, Body: string(resp.Body)}
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return &errs.DecodeError{Context: "clob response", Err: err}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, headers map[string]string, out any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}
	resp, err := c.http.Get(ctx, path, headers)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

func (c *Client) post(ctx context.Context, path string, body []byte, headers map[string]string, out any) error {
	resp, err := c.http.Post(ctx, path, body, headers)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

func (c *Client) del(ctx context.Context, path string, body []byte, headers map[string]string, out any) error {
	resp, err := c.http.Delete(ctx, path, body, headers)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

// GetServerTime returns the CLOB server's UNIX timestamp.
func (c *Client) GetServerTime(ctx context.Context) (int64, error) {
	var resp ServerTimeResponse
	if err := c.get(ctx, "/time", nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Timestamp, nil
}

// GetOrderBook returns the full order book for tokenID.
func (c *Client) GetOrderBook(ctx context.Context, tokenID string) (BookResponse, error) {
	params := url.Values{"token_id": {tokenID}}
	var resp BookResponse
	err := c.get(ctx, "/book", params, nil, &resp)
	return resp, err
}

// GetOrderBooks returns order books for several tokens in one round trip.
func (c *Client) GetOrderBooks(ctx context.Context, tokenIDs []string) ([]BookResponse, error) {
	out := make([]BookResponse, 0, len(tokenIDs))
	for _, id := range tokenIDs {
		book, err := c.GetOrderBook(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, book)
	}
	return out, nil
}

// GetPrice returns the best price on side ("buy" or "sell") for tokenID.
func (c *Client) GetPrice(ctx context.Context, tokenID, side string) (float64, error) {
	params := url.Values{"token_id": {tokenID}, "side": {side}}
	var resp PriceResponse
	if err := c.get(ctx, "/price", params, nil, &resp); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(resp.Price, 64)
}

// GetMidpoint returns the book midpoint for tokenID.
func (c *Client) GetMidpoint(ctx context.Context, tokenID string) (float64, error) {
	params := url.Values{"token_id": {tokenID}}
	var resp MidpointResponse
	if err := c.get(ctx, "/midpoint", params, nil, &resp); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(resp.Mid, 64)
}

// GetSpread returns the bid/ask spread for tokenID.
func (c *Client) GetSpread(ctx context.Context, tokenID string) (float64, error) {
	params := url.Values{"token_id": {tokenID}}
	var resp SpreadResponse
	if err := c.get(ctx, "/spread", params, nil, &resp); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(resp.Spread, 64)
}

// GetTickSize returns the minimum tick size for tokenID.
func (c *Client) GetTickSize(ctx context.Context, tokenID string) (string, error) {
	params := url.Values{"token_id": {tokenID}}
	var resp TickSizeResponse
	if err := c.get(ctx, "/tick-size", params, nil, &resp); err != nil {
		return "", err
	}
	return resp.MinimumTickSize, nil
}

// GetNegRisk reports whether tokenID belongs to a neg-risk market.
func (c *Client) GetNegRisk(ctx context.Context, tokenID string) (bool, error) {
	params := url.Values{"token_id": {tokenID}}
	var resp NegRiskResponse
	if err := c.get(ctx, "/neg-risk", params, nil, &resp); err != nil {
		return false, err
	}
	return resp.NegRisk, nil
}

// GetFeeRateBps returns the maker/taker fee rate, in basis points, for
// tokenID.
func (c *Client) GetFeeRateBps(ctx context.Context, tokenID string) (int, error) {
	params := url.Values{"token_id": {tokenID}}
	var resp FeeRateResponse
	if err := c.get(ctx, "/fee-rate", params, nil, &resp); err != nil {
		return 0, err
	}
	return resp.FeeRateBps, nil
}

// GetFeeRate returns the authenticated wallet's maker/taker fee rate pair.
// Unlike GetFeeRateBps, which is a public per-token lookup used while
// pricing an order, this is an L2-authenticated, per-wallet rate.
func (c *Client) GetFeeRate(ctx context.Context) (FeeRateInfo, error) {
	if err := c.requireAuth(); err != nil {
		return FeeRateInfo{}, err
	}
	path := "/fee-rate"
	headers, err := c.l2Headers(ctx, "GET", path, "")
	if err != nil {
		return FeeRateInfo{}, err
	}
	var resp FeeRateInfo
	err = c.get(ctx, path, nil, headers, &resp)
	return resp, err
}

// GetPrices returns the best price on side for each of tokenIDs in a
// single round trip.
func (c *Client) GetPrices(ctx context.Context, tokenIDs []string, side string) ([]PriceInfo, error) {
	if len(tokenIDs) == 0 {
		return nil, nil
	}
	params := url.Values{"token_ids": {strings.Join(tokenIDs, ",")}, "side": {side}}
	var raw []PriceResponse
	if err := c.get(ctx, "/prices", params, nil, &raw); err != nil {
		return nil, err
	}
	return zipPriceInfos(tokenIDs, raw)
}

// GetLastTradesPrices returns the last traded price for each of tokenIDs in
// a single round trip.
func (c *Client) GetLastTradesPrices(ctx context.Context, tokenIDs []string) ([]PriceInfo, error) {
	if len(tokenIDs) == 0 {
		return nil, nil
	}
	params := url.Values{"token_ids": {strings.Join(tokenIDs, ",")}}
	var raw []PriceResponse
	if err := c.get(ctx, "/last-trades-prices", params, nil, &raw); err != nil {
		return nil, err
	}
	return zipPriceInfos(tokenIDs, raw)
}

func zipPriceInfos(tokenIDs []string, raw []PriceResponse) ([]PriceInfo, error) {
	out := make([]PriceInfo, 0, len(raw))
	for i, r := range raw {
		if i >= len(tokenIDs) {
			break
		}
		price, err := strconv.ParseFloat(r.Price, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, PriceInfo{TokenID: tokenIDs[i], Price: price})
	}
	return out, nil
}

// GetMidpoints returns the book midpoint for each of tokenIDs in a single
// round trip.
func (c *Client) GetMidpoints(ctx context.Context, tokenIDs []string) ([]MidpointInfo, error) {
	if len(tokenIDs) == 0 {
		return nil, nil
	}
	params := url.Values{"token_ids": {strings.Join(tokenIDs, ",")}}
	var raw []MidpointResponse
	if err := c.get(ctx, "/midpoints", params, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]MidpointInfo, 0, len(raw))
	for i, r := range raw {
		if i >= len(tokenIDs) {
			break
		}
		mid, err := strconv.ParseFloat(r.Mid, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, MidpointInfo{TokenID: tokenIDs[i], Mid: mid})
	}
	return out, nil
}

// GetSpreads returns the bid/ask spread for each of tokenIDs in a single
// round trip.
func (c *Client) GetSpreads(ctx context.Context, tokenIDs []string) ([]SpreadInfo, error) {
	if len(tokenIDs) == 0 {
		return nil, nil
	}
	params := url.Values{"token_ids": {strings.Join(tokenIDs, ",")}}
	var raw []SpreadResponse
	if err := c.get(ctx, "/spreads", params, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]SpreadInfo, 0, len(raw))
	for i, r := range raw {
		if i >= len(tokenIDs) {
			break
		}
		spread, err := strconv.ParseFloat(r.Spread, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, SpreadInfo{TokenID: tokenIDs[i], Spread: spread})
	}
	return out, nil
}

// CalculateMarketPrice fetches tokenID's book and walks it the way a
// market order of amount (side buy/sell) would, honoring orderType's
// fill-or-kill semantics.
func (c *Client) CalculateMarketPrice(ctx context.Context, tokenID string, side pricing.Side, amount float64, orderType pricing.OrderType) (float64, error) {
	book, err := c.GetOrderBook(ctx, tokenID)
	if err != nil {
		return 0, err
	}
	asks := toLevels(book.Asks)
	bids := toLevels(book.Bids)
	return pricing.CalculateMarketPrice(side, asks, bids, amount, orderType)
}

func toLevels(levels []OrderSummary) []pricing.Level {
	out := make([]pricing.Level, len(levels))
	for i, l := range levels {
		out[i] = pricing.Level{Price: float64(l.Price), Size: float64(l.Size)}
	}
	return out
}

// CreateAPIKey mints a brand-new L2 credential set for the authenticated
// wallet, using an L1 auth challenge signed over the given nonce.
func (c *Client) CreateAPIKey(ctx context.Context, nonce uint64) (ApiKeyResponse, error) {
	if err := c.requireAuth(); err != nil {
		return ApiKeyResponse{}, err
	}
	headers, err := c.l1Headers(nonce)
	if err != nil {
		return ApiKeyResponse{}, err
	}
	var resp ApiKeyResponse
	err = c.post(ctx, "/auth/api-key", nil, headers, &resp)
	return resp, err
}

// DeriveAPIKey re-derives a previously created credential set deterministically.
func (c *Client) DeriveAPIKey(ctx context.Context, nonce uint64) (ApiKeyResponse, error) {
	if err := c.requireAuth(); err != nil {
		return ApiKeyResponse{}, err
	}
	headers, err := c.l1Headers(nonce)
	if err != nil {
		return ApiKeyResponse{}, err
	}
	var resp ApiKeyResponse
	err = c.get(ctx, "/auth/derive-api-key", nil, headers, &resp)
	return resp, err
}

// CreateOrDeriveAPIKey tries DeriveAPIKey first, since most wallets already
// have a credential set, falling back to CreateAPIKey on any failure.
func (c *Client) CreateOrDeriveAPIKey(ctx context.Context, nonce uint64) (ApiKeyResponse, error) {
	resp, err := c.DeriveAPIKey(ctx, nonce)
	if err == nil && resp.ApiKey != "" {
		return resp, nil
	}
	return c.CreateAPIKey(ctx, nonce)
}

func (c *Client) l1Headers(nonce uint64) (map[string]string, error) {
	h, err := c.signer.GenerateL1Headers(nonce)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"POLY_ADDRESS":   h.Address,
		"POLY_SIGNATURE": h.Signature,
		"POLY_TIMESTAMP": h.Timestamp,
		"POLY_NONCE":     h.Nonce,
	}, nil
}

func (c *Client) l2Headers(ctx context.Context, method, path, body string) (map[string]string, error) {
	now := time.Now()
	h, err := signer.GenerateL2Headers(c.creds, c.signer.Address(), method, path, body, now)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"POLY_ADDRESS":    h.Address,
		"POLY_SIGNATURE":  h.Signature,
		"POLY_TIMESTAMP":  h.Timestamp,
		"POLY_API_KEY":    h.APIKey,
		"POLY_PASSPHRASE": h.Passphrase,
	}, nil
}

// GetAPIKeys lists every API key associated with the authenticated wallet.
func (c *Client) GetAPIKeys(ctx context.Context) ([]string, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	headers, err := c.l2Headers(ctx, "GET", "/auth/api-keys", "")
	if err != nil {
		return nil, err
	}
	var resp ApiKeysResponse
	err = c.get(ctx, "/auth/api-keys", nil, headers, &resp)
	return resp.ApiKeys, err
}

// DeleteAPIKey revokes the authenticated wallet's current API key.
func (c *Client) DeleteAPIKey(ctx context.Context) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	headers, err := c.l2Headers(ctx, "DELETE", "/auth/api-key", "")
	if err != nil {
		return err
	}
	return c.del(ctx, "/auth/api-key", nil, headers, nil)
}

// CreateOrderParams describes a limit order before tick-size resolution.
type CreateOrderParams struct {
	TokenID    string
	Side       signer.Side
	Price      float64
	Amount     float64
	FeeRateBps string
	Taker      string
	Expiration int64
	NegRisk    *bool
	TickSize   string
}

// CreateMarketOrderParams describes a market order. If Price is zero it is
// derived from the live book; StrictNoFetch demands TickSize, Price,
// NegRisk, and FeeRateBps all be supplied up front and skips every network
// read except the final order POST.
type CreateMarketOrderParams struct {
	TokenID        string
	Side           signer.Side
	Amount         float64
	Price          float64
	FeeRateBps     string
	Taker          string
	OrderType      pricing.OrderType
	NegRisk        *bool
	TickSize       string
	StrictNoFetch  bool
	Expiration     int64
}

// resolveOrderInputs fills in tick size, price, neg-risk flag, and fee rate
// for a market order, either trusting caller-supplied values
// (StrictNoFetch) or reading each value the caller left unset from the
// tick-size, book, neg-risk, and fee-rate endpoints. Outside StrictNoFetch
// the tick size is always fetched, to check a caller-supplied one against
// the market minimum.
func (c *Client) resolveOrderInputs(ctx context.Context, p CreateMarketOrderParams) (tickSize string, price float64, negRisk bool, feeRateBps string, err error) {
	if p.StrictNoFetch {
		if p.TickSize == "" {
			return "", 0, false, "", &errs.MissingInput{Field: "tick_size"}
		}
		if p.Price <= 0 {
			return "", 0, false, "", &errs.MissingInput{Field: "price"}
		}
		if p.NegRisk == nil {
			return "", 0, false, "", &errs.MissingInput{Field: "neg_risk"}
		}
		if p.FeeRateBps == "" {
			return "", 0, false, "", &errs.MissingInput{Field: "fee_rate_bps"}
		}
		return p.TickSize, p.Price, *p.NegRisk, p.FeeRateBps, nil
	}

	tickSize = defaultMinTickSize
	if minTick, tErr := c.GetTickSize(ctx, p.TokenID); tErr == nil && minTick != "" {
		tickSize = minTick
	}
	if p.TickSize != "" {
		if pricing.IsTickSizeSmaller(p.TickSize, tickSize) {
			return "", 0, false, "", fmt.Errorf("invalid tick size (%s), minimum for the market is %s", p.TickSize, tickSize)
		}
		tickSize = p.TickSize
	}

	if p.Price > 0 {
		price = p.Price
	} else {
		side := pricing.SideBuy
		if p.Side == signer.SideSell {
			side = pricing.SideSell
		}
		price, err = c.CalculateMarketPrice(ctx, p.TokenID, side, p.Amount, p.OrderType)
		if err != nil {
			return "", 0, false, "", err
		}
	}

	if p.NegRisk != nil {
		negRisk = *p.NegRisk
	} else {
		negRisk, _ = c.GetNegRisk(ctx, p.TokenID)
	}

	feeRateBps = p.FeeRateBps
	if feeRateBps == "" {
		bps, fErr := c.GetFeeRateBps(ctx, p.TokenID)
		if fErr != nil {
			return "", 0, false, "", fErr
		}
		feeRateBps = strconv.Itoa(bps)
	}
	return tickSize, price, negRisk, feeRateBps, nil
}

// CreateMarketOrder resolves price/tick/neg-risk/fee-rate inputs and signs
// a ready-to-post market order, without submitting it.
func (c *Client) CreateMarketOrder(ctx context.Context, p CreateMarketOrderParams) (signer.SignedOrder, error) {
	if err := c.requireAuth(); err != nil {
		return signer.SignedOrder{}, err
	}

	tickSize, price, negRisk, feeRateBps, err := c.resolveOrderInputs(ctx, p)
	if err != nil {
		return signer.SignedOrder{}, err
	}

	return c.signResolvedOrder(p.TokenID, p.Side, p.Amount, price, tickSize, negRisk, feeRateBps, p.Taker, p.Expiration)
}

// CreateOrder signs a limit order entirely locally: unlike CreateMarketOrder
// it never reads the book, tick-size, or neg-risk endpoints, so TickSize,
// NegRisk, and Price must all be supplied by the caller. It returns the
// signed order without submitting it.
func (c *Client) CreateOrder(ctx context.Context, p CreateOrderParams) (signer.SignedOrder, error) {
	if err := c.requireAuth(); err != nil {
		return signer.SignedOrder{}, err
	}
	if p.TickSize == "" {
		return signer.SignedOrder{}, &errs.MissingInput{Field: "tick_size"}
	}
	if p.Price <= 0 {
		return signer.SignedOrder{}, &errs.MissingInput{Field: "price"}
	}
	if p.NegRisk == nil {
		return signer.SignedOrder{}, &errs.MissingInput{Field: "neg_risk"}
	}

	feeRateBps := p.FeeRateBps
	if feeRateBps == "" {
		feeRateBps = "0"
	}

	return c.signResolvedOrder(p.TokenID, p.Side, p.Amount, p.Price, p.TickSize, *p.NegRisk, feeRateBps, p.Taker, p.Expiration)
}

// signResolvedOrder rounds price/size to tickSize's precision, picks the
// exchange contract, and signs the resulting order. Both CreateMarketOrder
// and CreateOrder fully resolve their inputs before calling it.
func (c *Client) signResolvedOrder(tokenID string, side signer.Side, amount, price float64, tickSize string, negRisk bool, feeRateBps, taker string, expiration int64) (signer.SignedOrder, error) {
	if !pricing.PriceValid(price, tickSize) {
		tick, _ := strconv.ParseFloat(tickSize, 64)
		return signer.SignedOrder{}, &errs.InvalidPrice{Price: price, Tick: tick}
	}

	cfg, err := pricing.GetRoundConfig(tickSize)
	if err != nil {
		return signer.SignedOrder{}, err
	}
	rawPrice := pricing.RoundNormal(price, cfg.Price)

	var resolved pricing.ResolvedOrder
	if side == signer.SideBuy {
		resolved = pricing.ResolveBuyAmounts(amount, rawPrice, cfg)
	} else {
		resolved = pricing.ResolveSellAmounts(amount, rawPrice, cfg)
	}

	exchangeAddr := ExchangeAddress
	if negRisk {
		exchangeAddr = NegRiskExchangeAddress
	}

	makerAmtWei, err := toWei(resolved.MakerSize)
	if err != nil {
		return signer.SignedOrder{}, err
	}
	takerAmtWei, err := toWei(resolved.TakerSize)
	if err != nil {
		return signer.SignedOrder{}, err
	}

	maker := c.funder
	if maker == "" {
		maker = c.signer.Address()
	}
	if taker == "" {
		taker = "0x0000000000000000000000000000000000000000"
	}

	params := signer.OrderParams{
		Maker:         maker,
		Taker:         taker,
		TokenID:       tokenID,
		MakerAmount:   makerAmtWei,
		TakerAmount:   takerAmtWei,
		Side:          side,
		FeeRateBps:    feeRateBps,
		Nonce:         "0",
		Expiration:    expiration,
		SignatureType: c.sigType,
	}

	return c.signer.SignOrder(params, exchangeAddr)
}

func toWei(amount float64) (string, error) {
	return primitives.ToBaseUnits(amount, baseUnitDecimals, true)
}

func toRawOrderBody(order signer.SignedOrder, apiKey, orderType string) rawOrderBody {
	var body rawOrderBody
	body.Order.Salt = order.Salt.Int64()
	body.Order.Maker = order.Maker
	body.Order.Signer = order.Signer
	body.Order.Taker = order.Taker
	body.Order.TokenID = order.TokenID
	body.Order.MakerAmount = order.MakerAmount
	body.Order.TakerAmount = order.TakerAmount
	body.Order.Expiration = order.Expiration
	body.Order.Nonce = order.Nonce
	body.Order.FeeRateBps = order.FeeRateBps
	body.Order.Side = order.Side.String()
	body.Order.SignatureType = int(order.SignatureType)
	body.Order.Signature = order.Signature
	body.DeferExec = false
	body.Owner = apiKey
	body.OrderType = orderType
	return body
}

// PostOrder submits a previously signed order to the exchange.
func (c *Client) PostOrder(ctx context.Context, order signer.SignedOrder, orderType string) (OrderResponse, error) {
	if err := c.requireAuth(); err != nil {
		return OrderResponse{}, err
	}

	body := toRawOrderBody(order, c.creds.APIKey, orderType)

	bodyBytes, err := marshalJSON(body)
	if err != nil {
		return OrderResponse{}, &errs.DecodeError{Context: "encode order", Err: err}
	}

	headers, err := c.l2Headers(ctx, "POST", "/order", string(bodyBytes))
	if err != nil {
		return OrderResponse{}, err
	}

	var resp OrderResponse
	err = c.post(ctx, "/order", bodyBytes, headers, &resp)
	return resp, err
}

// BatchOrderEntry pairs a signed order with the order type it should post
// as, for a single batch submission.
type BatchOrderEntry struct {
	Order     signer.SignedOrder
	OrderType string
}

// maxBatchOrders is the exchange's limit on orders per batch POST.
const maxBatchOrders = 15

// PostOrders submits up to maxBatchOrders pre-signed orders in a single
// batch POST. The response is normally an array of per-order results; a
// single error object returned by the server in its place is promoted to
// a one-element result list.
func (c *Client) PostOrders(ctx context.Context, entries []BatchOrderEntry) ([]OrderResponse, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	if len(entries) > maxBatchOrders {
		return nil, fmt.Errorf("maximum %d orders per batch", maxBatchOrders)
	}

	envelopes := make([]rawOrderBody, len(entries))
	for i, e := range entries {
		envelopes[i] = toRawOrderBody(e.Order, c.creds.APIKey, e.OrderType)
	}

	bodyBytes, err := marshalJSON(envelopes)
	if err != nil {
		return nil, &errs.DecodeError{Context: "encode batch order", Err: err}
	}

	headers, err := c.l2Headers(ctx, "POST", "/orders", string(bodyBytes))
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Post(ctx, "/orders", bodyBytes, headers)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &errs.HttpError{Status: resp.Status, Body: string(resp.Body)}
	}

	var results []OrderResponse
	if err := json.Unmarshal(resp.Body, &results); err == nil {
		return results, nil
	}

	var single OrderResponse
	if err := json.Unmarshal(resp.Body, &single); err != nil {
		return nil, &errs.DecodeError{Context: "decode batch order response", Err: err}
	}
	return []OrderResponse{single}, nil
}

// CreateAndPostMarketOrder resolves, signs, and submits a market order in
// one call.
func (c *Client) CreateAndPostMarketOrder(ctx context.Context, p CreateMarketOrderParams, orderType string) (OrderResponse, error) {
	order, err := c.CreateMarketOrder(ctx, p)
	if err != nil {
		return OrderResponse{}, err
	}
	return c.PostOrder(ctx, order, orderType)
}

// CancelOrder cancels a single resting order by ID.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	body, _ := marshalJSON(map[string]string{"orderID": orderID})
	headers, err := c.l2Headers(ctx, "DELETE", "/order", string(body))
	if err != nil {
		return err
	}
	return c.del(ctx, "/order", body, headers, nil)
}

// CancelMany cancels a set of resting orders by ID in a single request.
func (c *Client) CancelMany(ctx context.Context, orderIDs []string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	body, _ := marshalJSON(orderIDs)
	headers, err := c.l2Headers(ctx, "DELETE", "/orders", string(body))
	if err != nil {
		return err
	}
	return c.del(ctx, "/orders", body, headers, nil)
}

// CancelMarket cancels every resting order in a single market, identified
// by its condition ID.
func (c *Client) CancelMarket(ctx context.Context, conditionID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	body, _ := marshalJSON(map[string]string{"market": conditionID})
	headers, err := c.l2Headers(ctx, "DELETE", "/cancel-market-orders", string(body))
	if err != nil {
		return err
	}
	return c.del(ctx, "/cancel-market-orders", body, headers, nil)
}

// CancelAllOrders cancels every resting order for the authenticated wallet.
func (c *Client) CancelAllOrders(ctx context.Context) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	headers, err := c.l2Headers(ctx, "DELETE", "/cancel-all", "")
	if err != nil {
		return err
	}
	return c.del(ctx, "/cancel-all", nil, headers, nil)
}

// GetOrder fetches a single resting order by id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (OpenOrder, error) {
	if err := c.requireAuth(); err != nil {
		return OpenOrder{}, err
	}
	path := "/data/order/" + orderID
	headers, err := c.l2Headers(ctx, "GET", path, "")
	if err != nil {
		return OpenOrder{}, err
	}
	var resp OpenOrder
	err = c.get(ctx, path, nil, headers, &resp)
	return resp, err
}

// GetOpenOrders lists the authenticated wallet's resting orders,
// optionally filtered to a single market.
func (c *Client) GetOpenOrders(ctx context.Context, market string) ([]OpenOrder, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	params := url.Values{}
	if market != "" {
		params.Set("market", market)
	}
	path := "/data/orders"
	fullPath := path
	if len(params) > 0 {
		fullPath += "?" + params.Encode()
	}
	headers, err := c.l2Headers(ctx, "GET", path, "")
	if err != nil {
		return nil, err
	}
	var resp []OpenOrder
	err = c.get(ctx, fullPath, nil, headers, &resp)
	return resp, err
}

// GetTrades lists the authenticated wallet's trade history, optionally
// filtered to a single market.
func (c *Client) GetTrades(ctx context.Context, market string) ([]Trade, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	params := url.Values{}
	if market != "" {
		params.Set("market", market)
	}
	path := "/data/trades"
	fullPath := path
	if len(params) > 0 {
		fullPath += "?" + params.Encode()
	}
	headers, err := c.l2Headers(ctx, "GET", path, "")
	if err != nil {
		return nil, err
	}
	var resp []Trade
	err = c.get(ctx, fullPath, nil, headers, &resp)
	return resp, err
}

// GetBalanceAllowance reports the authenticated wallet's on-chain balance
// and exchange allowance for assetType ("COLLATERAL" or "CONDITIONAL").
func (c *Client) GetBalanceAllowance(ctx context.Context, assetType, tokenID string) (BalanceAllowanceResponse, error) {
	if err := c.requireAuth(); err != nil {
		return BalanceAllowanceResponse{}, err
	}
	params := url.Values{"asset_type": {assetType}}
	if tokenID != "" {
		params.Set("token_id", tokenID)
	}
	path := "/balance-allowance"
	headers, err := c.l2Headers(ctx, "GET", path, "")
	if err != nil {
		return BalanceAllowanceResponse{}, err
	}
	var resp BalanceAllowanceResponse
	err = c.get(ctx, path, params, headers, &resp)
	return resp, err
}

// UpdateBalanceAllowance asks the exchange to refresh its cached view of
// the wallet's on-chain balance and allowance.
func (c *Client) UpdateBalanceAllowance(ctx context.Context, assetType, tokenID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	body, _ := marshalJSON(map[string]string{"asset_type": assetType, "token_id": tokenID})
	headers, err := c.l2Headers(ctx, "POST", "/balance-allowance/update", string(body))
	if err != nil {
		return err
	}
	return c.post(ctx, "/balance-allowance/update", body, headers, nil)
}

// IsOrderScoring reports whether orderID currently counts toward maker
// rewards.
func (c *Client) IsOrderScoring(ctx context.Context, orderID string) (bool, error) {
	if err := c.requireAuth(); err != nil {
		return false, err
	}
	params := url.Values{"order_id": {orderID}}
	path := "/order-scoring"
	headers, err := c.l2Headers(ctx, "GET", path, "")
	if err != nil {
		return false, err
	}
	var resp OrderScoringResponse
	err = c.get(ctx, path, params, headers, &resp)
	return resp.Scoring, err
}

// GetNotifications lists pending notifications for the authenticated
// wallet.
func (c *Client) GetNotifications(ctx context.Context) ([]Notification, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	path := "/notifications"
	headers, err := c.l2Headers(ctx, "GET", path, "")
	if err != nil {
		return nil, err
	}
	var resp []Notification
	err = c.get(ctx, path, nil, headers, &resp)
	return resp, err
}

// DropNotifications acknowledges and clears the given notification IDs.
func (c *Client) DropNotifications(ctx context.Context, ids []string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	body, _ := marshalJSON(map[string][]string{"ids": ids})
	headers, err := c.l2Headers(ctx, "DELETE", "/notifications", string(body))
	if err != nil {
		return err
	}
	return c.del(ctx, "/notifications", body, headers, nil)
}

// GetRewardsMarketsCurrent lists markets currently offering maker rewards.
func (c *Client) GetRewardsMarketsCurrent(ctx context.Context) ([]RewardsMarket, error) {
	var resp []RewardsMarket
	err := c.get(ctx, "/rewards/markets/current", nil, nil, &resp)
	return resp, err
}

// GetEarningsForUserForDay returns the authenticated wallet's maker-reward
// earnings for a single date (YYYY-MM-DD).
func (c *Client) GetEarningsForUserForDay(ctx context.Context, date string) ([]Earnings, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	params := url.Values{"date": {date}}
	path := "/rewards/earnings"
	headers, err := c.l2Headers(ctx, "GET", path, "")
	if err != nil {
		return nil, err
	}
	var resp []Earnings
	err = c.get(ctx, path, params, headers, &resp)
	return resp, err
}

// WarmConnection hits a cheap endpoint to establish the TCP/TLS connection
// before latency-sensitive trading begins.
func (c *Client) WarmConnection(ctx context.Context) bool {
	return c.http.Warm(ctx, "/time")
}

// StartHeartbeat keeps the connection warm with a periodic background GET.
func (c *Client) StartHeartbeat(interval time.Duration) {
	c.http.StartHeartbeat("/time", interval)
}

// StopHeartbeat stops the background heartbeat.
func (c *Client) StopHeartbeat() { c.http.StopHeartbeat() }

// GetConnectionStats returns cumulative connection statistics.
func (c *Client) GetConnectionStats() transport.Stats { return c.http.GetStats() }

// SetTimeout overrides the per-request timeout for every subsequent call.
func (c *Client) SetTimeout(d time.Duration) { c.http.SetTimeout(d) }

// SetProxy routes every subsequent request through proxyURL.
func (c *Client) SetProxy(proxyURL string) error { return c.http.SetProxy(proxyURL) }

// SetUserAgent overrides the outbound User-Agent header on every subsequent
// request.
func (c *Client) SetUserAgent(ua string) { c.http.SetUserAgent(ua) }

// SetDNSCacheTimeout overrides how long resolved addresses are cached.
func (c *Client) SetDNSCacheTimeout(d time.Duration) { c.http.SetDNSCacheTTL(d) }

// SetKeepaliveInterval overrides the TCP keepalive probe interval.
func (c *Client) SetKeepaliveInterval(d time.Duration) { c.http.SetKeepaliveInterval(d) }

// GetAddress returns the signing wallet's address, empty if unauthenticated.
func (c *Client) GetAddress() string {
	if c.signer == nil {
		return ""
	}
	return c.signer.Address()
}

// GetFunderAddress returns the proxy/funder wallet orders settle against,
// falling back to the signer's own address when no funder was configured.
func (c *Client) GetFunderAddress() string {
	if c.funder != "" {
		return c.funder
	}
	return c.GetAddress()
}

// Close releases background resources (heartbeat, async worker).
func (c *Client) Close() { c.http.Close() }

// GetPositions fetches user's outcome-token holdings from the Data API,
// without authentication.
func (c *Client) GetPositions(ctx context.Context, user string) ([]Position, error) {
	params := url.Values{"user": {user}}
	resp, err := c.dataAPI.Get(ctx, "/positions?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var positions []Position
	if err := decodeJSON(resp, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// GetRedeemablePositions filters GetPositions to holdings in resolved
// markets that can be redeemed for collateral.
func (c *Client) GetRedeemablePositions(ctx context.Context, user string) ([]Position, error) {
	all, err := c.GetPositions(ctx, user)
	if err != nil {
		return nil, err
	}
	return filterPositions(all, func(p Position) bool { return p.Redeemable }), nil
}

// GetMergeablePositions filters GetPositions to complementary YES/NO
// holdings in a neg-risk market that can be merged back into collateral.
func (c *Client) GetMergeablePositions(ctx context.Context, user string) ([]Position, error) {
	all, err := c.GetPositions(ctx, user)
	if err != nil {
		return nil, err
	}
	return filterPositions(all, func(p Position) bool { return p.Mergeable }), nil
}

func filterPositions(positions []Position, pred func(Position) bool) []Position {
	out := make([]Position, 0, len(positions))
	for _, p := range positions {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}
