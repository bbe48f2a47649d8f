package orderbook

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"polyclob/internal/logging"
	"polyclob/internal/wsclient"
)

// Config tunes the manager's behavior, grounded on the reference
// implementation's Config struct.
type Config struct {
	WSURL           string
	PingInterval    time.Duration
	TriggerCombined float64
}

// DefaultConfig matches the reference implementation's defaults.
func DefaultConfig(wsURL string) Config {
	return Config{
		WSURL:           wsURL,
		PingInterval:    5 * time.Second,
		TriggerCombined: 0.98,
	}
}

// liveMarket is the manager's internal per-market record: atomic scalars
// written by the websocket read goroutine, read lock-free by callers and
// the arbitrage detector.
type liveMarket struct {
	Market
	bestAskYes     atomic.Uint64 // float64 bits
	bestAskNo      atomic.Uint64
	bestAskYesSize atomic.Uint64
	bestAskNoSize  atomic.Uint64
	lastUpdateNs   atomic.Int64
	updateCount    atomic.Uint64
}

func (m *liveMarket) snapshot() MarketState {
	return MarketState{
		Market:         m.Market,
		BestAskYes:     loadFloat(&m.bestAskYes),
		BestAskNo:      loadFloat(&m.bestAskNo),
		BestAskYesSize: loadFloat(&m.bestAskYesSize),
		BestAskNoSize:  loadFloat(&m.bestAskNoSize),
		LastUpdateAt:   time.Unix(0, m.lastUpdateNs.Load()),
		UpdateCount:    m.updateCount.Load(),
	}
}

func loadFloat(a *atomic.Uint64) float64 {
	return math.Float64frombits(a.Load())
}

func bitsFromFloat(f float64) uint64 {
	return math.Float64bits(f)
}

// UpdateCallback is invoked after a book update has committed to the
// manager's state.
type UpdateCallback func(assetID string, book Book)

// ArbCallback is invoked when a market's combined ask crosses below the
// trigger threshold.
type ArbCallback func(market MarketState, combined float64)

// Manager owns the websocket subscription and all book/market state.
type Manager struct {
	config Config
	logger logging.Logger
	ws     *wsclient.Client

	booksMu sync.RWMutex
	books   map[string]Book

	marketsMu        sync.RWMutex
	markets          map[string]*liveMarket // condition_id -> market
	tokenToCondition map[string]string      // token_id -> condition_id

	subscribedTokens []string
	subMu            sync.Mutex

	onUpdate UpdateCallback
	onArb    ArbCallback

	totalUpdates     atomic.Uint64
	arbOpportunities atomic.Uint64
}

// New constructs a Manager and wires the websocket callbacks that drive
// it: on connect, (re)send the join message; on message, parse and
// dispatch.
func New(config Config, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNoop()
	}
	m := &Manager{
		config:           config,
		logger:           logger,
		books:            make(map[string]Book),
		markets:          make(map[string]*liveMarket),
		tokenToCondition: make(map[string]string),
	}

	ws := wsclient.New(config.WSURL, logger)
	ws.SetPingInterval(config.PingInterval)
	ws.SetAutoReconnect(true)
	ws.OnMessage(m.handleMessage)
	ws.OnConnect(func() {
		m.logger.Info("ws_orderbook_connected")
		m.sendSubscribeMessage()
	})
	ws.OnDisconnect(func() {
		m.logger.Info("ws_orderbook_disconnected")
	})
	ws.OnError(func(err error) {
		m.logger.Error("ws_orderbook_error", "err", err)
	})
	m.ws = ws

	return m
}

// OnUpdate registers the per-book-update callback.
func (m *Manager) OnUpdate(cb UpdateCallback) { m.onUpdate = cb }

// OnArbOpportunity registers the arbitrage-trigger callback.
func (m *Manager) OnArbOpportunity(cb ArbCallback) { m.onArb = cb }

// Subscribe adds both outcome tokens of market to the join set and
// creates a zeroed market record.
func (m *Manager) Subscribe(market Market) {
	live := &liveMarket{Market: market}

	m.marketsMu.Lock()
	m.markets[market.ConditionID] = live
	m.tokenToCondition[market.TokenYes] = market.ConditionID
	m.tokenToCondition[market.TokenNo] = market.ConditionID
	m.marketsMu.Unlock()

	m.subMu.Lock()
	m.subscribedTokens = append(m.subscribedTokens, market.TokenYes, market.TokenNo)
	m.subMu.Unlock()

	m.logger.Info("orderbook_subscribed", "slug", market.Slug, "condition_id", market.ConditionID)
}

// SubscribeAll subscribes to every market in markets.
func (m *Manager) SubscribeAll(markets []Market) {
	for _, mkt := range markets {
		m.Subscribe(mkt)
	}
}

// Unsubscribe drops token from the join set and clears its book.
func (m *Manager) Unsubscribe(tokenID string) {
	m.subMu.Lock()
	for i, t := range m.subscribedTokens {
		if t == tokenID {
			m.subscribedTokens = append(m.subscribedTokens[:i], m.subscribedTokens[i+1:]...)
			break
		}
	}
	m.subMu.Unlock()

	m.booksMu.Lock()
	delete(m.books, tokenID)
	m.booksMu.Unlock()
}

// UnsubscribeAll clears every book, market, and the join set.
func (m *Manager) UnsubscribeAll() {
	m.subMu.Lock()
	m.subscribedTokens = nil
	m.subMu.Unlock()

	m.booksMu.Lock()
	m.books = make(map[string]Book)
	m.booksMu.Unlock()

	m.marketsMu.Lock()
	m.markets = make(map[string]*liveMarket)
	m.tokenToCondition = make(map[string]string)
	m.marketsMu.Unlock()
}

// GetOrderbook returns a snapshot of the current book for tokenID, and
// whether one exists.
func (m *Manager) GetOrderbook(tokenID string) (Book, bool) {
	m.booksMu.RLock()
	defer m.booksMu.RUnlock()
	b, ok := m.books[tokenID]
	return b, ok
}

// GetMarket returns a snapshot of the current state for conditionID, and
// whether it is tracked.
func (m *Manager) GetMarket(conditionID string) (MarketState, bool) {
	m.marketsMu.RLock()
	defer m.marketsMu.RUnlock()
	live, ok := m.markets[conditionID]
	if !ok {
		return MarketState{}, false
	}
	return live.snapshot(), true
}

// Connect dials the websocket and starts the read loop in the background.
func (m *Manager) Connect(ctx context.Context) error {
	return m.ws.Connect(ctx)
}

// Run dials and blocks the calling goroutine on the websocket loop.
func (m *Manager) Run(ctx context.Context) error {
	return m.ws.Run(ctx)
}

// IsConnected reports whether the websocket is currently open.
func (m *Manager) IsConnected() bool { return m.ws.IsConnected() }

// Disconnect closes the socket without stopping the manager.
func (m *Manager) Disconnect() { m.ws.Disconnect() }

// Stop closes the websocket and signals its loop to exit, without waiting
// for the loop to finish.
func (m *Manager) Stop() { m.ws.Stop() }

func (m *Manager) sendSubscribeMessage() {
	m.subMu.Lock()
	tokens := append([]string(nil), m.subscribedTokens...)
	m.subMu.Unlock()

	if len(tokens) == 0 {
		return
	}

	msg := struct {
		Type      string   `json:"type"`
		AssetsIDs []string `json:"assets_ids"`
	}{Type: "market", AssetsIDs: tokens}

	if err := m.ws.SendJSON(msg); err != nil {
		m.logger.Error("ws_subscribe_failed", "err", err)
		return
	}
	m.logger.Info("ws_subscribe_sent", "tokens", len(tokens))
}

// rtdsEnvelope is the Real-Time Data Service format:
// {"topic":"clob_market","type":"agg_orderbook","payload":{...}}
type rtdsEnvelope struct {
	Topic     string          `json:"topic"`
	Type      string          `json:"type"`
	Timestamp json.RawMessage `json:"timestamp"`
	Payload   struct {
		AssetID string        `json:"asset_id"`
		Asks    []levelWire   `json:"asks"`
		Bids    []levelWire   `json:"bids"`
	} `json:"payload"`
}

// legacyEnvelope is the older per-message format:
// {"event_type":"book"|"price_change","asset_id":...,"bids":[...],"asks":[...]}
type legacyEnvelope struct {
	EventType string          `json:"event_type"`
	AssetID   string          `json:"asset_id"`
	Timestamp json.RawMessage `json:"timestamp"`
	Bids      []levelWire     `json:"bids"`
	Asks      []levelWire     `json:"asks"`
}

// levelWire tolerates price/size arriving as either a JSON string or a
// JSON number.
type levelWire struct {
	Price json.Number `json:"price"`
	Size  json.Number `json:"size"`
}

func (l levelWire) toLevel() PriceLevel {
	p, _ := strconv.ParseFloat(string(l.Price), 64)
	s, _ := strconv.ParseFloat(string(l.Size), 64)
	return PriceLevel{Price: p, Size: s}
}

func (m *Manager) handleMessage(raw []byte) {
	if len(raw) == 0 || string(raw) == "{}" || string(raw) == `"PONG"` {
		return
	}

	var probe struct {
		Topic     string `json:"topic"`
		Type      string `json:"type"`
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		m.logger.Warn("ws_parse_error", "err", err)
		return
	}

	switch {
	case probe.Topic != "" && probe.Type != "":
		if probe.Topic != "clob_market" || probe.Type != "agg_orderbook" {
			return
		}
		var env rtdsEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			m.logger.Warn("ws_parse_error", "err", err)
			return
		}
		if env.Payload.AssetID == "" {
			return
		}
		book := Book{
			AssetID:    env.Payload.AssetID,
			ReceivedAt: time.Now(),
		}
		for _, a := range env.Payload.Asks {
			book.Asks = append(book.Asks, a.toLevel())
		}
		for _, b := range env.Payload.Bids {
			book.Bids = append(book.Bids, b.toLevel())
		}
		sortBook(&book)
		m.handleOrderbookUpdate(env.Payload.AssetID, book)

	case probe.EventType == "book" || probe.EventType == "price_change":
		var env legacyEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			m.logger.Warn("ws_parse_error", "err", err)
			return
		}
		if env.AssetID == "" {
			return
		}
		book := Book{
			AssetID:    env.AssetID,
			ReceivedAt: time.Now(),
		}
		for _, b := range env.Bids {
			book.Bids = append(book.Bids, b.toLevel())
		}
		for _, a := range env.Asks {
			book.Asks = append(book.Asks, a.toLevel())
		}
		sortBook(&book)
		m.handleOrderbookUpdate(env.AssetID, book)

	default:
		// unknown message, silently dropped per spec §4.5
	}
}

func sortBook(book *Book) {
	sort.Slice(book.Bids, func(i, j int) bool { return book.Bids[i].Price > book.Bids[j].Price })
	sort.Slice(book.Asks, func(i, j int) bool { return book.Asks[i].Price < book.Asks[j].Price })
}

func (m *Manager) handleOrderbookUpdate(assetID string, book Book) {
	m.booksMu.Lock()
	m.books[assetID] = book
	m.booksMu.Unlock()

	m.totalUpdates.Add(1)

	m.marketsMu.RLock()
	conditionID, ok := m.tokenToCondition[assetID]
	var live *liveMarket
	if ok {
		live = m.markets[conditionID]
	}
	m.marketsMu.RUnlock()

	if !ok || live == nil {
		if m.onUpdate != nil {
			m.onUpdate(assetID, book)
		}
		return
	}

	switch assetID {
	case live.TokenYes:
		live.bestAskYes.Store(bitsFromFloat(book.BestAsk()))
		live.bestAskYesSize.Store(bitsFromFloat(book.BestAskSize()))
	case live.TokenNo:
		live.bestAskNo.Store(bitsFromFloat(book.BestAsk()))
		live.bestAskNoSize.Store(bitsFromFloat(book.BestAskSize()))
	}
	live.lastUpdateNs.Store(time.Now().UnixNano())
	live.updateCount.Add(1)

	if m.onUpdate != nil {
		m.onUpdate(assetID, book)
	}

	m.checkArbOpportunity(live)
}

func (m *Manager) checkArbOpportunity(live *liveMarket) {
	state := live.snapshot()
	if !state.IsArbOpportunity(m.config.TriggerCombined) {
		return
	}
	m.arbOpportunities.Add(1)
	if m.onArb != nil {
		m.onArb(state, state.Combined())
	}
}

// TotalUpdates returns the cumulative number of book updates processed.
func (m *Manager) TotalUpdates() uint64 { return m.totalUpdates.Load() }

// ArbOpportunities returns the cumulative number of arbitrage callbacks fired.
func (m *Manager) ArbOpportunities() uint64 { return m.arbOpportunities.Load() }
