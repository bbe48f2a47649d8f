package orderbook

import (
	"testing"

	"github.com/stretchr/testify/require"

	"polyclob/internal/logging"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	cfg := DefaultConfig("wss://example.invalid/ws/market")
	m := New(cfg, logging.NewNoop())
	m.Subscribe(Market{
		ConditionID: "cond-1",
		TokenYes:    "token-yes",
		TokenNo:     "token-no",
	})
	return m
}

func TestHandleMessage_RTDSEnvelope_SortsOnIngest(t *testing.T) {
	m := newTestManager(t)

	raw := []byte(`{
		"topic": "clob_market",
		"type": "agg_orderbook",
		"payload": {
			"asset_id": "token-yes",
			"asks": [{"price": "0.30", "size": "5"}, {"price": "0.20", "size": "5"}],
			"bids": [{"price": "0.15", "size": "5"}]
		}
	}`)

	m.handleMessage(raw)

	book, ok := m.GetOrderbook("token-yes")
	require.True(t, ok)
	// RTDS payloads are sorted on ingest like the legacy format: asks ascending.
	require.Equal(t, 0.20, book.Asks[0].Price)
	require.Equal(t, 0.30, book.Asks[1].Price)
}

func TestHandleMessage_LegacyEnvelope_SortsOnIngest(t *testing.T) {
	m := newTestManager(t)

	raw := []byte(`{
		"event_type": "book",
		"asset_id": "token-no",
		"asks": [{"price": "0.30", "size": "5"}, {"price": "0.20", "size": "5"}],
		"bids": [{"price": "0.15", "size": "5"}, {"price": "0.25", "size": "5"}]
	}`)

	m.handleMessage(raw)

	book, ok := m.GetOrderbook("token-no")
	require.True(t, ok)
	require.Equal(t, 0.20, book.Asks[0].Price) // ascending
	require.Equal(t, 0.30, book.Asks[1].Price)
	require.Equal(t, 0.25, book.Bids[0].Price) // descending
	require.Equal(t, 0.15, book.Bids[1].Price)
}

func TestHandleOrderbookUpdate_UpdatesMarketBestAsk(t *testing.T) {
	m := newTestManager(t)

	m.handleMessage([]byte(`{"event_type":"book","asset_id":"token-yes","asks":[{"price":"0.45","size":"10"}],"bids":[]}`))
	m.handleMessage([]byte(`{"event_type":"book","asset_id":"token-no","asks":[{"price":"0.48","size":"10"}],"bids":[]}`))

	state, ok := m.GetMarket("cond-1")
	require.True(t, ok)
	require.Equal(t, 0.45, state.BestAskYes)
	require.Equal(t, 0.48, state.BestAskNo)
	require.Equal(t, uint64(2), state.UpdateCount)
}

func TestCheckArbOpportunity_FiresOncePerQualifyingUpdate(t *testing.T) {
	m := newTestManager(t)
	m.config.TriggerCombined = 0.98

	var fired int
	m.OnArbOpportunity(func(market MarketState, combined float64) {
		fired++
	})

	m.handleMessage([]byte(`{"event_type":"book","asset_id":"token-yes","asks":[{"price":"0.45","size":"10"}],"bids":[]}`))
	require.Equal(t, 0, fired) // NO leg still has no ask

	m.handleMessage([]byte(`{"event_type":"book","asset_id":"token-no","asks":[{"price":"0.48","size":"10"}],"bids":[]}`))
	require.Equal(t, 1, fired) // 0.45+0.48=0.93 < 0.98

	// another qualifying update on the same market fires again: not debounced.
	m.handleMessage([]byte(`{"event_type":"book","asset_id":"token-yes","asks":[{"price":"0.44","size":"10"}],"bids":[]}`))
	require.Equal(t, 2, fired)
}

func TestCheckArbOpportunity_DoesNotFireAboveThreshold(t *testing.T) {
	m := newTestManager(t)

	var fired int
	m.OnArbOpportunity(func(market MarketState, combined float64) {
		fired++
	})

	m.handleMessage([]byte(`{"event_type":"book","asset_id":"token-yes","asks":[{"price":"0.55","size":"10"}],"bids":[]}`))
	m.handleMessage([]byte(`{"event_type":"book","asset_id":"token-no","asks":[{"price":"0.55","size":"10"}],"bids":[]}`))

	require.Equal(t, 0, fired)
}

func TestHandleMessage_UnknownEnvelope_Ignored(t *testing.T) {
	m := newTestManager(t)
	m.handleMessage([]byte(`{"foo":"bar"}`))
	_, ok := m.GetOrderbook("token-yes")
	require.False(t, ok)
}

func TestHandleMessage_EmptyOrPong_Ignored(t *testing.T) {
	m := newTestManager(t)
	m.handleMessage([]byte(``))
	m.handleMessage([]byte(`"PONG"`))
	m.handleMessage([]byte(`{}`))
	require.Equal(t, uint64(0), m.TotalUpdates())
}
