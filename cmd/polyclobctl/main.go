// Command polyclobctl is a thin demo wiring the CLOB client, order-book
// manager, and bookkeeping ledger together: it watches a pair of YES/NO
// tokens for arbitrage and, when authenticated, can submit the
// corresponding market orders.
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"polyclob/clob"
	"polyclob/clob/asyncorder"
	"polyclob/internal/bookkeeping"
	"polyclob/internal/logging"
	"polyclob/internal/signer"
	"polyclob/orderbook"
)

func main() {
	logger := logging.New()

	_ = godotenv.Load()

	conditionID := os.Getenv("CONDITION_ID")
	tokenYes := os.Getenv("TOKEN_ID_YES")
	tokenNo := os.Getenv("TOKEN_ID_NO")
	if conditionID == "" || tokenYes == "" || tokenNo == "" {
		logger.Error("missing_config", "msg", "CONDITION_ID, TOKEN_ID_YES, and TOKEN_ID_NO are required")
		return
	}

	triggerCombined := getEnvFloat("TRIGGER_COMBINED", 0.98)
	startingCapital := getEnvFloat("STARTING_CAPITAL", 100.0)
	quantity := getEnvFloat("ARB_QUANTITY", 5.0)
	wsURL := envOr("CLOB_WS_URL", "wss://ws-subscriptions-clob.polymarket.com/ws/market")
	restURL := envOr("CLOB_REST_URL", clob.DefaultBaseURL)

	cfg := orderbook.DefaultConfig(wsURL)
	cfg.TriggerCombined = triggerCombined

	manager := orderbook.New(cfg, logger)
	manager.Subscribe(orderbook.Market{
		ConditionID: conditionID,
		TokenYes:    tokenYes,
		TokenNo:     tokenNo,
	})

	client := clob.New(restURL, clob.ChainIDPolygon, logger)
	client.StartHeartbeat(25 * time.Second)
	defer client.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	privateKey := os.Getenv("PRIVATE_KEY")
	live := privateKey != ""
	if live {
		if err := authenticate(ctx, client, privateKey); err != nil {
			logger.Error("authentication_failed", "err", err)
			return
		}
		logger.Info("authenticated", "mode", "live")
	} else {
		logger.Info("authenticated", "mode", "watch-only")
	}

	portfolio := bookkeeping.NewPortfolio(startingCapital)
	ledger := bookkeeping.NewArbLedger(logger)

	manager.OnUpdate(func(assetID string, book orderbook.Book) {
		logger.Debug("book_update", "asset_id", assetID, "best_bid", book.BestBid(), "best_ask", book.BestAsk())
	})

	manager.OnArbOpportunity(func(market orderbook.MarketState, combined float64) {
		logger.Info("arb_opportunity", "condition_id", market.ConditionID, "combined", combined,
			"ask_yes", market.BestAskYes, "ask_no", market.BestAskNo)

		cost := combined * quantity
		if !portfolio.HasAvailable(cost) {
			logger.Warn("insufficient_capital", "needed", cost)
			return
		}

		if !live {
			logger.Info("watch_only_skip_order", "condition_id", market.ConditionID)
			return
		}

		orderID := market.ConditionID + ":" + strconv.FormatInt(time.Now().UnixNano(), 10)
		portfolio.Reserve(orderID, cost)

		yesParams := clob.CreateMarketOrderParams{
			TokenID: market.TokenYes,
			Side:    signer.SideBuy,
			Amount:  quantity,
			Price:   market.BestAskYes,
		}
		noParams := clob.CreateMarketOrderParams{
			TokenID: market.TokenNo,
			Side:    signer.SideBuy,
			Amount:  quantity,
			Price:   market.BestAskNo,
		}

		results := asyncorder.SubmitBatch(ctx, client, []clob.CreateMarketOrderParams{yesParams, noParams}, "FOK")

		filled := true
		for _, r := range results {
			if r.Err != nil || !r.Response.Success {
				filled = false
				logger.Error("order_failed", "err", r.Err, "order_response", r.Response)
			}
		}

		if filled {
			profit := quantity - cost
			portfolio.Fill(orderID, cost)
			ledger.RecordCompleted(market.ConditionID, quantity, cost, profit)
		} else {
			portfolio.Release(orderID)
		}
	})

	logger.Info("starting_orderbook_manager", "ws_url", wsURL)
	if err := manager.Run(ctx); err != nil {
		logger.Error("manager_run_failed", "err", err)
	}

	pairs, qty, cost, profit, avg := ledger.Stats()
	logger.Info("session_summary", "pairs", pairs, "quantity", qty, "cost", cost, "profit", profit, "avg_profit_per_pair", avg)
}

func authenticate(ctx context.Context, client *clob.Client, privateKey string) error {
	if err := client.Authenticate(privateKey, signer.ApiCredentials{}, signer.SignatureTypeEOA, ""); err != nil {
		return err
	}

	apiKey := os.Getenv("POLY_API_KEY")
	apiSecret := os.Getenv("POLY_API_SECRET")
	apiPassphrase := os.Getenv("POLY_API_PASSPHRASE")
	if apiKey != "" && apiSecret != "" && apiPassphrase != "" {
		return client.Authenticate(privateKey, signer.ApiCredentials{
			APIKey:     apiKey,
			Secret:     apiSecret,
			Passphrase: apiPassphrase,
		}, signer.SignatureTypeEOA, os.Getenv("FUNDER_ADDRESS"))
	}

	creds, err := client.CreateOrDeriveAPIKey(ctx, 0)
	if err != nil {
		return err
	}
	return client.Authenticate(privateKey, signer.ApiCredentials{
		APIKey:     creds.ApiKey,
		Secret:     creds.Secret,
		Passphrase: creds.Passphrase,
	}, signer.SignatureTypeEOA, os.Getenv("FUNDER_ADDRESS"))
}

func envOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
