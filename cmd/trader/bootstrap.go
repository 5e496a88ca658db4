package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"wishlist-trader/internal/broker/brokerobs"
	"wishlist-trader/internal/broker/zerodha"
	"wishlist-trader/internal/engine"
	"wishlist-trader/internal/eod"
	"wishlist-trader/internal/eod/eodobs"
	"wishlist-trader/internal/engine/engineobs"
	"wishlist-trader/internal/interfaces"
	"wishlist-trader/internal/logger"
	"wishlist-trader/internal/prices"
	"wishlist-trader/internal/store"
	"wishlist-trader/internal/trace"
	"wishlist-trader/internal/tradelog"
	"wishlist-trader/internal/wishlist"

	"github.com/joho/godotenv"
)

// initializeSystem loads .env and sets up logging and tracing
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func shutdownTracer() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = trace.Shutdown(ctx)
}

func configPath() string {
	if v := os.Getenv("TRADER_CONFIG"); v != "" {
		return v
	}
	return "config.yaml"
}

func loadConfig(ctx context.Context) (*store.Config, error) {
	path := configPath()
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs gzips journal files past the configured retention
func compressOldLogs(ctx context.Context, cfg *store.Config) {
	if err := tradelog.CompressOlder(cfg.LogRetentionDays); err != nil {
		logger.Warn(ctx, "Failed to compress old logs", "error", err)
	}
}

// initializeBroker builds the single Kite session wrapped with observability
func initializeBroker(ctx context.Context, cfg *store.Config) interfaces.Broker {
	brk := zerodha.NewZerodha(zerodha.Params{
		Mode:        cfg.Mode,
		APIKey:      cfg.Credentials.APIKey,
		AccessToken: cfg.Credentials.AccessToken,
		Exchange:    cfg.Exchanges.Order,
		Variety:     cfg.Order.Variety,
		Type:        cfg.Order.Type,
		Product:     cfg.Order.Product,
		Validity:    cfg.Order.Validity,
	})

	if cfg.Mode == store.ModeDryRun {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	}
	if cfg.Credentials.APIKey == "" || cfg.Credentials.AccessToken == "" {
		logger.Warn(ctx, "KITE_API_KEY or KITE_ACCESS_TOKEN not set - price fetches will fail")
	}

	return brokerobs.Wrap(brk)
}

// initializeEngine wires wishlists, prices and the optional ticker into the engine
func initializeEngine(ctx context.Context, cfg *store.Config, brk interfaces.Broker) interfaces.Engine {
	pm := prices.NewMap()
	loader := wishlist.NewLoader(os.DirFS(cfg.Wishlists.Dir), cfg.Wishlists.Slots, cfg.Wishlists.FilePattern)

	var ticker interfaces.TickerManager
	if cfg.Stream.Enabled {
		ticker = zerodha.NewTickerManager(cfg.Credentials.APIKey, cfg.Credentials.AccessToken, pm)
		logger.Info(ctx, "Live tick streaming enabled")
	}

	logger.Info(ctx, "Wishlists configured",
		"dir", cfg.Wishlists.Dir,
		"slots", cfg.Wishlists.Slots,
		"first_file", loader.FileName(0),
	)

	return engineobs.Wrap(engine.New(cfg, brk, loader, pm, ticker))
}

// placeStartupOrder waits for the first price pass so the order has a price
// to use, then places the configured order once.
func placeStartupOrder(ctx context.Context, eng interfaces.Engine, cfg *store.Config) {
	if err := eng.WaitFirstCycle(ctx); err != nil {
		return
	}

	o := cfg.StartupOrder
	resp, err := eng.PlaceOrder(ctx, o.Symbol, o.Qty, o.Side)
	if err != nil {
		logger.Warn(ctx, "Startup order not placed", "symbol", o.Symbol, "error", err)
		return
	}
	logger.Info(ctx, "Startup order placed", "symbol", o.Symbol, "order_id", resp.OrderID)
}

func initializeSummarizer() interfaces.EodSummarizer {
	return eodobs.Wrap(eod.NewSummarizer())
}

// runEodWatcher writes the journal summary once per day after market close.
func runEodWatcher(ctx context.Context, summarizer interfaces.EodSummarizer) {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if run, _ := summarizer.ShouldRunNow(); run {
				_, _ = summarizer.SummarizeToday(ctx)
			}
		}
	}
}
