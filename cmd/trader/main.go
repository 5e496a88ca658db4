package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"wishlist-trader/internal/logger"

	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := initializeSystem(); err != nil {
		return err
	}
	defer shutdownTracer()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	compressOldLogs(ctx, cfg)

	brk := initializeBroker(ctx, cfg)
	eng := initializeEngine(ctx, cfg, brk)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return eng.Run(gctx)
	})
	// The poller is already running while the instrument dump downloads.
	if err := eng.Start(gctx); err != nil {
		stop()
		_ = g.Wait()
		return err
	}
	if cfg.StartupOrderEnabled() {
		g.Go(func() error {
			placeStartupOrder(gctx, eng, cfg)
			return nil
		})
	}

	summarizer := initializeSummarizer()
	g.Go(func() error {
		runEodWatcher(gctx, summarizer)
		return nil
	})

	logger.Info(ctx, "Trader started", "mode", cfg.Mode, "poll_interval", cfg.PollInterval())
	err = g.Wait()
	logger.Info(context.Background(), "Shutting down...")
	_, _ = summarizer.SummarizeToday(context.Background())
	return err
}
