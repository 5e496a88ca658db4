package eodobs

import (
	"context"
	"time"

	"wishlist-trader/internal/interfaces"
	"wishlist-trader/internal/logger"
	"wishlist-trader/internal/trace"
)

type observableEodSummarizer struct {
	summarizer interfaces.EodSummarizer
}

var _ interfaces.EodSummarizer = (*observableEodSummarizer)(nil)

func Wrap(summarizer interfaces.EodSummarizer) interfaces.EodSummarizer {
	return &observableEodSummarizer{
		summarizer: summarizer,
	}
}

func (oes *observableEodSummarizer) SummarizeDay(ctx context.Context, t time.Time) (string, error) {
	ctx, span := trace.StartSpan(ctx, "eod.SummarizeDay")
	defer span.End()

	date := t.Format("2006-01-02")
	csvPath, err := oes.summarizer.SummarizeDay(ctx, t)
	return oes.report(ctx, date, csvPath, err)
}

func (oes *observableEodSummarizer) SummarizeToday(ctx context.Context) (string, error) {
	ctx, span := trace.StartSpan(ctx, "eod.SummarizeToday")
	defer span.End()

	csvPath, err := oes.summarizer.SummarizeToday(ctx)
	return oes.report(ctx, "today", csvPath, err)
}

func (oes *observableEodSummarizer) report(ctx context.Context, date, csvPath string, err error) (string, error) {
	if err != nil {
		trace.RecordError(ctx, err)
		logger.ErrorWithErrSkip(ctx, 2, "Order journal summary failed", err, "date", date)
		return "", err
	}
	if csvPath == "" {
		logger.InfoSkip(ctx, 2, "No journal entries to summarise", "date", date)
		return "", nil
	}
	logger.InfoSkip(ctx, 2, "Order journal summary written", "date", date, "csv_path", csvPath)
	return csvPath, nil
}

func (oes *observableEodSummarizer) ShouldRunNow() (bool, string) {
	shouldRun, csvPath := oes.summarizer.ShouldRunNow()
	logger.DebugSkip(context.Background(), 1, "Summary check completed",
		"should_run", shouldRun,
		"csv_path", csvPath,
	)
	return shouldRun, csvPath
}
