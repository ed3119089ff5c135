// Command scan runs a single scan pass over the configured universe
// and prints the ranked snapshots as JSON. Useful for cron jobs and
// for inspecting the pipeline without the API service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mohamedamin/halal-screener/internal/compliance"
	"github.com/mohamedamin/halal-screener/internal/config"
	"github.com/mohamedamin/halal-screener/internal/data"
	"github.com/mohamedamin/halal-screener/internal/scan"
	tradesignal "github.com/mohamedamin/halal-screener/internal/signal"
	"github.com/mohamedamin/halal-screener/pkg/logger"
)

func main() {
	symbolsFlag := flag.String("symbols", "", "comma-separated symbols (default: configured universe)")
	timeoutFlag := flag.Duration("timeout", 2*time.Minute, "overall pass timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	factory := data.NewFactory()
	provider, err := factory.Create(cfg.Provider.Type, cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize data provider",
			logger.ErrorField(err),
		)
	}

	screener := compliance.NewScreener(
		compliance.SeededFundamentals{},
		cfg.Compliance.MaxDebtRatio,
		cfg.Compliance.MaxCashRatio,
	)

	assembler, err := scan.NewAssembler(provider, screener, scan.AssemblerConfig{
		MinHistory:     cfg.Scan.MinHistory,
		HistoryPeriod:  cfg.Scan.HistoryPeriod,
		ExchangeSuffix: cfg.Provider.ExchangeSuffix,
		SparklineLen:   cfg.Scan.SparklineLen,
		Weights:        tradesignal.DefaultWeights(),
	})
	if err != nil {
		logger.Fatal("Failed to initialize assembler",
			logger.ErrorField(err),
		)
	}

	symbols := cfg.Scan.Symbols
	if *symbolsFlag != "" {
		symbols = nil
		for _, s := range strings.Split(*symbolsFlag, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
	}

	cache := scan.NewMemoryCache()
	universe := scan.NewUniverse(cfg.Scan.ListName, symbols)
	orchestrator := scan.NewOrchestrator(assembler, universe, cache, nil, scan.OrchestratorConfig{
		WorkerCount: cfg.Scan.WorkerCount,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	result := orchestrator.RunPass(ctx, symbols)

	snapshots := result.Snapshots
	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].Technicals.FinalScore != snapshots[j].Technicals.FinalScore {
			return snapshots[i].Technicals.FinalScore > snapshots[j].Technicals.FinalScore
		}
		return snapshots[i].Symbol < snapshots[j].Symbol
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]interface{}{
		"passId":    result.PassID,
		"total":     result.Total,
		"succeeded": result.Succeeded,
		"skipped":   result.Skipped,
		"elapsedMs": result.Elapsed.Milliseconds(),
		"stocks":    snapshots,
	}); err != nil {
		logger.Fatal("Failed to encode results",
			logger.ErrorField(err),
		)
	}

	if result.Succeeded == 0 && result.Total > 0 {
		os.Exit(1)
	}
}
