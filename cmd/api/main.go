package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/mohamedamin/halal-screener/internal/api"
	"github.com/mohamedamin/halal-screener/internal/compliance"
	"github.com/mohamedamin/halal-screener/internal/config"
	"github.com/mohamedamin/halal-screener/internal/data"
	"github.com/mohamedamin/halal-screener/internal/scan"
	tradesignal "github.com/mohamedamin/halal-screener/internal/signal"
	"github.com/mohamedamin/halal-screener/internal/storage"
	"github.com/mohamedamin/halal-screener/internal/wsgateway"
	"github.com/mohamedamin/halal-screener/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting screener API service",
		logger.Int("port", cfg.API.Port),
		logger.String("provider", cfg.Provider.Type),
		logger.Int("symbols", len(cfg.Scan.Symbols)),
	)

	// Initialize data provider
	factory := data.NewFactory()
	provider, err := factory.Create(cfg.Provider.Type, cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize data provider",
			logger.ErrorField(err),
		)
	}

	// Initialize Shariah screener
	screener := compliance.NewScreener(
		compliance.SeededFundamentals{},
		cfg.Compliance.MaxDebtRatio,
		cfg.Compliance.MaxCashRatio,
	)

	// Initialize snapshot assembler
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

	// Initialize snapshot cache (Redis when the API and worker are
	// split across processes, in-memory otherwise)
	var cache scan.SnapshotCache
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			pingCancel()
			logger.Fatal("Failed to connect to Redis",
				logger.ErrorField(err),
			)
		}
		pingCancel()
		defer client.Close()
		cache = scan.NewRedisCache(client, 0)
		logger.Info("Using Redis snapshot cache",
			logger.String("host", cfg.Redis.Host),
		)
	} else {
		cache = scan.NewMemoryCache()
	}

	// Initialize snapshot history sink (optional)
	var sink scan.HistorySink
	var historyReader api.HistoryReader
	if cfg.Database.Enabled {
		store, err := storage.NewSnapshotStore(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to initialize snapshot store",
				logger.ErrorField(err),
			)
		}
		if err := store.Start(); err != nil {
			logger.Fatal("Failed to start snapshot store",
				logger.ErrorField(err),
			)
		}
		defer store.Stop()
		sink = store
		historyReader = store
	}

	// Initialize scan universe and orchestrator
	universe := scan.NewUniverse(cfg.Scan.ListName, cfg.Scan.Symbols)
	orchestrator := scan.NewOrchestrator(assembler, universe, cache, sink, scan.OrchestratorConfig{
		WorkerCount:  cfg.Scan.WorkerCount,
		ScanInterval: cfg.Scan.Interval,
	})
	if err := orchestrator.Start(); err != nil {
		logger.Fatal("Failed to start orchestrator",
			logger.ErrorField(err),
		)
	}
	defer orchestrator.Stop()

	// Initialize WebSocket hub and live price feed
	hub := wsgateway.NewHub()
	if err := hub.Start(); err != nil {
		logger.Fatal("Failed to start WebSocket hub",
			logger.ErrorField(err),
		)
	}
	defer hub.Stop()

	priceFeed := scan.NewPriceFeed(provider, universe, hub, scan.PriceFeedConfig{
		BatchSize:      cfg.PriceFeed.BatchSize,
		BatchPause:     cfg.PriceFeed.BatchPause,
		UpdateInterval: cfg.PriceFeed.UpdateInterval,
		ExchangeSuffix: cfg.Provider.ExchangeSuffix,
	})
	if err := priceFeed.Start(); err != nil {
		logger.Fatal("Failed to start price feed",
			logger.ErrorField(err),
		)
	}
	defer priceFeed.Stop()

	// Schedule a fresh full pass at market open, on top of the regular
	// interval loop, so the first snapshots of the day use the opening
	// session's data.
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		ist = time.FixedZone("IST", 5*3600+1800)
	}
	scheduler := cron.New(cron.WithLocation(ist))
	if _, err := scheduler.AddFunc("20 9 * * MON-FRI", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		result := orchestrator.RunPass(ctx, universe.Symbols())
		logger.Info("Market-open scan finished",
			logger.String("pass_id", result.PassID),
			logger.Int("succeeded", result.Succeeded),
		)
	}); err != nil {
		logger.Fatal("Failed to schedule market-open scan",
			logger.ErrorField(err),
		)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize handlers
	handler := api.NewScreenerHandler(cache, orchestrator, universe, provider, historyReader, cfg.Provider.ExchangeSuffix)

	// Set up router
	router := mux.NewRouter()

	v1 := router.PathPrefix("/api/v1").Subrouter()

	// The scan trigger gets its own, tighter limit: a full pass hits
	// the upstream provider once per symbol.
	scanLimit := api.RateLimitMiddleware(float64(cfg.API.ScanRateLimit)/60.0, 2)
	v1.Handle("/scan", scanLimit(http.HandlerFunc(handler.RunScan))).Methods("GET")

	v1.HandleFunc("/stocks", handler.ListStocks).Methods("GET")
	v1.HandleFunc("/stocks/{symbol}", handler.GetStock).Methods("GET")
	v1.HandleFunc("/stocks/{symbol}/history", handler.GetStockHistory).Methods("GET")

	v1.HandleFunc("/stocklist", handler.GetStockList).Methods("GET")
	v1.HandleFunc("/stocklist", handler.UpdateStockList).Methods("PUT")
	v1.HandleFunc("/stocklist", handler.ResetStockList).Methods("DELETE")

	v1.HandleFunc("/market/status", handler.GetMarketStatus).Methods("GET")

	// Live price stream
	router.Handle("/ws/prices", hub)

	// Health and metrics
	router.HandleFunc("/health", handler.Health)
	router.Handle("/metrics", promhttp.Handler())

	// Apply middleware
	middlewares := api.ChainMiddleware(
		api.CORSMiddleware(),
		api.LoggingMiddleware(),
		api.RecoveryMiddleware(),
	)

	// Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.API.Port),
		Handler:      middlewares(router),
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	go func() {
		logger.Info("Starting HTTP server",
			logger.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server",
				logger.ErrorField(err),
			)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutting down screener API service")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Error shutting down HTTP server",
			logger.ErrorField(err),
		)
	}

	logger.Info("Screener API service stopped")
}
