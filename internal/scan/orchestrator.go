package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mohamedamin/halal-screener/internal/models"
	"github.com/mohamedamin/halal-screener/pkg/logger"
)

// HistorySink receives every successfully assembled snapshot, for
// long-term storage. A nil sink disables persistence.
type HistorySink interface {
	SaveSnapshot(ctx context.Context, passID string, snap *models.Snapshot) error
}

// OrchestratorConfig holds configuration for the scan orchestrator.
type OrchestratorConfig struct {
	WorkerCount  int           // concurrent symbol pipelines (default: 4)
	ScanInterval time.Duration // how often a full pass runs (default: 5 minutes)
	ScanTimeout  time.Duration // deadline for one full pass (default: 2 minutes)
}

// DefaultOrchestratorConfig returns default configuration.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		WorkerCount:  4,
		ScanInterval: 5 * time.Minute,
		ScanTimeout:  2 * time.Minute,
	}
}

// Orchestrator runs full scan passes over the active universe: each
// pass fans the symbol list out to a bounded worker pool, assembles one
// snapshot per symbol and publishes the results to the shared cache.
// Per-symbol failures are contained; a failed symbol never aborts the
// pass and its previous snapshot stays in the cache.
type Orchestrator struct {
	assembler *Assembler
	universe  *Universe
	cache     SnapshotCache
	sink      HistorySink
	config    OrchestratorConfig

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	running bool
	stats   OrchestratorStats
}

// OrchestratorStats holds cumulative counters across passes.
type OrchestratorStats struct {
	Passes         int64
	SymbolsOK      int64
	SymbolsSkipped int64
	LastPassTime   time.Duration
	LastPassID     string

	mu sync.RWMutex
}

// PassResult summarizes one completed scan pass. Snapshots holds the
// results produced this pass; symbols that failed are simply absent.
type PassResult struct {
	PassID    string
	Total     int
	Succeeded int
	Skipped   int
	Elapsed   time.Duration
	Snapshots []*models.Snapshot
}

// NewOrchestrator creates a scan orchestrator. The sink may be nil.
func NewOrchestrator(assembler *Assembler, universe *Universe, cache SnapshotCache, sink HistorySink, config OrchestratorConfig) *Orchestrator {
	if assembler == nil {
		panic("assembler cannot be nil")
	}
	if universe == nil {
		panic("universe cannot be nil")
	}
	if cache == nil {
		panic("cache cannot be nil")
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 4
	}
	if config.ScanInterval <= 0 {
		config.ScanInterval = 5 * time.Minute
	}
	if config.ScanTimeout <= 0 {
		config.ScanTimeout = 2 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		assembler: assembler,
		universe:  universe,
		cache:     cache,
		sink:      sink,
		config:    config,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the periodic scan loop.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator is already running")
	}
	o.running = true
	o.mu.Unlock()

	logger.Info("Starting scan orchestrator",
		logger.Int("workers", o.config.WorkerCount),
		logger.Duration("interval", o.config.ScanInterval),
	)

	o.wg.Add(1)
	go o.run()

	return nil
}

// Stop stops the scan loop and waits for the in-flight pass to finish.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	o.mu.Unlock()

	logger.Info("Stopping scan orchestrator")
	o.cancel()
	o.wg.Wait()
	logger.Info("Scan orchestrator stopped")
}

// IsRunning returns whether the periodic loop is active.
func (o *Orchestrator) IsRunning() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.running
}

// GetStats returns a copy of the cumulative counters.
func (o *Orchestrator) GetStats() OrchestratorStats {
	o.stats.mu.RLock()
	defer o.stats.mu.RUnlock()
	return OrchestratorStats{
		Passes:         o.stats.Passes,
		SymbolsOK:      o.stats.SymbolsOK,
		SymbolsSkipped: o.stats.SymbolsSkipped,
		LastPassTime:   o.stats.LastPassTime,
		LastPassID:     o.stats.LastPassID,
	}
}

func (o *Orchestrator) run() {
	defer o.wg.Done()

	ticker := time.NewTicker(o.config.ScanInterval)
	defer ticker.Stop()

	// First pass immediately so the cache is warm before the interval
	// elapses.
	o.scanPass()

	for {
		select {
		case <-o.ctx.Done():
			return
		case <-ticker.C:
			o.scanPass()
		}
	}
}

func (o *Orchestrator) scanPass() {
	ctx, cancel := context.WithTimeout(o.ctx, o.config.ScanTimeout)
	defer cancel()

	result := o.RunPass(ctx, o.universe.Symbols())
	o.updateStats(result)
}

// RunPass scans the given symbols once and publishes the resulting
// snapshots. It is exported for the one-shot CLI and for on-demand
// rescans triggered over the API.
func (o *Orchestrator) RunPass(ctx context.Context, symbols []string) PassResult {
	passID := uuid.New().String()
	start := time.Now()

	logger.Info("Scan pass starting",
		logger.String("pass_id", passID),
		logger.Int("symbols", len(symbols)),
	)

	jobs := make(chan string)
	var skipped int
	snapshots := make([]*models.Snapshot, 0, len(symbols))
	var resultMu sync.Mutex

	var workers sync.WaitGroup
	for i := 0; i < o.config.WorkerCount; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for symbol := range jobs {
				snap := o.scanSymbol(ctx, passID, symbol)
				resultMu.Lock()
				if snap != nil {
					snapshots = append(snapshots, snap)
				} else {
					skipped++
				}
				resultMu.Unlock()
			}
		}()
	}

feed:
	for _, symbol := range symbols {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- symbol:
		}
	}
	close(jobs)
	workers.Wait()

	elapsed := time.Since(start)
	logger.ScanCyclesTotal.Inc()
	logger.ScanDuration.Observe(elapsed.Seconds())

	logger.Info("Scan pass finished",
		logger.String("pass_id", passID),
		logger.Int("succeeded", len(snapshots)),
		logger.Int("skipped", skipped),
		logger.Duration("elapsed", elapsed),
	)

	return PassResult{
		PassID:    passID,
		Total:     len(symbols),
		Succeeded: len(snapshots),
		Skipped:   skipped,
		Elapsed:   elapsed,
		Snapshots: snapshots,
	}
}

// scanSymbol runs the pipeline for one symbol, returning nil when the
// symbol was skipped. A panic inside the pipeline is downgraded to a
// computation fault so one pathological series cannot take down the
// pass.
func (o *Orchestrator) scanSymbol(ctx context.Context, passID, symbol string) *models.Snapshot {
	var snap *models.Snapshot
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: panic scanning %s: %v", models.ErrComputationFault, symbol, r)
			}
		}()
		snap, err = o.assembler.Assemble(ctx, symbol)
		return err
	}()

	if err != nil {
		outcome := "computation_fault"
		switch {
		case errors.Is(err, models.ErrInsufficientHistory):
			outcome = "insufficient_history"
			logger.Debug("Skipping symbol", logger.String("symbol", symbol), logger.ErrorField(err))
		case errors.Is(err, models.ErrProviderFailure):
			outcome = "provider_failure"
			logger.Warn("Provider failure, keeping stale snapshot",
				logger.String("symbol", symbol),
				logger.String("pass_id", passID),
				logger.ErrorField(err),
			)
		default:
			logger.Error("Symbol scan failed",
				logger.String("symbol", symbol),
				logger.String("pass_id", passID),
				logger.ErrorField(err),
			)
		}
		logger.SymbolsScannedTotal.WithLabelValues(outcome).Inc()
		return nil
	}

	if err := o.cache.Put(snap); err != nil {
		logger.Error("Failed to cache snapshot",
			logger.String("symbol", snap.Symbol),
			logger.ErrorField(err),
		)
	}

	if o.sink != nil {
		if err := o.sink.SaveSnapshot(ctx, passID, snap); err != nil {
			// Persistence is best-effort; the live cache is the source
			// of truth for the API.
			logger.Warn("Failed to persist snapshot",
				logger.String("symbol", snap.Symbol),
				logger.ErrorField(err),
			)
		}
	}

	logger.SymbolsScannedTotal.WithLabelValues("ok").Inc()
	return snap
}

func (o *Orchestrator) updateStats(result PassResult) {
	o.stats.mu.Lock()
	defer o.stats.mu.Unlock()
	o.stats.Passes++
	o.stats.SymbolsOK += int64(result.Succeeded)
	o.stats.SymbolsSkipped += int64(result.Skipped)
	o.stats.LastPassTime = result.Elapsed
	o.stats.LastPassID = result.PassID
}
