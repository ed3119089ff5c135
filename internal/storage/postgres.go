// Package storage persists snapshot history to Postgres. Persistence
// is a sink off the hot path: the live cache serves reads, and a write
// failure here never fails a scan pass.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mohamedamin/halal-screener/internal/config"
	"github.com/mohamedamin/halal-screener/internal/models"
	"github.com/mohamedamin/halal-screener/pkg/logger"
)

var (
	snapshotWriteTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_snapshot_writes_total",
			Help: "Total number of snapshot history writes",
		},
		[]string{"status"}, // "success" or "error"
	)

	snapshotWriteLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "screener_snapshot_write_latency_seconds",
			Help:    "Snapshot history write latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
	)

	snapshotQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "screener_snapshot_write_queue_depth",
			Help: "Current depth of the snapshot write queue",
		},
	)
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshot_history (
	id          BIGSERIAL PRIMARY KEY,
	pass_id     UUID        NOT NULL,
	symbol      TEXT        NOT NULL,
	price       DOUBLE PRECISION NOT NULL,
	label       TEXT        NOT NULL,
	score       INTEGER     NOT NULL,
	compliant   BOOLEAN     NOT NULL,
	payload     JSONB       NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshot_history_symbol_time
	ON snapshot_history (symbol, generated_at DESC);
`

// HistoryRow is one persisted snapshot record.
type HistoryRow struct {
	PassID      string           `json:"passId"`
	Snapshot    *models.Snapshot `json:"snapshot"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

type queuedWrite struct {
	passID   string
	snapshot *models.Snapshot
}

// SnapshotStore writes snapshot history to Postgres through an async
// queue and serves per-symbol history reads.
type SnapshotStore struct {
	db        *sql.DB
	queue     chan queuedWrite
	queueSize int

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewSnapshotStore connects to Postgres, verifies the connection and
// ensures the history schema exists.
func NewSnapshotStore(cfg config.DatabaseConfig) (*SnapshotStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	storeCtx, storeCancel := context.WithCancel(context.Background())
	store := &SnapshotStore{
		db:        db,
		queue:     make(chan queuedWrite, 256),
		queueSize: 256,
		ctx:       storeCtx,
		cancel:    storeCancel,
	}

	logger.Info("Connected to Postgres",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
		logger.String("database", cfg.Database),
	)

	return store, nil
}

// Start launches the write queue processor.
func (s *SnapshotStore) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("snapshot store is already running")
	}
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.processQueue()
	return nil
}

// Stop drains the queue, waits for in-flight writes and closes the
// connection pool.
func (s *SnapshotStore) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	close(s.queue)
	s.wg.Wait()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	logger.Info("Snapshot store stopped")
	return nil
}

// SaveSnapshot enqueues a snapshot for persistence. When the queue is
// full the write is dropped with a warning; the scan pass must not
// block on storage.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, passID string, snap *models.Snapshot) error {
	select {
	case s.queue <- queuedWrite{passID: passID, snapshot: snap}:
		snapshotQueueDepth.Set(float64(len(s.queue)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		snapshotWriteTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("snapshot write queue is full")
	}
}

// History returns the most recent persisted snapshots for a symbol,
// newest first.
func (s *SnapshotStore) History(ctx context.Context, symbol string, limit int) ([]HistoryRow, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pass_id, payload, generated_at
		FROM snapshot_history
		WHERE symbol = $1
		ORDER BY generated_at DESC
		LIMIT $2
	`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshot history: %w", err)
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var row HistoryRow
		var payload []byte
		if err := rows.Scan(&row.PassID, &payload, &row.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot history row: %w", err)
		}
		var snap models.Snapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot payload: %w", err)
		}
		row.Snapshot = &snap
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *SnapshotStore) processQueue() {
	defer s.wg.Done()

	for write := range s.queue {
		snapshotQueueDepth.Set(float64(len(s.queue)))
		s.writeSnapshot(write)
	}
}

func (s *SnapshotStore) writeSnapshot(write queuedWrite) {
	start := time.Now()

	payload, err := json.Marshal(write.snapshot)
	if err != nil {
		snapshotWriteTotal.WithLabelValues("error").Inc()
		logger.Error("Failed to marshal snapshot for storage",
			logger.String("symbol", write.snapshot.Symbol),
			logger.ErrorField(err),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshot_history
			(pass_id, symbol, price, label, score, compliant, payload, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		write.passID,
		write.snapshot.Symbol,
		write.snapshot.Price,
		write.snapshot.Technicals.FinalLabel,
		write.snapshot.Technicals.FinalScore,
		write.snapshot.Compliance.Passed,
		payload,
		write.snapshot.GeneratedAt,
	)

	snapshotWriteLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		snapshotWriteTotal.WithLabelValues("error").Inc()
		logger.Error("Failed to write snapshot history",
			logger.String("symbol", write.snapshot.Symbol),
			logger.ErrorField(err),
		)
		return
	}
	snapshotWriteTotal.WithLabelValues("success").Inc()
}
