package resultsink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/snappy"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSink persists reports to a Postgres table, compressing the fan-in
// history column the same way S3Sink compresses its history object.
type PGSink struct {
	pool *pgxpool.Pool
}

// NewPGSink opens a connection pool against databaseURL and ensures the
// results table exists: parse, pool, ping, migrate.
func NewPGSink(ctx context.Context, databaseURL string) (*PGSink, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	config.MaxConns = 10
	config.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &PGSink{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}

func (s *PGSink) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS simulation_reports (
			run_id TEXT PRIMARY KEY,
			engine TEXT NOT NULL,
			config_fingerprint TEXT NOT NULL,
			total_points BIGINT NOT NULL,
			total_writes BIGINT NOT NULL,
			average_write_amplification DOUBLE PRECISION NOT NULL,
			history_merge_fanin BYTEA,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

// Export inserts report as a new row, upserting on run ID collision.
func (s *PGSink) Export(ctx context.Context, report Report) error {
	var compressedHistory []byte
	if len(report.HistoryMergeFanin) > 0 {
		raw, err := json.Marshal(report.HistoryMergeFanin)
		if err != nil {
			return fmt.Errorf("marshaling fan-in history: %w", err)
		}
		compressedHistory = snappy.Encode(nil, raw)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO simulation_reports
			(run_id, engine, config_fingerprint, total_points, total_writes, average_write_amplification, history_merge_fanin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id) DO UPDATE SET
			total_points = EXCLUDED.total_points,
			total_writes = EXCLUDED.total_writes,
			average_write_amplification = EXCLUDED.average_write_amplification,
			history_merge_fanin = EXCLUDED.history_merge_fanin
	`,
		report.Identity.RunID,
		report.Identity.Engine,
		report.Identity.ConfigFingerprint,
		report.TotalPoints,
		report.TotalWrites,
		report.AverageWriteAmplification,
		compressedHistory,
	)
	if err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PGSink) Close() {
	s.pool.Close()
}
