package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap"
)

// Schema creates the trade ledger table.
const Schema = `
	CREATE TABLE IF NOT EXISTS trade_events (
		id          TEXT PRIMARY KEY,
		market_id   TEXT NOT NULL,
		token_id    TEXT NOT NULL,
		side        TEXT NOT NULL,
		size        DOUBLE PRECISION NOT NULL,
		price       DOUBLE PRECISION NOT NULL,
		usdc_size   DOUBLE PRECISION NOT NULL,
		detected_at TIMESTAMPTZ NOT NULL,
		processed   BOOLEAN NOT NULL DEFAULT FALSE,
		retry_count INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS trade_events_pending_idx
		ON trade_events (detected_at) WHERE processed = FALSE;
`

const tradeColumns = `id, market_id, token_id, side, size, price, usdc_size, detected_at, processed, retry_count`

// PostgresLedger implements TradeLedger using PostgreSQL.
type PostgresLedger struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	DSN    string
	Logger *zap.Logger
}

// NewPostgresLedger connects to PostgreSQL and creates the schema if needed.
func NewPostgresLedger(ctx context.Context, cfg *PostgresConfig) (*PostgresLedger, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	_, err = db.ExecContext(ctx, Schema)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	cfg.Logger.Info("postgres-ledger-connected")

	return &PostgresLedger{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// PendingTrades implements TradeLedger.
func (p *PostgresLedger) PendingTrades(ctx context.Context, retryLimit int) ([]types.TradeEvent, error) {
	query := `SELECT ` + tradeColumns + `
		FROM trade_events
		WHERE processed = false AND retry_count < $1
		ORDER BY detected_at ASC`

	rows, err := p.db.QueryContext(ctx, query, retryLimit)
	if err != nil {
		return nil, fmt.Errorf("query pending trades: %w", err)
	}
	defer rows.Close()

	var trades []types.TradeEvent
	for rows.Next() {
		trade, scanErr := scanTrade(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan pending trade: %w", scanErr)
		}
		trades = append(trades, trade)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate pending trades: %w", err)
	}

	return trades, nil
}

// GetTrade implements TradeLedger.
func (p *PostgresLedger) GetTrade(ctx context.Context, id string) (*types.TradeEvent, error) {
	query := `SELECT ` + tradeColumns + ` FROM trade_events WHERE id = $1`

	trade, err := scanTrade(p.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get trade %s: %w", id, ErrTradeNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get trade %s: %w", id, err)
	}

	return &trade, nil
}

// MarkProcessed implements TradeLedger.
func (p *PostgresLedger) MarkProcessed(ctx context.Context, id string, retryCount int) error {
	err := p.update(ctx,
		`UPDATE trade_events SET processed = true, retry_count = $2 WHERE id = $1`,
		id, retryCount)
	if err != nil {
		return fmt.Errorf("mark trade processed: %w", err)
	}

	p.logger.Debug("trade-marked-processed",
		zap.String("trade-id", id),
		zap.Int("retry-count", retryCount))

	return nil
}

// IncrementRetry implements TradeLedger.
func (p *PostgresLedger) IncrementRetry(ctx context.Context, id string, retryCount int) error {
	err := p.update(ctx,
		`UPDATE trade_events SET retry_count = $2 WHERE id = $1`,
		id, retryCount)
	if err != nil {
		return fmt.Errorf("increment trade retry: %w", err)
	}

	return nil
}

// Insert adds a detected trade. Existing ids are left untouched.
func (p *PostgresLedger) Insert(ctx context.Context, trade types.TradeEvent) error {
	query := `INSERT INTO trade_events (` + tradeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`

	_, err := p.db.ExecContext(ctx, query,
		trade.ID,
		trade.MarketID,
		trade.TokenID,
		string(trade.Side),
		trade.Size,
		trade.Price,
		trade.USDCSize,
		trade.DetectedAt,
		trade.Processed,
		trade.RetryCount,
	)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *PostgresLedger) Close() error {
	p.logger.Info("closing-postgres-ledger")
	return p.db.Close()
}

func (p *PostgresLedger) update(ctx context.Context, query string, id string, retryCount int) error {
	result, err := p.db.ExecContext(ctx, query, id, retryCount)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("trade %s: %w", id, ErrTradeNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (types.TradeEvent, error) {
	var (
		trade types.TradeEvent
		side  string
	)

	err := row.Scan(
		&trade.ID,
		&trade.MarketID,
		&trade.TokenID,
		&side,
		&trade.Size,
		&trade.Price,
		&trade.USDCSize,
		&trade.DetectedAt,
		&trade.Processed,
		&trade.RetryCount,
	)
	trade.Side = types.Side(side)

	return trade, err
}
