package dbkeeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var ErrEmptyDSN = errors.New("database dsn is empty")

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// DBKeeper reads product payloads from a PostgreSQL table with columns
// id (ordering key) and payload (json or jsonb, one product object per row).
type DBKeeper struct {
	pool *pgxpool.Pool
	log  Log
}

func NewDBKeeper(ctx context.Context, dsn string, log Log) (*DBKeeper, error) {
	if dsn == "" {
		return nil, ErrEmptyDSN
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	kp := &DBKeeper{
		pool: pool,
		log:  log,
	}
	if err := kp.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("Connected!", zap.String("host", config.ConnConfig.Host))
	return kp, nil
}

// LoadPayloads returns the raw payload of every row in table, ordered by id.
func (kp *DBKeeper) LoadPayloads(ctx context.Context, table string) ([][]byte, error) {
	if kp.pool == nil {
		return nil, fmt.Errorf("database connection pool is nil")
	}

	query := fmt.Sprintf(`SELECT payload FROM %s ORDER BY id`, pgx.Identifier{table}.Sanitize())

	rows, err := kp.pool.Query(ctx, query)
	if err != nil {
		kp.log.Error("Failed to execute query", zap.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var payloads [][]byte
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			kp.log.Error("Failed to scan row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		payloads = append(payloads, payload)
	}

	if rows.Err() != nil {
		kp.log.Error("Error occurred during rows iteration", zap.Error(rows.Err()))
		return nil, fmt.Errorf("error during rows iteration: %w", rows.Err())
	}

	kp.log.Info("Successfully retrieved product payloads", zap.String("table", table), zap.Int("count", len(payloads)))
	return payloads, nil
}

func (kp *DBKeeper) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := kp.pool.Ping(ctx); err != nil {
		kp.log.Error("Database ping failed", zap.Error(err))
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

func (kp *DBKeeper) Close() bool {
	if kp.pool != nil {
		kp.pool.Close()
		kp.log.Info("Database connection pool closed")
		return true
	}
	kp.log.Info("Attempted to close a nil database connection pool")
	return false
}
