package source

import (
	"context"
	"fmt"
	"time"

	"github.com/drstein77/organicfilter/internal/dbkeeper"
	"github.com/drstein77/organicfilter/internal/models"
	"go.uber.org/zap"
)

// Keeper loads raw product payloads from a database table.
type Keeper interface {
	LoadPayloads(ctx context.Context, table string) ([][]byte, error)
	Close() bool
}

// PostgresReader reads one product object per row from a table.
type PostgresReader struct {
	dsn     string
	table   string
	timeout time.Duration
	log     Log

	// connect is replaced in tests.
	connect func(ctx context.Context, dsn string) (Keeper, error)
}

func NewPostgresReader(dsn, table string, timeout time.Duration, log Log) *PostgresReader {
	p := &PostgresReader{
		dsn:     dsn,
		table:   table,
		timeout: timeout,
		log:     log,
	}
	p.connect = func(ctx context.Context, dsn string) (Keeper, error) {
		kp, err := dbkeeper.NewDBKeeper(ctx, dsn, log)
		if err != nil {
			return nil, err
		}
		return kp, nil
	}
	return p
}

func (p *PostgresReader) Read(ctx context.Context) ([]models.ProductRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	keeper, err := p.connect(ctx, p.dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}
	defer keeper.Close()

	payloads, err := keeper.LoadPayloads(ctx, p.table)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}

	records := make([]models.ProductRecord, 0, len(payloads))
	for i, payload := range payloads {
		rec, err := parseRecord(payload)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		records = append(records, rec)
	}

	p.log.Info("Dataset loaded", zap.String("table", p.table), zap.Int("records", len(records)))
	return records, nil
}
