// Package source loads raw product records from a file, an HTTP(S) URL or a
// PostgreSQL table.
package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/drstein77/organicfilter/internal/models"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single HTTP fetch or database read.
const DefaultTimeout = 30 * time.Second

// DefaultTable is the table read by the Postgres source.
const DefaultTable = "products"

// Reader loads the full dataset in one blocking call.
type Reader interface {
	Read(ctx context.Context) ([]models.ProductRecord, error)
}

// Log interface for logging
type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// Options tune the network and database readers.
type Options struct {
	Timeout time.Duration
	Table   string
}

// New picks a Reader for location: http(s) URLs are fetched, postgres URLs are
// queried, anything else is read from disk.
func New(location string, opts Options, log Log) (Reader, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty source location", models.ErrInvalidConfig)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Table == "" {
		opts.Table = DefaultTable
	}

	switch scheme(location) {
	case "http", "https":
		return NewHTTPReader(location, opts.Timeout, log), nil
	case "postgres", "postgresql":
		return NewPostgresReader(location, opts.Table, opts.Timeout, log), nil
	default:
		return NewFileReader(location, log), nil
	}
}

func scheme(location string) string {
	i := strings.Index(location, "://")
	if i <= 0 {
		return ""
	}
	return strings.ToLower(location[:i])
}
