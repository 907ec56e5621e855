package source

import (
	"context"
	"fmt"
	"os"

	"github.com/drstein77/organicfilter/internal/models"
	"go.uber.org/zap"
)

// FileReader reads the dataset from a local path.
type FileReader struct {
	path string
	log  Log
}

func NewFileReader(path string, log Log) *FileReader {
	return &FileReader{path: path, log: log}
}

func (f *FileReader) Read(ctx context.Context) ([]models.ProductRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}

	f.log.Info("Reading dataset", zap.String("path", f.path))
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}

	records, err := decode(f.path, file)
	if err != nil {
		return nil, err
	}

	f.log.Info("Dataset loaded", zap.Int("records", len(records)))
	return records, nil
}
